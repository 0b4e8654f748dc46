// Package pipeline runs the whole split for one PDF: classification, the text
// stream and the scanned stream.
//
// The scanned stream either archives the scanned pages as their own PDF or
// transcribes them: every scanned page is rasterised and recognised in a
// bounded worker pool, failed pages are reported and left out, and the
// successful pages are written as one transcript in page order.
//
// Main Functions:
//
// - New: Validates the configuration and binds the OCR collaborators
// - Pipeline.Run: Processes one input document and returns a Report
package pipeline

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/gardar/scansplit/pkg/ocr"
	"github.com/gardar/scansplit/pkg/pdfocr"
	"github.com/gardar/scansplit/pkg/pdfsplit"
	"github.com/gardar/scansplit/pkg/raster"
	"github.com/gardar/scansplit/pkg/transcript"
)

// ErrInputMissing is returned when the input document does not exist.
var ErrInputMissing = errors.New("input document not found")

// Mode selects what happens to the scanned pages.
type Mode string

const (
	ModeOCR     Mode = "ocr"     // transcribe scanned pages
	ModeArchive Mode = "archive" // copy scanned pages into their own PDF
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeOCR, ModeArchive:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeOCR, ModeArchive)
}

// Outputs names the files a run may produce. An empty path skips that output.
type Outputs struct {
	TextPDF       string
	ScannedPDF    string
	Transcript    string
	SearchablePDF string // OCR mode only, off by default
}

// DefaultOutputs returns the reference file names in the working directory.
func DefaultOutputs() Outputs {
	return Outputs{
		TextPDF:    "text_pages.pdf",
		ScannedPDF: "scanned_pages.pdf",
		Transcript: "scanned_pages.txt",
	}
}

// Config holds the run options.
type Config struct {
	Split          pdfsplit.Config
	Mode           Mode
	Outputs        Outputs
	Workers        int           // Pages rasterised and recognised at once
	OCRConcurrency int           // Engine calls in flight, 0 means Workers; slot waits do not count against PageTimeout
	PageTimeout    time.Duration // Limit for each of a page's rasterisation and OCR, 0 for none
	Transcript     transcript.Options
	Searchable     pdfocr.Config // Layout of Outputs.SearchablePDF
}

// DefaultConfig returns OCR mode with one worker per CPU and no page timeout.
func DefaultConfig() Config {
	return Config{
		Split:      pdfsplit.DefaultConfig(),
		Mode:       ModeOCR,
		Outputs:    DefaultOutputs(),
		Workers:    runtime.NumCPU(),
		Searchable: pdfocr.DefaultConfig(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Split.Validate(); err != nil {
		return err
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.OCRConcurrency < 0 {
		return fmt.Errorf("ocr concurrency must not be negative, got %d", c.OCRConcurrency)
	}
	if c.PageTimeout < 0 {
		return fmt.Errorf("page timeout must not be negative, got %s", c.PageTimeout)
	}
	if c.Outputs.SearchablePDF != "" && c.Searchable.DPI <= 0 {
		return fmt.Errorf("searchable pdf needs the raster dpi, got %d", c.Searchable.DPI)
	}
	return nil
}

// RasterizerFactory opens a Rasterizer over the document at path. The
// pipeline opens one per concurrent worker.
type RasterizerFactory func(path string) (raster.Rasterizer, error)

// Deps are the collaborators of the scanned stream. Rasterizers and Engine
// are only required in OCR mode.
type Deps struct {
	Rasterizers RasterizerFactory
	Engine      ocr.Engine
	Logger      *zap.Logger
}

// Pipeline processes input documents. It holds no per-run state and may run
// several documents concurrently.
type Pipeline struct {
	cfg  Config
	deps Deps
	log  *zap.Logger
}

// New validates cfg and deps.
func New(cfg Config, deps Deps) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Mode == ModeOCR {
		if deps.Rasterizers == nil {
			return nil, fmt.Errorf("ocr mode needs a rasterizer factory")
		}
		if deps.Engine == nil {
			return nil, fmt.Errorf("ocr mode needs an OCR engine")
		}
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, deps: deps, log: log}, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config { return p.cfg }

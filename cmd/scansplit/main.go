// scansplit is a command-line tool that separates the text pages of a PDF from
// its scanned pages.
//
// Every page is classified by the amount of extractable text. Pages with more
// than 100 characters are text pages and are copied into their own PDF. The
// remaining pages are scanned pages when they carry an image (or always, with
// the fallback policy); they are rasterised and transcribed with OCR into a
// plain-text file with one "## Page N" section per page, or archived as a
// second PDF.
//
// Configuration:
//
// All settings have defaults; an optional YAML file overrides them:
//
//	mode: ocr
//	workers: 4
//	classify:
//	  policy: image
//	raster:
//	  backend: fitz
//	  dpi: 300
//	ocr:
//	  engine: tesseract
//	  languages: [rus, eng]
//
// Usage:
//
//	scansplit -pdf input.pdf [options]
//
// Flags:
//
//	-config string          Path to the YAML configuration file
//	-pdf string             Path to the input PDF file (required)
//	-mode string            ocr or archive
//	-policy string          image or fallback
//	-text-out string        Path to save the text pages PDF
//	-scanned-out string     Path to save the scanned pages PDF (archive mode)
//	-transcript-out string  Path to save the OCR transcript (ocr mode)
//	-searchable-out string  Path to save the scanned pages as a searchable PDF (ocr mode)
//	-engine string          tesseract or documentai
//	-backend string         fitz or poppler
//	-workers int            Pages rasterised and recognised at once
//	-overwrite              Overwrite existing output files
//	-v                      Debug logging
//
// Environment:
//
// SCANSPLIT_WORKERS, SCANSPLIT_DPI, SCANSPLIT_PAGE_TIMEOUT and
// SCANSPLIT_OCR_LANGS ("rus+eng") override the file. The Document AI engine
// authenticates with GOOGLE_APPLICATION_CREDENTIALS.
//
// Example:
//
//	scansplit -pdf contract.pdf
//	scansplit -pdf contract.pdf -mode archive -scanned-out scans.pdf
//	scansplit -config scansplit.yml -pdf contract.pdf -engine documentai -overwrite
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gardar/scansplit/internal/fsutil"
	"github.com/gardar/scansplit/pkg/ocr"
	"github.com/gardar/scansplit/pkg/pdfsplit"
	"github.com/gardar/scansplit/pkg/pipeline"
	"github.com/gardar/scansplit/pkg/raster"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	pdfPath := flag.String("pdf", "", "Path to the input PDF file (required)")
	mode := flag.String("mode", "", "Scanned page handling: ocr or archive")
	policy := flag.String("policy", "", "Classification policy: image or fallback")
	textOut := flag.String("text-out", "", "Path to save the text pages PDF")
	scannedOut := flag.String("scanned-out", "", "Path to save the scanned pages PDF")
	transcriptOut := flag.String("transcript-out", "", "Path to save the OCR transcript")
	searchableOut := flag.String("searchable-out", "", "Path to save the scanned pages as a searchable PDF")
	engine := flag.String("engine", "", "OCR engine: tesseract or documentai")
	backend := flag.String("backend", "", "Raster backend: fitz or poppler")
	workers := flag.Int("workers", 0, "Pages rasterised and recognised at once")
	overwrite := flag.Bool("overwrite", false, "Overwrite existing output files")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -pdf is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s, err := loadSettings(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	err = applyFlags(&s, flagValues{
		mode:          *mode,
		policy:        *policy,
		textOut:       *textOut,
		scannedOut:    *scannedOut,
		transcriptOut: *transcriptOut,
		searchableOut: *searchableOut,
		engine:        *engine,
		backend:       *backend,
		workers:       *workers,
		verbose:       *verbose,
	})
	if err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}
	s.resolve()

	if !*overwrite {
		for _, path := range outputPaths(s.Pipeline) {
			if fsutil.Exists(path) {
				log.Fatalf("Output file %s already exists. Use -overwrite to overwrite.", path)
			}
		}
	}

	logger, err := newLogger(s.LogDev, s.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := pipeline.Deps{Logger: logger}
	if s.Pipeline.Mode == pipeline.ModeOCR {
		eng, closeEngine, err := newEngine(ctx, s)
		if err != nil {
			log.Fatalf("Failed to create OCR engine: %v", err)
		}
		defer closeEngine()
		deps.Engine = eng
		deps.Rasterizers = func(path string) (raster.Rasterizer, error) {
			return raster.Open(s.RasterBackend, path, s.Raster)
		}
	}

	p, err := pipeline.New(s.Pipeline, deps)
	if err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	fmt.Printf("Processing %s\n", *pdfPath)
	report, err := p.Run(ctx, *pdfPath)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrInputMissing):
			log.Fatalf("Input file %s not found", *pdfPath)
		case errors.Is(err, pdfsplit.ErrDocumentUnreadable):
			log.Fatalf("Cannot read %s: %v", *pdfPath, err)
		case errors.Is(err, context.Canceled):
			log.Fatal("Interrupted")
		}
		log.Fatalf("Processing failed: %v", err)
	}

	printReport(os.Stdout, *report)
}

type flagValues struct {
	mode          string
	policy        string
	textOut       string
	scannedOut    string
	transcriptOut string
	searchableOut string
	engine        string
	backend       string
	workers       int
	verbose       bool
}

// applyFlags lets command-line flags override the loaded settings.
func applyFlags(s *settings, f flagValues) error {
	var err error
	if f.mode != "" {
		if s.Pipeline.Mode, err = pipeline.ParseMode(f.mode); err != nil {
			return err
		}
	}
	if f.policy != "" {
		if s.Pipeline.Split.Policy, err = pdfsplit.ParsePolicy(f.policy); err != nil {
			return err
		}
	}
	if f.engine != "" {
		if s.Engine, err = ocr.ParseKind(f.engine); err != nil {
			return err
		}
	}
	if f.backend != "" {
		if s.RasterBackend, err = raster.ParseBackend(f.backend); err != nil {
			return err
		}
	}
	if f.textOut != "" {
		s.Pipeline.Outputs.TextPDF = f.textOut
	}
	if f.scannedOut != "" {
		s.Pipeline.Outputs.ScannedPDF = f.scannedOut
	}
	if f.transcriptOut != "" {
		s.Pipeline.Outputs.Transcript = f.transcriptOut
	}
	if f.searchableOut != "" {
		s.Pipeline.Outputs.SearchablePDF = f.searchableOut
	}
	if f.workers > 0 {
		s.Pipeline.Workers = f.workers
	}
	if f.verbose {
		s.LogLevel = "debug"
	}
	return nil
}

// outputPaths lists the files a run in the configured mode may write.
func outputPaths(cfg pipeline.Config) []string {
	paths := []string{cfg.Outputs.TextPDF}
	if cfg.Mode == pipeline.ModeArchive {
		paths = append(paths, cfg.Outputs.ScannedPDF)
	} else {
		paths = append(paths, cfg.Outputs.Transcript, cfg.Outputs.SearchablePDF)
	}

	var out []string
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newLogger(development bool, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// newEngine builds the configured OCR engine and the function that releases it.
func newEngine(ctx context.Context, s settings) (ocr.Engine, func(), error) {
	switch s.Engine {
	case ocr.KindDocumentAI:
		cfg := s.DocumentAI
		cfg.Languages = s.Tesseract.Languages
		d, err := ocr.NewDocumentAI(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return d, func() { d.Close() }, nil
	default:
		return ocr.NewTesseract(tesseractConfig(s)), func() {}, nil
	}
}

// tesseractConfig matches the engine to the rasteriser and caps its calls at
// the pipeline's OCR concurrency.
func tesseractConfig(s settings) ocr.TesseractConfig {
	cfg := s.Tesseract
	cfg.DPI = s.Raster.DPI
	cfg.MaxConcurrent = s.Pipeline.OCRConcurrency
	if cfg.MaxConcurrent == 0 {
		cfg.MaxConcurrent = s.Pipeline.Workers
	}
	return cfg
}

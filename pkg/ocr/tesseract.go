package ocr

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/sync/semaphore"

	"github.com/gardar/scansplit/pkg/hocr"
)

// TesseractConfig holds the settings applied to every recognition call.
type TesseractConfig struct {
	Languages   []string // Tesseract language codes, in priority order
	PageSegMode int      // Tesseract --psm value, 0 keeps the library default
	DPI         int      // Resolution hint for the input images, 0 for none
	TessdataDir string   // Overrides TESSDATA_PREFIX when set

	// MaxConcurrent caps the Tesseract calls running at once, counting calls
	// a cancelled ctx left running in the background. 0 for no limit.
	MaxConcurrent int
}

// DefaultTesseractConfig returns Russian and English recognition with
// automatic page segmentation.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{
		Languages:   append([]string(nil), DefaultLanguages...),
		PageSegMode: int(gosseract.PSM_AUTO),
		DPI:         300,
	}
}

// tessClient is the subset of *gosseract.Client the engine drives.
type tessClient interface {
	SetLanguage(langs ...string) error
	SetPageSegMode(mode gosseract.PageSegMode) error
	SetVariable(key gosseract.SettableVariable, value string) error
	SetTessdataPrefix(prefix string) error
	SetImageFromBytes(data []byte) error
	HOCRText() (string, error)
	Text() (string, error)
	Close() error
}

// Tesseract recognises pages locally. Every call uses its own client, so one
// engine can serve many workers.
type Tesseract struct {
	cfg       TesseractConfig
	newClient func() tessClient
	slots     *semaphore.Weighted // nil when unlimited
}

// NewTesseract creates a Tesseract engine. An empty language list falls back
// to DefaultLanguages.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	if len(cfg.Languages) == 0 {
		cfg.Languages = append([]string(nil), DefaultLanguages...)
	}
	t := &Tesseract{
		cfg:       cfg,
		newClient: func() tessClient { return gosseract.NewClient() },
	}
	if cfg.MaxConcurrent > 0 {
		t.slots = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	return t
}

// Languages returns the configured language codes.
func (t *Tesseract) Languages() []string {
	return append([]string(nil), t.cfg.Languages...)
}

// Recognize runs Tesseract over img. gosseract calls cannot be interrupted,
// so a cancelled ctx returns immediately and the call finishes in the
// background, holding its MaxConcurrent slot until it does.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, recognitionError("tesseract", err)
	}
	data, err := encodePNG(img)
	if err != nil {
		return Result{}, err
	}

	type outcome struct {
		res Result
		err error
	}
	if t.slots != nil {
		if err := t.slots.Acquire(ctx, 1); err != nil {
			return Result{}, recognitionError("tesseract", err)
		}
	}
	done := make(chan outcome, 1)
	go func() {
		if t.slots != nil {
			defer t.slots.Release(1)
		}
		res, err := t.recognize(data)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return Result{}, recognitionError("tesseract", ctx.Err())
	case o := <-done:
		if o.err != nil {
			return Result{}, recognitionError("tesseract", o.err)
		}
		return o.res, nil
	}
}

func (t *Tesseract) recognize(data []byte) (Result, error) {
	c := t.newClient()
	defer c.Close()

	if t.cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(t.cfg.TessdataDir); err != nil {
			return Result{}, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(t.cfg.Languages...); err != nil {
		return Result{}, fmt.Errorf("set languages %v: %w", t.cfg.Languages, err)
	}
	if t.cfg.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(t.cfg.PageSegMode)); err != nil {
			return Result{}, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if t.cfg.DPI > 0 {
		if err := c.SetVariable("user_defined_dpi", strconv.Itoa(t.cfg.DPI)); err != nil {
			return Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}

	out, err := c.HOCRText()
	if err != nil {
		return Result{}, fmt.Errorf("hocr: %w", err)
	}
	if doc, err := hocr.Parse([]byte(out)); err == nil {
		if conf, ok := doc.MeanConfidence(); ok {
			return Result{Text: doc.Text(), Confidence: conf, Layout: &doc.Pages[0]}, nil
		}
	}

	// hOCR without words, fall back to plain text.
	text, err := c.Text()
	if err != nil {
		return Result{}, fmt.Errorf("text: %w", err)
	}
	return Result{Text: strings.TrimSpace(text)}, nil
}

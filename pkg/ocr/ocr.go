// Package ocr turns rasterised page images into text.
//
// Engines:
//
// - Tesseract: local recognition through gosseract, reading hOCR for word confidences
// - DocumentAI: Google Document AI OCR processor
//
// Both engines take a fixed, ordered language list (Tesseract codes such as
// "rus" and "eng") and are safe for concurrent use.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/gardar/scansplit/pkg/hocr"
)

// ErrRecognitionFailed wraps every engine failure.
var ErrRecognitionFailed = errors.New("recognition failed")

// DefaultLanguages is the reference language pair: Russian and English.
var DefaultLanguages = []string{"rus", "eng"}

// Result is the recognised text of one page.
type Result struct {
	Text       string
	Confidence float64    // Mean word confidence 0-100, 0 when the engine reports none
	Layout     *hocr.Page // Word boxes in image pixels, nil when the engine reports none
}

// Engine recognises the text in one image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (Result, error)
}

// Kind names an Engine implementation in configuration.
type Kind string

const (
	KindTesseract  Kind = "tesseract"
	KindDocumentAI Kind = "documentai"
)

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindTesseract, KindDocumentAI:
		return k, nil
	}
	return "", fmt.Errorf("unknown OCR engine %q (want %q or %q)", s, KindTesseract, KindDocumentAI)
}

func encodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrRecognitionFailed)
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", ErrRecognitionFailed, err)
	}
	return buf.Bytes(), nil
}

func recognitionError(engine string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRecognitionFailed, engine, err)
}

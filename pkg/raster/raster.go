// Package raster renders single PDF pages to images for OCR.
//
// Two backends are available:
//
// - fitz: renders in-process through MuPDF (go-fitz)
// - poppler: runs the external pdftoppm tool, one process per page
//
// A Rasterizer is bound to one document and is not safe for concurrent use.
// Callers that render pages in parallel open one Rasterizer per worker.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

// ErrRasterizationFailed wraps every per-page rendering failure.
var ErrRasterizationFailed = errors.New("rasterization failed")

// Backend names a rendering implementation.
type Backend string

const (
	BackendFitz    Backend = "fitz"
	BackendPoppler Backend = "poppler"
)

// DefaultDPI is the rendering resolution used for OCR.
const DefaultDPI = 300

// Options configures a Rasterizer.
type Options struct {
	DPI          int           // Rendering resolution
	Timeout      time.Duration // Per-page limit for the poppler backend, 0 for none
	PdftoppmPath string        // pdftoppm executable, looked up in PATH when empty
}

// DefaultOptions returns 300 DPI rendering without a timeout.
func DefaultOptions() Options {
	return Options{DPI: DefaultDPI, PdftoppmPath: "pdftoppm"}
}

// Rasterizer renders pages of one document.
type Rasterizer interface {
	// Rasterize renders a 1-based page.
	Rasterize(ctx context.Context, page int) (image.Image, error)
	Close() error
}

// Open creates a Rasterizer for the document at path using backend.
func Open(backend Backend, path string, opts Options) (Rasterizer, error) {
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	switch backend {
	case BackendFitz, "":
		return OpenFitz(path, opts)
	case BackendPoppler:
		return NewPoppler(path, opts)
	}
	return nil, fmt.Errorf("unknown raster backend %q", backend)
}

// ParseBackend converts a configuration string into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendFitz, BackendPoppler:
		return b, nil
	}
	return "", fmt.Errorf("unknown raster backend %q (want %q or %q)", s, BackendFitz, BackendPoppler)
}

func pageError(page int, err error) error {
	return fmt.Errorf("%w: page %d: %w", ErrRasterizationFailed, page, err)
}

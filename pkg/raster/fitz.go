package raster

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Fitz renders pages in-process with MuPDF.
type Fitz struct {
	doc *fitz.Document
	dpi float64
}

// OpenFitz opens the document at path for rendering.
func OpenFitz(path string, opts Options) (*Fitz, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Fitz{doc: doc, dpi: float64(dpi)}, nil
}

// NumPages returns the page count reported by MuPDF.
func (f *Fitz) NumPages() int { return f.doc.NumPage() }

// Rasterize renders a 1-based page at the configured DPI.
func (f *Fitz) Rasterize(ctx context.Context, page int) (img image.Image, err error) {
	if err := ctx.Err(); err != nil {
		return nil, pageError(page, err)
	}
	if page < 1 || page > f.doc.NumPage() {
		return nil, pageError(page, fmt.Errorf("out of range 1..%d", f.doc.NumPage()))
	}

	defer func() {
		if r := recover(); r != nil {
			img, err = nil, pageError(page, fmt.Errorf("mupdf: %v", r))
		}
	}()

	rgba, err := f.doc.ImageDPI(page-1, f.dpi)
	if err != nil {
		return nil, pageError(page, err)
	}
	return rgba, nil
}

// Close releases the MuPDF document.
func (f *Fitz) Close() error {
	return f.doc.Close()
}

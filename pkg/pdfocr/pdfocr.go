// Package pdfocr assembles searchable PDFs from page images and their OCR
// word layout.
//
// Every page of the result is the rasterised image scaled to its physical
// size, with the recognised words drawn as invisible text on an optional
// content layer at the positions reported in hOCR. The text can be searched
// and selected, and the layer can be shown in readers that support it.
//
// Main Functions:
//
// - Assemble: Builds a PDF from page images and layouts
// - EncodeImage: Compresses a rasterised page for embedding
package pdfocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/scansplit/pkg/hocr"
)

// ErrNoPages is returned by Assemble for an empty page list.
var ErrNoPages = errors.New("no pages to assemble")

// Page is one page of the assembled document.
type Page struct {
	Number int        // Source page number, used in the layer name
	Image  []byte     // JPEG or PNG data
	Layout *hocr.Page // Word boxes in image pixels, nil for an image-only page
}

// Output is an assembled document.
type Output struct {
	PDF         []byte
	Words       int // Words drawn on the text layers
	Unencodable int // Words skipped because the font cannot encode them
}

// Assemble builds a PDF with one page per entry of pages, in the given order.
func Assemble(pages []Page, cfg Config) (Output, error) {
	if len(pages) == 0 {
		return Output{}, ErrNoPages
	}
	if cfg.DPI <= 0 {
		return Output{}, fmt.Errorf("dpi must be positive, got %d", cfg.DPI)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	enc, err := setupFont(pdf, cfg.Font)
	if err != nil {
		return Output{}, err
	}

	var out Output
	for i, page := range pages {
		format, px, err := imageInfo(page.Image)
		if err != nil {
			return Output{}, fmt.Errorf("page %d: %w", page.Number, err)
		}
		w := float64(px.X) * 72 / float64(cfg.DPI)
		h := float64(px.Y) * 72 / float64(cfg.DPI)

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		name := fmt.Sprintf("page%d", i)
		opts := fpdf.ImageOptions{ImageType: format}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(page.Image))
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")

		if page.Layout != nil {
			src := page.Layout.BBox
			if src.X2 <= 0 || src.Y2 <= 0 {
				src = hocr.BoundingBox{X2: float64(px.X), Y2: float64(px.Y)}
			}
			scale := func(x, y float64) (float64, float64) {
				return normalizeCoords(x, y, src.X2, src.Y2, w, h)
			}
			l := layer{pdf: pdf, cfg: cfg, encode: enc, transform: scale}
			l.draw(page.Layout, page.Number)
			out.Words += l.drawn
			out.Unencodable += l.skipped
		}
		if err := pdf.Error(); err != nil {
			return Output{}, fmt.Errorf("page %d: %w", page.Number, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Output{}, fmt.Errorf("failed to generate PDF: %w", err)
	}
	out.PDF = buf.Bytes()
	return out, nil
}

// EncodeImage compresses img as a JPEG for embedding.
func EncodeImage(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// imageInfo returns the fpdf image type and pixel size of data.
func imageInfo(data []byte) (string, image.Point, error) {
	if len(data) == 0 {
		return "", image.Point{}, errors.New("empty image")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", image.Point{}, fmt.Errorf("failed to decode image config: %w", err)
	}
	switch format {
	case "jpeg":
		return "JPG", image.Point{X: cfg.Width, Y: cfg.Height}, nil
	case "png":
		return "PNG", image.Point{X: cfg.Width, Y: cfg.Height}, nil
	}
	return "", image.Point{}, fmt.Errorf("unsupported image format %q", strings.ToUpper(format))
}

// normalizeCoords rescales hOCR coordinates to PDF coordinates.
func normalizeCoords(x, y, hocrW, hocrH, pdfW, pdfH float64) (float64, float64) {
	return x / hocrW * pdfW, y / hocrH * pdfH
}

package pdfocr

import (
	"fmt"
	"path/filepath"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/scansplit/pkg/hocr"
)

// encoder converts word text into the byte form the current font expects.
type encoder func(string) (string, error)

// setupFont selects the configured font and returns its encoder.
func setupFont(pdf *fpdf.Fpdf, fc FontConfig) (encoder, error) {
	if fc.UTF8File != "" {
		// fpdf resolves font files relative to its font location.
		pdf.SetFontLocation(filepath.Dir(fc.UTF8File))
		pdf.AddUTF8Font(fc.Name, fc.Style, filepath.Base(fc.UTF8File))
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load font %s: %w", fc.UTF8File, err)
		}
		return func(s string) (string, error) { return s, nil }, nil
	}
	return charmap.Windows1252.NewEncoder().String, nil
}

// layer draws the words of one page.
type layer struct {
	pdf       *fpdf.Fpdf
	cfg       Config
	encode    encoder
	transform func(x, y float64) (float64, float64)

	drawn   int
	skipped int
}

func (l *layer) draw(page *hocr.Page, number int) {
	words := page.Words()
	if len(words) == 0 {
		return
	}

	name := l.cfg.LayerName
	if name == "" {
		name = "OCR Text"
	}
	pdf := l.pdf
	id := pdf.AddLayer(fmt.Sprintf("%s (Page %d)", name, number), true)
	pdf.BeginLayer(id)
	pdf.SetFont(l.cfg.Font.Name, l.cfg.Font.Style, l.cfg.Font.Size)
	if l.cfg.Debug {
		pdf.SetTextColor(255, 0, 0)
	} else {
		pdf.SetAlpha(0, "Normal")
	}

	for _, w := range words {
		l.word(w)
	}

	pdf.SetAlpha(1, "Normal")
	pdf.SetTextColor(0, 0, 0)
	pdf.EndLayer()
}

// word fits the text to the width of its box and places the baseline below
// the top edge.
func (l *layer) word(w hocr.Word) {
	text, err := l.encode(w.Text)
	if err != nil || text == "" {
		l.skipped++
		return
	}

	pdf := l.pdf
	fc := l.cfg.Font
	x, y := l.transform(w.BBox.X1, w.BBox.Y1)
	x2, y2 := l.transform(w.BBox.X2, w.BBox.Y2)
	width := x2 - x

	if sw := pdf.GetStringWidth(text); sw > 0 && width > 0 {
		pdf.SetFontSize(fc.Size * width / sw)
	}
	size, _ := pdf.GetFontSize()
	pdf.Text(x, y+size*fc.AscentRatio, text)
	if l.cfg.Debug {
		pdf.Rect(x, y, width, y2-y, "D")
	}
	pdf.SetFontSize(fc.Size)
	l.drawn++
}

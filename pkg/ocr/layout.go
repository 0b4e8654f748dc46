package ocr

import (
	"fmt"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/scansplit/pkg/hocr"
)

// documentLayout converts the first page of a Document AI response into an
// hOCR page with one area per block and the words of each line taken from
// the page tokens. Coordinates are in image pixels.
func documentLayout(doc *documentaipb.Document) *hocr.Page {
	pages := doc.GetPages()
	if len(pages) == 0 {
		return nil
	}
	page := pages[0]
	text := []rune(doc.GetText())
	dim := page.GetDimension()

	out := &hocr.Page{
		ID:   "page_1",
		BBox: hocr.BoundingBox{X2: float64(dim.GetWidth()), Y2: float64(dim.GetHeight())},
	}

	tokens := page.GetTokens()
	for bi, block := range page.GetBlocks() {
		area := hocr.Area{
			ID:   fmt.Sprintf("block_1_%d", bi+1),
			BBox: polyBox(block.GetLayout().GetBoundingPoly(), dim),
		}
		par := hocr.Paragraph{ID: fmt.Sprintf("par_1_%d", bi+1), BBox: area.BBox}
		for li, line := range page.GetLines() {
			if !within(line.GetLayout(), block.GetLayout()) {
				continue
			}
			l := hocr.Line{
				ID:    fmt.Sprintf("line_1_%d", li+1),
				Class: "ocr_line",
				BBox:  polyBox(line.GetLayout().GetBoundingPoly(), dim),
			}
			for ti, tok := range tokens {
				if !within(tok.GetLayout(), line.GetLayout()) {
					continue
				}
				w := hocr.Word{
					ID:         fmt.Sprintf("word_1_%d", ti+1),
					Text:       anchorText(tok.GetLayout().GetTextAnchor(), text),
					BBox:       polyBox(tok.GetLayout().GetBoundingPoly(), dim),
					Confidence: float64(tok.GetLayout().GetConfidence()) * 100,
				}
				if w.Text != "" {
					l.Words = append(l.Words, w)
				}
			}
			if len(l.Words) > 0 {
				par.Lines = append(par.Lines, l)
			}
		}
		if len(par.Lines) > 0 {
			area.Paragraphs = []hocr.Paragraph{par}
			out.Areas = append(out.Areas, area)
		}
	}
	return out
}

// polyBox returns the pixel bounding box of poly. Absolute vertices win over
// normalised ones when both are present.
func polyBox(poly *documentaipb.BoundingPoly, dim *documentaipb.Document_Page_Dimension) hocr.BoundingBox {
	var xs, ys []float64
	if vs := poly.GetVertices(); len(vs) > 0 {
		for _, v := range vs {
			xs = append(xs, float64(v.GetX()))
			ys = append(ys, float64(v.GetY()))
		}
	} else {
		for _, v := range poly.GetNormalizedVertices() {
			xs = append(xs, float64(v.GetX())*float64(dim.GetWidth()))
			ys = append(ys, float64(v.GetY())*float64(dim.GetHeight()))
		}
	}
	if len(xs) == 0 {
		return hocr.BoundingBox{}
	}
	return hocr.BoundingBox{X1: minOf(xs), Y1: minOf(ys), X2: maxOf(xs), Y2: maxOf(ys)}
}

// within reports whether the text of child lies inside the text of parent.
func within(child, parent *documentaipb.Document_Page_Layout) bool {
	cs := child.GetTextAnchor().GetTextSegments()
	ps := parent.GetTextAnchor().GetTextSegments()
	if len(cs) == 0 || len(ps) == 0 {
		return false
	}
	start, end := cs[0].GetStartIndex(), cs[len(cs)-1].GetEndIndex()
	for _, s := range ps {
		if start >= s.GetStartIndex() && end <= s.GetEndIndex() {
			return true
		}
	}
	return false
}

// anchorText resolves a text anchor; Document AI indexes the text by code point.
func anchorText(anchor *documentaipb.Document_TextAnchor, text []rune) string {
	var out []rune
	for _, s := range anchor.GetTextSegments() {
		start, end := int(s.GetStartIndex()), int(s.GetEndIndex())
		if start < 0 || end > len(text) || start >= end {
			continue
		}
		out = append(out, text[start:end]...)
	}
	return trimToken(string(out))
}

// trimToken drops the trailing space or newline Document AI keeps on tokens.
func trimToken(s string) string {
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\n') {
		s = s[:len(s)-1]
	}
	return s
}

func minOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		m = min(m, x)
	}
	return m
}

func maxOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		m = max(m, x)
	}
	return m
}

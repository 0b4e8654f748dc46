package hocr

import (
	"strings"
)

// Text returns the text of one page in reading order: words joined by spaces,
// lines by newlines and paragraphs by blank lines.
func (p Page) Text() string {
	var paragraphs []string
	for _, area := range p.Areas {
		for _, par := range area.Paragraphs {
			var lines []string
			for _, line := range par.Lines {
				if s := line.Text(); s != "" {
					lines = append(lines, s)
				}
			}
			if len(lines) > 0 {
				paragraphs = append(paragraphs, strings.Join(lines, "\n"))
			}
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// Text returns the words of the line separated by single spaces.
func (l Line) Text() string {
	words := make([]string, 0, len(l.Words))
	for _, w := range l.Words {
		words = append(words, w.Text)
	}
	return strings.Join(words, " ")
}

// Text returns the text of all pages separated by blank lines.
func (d *Document) Text() string {
	pages := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		if s := p.Text(); s != "" {
			pages = append(pages, s)
		}
	}
	return strings.Join(pages, "\n\n")
}

// MeanConfidence averages the confidence of every word. ok is false when the
// document holds no words.
func (d *Document) MeanConfidence() (mean float64, ok bool) {
	var sum float64
	var n int
	for _, p := range d.Pages {
		for _, a := range p.Areas {
			for _, par := range a.Paragraphs {
				for _, l := range par.Lines {
					for _, w := range l.Words {
						sum += w.Confidence
						n++
					}
				}
			}
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Words returns every word of the page in reading order.
func (p Page) Words() []Word {
	var words []Word
	for _, a := range p.Areas {
		for _, par := range a.Paragraphs {
			for _, l := range par.Lines {
				words = append(words, l.Words...)
			}
		}
	}
	return words
}

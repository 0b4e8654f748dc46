// Package transcript serialises OCR output into a page-labelled text file:
//
//	## Page 3
//
//	recognised text of page 3
//
//	## Page 7
//	...
//
// Sections are always written in ascending page order, whatever order the
// records arrive in.
package transcript

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gardar/scansplit/internal/fsutil"
)

// DefaultLabel is the section label used when Options.Label is empty.
const DefaultLabel = "Page"

// Record is the recognised text of one page.
type Record struct {
	Page       int     // 1-based page number in the source document
	Text       string  // Recognised text, may be empty
	Confidence float64 // Mean word confidence 0-100, 0 when unknown
}

// Options controls rendering.
type Options struct {
	Label string // Section label, e.g. "Page" or "Страница"
}

func (o Options) label() string {
	if o.Label == "" {
		return DefaultLabel
	}
	return o.Label
}

// Render returns the transcript for records. The input slice is not modified.
func Render(records []Record, opts Options) string {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int { return a.Page - b.Page })

	label := opts.label()
	var sb strings.Builder
	for _, r := range sorted {
		fmt.Fprintf(&sb, "## %s %d\n\n", label, r.Page)
		sb.WriteString(strings.TrimSpace(r.Text))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// WriteFile renders records to path as UTF-8 in a single write. Like the PDF
// splitter it writes nothing for zero records and reports whether a file was
// produced.
func WriteFile(path string, records []Record, opts Options) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}

	if err := fsutil.WriteFile(path, []byte(Render(records, opts))); err != nil {
		return false, fmt.Errorf("transcript: %w", err)
	}
	return true, nil
}

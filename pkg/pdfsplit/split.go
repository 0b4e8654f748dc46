package pdfsplit

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/gardar/scansplit/internal/fsutil"
)

var disableConfigDir sync.Once

// collectConfig returns a relaxed pdfcpu configuration that never touches
// the user's pdfcpu config directory.
func collectConfig() *model.Configuration {
	disableConfigDir.Do(func() { model.ConfigPath = "disable" })
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	// Classic xref tables keep the output readable by older parsers.
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// Split copies the given pages of doc, unchanged and in ascending order, into
// a new PDF at outPath. It reports whether a file was written: an empty page
// list writes nothing and is not an error.
func Split(doc *Document, pages []int, outPath string) (bool, error) {
	if len(pages) == 0 {
		return false, nil
	}
	if err := checkPages(pages, doc.NumPages()); err != nil {
		return false, err
	}

	selected := make([]string, len(pages))
	for i, p := range pages {
		selected[i] = strconv.Itoa(p)
	}

	// Build the whole document in memory so outPath is written exactly once.
	var buf bytes.Buffer
	if err := api.Collect(doc.section(), &buf, selected, collectConfig()); err != nil {
		return false, fmt.Errorf("collect pages %v: %w", pages, err)
	}
	if err := fsutil.WriteFile(outPath, buf.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}

// Outputs names the derivative documents written by SplitResult.
// An empty path skips that derivative.
type Outputs struct {
	TextPDF    string
	ScannedPDF string
}

// SplitReport tells which derivatives SplitResult actually wrote.
type SplitReport struct {
	TextWritten    bool
	ScannedWritten bool
}

// SplitResult writes the text pages and the scanned pages of res to their
// own documents.
func SplitResult(doc *Document, res Result, out Outputs) (SplitReport, error) {
	var report SplitReport
	var err error

	if out.TextPDF != "" {
		report.TextWritten, err = Split(doc, res.TextPages, out.TextPDF)
		if err != nil {
			return report, fmt.Errorf("text pages: %w", err)
		}
	}
	if out.ScannedPDF != "" {
		report.ScannedWritten, err = Split(doc, res.ScannedPages, out.ScannedPDF)
		if err != nil {
			return report, fmt.Errorf("scanned pages: %w", err)
		}
	}
	return report, nil
}

func checkPages(pages []int, total int) error {
	prev := 0
	for _, p := range pages {
		if p < 1 || p > total {
			return fmt.Errorf("%w: page %d out of range 1..%d", ErrInvalidPages, p, total)
		}
		if p <= prev {
			return fmt.Errorf("%w: page %d after page %d", ErrInvalidPages, p, prev)
		}
		prev = p
	}
	return nil
}

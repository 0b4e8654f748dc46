package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gardar/scansplit/pkg/pipeline"
)

// printReport writes the end-of-run summary.
func printReport(w io.Writer, r pipeline.Report) {
	fmt.Fprintf(w, "Pages: %d (policy %s, mode %s)\n", r.TotalPages, r.Policy, r.Mode)
	if r.NoClassifiablePages {
		fmt.Fprintln(w, "No classifiable pages, nothing written")
		return
	}
	fmt.Fprintf(w, "Text pages: %s\n", pageList(r.TextPages))
	fmt.Fprintf(w, "Scanned pages: %s\n", pageList(r.ScannedPages))
	if len(r.UnclassifiedPages) > 0 {
		fmt.Fprintf(w, "Unclassified pages: %s\n", pageList(r.UnclassifiedPages))
	}

	for _, f := range r.Failures {
		fmt.Fprintf(w, "Page %d failed (%s): %v\n", f.Page, f.Stage, f.Err)
	}

	for _, o := range r.Outputs {
		if o.Written {
			fmt.Fprintf(w, "Saved %s to %s (%d pages)\n", describe(o.Kind), o.Path, len(o.Pages))
		} else {
			fmt.Fprintf(w, "No %s written\n", describe(o.Kind))
		}
	}
}

func describe(kind pipeline.OutputKind) string {
	switch kind {
	case pipeline.OutputTextPDF:
		return "text pages PDF"
	case pipeline.OutputScannedPDF:
		return "scanned pages PDF"
	case pipeline.OutputTranscript:
		return "transcript"
	case pipeline.OutputSearchable:
		return "searchable PDF"
	}
	return string(kind)
}

func pageList(pages []int) string {
	if len(pages) == 0 {
		return "none"
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}

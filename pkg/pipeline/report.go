package pipeline

import (
	"github.com/gardar/scansplit/pkg/hocr"
	"github.com/gardar/scansplit/pkg/pdfsplit"
)

// Stage names the step of the scanned stream where a page failed.
type Stage string

const (
	StageRasterize Stage = "rasterize"
	StageRecognize Stage = "recognize"
)

// PageResult is the outcome of transcribing one scanned page: either text or
// a failure with its stage.
type PageResult struct {
	Page       int
	Text       string
	Confidence float64
	Stage      Stage // Set on failure
	Err        error

	image  []byte     // Encoded page image, kept for the searchable PDF
	layout *hocr.Page // Word boxes reported by the engine
}

// OK reports whether the page was recognised.
func (r PageResult) OK() bool { return r.Err == nil }

// PageFailure is a page left out of its output.
type PageFailure struct {
	Page  int
	Stage Stage
	Err   error
}

// OutputKind identifies one of the produced files.
type OutputKind string

const (
	OutputTextPDF    OutputKind = "text_pdf"
	OutputScannedPDF OutputKind = "scanned_pdf"
	OutputTranscript OutputKind = "transcript"
	OutputSearchable OutputKind = "searchable_pdf"
)

// OutputFile records whether an output was produced, and from which pages.
// Written is false when the output had no pages.
type OutputFile struct {
	Kind    OutputKind
	Path    string
	Pages   []int
	Written bool
}

// Report summarises one run.
type Report struct {
	RunID             string
	Input             string
	Policy            pdfsplit.Policy
	Mode              Mode
	TotalPages        int
	TextPages         []int
	ScannedPages      []int
	UnclassifiedPages []int
	Transcribed       []int // Scanned pages present in the transcript
	Outputs           []OutputFile
	Failures          []PageFailure

	// NoClassifiablePages is set when no page was text or scanned; nothing
	// is written in that case.
	NoClassifiablePages bool
}

// Output returns the entry for kind, if the run got that far.
func (r *Report) Output(kind OutputKind) (OutputFile, bool) {
	for _, o := range r.Outputs {
		if o.Kind == kind {
			return o, true
		}
	}
	return OutputFile{}, false
}

package pdfsplit

// Class is the classification tag of a single page.
type Class int

const (
	ClassUnclassified Class = iota
	ClassText
	ClassScanned
)

func (c Class) String() string {
	switch c {
	case ClassText:
		return "text"
	case ClassScanned:
		return "scanned"
	default:
		return "unclassified"
	}
}

// PageSource gives the classifier access to the pages of a document.
// Page numbers are 1-based.
type PageSource interface {
	NumPages() int
	PageText(page int) (string, error)
	PageHasImage(page int) (bool, error)
}

// PageVerdict records how a single page was classified and why.
type PageVerdict struct {
	Page       int   // 1-based page number
	Class      Class // Assigned classification
	TextLength int   // Trimmed text length in characters
	HasImage   bool  // Embedded raster image found (only probed when needed)
	TextErr    error // Text extraction failure, counted as empty text
}

// Result is the outcome of one classification pass. Every page list is
// strictly increasing.
type Result struct {
	TotalPages        int
	TextPages         []int
	ScannedPages      []int
	UnclassifiedPages []int
	Verdicts          []PageVerdict
}

// Empty reports whether there is nothing to split: no text and no scanned pages.
func (r Result) Empty() bool {
	return len(r.TextPages) == 0 && len(r.ScannedPages) == 0
}

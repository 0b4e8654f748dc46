package pdfsplit

import "errors"

var (
	// ErrDocumentUnreadable is returned when the source cannot be opened or parsed.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrNoClassifiablePages reports that both the text and the scanned page
	// lists are empty. It describes an outcome, not a failure.
	ErrNoClassifiablePages = errors.New("no classifiable pages")

	// ErrInvalidPages is returned by Split for page lists that are not strictly
	// increasing or fall outside the document.
	ErrInvalidPages = errors.New("invalid page selection")
)

package pdfsplit

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// TextLength returns the number of characters left after normalising s to
// NFC and trimming surrounding whitespace.
func TextLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(norm.NFC.String(s)))
}

// Inspect classifies a single page. Extraction failures never escape: a text
// failure counts as an empty page and a resource failure as "no image".
func Inspect(src PageSource, page int, cfg Config) PageVerdict {
	v := PageVerdict{Page: page}

	text, err := src.PageText(page)
	if err != nil {
		v.TextErr = err
		text = ""
	}
	v.TextLength = TextLength(text)
	if v.TextLength > cfg.TextThreshold {
		v.Class = ClassText
		return v
	}

	if cfg.Policy == PolicyFallback {
		v.Class = ClassScanned
		return v
	}

	found, err := src.PageHasImage(page)
	v.HasImage = err == nil && found
	if v.HasImage {
		v.Class = ClassScanned
	} else {
		v.Class = ClassUnclassified
	}
	return v
}

package ocr

import (
	"strings"

	"golang.org/x/text/language"
)

// LanguageHints converts Tesseract language codes into BCP 47 tags, keeping
// order and dropping duplicates. Script variants such as "chi_sim" map to
// their base language; codes without a language ("osd", "equ") are skipped.
func LanguageHints(langs []string) []string {
	seen := make(map[string]bool)
	hints := make([]string, 0, len(langs))
	for _, code := range langs {
		code, _, _ = strings.Cut(code, "_")
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		base, conf := tag.Base()
		if conf == language.No {
			continue
		}
		hint := base.String()
		if !seen[hint] {
			seen[hint] = true
			hints = append(hints, hint)
		}
	}
	return hints
}

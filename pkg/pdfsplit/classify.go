package pdfsplit

import (
	"context"
)

// Classify inspects every page of src once, in page order, and returns a new
// Result. The source is never modified.
func Classify(ctx context.Context, src PageSource, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	total := src.NumPages()
	res := Result{
		TotalPages: total,
		Verdicts:   make([]PageVerdict, 0, total),
	}

	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		v := Inspect(src, page, cfg)
		res.Verdicts = append(res.Verdicts, v)

		switch v.Class {
		case ClassText:
			res.TextPages = append(res.TextPages, page)
		case ClassScanned:
			res.ScannedPages = append(res.ScannedPages, page)
		default:
			res.UnclassifiedPages = append(res.UnclassifiedPages, page)
			switch cfg.Unclassified {
			case UnclassifiedText:
				res.TextPages = append(res.TextPages, page)
			case UnclassifiedScanned:
				res.ScannedPages = append(res.ScannedPages, page)
			}
		}
	}

	return res, nil
}

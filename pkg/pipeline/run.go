package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardar/scansplit/internal/fsutil"
	"github.com/gardar/scansplit/pkg/pdfocr"
	"github.com/gardar/scansplit/pkg/pdfsplit"
	"github.com/gardar/scansplit/pkg/transcript"
)

// Run processes the document at input.
//
// Document-level failures (missing or unreadable input, failed output
// writes, cancellation) are returned as errors; only the first two are
// guaranteed to happen before any output exists. Page-level failures are
// collected in Report.Failures and never stop sibling pages.
func (p *Pipeline) Run(ctx context.Context, input string) (*Report, error) {
	report := &Report{
		RunID:  uuid.NewString(),
		Input:  input,
		Policy: p.cfg.Split.Policy,
		Mode:   p.cfg.Mode,
	}
	log := p.log.With(zap.String("run_id", report.RunID), zap.String("input", input))

	if _, err := os.Stat(input); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrInputMissing, input)
		}
		log.Error("input not available", zap.Error(err))
		return report, err
	}

	doc, err := pdfsplit.Open(input)
	if err != nil {
		log.Error("cannot read input", zap.Error(err))
		return report, err
	}
	defer doc.Close()

	res, err := pdfsplit.Classify(ctx, doc, p.cfg.Split)
	if err != nil {
		return report, fmt.Errorf("classify: %w", err)
	}
	report.TotalPages = res.TotalPages
	report.TextPages = res.TextPages
	report.ScannedPages = res.ScannedPages
	report.UnclassifiedPages = res.UnclassifiedPages

	for _, v := range res.Verdicts {
		fields := []zap.Field{
			zap.Int("page", v.Page),
			zap.Stringer("class", v.Class),
			zap.Int("text_length", v.TextLength),
			zap.Bool("has_image", v.HasImage),
		}
		if v.TextErr != nil {
			fields = append(fields, zap.NamedError("text_error", v.TextErr))
		}
		log.Debug("page classified", fields...)
	}
	log.Info("document classified",
		zap.Int("pages", res.TotalPages),
		zap.Ints("text_pages", res.TextPages),
		zap.Ints("scanned_pages", res.ScannedPages),
		zap.Ints("unclassified_pages", res.UnclassifiedPages),
	)

	if res.Empty() {
		report.NoClassifiablePages = true
		log.Warn("nothing written", zap.Error(pdfsplit.ErrNoClassifiablePages))
		return report, nil
	}

	// The rasterizer is opened before any output exists.
	var pool *rasterPool
	if p.cfg.Mode == ModeOCR && len(res.ScannedPages) > 0 {
		pool, err = p.openRasterPool(input)
		if err != nil {
			log.Error("rasterizer unavailable", zap.Error(err))
			return report, err
		}
		defer pool.close()
	}

	if err := p.splitOutput(doc, OutputTextPDF, p.cfg.Outputs.TextPDF, res.TextPages, report, log); err != nil {
		return report, err
	}

	switch p.cfg.Mode {
	case ModeArchive:
		if err := p.splitOutput(doc, OutputScannedPDF, p.cfg.Outputs.ScannedPDF, res.ScannedPages, report, log); err != nil {
			return report, err
		}
	case ModeOCR:
		if err := p.transcriptOutput(ctx, pool, res.ScannedPages, report, log); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (p *Pipeline) splitOutput(doc *pdfsplit.Document, kind OutputKind, path string, pages []int, report *Report, log *zap.Logger) error {
	if path == "" {
		return nil
	}
	written, err := pdfsplit.Split(doc, pages, path)
	if err != nil {
		log.Error("split failed", zap.String("output", string(kind)), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s: %w", kind, err)
	}
	report.Outputs = append(report.Outputs, OutputFile{Kind: kind, Path: path, Pages: pages, Written: written})
	logOutput(log, kind, path, pages, written)
	return nil
}

func (p *Pipeline) transcriptOutput(ctx context.Context, pool *rasterPool, pages []int, report *Report, log *zap.Logger) error {
	results := p.transcribe(ctx, pool, pages, log)
	// A cancelled run leaves no partial transcript behind.
	if err := ctx.Err(); err != nil {
		return err
	}

	var records []transcript.Record
	for _, r := range results {
		if !r.OK() {
			report.Failures = append(report.Failures, PageFailure{Page: r.Page, Stage: r.Stage, Err: r.Err})
			continue
		}
		records = append(records, transcript.Record{Page: r.Page, Text: r.Text, Confidence: r.Confidence})
		report.Transcribed = append(report.Transcribed, r.Page)
	}

	if path := p.cfg.Outputs.Transcript; path != "" {
		written, err := transcript.WriteFile(path, records, p.cfg.Transcript)
		if err != nil {
			log.Error("transcript write failed", zap.String("path", path), zap.Error(err))
			return err
		}
		report.Outputs = append(report.Outputs, OutputFile{Kind: OutputTranscript, Path: path, Pages: report.Transcribed, Written: written})
		logOutput(log, OutputTranscript, path, report.Transcribed, written)
	}

	if path := p.cfg.Outputs.SearchablePDF; path != "" {
		if err := p.searchableOutput(path, results, report, log); err != nil {
			return err
		}
	}
	return nil
}

// searchableOutput assembles the recognised pages into an image PDF with an
// invisible text layer. Pages whose image could not be encoded are left out;
// like the transcript it is skipped when no page remains.
func (p *Pipeline) searchableOutput(path string, results []PageResult, report *Report, log *zap.Logger) error {
	var pages []pdfocr.Page
	var numbers []int
	for _, r := range results {
		if r.OK() && r.image != nil {
			pages = append(pages, pdfocr.Page{Number: r.Page, Image: r.image, Layout: r.layout})
			numbers = append(numbers, r.Page)
		}
	}

	written := false
	if len(pages) > 0 {
		out, err := pdfocr.Assemble(pages, p.cfg.Searchable)
		if err != nil {
			log.Error("searchable pdf failed", zap.String("path", path), zap.Error(err))
			return fmt.Errorf("%s: %w", OutputSearchable, err)
		}
		if out.Unencodable > 0 {
			log.Warn("words missing from the text layer, configure a UTF-8 font",
				zap.Int("words", out.Words), zap.Int("unencodable", out.Unencodable))
		}
		if err := fsutil.WriteFile(path, out.PDF); err != nil {
			log.Error("searchable pdf write failed", zap.String("path", path), zap.Error(err))
			return err
		}
		written = true
	}
	report.Outputs = append(report.Outputs, OutputFile{Kind: OutputSearchable, Path: path, Pages: numbers, Written: written})
	logOutput(log, OutputSearchable, path, numbers, written)
	return nil
}

func logOutput(log *zap.Logger, kind OutputKind, path string, pages []int, written bool) {
	if written {
		log.Info("output written", zap.String("output", string(kind)), zap.String("path", path), zap.Ints("pages", pages))
		return
	}
	log.Info("output skipped, no pages", zap.String("output", string(kind)), zap.String("path", path))
}

package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/gardar/scansplit/pkg/ocr"
	"github.com/gardar/scansplit/pkg/pdfocr"
	"github.com/gardar/scansplit/pkg/raster"
)

// openRasterPool opens the first rasterizer over path. A backend that cannot
// open the document at all fails the run.
func (p *Pipeline) openRasterPool(path string) (*rasterPool, error) {
	pool := &rasterPool{open: p.deps.Rasterizers, path: path}
	first, err := pool.get()
	if err != nil {
		return nil, fmt.Errorf("open rasterizer: %w", err)
	}
	pool.put(first)
	return pool, nil
}

// transcribe rasterises and recognises pages concurrently and returns one
// result per page, in the order of pages.
func (p *Pipeline) transcribe(ctx context.Context, pool *rasterPool, pages []int, log *zap.Logger) []PageResult {
	if len(pages) == 0 {
		return nil
	}

	workers := min(p.cfg.Workers, len(pages))
	ocrSlots := p.cfg.OCRConcurrency
	if ocrSlots == 0 {
		ocrSlots = workers
	}
	sem := semaphore.NewWeighted(int64(ocrSlots))

	results := make([]PageResult, len(pages))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, page := range pages {
		g.Go(func() error {
			results[i] = p.transcribePage(ctx, pool, sem, page, log)
			return nil
		})
	}
	g.Wait()

	return results
}

// transcribePage runs one page through both stages. PageTimeout applies to
// each stage separately; time spent waiting for an OCR slot is not counted.
func (p *Pipeline) transcribePage(ctx context.Context, pool *rasterPool, sem *semaphore.Weighted, page int, log *zap.Logger) PageResult {
	log = log.With(zap.Int("page", page))

	fail := func(stage Stage, err error) PageResult {
		log.Warn("page dropped", zap.String("stage", string(stage)), zap.Error(err))
		return PageResult{Page: page, Stage: stage, Err: err}
	}

	img, err := p.rasterizePage(ctx, pool, page)
	if err != nil {
		return fail(StageRasterize, err)
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		return fail(StageRecognize, fmt.Errorf("%w: waiting for an OCR slot: %w", ocr.ErrRecognitionFailed, err))
	}
	res, err := p.recognizePage(ctx, img)
	sem.Release(1)
	if err != nil {
		return fail(StageRecognize, err)
	}

	log.Debug("page recognised", zap.Int("chars", len([]rune(res.Text))), zap.Float64("confidence", res.Confidence))
	out := PageResult{Page: page, Text: res.Text, Confidence: res.Confidence, layout: res.Layout}
	if p.cfg.Outputs.SearchablePDF != "" {
		data, err := pdfocr.EncodeImage(img, p.cfg.Searchable.JPEGQuality)
		if err != nil {
			log.Warn("page image left out of the searchable pdf", zap.Error(err))
		} else {
			out.image = data
		}
	}
	return out
}

func (p *Pipeline) rasterizePage(ctx context.Context, pool *rasterPool, page int) (image.Image, error) {
	r, err := pool.get()
	if err != nil {
		return nil, err
	}
	defer pool.put(r)

	ctx, cancel := p.stageContext(ctx)
	defer cancel()
	return r.Rasterize(ctx, page)
}

func (p *Pipeline) recognizePage(ctx context.Context, img image.Image) (ocr.Result, error) {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()
	return p.deps.Engine.Recognize(ctx, img)
}

// stageContext bounds one stage of a page by PageTimeout.
func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.PageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.cfg.PageTimeout)
}

// rasterPool hands out rasterizers so that no two workers share one. It
// opens new ones on demand; with a bounded worker count it never holds more
// than one per worker.
type rasterPool struct {
	open func(path string) (raster.Rasterizer, error)
	path string

	mu   sync.Mutex
	free []raster.Rasterizer
	all  []raster.Rasterizer
}

func (rp *rasterPool) get() (raster.Rasterizer, error) {
	rp.mu.Lock()
	if n := len(rp.free); n > 0 {
		r := rp.free[n-1]
		rp.free = rp.free[:n-1]
		rp.mu.Unlock()
		return r, nil
	}
	rp.mu.Unlock()

	r, err := rp.open(rp.path)
	if err != nil {
		return nil, err
	}
	rp.mu.Lock()
	rp.all = append(rp.all, r)
	rp.mu.Unlock()
	return r, nil
}

func (rp *rasterPool) put(r raster.Rasterizer) {
	rp.mu.Lock()
	rp.free = append(rp.free, r)
	rp.mu.Unlock()
}

func (rp *rasterPool) close() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	for _, r := range rp.all {
		r.Close()
	}
	rp.all, rp.free = nil, nil
}

package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Poppler renders pages by running pdftoppm and decoding its PNG output.
type Poppler struct {
	path string
	opts Options
}

// NewPoppler checks that the document and the pdftoppm binary exist.
func NewPoppler(path string, opts Options) (*Poppler, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if opts.PdftoppmPath == "" {
		opts.PdftoppmPath = "pdftoppm"
	}
	bin, err := exec.LookPath(opts.PdftoppmPath)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm not available: %w", err)
	}
	opts.PdftoppmPath = bin
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	return &Poppler{path: path, opts: opts}, nil
}

// Rasterize renders a 1-based page.
func (p *Poppler) Rasterize(ctx context.Context, page int) (image.Image, error) {
	if page < 1 {
		return nil, pageError(page, fmt.Errorf("page numbers start at 1"))
	}
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.opts.PdftoppmPath, popplerArgs(p.path, page, p.opts.DPI)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, pageError(page, fmt.Errorf("pdftoppm: %w: %s", err, msg))
		}
		return nil, pageError(page, fmt.Errorf("pdftoppm: %w", err))
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, pageError(page, fmt.Errorf("decode pdftoppm output: %w", err))
	}
	return img, nil
}

// Close is a no-op; every page runs in its own process.
func (p *Poppler) Close() error { return nil }

// popplerArgs renders exactly one page as PNG to stdout.
func popplerArgs(path string, page, dpi int) []string {
	n := strconv.Itoa(page)
	return []string{
		"-f", n,
		"-l", n,
		"-r", strconv.Itoa(dpi),
		"-png",
		"-singlefile",
		path,
	}
}

package raster

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"testing"

	"github.com/gardar/scansplit/internal/pdftest"
)

func TestPopplerArgs(t *testing.T) {
	got := popplerArgs("/tmp/in.pdf", 7, 300)
	want := []string{"-f", "7", "-l", "7", "-r", "300", "-png", "-singlefile", "/tmp/in.pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("popplerArgs() = %v, want %v", got, want)
	}
}

func TestParseBackend(t *testing.T) {
	for _, s := range []string{"fitz", "poppler"} {
		if b, err := ParseBackend(s); err != nil || string(b) != s {
			t.Errorf("ParseBackend(%q) = %q, %v", s, b, err)
		}
	}
	if _, err := ParseBackend("ghostscript"); err == nil {
		t.Errorf("ParseBackend(ghostscript) = nil error")
	}
	if _, err := Open("ghostscript", "in.pdf", DefaultOptions()); err == nil {
		t.Errorf("Open(ghostscript) = nil error")
	}
}

func TestFitzRasterize(t *testing.T) {
	path := pdftest.WriteFile(t, t.TempDir(), "in.pdf", pdftest.TextPage(40), pdftest.ImagePage())

	opts := DefaultOptions()
	opts.DPI = 72
	r, err := Open(BackendFitz, path, opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	img, err := r.Rasterize(context.Background(), 2)
	if err != nil {
		t.Fatalf("Rasterize(2) error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 612 || b.Dy() != 792 {
		t.Errorf("page size = %dx%d, want 612x792 at 72 DPI", b.Dx(), b.Dy())
	}

	for _, page := range []int{0, 3} {
		if _, err := r.Rasterize(context.Background(), page); !errors.Is(err, ErrRasterizationFailed) {
			t.Errorf("Rasterize(%d) error = %v, want ErrRasterizationFailed", page, err)
		}
	}
}

func TestFitzRasterizeCancelled(t *testing.T) {
	path := pdftest.WriteFile(t, t.TempDir(), "in.pdf", pdftest.ImagePage())
	r, err := OpenFitz(path, DefaultOptions())
	if err != nil {
		t.Fatalf("OpenFitz() error = %v", err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Rasterize(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("Rasterize() error = %v, want context.Canceled", err)
	}
}

func TestPopplerRasterize(t *testing.T) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		t.Skip("pdftoppm not installed")
	}
	path := pdftest.WriteFile(t, t.TempDir(), "in.pdf", pdftest.ImagePage(), pdftest.BlankPage())

	opts := DefaultOptions()
	opts.DPI = 36
	r, err := Open(BackendPoppler, path, opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	img, err := r.Rasterize(context.Background(), 1)
	if err != nil {
		t.Fatalf("Rasterize(1) error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 306 || b.Dy() != 396 {
		t.Errorf("page size = %dx%d, want 306x396 at 36 DPI", b.Dx(), b.Dy())
	}

	if _, err := r.Rasterize(context.Background(), 9); !errors.Is(err, ErrRasterizationFailed) {
		t.Errorf("Rasterize(9) error = %v, want ErrRasterizationFailed", err)
	}
}

func TestNewPopplerMissingDocument(t *testing.T) {
	if _, err := NewPoppler("/nonexistent/in.pdf", DefaultOptions()); err == nil {
		t.Fatalf("NewPoppler() = nil error for a missing file")
	}
}

package pdfsplit

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/scansplit/internal/pdftest"
)

func openFixture(t *testing.T, pages ...pdftest.Page) *Document {
	t.Helper()
	doc, err := OpenBytes(pdftest.Build(pages...))
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	t.Cleanup(func() { doc.Close() })
	return doc
}

func TestDocumentPages(t *testing.T) {
	doc := openFixture(t,
		pdftest.TextPage(500),
		pdftest.ImagePage(),
		pdftest.BlankPage(),
		pdftest.Page{FormImage: true},
	)

	if got := doc.NumPages(); got != 4 {
		t.Fatalf("NumPages() = %d, want 4", got)
	}

	text, err := doc.PageText(1)
	if err != nil {
		t.Fatalf("PageText(1) error = %v", err)
	}
	if got := TextLength(text); got != 500 {
		t.Errorf("TextLength(page 1) = %d, want 500", got)
	}

	wantImage := map[int]bool{1: false, 2: true, 3: false, 4: true}
	for page, want := range wantImage {
		got, err := doc.PageHasImage(page)
		if err != nil {
			t.Fatalf("PageHasImage(%d) error = %v", page, err)
		}
		if got != want {
			t.Errorf("PageHasImage(%d) = %v, want %v", page, got, want)
		}
	}
}

func TestDocumentPageOutOfRange(t *testing.T) {
	doc := openFixture(t, pdftest.BlankPage())
	for _, page := range []int{0, 2} {
		if _, err := doc.PageText(page); err == nil {
			t.Errorf("PageText(%d) = nil error", page)
		}
		if _, err := doc.PageHasImage(page); err == nil {
			t.Errorf("PageHasImage(%d) = nil error", page)
		}
	}
}

func TestOpenUnreadable(t *testing.T) {
	if _, err := OpenBytes([]byte("this is not a pdf")); !errors.Is(err, ErrDocumentUnreadable) {
		t.Errorf("OpenBytes(garbage) error = %v, want ErrDocumentUnreadable", err)
	}

	truncated := pdftest.Build(pdftest.TextPage(200))
	if _, err := OpenBytes(truncated[:len(truncated)/2]); !errors.Is(err, ErrDocumentUnreadable) {
		t.Errorf("OpenBytes(truncated) error = %v, want ErrDocumentUnreadable", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.pdf")
	if _, err := Open(missing); !errors.Is(err, ErrDocumentUnreadable) {
		t.Errorf("Open(missing) error = %v, want ErrDocumentUnreadable", err)
	}
}

func TestOpenFromDisk(t *testing.T) {
	path := pdftest.WriteFile(t, t.TempDir(), "in.pdf", pdftest.TextPage(150), pdftest.ImagePage())
	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer doc.Close()

	if doc.Path() != path {
		t.Errorf("Path() = %q, want %q", doc.Path(), path)
	}
	if doc.NumPages() != 2 {
		t.Errorf("NumPages() = %d, want 2", doc.NumPages())
	}
}

func TestClassifyDocument(t *testing.T) {
	pages := []pdftest.Page{
		pdftest.TextPage(500),
		pdftest.ImagePage(),
		pdftest.BlankPage(),
	}

	tests := []struct {
		policy      Policy
		wantText    []int
		wantScanned []int
	}{
		{PolicyImageCheck, []int{1}, []int{2}},
		{PolicyFallback, []int{1}, []int{2, 3}},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			res, err := Classify(context.Background(), openFixture(t, pages...), withPolicy(tt.policy))
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if !reflect.DeepEqual(res.TextPages, tt.wantText) || !reflect.DeepEqual(res.ScannedPages, tt.wantScanned) {
				t.Fatalf("got text %v scanned %v, want text %v scanned %v",
					res.TextPages, res.ScannedPages, tt.wantText, tt.wantScanned)
			}
		})
	}
}

func TestClassifyDocumentThreshold(t *testing.T) {
	doc := openFixture(t, pdftest.TextPage(100), pdftest.TextPage(101))
	res, err := Classify(context.Background(), doc, DefaultConfig())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !reflect.DeepEqual(res.TextPages, []int{2}) {
		t.Errorf("TextPages = %v, want [2]", res.TextPages)
	}
	if !reflect.DeepEqual(res.UnclassifiedPages, []int{1}) {
		t.Errorf("UnclassifiedPages = %v, want [1]", res.UnclassifiedPages)
	}
}

func TestClassifyTextHeavyPageWithImage(t *testing.T) {
	doc := openFixture(t, pdftest.Page{Text: strings.Repeat("b", 300), Image: true})
	res, err := Classify(context.Background(), doc, DefaultConfig())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !reflect.DeepEqual(res.TextPages, []int{1}) || len(res.ScannedPages) != 0 {
		t.Fatalf("got text %v scanned %v, want a single text page", res.TextPages, res.ScannedPages)
	}
}

func grayPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 16)
	}
	img.SetGray(0, 0, color.Gray{Y: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// TestClassifyGeneratedDocument runs the classifier over output from a
// regular PDF generator with compressed content streams.
func TestClassifyGeneratedDocument(t *testing.T) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(true)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 6)
	for i := 0; i < 4; i++ {
		pdf.Text(20, float64(40+12*i), strings.Repeat("generated text line ", 4))
	}

	pdf.AddPage()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("scan", opts, bytes.NewReader(grayPNG(t)))
	pdf.ImageOptions("scan", 0, 0, 595, 842, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("fpdf output: %v", err)
	}

	doc, err := OpenBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	res, err := Classify(context.Background(), doc, DefaultConfig())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !reflect.DeepEqual(res.TextPages, []int{1}) {
		t.Errorf("TextPages = %v, want [1] (verdicts %+v)", res.TextPages, res.Verdicts)
	}
	if !reflect.DeepEqual(res.ScannedPages, []int{2}) {
		t.Errorf("ScannedPages = %v, want [2] (verdicts %+v)", res.ScannedPages, res.Verdicts)
	}
}

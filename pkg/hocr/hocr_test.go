package hocr

import (
	"math"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

const tesseractPage = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en" lang="en">
 <head>
  <title></title>
  <meta http-equiv="Content-Type" content="text/html;charset=utf-8"/>
  <meta name='ocr-system' content='tesseract 5.3.0' />
  <meta name='ocr-capabilities' content='ocr_page ocr_carea ocr_par ocr_line ocrx_word ocrp_wconf'/>
 </head>
 <body>
  <div class='ocr_page' id='page_1' title='image "unknown"; bbox 0 0 2480 3508; ppageno 0; scan_res 300 300'>
   <div class='ocr_carea' id='block_1_1' title="bbox 200 180 1600 320">
    <p class='ocr_par' id='par_1_1' lang='rus' title="bbox 200 180 1600 320">
     <span class='ocr_header' id='line_1_1' title="bbox 200 180 1600 240; baseline 0 -10; x_size 60">
      <span class='ocrx_word' id='word_1_1' title='bbox 200 180 700 240; x_wconf 96'>Сертификат</span>
      <span class='ocrx_word' id='word_1_2' title='bbox 740 180 1000 240; x_wconf 90'>№</span>
      <span class='ocrx_word' id='word_1_3' title='bbox 1040 180 1600 240; x_wconf 84'>RU-0042</span>
     </span>
     <span class='ocr_line' id='line_1_2' title="bbox 200 260 1600 320; baseline 0 -8">
      <span class='ocrx_word' id='word_1_4' title='bbox 200 260 600 320; x_wconf 70'><strong>Issued</strong></span>
      <span class='ocrx_word' id='word_1_5' title='bbox 640 260 900 320; x_wconf 80'>2023</span>
     </span>
    </p>
   </div>
   <div class='ocr_carea' id='block_1_2' title="bbox 200 400 1600 460">
    <p class='ocr_par' id='par_1_2' lang='eng' title="bbox 200 400 1600 460">
     <span class='ocr_line' id='line_1_3' title="bbox 200 400 1600 460">
      <span class='ocrx_word' id='word_1_6' title='bbox 200 400 600 460; x_wconf 100'>Valid</span>
      <span class='ocrx_word' id='word_1_7' title='bbox 620 400 640 460; x_wconf 0'> </span>
     </span>
    </p>
   </div>
  </div>
 </body>
</html>`

func TestParseTesseractPage(t *testing.T) {
	doc, err := Parse([]byte(tesseractPage))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := doc.Metadata["ocr-system"]; got != "tesseract 5.3.0" {
		t.Errorf("ocr-system = %q", got)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("len(Pages) = %d, want 1", len(doc.Pages))
	}

	page := doc.Pages[0]
	if page.ID != "page_1" || page.BBox != (BoundingBox{0, 0, 2480, 3508}) || page.Image != "unknown" {
		t.Errorf("page = %+v", page)
	}
	if len(page.Areas) != 2 {
		t.Fatalf("len(Areas) = %d, want 2", len(page.Areas))
	}
	header := page.Areas[0].Paragraphs[0].Lines[0]
	if header.Class != "ocr_header" || header.Baseline != "0 -10" {
		t.Errorf("header line = %+v", header)
	}
	if page.Areas[0].Paragraphs[0].Lang != "rus" {
		t.Errorf("paragraph lang = %q, want rus", page.Areas[0].Paragraphs[0].Lang)
	}

	want := "Сертификат № RU-0042\nIssued 2023\n\nValid"
	if got := page.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if got := doc.Text(); got != want {
		t.Errorf("Document.Text() = %q, want %q", got, want)
	}

	mean, ok := doc.MeanConfidence()
	if !ok {
		t.Fatalf("MeanConfidence() ok = false")
	}
	if wantMean := (96.0 + 90 + 84 + 70 + 80 + 100) / 6; math.Abs(mean-wantMean) > 1e-9 {
		t.Errorf("MeanConfidence() = %v, want %v", mean, wantMean)
	}
}

func TestParseAddsImplicitParents(t *testing.T) {
	const data = `<html><body>
<div class="ocr_page" title="bbox 0 0 100 100">
  <span class="ocr_line"><span class="ocrx_word" title="x_wconf 50">loose</span> <span class="ocrx_word">line</span></span>
  <span class="ocrx_word" title="x_wconf 70">orphan</span>
  <p class="ocr_par"><span class="ocr_line"><span class="ocrx_word">para</span></span></p>
</div>
<div class="ocr_page"><span class="ocrx_word">second</span></div>
</body></html>`

	doc, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("len(Pages) = %d, want 2", len(doc.Pages))
	}
	if got, want := doc.Pages[0].Text(), "loose line\norphan\n\npara"; got != want {
		t.Errorf("page 1 Text() = %q, want %q", got, want)
	}
	if got := doc.Pages[1].Text(); got != "second" {
		t.Errorf("page 2 Text() = %q, want %q", got, "second")
	}
}

func TestParseLegacyCharset(t *testing.T) {
	src := `<html><head><meta http-equiv="Content-Type" content="text/html; charset=windows-1251"></head><body>` +
		`<div class="ocr_page"><span class="ocrx_word" title="x_wconf 88">Привет</span></div></body></html>`
	encoded, err := charmap.Windows1251.NewEncoder().String(src)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	doc, err := Parse([]byte(encoded))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := doc.Text(); got != "Привет" {
		t.Errorf("Text() = %q, want %q", got, "Привет")
	}
}

func TestParseWithoutPages(t *testing.T) {
	if _, err := Parse([]byte("<html><body><p>plain</p></body></html>")); err == nil {
		t.Fatalf("Parse() = nil error for a document without ocr_page")
	}
}

func TestMeanConfidenceWithoutWords(t *testing.T) {
	doc, err := Parse([]byte(`<div class="ocr_page"></div>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := doc.MeanConfidence(); ok {
		t.Errorf("MeanConfidence() ok = true for an empty page")
	}
	if doc.Text() != "" {
		t.Errorf("Text() = %q, want empty", doc.Text())
	}
}

func TestParseTitle(t *testing.T) {
	props := ParseTitle(`bbox 1 2 3 4; x_wconf 95;; baseline 0.01 -5 `)
	if got := strings.Join(props["bbox"], ","); got != "1,2,3,4" {
		t.Errorf("bbox = %q", got)
	}
	if got := strings.Join(props["baseline"], ","); got != "0.01,-5" {
		t.Errorf("baseline = %q", got)
	}
	if got := parseBBox(props); got != (BoundingBox{1, 2, 3, 4}) {
		t.Errorf("parseBBox() = %+v", got)
	}
}

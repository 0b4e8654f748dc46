package hocr

// Document is a parsed hOCR file.
type Document struct {
	Title    string            // Document title
	Language string            // Document language
	Metadata map[string]string // ocr-system, ocr-langs and similar meta tags
	Pages    []Page
}

// Page corresponds to class 'ocr_page'.
type Page struct {
	ID     string
	Number int    // ppageno property, 0-based as written by Tesseract
	Image  string // image property
	BBox   BoundingBox
	Areas  []Area
}

// Area corresponds to class 'ocr_carea'.
type Area struct {
	ID         string
	BBox       BoundingBox
	Paragraphs []Paragraph
}

// Paragraph corresponds to class 'ocr_par'.
type Paragraph struct {
	ID    string
	Lang  string
	BBox  BoundingBox
	Lines []Line
}

// Line is any of the line-level classes: ocr_line, ocr_header, ocr_caption
// or ocr_textfloat.
type Line struct {
	ID       string
	Class    string
	BBox     BoundingBox
	Baseline string
	Words    []Word
}

// Word corresponds to class 'ocrx_word'.
type Word struct {
	ID         string
	Text       string
	BBox       BoundingBox
	Confidence float64 // x_wconf, 0-100
	Lang       string
}

// BoundingBox holds the 'bbox' property: top-left and bottom-right corners.
type BoundingBox struct {
	X1, Y1, X2, Y2 float64
}

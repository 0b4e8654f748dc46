package pdfocr

// Config holds the assembly options.
type Config struct {
	DPI         int    // Resolution the page images were rendered at
	LayerName   string // Base name of the OCR layer, the page number is appended
	JPEGQuality int    // Used by callers of EncodeImage, 0 for the library default
	Debug       bool   // Draw the text in red with word boxes instead of hiding it
	Font        FontConfig
}

// DefaultConfig returns 300 DPI pages with the core Helvetica font.
func DefaultConfig() Config {
	return Config{
		DPI:         300,
		LayerName:   "OCR Text",
		JPEGQuality: 85,
		Font:        DefaultFont,
	}
}

// FontConfig contains font settings for OCR text rendering.
type FontConfig struct {
	Name        string  // Font family name
	Style       string  // "", "B", "I" or "BI"
	Size        float64 // Base font size before fitting to the word box
	AscentRatio float64 // Share of the font size above the baseline
	// UTF8File is a TrueType font registered as Name. Without it the core
	// font only covers Windows-1252, so Cyrillic words are skipped.
	UTF8File string
}

// DefaultFont is the core Helvetica font.
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Size:        10,
	AscentRatio: 0.718,
}

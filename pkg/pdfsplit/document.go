package pdfsplit

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

// maxFormDepth bounds the descent into nested form XObjects while looking for
// images, which also guards against self-referencing forms.
const maxFormDepth = 4

// Document is a read-only view over a source PDF.
//
// Page accessors are not safe for concurrent use; callers that fan out page
// work open one Document per goroutine or serialise access.
type Document struct {
	path   string
	src    io.ReaderAt
	size   int64
	closer io.Closer
	reader *pdf.Reader
	pages  int
}

// Open opens the PDF at path. Any failure, including a missing file, is
// reported as ErrDocumentUnreadable.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentUnreadable, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", ErrDocumentUnreadable, err)
	}

	doc, err := newDocument(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	doc.path = path
	doc.closer = f
	return doc, nil
}

// OpenBytes opens a PDF held in memory.
func OpenBytes(data []byte) (*Document, error) {
	return newDocument(bytes.NewReader(data), int64(len(data)))
}

func newDocument(src io.ReaderAt, size int64) (doc *Document, err error) {
	// The parser panics on some broken trailers and page trees.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrDocumentUnreadable, r)
		}
	}()

	reader, err := pdf.NewReader(src, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentUnreadable, err)
	}
	return &Document{
		src:    src,
		size:   size,
		reader: reader,
		pages:  reader.NumPage(),
	}, nil
}

// Path returns the file the document was opened from, or "" for in-memory documents.
func (d *Document) Path() string { return d.path }

// NumPages returns the page count.
func (d *Document) NumPages() int { return d.pages }

// Close releases the underlying file, if any.
func (d *Document) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// PageText extracts the text content of a page.
func (d *Document) PageText(page int) (text string, err error) {
	p, err := d.page(page)
	if err != nil {
		return "", err
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: text extraction: %v", page, r)
		}
	}()
	return p.GetPlainText(nil)
}

// PageHasImage reports whether the page resources reference an image
// XObject, directly or through nested form XObjects.
func (d *Document) PageHasImage(page int) (found bool, err error) {
	p, err := d.page(page)
	if err != nil {
		return false, err
	}
	defer func() {
		if r := recover(); r != nil {
			found, err = false, fmt.Errorf("page %d: resources: %v", page, r)
		}
	}()
	return hasImage(p.Resources(), maxFormDepth), nil
}

func (d *Document) page(page int) (pdf.Page, error) {
	if page < 1 || page > d.pages {
		return pdf.Page{}, fmt.Errorf("page %d out of range 1..%d", page, d.pages)
	}
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return pdf.Page{}, fmt.Errorf("page %d: missing page object", page)
	}
	return p, nil
}

// section returns a fresh reader over the raw source bytes.
func (d *Document) section() *io.SectionReader {
	return io.NewSectionReader(d.src, 0, d.size)
}

func hasImage(resources pdf.Value, depth int) bool {
	xobjects := resources.Key("XObject")
	for _, name := range xobjects.Keys() {
		xobj := xobjects.Key(name)
		switch xobj.Key("Subtype").Name() {
		case "Image":
			return true
		case "Form":
			if depth > 0 && hasImage(xobj.Key("Resources"), depth-1) {
				return true
			}
		}
	}
	return false
}

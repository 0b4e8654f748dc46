// Package pdftest builds small, uncompressed PDF documents for tests.
//
// Every page gets its own resource dictionary, which lets tests put an image
// on one page and leave its neighbours image-free. Generators such as fpdf share
// one resource dictionary across all pages and cannot express that.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Page describes the content of one generated page.
type Page struct {
	Text      string // shown with a single Tj operator, ASCII only
	Image     bool   // image XObject referenced from the page resources
	FormImage bool   // image nested inside a form XObject
}

// TextPage returns a page carrying n visible characters and no image.
func TextPage(n int) Page {
	return Page{Text: strings.Repeat("a", n)}
}

// ImagePage returns an image-only page.
func ImagePage() Page {
	return Page{Image: true}
}

// BlankPage returns a page with neither text nor images.
func BlankPage() Page {
	return Page{}
}

const (
	catalogObj = 1
	pagesObj   = 2
	fontObj    = 3
	imageObj   = 4
	formObj    = 5
	firstPage  = 6
)

// Build renders pages into a complete PDF file.
func Build(pages ...Page) []byte {
	var objects []string

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPage+2*i)
	}

	objects = append(objects,
		fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj),
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		stream("<< /Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8", "\x80"),
		stream(fmt.Sprintf("<< /Type /XObject /Subtype /Form /BBox [0 0 10 10] /Resources << /XObject << /Im1 %d 0 R >> >>", imageObj),
			"q 10 0 0 10 0 0 cm /Im1 Do Q"),
	)

	for i, p := range pages {
		contentsObj := firstPage + 2*i + 1

		resources := fmt.Sprintf("/Font << /F1 %d 0 R >>", fontObj)
		var xobjects []string
		var content strings.Builder
		if p.Text != "" {
			fmt.Fprintf(&content, "BT /F1 4 Tf 10 700 Td (%s) Tj ET\n", escape(p.Text))
		}
		if p.Image {
			xobjects = append(xobjects, fmt.Sprintf("/Im1 %d 0 R", imageObj))
			content.WriteString("q 100 0 0 100 36 36 cm /Im1 Do Q\n")
		}
		if p.FormImage {
			xobjects = append(xobjects, fmt.Sprintf("/Fm1 %d 0 R", formObj))
			content.WriteString("q 1 0 0 1 200 200 cm /Fm1 Do Q\n")
		}
		if len(xobjects) > 0 {
			resources += " /XObject << " + strings.Join(xobjects, " ") + " >>"
		}

		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << %s >> /Contents %d 0 R >>",
				pagesObj, resources, contentsObj),
			stream("<<", content.String()),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f\r\n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, catalogObj, xref)

	return buf.Bytes()
}

// WriteFile builds pages into dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

// stream closes an open dictionary with /Length and appends the stream body.
func stream(dict, data string) string {
	return fmt.Sprintf("%s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}

package hocr

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

type level int

const (
	levelNone level = iota
	levelPage
	levelArea
	levelParagraph
	levelLine
	levelWord
)

var classLevels = map[string]level{
	"ocr_page":      levelPage,
	"ocr_carea":     levelArea,
	"ocr_par":       levelParagraph,
	"ocr_line":      levelLine,
	"ocr_header":    levelLine,
	"ocr_caption":   levelLine,
	"ocr_textfloat": levelLine,
	"ocrx_word":     levelWord,
}

// Parse converts raw hOCR data into a Document. Data declaring a legacy
// charset in a meta tag is decoded to UTF-8 first.
func Parse(data []byte) (*Document, error) {
	if enc := declaredEncoding(data); enc != nil {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode hOCR: %w", err)
		}
		data = decoded
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse hOCR: %w", err)
	}

	b := &builder{doc: &Document{Metadata: make(map[string]string)}}
	b.visit(root)

	if len(b.doc.Pages) == 0 {
		return nil, fmt.Errorf("no ocr_page elements found in hOCR data")
	}
	return b.doc, nil
}

// ParseTitle breaks down an hOCR title attribute into its properties.
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	props := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			props[items[0]] = items[1:]
		}
	}
	return props
}

func parseBBox(props map[string][]string) BoundingBox {
	v := props["bbox"]
	if len(v) < 4 {
		return BoundingBox{}
	}
	var c [4]float64
	for i := range c {
		c[i], _ = strconv.ParseFloat(v[i], 64)
	}
	return BoundingBox{X1: c[0], Y1: c[1], X2: c[2], Y2: c[3]}
}

// declaredEncoding returns the decoder for a non-UTF-8 charset named in the
// document head, or nil.
func declaredEncoding(data []byte) encoding.Encoding {
	head := strings.ToLower(string(data[:min(len(data), 2048)]))
	i := strings.Index(head, "charset=")
	if i < 0 {
		return nil
	}
	name := strings.FieldsFunc(head[i+len("charset="):], func(r rune) bool {
		return r == '"' || r == '\'' || r == ';' || r == '>' || r == ' ' || r == '/'
	})
	if len(name) == 0 {
		return nil
	}
	switch name[0] {
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1
	case "windows-1251", "cp1251":
		return charmap.Windows1251
	case "koi8-r":
		return charmap.KOI8R
	}
	return nil
}

// builder assembles the normalised tree while walking the HTML. open tracks
// which levels currently have an unclosed element, explicit or implicit.
type builder struct {
	doc  *Document
	open [levelWord]bool
}

func (b *builder) visit(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "html":
			if lang := attr(n, "lang"); lang != "" {
				b.doc.Language = lang
			}
		case "title":
			if n.FirstChild != nil {
				b.doc.Title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		case "meta":
			if name, content := attr(n, "name"), attr(n, "content"); strings.HasPrefix(name, "ocr-") && content != "" {
				b.doc.Metadata[name] = content
			}
			return
		}

		lvl, class := classify(n)
		if lvl == levelWord {
			b.addWord(n)
			return
		}
		if lvl != levelNone {
			b.enter(lvl, class, n)
			b.visitChildren(n)
			b.close(lvl)
			return
		}
	}
	b.visitChildren(n)
}

func (b *builder) visitChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.visit(c)
	}
}

func (b *builder) enter(lvl level, class string, n *html.Node) {
	props := ParseTitle(attr(n, "title"))
	id := attr(n, "id")
	bbox := parseBBox(props)

	switch lvl {
	case levelPage:
		page := Page{ID: id, BBox: bbox}
		if v := props["ppageno"]; len(v) > 0 {
			page.Number, _ = strconv.Atoi(v[0])
		}
		if v := props["image"]; len(v) > 0 {
			page.Image = strings.Trim(strings.Join(v, " "), `"`)
		}
		b.close(levelPage)
		b.doc.Pages = append(b.doc.Pages, page)
	case levelArea:
		page := b.page()
		b.close(levelArea)
		page.Areas = append(page.Areas, Area{ID: id, BBox: bbox})
	case levelParagraph:
		area := b.area()
		b.close(levelParagraph)
		area.Paragraphs = append(area.Paragraphs, Paragraph{ID: id, Lang: attr(n, "lang"), BBox: bbox})
	case levelLine:
		par := b.paragraph()
		b.close(levelLine)
		par.Lines = append(par.Lines, Line{
			ID:       id,
			Class:    class,
			BBox:     bbox,
			Baseline: strings.Join(props["baseline"], " "),
		})
	}
	b.open[lvl-1] = true
}

// close marks lvl and everything below it as finished.
func (b *builder) close(lvl level) {
	for l := lvl; l < levelWord; l++ {
		b.open[l-1] = false
	}
}

func (b *builder) page() *Page {
	if !b.open[levelPage-1] {
		b.doc.Pages = append(b.doc.Pages, Page{})
		b.open[levelPage-1] = true
	}
	return &b.doc.Pages[len(b.doc.Pages)-1]
}

func (b *builder) area() *Area {
	page := b.page()
	if !b.open[levelArea-1] {
		page.Areas = append(page.Areas, Area{})
		b.open[levelArea-1] = true
	}
	return &page.Areas[len(page.Areas)-1]
}

func (b *builder) paragraph() *Paragraph {
	area := b.area()
	if !b.open[levelParagraph-1] {
		area.Paragraphs = append(area.Paragraphs, Paragraph{})
		b.open[levelParagraph-1] = true
	}
	return &area.Paragraphs[len(area.Paragraphs)-1]
}

func (b *builder) line() *Line {
	par := b.paragraph()
	if !b.open[levelLine-1] {
		par.Lines = append(par.Lines, Line{})
		b.open[levelLine-1] = true
	}
	return &par.Lines[len(par.Lines)-1]
}

func (b *builder) addWord(n *html.Node) {
	text := textContent(n)
	if text == "" {
		return
	}
	props := ParseTitle(attr(n, "title"))
	word := Word{
		ID:   attr(n, "id"),
		Text: text,
		BBox: parseBBox(props),
		Lang: attr(n, "lang"),
	}
	if v := props["x_wconf"]; len(v) > 0 {
		word.Confidence, _ = strconv.ParseFloat(v[0], 64)
	}
	line := b.line()
	line.Words = append(line.Words, word)
}

// classify returns the deepest hOCR level named in the class attribute.
func classify(n *html.Node) (level, string) {
	best, name := levelNone, ""
	for _, c := range strings.Fields(attr(n, "class")) {
		if lvl, ok := classLevels[c]; ok && lvl > best {
			best, name = lvl, c
		}
	}
	return best, name
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

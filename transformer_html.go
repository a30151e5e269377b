// Copyright 2026 Docshift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docshift

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// htmlTransformer parses HTML with the x/net tolerant parser and
// generates a minimal standalone skeleton. Only the tags the model
// represents are read (h1-h6, p, ul, ol, li, table, tr, th, td, a,
// img, br); everything else is either descended through or skipped.
type htmlTransformer struct {
	engine *Engine
}

func newHTMLTransformer(e *Engine) *htmlTransformer {
	return &htmlTransformer{engine: e}
}

func (t *htmlTransformer) Parse(data []byte, images *ImageBundle) (*Document, *ImageBundle, error) {
	return t.parse(data, images, nil)
}

func (t *htmlTransformer) ParseWithLoader(data []byte, loader ImageLoader) (*Document, *ImageBundle, error) {
	return t.parse(data, nil, loader)
}

func (t *htmlTransformer) parse(data []byte, images *ImageBundle, loader ImageLoader) (*Document, *ImageBundle, error) {
	out := NewImageBundle()
	if len(data) == 0 {
		return NewDocument(), out, nil
	}
	root, err := html.Parse(bytes.NewReader([]byte(decodeText(data))))
	if err != nil {
		return nil, nil, malformed(FormatHTML, err)
	}
	p := &htmlParse{in: images, out: out, loader: loader}
	doc := NewDocument()
	body := findHTMLNode(root, atom.Body)
	if body == nil {
		body = root
	}
	if err := p.blocks(body, &doc.Elements); err != nil {
		return nil, nil, err
	}
	return doc, out, nil
}

func findHTMLNode(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findHTMLNode(child, a); found != nil {
			return found
		}
	}
	return nil
}

type htmlParse struct {
	in     *ImageBundle
	out    *ImageBundle
	loader ImageLoader
}

func (p *htmlParse) blocks(n *html.Node, elements *[]Element) error {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			if text := strings.TrimSpace(child.Data); text != "" {
				*elements = append(*elements, &Paragraph{Elements: []Element{
					&Text{Text: text, Size: DefaultTextSize},
				}})
			}
		case html.ElementNode:
			switch child.DataAtom {
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				level := int(child.Data[1] - '0')
				*elements = append(*elements, &Header{
					Level: ClampHeaderLevel(level),
					Text:  htmlText(child),
				})
			case atom.P:
				inlines, err := p.inlines(child)
				if err != nil {
					return err
				}
				*elements = append(*elements, &Paragraph{Elements: inlines})
			case atom.Ul, atom.Ol:
				list, err := p.list(child)
				if err != nil {
					return err
				}
				*elements = append(*elements, list)
			case atom.Table:
				table, err := p.table(child)
				if err != nil {
					return err
				}
				*elements = append(*elements, table)
			case atom.A:
				*elements = append(*elements, &Paragraph{Elements: []Element{p.anchor(child)}})
			case atom.Img:
				im, err := p.image(child)
				if err != nil {
					return err
				}
				*elements = append(*elements, &Paragraph{Elements: []Element{im}})
			case atom.Script, atom.Style, atom.Head, atom.Noscript:
				// Non-content.
			default:
				if err := p.blocks(child, elements); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (p *htmlParse) inlines(n *html.Node) ([]Element, error) {
	var out []Element
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			out = append(out, &Text{Text: run.String(), Size: DefaultTextSize})
			run.Reset()
		}
	}
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case html.TextNode:
				run.WriteString(collapseHTMLSpace(child.Data))
			case html.ElementNode:
				switch child.DataAtom {
				case atom.A:
					flush()
					out = append(out, p.anchor(child))
				case atom.Img:
					flush()
					im, err := p.image(child)
					if err != nil {
						return err
					}
					out = append(out, im)
				case atom.Br:
					run.WriteString("\n")
				case atom.Script, atom.Style:
				default:
					if err := walk(child); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	if err := walk(n); err != nil {
		return nil, err
	}
	flush()
	// Leading and trailing whitespace belongs to the markup, not the
	// content.
	if len(out) > 0 {
		if first, ok := out[0].(*Text); ok {
			first.Text = strings.TrimLeft(first.Text, " ")
		}
		if last, ok := out[len(out)-1].(*Text); ok {
			last.Text = strings.TrimRight(last.Text, " ")
		}
	}
	return out, nil
}

func (p *htmlParse) anchor(n *html.Node) *Hyperlink {
	return &Hyperlink{
		Title: htmlText(n),
		URL:   htmlAttr(n, "href"),
		Alt:   htmlAttr(n, "title"),
		Size:  DefaultTextSize,
	}
}

func (p *htmlParse) image(n *html.Node) (*Image, error) {
	key := htmlAttr(n, "src")
	im := &Image{
		Key:   key,
		Title: htmlAttr(n, "title"),
		Alt:   htmlAttr(n, "alt"),
		Type:  ImageTypeFromName(key),
	}
	if data, ok := p.in.Get(key); ok {
		p.out.Add(key, data)
		return im, nil
	}
	if p.loader != nil {
		data, err := p.loader(key)
		if err != nil {
			return nil, err
		}
		p.out.Add(key, data)
	}
	return im, nil
}

func (p *htmlParse) list(n *html.Node) (Element, error) {
	list := &List{Numbered: n.DataAtom == atom.Ol}
	for item := n.FirstChild; item != nil; item = item.NextSibling {
		if item.Type != html.ElementNode || item.DataAtom != atom.Li {
			continue
		}
		// Split the item: inline content first, nested lists as their
		// own items after it.
		var nested []*html.Node
		for child := item.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode && (child.DataAtom == atom.Ul || child.DataAtom == atom.Ol) {
				nested = append(nested, child)
			}
		}
		inlines, err := p.itemInlines(item)
		if err != nil {
			return nil, err
		}
		if len(inlines) == 1 {
			list.Items = append(list.Items, ListItem{Element: inlines[0]})
		} else if len(inlines) > 1 {
			list.Items = append(list.Items, ListItem{Element: &Paragraph{Elements: inlines}})
		}
		for _, sub := range nested {
			subList, err := p.list(sub)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, ListItem{Element: subList})
		}
	}
	return list, nil
}

// itemInlines collects the inline content of an li, ignoring nested
// lists (handled separately).
func (p *htmlParse) itemInlines(item *html.Node) ([]Element, error) {
	var out []Element
	var run strings.Builder
	flush := func() {
		if text := strings.TrimSpace(run.String()); text != "" {
			out = append(out, &Text{Text: text, Size: DefaultTextSize})
		}
		run.Reset()
	}
	for child := item.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			run.WriteString(collapseHTMLSpace(child.Data))
		case html.ElementNode:
			switch child.DataAtom {
			case atom.Ul, atom.Ol:
			case atom.A:
				flush()
				out = append(out, p.anchor(child))
			case atom.Img:
				flush()
				im, err := p.image(child)
				if err != nil {
					return nil, err
				}
				out = append(out, im)
			default:
				run.WriteString(htmlText(child))
			}
		}
	}
	flush()
	return out, nil
}

func (p *htmlParse) table(n *html.Node) (Element, error) {
	table := &Table{}
	var walkRows func(n *html.Node) error
	walkRows = func(n *html.Node) error {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			switch child.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				if err := walkRows(child); err != nil {
					return err
				}
			case atom.Tr:
				if err := p.tableRow(child, table); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walkRows(n); err != nil {
		return nil, err
	}
	// A table without th cells promotes its first row to the header.
	if len(table.Headers) == 0 && len(table.Rows) > 0 {
		for _, cell := range table.Rows[0].Cells {
			table.Headers = append(table.Headers, TableHeader{Element: cell.Element, Width: DefaultColumnWidth})
		}
		table.Rows = table.Rows[1:]
	}
	padTableRows(table)
	return table, nil
}

func (p *htmlParse) tableRow(tr *html.Node, table *Table) error {
	var cells []TableCell
	isHeader := false
	for cell := tr.FirstChild; cell != nil; cell = cell.NextSibling {
		if cell.Type != html.ElementNode {
			continue
		}
		switch cell.DataAtom {
		case atom.Th:
			isHeader = true
			el, err := p.cellContent(cell)
			if err != nil {
				return err
			}
			table.Headers = append(table.Headers, TableHeader{Element: el, Width: DefaultColumnWidth})
		case atom.Td:
			el, err := p.cellContent(cell)
			if err != nil {
				return err
			}
			cells = append(cells, TableCell{Element: el})
		}
	}
	if !isHeader && cells != nil {
		table.Rows = append(table.Rows, TableRow{Cells: cells})
	}
	return nil
}

func (p *htmlParse) cellContent(n *html.Node) (Element, error) {
	inlines, err := p.inlines(n)
	if err != nil {
		return nil, err
	}
	switch len(inlines) {
	case 0:
		return &Text{Text: "", Size: DefaultTextSize}, nil
	case 1:
		return inlines[0], nil
	}
	return &Paragraph{Elements: inlines}, nil
}

func htmlAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func htmlText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(collapseHTMLSpace(b.String()))
}

// collapseHTMLSpace folds runs of whitespace to single spaces, the way
// a browser renders source formatting.
func collapseHTMLSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}), " ")
}

func (t *htmlTransformer) Generate(doc *Document, images *ImageBundle) ([]byte, *ImageBundle, error) {
	out := NewImageBundle()
	data, err := t.generate(doc, images, BundleImageSink(out))
	if err != nil {
		return nil, nil, err
	}
	return data, out, nil
}

func (t *htmlTransformer) GenerateWithSink(doc *Document, images *ImageBundle, sink ImageSink) ([]byte, error) {
	return t.generate(doc, images, sink)
}

func (t *htmlTransformer) generate(doc *Document, images *ImageBundle, sink ImageSink) ([]byte, error) {
	g := &htmlGen{images: images, sink: sink, warn: t.engine.warning}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<body>\n")
	for _, el := range doc.Elements {
		if err := g.block(&b, el); err != nil {
			return nil, err
		}
	}
	b.WriteString("</body>\n</html>")
	return []byte(b.String()), nil
}

type htmlGen struct {
	images   *ImageBundle
	sink     ImageSink
	warn     func(Warning)
	imageNum int
}

func (g *htmlGen) block(b *strings.Builder, el Element) error {
	switch e := el.(type) {
	case *Header:
		level := ClampHeaderLevel(e.Level)
		fmt.Fprintf(b, "<h%d>%s</h%d>\n", level, html.EscapeString(e.Text), level)
	case *Paragraph:
		b.WriteString("<p>")
		for _, child := range e.Elements {
			if err := g.inline(b, child); err != nil {
				return err
			}
		}
		b.WriteString("</p>\n")
	case *Text:
		fmt.Fprintf(b, "<p>%s</p>\n", html.EscapeString(e.Text))
	case *List:
		if err := g.list(b, e); err != nil {
			return err
		}
	case *Table:
		if err := g.table(b, e); err != nil {
			return err
		}
	case *Hyperlink, *Image:
		b.WriteString("<p>")
		if err := g.inline(b, el); err != nil {
			return err
		}
		b.WriteString("</p>\n")
	case *PageBreak:
		b.WriteString("<div style=\"break-after:page\"></div>\n")
	}
	return nil
}

func (g *htmlGen) inline(b *strings.Builder, el Element) error {
	switch e := el.(type) {
	case *Text:
		b.WriteString(strings.ReplaceAll(html.EscapeString(e.Text), "\n", "<br>"))
	case *Hyperlink:
		if e.Alt != "" {
			fmt.Fprintf(b, "<a href=%q title=%q>%s</a>",
				e.URL, e.Alt, html.EscapeString(e.Title))
		} else {
			fmt.Fprintf(b, "<a href=%q>%s</a>", e.URL, html.EscapeString(e.Title))
		}
	case *Image:
		data, err := resolveImage(e, g.images)
		if err != nil {
			return err
		}
		key := e.Key
		if key == "" {
			key = fmt.Sprintf("image%d.%s", g.imageNum, e.Type.Extension())
			g.imageNum++
		}
		if g.sink != nil {
			if err := g.sink(key, data); err != nil {
				return err
			}
		}
		fmt.Fprintf(b, "<img src=%q alt=%q title=%q>", key, e.Alt, e.Title)
	case *Paragraph:
		for _, child := range e.Elements {
			if err := g.inline(b, child); err != nil {
				return err
			}
		}
	default:
		b.WriteString(html.EscapeString(plainText(el)))
	}
	return nil
}

func (g *htmlGen) list(b *strings.Builder, list *List) error {
	tag := "ul"
	if list.Numbered {
		tag = "ol"
	}
	fmt.Fprintf(b, "<%s>\n", tag)
	for _, item := range list.Items {
		if nested, ok := item.Element.(*List); ok {
			b.WriteString("<li>")
			if err := g.list(b, nested); err != nil {
				return err
			}
			b.WriteString("</li>\n")
			continue
		}
		b.WriteString("<li>")
		if err := g.inline(b, item.Element); err != nil {
			return err
		}
		b.WriteString("</li>\n")
	}
	fmt.Fprintf(b, "</%s>\n", tag)
	return nil
}

func (g *htmlGen) table(b *strings.Builder, table *Table) error {
	b.WriteString("<table>\n<thead>\n<tr>\n")
	for _, h := range table.Headers {
		b.WriteString("<th>")
		if err := g.inline(b, h.Element); err != nil {
			return err
		}
		b.WriteString("</th>\n")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range table.Rows {
		b.WriteString("<tr>\n")
		for _, cell := range row.Cells {
			b.WriteString("<td>")
			if err := g.inline(b, cell.Element); err != nil {
				return err
			}
			b.WriteString("</td>\n")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	return nil
}

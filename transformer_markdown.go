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
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

// markdownTransformer parses CommonMark plus GFM tables via goldmark
// and generates markdown with a hand-rolled writer. Emphasis and code
// spans flatten to their text; the generator emits only constructs the
// model represents, so generate-then-parse is stable.
type markdownTransformer struct {
	engine *Engine
}

func newMarkdownTransformer(e *Engine) *markdownTransformer {
	return &markdownTransformer{engine: e}
}

func (t *markdownTransformer) Parse(data []byte, images *ImageBundle) (*Document, *ImageBundle, error) {
	return t.parse(data, images, nil)
}

func (t *markdownTransformer) ParseWithLoader(data []byte, loader ImageLoader) (*Document, *ImageBundle, error) {
	return t.parse(data, nil, loader)
}

func (t *markdownTransformer) parse(data []byte, images *ImageBundle, loader ImageLoader) (*Document, *ImageBundle, error) {
	out := NewImageBundle()
	if len(data) == 0 {
		return NewDocument(), out, nil
	}
	source := []byte(normalizeNewlines(decodeText(data)))
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(gmtext.NewReader(source))

	p := &markdownParse{source: source, in: images, out: out, loader: loader}
	doc := NewDocument()
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		el, err := p.block(child)
		if err != nil {
			return nil, nil, err
		}
		if el != nil {
			doc.Elements = append(doc.Elements, el)
		}
	}
	return doc, out, nil
}

type markdownParse struct {
	source []byte
	in     *ImageBundle
	out    *ImageBundle
	loader ImageLoader
}

func (p *markdownParse) block(node ast.Node) (Element, error) {
	switch n := node.(type) {
	case *ast.Heading:
		return &Header{
			Level: ClampHeaderLevel(n.Level),
			Text:  nodeText(n, p.source),
		}, nil
	case *ast.Paragraph, *ast.TextBlock:
		inlines, err := p.inlines(node)
		if err != nil {
			return nil, err
		}
		return &Paragraph{Elements: inlines}, nil
	case *ast.List:
		return p.list(n)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var b strings.Builder
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(p.source))
		}
		return &Paragraph{Elements: []Element{
			&Text{Text: strings.TrimSuffix(b.String(), "\n"), Size: DefaultTextSize},
		}}, nil
	case *ast.Blockquote:
		inlines, err := p.inlinesOfChildren(node)
		if err != nil {
			return nil, err
		}
		return &Paragraph{Elements: inlines}, nil
	case *extast.Table:
		return p.table(n)
	case *ast.ThematicBreak, *ast.HTMLBlock:
		return nil, nil
	}
	// Unrecognized blocks flatten to their text.
	if text := nodeText(node, p.source); text != "" {
		return &Paragraph{Elements: []Element{&Text{Text: text, Size: DefaultTextSize}}}, nil
	}
	return nil, nil
}

// list maps one markdown list. A nested list becomes its own ListItem
// following the item it was indented under.
func (p *markdownParse) list(n *ast.List) (Element, error) {
	list := &List{Numbered: n.IsOrdered()}
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if nested, ok := child.(*ast.List); ok {
				el, err := p.list(nested)
				if err != nil {
					return nil, err
				}
				list.Items = append(list.Items, ListItem{Element: el})
				continue
			}
			el, err := p.itemContent(child)
			if err != nil {
				return nil, err
			}
			if el != nil {
				list.Items = append(list.Items, ListItem{Element: el})
			}
		}
	}
	return list, nil
}

// itemContent converts a list item's content block to one element: a
// bare Text when that is all there is, a Paragraph otherwise.
func (p *markdownParse) itemContent(node ast.Node) (Element, error) {
	inlines, err := p.inlines(node)
	if err != nil {
		return nil, err
	}
	if len(inlines) == 0 {
		return nil, nil
	}
	if len(inlines) == 1 {
		if text, ok := inlines[0].(*Text); ok {
			return text, nil
		}
	}
	return &Paragraph{Elements: inlines}, nil
}

func (p *markdownParse) table(n *extast.Table) (Element, error) {
	table := &Table{}
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		switch r := row.(type) {
		case *extast.TableHeader:
			for cell := r.FirstChild(); cell != nil; cell = cell.NextSibling() {
				el, err := p.cellContent(cell)
				if err != nil {
					return nil, err
				}
				table.Headers = append(table.Headers, TableHeader{Element: el, Width: DefaultColumnWidth})
			}
		case *extast.TableRow:
			var cells []TableCell
			for cell := r.FirstChild(); cell != nil; cell = cell.NextSibling() {
				el, err := p.cellContent(cell)
				if err != nil {
					return nil, err
				}
				cells = append(cells, TableCell{Element: el})
			}
			table.Rows = append(table.Rows, TableRow{Cells: cells})
		}
	}
	padTableRows(table)
	return table, nil
}

func (p *markdownParse) cellContent(node ast.Node) (Element, error) {
	inlines, err := p.inlines(node)
	if err != nil {
		return nil, err
	}
	if len(inlines) == 1 {
		return inlines[0], nil
	}
	if len(inlines) == 0 {
		return &Text{Text: "", Size: DefaultTextSize}, nil
	}
	return &Paragraph{Elements: inlines}, nil
}

func (p *markdownParse) inlinesOfChildren(node ast.Node) ([]Element, error) {
	var out []Element
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		inlines, err := p.inlines(child)
		if err != nil {
			return nil, err
		}
		out = append(out, inlines...)
	}
	return out, nil
}

// inlines converts a block's inline children. Contiguous text runs
// merge into one Text element; emphasis and code spans flatten.
func (p *markdownParse) inlines(node ast.Node) ([]Element, error) {
	var out []Element
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			out = append(out, &Text{Text: run.String(), Size: DefaultTextSize})
			run.Reset()
		}
	}
	var walk func(n ast.Node) error
	walk = func(n ast.Node) error {
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.Text:
				run.Write(c.Segment.Value(p.source))
				if c.SoftLineBreak() || c.HardLineBreak() {
					run.WriteString("\n")
				}
			case *ast.String:
				run.Write(c.Value)
			case *ast.Link:
				flush()
				out = append(out, &Hyperlink{
					Title: nodeText(c, p.source),
					URL:   string(c.Destination),
					Alt:   string(c.Title),
					Size:  DefaultTextSize,
				})
			case *ast.AutoLink:
				flush()
				url := string(c.URL(p.source))
				out = append(out, &Hyperlink{Title: url, URL: url, Alt: url, Size: DefaultTextSize})
			case *ast.Image:
				flush()
				im, err := p.image(c)
				if err != nil {
					return err
				}
				out = append(out, im)
			default:
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(node); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

// image resolves a markdown image reference: pre-supplied bundle
// first, then the loader. Without either the image stays keyed and
// unresolved; generators surface MissingImage when they need bytes.
func (p *markdownParse) image(n *ast.Image) (*Image, error) {
	key := string(n.Destination)
	im := &Image{
		Key:   key,
		Title: string(n.Title),
		Alt:   nodeText(n, p.source),
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

// nodeText flattens a node's text segments.
func nodeText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func (t *markdownTransformer) Generate(doc *Document, images *ImageBundle) ([]byte, *ImageBundle, error) {
	out := NewImageBundle()
	data, err := t.generate(doc, images, BundleImageSink(out))
	if err != nil {
		return nil, nil, err
	}
	return data, out, nil
}

func (t *markdownTransformer) GenerateWithSink(doc *Document, images *ImageBundle, sink ImageSink) ([]byte, error) {
	return t.generate(doc, images, sink)
}

func (t *markdownTransformer) generate(doc *Document, images *ImageBundle, sink ImageSink) ([]byte, error) {
	g := &markdownGen{images: images, sink: sink, warn: t.engine.warning}
	var b strings.Builder
	for _, el := range doc.Elements {
		if err := g.block(&b, el, 0); err != nil {
			return nil, err
		}
	}
	return []byte(strings.TrimSuffix(b.String(), "\n") + "\n"), nil
}

type markdownGen struct {
	images   *ImageBundle
	sink     ImageSink
	warn     func(Warning)
	imageNum int
}

func (g *markdownGen) block(b *strings.Builder, el Element, depth int) error {
	switch e := el.(type) {
	case *Header:
		b.WriteString(strings.Repeat("#", ClampHeaderLevel(e.Level)))
		b.WriteString(" ")
		b.WriteString(e.Text)
		b.WriteString("\n\n")
	case *Paragraph:
		for _, child := range e.Elements {
			if err := g.inline(b, child); err != nil {
				return err
			}
		}
		b.WriteString("\n\n")
	case *Text:
		b.WriteString(e.Text)
		b.WriteString("\n\n")
	case *List:
		if err := g.list(b, e, depth); err != nil {
			return err
		}
		if depth == 0 {
			b.WriteString("\n")
		}
	case *Table:
		g.table(b, e)
	case *Hyperlink, *Image:
		// Inline variants hoisted to the top level render as their
		// own paragraph.
		if err := g.inline(b, el); err != nil {
			return err
		}
		b.WriteString("\n\n")
	case *PageBreak:
		g.warn(Warning{Format: FormatMarkdown, Variant: "PageBreak", Reason: "markdown has no page boundary"})
	}
	return nil
}

func (g *markdownGen) inline(b *strings.Builder, el Element) error {
	switch e := el.(type) {
	case *Text:
		b.WriteString(e.Text)
	case *Hyperlink:
		if e.Alt != "" && e.Alt != e.URL {
			fmt.Fprintf(b, "[%s](%s %q)", e.Title, e.URL, e.Alt)
		} else {
			fmt.Fprintf(b, "[%s](%s)", e.Title, e.URL)
		}
	case *Image:
		key, err := g.emitImage(e)
		if err != nil {
			return err
		}
		if e.Title != "" {
			fmt.Fprintf(b, "![%s](%s %q)", e.Alt, key, e.Title)
		} else {
			fmt.Fprintf(b, "![%s](%s)", e.Alt, key)
		}
	case *Paragraph:
		for _, child := range e.Elements {
			if err := g.inline(b, child); err != nil {
				return err
			}
		}
	default:
		b.WriteString(plainText(el))
	}
	return nil
}

// emitImage routes image bytes to the sink and returns the reference
// to write into the markdown.
func (g *markdownGen) emitImage(im *Image) (string, error) {
	data, err := resolveImage(im, g.images)
	if err != nil {
		return "", err
	}
	key := im.Key
	if key == "" {
		key = fmt.Sprintf("image%d.%s", g.imageNum, im.Type.Extension())
		g.imageNum++
	}
	if g.sink != nil {
		if err := g.sink(key, data); err != nil {
			return "", err
		}
	}
	return key, nil
}

func (g *markdownGen) list(b *strings.Builder, list *List, depth int) error {
	counter := 0
	for _, item := range list.Items {
		if nested, ok := item.Element.(*List); ok {
			if err := g.list(b, nested, depth+1); err != nil {
				return err
			}
			continue
		}
		counter++
		b.WriteString(strings.Repeat("  ", depth))
		if list.Numbered {
			fmt.Fprintf(b, "%d. ", counter)
		} else {
			b.WriteString("- ")
		}
		if err := g.inline(b, item.Element); err != nil {
			return err
		}
		b.WriteString("\n")
	}
	return nil
}

func (g *markdownGen) table(b *strings.Builder, table *Table) {
	b.WriteString("|")
	for _, h := range table.Headers {
		b.WriteString(" ")
		b.WriteString(cellText(h.Element))
		b.WriteString(" |")
	}
	b.WriteString("\n|")
	for range table.Headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range table.Rows {
		b.WriteString("|")
		for _, cell := range row.Cells {
			b.WriteString(" ")
			b.WriteString(cellText(cell.Element))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// cellText flattens cell content to a single line safe inside a pipe
// table.
func cellText(el Element) string {
	s := plainText(el)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

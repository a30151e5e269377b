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
	"reflect"
	"strings"
)

// Page geometry defaults: A4 portrait with 10 mm margins. All lengths
// are millimeters.
const (
	DefaultPageWidth   = 210.0
	DefaultPageHeight  = 297.0
	DefaultPageIndent  = 10.0
	DefaultColumnWidth = 10.0
)

// DefaultTextSize is the font size (points) assigned when the source
// carries none. It is part of the transformer contract so round-trips
// are reproducible.
const DefaultTextSize = 8

// Document is the universal in-memory representation of a document:
// an ordered sequence of block-level elements plus page geometry.
// The element order is the authoring order and is preserved across
// parse and generate.
type Document struct {
	Elements         []Element
	PageWidth        float64
	PageHeight       float64
	LeftPageIndent   float64
	RightPageIndent  float64
	TopPageIndent    float64
	BottomPageIndent float64
	PageHeader       []Element
	PageFooter       []Element
}

// NewDocument builds a Document with default page geometry.
func NewDocument(elements ...Element) *Document {
	return &Document{
		Elements:         elements,
		PageWidth:        DefaultPageWidth,
		PageHeight:       DefaultPageHeight,
		LeftPageIndent:   DefaultPageIndent,
		RightPageIndent:  DefaultPageIndent,
		TopPageIndent:    DefaultPageIndent,
		BottomPageIndent: DefaultPageIndent,
	}
}

// Equal reports structural equality: same variants, same attribute
// values, same order. Documents that differ only in how an image is
// carried (inline bytes vs. bundle key) compare unequal.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return reflect.DeepEqual(d, other)
}

// Walk visits every element of the document in document order, parent
// before children. Page header and footer elements are not visited;
// they are chrome, not content.
func (d *Document) Walk(fn func(Element)) {
	walkElements(d.Elements, fn)
}

func walkElements(elements []Element, fn func(Element)) {
	for _, el := range elements {
		walkElement(el, fn)
	}
}

func walkElement(el Element, fn func(Element)) {
	fn(el)
	switch e := el.(type) {
	case *Paragraph:
		walkElements(e.Elements, fn)
	case *List:
		for _, item := range e.Items {
			walkElement(item.Element, fn)
		}
	case *Table:
		for _, h := range e.Headers {
			walkElement(h.Element, fn)
		}
		for _, row := range e.Rows {
			for _, cell := range row.Cells {
				walkElement(cell.Element, fn)
			}
		}
	}
}

// Element is one tagged variant of document content. The set of
// variants is closed; adapters case-switch over it.
type Element interface {
	element()
}

// Header is a section heading with level 1..6.
type Header struct {
	Level int
	Text  string
}

// Paragraph holds an ordered run of inline elements (Text, Hyperlink,
// Image).
type Paragraph struct {
	Elements []Element
}

// Text is a plain text run with a font size in points.
type Text struct {
	Text string
	Size int
}

// Hyperlink is an inline link.
type Hyperlink struct {
	Title string
	URL   string
	Alt   string
	Size  int
}

// ImageType identifies the encoding of an image payload.
type ImageType string

const (
	ImagePng  ImageType = "png"
	ImageJpeg ImageType = "jpeg"
	ImageGif  ImageType = "gif"
)

// Extension returns the file extension (without dot) for the type.
func (t ImageType) Extension() string {
	switch t {
	case ImageJpeg:
		return "jpg"
	case ImageGif:
		return "gif"
	default:
		return "png"
	}
}

// MIMEType returns the MIME type for the image type.
func (t ImageType) MIMEType() string {
	switch t {
	case ImageJpeg:
		return "image/jpeg"
	case ImageGif:
		return "image/gif"
	default:
		return "image/png"
	}
}

// ImageTypeFromName guesses an ImageType from a file name or URL.
func ImageTypeFromName(name string) ImageType {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".jpg"),
		strings.HasSuffix(strings.ToLower(name), ".jpeg"):
		return ImageJpeg
	case strings.HasSuffix(strings.ToLower(name), ".gif"):
		return ImageGif
	default:
		return ImagePng
	}
}

// Image is an inline image. It carries either its raw bytes (Data) or
// a key into the image bundle traveling alongside the Document; never
// a key absent from that bundle.
type Image struct {
	Data  []byte
	Key   string
	Title string
	Alt   string
	Type  ImageType
}

// Inline reports whether the image carries its bytes directly.
func (im *Image) Inline() bool { return im.Key == "" }

// List is an ordered or bulleted list. Nesting happens only through
// ListItem: an item may wrap another List, never a ListItem.
type List struct {
	Items    []ListItem
	Numbered bool
}

// ListItem wraps exactly one element of list content.
type ListItem struct {
	Element Element
}

// Table is a header row plus data rows. After parse every row holds
// exactly len(Headers) cells.
type Table struct {
	Headers []TableHeader
	Rows    []TableRow
}

// TableHeader is one header cell with its column width in millimeters.
type TableHeader struct {
	Element Element
	Width   float64
}

// TableRow is one row of cells.
type TableRow struct {
	Cells []TableCell
}

// TableCell wraps one element of cell content.
type TableCell struct {
	Element Element
}

// PageBreak forces a page boundary in paginated formats.
type PageBreak struct{}

func (*Header) element()    {}
func (*Paragraph) element() {}
func (*Text) element()      {}
func (*Hyperlink) element() {}
func (*Image) element()     {}
func (*List) element()      {}
func (*Table) element()     {}
func (*PageBreak) element() {}

// ClampHeaderLevel clamps a header level into [1, 6]. Parsers apply it
// once; generators with a lower ceiling clamp again themselves.
func ClampHeaderLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

// padTableRows pads every row of t with empty text cells so that each
// row holds exactly len(t.Headers) cells. Rows longer than the header
// are left alone; headers define the table arity only as a lower bound
// when the source is non-rectangular the other way.
func padTableRows(t *Table) {
	want := len(t.Headers)
	for i := range t.Rows {
		for len(t.Rows[i].Cells) < want {
			t.Rows[i].Cells = append(t.Rows[i].Cells, TableCell{
				Element: &Text{Text: "", Size: DefaultTextSize},
			})
		}
	}
}

// plainText flattens an element to its visible text. Used by
// generators for formats without markup (cell content, alt text).
func plainText(el Element) string {
	var b strings.Builder
	walkElement(el, func(e Element) {
		switch t := e.(type) {
		case *Text:
			b.WriteString(t.Text)
		case *Header:
			b.WriteString(t.Text)
		case *Hyperlink:
			b.WriteString(t.Title)
		}
	})
	return b.String()
}

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
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// xmlTransformer serializes the model to a flat XML dialect:
// <document> wrapping <header>, <paragraph>, <text>, <hyperlink>,
// <image>, <list>/<item>, <table>/<thead>/<th>/<tbody>/<tr>/<td>,
// <pagebreak>, plus <pageheader>/<pagefooter> chrome. Image payloads
// are carried base64-encoded in the data attribute; keyed images keep
// their key.
type xmlTransformer struct {
	engine *Engine
}

func newXMLTransformer(e *Engine) *xmlTransformer {
	return &xmlTransformer{engine: e}
}

func (t *xmlTransformer) Parse(data []byte, _ *ImageBundle) (*Document, *ImageBundle, error) {
	if len(data) == 0 {
		return NewDocument(), NewImageBundle(), nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	doc := NewDocument()
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, malformed(FormatXML, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "document" {
			return nil, nil, malformedDesc(FormatXML, "root element must be <document>")
		}
		applyPageAttrs(doc, start.Attr)
		if err := t.parseDocumentBody(dec, doc); err != nil {
			return nil, nil, err
		}
	}
	return doc, NewImageBundle(), nil
}

func applyPageAttrs(doc *Document, attrs []xml.Attr) {
	for _, attr := range attrs {
		v, err := strconv.ParseFloat(attr.Value, 64)
		if err != nil {
			continue
		}
		switch attr.Name.Local {
		case "page_width":
			doc.PageWidth = v
		case "page_height":
			doc.PageHeight = v
		case "left_page_indent":
			doc.LeftPageIndent = v
		case "right_page_indent":
			doc.RightPageIndent = v
		case "top_page_indent":
			doc.TopPageIndent = v
		case "bottom_page_indent":
			doc.BottomPageIndent = v
		}
	}
}

func (t *xmlTransformer) parseDocumentBody(dec *xml.Decoder, doc *Document) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return malformed(FormatXML, err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "pageheader":
				elements, err := t.parseElements(dec, "pageheader")
				if err != nil {
					return err
				}
				doc.PageHeader = elements
			case "pagefooter":
				elements, err := t.parseElements(dec, "pagefooter")
				if err != nil {
					return err
				}
				doc.PageFooter = elements
			default:
				el, err := t.parseElement(dec, tk)
				if err != nil {
					return err
				}
				if el != nil {
					doc.Elements = append(doc.Elements, el)
				}
			}
		case xml.EndElement:
			if tk.Name.Local == "document" {
				return nil
			}
		}
	}
}

// parseElements reads sibling elements until the closing tag named end.
func (t *xmlTransformer) parseElements(dec *xml.Decoder, end string) ([]Element, error) {
	var out []Element
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(FormatXML, err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			el, err := t.parseElement(dec, tk)
			if err != nil {
				return nil, err
			}
			if el != nil {
				out = append(out, el)
			}
		case xml.EndElement:
			if tk.Name.Local == end {
				return out, nil
			}
		}
	}
}

func (t *xmlTransformer) parseElement(dec *xml.Decoder, start xml.StartElement) (Element, error) {
	attrs := attrMap(start.Attr)
	switch start.Name.Local {
	case "header":
		text, err := t.readCharData(dec, "header")
		if err != nil {
			return nil, err
		}
		level, _ := strconv.Atoi(attrs["level"])
		return &Header{Level: ClampHeaderLevel(level), Text: text}, nil
	case "text":
		text, err := t.readCharData(dec, "text")
		if err != nil {
			return nil, err
		}
		return &Text{Text: text, Size: attrSize(attrs)}, nil
	case "hyperlink":
		if err := dec.Skip(); err != nil {
			return nil, malformed(FormatXML, err)
		}
		return &Hyperlink{
			Title: attrs["title"],
			URL:   attrs["url"],
			Alt:   attrs["alt"],
			Size:  attrSize(attrs),
		}, nil
	case "image":
		if err := dec.Skip(); err != nil {
			return nil, malformed(FormatXML, err)
		}
		im := &Image{
			Key:   attrs["key"],
			Title: attrs["title"],
			Alt:   attrs["alt"],
			Type:  ImageType(attrs["type"]),
		}
		if im.Type == "" {
			im.Type = ImagePng
		}
		if encoded := attrs["data"]; encoded != "" {
			data, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, malformed(FormatXML, fmt.Errorf("image data: %w", err))
			}
			im.Data = data
		}
		return im, nil
	case "paragraph":
		elements, err := t.parseElements(dec, "paragraph")
		if err != nil {
			return nil, err
		}
		return &Paragraph{Elements: elements}, nil
	case "list":
		return t.parseList(dec, attrs)
	case "table":
		return t.parseTable(dec)
	case "pagebreak":
		if err := dec.Skip(); err != nil {
			return nil, malformed(FormatXML, err)
		}
		return &PageBreak{}, nil
	}
	// Unknown tags are skipped, not fatal.
	if err := dec.Skip(); err != nil {
		return nil, malformed(FormatXML, err)
	}
	return nil, nil
}

func (t *xmlTransformer) parseList(dec *xml.Decoder, attrs map[string]string) (Element, error) {
	list := &List{Numbered: attrs["type"] == "numbered"}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(FormatXML, err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			if tk.Name.Local != "item" {
				if err := dec.Skip(); err != nil {
					return nil, malformed(FormatXML, err)
				}
				continue
			}
			el, err := t.parseSingle(dec, "item")
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, ListItem{Element: el})
		case xml.EndElement:
			if tk.Name.Local == "list" {
				return list, nil
			}
		}
	}
}

func (t *xmlTransformer) parseTable(dec *xml.Decoder) (Element, error) {
	table := &Table{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(FormatXML, err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "th":
				width := DefaultColumnWidth
				if w, err := strconv.ParseFloat(attrMap(tk.Attr)["width"], 64); err == nil {
					width = w
				}
				el, err := t.parseSingle(dec, "th")
				if err != nil {
					return nil, err
				}
				table.Headers = append(table.Headers, TableHeader{Element: el, Width: width})
			case "tr":
				row, err := t.parseTableRow(dec)
				if err != nil {
					return nil, err
				}
				table.Rows = append(table.Rows, row)
			case "thead", "tbody":
				// Grouping tags only; their children carry the data.
			default:
				if err := dec.Skip(); err != nil {
					return nil, malformed(FormatXML, err)
				}
			}
		case xml.EndElement:
			if tk.Name.Local == "table" {
				padTableRows(table)
				return table, nil
			}
		}
	}
}

func (t *xmlTransformer) parseTableRow(dec *xml.Decoder) (TableRow, error) {
	var row TableRow
	for {
		tok, err := dec.Token()
		if err != nil {
			return row, malformed(FormatXML, err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			if tk.Name.Local != "td" {
				if err := dec.Skip(); err != nil {
					return row, malformed(FormatXML, err)
				}
				continue
			}
			el, err := t.parseSingle(dec, "td")
			if err != nil {
				return row, err
			}
			row.Cells = append(row.Cells, TableCell{Element: el})
		case xml.EndElement:
			if tk.Name.Local == "tr" {
				return row, nil
			}
		}
	}
}

// parseSingle reads one wrapped element (item, th, td content). An
// empty wrapper yields an empty Text.
func (t *xmlTransformer) parseSingle(dec *xml.Decoder, end string) (Element, error) {
	elements, err := t.parseElements(dec, end)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return &Text{Text: "", Size: DefaultTextSize}, nil
	}
	return elements[0], nil
}

func (t *xmlTransformer) readCharData(dec *xml.Decoder, end string) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", malformed(FormatXML, err)
		}
		switch tk := tok.(type) {
		case xml.CharData:
			b.Write(tk)
		case xml.EndElement:
			if tk.Name.Local == end {
				return b.String(), nil
			}
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return "", malformed(FormatXML, err)
			}
		}
	}
}

func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		m[attr.Name.Local] = attr.Value
	}
	return m
}

func attrSize(attrs map[string]string) int {
	if size, err := strconv.Atoi(attrs["size"]); err == nil && size > 0 {
		return size
	}
	return DefaultTextSize
}

func (t *xmlTransformer) Generate(doc *Document, images *ImageBundle) ([]byte, *ImageBundle, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	root := xml.StartElement{
		Name: xml.Name{Local: "document"},
		Attr: []xml.Attr{
			floatAttr("page_width", doc.PageWidth),
			floatAttr("page_height", doc.PageHeight),
			floatAttr("left_page_indent", doc.LeftPageIndent),
			floatAttr("right_page_indent", doc.RightPageIndent),
			floatAttr("top_page_indent", doc.TopPageIndent),
			floatAttr("bottom_page_indent", doc.BottomPageIndent),
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, nil, internalErr(FormatXML, err)
	}
	if len(doc.PageHeader) > 0 {
		if err := t.encodeWrapped(enc, "pageheader", doc.PageHeader, images); err != nil {
			return nil, nil, err
		}
	}
	for _, el := range doc.Elements {
		if err := t.encodeElement(enc, el, images); err != nil {
			return nil, nil, err
		}
	}
	if len(doc.PageFooter) > 0 {
		if err := t.encodeWrapped(enc, "pagefooter", doc.PageFooter, images); err != nil {
			return nil, nil, err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, nil, internalErr(FormatXML, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, nil, internalErr(FormatXML, err)
	}
	return buf.Bytes(), NewImageBundle(), nil
}

func (t *xmlTransformer) encodeWrapped(enc *xml.Encoder, tag string, elements []Element, images *ImageBundle) error {
	start := xml.StartElement{Name: xml.Name{Local: tag}}
	if err := enc.EncodeToken(start); err != nil {
		return internalErr(FormatXML, err)
	}
	for _, el := range elements {
		if err := t.encodeElement(enc, el, images); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return internalErr(FormatXML, err)
	}
	return nil
}

func (t *xmlTransformer) encodeElement(enc *xml.Encoder, el Element, images *ImageBundle) error {
	switch e := el.(type) {
	case *Header:
		start := xml.StartElement{
			Name: xml.Name{Local: "header"},
			Attr: []xml.Attr{intAttr("level", e.Level)},
		}
		return encodeTextElement(enc, start, e.Text)
	case *Text:
		start := xml.StartElement{
			Name: xml.Name{Local: "text"},
			Attr: []xml.Attr{intAttr("size", e.Size)},
		}
		return encodeTextElement(enc, start, e.Text)
	case *Hyperlink:
		start := xml.StartElement{
			Name: xml.Name{Local: "hyperlink"},
			Attr: []xml.Attr{
				stringAttr("title", e.Title),
				stringAttr("url", e.URL),
				stringAttr("alt", e.Alt),
				intAttr("size", e.Size),
			},
		}
		return encodeEmptyElement(enc, start)
	case *Image:
		attrs := []xml.Attr{
			stringAttr("title", e.Title),
			stringAttr("alt", e.Alt),
			stringAttr("type", string(e.Type)),
		}
		data, err := resolveImage(e, images)
		if err != nil {
			return err
		}
		if e.Inline() {
			attrs = append(attrs, stringAttr("data", base64.StdEncoding.EncodeToString(data)))
		} else {
			attrs = append(attrs, stringAttr("key", e.Key))
		}
		return encodeEmptyElement(enc, xml.StartElement{Name: xml.Name{Local: "image"}, Attr: attrs})
	case *Paragraph:
		start := xml.StartElement{Name: xml.Name{Local: "paragraph"}}
		if err := enc.EncodeToken(start); err != nil {
			return internalErr(FormatXML, err)
		}
		for _, child := range e.Elements {
			if err := t.encodeElement(enc, child, images); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return internalErr(FormatXML, err)
		}
		return nil
	case *List:
		kind := "bulleted"
		if e.Numbered {
			kind = "numbered"
		}
		start := xml.StartElement{
			Name: xml.Name{Local: "list"},
			Attr: []xml.Attr{stringAttr("type", kind)},
		}
		if err := enc.EncodeToken(start); err != nil {
			return internalErr(FormatXML, err)
		}
		for _, item := range e.Items {
			if err := t.encodeWrapped(enc, "item", []Element{item.Element}, images); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return internalErr(FormatXML, err)
		}
		return nil
	case *Table:
		return t.encodeTable(enc, e, images)
	case *PageBreak:
		return encodeEmptyElement(enc, xml.StartElement{Name: xml.Name{Local: "pagebreak"}})
	}
	return internalErr(FormatXML, fmt.Errorf("unknown element %T", el))
}

func (t *xmlTransformer) encodeTable(enc *xml.Encoder, table *Table, images *ImageBundle) error {
	start := xml.StartElement{Name: xml.Name{Local: "table"}}
	if err := enc.EncodeToken(start); err != nil {
		return internalErr(FormatXML, err)
	}
	thead := xml.StartElement{Name: xml.Name{Local: "thead"}}
	if err := enc.EncodeToken(thead); err != nil {
		return internalErr(FormatXML, err)
	}
	for _, h := range table.Headers {
		th := xml.StartElement{
			Name: xml.Name{Local: "th"},
			Attr: []xml.Attr{floatAttr("width", h.Width)},
		}
		if err := enc.EncodeToken(th); err != nil {
			return internalErr(FormatXML, err)
		}
		if err := t.encodeElement(enc, h.Element, images); err != nil {
			return err
		}
		if err := enc.EncodeToken(th.End()); err != nil {
			return internalErr(FormatXML, err)
		}
	}
	if err := enc.EncodeToken(thead.End()); err != nil {
		return internalErr(FormatXML, err)
	}
	tbody := xml.StartElement{Name: xml.Name{Local: "tbody"}}
	if err := enc.EncodeToken(tbody); err != nil {
		return internalErr(FormatXML, err)
	}
	for _, row := range table.Rows {
		tr := xml.StartElement{Name: xml.Name{Local: "tr"}}
		if err := enc.EncodeToken(tr); err != nil {
			return internalErr(FormatXML, err)
		}
		for _, cell := range row.Cells {
			if err := t.encodeWrapped(enc, "td", []Element{cell.Element}, images); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(tr.End()); err != nil {
			return internalErr(FormatXML, err)
		}
	}
	if err := enc.EncodeToken(tbody.End()); err != nil {
		return internalErr(FormatXML, err)
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return internalErr(FormatXML, err)
	}
	return nil
}

func encodeTextElement(enc *xml.Encoder, start xml.StartElement, text string) error {
	if err := enc.EncodeToken(start); err != nil {
		return internalErr(FormatXML, err)
	}
	if err := enc.EncodeToken(xml.CharData(text)); err != nil {
		return internalErr(FormatXML, err)
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return internalErr(FormatXML, err)
	}
	return nil
}

func encodeEmptyElement(enc *xml.Encoder, start xml.StartElement) error {
	if err := enc.EncodeToken(start); err != nil {
		return internalErr(FormatXML, err)
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return internalErr(FormatXML, err)
	}
	return nil
}

func stringAttr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func intAttr(name string, value int) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: strconv.Itoa(value)}
}

func floatAttr(name string, value float64) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: strconv.FormatFloat(value, 'f', -1, 64)}
}

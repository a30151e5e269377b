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
	"encoding/json"
	"fmt"
)

// jsonTransformer is the canonical lossless codec: the Document model
// serialized verbatim. Each element is a single-key object whose key is
// the variant name. This wire format is a stable external interface.
type jsonTransformer struct {
	engine *Engine
}

func newJSONTransformer(e *Engine) *jsonTransformer {
	return &jsonTransformer{engine: e}
}

type jsonDoc struct {
	Elements         []jsonElement `json:"elements"`
	PageWidth        float64       `json:"page_width"`
	PageHeight       float64       `json:"page_height"`
	LeftPageIndent   float64       `json:"left_page_indent"`
	RightPageIndent  float64       `json:"right_page_indent"`
	TopPageIndent    float64       `json:"top_page_indent"`
	BottomPageIndent float64       `json:"bottom_page_indent"`
	PageHeader       []jsonElement `json:"page_header"`
	PageFooter       []jsonElement `json:"page_footer"`
}

// jsonElement is the single-key variant envelope. Exactly one field is
// set per element.
type jsonElement struct {
	Header    *jsonHeader    `json:"Header,omitempty"`
	Paragraph *jsonParagraph `json:"Paragraph,omitempty"`
	Text      *jsonText      `json:"Text,omitempty"`
	Hyperlink *jsonHyperlink `json:"Hyperlink,omitempty"`
	Image     *jsonImage     `json:"Image,omitempty"`
	List      *jsonList      `json:"List,omitempty"`
	Table     *jsonTable     `json:"Table,omitempty"`
	PageBreak *struct{}      `json:"PageBreak,omitempty"`
}

type jsonHeader struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

type jsonParagraph struct {
	Elements []jsonElement `json:"elements"`
}

type jsonText struct {
	Text string `json:"text"`
	Size int    `json:"size"`
}

type jsonHyperlink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Alt   string `json:"alt"`
	Size  int    `json:"size"`
}

type jsonImage struct {
	Bytes     []byte `json:"bytes,omitempty"`
	Key       string `json:"key,omitempty"`
	Title     string `json:"title"`
	Alt       string `json:"alt"`
	ImageType string `json:"image_type"`
}

type jsonList struct {
	Elements []jsonListItem `json:"elements"`
	Numbered bool           `json:"numbered"`
}

type jsonListItem struct {
	Element jsonElement `json:"element"`
}

type jsonTable struct {
	Headers []jsonTableHeader `json:"headers"`
	Rows    []jsonTableRow    `json:"rows"`
}

type jsonTableHeader struct {
	Element jsonElement `json:"element"`
	Width   float64     `json:"width"`
}

type jsonTableRow struct {
	Cells []jsonTableCell `json:"cells"`
}

type jsonTableCell struct {
	Element jsonElement `json:"element"`
}

func (t *jsonTransformer) Parse(data []byte, _ *ImageBundle) (*Document, *ImageBundle, error) {
	if len(data) == 0 {
		return NewDocument(), NewImageBundle(), nil
	}
	var wire jsonDoc
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, nil, malformed(FormatJSON, err)
	}
	doc := &Document{
		PageWidth:        wire.PageWidth,
		PageHeight:       wire.PageHeight,
		LeftPageIndent:   wire.LeftPageIndent,
		RightPageIndent:  wire.RightPageIndent,
		TopPageIndent:    wire.TopPageIndent,
		BottomPageIndent: wire.BottomPageIndent,
	}
	var err error
	if doc.Elements, err = decodeJSONElements(wire.Elements); err != nil {
		return nil, nil, err
	}
	if doc.PageHeader, err = decodeJSONElements(wire.PageHeader); err != nil {
		return nil, nil, err
	}
	if doc.PageFooter, err = decodeJSONElements(wire.PageFooter); err != nil {
		return nil, nil, err
	}
	return doc, NewImageBundle(), nil
}

func (t *jsonTransformer) Generate(doc *Document, images *ImageBundle) ([]byte, *ImageBundle, error) {
	wire := jsonDoc{
		Elements:         make([]jsonElement, 0, len(doc.Elements)),
		PageWidth:        doc.PageWidth,
		PageHeight:       doc.PageHeight,
		LeftPageIndent:   doc.LeftPageIndent,
		RightPageIndent:  doc.RightPageIndent,
		TopPageIndent:    doc.TopPageIndent,
		BottomPageIndent: doc.BottomPageIndent,
		PageHeader:       make([]jsonElement, 0, len(doc.PageHeader)),
		PageFooter:       make([]jsonElement, 0, len(doc.PageFooter)),
	}
	for _, el := range doc.Elements {
		enc, err := encodeJSONElement(el, images)
		if err != nil {
			return nil, nil, err
		}
		wire.Elements = append(wire.Elements, enc)
	}
	for _, el := range doc.PageHeader {
		enc, err := encodeJSONElement(el, images)
		if err != nil {
			return nil, nil, err
		}
		wire.PageHeader = append(wire.PageHeader, enc)
	}
	for _, el := range doc.PageFooter {
		enc, err := encodeJSONElement(el, images)
		if err != nil {
			return nil, nil, err
		}
		wire.PageFooter = append(wire.PageFooter, enc)
	}
	out, err := json.Marshal(wire)
	if err != nil {
		return nil, nil, internalErr(FormatJSON, err)
	}
	return out, NewImageBundle(), nil
}

func encodeJSONElement(el Element, images *ImageBundle) (jsonElement, error) {
	switch e := el.(type) {
	case *Header:
		return jsonElement{Header: &jsonHeader{Level: e.Level, Text: e.Text}}, nil
	case *Paragraph:
		children := make([]jsonElement, 0, len(e.Elements))
		for _, child := range e.Elements {
			enc, err := encodeJSONElement(child, images)
			if err != nil {
				return jsonElement{}, err
			}
			children = append(children, enc)
		}
		return jsonElement{Paragraph: &jsonParagraph{Elements: children}}, nil
	case *Text:
		return jsonElement{Text: &jsonText{Text: e.Text, Size: e.Size}}, nil
	case *Hyperlink:
		return jsonElement{Hyperlink: &jsonHyperlink{Title: e.Title, URL: e.URL, Alt: e.Alt, Size: e.Size}}, nil
	case *Image:
		im := &jsonImage{Title: e.Title, Alt: e.Alt, ImageType: imageTypeName(e.Type)}
		if e.Inline() {
			im.Bytes = e.Data
		} else {
			// Keyed images stay keyed on the wire; the reader side
			// resolves them against its own bundle.
			im.Key = e.Key
			if _, ok := images.Get(e.Key); !ok {
				return jsonElement{}, missingImage(e.Key, nil)
			}
		}
		return jsonElement{Image: im}, nil
	case *List:
		items := make([]jsonListItem, 0, len(e.Items))
		for _, item := range e.Items {
			enc, err := encodeJSONElement(item.Element, images)
			if err != nil {
				return jsonElement{}, err
			}
			items = append(items, jsonListItem{Element: enc})
		}
		return jsonElement{List: &jsonList{Elements: items, Numbered: e.Numbered}}, nil
	case *Table:
		headers := make([]jsonTableHeader, 0, len(e.Headers))
		for _, h := range e.Headers {
			enc, err := encodeJSONElement(h.Element, images)
			if err != nil {
				return jsonElement{}, err
			}
			headers = append(headers, jsonTableHeader{Element: enc, Width: h.Width})
		}
		rows := make([]jsonTableRow, 0, len(e.Rows))
		for _, row := range e.Rows {
			cells := make([]jsonTableCell, 0, len(row.Cells))
			for _, cell := range row.Cells {
				enc, err := encodeJSONElement(cell.Element, images)
				if err != nil {
					return jsonElement{}, err
				}
				cells = append(cells, jsonTableCell{Element: enc})
			}
			rows = append(rows, jsonTableRow{Cells: cells})
		}
		return jsonElement{Table: &jsonTable{Headers: headers, Rows: rows}}, nil
	case *PageBreak:
		return jsonElement{PageBreak: &struct{}{}}, nil
	}
	return jsonElement{}, internalErr(FormatJSON, fmt.Errorf("unknown element %T", el))
}

func decodeJSONElements(wire []jsonElement) ([]Element, error) {
	if len(wire) == 0 {
		return nil, nil
	}
	out := make([]Element, 0, len(wire))
	for _, enc := range wire {
		el, err := decodeJSONElement(enc)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

func decodeJSONElement(enc jsonElement) (Element, error) {
	switch {
	case enc.Header != nil:
		return &Header{Level: ClampHeaderLevel(enc.Header.Level), Text: enc.Header.Text}, nil
	case enc.Paragraph != nil:
		children, err := decodeJSONElements(enc.Paragraph.Elements)
		if err != nil {
			return nil, err
		}
		return &Paragraph{Elements: children}, nil
	case enc.Text != nil:
		return &Text{Text: enc.Text.Text, Size: enc.Text.Size}, nil
	case enc.Hyperlink != nil:
		h := enc.Hyperlink
		return &Hyperlink{Title: h.Title, URL: h.URL, Alt: h.Alt, Size: h.Size}, nil
	case enc.Image != nil:
		im := enc.Image
		return &Image{Data: im.Bytes, Key: im.Key, Title: im.Title, Alt: im.Alt, Type: imageTypeFromName(im.ImageType)}, nil
	case enc.List != nil:
		var items []ListItem
		for _, item := range enc.List.Elements {
			el, err := decodeJSONElement(item.Element)
			if err != nil {
				return nil, err
			}
			items = append(items, ListItem{Element: el})
		}
		return &List{Items: items, Numbered: enc.List.Numbered}, nil
	case enc.Table != nil:
		var headers []TableHeader
		for _, h := range enc.Table.Headers {
			el, err := decodeJSONElement(h.Element)
			if err != nil {
				return nil, err
			}
			headers = append(headers, TableHeader{Element: el, Width: h.Width})
		}
		var rows []TableRow
		for _, row := range enc.Table.Rows {
			var cells []TableCell
			for _, cell := range row.Cells {
				el, err := decodeJSONElement(cell.Element)
				if err != nil {
					return nil, err
				}
				cells = append(cells, TableCell{Element: el})
			}
			rows = append(rows, TableRow{Cells: cells})
		}
		table := &Table{Headers: headers, Rows: rows}
		padTableRows(table)
		return table, nil
	case enc.PageBreak != nil:
		return &PageBreak{}, nil
	}
	return nil, malformedDesc(FormatJSON, "element object has no known variant key")
}

// imageTypeName maps the model image type to its wire name.
func imageTypeName(t ImageType) string {
	switch t {
	case ImageJpeg:
		return "Jpeg"
	case ImageGif:
		return "Gif"
	default:
		return "Png"
	}
}

func imageTypeFromName(name string) ImageType {
	switch name {
	case "Jpeg":
		return ImageJpeg
	case "Gif":
		return ImageGif
	default:
		return ImagePng
	}
}

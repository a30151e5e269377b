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
)

// rtfTransformer is generate-only. The writer emits RTF 1.5 with a
// single font table entry; non-ASCII runs use \uN escapes so no code
// page gymnastics are needed.
type rtfTransformer struct {
	engine *Engine
}

func newRTFTransformer(e *Engine) *rtfTransformer {
	return &rtfTransformer{engine: e}
}

// Header point sizes by level. RTF font sizes are half-points.
var rtfHeaderSizes = [6]int{32, 28, 24, 20, 18, 16}

func (t *rtfTransformer) Parse(_ []byte, _ *ImageBundle) (*Document, *ImageBundle, error) {
	return nil, nil, unsupported(FormatRTF, "rtf parsing is not implemented")
}

func (t *rtfTransformer) Generate(doc *Document, images *ImageBundle) ([]byte, *ImageBundle, error) {
	var b strings.Builder
	b.WriteString(`{\rtf1\ansi\deff0{\fonttbl{\f0 Times New Roman;}}`)
	b.WriteString("\n")
	for _, el := range doc.Elements {
		if err := t.generateElement(&b, el, images); err != nil {
			return nil, nil, err
		}
	}
	b.WriteString("}")
	return []byte(b.String()), NewImageBundle(), nil
}

func (t *rtfTransformer) generateElement(b *strings.Builder, el Element, images *ImageBundle) error {
	switch e := el.(type) {
	case *Header:
		level := ClampHeaderLevel(e.Level)
		fmt.Fprintf(b, `{\pard\b\fs%d %s\par}`, rtfHeaderSizes[level-1], escapeRTF(e.Text))
		b.WriteString("\n")
	case *Paragraph:
		b.WriteString(`{\pard\fs` + fmt.Sprint(DefaultTextSize*2) + " ")
		for _, child := range e.Elements {
			if err := t.generateInline(b, child, images); err != nil {
				return err
			}
		}
		b.WriteString(`\par}`)
		b.WriteString("\n")
	case *Text:
		b.WriteString(`{\pard `)
		b.WriteString(escapeRTF(e.Text))
		b.WriteString(`\par}`)
		b.WriteString("\n")
	case *List:
		t.generateList(b, e, 0, images)
	case *Table:
		t.generateTable(b, e)
	case *PageBreak:
		b.WriteString(`\page `)
		b.WriteString("\n")
	case *Hyperlink:
		return t.generateInline(b, e, images)
	case *Image:
		// RTF image embedding (\pict) is not written; report the drop.
		t.warn("Image", "rtf writer does not embed images")
	}
	return nil
}

func (t *rtfTransformer) generateInline(b *strings.Builder, el Element, images *ImageBundle) error {
	switch e := el.(type) {
	case *Text:
		b.WriteString(escapeRTF(e.Text))
	case *Hyperlink:
		fmt.Fprintf(b, `{\field{\*\fldinst HYPERLINK "%s"}{\fldrslt %s}}`,
			escapeRTF(e.URL), escapeRTF(e.Title))
	case *Image:
		if _, err := resolveImage(e, images); err != nil {
			return err
		}
		t.warn("Image", "rtf writer does not embed images")
	default:
		t.warn(variantName(el), "not representable inline in rtf")
	}
	return nil
}

func (t *rtfTransformer) generateList(b *strings.Builder, list *List, depth int, images *ImageBundle) {
	counter := 0
	for _, item := range list.Items {
		if nested, ok := item.Element.(*List); ok {
			t.generateList(b, nested, depth+1, images)
			continue
		}
		counter++
		marker := `\bullet `
		if list.Numbered {
			marker = fmt.Sprintf("%d. ", counter)
		}
		indent := 360 * (depth + 1)
		fmt.Fprintf(b, `{\pard\li%d %s%s\par}`, indent, marker, escapeRTF(plainText(item.Element)))
		b.WriteString("\n")
	}
}

func (t *rtfTransformer) generateTable(b *strings.Builder, table *Table) {
	// Column edges in twips, from the model's millimeter widths.
	writeRow := func(cells []string) {
		b.WriteString(`\trowd`)
		edge := 0
		for i := range cells {
			width := DefaultColumnWidth
			if i < len(table.Headers) && table.Headers[i].Width > 0 {
				width = table.Headers[i].Width
			}
			edge += int(width * 56.7)
			fmt.Fprintf(b, `\cellx%d`, edge)
		}
		b.WriteString("\n")
		for _, cell := range cells {
			fmt.Fprintf(b, `\intbl %s\cell `, escapeRTF(cell))
		}
		b.WriteString(`\row`)
		b.WriteString("\n")
	}
	header := make([]string, 0, len(table.Headers))
	for _, h := range table.Headers {
		header = append(header, plainText(h.Element))
	}
	writeRow(header)
	for _, row := range table.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, plainText(cell.Element))
		}
		writeRow(cells)
	}
}

func (t *rtfTransformer) warn(variant, reason string) {
	t.engine.warning(Warning{Format: FormatRTF, Variant: variant, Reason: reason})
}

// escapeRTF escapes control characters and writes non-ASCII runes as
// \uN with a "?" fallback for old readers.
func escapeRTF(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\' || r == '{' || r == '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\line `)
		case r < 0x80:
			b.WriteRune(r)
		default:
			// RTF \u takes a signed 16-bit value.
			fmt.Fprintf(&b, `\u%d?`, int16(r))
		}
	}
	return b.String()
}

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

// textTransformer handles plain text. Parse yields one Paragraph of
// Text runs, one per source line, each followed by a newline run, so
// generate reproduces the source verbatim.
type textTransformer struct {
	engine *Engine
}

func newTextTransformer(e *Engine) *textTransformer {
	return &textTransformer{engine: e}
}

func (t *textTransformer) Parse(data []byte, _ *ImageBundle) (*Document, *ImageBundle, error) {
	if len(data) == 0 {
		return NewDocument(), NewImageBundle(), nil
	}
	text := normalizeNewlines(decodeText(data))
	var elements []Element
	rest := text
	for rest != "" {
		line, tail, found := strings.Cut(rest, "\n")
		elements = append(elements, &Text{Text: line, Size: DefaultTextSize})
		if found {
			elements = append(elements, &Text{Text: "\n", Size: DefaultTextSize})
		}
		rest = tail
		if !found {
			break
		}
	}
	return NewDocument(&Paragraph{Elements: elements}), NewImageBundle(), nil
}

func (t *textTransformer) Generate(doc *Document, _ *ImageBundle) ([]byte, *ImageBundle, error) {
	var b strings.Builder
	for _, el := range doc.Elements {
		t.generateElement(&b, el, nil)
	}
	return []byte(b.String()), NewImageBundle(), nil
}

// generateElement renders one block. listPath carries the numbered
// flag of each enclosing list, innermost last.
func (t *textTransformer) generateElement(b *strings.Builder, el Element, listPath []bool) {
	switch e := el.(type) {
	case *Text:
		b.WriteString(e.Text)
	case *Header:
		b.WriteString(e.Text)
		b.WriteString("\n")
	case *Paragraph:
		var inner strings.Builder
		for _, child := range e.Elements {
			t.generateElement(&inner, child, listPath)
		}
		s := inner.String()
		b.WriteString(s)
		if s != "" && !strings.HasSuffix(s, "\n") {
			b.WriteString("\n")
		}
	case *Hyperlink:
		b.WriteString(e.Title)
	case *List:
		t.generateList(b, e, listPath)
	case *Table:
		t.generateTable(b, e)
	case *Image:
		t.warn("Image", "plain text cannot embed images")
	case *PageBreak:
		b.WriteString("\n")
	}
}

func (t *textTransformer) generateList(b *strings.Builder, list *List, listPath []bool) {
	listPath = append(listPath, list.Numbered)
	counter := 0
	for _, item := range list.Items {
		if nested, ok := item.Element.(*List); ok {
			t.generateList(b, nested, listPath)
			continue
		}
		counter++
		b.WriteString(strings.Repeat("  ", len(listPath)-1))
		if list.Numbered {
			fmt.Fprintf(b, "%d. ", counter)
		} else {
			b.WriteString("- ")
		}
		b.WriteString(plainText(item.Element))
		b.WriteString("\n")
	}
}

// generateTable lays the table out as a padded pipe grid.
func (t *textTransformer) generateTable(b *strings.Builder, table *Table) {
	widths := make([]int, len(table.Headers))
	for i, h := range table.Headers {
		widths[i] = len(plainText(h.Element))
	}
	for _, row := range table.Rows {
		for i, cell := range row.Cells {
			if i < len(widths) {
				if n := len(plainText(cell.Element)); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}
	writeRow := func(cells []string) {
		for i, cell := range cells {
			fmt.Fprintf(b, "| %-*s ", widths[i], cell)
		}
		b.WriteString("|\n")
	}
	header := make([]string, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = plainText(h.Element)
	}
	writeRow(header)
	for _, w := range widths {
		b.WriteString("|")
		b.WriteString(strings.Repeat("-", w+2))
	}
	b.WriteString("|\n")
	for _, row := range table.Rows {
		cells := make([]string, 0, len(widths))
		for i, cell := range row.Cells {
			if i < len(widths) {
				cells = append(cells, plainText(cell.Element))
			}
		}
		writeRow(cells)
	}
}

func (t *textTransformer) warn(variant, reason string) {
	t.engine.warning(Warning{Format: FormatText, Variant: variant, Reason: reason})
}

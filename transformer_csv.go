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
	"encoding/csv"
	"strings"
)

// csvTransformer maps CSV to a single Table: the first record is the
// header row, every following record a data row. On generate, every
// non-Table block is dropped with a warning; tables are written back
// to back.
type csvTransformer struct {
	engine *Engine
}

func newCSVTransformer(e *Engine) *csvTransformer {
	return &csvTransformer{engine: e}
}

func (t *csvTransformer) Parse(data []byte, _ *ImageBundle) (*Document, *ImageBundle, error) {
	if len(data) == 0 {
		return NewDocument(), NewImageBundle(), nil
	}
	text := normalizeNewlines(decodeText(data))
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, malformed(FormatCSV, err)
	}
	if len(records) == 0 {
		return NewDocument(), NewImageBundle(), nil
	}
	table := &Table{}
	for _, field := range records[0] {
		table.Headers = append(table.Headers, TableHeader{
			Element: &Text{Text: field, Size: DefaultTextSize},
			Width:   DefaultColumnWidth,
		})
	}
	for _, record := range records[1:] {
		var row TableRow
		for _, field := range record {
			row.Cells = append(row.Cells, TableCell{
				Element: &Text{Text: field, Size: DefaultTextSize},
			})
		}
		table.Rows = append(table.Rows, row)
	}
	padTableRows(table)
	return NewDocument(table), NewImageBundle(), nil
}

func (t *csvTransformer) Generate(doc *Document, _ *ImageBundle) ([]byte, *ImageBundle, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for _, el := range doc.Elements {
		table, ok := el.(*Table)
		if !ok {
			t.engine.warning(Warning{
				Format:  FormatCSV,
				Variant: variantName(el),
				Reason:  "csv represents tables only",
			})
			continue
		}
		record := make([]string, 0, len(table.Headers))
		for _, h := range table.Headers {
			record = append(record, plainText(h.Element))
		}
		if err := writer.Write(record); err != nil {
			return nil, nil, internalErr(FormatCSV, err)
		}
		for _, row := range table.Rows {
			record = record[:0]
			for _, cell := range row.Cells {
				record = append(record, plainText(cell.Element))
			}
			if err := writer.Write(record); err != nil {
				return nil, nil, internalErr(FormatCSV, err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, nil, internalErr(FormatCSV, err)
	}
	return buf.Bytes(), NewImageBundle(), nil
}

// variantName names an element variant for warnings.
func variantName(el Element) string {
	switch el.(type) {
	case *Header:
		return "Header"
	case *Paragraph:
		return "Paragraph"
	case *Text:
		return "Text"
	case *Hyperlink:
		return "Hyperlink"
	case *Image:
		return "Image"
	case *List:
		return "List"
	case *Table:
		return "Table"
	case *PageBreak:
		return "PageBreak"
	}
	return "Unknown"
}

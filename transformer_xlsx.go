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

	"github.com/xuri/excelize/v2"
)

// xlsxTransformer maps workbooks to Tables, one Table per sheet with
// the first row as the header. On generate each Table becomes its own
// sheet; everything else is dropped with a warning.
type xlsxTransformer struct {
	engine *Engine
}

func newXLSXTransformer(e *Engine) *xlsxTransformer {
	return &xlsxTransformer{engine: e}
}

func (t *xlsxTransformer) Parse(data []byte, _ *ImageBundle) (*Document, *ImageBundle, error) {
	if len(data) == 0 {
		return NewDocument(), NewImageBundle(), nil
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, malformed(FormatXLSX, err)
	}
	defer f.Close()

	doc := NewDocument()
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, nil, malformed(FormatXLSX, fmt.Errorf("sheet %q: %w", sheet, err))
		}
		if table := tableFromRows(rows); table != nil {
			doc.Elements = append(doc.Elements, table)
		}
	}
	return doc, NewImageBundle(), nil
}

// tableFromRows builds a Table from string rows, first row as header.
func tableFromRows(rows [][]string) *Table {
	if len(rows) == 0 {
		return nil
	}
	table := &Table{}
	for _, field := range rows[0] {
		table.Headers = append(table.Headers, TableHeader{
			Element: &Text{Text: field, Size: DefaultTextSize},
			Width:   DefaultColumnWidth,
		})
	}
	for _, record := range rows[1:] {
		var row TableRow
		for _, field := range record {
			row.Cells = append(row.Cells, TableCell{
				Element: &Text{Text: field, Size: DefaultTextSize},
			})
		}
		table.Rows = append(table.Rows, row)
	}
	padTableRows(table)
	return table
}

func (t *xlsxTransformer) Generate(doc *Document, _ *ImageBundle) ([]byte, *ImageBundle, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetNum := 0
	for _, el := range doc.Elements {
		table, ok := el.(*Table)
		if !ok {
			t.engine.warning(Warning{
				Format:  FormatXLSX,
				Variant: variantName(el),
				Reason:  "xlsx represents tables only",
			})
			continue
		}
		sheetNum++
		sheet := fmt.Sprintf("Sheet%d", sheetNum)
		if sheetNum == 1 {
			// The workbook always starts with Sheet1.
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, nil, internalErr(FormatXLSX, err)
		}
		if err := writeSheet(f, sheet, table); err != nil {
			return nil, nil, err
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, nil, internalErr(FormatXLSX, err)
	}
	return buf.Bytes(), NewImageBundle(), nil
}

func writeSheet(f *excelize.File, sheet string, table *Table) error {
	for i, h := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return internalErr(FormatXLSX, err)
		}
		if err := f.SetCellValue(sheet, cell, plainText(h.Element)); err != nil {
			return internalErr(FormatXLSX, err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return internalErr(FormatXLSX, err)
		}
		if h.Width > 0 {
			if err := f.SetColWidth(sheet, col, col, h.Width); err != nil {
				return internalErr(FormatXLSX, err)
			}
		}
	}
	for r, row := range table.Rows {
		for c, cell := range row.Cells {
			name, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return internalErr(FormatXLSX, err)
			}
			if err := f.SetCellValue(sheet, name, plainText(cell.Element)); err != nil {
				return internalErr(FormatXLSX, err)
			}
		}
	}
	return nil
}

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

	"github.com/docshift/docshift/internal/odf"
)

// odsTransformer maps OpenDocument spreadsheets to Tables, one per
// sheet, first row as header. Same fidelity rules as the other
// spreadsheet adapters: generate drops non-Table blocks with a
// warning.
type odsTransformer struct {
	engine *Engine
}

func newODSTransformer(e *Engine) *odsTransformer {
	return &odsTransformer{engine: e}
}

func (t *odsTransformer) Parse(data []byte, _ *ImageBundle) (*Document, *ImageBundle, error) {
	if len(data) == 0 {
		return NewDocument(), NewImageBundle(), nil
	}
	sheets, err := odf.Read(data)
	if err != nil {
		return nil, nil, malformed(FormatODS, err)
	}
	doc := NewDocument()
	for _, sheet := range sheets {
		if table := tableFromRows(sheet.Rows); table != nil {
			doc.Elements = append(doc.Elements, table)
		}
	}
	return doc, NewImageBundle(), nil
}

func (t *odsTransformer) Generate(doc *Document, _ *ImageBundle) ([]byte, *ImageBundle, error) {
	var sheets []odf.Sheet
	for _, el := range doc.Elements {
		table, ok := el.(*Table)
		if !ok {
			t.engine.warning(Warning{
				Format:  FormatODS,
				Variant: variantName(el),
				Reason:  "ods represents tables only",
			})
			continue
		}
		sheet := odf.Sheet{Name: fmt.Sprintf("Sheet%d", len(sheets)+1)}
		header := make([]string, 0, len(table.Headers))
		for _, h := range table.Headers {
			header = append(header, plainText(h.Element))
		}
		sheet.Rows = append(sheet.Rows, header)
		for _, row := range table.Rows {
			record := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				record = append(record, plainText(cell.Element))
			}
			sheet.Rows = append(sheet.Rows, record)
		}
		sheets = append(sheets, sheet)
	}
	out, err := odf.Write(sheets)
	if err != nil {
		return nil, nil, internalErr(FormatODS, err)
	}
	return out, NewImageBundle(), nil
}

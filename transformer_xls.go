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

	"github.com/extrame/xls"
)

// xlsTransformer reads legacy BIFF workbooks. Parse only; writing the
// legacy format is not supported.
type xlsTransformer struct {
	engine *Engine
}

func newXLSTransformer(e *Engine) *xlsTransformer {
	return &xlsTransformer{engine: e}
}

func (t *xlsTransformer) Parse(data []byte, _ *ImageBundle) (*Document, *ImageBundle, error) {
	if len(data) == 0 {
		return NewDocument(), NewImageBundle(), nil
	}
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, nil, malformed(FormatXLS, err)
	}
	doc := NewDocument()
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			var record []string
			for c := 0; c < row.LastCol(); c++ {
				record = append(record, row.Col(c))
			}
			rows = append(rows, record)
		}
		if table := tableFromRows(rows); table != nil {
			doc.Elements = append(doc.Elements, table)
		}
	}
	return doc, NewImageBundle(), nil
}

func (t *xlsTransformer) Generate(_ *Document, _ *ImageBundle) ([]byte, *ImageBundle, error) {
	return nil, nil, unsupported(FormatXLS, "writing legacy xls workbooks is not implemented")
}

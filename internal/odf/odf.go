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

// Package odf reads and writes OpenDocument spreadsheets. Only the
// table content is handled: sheet names, cell text, and repeated
// row/column expansion on read; flat text cells on write.
package odf

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MIMEType is the ODS package mimetype entry.
const MIMEType = "application/vnd.oasis.opendocument.spreadsheet"

// Sheet is one spreadsheet table as raw cell text.
type Sheet struct {
	Name string
	Rows [][]string
}

// repeat expansion cap, so a pathological repeat count does not
// explode into millions of cells.
const maxRepeat = 4096

// Read extracts every sheet from an ODS package.
func Read(data []byte) ([]Sheet, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open ods package: %w", err)
	}
	content, err := readZipFile(zr, "content.xml")
	if err != nil {
		return nil, err
	}
	return parseContent(content)
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("ods package has no %s", name)
}

func parseContent(content []byte) ([]Sheet, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	var sheets []Sheet
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("content.xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "table" {
			continue
		}
		sheet, err := parseSheet(dec, start)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func parseSheet(dec *xml.Decoder, start xml.StartElement) (Sheet, error) {
	sheet := Sheet{Name: attr(start, "name")}
	// Empty rows are held back and materialized only when a later row
	// has content, so interior gaps keep their position while a
	// repeated empty trailer stays filler.
	pendingEmpty := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return sheet, fmt.Errorf("content.xml: %w", err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			if tk.Name.Local != "table-row" {
				if err := dec.Skip(); err != nil {
					return sheet, fmt.Errorf("content.xml: %w", err)
				}
				continue
			}
			row, err := parseRow(dec, tk)
			if err != nil {
				return sheet, err
			}
			repeat := repeatCount(tk, "number-rows-repeated")
			if len(row) == 0 {
				pendingEmpty += repeat
				continue
			}
			for ; pendingEmpty > 0; pendingEmpty-- {
				sheet.Rows = append(sheet.Rows, nil)
			}
			for i := 0; i < repeat; i++ {
				sheet.Rows = append(sheet.Rows, row)
			}
		case xml.EndElement:
			if tk.Name.Local == "table" {
				return sheet, nil
			}
		}
	}
}

func parseRow(dec *xml.Decoder, start xml.StartElement) ([]string, error) {
	var cells []string
	// Same hold-back as rows: empty cells land only when a later cell
	// has content, so h1,<empty x3>,h5 keeps h5 in column 5 while an
	// empty trailer is dropped.
	pendingEmpty := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("content.xml: %w", err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			if tk.Name.Local != "table-cell" && tk.Name.Local != "covered-table-cell" {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("content.xml: %w", err)
				}
				continue
			}
			text, err := cellText(dec, tk.Name.Local)
			if err != nil {
				return nil, err
			}
			repeat := repeatCount(tk, "number-columns-repeated")
			if text == "" {
				pendingEmpty += repeat
				continue
			}
			for ; pendingEmpty > 0; pendingEmpty-- {
				cells = append(cells, "")
			}
			for i := 0; i < repeat; i++ {
				cells = append(cells, text)
			}
		case xml.EndElement:
			if tk.Name.Local == start.Name.Local {
				return cells, nil
			}
		}
	}
}

// cellText gathers the text:p content of one cell.
func cellText(dec *xml.Decoder, end string) (string, error) {
	var b strings.Builder
	depth := 0
	first := true
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("content.xml: %w", err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			depth++
			if tk.Name.Local == "p" && !first {
				b.WriteString("\n")
			}
			first = false
		case xml.CharData:
			b.Write(tk)
		case xml.EndElement:
			if depth == 0 && tk.Name.Local == end {
				return b.String(), nil
			}
			depth--
		}
	}
}

func repeatCount(start xml.StartElement, name string) int {
	n, err := strconv.Atoi(attr(start, name))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxRepeat {
		return maxRepeat
	}
	return n
}

func attr(start xml.StartElement, local string) string {
	for _, a := range start.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Write builds a complete ODS package from sheets. The mimetype entry
// is stored first and uncompressed, as ODF packaging requires.
func Write(sheets []Sheet) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	mw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return nil, fmt.Errorf("write mimetype: %w", err)
	}
	if _, err := mw.Write([]byte(MIMEType)); err != nil {
		return nil, fmt.Errorf("write mimetype: %w", err)
	}

	entries := map[string]string{
		"META-INF/manifest.xml": manifestXML,
		"styles.xml":            stylesXML,
		"content.xml":           contentXML(sheets),
	}
	for _, name := range []string{"META-INF/manifest.xml", "styles.xml", "content.xml"} {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close ods package: %w", err)
	}
	return buf.Bytes(), nil
}

const manifestXML = `<?xml version="1.0" encoding="UTF-8"?>
<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0" manifest:version="1.2">
 <manifest:file-entry manifest:full-path="/" manifest:media-type="` + MIMEType + `"/>
 <manifest:file-entry manifest:full-path="content.xml" manifest:media-type="text/xml"/>
 <manifest:file-entry manifest:full-path="styles.xml" manifest:media-type="text/xml"/>
</manifest:manifest>
`

const stylesXML = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-styles xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" office:version="1.2"/>
`

func contentXML(sheets []Sheet) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" office:version="1.2">` + "\n")
	b.WriteString("<office:body>\n<office:spreadsheet>\n")
	for i, sheet := range sheets {
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		fmt.Fprintf(&b, "<table:table table:name=\"%s\">\n", escapeXML(name))
		for _, row := range sheet.Rows {
			b.WriteString("<table:table-row>\n")
			for _, cell := range row {
				fmt.Fprintf(&b, `<table:table-cell office:value-type="string"><text:p>%s</text:p></table:table-cell>`+"\n",
					escapeXML(cell))
			}
			b.WriteString("</table:table-row>\n")
		}
		b.WriteString("</table:table>\n")
	}
	b.WriteString("</office:spreadsheet>\n</office:body>\n</office:document-content>\n")
	return b.String()
}

func escapeXML(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

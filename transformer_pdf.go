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
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledongthuc/pdf"
)

// pdfTransformer extracts text lines on parse and typesets the model
// on generate. Parsing is text-only: each page becomes a Paragraph of
// line runs, pages separated by PageBreak. Generation honors the
// document's page geometry and renders page header/footer chrome.
type pdfTransformer struct {
	engine *Engine
}

func newPDFTransformer(e *Engine) *pdfTransformer {
	return &pdfTransformer{engine: e}
}

func (t *pdfTransformer) Parse(data []byte, _ *ImageBundle) (*Document, *ImageBundle, error) {
	if len(data) == 0 {
		return NewDocument(), NewImageBundle(), nil
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, malformed(FormatPDF, err)
	}
	doc := NewDocument()
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text := extractPDFPageText(page)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if len(doc.Elements) > 0 {
			doc.Elements = append(doc.Elements, &PageBreak{})
		}
		var runs []Element
		for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
			runs = append(runs,
				&Text{Text: line, Size: DefaultTextSize},
				&Text{Text: "\n", Size: DefaultTextSize})
		}
		doc.Elements = append(doc.Elements, &Paragraph{Elements: runs})
	}
	return doc, NewImageBundle(), nil
}

type pdfTextSpan struct {
	x    float64
	y    float64
	text string
	size float64
}

// extractPDFPageText pulls the text of one page: row extraction when
// the reader offers it, position-based line grouping as the fallback.
func extractPDFPageText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var result strings.Builder
		for _, row := range rows {
			var line strings.Builder
			gap := false
			for _, word := range row.Content {
				if word.S == "" {
					gap = true
					continue
				}
				if line.Len() > 0 && gap && !strings.HasSuffix(line.String(), " ") {
					line.WriteString(" ")
				}
				line.WriteString(word.S)
				gap = false
			}
			if text := strings.TrimSpace(line.String()); text != "" {
				result.WriteString(text)
				result.WriteString("\n")
			}
		}
		if strings.TrimSpace(result.String()) != "" {
			return result.String()
		}
	}

	content := page.Content()
	var spans []pdfTextSpan
	for _, item := range content.Text {
		if strings.TrimSpace(item.S) == "" {
			continue
		}
		spans = append(spans, pdfTextSpan{x: item.X, y: item.Y, text: item.S, size: item.FontSize})
	}
	if len(spans) == 0 {
		return ""
	}

	yTolerance := 3.0
	if spans[0].size > 0 {
		yTolerance = spans[0].size * 0.3
	}
	type line struct {
		y     float64
		spans []pdfTextSpan
	}
	var lines []line
	for _, span := range spans {
		placed := false
		for i := range lines {
			if abs(lines[i].y-span.y) < yTolerance {
				lines[i].spans = append(lines[i].spans, span)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, line{y: span.y, spans: []pdfTextSpan{span}})
		}
	}
	// PDF y grows upward; top of page first.
	sort.Slice(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	var result strings.Builder
	for _, ln := range lines {
		sort.Slice(ln.spans, func(i, j int) bool { return ln.spans[i].x < ln.spans[j].x })
		var text strings.Builder
		var lastEnd float64
		for i, span := range ln.spans {
			if i > 0 {
				threshold := span.size * 0.2
				if threshold < 1.0 {
					threshold = 1.0
				}
				if span.x-lastEnd > threshold {
					text.WriteString(" ")
				}
			}
			text.WriteString(span.text)
			lastEnd = span.x + float64(len([]rune(span.text)))*span.size*0.55
		}
		if s := strings.TrimSpace(text.String()); s != "" {
			result.WriteString(s)
			result.WriteString("\n")
		}
	}
	return result.String()
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Header point sizes by level for pdf output.
var pdfHeaderSizes = [6]float64{18, 16, 14, 12, 11, 10}

func (t *pdfTransformer) Generate(doc *Document, images *ImageBundle) ([]byte, *ImageBundle, error) {
	f := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: doc.PageWidth, Ht: doc.PageHeight},
	})
	translate := f.UnicodeTranslatorFromDescriptor("")
	f.SetMargins(doc.LeftPageIndent, doc.TopPageIndent, doc.RightPageIndent)
	f.SetAutoPageBreak(true, doc.BottomPageIndent)

	if len(doc.PageHeader) > 0 {
		chrome := translate(pdfChromeText(doc.PageHeader))
		f.SetHeaderFunc(func() {
			f.SetFont("Helvetica", "I", 9)
			f.CellFormat(0, 6, chrome, "", 1, "C", false, 0, "")
			f.Ln(2)
		})
	}
	if len(doc.PageFooter) > 0 {
		chrome := translate(pdfChromeText(doc.PageFooter))
		f.SetFooterFunc(func() {
			f.SetY(-doc.BottomPageIndent - 6)
			f.SetFont("Helvetica", "I", 9)
			f.CellFormat(0, 6, chrome, "", 0, "C", false, 0, "")
		})
	}
	f.AddPage()

	g := &pdfGen{f: f, tr: translate, images: images, warn: t.engine.warning}
	for _, el := range doc.Elements {
		if err := g.block(el, 0); err != nil {
			return nil, nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, nil, internalErr(FormatPDF, err)
	}
	return buf.Bytes(), NewImageBundle(), nil
}

// pdfChromeText flattens header/footer elements to one line.
func pdfChromeText(elements []Element) string {
	parts := make([]string, 0, len(elements))
	for _, el := range elements {
		if s := strings.TrimSpace(plainText(el)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

type pdfGen struct {
	f        *gofpdf.Fpdf
	tr       func(string) string
	images   *ImageBundle
	warn     func(Warning)
	imageNum int
}

const pdfLineHeight = 5.0

func (g *pdfGen) block(el Element, depth int) error {
	switch e := el.(type) {
	case *Header:
		level := ClampHeaderLevel(e.Level)
		g.f.SetFont("Helvetica", "B", pdfHeaderSizes[level-1])
		g.f.MultiCell(0, pdfLineHeight+2, g.tr(e.Text), "", "L", false)
		g.f.Ln(2)
	case *Paragraph:
		for _, child := range e.Elements {
			if err := g.inline(child); err != nil {
				return err
			}
		}
		g.f.Ln(pdfLineHeight + 2)
	case *Text:
		g.f.SetFont("Helvetica", "", float64(textSize(e.Size)))
		g.f.MultiCell(0, pdfLineHeight, g.tr(e.Text), "", "L", false)
	case *List:
		if err := g.list(e, depth); err != nil {
			return err
		}
		if depth == 0 {
			g.f.Ln(2)
		}
	case *Table:
		g.table(e)
	case *Image:
		return g.image(e)
	case *Hyperlink:
		if err := g.inline(e); err != nil {
			return err
		}
		g.f.Ln(pdfLineHeight)
	case *PageBreak:
		g.f.AddPage()
	}
	return nil
}

func (g *pdfGen) inline(el Element) error {
	switch e := el.(type) {
	case *Text:
		g.f.SetFont("Helvetica", "", float64(textSize(e.Size)))
		g.f.Write(pdfLineHeight, g.tr(e.Text))
	case *Hyperlink:
		g.f.SetFont("Helvetica", "U", float64(textSize(e.Size)))
		g.f.SetTextColor(0, 0, 238)
		g.f.WriteLinkString(pdfLineHeight, g.tr(e.Title), e.URL)
		g.f.SetTextColor(0, 0, 0)
	case *Image:
		return g.image(e)
	case *Paragraph:
		for _, child := range e.Elements {
			if err := g.inline(child); err != nil {
				return err
			}
		}
	default:
		g.f.SetFont("Helvetica", "", DefaultTextSize)
		g.f.Write(pdfLineHeight, g.tr(plainText(el)))
	}
	return nil
}

func (g *pdfGen) image(im *Image) error {
	data, err := resolveImage(im, g.images)
	if err != nil {
		return err
	}
	name := im.Key
	if name == "" {
		name = fmt.Sprintf("image%d", g.imageNum)
		g.imageNum++
	}
	opts := gofpdf.ImageOptions{
		ImageType: strings.ToUpper(string(im.Type)),
		ReadDpi:   true,
	}
	g.f.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	g.f.ImageOptions(name, -1, -1, 0, 0, true, opts, 0, "")
	if err := g.f.Error(); err != nil {
		return malformed(FormatPDF, fmt.Errorf("image %s: %w", name, err))
	}
	return nil
}

func (g *pdfGen) list(list *List, depth int) error {
	counter := 0
	for _, item := range list.Items {
		if nested, ok := item.Element.(*List); ok {
			if err := g.list(nested, depth+1); err != nil {
				return err
			}
			continue
		}
		counter++
		marker := "- "
		if list.Numbered {
			marker = fmt.Sprintf("%d. ", counter)
		}
		g.f.SetFont("Helvetica", "", DefaultTextSize)
		g.f.SetX(g.f.GetX() + float64(depth)*5)
		g.f.MultiCell(0, pdfLineHeight, g.tr(marker+plainText(item.Element)), "", "L", false)
	}
	return nil
}

func (g *pdfGen) table(table *Table) {
	g.f.SetFont("Helvetica", "B", DefaultTextSize)
	for _, h := range table.Headers {
		g.f.CellFormat(columnWidth(h.Width), 7, g.tr(plainText(h.Element)), "1", 0, "L", false, 0, "")
	}
	g.f.Ln(-1)
	g.f.SetFont("Helvetica", "", DefaultTextSize)
	for _, row := range table.Rows {
		for i, cell := range row.Cells {
			width := DefaultColumnWidth
			if i < len(table.Headers) {
				width = table.Headers[i].Width
			}
			g.f.CellFormat(columnWidth(width), 7, g.tr(plainText(cell.Element)), "1", 0, "L", false, 0, "")
		}
		g.f.Ln(-1)
	}
	g.f.Ln(3)
}

// columnWidth widens the model's default so cells stay readable.
func columnWidth(w float64) float64 {
	if w <= 0 {
		return 30
	}
	if w < 15 {
		return 30
	}
	return w
}

func textSize(size int) int {
	if size <= 0 {
		return DefaultTextSize
	}
	return size
}

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
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/unidoc/unioffice"
	"github.com/unidoc/unioffice/common"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/ofc/sharedTypes"
	"github.com/unidoc/unioffice/schema/soo/wml"

	"github.com/docshift/docshift/internal/ooxml"
)

// docxTransformer reads wordprocessing packages with a streaming XML
// walk over document.xml (headings by style, lists by numbering,
// tables, hyperlinks via rels, embedded images into the bundle, page
// geometry and header/footer chrome from sectPr) and writes them with
// the unioffice builder.
type docxTransformer struct {
	engine *Engine
}

func newDocxTransformer(e *Engine) *docxTransformer {
	return &docxTransformer{engine: e}
}

func twipsToMM(twips int) float64 {
	return float64(twips) * 25.4 / 1440.0
}

func mmToTwips(mm float64) uint64 {
	return uint64(mm*1440.0/25.4 + 0.5)
}

func (t *docxTransformer) Parse(data []byte, _ *ImageBundle) (*Document, *ImageBundle, error) {
	if len(data) == 0 {
		return NewDocument(), NewImageBundle(), nil
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, malformed(FormatDocx, err)
	}
	rels, err := ooxml.Relationships(zr, "word/_rels/document.xml.rels")
	if err != nil {
		return nil, nil, malformed(FormatDocx, err)
	}
	p := &docxParse{
		zr:        zr,
		rels:      rels,
		numbering: parseDocxNumbering(zr),
		out:       NewImageBundle(),
	}
	docData, err := ooxml.ReadPart(zr, "word/document.xml")
	if err != nil {
		return nil, nil, malformed(FormatDocx, err)
	}
	doc := NewDocument()
	elements, sect, err := p.parsePart(docData)
	if err != nil {
		return nil, nil, err
	}
	doc.Elements = elements
	if sect != nil {
		sect.apply(doc)
		if err := p.parseChrome(doc, sect); err != nil {
			return nil, nil, err
		}
	}
	return doc, p.out, nil
}

type docxParse struct {
	zr        *zip.Reader
	rels      map[string]ooxml.Relationship
	numbering map[string]map[int]bool // numId -> ilvl -> numbered
	out       *ImageBundle
}

// docxSect is the page setup read from the body sectPr.
type docxSect struct {
	widthTwips  int
	heightTwips int
	marginLeft  int
	marginRight int
	marginTop   int
	marginBot   int
	headerRel   string
	footerRel   string
}

func (s *docxSect) apply(doc *Document) {
	if s.widthTwips > 0 {
		doc.PageWidth = twipsToMM(s.widthTwips)
	}
	if s.heightTwips > 0 {
		doc.PageHeight = twipsToMM(s.heightTwips)
	}
	if s.marginLeft > 0 {
		doc.LeftPageIndent = twipsToMM(s.marginLeft)
	}
	if s.marginRight > 0 {
		doc.RightPageIndent = twipsToMM(s.marginRight)
	}
	if s.marginTop > 0 {
		doc.TopPageIndent = twipsToMM(s.marginTop)
	}
	if s.marginBot > 0 {
		doc.BottomPageIndent = twipsToMM(s.marginBot)
	}
}

// parseChrome reads the referenced header and footer parts.
func (p *docxParse) parseChrome(doc *Document, sect *docxSect) error {
	read := func(relID string) ([]Element, error) {
		rel, ok := p.rels[relID]
		if !ok {
			return nil, nil
		}
		part := ooxml.ResolveTarget("word/document.xml", rel.Target)
		data, err := ooxml.ReadPart(p.zr, part)
		if err != nil {
			return nil, nil
		}
		elements, _, err := p.parsePart(data)
		return elements, err
	}
	var err error
	if sect.headerRel != "" {
		if doc.PageHeader, err = read(sect.headerRel); err != nil {
			return err
		}
	}
	if sect.footerRel != "" {
		if doc.PageFooter, err = read(sect.footerRel); err != nil {
			return err
		}
	}
	return nil
}

// docxPara is one paragraph before list assembly.
type docxPara struct {
	styleID    string
	isList     bool
	numID      string
	ilvl       int
	inlines    []Element
	pageBreaks int
}

// parsePart walks one wordprocessing part (document, header, footer)
// and returns its block elements.
func (p *docxParse) parsePart(data []byte) ([]Element, *docxSect, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var blocks []Element
	asm := &docxListAssembler{numbering: p.numbering}
	var sect *docxSect
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, malformed(FormatDocx, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "p":
			para, err := p.parseParagraph(dec)
			if err != nil {
				return nil, nil, err
			}
			asm.add(para, &blocks)
		case "tbl":
			table, err := p.parseTable(dec)
			if err != nil {
				return nil, nil, err
			}
			asm.flush(&blocks)
			blocks = append(blocks, table)
		case "sectPr":
			s, err := p.parseSect(dec)
			if err != nil {
				return nil, nil, err
			}
			sect = s
		}
	}
	asm.flush(&blocks)
	return blocks, sect, nil
}

func (p *docxParse) parseParagraph(dec *xml.Decoder) (docxPara, error) {
	para := docxPara{}
	var run strings.Builder
	inText := false
	var hyper *Hyperlink
	var hyperText strings.Builder
	flush := func() {
		if run.Len() > 0 {
			para.inlines = append(para.inlines, &Text{Text: run.String(), Size: DefaultTextSize})
			run.Reset()
		}
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return para, malformed(FormatDocx, err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "pStyle":
				para.styleID = xmlAttrVal(tk, "val")
			case "numPr":
				para.isList = true
			case "numId":
				para.numID = xmlAttrVal(tk, "val")
			case "ilvl":
				para.ilvl, _ = strconv.Atoi(xmlAttrVal(tk, "val"))
			case "t":
				inText = true
			case "tab":
				run.WriteString("\t")
			case "br":
				if xmlAttrVal(tk, "type") == "page" {
					para.pageBreaks++
				} else {
					run.WriteString("\n")
				}
			case "hyperlink":
				flush()
				hyper = &Hyperlink{Size: DefaultTextSize}
				if rel, ok := p.rels[xmlAttrValNS(tk, ooxml.NSRelDoc, "id")]; ok {
					hyper.URL = rel.Target
					hyper.Alt = rel.Target
				}
				hyperText.Reset()
			case "drawing", "pict":
				flush()
				if im := p.extractImage(dec); im != nil {
					para.inlines = append(para.inlines, im)
				}
			}
		case xml.CharData:
			if inText {
				if hyper != nil {
					hyperText.Write(tk)
				} else {
					run.Write(tk)
				}
			}
		case xml.EndElement:
			switch tk.Name.Local {
			case "t":
				inText = false
			case "hyperlink":
				if hyper != nil {
					hyper.Title = hyperText.String()
					para.inlines = append(para.inlines, hyper)
					hyper = nil
				}
			case "p":
				flush()
				return para, nil
			}
		}
	}
}

// extractImage consumes a drawing subtree, pulling the blip embed id
// and alt text, and stores the image bytes in the output bundle.
func (p *docxParse) extractImage(dec *xml.Decoder) *Image {
	depth := 1
	var embedID, alt string
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			depth++
			switch tk.Name.Local {
			case "blip":
				embedID = xmlAttrVal(tk, "embed")
			case "docPr":
				alt = xmlAttrVal(tk, "descr")
			}
		case xml.EndElement:
			depth--
		}
	}
	if embedID == "" {
		return nil
	}
	rel, ok := p.rels[embedID]
	if !ok {
		return nil
	}
	part := ooxml.ResolveTarget("word/document.xml", rel.Target)
	data, err := ooxml.ReadPart(p.zr, part)
	if err != nil {
		return nil
	}
	key := path.Base(rel.Target)
	p.out.Add(key, data)
	return &Image{Key: key, Alt: alt, Type: ImageTypeFromName(rel.Target)}
}

func (p *docxParse) parseTable(dec *xml.Decoder) (*Table, error) {
	table := &Table{}
	var widths []float64
	var rows [][]Element
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(FormatDocx, err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "gridCol":
				if w, err := strconv.Atoi(xmlAttrVal(tk, "w")); err == nil {
					widths = append(widths, twipsToMM(w))
				}
			case "tr":
				row, err := p.parseTableCells(dec)
				if err != nil {
					return nil, err
				}
				rows = append(rows, row)
			}
		case xml.EndElement:
			if tk.Name.Local == "tbl" {
				if len(rows) == 0 {
					return table, nil
				}
				for i, cell := range rows[0] {
					width := DefaultColumnWidth
					if i < len(widths) {
						width = widths[i]
					}
					table.Headers = append(table.Headers, TableHeader{Element: cell, Width: width})
				}
				for _, cells := range rows[1:] {
					row := TableRow{}
					for _, cell := range cells {
						row.Cells = append(row.Cells, TableCell{Element: cell})
					}
					table.Rows = append(table.Rows, row)
				}
				padTableRows(table)
				return table, nil
			}
		}
	}
}

func (p *docxParse) parseTableCells(dec *xml.Decoder) ([]Element, error) {
	var cells []Element
	var text strings.Builder
	inText := false
	inCell := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(FormatDocx, err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "tc":
				inCell = true
				text.Reset()
			case "t":
				inText = inCell
			}
		case xml.CharData:
			if inText {
				text.Write(tk)
			}
		case xml.EndElement:
			switch tk.Name.Local {
			case "t":
				inText = false
			case "tc":
				cells = append(cells, &Text{Text: text.String(), Size: DefaultTextSize})
				inCell = false
			case "tr":
				return cells, nil
			}
		}
	}
}

func (p *docxParse) parseSect(dec *xml.Decoder) (*docxSect, error) {
	sect := &docxSect{}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(FormatDocx, err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			depth++
			switch tk.Name.Local {
			case "pgSz":
				sect.widthTwips, _ = strconv.Atoi(xmlAttrVal(tk, "w"))
				sect.heightTwips, _ = strconv.Atoi(xmlAttrVal(tk, "h"))
			case "pgMar":
				sect.marginLeft, _ = strconv.Atoi(xmlAttrVal(tk, "left"))
				sect.marginRight, _ = strconv.Atoi(xmlAttrVal(tk, "right"))
				sect.marginTop, _ = strconv.Atoi(xmlAttrVal(tk, "top"))
				sect.marginBot, _ = strconv.Atoi(xmlAttrVal(tk, "bottom"))
			case "headerReference":
				if xmlAttrVal(tk, "type") != "even" {
					sect.headerRel = xmlAttrValNS(tk, ooxml.NSRelDoc, "id")
				}
			case "footerReference":
				if xmlAttrVal(tk, "type") != "even" {
					sect.footerRel = xmlAttrValNS(tk, ooxml.NSRelDoc, "id")
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	return sect, nil
}

// docxListAssembler groups consecutive numbered paragraphs into List
// elements, nesting by indent level under the previous item.
type docxListAssembler struct {
	numbering map[string]map[int]bool
	stack     []*List
}

func (a *docxListAssembler) add(para docxPara, blocks *[]Element) {
	el := paraElement(para)
	if !para.isList || para.numID == "" || para.numID == "0" {
		a.flush(blocks)
		if el != nil {
			*blocks = append(*blocks, el)
		}
	} else if el != nil {
		level := para.ilvl
		if level < 0 {
			level = 0
		}
		if level > len(a.stack) {
			level = len(a.stack)
		}
		a.stack = a.stack[:min(len(a.stack), level+1)]
		for len(a.stack) <= level {
			list := &List{Numbered: a.numbered(para.numID, len(a.stack))}
			if len(a.stack) > 0 {
				parent := a.stack[len(a.stack)-1]
				parent.Items = append(parent.Items, ListItem{Element: list})
			}
			a.stack = append(a.stack, list)
		}
		target := a.stack[level]
		item := listItemContent(para)
		target.Items = append(target.Items, ListItem{Element: item})
	}
	for i := 0; i < para.pageBreaks; i++ {
		a.flush(blocks)
		*blocks = append(*blocks, &PageBreak{})
	}
}

func (a *docxListAssembler) numbered(numID string, ilvl int) bool {
	if levels, ok := a.numbering[numID]; ok {
		if numbered, ok := levels[ilvl]; ok {
			return numbered
		}
	}
	return false
}

func (a *docxListAssembler) flush(blocks *[]Element) {
	if len(a.stack) > 0 {
		*blocks = append(*blocks, a.stack[0])
		a.stack = nil
	}
}

// paraElement converts a parsed paragraph to its block element.
func paraElement(para docxPara) Element {
	if level := headingStyleLevel(para.styleID); level > 0 {
		return &Header{Level: ClampHeaderLevel(level), Text: inlineText(para.inlines)}
	}
	if len(para.inlines) == 0 {
		return nil
	}
	if para.isList {
		return nil // handled by the assembler
	}
	return &Paragraph{Elements: para.inlines}
}

func listItemContent(para docxPara) Element {
	if len(para.inlines) == 1 {
		if text, ok := para.inlines[0].(*Text); ok {
			return text
		}
	}
	return &Paragraph{Elements: para.inlines}
}

func inlineText(inlines []Element) string {
	var b strings.Builder
	for _, el := range inlines {
		b.WriteString(plainText(el))
	}
	return b.String()
}

// headingStyleLevel maps Heading1..Heading6 style IDs (and their
// spaced variants) to a level.
func headingStyleLevel(styleID string) int {
	lower := strings.ToLower(strings.ReplaceAll(styleID, " ", ""))
	if !strings.HasPrefix(lower, "heading") {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimPrefix(lower, "heading"))
	if err != nil || level < 1 {
		return 0
	}
	return level
}

// parseDocxNumbering reads numbering.xml: numId -> abstractNumId ->
// per-level format, collapsed to a numbered flag per level.
func parseDocxNumbering(zr *zip.Reader) map[string]map[int]bool {
	out := make(map[string]map[int]bool)
	data, err := ooxml.ReadPart(zr, "word/numbering.xml")
	if err != nil {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	numToAbstract := make(map[string]string)
	abstractLevels := make(map[string]map[int]bool)
	var currentNum, currentAbstract string
	currentLevel := -1
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "abstractNum":
			currentAbstract = xmlAttrVal(start, "abstractNumId")
			abstractLevels[currentAbstract] = make(map[int]bool)
		case "lvl":
			currentLevel, _ = strconv.Atoi(xmlAttrVal(start, "ilvl"))
		case "numFmt":
			if currentAbstract != "" && currentLevel >= 0 {
				abstractLevels[currentAbstract][currentLevel] = xmlAttrVal(start, "val") != "bullet"
			}
		case "num":
			currentNum = xmlAttrVal(start, "numId")
		case "abstractNumId":
			if currentNum != "" {
				numToAbstract[currentNum] = xmlAttrVal(start, "val")
			}
		}
	}
	for numID, abstractID := range numToAbstract {
		if levels, ok := abstractLevels[abstractID]; ok {
			out[numID] = levels
		}
	}
	return out
}

func xmlAttrVal(start xml.StartElement, local string) string {
	for _, attr := range start.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

func xmlAttrValNS(start xml.StartElement, space, local string) string {
	for _, attr := range start.Attr {
		if attr.Name.Space == space && attr.Name.Local == local {
			return attr.Value
		}
	}
	return xmlAttrVal(start, local)
}

func (t *docxTransformer) Generate(doc *Document, images *ImageBundle) ([]byte, *ImageBundle, error) {
	d := document.New()
	section := d.BodySection()
	pgSz := wml.NewCT_PageSz()
	pgSz.WAttr = &sharedTypes.ST_TwipsMeasure{ST_UnsignedDecimalNumber: unioffice.Uint64(mmToTwips(doc.PageWidth))}
	pgSz.HAttr = &sharedTypes.ST_TwipsMeasure{ST_UnsignedDecimalNumber: unioffice.Uint64(mmToTwips(doc.PageHeight))}
	pgSz.OrientAttr = wml.ST_PageOrientationPortrait
	section.X().PgSz = pgSz
	section.SetPageMargins(
		measurement.Distance(doc.TopPageIndent)*measurement.Millimeter,
		measurement.Distance(doc.RightPageIndent)*measurement.Millimeter,
		measurement.Distance(doc.BottomPageIndent)*measurement.Millimeter,
		measurement.Distance(doc.LeftPageIndent)*measurement.Millimeter,
		measurement.Distance(doc.TopPageIndent)*measurement.Millimeter/2,
		measurement.Distance(doc.BottomPageIndent)*measurement.Millimeter/2,
		0)

	g := &docxGen{doc: d, images: images}
	if len(doc.PageHeader) > 0 {
		hdr := d.AddHeader()
		for _, el := range doc.PageHeader {
			hdr.AddParagraph().AddRun().AddText(plainText(el))
		}
		section.SetHeader(hdr, wml.ST_HdrFtrDefault)
	}
	if len(doc.PageFooter) > 0 {
		ftr := d.AddFooter()
		for _, el := range doc.PageFooter {
			ftr.AddParagraph().AddRun().AddText(plainText(el))
		}
		section.SetFooter(ftr, wml.ST_HdrFtrDefault)
	}
	for _, el := range doc.Elements {
		if err := g.block(el, 0); err != nil {
			return nil, nil, err
		}
	}
	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		return nil, nil, internalErr(FormatDocx, err)
	}
	return buf.Bytes(), NewImageBundle(), nil
}

type docxGen struct {
	doc    *document.Document
	images *ImageBundle
}

func (g *docxGen) block(el Element, depth int) error {
	switch e := el.(type) {
	case *Header:
		para := g.doc.AddParagraph()
		para.SetStyle(fmt.Sprintf("Heading%d", ClampHeaderLevel(e.Level)))
		para.AddRun().AddText(e.Text)
	case *Paragraph:
		para := g.doc.AddParagraph()
		for _, child := range e.Elements {
			if err := g.inline(&para, child); err != nil {
				return err
			}
		}
	case *Text:
		g.doc.AddParagraph().AddRun().AddText(e.Text)
	case *List:
		if err := g.list(e, depth); err != nil {
			return err
		}
	case *Table:
		g.table(e)
	case *Hyperlink, *Image:
		para := g.doc.AddParagraph()
		if err := g.inline(&para, el); err != nil {
			return err
		}
	case *PageBreak:
		para := g.doc.AddParagraph()
		addDocxPageBreak(para.AddRun())
	}
	return nil
}

func (g *docxGen) inline(para *document.Paragraph, el Element) error {
	switch e := el.(type) {
	case *Text:
		run := para.AddRun()
		for i, line := range strings.Split(e.Text, "\n") {
			if i > 0 {
				run.AddBreak()
			}
			run.AddText(line)
		}
	case *Hyperlink:
		hl := para.AddHyperLink()
		hl.SetTarget(e.URL)
		hl.AddRun().AddText(e.Title)
	case *Image:
		data, err := resolveImage(e, g.images)
		if err != nil {
			return err
		}
		img, err := common.ImageFromBytes(data)
		if err != nil {
			return malformed(FormatDocx, fmt.Errorf("image %q: %w", e.Key, err))
		}
		ref, err := g.doc.AddImage(img)
		if err != nil {
			return internalErr(FormatDocx, err)
		}
		inline, err := para.AddRun().AddDrawingInline(ref)
		if err != nil {
			return internalErr(FormatDocx, err)
		}
		const pxToMM = 25.4 / 96.0
		inline.SetSize(
			measurement.Distance(float64(img.Size.X)*pxToMM)*measurement.Millimeter,
			measurement.Distance(float64(img.Size.Y)*pxToMM)*measurement.Millimeter)
	case *Paragraph:
		for _, child := range e.Elements {
			if err := g.inline(para, child); err != nil {
				return err
			}
		}
	default:
		para.AddRun().AddText(plainText(el))
	}
	return nil
}

func (g *docxGen) list(list *List, depth int) error {
	counter := 0
	for _, item := range list.Items {
		if nested, ok := item.Element.(*List); ok {
			if err := g.list(nested, depth+1); err != nil {
				return err
			}
			continue
		}
		counter++
		para := g.doc.AddParagraph()
		para.SetStyle("ListParagraph")
		marker := "- "
		if list.Numbered {
			marker = fmt.Sprintf("%d. ", counter)
		}
		run := para.AddRun()
		run.AddText(strings.Repeat("    ", depth) + marker)
		if err := g.inline(&para, item.Element); err != nil {
			return err
		}
	}
	return nil
}

func (g *docxGen) table(table *Table) {
	tbl := g.doc.AddTable()
	tbl.Properties().SetWidthPercent(100)
	header := tbl.AddRow()
	for _, h := range table.Headers {
		cell := header.AddCell()
		para := cell.AddParagraph()
		run := para.AddRun()
		run.Properties().SetBold(true)
		run.AddText(plainText(h.Element))
	}
	for _, row := range table.Rows {
		tr := tbl.AddRow()
		for _, c := range row.Cells {
			tr.AddCell().AddParagraph().AddRun().AddText(plainText(c.Element))
		}
	}
}

// addDocxPageBreak appends a w:br of type page to the run.
func addDocxPageBreak(run document.Run) {
	br := wml.NewCT_Br()
	br.TypeAttr = wml.ST_BrTypePage
	ic := wml.NewEG_RunInnerContent()
	ic.Br = br
	run.X().EG_RunInnerContent = append(run.X().EG_RunInnerContent, ic)
}

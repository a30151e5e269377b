package docshift

import (
	"bytes"
	"testing"
)

func TestDocxGenerateParseRoundTrip(t *testing.T) {
	e := New()
	doc := NewDocument(
		&Header{Level: 1, Text: "Title"},
		&Paragraph{Elements: []Element{
			&Text{Text: "body text ", Size: DefaultTextSize},
			&Hyperlink{Title: "site", URL: "https://example.com", Size: DefaultTextSize},
		}},
		&Table{
			Headers: []TableHeader{
				{Element: &Text{Text: "h1", Size: DefaultTextSize}, Width: DefaultColumnWidth},
				{Element: &Text{Text: "h2", Size: DefaultTextSize}, Width: DefaultColumnWidth},
			},
			Rows: []TableRow{
				{Cells: []TableCell{
					{Element: &Text{Text: "a", Size: DefaultTextSize}},
					{Element: &Text{Text: "b", Size: DefaultTextSize}},
				}},
			},
		},
		&PageBreak{},
		&Paragraph{Elements: []Element{&Text{Text: "after the break", Size: DefaultTextSize}}},
	)

	out, _, err := e.Generate(doc, NewImageBundle(), FormatDocx)
	if err != nil {
		t.Fatal(err)
	}
	// OOXML packages are zips.
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Fatalf("output is not a zip package: %q", out[:min(len(out), 4)])
	}

	back, _, err := e.Parse(out, FormatDocx)
	if err != nil {
		t.Fatal(err)
	}

	var headers []*Header
	var links []*Hyperlink
	var tables []*Table
	breaks := 0
	back.Walk(func(el Element) {
		switch v := el.(type) {
		case *Header:
			headers = append(headers, v)
		case *Hyperlink:
			links = append(links, v)
		case *Table:
			tables = append(tables, v)
		case *PageBreak:
			breaks++
		}
	})

	if len(headers) != 1 || headers[0].Level != 1 || headers[0].Text != "Title" {
		t.Errorf("headers = %+v, want one level-1 Title", headers)
	}
	if len(links) != 1 || links[0].URL != "https://example.com" || links[0].Title != "site" {
		t.Errorf("links = %+v", links)
	}
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	table := tables[0]
	if len(table.Headers) != 2 || len(table.Rows) != 1 {
		t.Errorf("table shape = %d headers, %d rows", len(table.Headers), len(table.Rows))
	}
	if got := plainText(table.Rows[0].Cells[0].Element); got != "a" {
		t.Errorf("cell 0,0 = %q", got)
	}
	if breaks != 1 {
		t.Errorf("got %d page breaks, want 1", breaks)
	}
}

func TestDocxGenerateCustomPageGeometry(t *testing.T) {
	e := New()
	doc := NewDocument(&Paragraph{Elements: []Element{&Text{Text: "letter page", Size: DefaultTextSize}}})
	// US Letter, 20 mm side margins.
	doc.PageWidth = 215.9
	doc.PageHeight = 279.4
	doc.LeftPageIndent = 20
	doc.RightPageIndent = 20

	out, _, err := e.Generate(doc, NewImageBundle(), FormatDocx)
	if err != nil {
		t.Fatal(err)
	}
	back, _, err := e.Parse(out, FormatDocx)
	if err != nil {
		t.Fatal(err)
	}
	if abs(back.PageWidth-215.9) > 0.1 || abs(back.PageHeight-279.4) > 0.1 {
		t.Errorf("page size = %g x %g, want 215.9 x 279.4", back.PageWidth, back.PageHeight)
	}
	if abs(back.LeftPageIndent-20) > 0.1 || abs(back.RightPageIndent-20) > 0.1 {
		t.Errorf("side margins = %g / %g, want 20 / 20", back.LeftPageIndent, back.RightPageIndent)
	}
}

func TestDocxChromeRoundTrip(t *testing.T) {
	e := New()
	doc := NewDocument(&Paragraph{Elements: []Element{&Text{Text: "body", Size: DefaultTextSize}}})
	doc.PageHeader = []Element{&Text{Text: "running head", Size: DefaultTextSize}}
	doc.PageFooter = []Element{&Text{Text: "running foot", Size: DefaultTextSize}}

	out, _, err := e.Generate(doc, NewImageBundle(), FormatDocx)
	if err != nil {
		t.Fatal(err)
	}
	back, _, err := e.Parse(out, FormatDocx)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.PageHeader) == 0 || plainText(back.PageHeader[0]) != "running head" {
		t.Errorf("page header = %#v", back.PageHeader)
	}
	if len(back.PageFooter) == 0 || plainText(back.PageFooter[0]) != "running foot" {
		t.Errorf("page footer = %#v", back.PageFooter)
	}
}

func TestDocxParseMalformed(t *testing.T) {
	e := New()
	if _, _, err := e.Parse([]byte("not a package"), FormatDocx); !IsMalformedInput(err) {
		t.Errorf("got %v, want MalformedInput", err)
	}
}

func TestHeadingStyleLevel(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"Heading1", 1},
		{"heading3", 3},
		{"Heading 2", 2},
		{"Title", 0},
		{"", 0},
		{"HeadingX", 0},
	}
	for _, tt := range tests {
		if got := headingStyleLevel(tt.style); got != tt.want {
			t.Errorf("headingStyleLevel(%q) = %d, want %d", tt.style, got, tt.want)
		}
	}
}

func TestTwipsToMM(t *testing.T) {
	// A4 width is 11906 twips.
	if got := twipsToMM(11906); got < 209.9 || got > 210.1 {
		t.Errorf("twipsToMM(11906) = %g, want ~210", got)
	}
	if got := twipsToMM(1440); got < 25.3 || got > 25.5 {
		t.Errorf("twipsToMM(1440) = %g, want ~25.4", got)
	}
}

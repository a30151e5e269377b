package docshift

import (
	"testing"
)

func spreadsheetTestDoc() *Document {
	return NewDocument(&Table{
		Headers: []TableHeader{
			{Element: &Text{Text: "name", Size: DefaultTextSize}, Width: DefaultColumnWidth},
			{Element: &Text{Text: "city", Size: DefaultTextSize}, Width: DefaultColumnWidth},
		},
		Rows: []TableRow{
			{Cells: []TableCell{
				{Element: &Text{Text: "alice", Size: DefaultTextSize}},
				{Element: &Text{Text: "oslo", Size: DefaultTextSize}},
			}},
			{Cells: []TableCell{
				{Element: &Text{Text: "bob", Size: DefaultTextSize}},
				{Element: &Text{Text: "kyiv", Size: DefaultTextSize}},
			}},
		},
	})
}

func TestXLSXRoundTrip(t *testing.T) {
	e := New()
	doc := spreadsheetTestDoc()
	out, _, err := e.Generate(doc, NewImageBundle(), FormatXLSX)
	if err != nil {
		t.Fatal(err)
	}
	back, _, err := e.Parse(out, FormatXLSX)
	if err != nil {
		t.Fatal(err)
	}
	if !doc.Equal(back) {
		t.Errorf("round trip changed the document\n got: %#v\nwant: %#v", back, doc)
	}
}

func TestXLSXGenerateDropsNonTables(t *testing.T) {
	var warnings []Warning
	e := New(WithWarningSink(func(w Warning) { warnings = append(warnings, w) }))
	doc := spreadsheetTestDoc()
	doc.Elements = append([]Element{&Paragraph{Elements: []Element{
		&Text{Text: "prose", Size: DefaultTextSize},
	}}}, doc.Elements...)

	if _, _, err := e.Generate(doc, NewImageBundle(), FormatXLSX); err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 || warnings[0].Variant != "Paragraph" {
		t.Errorf("warnings = %+v, want one Paragraph warning", warnings)
	}
}

func TestXLSXParseMalformed(t *testing.T) {
	e := New()
	if _, _, err := e.Parse([]byte("this is not a zip archive"), FormatXLSX); !IsMalformedInput(err) {
		t.Errorf("got %v, want MalformedInput", err)
	}
}

func TestTableFromRows(t *testing.T) {
	table := tableFromRows([][]string{
		{"h1", "h2"},
		{"a"},
	})
	if table == nil {
		t.Fatal("tableFromRows returned nil for non-empty rows")
	}
	if len(table.Headers) != 2 || len(table.Rows) != 1 {
		t.Fatalf("shape = %d headers, %d rows", len(table.Headers), len(table.Rows))
	}
	if got := len(table.Rows[0].Cells); got != 2 {
		t.Errorf("short row has %d cells, want 2", got)
	}
	if tableFromRows(nil) != nil {
		t.Error("tableFromRows(nil) != nil")
	}
}

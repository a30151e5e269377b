package docshift

import (
	"testing"
)

func TestODSRoundTrip(t *testing.T) {
	e := New()
	doc := spreadsheetTestDoc()
	out, _, err := e.Generate(doc, NewImageBundle(), FormatODS)
	if err != nil {
		t.Fatal(err)
	}
	back, _, err := e.Parse(out, FormatODS)
	if err != nil {
		t.Fatal(err)
	}
	if !doc.Equal(back) {
		t.Errorf("round trip changed the document\n got: %#v\nwant: %#v", back, doc)
	}
}

func TestODSParseMalformed(t *testing.T) {
	e := New()
	if _, _, err := e.Parse([]byte("not a zip"), FormatODS); !IsMalformedInput(err) {
		t.Errorf("got %v, want MalformedInput", err)
	}
}

func TestODSGenerateDropsNonTables(t *testing.T) {
	var warnings []Warning
	e := New(WithWarningSink(func(w Warning) { warnings = append(warnings, w) }))
	doc := NewDocument(&Header{Level: 1, Text: "drop me"})
	out, _, err := e.Generate(doc, NewImageBundle(), FormatODS)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) == 0 {
		t.Error("empty package bytes")
	}
	if len(warnings) != 1 || warnings[0].Variant != "Header" {
		t.Errorf("warnings = %+v, want one Header warning", warnings)
	}
}

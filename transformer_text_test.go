package docshift

import (
	"testing"
)

func TestTextRoundTrip(t *testing.T) {
	e := New()
	tests := []string{
		"hello\n",
		"line one\nline two\n",
		"para one\n\npara two\n",
		"trailing blank\n\n",
	}
	for _, in := range tests {
		doc, images, err := e.Parse([]byte(in), FormatText)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		out, _, err := e.Generate(doc, images, FormatText)
		if err != nil {
			t.Fatalf("generate %q: %v", in, err)
		}
		if string(out) != in {
			t.Errorf("round trip of %q = %q", in, out)
		}
	}
}

func TestTextRoundTripAddsFinalNewline(t *testing.T) {
	e := New()
	doc, images, err := e.Parse([]byte("no trailing newline"), FormatText)
	if err != nil {
		t.Fatal(err)
	}
	out, _, err := e.Generate(doc, images, FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "no trailing newline\n" {
		t.Errorf("got %q, want newline-terminated form", out)
	}
}

func TestTextParseStructure(t *testing.T) {
	e := New()
	doc, _, err := e.Parse([]byte("a\nb\n"), FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Elements) != 1 {
		t.Fatalf("got %d top-level elements, want 1", len(doc.Elements))
	}
	para, ok := doc.Elements[0].(*Paragraph)
	if !ok {
		t.Fatalf("top element is %T, want Paragraph", doc.Elements[0])
	}
	// One Text per line, each followed by a newline run.
	want := []string{"a", "\n", "b", "\n"}
	if len(para.Elements) != len(want) {
		t.Fatalf("got %d runs, want %d", len(para.Elements), len(want))
	}
	for i, el := range para.Elements {
		text, ok := el.(*Text)
		if !ok || text.Text != want[i] || text.Size != DefaultTextSize {
			t.Errorf("run %d = %#v, want Text %q size %d", i, el, want[i], DefaultTextSize)
		}
	}
}

func TestTextParseEmpty(t *testing.T) {
	e := New()
	doc, images, err := e.Parse(nil, FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Elements) != 0 || images.Len() != 0 {
		t.Errorf("empty input produced %d elements, %d images", len(doc.Elements), images.Len())
	}
}

func TestTextGenerateList(t *testing.T) {
	e := New()
	doc := NewDocument(&List{
		Numbered: true,
		Items: []ListItem{
			{Element: &Text{Text: "first", Size: DefaultTextSize}},
			{Element: &Text{Text: "second", Size: DefaultTextSize}},
			{Element: &List{Items: []ListItem{
				{Element: &Text{Text: "inner", Size: DefaultTextSize}},
			}}},
		},
	})
	out, _, err := e.Generate(doc, NewImageBundle(), FormatText)
	if err != nil {
		t.Fatal(err)
	}
	want := "1. first\n2. second\n  - inner\n"
	if string(out) != want {
		t.Errorf("list output = %q, want %q", out, want)
	}
}

func TestTextGenerateTable(t *testing.T) {
	e := New()
	doc := NewDocument(&Table{
		Headers: []TableHeader{
			{Element: &Text{Text: "a", Size: DefaultTextSize}, Width: DefaultColumnWidth},
			{Element: &Text{Text: "b", Size: DefaultTextSize}, Width: DefaultColumnWidth},
		},
		Rows: []TableRow{
			{Cells: []TableCell{
				{Element: &Text{Text: "1", Size: DefaultTextSize}},
				{Element: &Text{Text: "2", Size: DefaultTextSize}},
			}},
		},
	})
	out, _, err := e.Generate(doc, NewImageBundle(), FormatText)
	if err != nil {
		t.Fatal(err)
	}
	want := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	if string(out) != want {
		t.Errorf("table output = %q, want %q", out, want)
	}
}

func TestTextGenerateDropsImagesWithWarning(t *testing.T) {
	var warnings []Warning
	e := New(WithWarningSink(func(w Warning) { warnings = append(warnings, w) }))
	doc := NewDocument(&Image{Data: []byte{1}, Type: ImagePng})
	out, _, err := e.Generate(doc, NewImageBundle(), FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("image leaked into text output: %q", out)
	}
	if len(warnings) != 1 || warnings[0].Variant != "Image" {
		t.Errorf("warnings = %+v, want one Image warning", warnings)
	}
}

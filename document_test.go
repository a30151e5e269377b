package docshift

import (
	"reflect"
	"testing"
)

func TestClampHeaderLevel(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{4, 4},
		{6, 6},
		{7, 6},
		{99, 6},
	}
	for _, tt := range tests {
		if got := ClampHeaderLevel(tt.in); got != tt.want {
			t.Errorf("ClampHeaderLevel(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewDocumentDefaults(t *testing.T) {
	doc := NewDocument()
	if doc.PageWidth != DefaultPageWidth || doc.PageHeight != DefaultPageHeight {
		t.Errorf("page size = %gx%g, want %gx%g",
			doc.PageWidth, doc.PageHeight, DefaultPageWidth, DefaultPageHeight)
	}
	for _, indent := range []float64{doc.LeftPageIndent, doc.RightPageIndent, doc.TopPageIndent, doc.BottomPageIndent} {
		if indent != DefaultPageIndent {
			t.Errorf("indent = %g, want %g", indent, DefaultPageIndent)
		}
	}
	if len(doc.Elements) != 0 {
		t.Errorf("new document has %d elements", len(doc.Elements))
	}
}

func TestDocumentEqual(t *testing.T) {
	a := NewDocument(&Header{Level: 1, Text: "Title"})
	b := NewDocument(&Header{Level: 1, Text: "Title"})
	c := NewDocument(&Header{Level: 2, Text: "Title"})
	if !a.Equal(b) {
		t.Error("identical documents compare unequal")
	}
	if a.Equal(c) {
		t.Error("documents with different header levels compare equal")
	}
}

func TestWalkOrder(t *testing.T) {
	doc := NewDocument(
		&Header{Level: 1, Text: "h"},
		&Paragraph{Elements: []Element{
			&Text{Text: "a", Size: DefaultTextSize},
			&Hyperlink{Title: "l", URL: "u", Size: DefaultTextSize},
		}},
		&List{Items: []ListItem{
			{Element: &Text{Text: "i1", Size: DefaultTextSize}},
			{Element: &List{Items: []ListItem{
				{Element: &Text{Text: "i2", Size: DefaultTextSize}},
			}}},
		}},
	)
	var got []string
	doc.Walk(func(el Element) {
		got = append(got, variantName(el))
	})
	want := []string{"Header", "Paragraph", "Text", "Hyperlink", "List", "Text", "List", "Text"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("walk order = %v, want %v", got, want)
	}
}

func TestPadTableRows(t *testing.T) {
	table := &Table{
		Headers: []TableHeader{
			{Element: &Text{Text: "a", Size: DefaultTextSize}, Width: DefaultColumnWidth},
			{Element: &Text{Text: "b", Size: DefaultTextSize}, Width: DefaultColumnWidth},
			{Element: &Text{Text: "c", Size: DefaultTextSize}, Width: DefaultColumnWidth},
		},
		Rows: []TableRow{
			{Cells: []TableCell{{Element: &Text{Text: "1", Size: DefaultTextSize}}}},
		},
	}
	padTableRows(table)
	if got := len(table.Rows[0].Cells); got != 3 {
		t.Fatalf("padded row has %d cells, want 3", got)
	}
	pad, ok := table.Rows[0].Cells[2].Element.(*Text)
	if !ok || pad.Text != "" {
		t.Errorf("pad cell = %#v, want empty Text", table.Rows[0].Cells[2].Element)
	}
}

func TestPlainText(t *testing.T) {
	el := &Paragraph{Elements: []Element{
		&Text{Text: "see ", Size: DefaultTextSize},
		&Hyperlink{Title: "the docs", URL: "https://example.com", Size: DefaultTextSize},
	}}
	if got := plainText(el); got != "see the docs" {
		t.Errorf("plainText = %q, want %q", got, "see the docs")
	}
}

func TestImageTypeFromName(t *testing.T) {
	tests := []struct {
		name string
		want ImageType
	}{
		{"photo.jpg", ImageJpeg},
		{"photo.JPEG", ImageJpeg},
		{"anim.gif", ImageGif},
		{"icon.png", ImagePng},
		{"unknown.bin", ImagePng},
	}
	for _, tt := range tests {
		if got := ImageTypeFromName(tt.name); got != tt.want {
			t.Errorf("ImageTypeFromName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

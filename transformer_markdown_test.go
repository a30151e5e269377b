package docshift

import (
	"strings"
	"testing"
)

func TestMarkdownParseBasics(t *testing.T) {
	e := New()
	in := "# Title\n\nHello **bold** and `code` world.\n"
	doc, _, err := e.Parse([]byte(in), FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(doc.Elements))
	}
	header, ok := doc.Elements[0].(*Header)
	if !ok || header.Level != 1 || header.Text != "Title" {
		t.Errorf("element 0 = %#v, want Header 1 %q", doc.Elements[0], "Title")
	}
	para, ok := doc.Elements[1].(*Paragraph)
	if !ok {
		t.Fatalf("element 1 is %T, want Paragraph", doc.Elements[1])
	}
	// Emphasis and code spans flatten; contiguous text merges into one
	// run.
	if len(para.Elements) != 1 {
		t.Fatalf("got %d inline runs, want 1: %#v", len(para.Elements), para.Elements)
	}
	text := para.Elements[0].(*Text)
	if text.Text != "Hello bold and code world." {
		t.Errorf("flattened text = %q", text.Text)
	}
}

func TestMarkdownParseLink(t *testing.T) {
	e := New()
	doc, _, err := e.Parse([]byte("see [the docs](https://example.com)\n"), FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	para := doc.Elements[0].(*Paragraph)
	if len(para.Elements) != 2 {
		t.Fatalf("got %d inline runs, want 2: %#v", len(para.Elements), para.Elements)
	}
	link, ok := para.Elements[1].(*Hyperlink)
	if !ok || link.Title != "the docs" || link.URL != "https://example.com" {
		t.Errorf("link = %#v", para.Elements[1])
	}
}

func TestMarkdownParseNestedList(t *testing.T) {
	e := New()
	in := "- a\n- b\n  - b1\n- c\n"
	doc, _, err := e.Parse([]byte(in), FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	list, ok := doc.Elements[0].(*List)
	if !ok {
		t.Fatalf("element 0 is %T, want List", doc.Elements[0])
	}
	if list.Numbered {
		t.Error("dash list parsed as numbered")
	}
	// The nested list rides as its own item, directly after the item it
	// was indented under.
	if len(list.Items) != 4 {
		t.Fatalf("got %d items, want 4: %#v", len(list.Items), list.Items)
	}
	for i, want := range []string{"a", "b"} {
		text, ok := list.Items[i].Element.(*Text)
		if !ok || text.Text != want {
			t.Errorf("item %d = %#v, want Text %q", i, list.Items[i].Element, want)
		}
	}
	nested, ok := list.Items[2].Element.(*List)
	if !ok || len(nested.Items) != 1 {
		t.Fatalf("item 2 = %#v, want nested List of one item", list.Items[2].Element)
	}
	if text, ok := nested.Items[0].Element.(*Text); !ok || text.Text != "b1" {
		t.Errorf("nested item = %#v, want Text b1", nested.Items[0].Element)
	}
	if text, ok := list.Items[3].Element.(*Text); !ok || text.Text != "c" {
		t.Errorf("item 3 = %#v, want Text c", list.Items[3].Element)
	}
}

func TestMarkdownParseOrderedList(t *testing.T) {
	e := New()
	doc, _, err := e.Parse([]byte("1. one\n2. two\n"), FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	list, ok := doc.Elements[0].(*List)
	if !ok || !list.Numbered || len(list.Items) != 2 {
		t.Errorf("got %#v, want numbered List of 2", doc.Elements[0])
	}
}

func TestMarkdownParseTable(t *testing.T) {
	e := New()
	in := "| h1 | h2 |\n| --- | --- |\n| a | b |\n"
	doc, _, err := e.Parse([]byte(in), FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	table, ok := doc.Elements[0].(*Table)
	if !ok {
		t.Fatalf("element 0 is %T, want Table", doc.Elements[0])
	}
	if len(table.Headers) != 2 || len(table.Rows) != 1 {
		t.Fatalf("table shape = %d headers, %d rows", len(table.Headers), len(table.Rows))
	}
	if got := plainText(table.Headers[0].Element); got != "h1" {
		t.Errorf("header 0 = %q", got)
	}
	if got := plainText(table.Rows[0].Cells[1].Element); got != "b" {
		t.Errorf("cell 0,1 = %q", got)
	}
}

func TestMarkdownGenerate(t *testing.T) {
	e := New()
	doc := NewDocument(
		&Header{Level: 2, Text: "Section"},
		&Paragraph{Elements: []Element{
			&Text{Text: "go to ", Size: DefaultTextSize},
			&Hyperlink{Title: "site", URL: "https://example.com", Size: DefaultTextSize},
		}},
		&List{Items: []ListItem{
			{Element: &Text{Text: "x", Size: DefaultTextSize}},
			{Element: &List{Items: []ListItem{
				{Element: &Text{Text: "y", Size: DefaultTextSize}},
			}}},
		}},
	)
	out, _, err := e.Generate(doc, NewImageBundle(), FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	got := string(out)
	for _, want := range []string{
		"## Section",
		"[site](https://example.com)",
		"- x\n  - y\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

// Generating markdown and parsing it back lands on the same model, so
// repeated conversion cannot drift.
func TestMarkdownGenerateParseStable(t *testing.T) {
	e := New()
	doc := NewDocument(
		&Header{Level: 1, Text: "Title"},
		&Paragraph{Elements: []Element{&Text{Text: "plain body", Size: DefaultTextSize}}},
		&List{Items: []ListItem{
			{Element: &Text{Text: "a", Size: DefaultTextSize}},
			{Element: &Text{Text: "b", Size: DefaultTextSize}},
		}},
	)
	out, _, err := e.Generate(doc, NewImageBundle(), FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	back, _, err := e.Parse(out, FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if !doc.Equal(back) {
		t.Errorf("generate/parse drifted\n got: %#v\nwant: %#v", back, doc)
	}
}

func TestMarkdownKeyedImageStaysUnresolved(t *testing.T) {
	e := New()
	doc, images, err := e.Parse([]byte("![alt text](pic.png)\n"), FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if images.Len() != 0 {
		t.Errorf("parse without loader resolved %d images", images.Len())
	}
	para := doc.Elements[0].(*Paragraph)
	im, ok := para.Elements[0].(*Image)
	if !ok || im.Key != "pic.png" || im.Inline() {
		t.Fatalf("image = %#v, want keyed pic.png", para.Elements[0])
	}

	// Generating without the bytes surfaces the missing key.
	_, _, err = e.Generate(doc, images, FormatMarkdown)
	if !IsMissingImage(err) {
		t.Errorf("got %v, want MissingImage", err)
	}
}

func TestMarkdownImageThroughLoader(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4E, 0x47}
	bundle := NewImageBundle()
	bundle.Add("pic.png", payload)
	e := New(WithImageLoader(BundleImageLoader(bundle)))

	doc, images, err := e.Parse([]byte("![alt](pic.png)\n"), FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	data, ok := images.Get("pic.png")
	if !ok || string(data) != string(payload) {
		t.Fatalf("loader bytes not in output bundle: %v, %v", data, ok)
	}

	out, outImages, err := e.Generate(doc, images, FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "![alt](pic.png)") {
		t.Errorf("output %q missing image reference", out)
	}
	if _, ok := outImages.Get("pic.png"); !ok {
		t.Error("generated bundle missing pic.png")
	}
}

func TestMarkdownLoaderFailurePropagates(t *testing.T) {
	e := New(WithImageLoader(NullImageLoader()))
	_, _, err := e.Parse([]byte("![alt](gone.png)\n"), FormatMarkdown)
	if !IsMissingImage(err) {
		t.Errorf("got %v, want MissingImage", err)
	}
}

package docshift

import (
	"strings"
	"testing"
)

func TestRTFGenerateTokens(t *testing.T) {
	e := New()
	doc := NewDocument(
		&Header{Level: 1, Text: "Title"},
		&Paragraph{Elements: []Element{
			&Text{Text: "plain body", Size: DefaultTextSize},
			&Hyperlink{Title: "site", URL: "https://example.com", Size: DefaultTextSize},
		}},
		&List{Items: []ListItem{
			{Element: &Text{Text: "item", Size: DefaultTextSize}},
		}},
		&Table{
			Headers: []TableHeader{{Element: &Text{Text: "h", Size: DefaultTextSize}, Width: DefaultColumnWidth}},
			Rows:    []TableRow{{Cells: []TableCell{{Element: &Text{Text: "v", Size: DefaultTextSize}}}}},
		},
	)
	out, _, err := e.Generate(doc, NewImageBundle(), FormatRTF)
	if err != nil {
		t.Fatal(err)
	}
	got := string(out)
	if !strings.HasPrefix(got, `{\rtf1\ansi`) {
		t.Fatalf("output does not open an rtf group: %q", got[:min(len(got), 40)])
	}
	for _, want := range []string{
		"Title",
		"plain body",
		`\par`,
		`HYPERLINK "https://example.com"`,
		`\trowd`,
		`\cell`,
		`\row`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "}") {
		t.Error("rtf group not closed")
	}
}

func TestRTFEscapes(t *testing.T) {
	e := New()
	doc := NewDocument(&Paragraph{Elements: []Element{
		&Text{Text: `braces {x} and \slash`, Size: DefaultTextSize},
	}})
	out, _, err := e.Generate(doc, NewImageBundle(), FormatRTF)
	if err != nil {
		t.Fatal(err)
	}
	got := string(out)
	for _, want := range []string{`\{x\}`, `\\slash`} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing escape %q: %q", want, got)
		}
	}
}

func TestRTFParseUnsupported(t *testing.T) {
	e := New()
	_, _, err := e.Parse([]byte(`{\rtf1 hi}`), FormatRTF)
	if err == nil || KindOf(err) != KindUnsupportedFeature {
		t.Errorf("got %v, want UnsupportedFeature", err)
	}
}

package docshift

import (
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"text", FormatText},
		{"txt", FormatText},
		{".txt", FormatText},
		{"plaintext", FormatText},
		{"md", FormatMarkdown},
		{"Markdown", FormatMarkdown},
		{"htm", FormatHTML},
		{"html", FormatHTML},
		{"pdf", FormatPDF},
		{"docx", FormatDocx},
		{"rtf", FormatRTF},
		{"json", FormatJSON},
		{"xml", FormatXML},
		{"csv", FormatCSV},
		{"ods", FormatODS},
		{"xlsx", FormatXLSX},
		{".xls", FormatXLS},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("wordperfect"); !IsUnknownFormat(err) {
		t.Errorf("ParseFormat(wordperfect) = %v, want UnknownFormat", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	got, err := FormatFromPath("/tmp/report.final.MD")
	if err != nil || got != FormatMarkdown {
		t.Errorf("FormatFromPath = %q, %v, want markdown", got, err)
	}
	if _, err := FormatFromPath("noextension"); !IsUnknownFormat(err) {
		t.Errorf("FormatFromPath(noextension) = %v, want UnknownFormat", err)
	}
}

func TestFormatFromMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"pdf", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), FormatPDF},
		{"html", []byte("<!DOCTYPE html><html><body><p>hi</p></body></html>"), FormatHTML},
		{"plain", []byte("just some words\nacross two lines\n"), FormatText},
	}
	for _, tt := range tests {
		got, err := FormatFromMIME(tt.data)
		if err != nil || got != tt.want {
			t.Errorf("%s: FormatFromMIME = %q, %v, want %q", tt.name, got, err, tt.want)
		}
	}
}

func TestEngineUnknownFormat(t *testing.T) {
	e := New()

	if _, _, err := e.Parse([]byte("x"), Format("wordperfect")); !IsUnknownFormat(err) {
		t.Errorf("Parse unknown format: got %v, want UnknownFormat", err)
	}
	if _, _, err := e.Generate(NewDocument(), NewImageBundle(), Format("wordperfect")); !IsUnknownFormat(err) {
		t.Errorf("Generate unknown format: got %v, want UnknownFormat", err)
	}
	if _, _, err := e.Convert([]byte("x"), FormatText, Format("wordperfect")); !IsUnknownFormat(err) {
		t.Errorf("Convert to unknown format: got %v, want UnknownFormat", err)
	}
}

func TestEngineBuiltinsRegistered(t *testing.T) {
	e := New()
	formats := []Format{
		FormatText, FormatMarkdown, FormatHTML, FormatPDF, FormatDocx, FormatRTF,
		FormatJSON, FormatXML, FormatCSV, FormatODS, FormatXLSX, FormatXLS,
	}
	for _, f := range formats {
		if _, _, err := e.Parse(nil, f); IsUnknownFormat(err) {
			t.Errorf("format %q not registered", f)
		}
	}
}

func TestConvertTextToMarkdown(t *testing.T) {
	e := New()
	out, _, err := e.Convert([]byte("hello\n"), FormatText, FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out); got != "hello\n" {
		t.Errorf("converted = %q, want %q", got, "hello\n")
	}
}

func TestConvertMarkdownToText(t *testing.T) {
	e := New()
	out, _, err := e.Convert([]byte("# Title\n\nBody paragraph.\n"), FormatMarkdown, FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out); got != "Title\nBody paragraph.\n" {
		t.Errorf("converted = %q, want %q", got, "Title\nBody paragraph.\n")
	}
}

func TestConvertHTMLToMarkdown(t *testing.T) {
	e := New()
	in := "<html><body><h1>Title</h1><p>Some body text.</p></body></html>"
	out, _, err := e.Convert([]byte(in), FormatHTML, FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	got := string(out)
	for _, want := range []string{"# Title", "Some body text."} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestConvertWrapsParseError(t *testing.T) {
	e := New()
	_, _, err := e.Convert([]byte("{not json"), FormatJSON, FormatText)
	if !IsMalformedInput(err) {
		t.Errorf("got %v, want MalformedInput", err)
	}
	if !strings.Contains(err.Error(), "parse json") {
		t.Errorf("error %q does not name the failing stage", err)
	}
}

func TestRegisterOverride(t *testing.T) {
	e := New()
	e.Register(FormatText, failingTransformer{})
	if _, _, err := e.Parse([]byte("x"), FormatText); err == nil {
		t.Error("override transformer was not used")
	}
}

type failingTransformer struct{}

func (failingTransformer) Parse([]byte, *ImageBundle) (*Document, *ImageBundle, error) {
	return nil, nil, malformedDesc(FormatText, "always fails")
}

func (failingTransformer) Generate(*Document, *ImageBundle) ([]byte, *ImageBundle, error) {
	return nil, nil, malformedDesc(FormatText, "always fails")
}

package docshift

import (
	"testing"
)

func TestXLSParseMalformed(t *testing.T) {
	e := New()
	if _, _, err := e.Parse([]byte("not a workbook"), FormatXLS); !IsMalformedInput(err) {
		t.Errorf("got %v, want MalformedInput", err)
	}
}

func TestXLSGenerateUnsupported(t *testing.T) {
	e := New()
	_, _, err := e.Generate(spreadsheetTestDoc(), NewImageBundle(), FormatXLS)
	if err == nil || KindOf(err) != KindUnsupportedFeature {
		t.Errorf("got %v, want UnsupportedFeature", err)
	}
}

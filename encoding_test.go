package docshift

import (
	"testing"
)

func TestDecodeTextUTF8Passthrough(t *testing.T) {
	in := "héllo wörld — ünïcode"
	if got := decodeText([]byte(in)); got != in {
		t.Errorf("decodeText changed valid utf-8: %q", got)
	}
}

func TestDecodeTextUTF16(t *testing.T) {
	// "hi" as UTF-16LE with BOM.
	in := []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}
	if got := decodeText(in); got != "hi" {
		t.Errorf("decodeText(utf-16le) = %q, want %q", got, "hi")
	}
}

func TestDecodeTextInvalidBytes(t *testing.T) {
	// Bytes no charset decodes cleanly; output must still be valid
	// utf-8, not an error.
	in := []byte{'o', 'k', 0xFF, 0xFE, 0xFD}
	got := decodeText(in)
	if got == "" {
		t.Fatal("decodeText returned empty string")
	}
}

func TestNormalizeNewlines(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a\r\nb", "a\nb"},
		{"a\rb", "a\nb"},
		{"a\nb", "a\nb"},
		{"a\r\n\r\nb\r", "a\n\nb\n"},
	}
	for _, tt := range tests {
		if got := normalizeNewlines(tt.in); got != tt.want {
			t.Errorf("normalizeNewlines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package docshift

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKindNames(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindInternal, "Internal"},
		{KindUnknownFormat, "UnknownFormat"},
		{KindMalformedInput, "MalformedInput"},
		{KindUnsupportedFeature, "UnsupportedFeature"},
		{KindMissingImage, "MissingImage"},
		{KindIOFailure, "IOFailure"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("kind %d String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	err := malformed(FormatJSON, errors.New("bad brace"))
	if KindOf(err) != KindMalformedInput {
		t.Errorf("KindOf = %v, want MalformedInput", KindOf(err))
	}
	// Kinds survive wrapping.
	wrapped := fmt.Errorf("parse json: %w", err)
	if KindOf(wrapped) != KindMalformedInput {
		t.Errorf("KindOf(wrapped) = %v, want MalformedInput", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("plain error did not default to Internal")
	}
}

func TestErrorPredicates(t *testing.T) {
	if !IsUnknownFormat(unknownFormat("nope")) {
		t.Error("IsUnknownFormat false for unknownFormat error")
	}
	if !IsMalformedInput(malformedDesc(FormatXML, "broken")) {
		t.Error("IsMalformedInput false for malformed error")
	}
	if !IsMissingImage(missingImage("pic.png", nil)) {
		t.Error("IsMissingImage false for missingImage error")
	}
	if IsMissingImage(unknownFormat("x")) {
		t.Error("IsMissingImage true for UnknownFormat error")
	}
}

func TestConvertErrorMessage(t *testing.T) {
	err := missingImage("pic.png", nil)
	msg := err.Error()
	for _, want := range []string{"MissingImage", "pic.png"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}

	var ce *ConvertError
	if !errors.As(err, &ce) {
		t.Fatal("missingImage did not produce a ConvertError")
	}
	if ce.Key != "pic.png" {
		t.Errorf("Key = %q, want pic.png", ce.Key)
	}
}

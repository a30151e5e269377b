package docshift

import (
	"reflect"
	"testing"
)

func TestImageBundleInsertionOrder(t *testing.T) {
	b := NewImageBundle()
	b.Add("c.png", []byte{3})
	b.Add("a.png", []byte{1})
	b.Add("b.png", []byte{2})
	b.Add("a.png", []byte{9}) // replace keeps position

	want := []string{"c.png", "a.png", "b.png"}
	if got := b.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
	data, ok := b.Get("a.png")
	if !ok || !reflect.DeepEqual(data, []byte{9}) {
		t.Errorf("Get(a.png) = %v, %v", data, ok)
	}
	if _, ok := b.Get("missing.png"); ok {
		t.Error("Get on absent key reported ok")
	}
}

func TestBundleImageLoader(t *testing.T) {
	b := NewImageBundle()
	b.Add("pic.png", []byte("bytes"))
	loader := BundleImageLoader(b)

	data, err := loader("pic.png")
	if err != nil || string(data) != "bytes" {
		t.Fatalf("loader(pic.png) = %q, %v", data, err)
	}
	if _, err := loader("nope.png"); !IsMissingImage(err) {
		t.Errorf("loader on absent key: got %v, want MissingImage", err)
	}
}

func TestResolveImage(t *testing.T) {
	bundle := NewImageBundle()
	bundle.Add("keyed.png", []byte("keyed"))

	tests := []struct {
		name    string
		image   *Image
		want    string
		missing bool
	}{
		{"inline", &Image{Data: []byte("inline"), Type: ImagePng}, "inline", false},
		{"keyed", &Image{Key: "keyed.png", Type: ImagePng}, "keyed", false},
		{"absent", &Image{Key: "absent.png", Type: ImagePng}, "", true},
	}
	for _, tt := range tests {
		data, err := resolveImage(tt.image, bundle)
		if tt.missing {
			if !IsMissingImage(err) {
				t.Errorf("%s: got %v, want MissingImage", tt.name, err)
			}
			continue
		}
		if err != nil || string(data) != tt.want {
			t.Errorf("%s: got %q, %v, want %q", tt.name, data, err, tt.want)
		}
	}
}

func TestBundleImageSink(t *testing.T) {
	b := NewImageBundle()
	sink := BundleImageSink(b)
	if err := sink("out.png", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if data, ok := b.Get("out.png"); !ok || string(data) != "x" {
		t.Errorf("sink did not collect: %q, %v", data, ok)
	}
}

func TestDiskImageLoaderMissing(t *testing.T) {
	loader := DiskImageLoader(t.TempDir())
	_, err := loader("nothing.png")
	if !IsMissingImage(err) {
		t.Errorf("got %v, want MissingImage", err)
	}
}

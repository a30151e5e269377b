// Copyright 2026 Docshift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docshift

import (
	"fmt"
	"os"
	"path/filepath"
)

// ImageBundle carries binary image payloads keyed by logical name. It
// is the out-of-band side channel traveling alongside a Document:
// produced by parse, consumed by generate, owned by the caller in
// between. Keys enumerate in insertion order.
type ImageBundle struct {
	keys  []string
	bytes map[string][]byte
}

// NewImageBundle creates an empty bundle.
func NewImageBundle() *ImageBundle {
	return &ImageBundle{bytes: make(map[string][]byte)}
}

// Add inserts or replaces the payload for key.
func (b *ImageBundle) Add(key string, data []byte) {
	if b.bytes == nil {
		b.bytes = make(map[string][]byte)
	}
	if _, ok := b.bytes[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.bytes[key] = data
}

// Get returns the payload for key.
func (b *ImageBundle) Get(key string) ([]byte, bool) {
	if b == nil || b.bytes == nil {
		return nil, false
	}
	data, ok := b.bytes[key]
	return data, ok
}

// Keys returns the keys in insertion order.
func (b *ImageBundle) Keys() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Len returns the number of payloads.
func (b *ImageBundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// ImageLoader resolves a logical image reference found in a source
// (an <img src>, a markdown destination) to its bytes. Loaders fail
// with a MissingImage error when the reference cannot be resolved.
type ImageLoader func(name string) ([]byte, error)

// ImageSink accepts every image a generator wants to externalize
// alongside its main output.
type ImageSink func(name string, data []byte) error

// DiskImageLoader reads image payloads from files under dir.
func DiskImageLoader(dir string) ImageLoader {
	return func(name string) ([]byte, error) {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			return nil, missingImage(name, err)
		}
		return data, nil
	}
}

// NullImageLoader fails every lookup. It is the default loader for
// plain Parse calls, which must not touch the filesystem.
func NullImageLoader() ImageLoader {
	return func(name string) ([]byte, error) {
		return nil, missingImage(name, nil)
	}
}

// BundleImageLoader resolves references against an in-memory bundle.
func BundleImageLoader(b *ImageBundle) ImageLoader {
	return func(name string) ([]byte, error) {
		if data, ok := b.Get(name); ok {
			return data, nil
		}
		return nil, missingImage(name, nil)
	}
}

// DiskImageSink writes image payloads to files under dir.
func DiskImageSink(dir string) ImageSink {
	return func(name string, data []byte) error {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return ioFailure(fmt.Errorf("image sink: %w", err))
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return ioFailure(fmt.Errorf("image sink: %w", err))
		}
		return nil
	}
}

// BundleImageSink collects externalized images into b.
func BundleImageSink(b *ImageBundle) ImageSink {
	return func(name string, data []byte) error {
		b.Add(name, data)
		return nil
	}
}

// resolveImage returns the payload for an image element, looking at
// inline bytes first and then the supplied bundle. A keyed image with
// no bytes anywhere is a MissingImage failure carrying the key.
func resolveImage(im *Image, images *ImageBundle) ([]byte, error) {
	if im.Inline() {
		return im.Data, nil
	}
	if data, ok := images.Get(im.Key); ok {
		return data, nil
	}
	return nil, missingImage(im.Key, nil)
}

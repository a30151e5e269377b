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

// Transformer is the interface all format adapters implement. Parse
// consumes raw bytes plus an optional bundle of image payloads the
// caller already holds; Generate renders a Document back to bytes and
// returns the bundle of images it externalized, if any.
//
// Both directions are pure with respect to I/O: no adapter touches the
// filesystem or the network. Image bytes enter and leave through
// bundles, loaders and sinks only.
type Transformer interface {
	Parse(data []byte, images *ImageBundle) (*Document, *ImageBundle, error)
	Generate(doc *Document, images *ImageBundle) ([]byte, *ImageBundle, error)
}

// ImageLoaderTransformer is implemented by parsers whose source format
// references images by name (markdown destinations, HTML src
// attributes) rather than embedding them.
type ImageLoaderTransformer interface {
	ParseWithLoader(data []byte, loader ImageLoader) (*Document, *ImageBundle, error)
}

// ImageSinkTransformer is implemented by generators whose target
// format externalizes images next to the main output instead of
// embedding them.
type ImageSinkTransformer interface {
	GenerateWithSink(doc *Document, images *ImageBundle, sink ImageSink) ([]byte, error)
}

// Warning reports an element a generator dropped because the target
// format cannot represent it. The generation itself still succeeds.
type Warning struct {
	Format  Format // target format emitting the warning
	Variant string // element variant name, e.g. "Header"
	Reason  string
}

// WarningSink receives fidelity warnings during Generate. The default
// sink discards them.
type WarningSink func(Warning)

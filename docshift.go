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
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format tags the formats the engine knows. The set is closed; Parse
// and Generate on an unregistered tag fail with UnknownFormat.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatDocx     Format = "docx"
	FormatRTF      Format = "rtf"
	FormatJSON     Format = "json"
	FormatXML      Format = "xml"
	FormatCSV      Format = "csv"
	FormatODS      Format = "ods"
	FormatXLSX     Format = "xlsx"
	FormatXLS      Format = "xls"
)

// ParseFormat maps a format name or a common file extension (with or
// without the leading dot) to its Format tag.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "text", "txt", "plaintext":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDocx, nil
	case "rtf":
		return FormatRTF, nil
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "csv":
		return FormatCSV, nil
	case "ods":
		return FormatODS, nil
	case "xlsx":
		return FormatXLSX, nil
	case "xls":
		return FormatXLS, nil
	}
	return "", unknownFormat(Format(strings.ToLower(name)))
}

// FormatFromPath maps a file path to a Format tag via its extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", unknownFormat(Format(path))
	}
	return ParseFormat(ext)
}

// FormatFromMIME sniffs content bytes and maps the detected MIME type
// to a Format tag. Text-like content that the sniffer cannot pin down
// falls back to FormatText.
func FormatFromMIME(data []byte) (Format, error) {
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("application/pdf"):
		return FormatPDF, nil
	case mtype.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return FormatDocx, nil
	case mtype.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
		return FormatXLSX, nil
	case mtype.Is("application/vnd.ms-excel"):
		return FormatXLS, nil
	case mtype.Is("application/vnd.oasis.opendocument.spreadsheet"):
		return FormatODS, nil
	case mtype.Is("text/rtf"), mtype.Is("application/rtf"):
		return FormatRTF, nil
	case mtype.Is("text/html"):
		return FormatHTML, nil
	case mtype.Is("text/csv"):
		return FormatCSV, nil
	case mtype.Is("application/json"):
		return FormatJSON, nil
	case mtype.Is("text/xml"), mtype.Is("application/xml"):
		return FormatXML, nil
	case mtype.Is("text/markdown"):
		return FormatMarkdown, nil
	case strings.HasPrefix(mtype.String(), "text/"):
		return FormatText, nil
	}
	return "", unknownFormat(Format(mtype.String()))
}

// Engine routes (format, direction) to the registered transformer.
// An Engine is safe for concurrent Convert calls; the registry is
// written only during New and Register.
type Engine struct {
	transformers map[Format]Transformer
	loader       ImageLoader
	sink         ImageSink
	warn         WarningSink
}

// New creates an Engine with all built-in transformers registered.
func New(opts ...Option) *Engine {
	e := &Engine{transformers: make(map[Format]Transformer)}
	for _, opt := range opts {
		opt(e)
	}
	e.enableBuiltins()
	return e
}

// Register adds or replaces the transformer for a format tag.
func (e *Engine) Register(f Format, t Transformer) {
	e.transformers[f] = t
}

func (e *Engine) enableBuiltins() {
	e.Register(FormatText, newTextTransformer(e))
	e.Register(FormatMarkdown, newMarkdownTransformer(e))
	e.Register(FormatHTML, newHTMLTransformer(e))
	e.Register(FormatPDF, newPDFTransformer(e))
	e.Register(FormatDocx, newDocxTransformer(e))
	e.Register(FormatRTF, newRTFTransformer(e))
	e.Register(FormatJSON, newJSONTransformer(e))
	e.Register(FormatXML, newXMLTransformer(e))
	e.Register(FormatCSV, newCSVTransformer(e))
	e.Register(FormatODS, newODSTransformer(e))
	e.Register(FormatXLSX, newXLSXTransformer(e))
	e.Register(FormatXLS, newXLSTransformer(e))
}

// warning forwards a fidelity warning to the configured sink.
func (e *Engine) warning(w Warning) {
	if e.warn != nil {
		e.warn(w)
	}
}

// Parse decodes data in format f into a Document. When the engine has
// an image loader and the parser supports one, by-name image
// references are resolved through it.
func (e *Engine) Parse(data []byte, f Format) (*Document, *ImageBundle, error) {
	t, ok := e.transformers[f]
	if !ok {
		return nil, nil, unknownFormat(f)
	}
	if lt, ok := t.(ImageLoaderTransformer); ok && e.loader != nil {
		return lt.ParseWithLoader(data, e.loader)
	}
	return t.Parse(data, nil)
}

// Generate renders doc in format f. Images externalized by the
// generator go to the engine's sink when one is configured; they are
// always also returned in the bundle.
func (e *Engine) Generate(doc *Document, images *ImageBundle, f Format) ([]byte, *ImageBundle, error) {
	t, ok := e.transformers[f]
	if !ok {
		return nil, nil, unknownFormat(f)
	}
	if st, ok := t.(ImageSinkTransformer); ok && e.sink != nil {
		collected := NewImageBundle()
		sink := func(name string, data []byte) error {
			collected.Add(name, data)
			return e.sink(name, data)
		}
		out, err := st.GenerateWithSink(doc, images, sink)
		if err != nil {
			return nil, nil, err
		}
		return out, collected, nil
	}
	return t.Generate(doc, images)
}

// Convert parses data from one format and renders it in another. It
// returns the output bytes plus the bundle of images the generator
// externalized.
func (e *Engine) Convert(data []byte, from, to Format) ([]byte, *ImageBundle, error) {
	doc, images, err := e.Parse(data, from)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", from, err)
	}
	out, outImages, err := e.Generate(doc, images, to)
	if err != nil {
		return nil, nil, fmt.Errorf("generate %s: %w", to, err)
	}
	return out, outImages, nil
}

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

// Package httpapi exposes the conversion engine over HTTP: a document
// is uploaded as a multipart file and comes back converted, named
// after the source file with the target format's extension.
package httpapi

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/docshift/docshift"
)

// maxUploadBytes bounds one multipart upload.
const maxUploadBytes = 64 << 20

// uploadInputFormats is the closed set of input types the upload
// surface accepts; everything else goes through the CLI or library.
var uploadInputFormats = map[docshift.Format]bool{
	docshift.FormatText:     true,
	docshift.FormatMarkdown: true,
	docshift.FormatHTML:     true,
	docshift.FormatPDF:      true,
	docshift.FormatJSON:     true,
}

// Handler serves POST /upload/{format}, where {format} names the
// output format. The input format comes from the uploaded file's
// extension.
func Handler(logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{engine: docshift.New(), logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload/{format}", s.upload)
	return mux
}

type server struct {
	engine *docshift.Engine
	logger *slog.Logger
}

func (s *server) upload(w http.ResponseWriter, r *http.Request) {
	to, err := docshift.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("multipart field %q: %w", "file", err))
		return
	}
	defer file.Close()

	from, err := docshift.FormatFromPath(header.Filename)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	if !uploadInputFormats[from] {
		s.fail(w, r, http.StatusBadRequest, &docshift.ConvertError{
			Kind:   docshift.KindUnknownFormat,
			Format: from,
			Desc:   "upload accepts md, html, htm, txt, pdf and json files",
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	out, _, err := s.engine.Convert(data, from, to)
	if err != nil {
		status := http.StatusInternalServerError
		switch docshift.KindOf(err) {
		case docshift.KindMalformedInput, docshift.KindUnknownFormat:
			status = http.StatusBadRequest
		}
		s.fail(w, r, status, err)
		return
	}

	name := outputName(header.Filename, to)
	s.logger.Info("converted",
		"file", header.Filename,
		"from", string(from),
		"to", string(to),
		"bytes", len(out))
	w.Header().Set("Content-Type", contentTypeFor(to))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Error("conversion failed",
		"path", r.URL.Path,
		"status", status,
		"error", err)
	http.Error(w, fmt.Sprintf("%s: %v", docshift.KindOf(err), err), status)
}

// outputName swaps the upload's extension for the target format's.
func outputName(filename string, to docshift.Format) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "document"
	}
	return stem + "." + formatExtension(to)
}

func formatExtension(f docshift.Format) string {
	switch f {
	case docshift.FormatText:
		return "txt"
	case docshift.FormatMarkdown:
		return "md"
	default:
		return string(f)
	}
}

func contentTypeFor(f docshift.Format) string {
	switch f {
	case docshift.FormatText:
		return "text/plain; charset=utf-8"
	case docshift.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case docshift.FormatHTML:
		return "text/html; charset=utf-8"
	case docshift.FormatPDF:
		return "application/pdf"
	case docshift.FormatDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case docshift.FormatRTF:
		return "application/rtf"
	case docshift.FormatJSON:
		return "application/json"
	case docshift.FormatXML:
		return "text/xml; charset=utf-8"
	case docshift.FormatCSV:
		return "text/csv; charset=utf-8"
	case docshift.FormatODS:
		return "application/vnd.oasis.opendocument.spreadsheet"
	case docshift.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case docshift.FormatXLS:
		return "application/vnd.ms-excel"
	}
	return "application/octet-stream"
}

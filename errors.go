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
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure the engine surfaces. Callers
// branch on kinds, not on concrete error values.
type ErrorKind int

const (
	// KindInternal: an adapter-internal invariant was violated.
	KindInternal ErrorKind = iota
	// KindUnknownFormat: no transformer is registered for the tag.
	KindUnknownFormat
	// KindMalformedInput: the bytes do not conform to the format.
	KindMalformedInput
	// KindUnsupportedFeature: the input uses a construct the adapter
	// does not implement.
	KindUnsupportedFeature
	// KindMissingImage: an image key resolved to no bytes anywhere.
	KindMissingImage
	// KindIOFailure: an image loader or sink failed.
	KindIOFailure
)

// String returns the stable kind name printed by the CLI and the HTTP
// surface.
func (k ErrorKind) String() string {
	switch k {
	case KindUnknownFormat:
		return "UnknownFormat"
	case KindMalformedInput:
		return "MalformedInput"
	case KindUnsupportedFeature:
		return "UnsupportedFeature"
	case KindMissingImage:
		return "MissingImage"
	case KindIOFailure:
		return "IOFailure"
	default:
		return "Internal"
	}
}

// ConvertError is the error type returned by Convert and by the
// individual transformers.
type ConvertError struct {
	Kind   ErrorKind
	Format Format // format being parsed or generated, when known
	Desc   string // short human description
	Key    string // image key, for MissingImage
	Err    error  // underlying cause, if any
}

func (e *ConvertError) Error() string {
	parts := []string{e.Kind.String()}
	if e.Format != "" {
		parts = append(parts, fmt.Sprintf("format=%q", string(e.Format)))
	}
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%q", e.Key))
	}
	if e.Desc != "" {
		parts = append(parts, e.Desc)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ConvertError) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal when err does not
// wrap a ConvertError.
func KindOf(err error) ErrorKind {
	var ce *ConvertError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// IsUnknownFormat reports whether err is an UnknownFormat failure.
func IsUnknownFormat(err error) bool { return isKind(err, KindUnknownFormat) }

// IsMalformedInput reports whether err is a MalformedInput failure.
func IsMalformedInput(err error) bool { return isKind(err, KindMalformedInput) }

// IsMissingImage reports whether err is a MissingImage failure.
func IsMissingImage(err error) bool { return isKind(err, KindMissingImage) }

func isKind(err error, kind ErrorKind) bool {
	var ce *ConvertError
	return errors.As(err, &ce) && ce.Kind == kind
}

func unknownFormat(f Format) error {
	return &ConvertError{Kind: KindUnknownFormat, Format: f}
}

func malformed(f Format, err error) error {
	return &ConvertError{Kind: KindMalformedInput, Format: f, Err: err}
}

func malformedDesc(f Format, desc string) error {
	return &ConvertError{Kind: KindMalformedInput, Format: f, Desc: desc}
}

func unsupported(f Format, desc string) error {
	return &ConvertError{Kind: KindUnsupportedFeature, Format: f, Desc: desc}
}

func missingImage(key string, err error) error {
	return &ConvertError{Kind: KindMissingImage, Key: key, Err: err}
}

func ioFailure(err error) error {
	return &ConvertError{Kind: KindIOFailure, Err: err}
}

func internalErr(f Format, err error) error {
	return &ConvertError{Kind: KindInternal, Format: f, Err: err}
}

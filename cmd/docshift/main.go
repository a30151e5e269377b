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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docshift/docshift"
)

var version = "dev"

func main() {
	var (
		inputFile    string
		outputFile   string
		inputFormat  string
		outputFormat string
		showVersion  bool
	)

	flag.StringVar(&inputFile, "i", "", "Input file (default: stdin)")
	flag.StringVar(&inputFile, "input-file", "", "Input file (default: stdin)")
	flag.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	flag.StringVar(&outputFile, "output-file", "", "Output file (default: stdout)")
	flag.StringVar(&inputFormat, "f", "", "Input format (default: inferred from input file extension)")
	flag.StringVar(&inputFormat, "input-format", "", "Input format (default: inferred from input file extension)")
	flag.StringVar(&outputFormat, "t", "", "Output format (default: inferred from output file extension)")
	flag.StringVar(&outputFormat, "output-format", "", "Output format (default: inferred from output file extension)")
	flag.BoolVar(&showVersion, "v", false, "Show version")
	flag.BoolVar(&showVersion, "version", false, "Show version")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: docshift [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Convert a document between formats.\n\n")
		fmt.Fprintf(os.Stderr, "Formats: text, markdown, html, pdf, docx, rtf, json, xml, csv, ods, xlsx, xls\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("docshift %s\n", version)
		os.Exit(0)
	}

	if err := run(inputFile, outputFile, inputFormat, outputFormat); err != nil {
		if kind := docshift.KindOf(err); kind != docshift.KindInternal {
			fmt.Fprintf(os.Stderr, "Error (%s): %v\n", kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(inputFile, outputFile, inputFormat, outputFormat string) error {
	from, err := resolveFormat(inputFormat, inputFile, "input")
	if err != nil {
		return err
	}
	to, err := resolveFormat(outputFormat, outputFile, "output")
	if err != nil {
		return err
	}

	var data []byte
	if inputFile == "" {
		if data, err = io.ReadAll(os.Stdin); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	} else {
		if data, err = os.ReadFile(inputFile); err != nil {
			return fmt.Errorf("read %s: %w", inputFile, err)
		}
	}

	// Sibling image files resolve against the input directory; images
	// the generator externalizes land next to the output.
	opts := []docshift.Option{
		docshift.WithWarningSink(func(w docshift.Warning) {
			fmt.Fprintf(os.Stderr, "Warning: %s output drops %s: %s\n", w.Format, w.Variant, w.Reason)
		}),
	}
	if inputFile != "" {
		opts = append(opts, docshift.WithImageLoader(docshift.DiskImageLoader(filepath.Dir(inputFile))))
	}
	if outputFile != "" {
		opts = append(opts, docshift.WithImageSink(docshift.DiskImageSink(filepath.Dir(outputFile))))
	}
	engine := docshift.New(opts...)

	out, _, err := engine.Convert(data, from, to)
	if err != nil {
		return err
	}

	if outputFile == "" {
		if _, err := os.Stdout.Write(out); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		return nil
	}
	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(outputFile, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputFile, err)
	}
	return nil
}

// resolveFormat takes the explicit flag when given, the file extension
// otherwise.
func resolveFormat(explicit, file, side string) (docshift.Format, error) {
	if explicit != "" {
		return docshift.ParseFormat(explicit)
	}
	if file == "" {
		return "", fmt.Errorf("no %s format: pass --%s-format or a file with a known extension", side, side)
	}
	return docshift.FormatFromPath(file)
}

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

//go:build js && wasm

// Browser entry point. Exposes docshiftConvert(bytes, from, to) on the
// JS global object, returning {data: Uint8Array} or {error: string}.
package main

import (
	"syscall/js"

	"github.com/docshift/docshift"
)

func main() {
	js.Global().Set("docshiftConvert", js.FuncOf(convert))
	select {}
}

func convert(_ js.Value, args []js.Value) any {
	if len(args) != 3 {
		return errObject("docshiftConvert(bytes, fromFormat, toFormat)")
	}
	from, err := docshift.ParseFormat(args[1].String())
	if err != nil {
		return errObject(err.Error())
	}
	to, err := docshift.ParseFormat(args[2].String())
	if err != nil {
		return errObject(err.Error())
	}

	data := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(data, args[0])

	out, _, err := docshift.New().Convert(data, from, to)
	if err != nil {
		return errObject(err.Error())
	}

	result := js.Global().Get("Uint8Array").New(len(out))
	js.CopyBytesToJS(result, out)
	return map[string]any{"data": result}
}

func errObject(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// Package envelope extracts the record list out of upstream responses. The
// platform wraps collections inconsistently (bare arrays, {data: [...]},
// {data: {data: [...]}}, {data: {companies: [...]}}, {items: [...]} and so
// on), so every list endpoint goes through the same probing order.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape identifies where in the envelope the list was found.
type Shape int

const (
	ShapeNone        Shape = iota // no known nesting matched
	ShapeBare                     // [...]
	ShapeData                     // {data: [...]}
	ShapeDataData                 // {data: {data: [...]}}
	ShapeDataNamed                // {data: {<name>: [...]}}
	ShapeDataItems                // {data: {items: [...]}}
	ShapeDataResults              // {data: {results: [...]}}
	ShapeNamed                    // {<name>: [...]}
	ShapeItems                    // {items: [...]}
	ShapeResults                  // {results: [...]}
)

var shapeNames = map[Shape]string{
	ShapeNone:        "none",
	ShapeBare:        "bare",
	ShapeData:        "data",
	ShapeDataData:    "data.data",
	ShapeDataNamed:   "data.<name>",
	ShapeDataItems:   "data.items",
	ShapeDataResults: "data.results",
	ShapeNamed:       "<name>",
	ShapeItems:       "items",
	ShapeResults:     "results",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// Normalize returns the first array found in an already decoded JSON value.
// name is the plural property the endpoint may use ("companies", "users").
// The result is never nil.
func Normalize(value any, name string) []any {
	if arr, ok := value.([]any); ok {
		return arr
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return []any{}
	}
	if data, ok := obj["data"]; ok {
		if arr, ok := data.([]any); ok {
			return arr
		}
		if inner, ok := data.(map[string]any); ok {
			for _, key := range []string{"data", name, "items", "results"} {
				if arr, ok := arrayAt(inner, key); ok {
					return arr
				}
			}
		}
	}
	for _, key := range []string{name, "items", "results"} {
		if arr, ok := arrayAt(obj, key); ok {
			return arr
		}
	}
	return []any{}
}

func arrayAt(obj map[string]any, key string) ([]any, bool) {
	if key == "" {
		return nil, false
	}
	arr, ok := obj[key].([]any)
	return arr, ok
}

// Detect classifies a raw response body and returns the raw bytes of the
// list it found. Bodies that match no known shape yield ShapeNone and "[]".
// Only malformed JSON is an error.
func Detect(raw []byte, name string) (Shape, json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ShapeNone, emptyList, nil
	}
	if !json.Valid(raw) {
		return ShapeNone, nil, fmt.Errorf("envelope: invalid json")
	}
	switch raw[0] {
	case '[':
		return ShapeBare, json.RawMessage(raw), nil
	case '{':
	default:
		return ShapeNone, emptyList, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return ShapeNone, nil, fmt.Errorf("envelope: %w", err)
	}
	if data, ok := top["data"]; ok {
		if isArray(data) {
			return ShapeData, data, nil
		}
		var inner map[string]json.RawMessage
		if isObject(data) && json.Unmarshal(data, &inner) == nil {
			probes := []struct {
				key   string
				shape Shape
			}{
				{"data", ShapeDataData},
				{name, ShapeDataNamed},
				{"items", ShapeDataItems},
				{"results", ShapeDataResults},
			}
			for _, p := range probes {
				if p.key == "" {
					continue
				}
				if v, ok := inner[p.key]; ok && isArray(v) {
					return p.shape, v, nil
				}
			}
		}
	}
	probes := []struct {
		key   string
		shape Shape
	}{
		{name, ShapeNamed},
		{"items", ShapeItems},
		{"results", ShapeResults},
	}
	for _, p := range probes {
		if p.key == "" {
			continue
		}
		if v, ok := top[p.key]; ok && isArray(v) {
			return p.shape, v, nil
		}
	}
	return ShapeNone, emptyList, nil
}

var emptyList = json.RawMessage("[]")

// DecodeList decodes the list found in raw into a slice of T. Order is
// preserved. An unmatched envelope decodes to an empty, non-nil slice.
func DecodeList[T any](raw []byte, name string) ([]T, Shape, error) {
	shape, list, err := Detect(raw, name)
	if err != nil {
		return []T{}, shape, err
	}
	out := []T{}
	if err := json.Unmarshal(list, &out); err != nil {
		return []T{}, shape, fmt.Errorf("envelope: decode %s list: %w", shape, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, shape, nil
}

// DecodeOne decodes a single record from {data: {data: {...}}},
// {data: {...}} or a bare object.
func DecodeOne[T any](raw []byte) (T, error) {
	var zero T
	obj := bytes.TrimSpace(raw)
	for i := 0; i < 2; i++ {
		var top map[string]json.RawMessage
		if !isObject(obj) || json.Unmarshal(obj, &top) != nil {
			break
		}
		data, ok := top["data"]
		if !ok || !isObject(data) {
			break
		}
		obj = data
	}
	if !isObject(obj) {
		return zero, fmt.Errorf("envelope: expected object")
	}
	var out T
	if err := json.Unmarshal(obj, &out); err != nil {
		return zero, fmt.Errorf("envelope: decode object: %w", err)
	}
	return out, nil
}

func isArray(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '['
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

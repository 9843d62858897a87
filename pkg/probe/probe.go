// Package probe reads values out of untyped JSON trees by ordered field-path lookups.
//
// Aggregator payloads name the same field differently depending on the provider, so
// callers describe every known location as an Extractor and take the first one that
// yields a value.
package probe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Extractor pulls one optional value out of a decoded JSON tree
type Extractor func(root any) (any, bool)

// At builds an Extractor for a path of map keys (string) and slice indexes (int).
// Negative indexes count from the end of the slice.
func At(path ...any) Extractor {
	return func(root any) (any, bool) {
		return Lookup(root, path...)
	}
}

// Lookup walks path through root. It reports false when any step is missing or the
// final value is JSON null.
func Lookup(root any, path ...any) (any, bool) {
	cur := root
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = m[key]; !ok {
				return nil, false
			}
		case int:
			s, ok := cur.([]any)
			if !ok || len(s) == 0 {
				return nil, false
			}
			if key < 0 {
				key += len(s)
			}
			if key < 0 || key >= len(s) {
				return nil, false
			}
			cur = s[key]
		default:
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// First returns the first value any extractor yields
func First(root any, extractors ...Extractor) (any, bool) {
	for _, extract := range extractors {
		if v, ok := extract(root); ok {
			return v, true
		}
	}
	return nil, false
}

// FirstTruthy returns the first value that is present and Truthy
func FirstTruthy(root any, extractors ...Extractor) (any, bool) {
	for _, extract := range extractors {
		if v, ok := extract(root); ok && Truthy(v) {
			return v, true
		}
	}
	return nil, false
}

// Truthy treats nil, false, empty strings and zero numbers as absent
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}

// String coerces a scalar JSON value to its string form. Objects and arrays are
// rendered as JSON.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// Float coerces a JSON number or numeric string to float64
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// StringAt is Lookup followed by String, returning "" when the path is absent
func StringAt(root any, path ...any) string {
	v, ok := Lookup(root, path...)
	if !ok {
		return ""
	}
	return String(v)
}

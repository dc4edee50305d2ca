// Package normalize reads processor entities that arrive in different shapes
// (decoded JSON maps, typed response objects, enum-like wrapped values) through
// one accessor, and builds domain snapshots from them. Nothing in this package
// fails on missing or malformed data: absent fields come back as nil.
package normalize

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// Source is anything a field can be looked up on.
type Source interface {
	Lookup(field string) (any, bool)
}

// Object is implemented by typed values that expose their fields by name.
type Object interface {
	Attr(name string) (any, bool)
}

// Map is a decoded JSON object. Keys are tried as given, then in camelCase
// and snake_case.
type Map map[string]any

func (m Map) Lookup(field string) (any, bool) {
	if m == nil {
		return nil, false
	}
	if v, ok := m[field]; ok {
		return v, true
	}
	if v, ok := m[camelCase(field)]; ok {
		return v, true
	}
	if v, ok := m[snakeCase(field)]; ok {
		return v, true
	}
	return nil, false
}

type objectSource struct {
	obj Object
}

func (o objectSource) Lookup(field string) (any, bool) {
	if v, ok := o.obj.Attr(field); ok {
		return v, true
	}
	if v, ok := o.obj.Attr(camelCase(field)); ok {
		return v, true
	}
	return nil, false
}

type emptySource struct{}

func (emptySource) Lookup(string) (any, bool) { return nil, false }

// From wraps v in the matching Source variant. Typed objects are tried before
// maps; anything else yields an empty source.
func From(v any) Source {
	switch x := v.(type) {
	case nil:
		return emptySource{}
	case Source:
		return x
	case Object:
		return objectSource{obj: x}
	case map[string]any:
		return Map(x)
	case json.RawMessage:
		return FromJSON(x)
	case []byte:
		return FromJSON(x)
	}
	return emptySource{}
}

// FromJSON decodes an object payload. Invalid JSON yields an empty source.
func FromJSON(data []byte) Source {
	m, err := DecodeMap(data)
	if err != nil {
		return emptySource{}
	}
	return m
}

// DecodeMap decodes data keeping numbers exact.
func DecodeMap(data []byte) (Map, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return Map(m), nil
}

// Get resolves a dotted path such as "failureReason.description".
func Get(src Source, path string) any {
	if src == nil {
		return nil
	}
	parts := strings.Split(path, ".")
	var cur any
	current := src
	for i, part := range parts {
		v, ok := current.Lookup(part)
		if !ok || v == nil {
			return nil
		}
		cur = v
		if i < len(parts)-1 {
			current = From(v)
		}
	}
	return cur
}

// First returns the first path that resolves to a non-nil value.
func First(src Source, paths ...string) any {
	for _, p := range paths {
		if v := Get(src, p); v != nil {
			return v
		}
	}
	return nil
}

func camelCase(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	var b strings.Builder
	upper := false
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

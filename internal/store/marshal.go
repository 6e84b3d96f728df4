package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/mirror/internal/decl"
)

// marshalLibrary encodes lib for storage and returns its content hash.
// The hash is computed over the canonical form, so key order and number
// spelling in the source do not affect it.
func marshalLibrary(lib decl.RawLibrary) (content, hash string, err error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(lib); err != nil {
		return "", "", fmt.Errorf("marshal library %s: %w", lib.URI, err)
	}
	content = strings.TrimSpace(buf.String())

	var generic any
	if err := decodeNumbers(content, &generic); err != nil {
		return "", "", fmt.Errorf("marshal library %s: %w", lib.URI, err)
	}
	hash, err = decl.ContentHash(decl.DomainLibrary, normalizeNumbers(generic))
	if err != nil {
		return "", "", fmt.Errorf("hash library %s: %w", lib.URI, err)
	}
	return content, hash, nil
}

// unmarshalLibrary parses stored content. Integers come back as int64 and
// other numbers as float64.
func unmarshalLibrary(content string) (decl.RawLibrary, error) {
	var lib decl.RawLibrary
	if err := decodeNumbers(content, &lib); err != nil {
		return decl.RawLibrary{}, fmt.Errorf("unmarshal library: %w", err)
	}
	for i := range lib.Declarations {
		normalizeDeclaration(&lib.Declarations[i])
	}
	return lib, nil
}

func decodeNumbers(content string, v any) error {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	return dec.Decode(v)
}

func normalizeDeclaration(d *decl.RawDeclaration) {
	normalizeFields(d.Fields)
	normalizeFields(d.Values)
	normalizeAnnotations(d.Annotations)
	normalizeParameters(d.Parameters)
	for i := range d.Methods {
		normalizeParameters(d.Methods[i].Parameters)
		normalizeAnnotations(d.Methods[i].Annotations)
	}
}

func normalizeFields(fields []decl.RawField) {
	for i := range fields {
		fields[i].Value = normalizeNumbers(fields[i].Value)
		normalizeAnnotations(fields[i].Annotations)
	}
}

func normalizeParameters(params []decl.RawParameter) {
	for i := range params {
		params[i].Default = normalizeNumbers(params[i].Default)
	}
}

func normalizeAnnotations(anns []decl.RawAnnotation) {
	for i := range anns {
		for k, v := range anns[i].Values {
			anns[i].Values[k] = normalizeNumbers(v)
		}
	}
}

// normalizeNumbers replaces json.Number values with int64 when integral,
// float64 otherwise.
func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case []any:
		for i := range val {
			val[i] = normalizeNumbers(val[i])
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = normalizeNumbers(val[k])
		}
		return val
	}
	return v
}

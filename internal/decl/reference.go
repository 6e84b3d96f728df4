package decl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedReference is returned for references that cannot be parsed.
var ErrMalformedReference = errors.New("malformed declaration reference")

// Reference builds the canonical reference "<libraryURI>#<name>".
func Reference(libraryURI, name string) string {
	return libraryURI + "#" + name
}

// QualifiedName builds "<libraryURI>.<name>". Names without a library
// (builtin types) are returned unchanged.
func QualifiedName(libraryURI, name string) string {
	if libraryURI == "" {
		return name
	}
	return libraryURI + "." + name
}

// ParseReference splits a canonical reference into library URI and name.
func ParseReference(ref string) (libraryURI, name string, err error) {
	i := strings.LastIndexByte(ref, '#')
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}
	libraryURI, name = ref[:i], ref[i+1:]
	if strings.ContainsAny(name, ". \t\n") {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}
	return libraryURI, name, nil
}

// SplitQualifiedName splits "<libraryURI>.<name>" at the last dot.
// Declared names never contain dots, so the split is unambiguous even when
// the library URI does.
func SplitQualifiedName(qualified string) (libraryURI, name string, err error) {
	i := strings.LastIndexByte(qualified, '.')
	if i <= 0 || i == len(qualified)-1 {
		return "", "", fmt.Errorf("%w: qualified name %q", ErrMalformedReference, qualified)
	}
	return qualified[:i], qualified[i+1:], nil
}

// ReferenceFromQualifiedName converts a qualified name to a canonical reference.
func ReferenceFromQualifiedName(qualified string) (string, error) {
	uri, name, err := SplitQualifiedName(qualified)
	if err != nil {
		return "", err
	}
	return Reference(uri, name), nil
}

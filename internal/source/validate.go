package source

import (
	"fmt"
	"strings"

	"github.com/roach88/mirror/internal/decl"
)

// builtinNames are type names that never need a local declaration.
var builtinNames = map[string]bool{
	"bool": true, "int": true, "double": true, "num": true, "string": true,
	"void": true, "dynamic": true, "Object": true, "Null": true, "Never": true,
	"List": true, "Map": true, "Set": true, "Iterable": true, "Future": true,
	"Stream": true, "Function": true, "Record": true, "Enum": true, "Type": true,
	"Symbol": true, "DateTime": true, "Duration": true,
}

// Validate checks a library for structural problems without resolving
// anything outside it: a missing uri, duplicate names, declarations that
// cannot be built, local type references to undeclared names, and cycles
// among local supertypes.
// Type parameters of a declaration and its methods count as declared.
func Validate(lib decl.RawLibrary) []*LoadError {
	var errs []*LoadError
	if lib.URI == "" {
		return []*LoadError{{Code: ErrCodeMissingURI, Message: "library has no uri"}}
	}

	declared := make(map[string]bool, len(lib.Declarations))
	for _, d := range lib.Declarations {
		if declared[d.Name] {
			errs = append(errs, &LoadError{Code: ErrCodeDuplicateName,
				Message: fmt.Sprintf("%s: duplicate declaration %q", lib.URI, d.Name)})
		}
		declared[d.Name] = true
	}

	for _, d := range lib.Declarations {
		if _, err := decl.Build(d, lib.URI, nil); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeInvalidDecl, Message: err.Error()})
			continue
		}
		scope := make(map[string]bool, len(d.TypeParameters))
		for _, tp := range d.TypeParameters {
			scope[tp.Name] = true
		}
		for _, m := range d.Methods {
			for _, tp := range m.TypeParameters {
				scope[tp.Name] = true
			}
		}
		for _, t := range localTypes(d) {
			if declared[t.Name] || scope[t.Name] || builtinNames[t.Name] {
				continue
			}
			errs = append(errs, &LoadError{Code: ErrCodeUnknownLocalRef,
				Message: fmt.Sprintf("%s: unknown type %q", decl.Reference(lib.URI, d.Name), t.Name)})
		}
	}
	for _, c := range SupertypeCycles(lib) {
		errs = append(errs, &LoadError{Code: ErrCodeSupertypeCycle,
			Message: fmt.Sprintf("%s: supertype cycle %s", lib.URI, strings.Join(c, " -> "))})
	}
	return errs
}

// localTypes collects type references without an explicit library.
func localTypes(d decl.RawDeclaration) []decl.RawType {
	var out []decl.RawType
	var walk func(t *decl.RawType)
	walk = func(t *decl.RawType) {
		if t == nil {
			return
		}
		if t.Library == "" && !t.Builtin {
			out = append(out, *t)
		}
		for i := range t.Arguments {
			walk(&t.Arguments[i])
		}
	}
	walkAll := func(ts []decl.RawType) {
		for i := range ts {
			walk(&ts[i])
		}
	}
	walkParams := func(ps []decl.RawParameter) {
		for _, p := range ps {
			walk(p.Type)
		}
	}
	walkAnns := func(as []decl.RawAnnotation) {
		for i := range as {
			walk(&as[i].Type)
		}
	}

	walk(d.Superclass)
	walkAll(d.Interfaces)
	walkAll(d.Mixins)
	walkAnns(d.Annotations)
	walk(d.ReturnType)
	walkParams(d.Parameters)
	for _, f := range append(append([]decl.RawField{}, d.Fields...), d.Values...) {
		walk(f.Type)
		walkAnns(f.Annotations)
	}
	for _, m := range d.Methods {
		walk(m.ReturnType)
		walkParams(m.Parameters)
		walkAnns(m.Annotations)
	}
	return out
}

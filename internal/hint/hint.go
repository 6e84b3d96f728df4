// Package hint holds precomputed invocation handlers.
//
// A RuntimeHint knows how to construct instances of one declared type,
// invoke its methods and access its fields without runtime introspection.
// Hints are generated at build time and registered wholesale in a Registry
// before the precomputed executor is used.
package hint

import (
	"reflect"

	"github.com/roach88/mirror/internal/args"
)

// Result is the outcome of a hint call. Executed distinguishes "ran and
// produced Value" from "not applicable to this hint".
type Result struct {
	Value    any
	Executed bool
}

// Executed wraps a produced value.
func Executed(v any) Result { return Result{Value: v, Executed: true} }

// NotExecuted is returned when a hint has no handler for the request.
var NotExecuted = Result{}

// RuntimeHint is a per-type invocation handler.
type RuntimeHint interface {
	// TypeName is the qualified name of the handled type.
	TypeName() string

	// NewInstance runs the named constructor ("" for the unnamed one).
	NewInstance(ctor string, a *args.ExecutableArgument) (Result, error)

	// InvokeMethod calls a method on instance.
	InvokeMethod(instance any, name string, a *args.ExecutableArgument) (Result, error)

	// GetField reads a field or getter.
	GetField(instance any, name string) (Result, error)

	// SetField writes a field or setter.
	SetField(instance any, name string, value any) (Result, error)
}

// Typed lets a value report its declared type name explicitly.
type Typed interface {
	DeclaredType() string
}

// TypeNameOf returns the qualified declared type name of v: the result of
// DeclaredType when v implements Typed, otherwise "<pkgpath>.<Name>" of its
// dynamic type with pointers removed. Predeclared and unnamed types use
// their Go spelling. Nil yields "".
func TypeNameOf(v any) string {
	if v == nil {
		return ""
	}
	if t, ok := v.(Typed); ok {
		return t.DeclaredType()
	}
	return TypeNameFor(reflect.TypeOf(v))
}

// TypeNameFor returns the qualified declared type name of t.
func TypeNameFor(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

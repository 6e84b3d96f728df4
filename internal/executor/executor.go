// Package executor provides the dual-backend invocation contract.
//
// An Executor constructs instances, invokes methods and reads or writes
// fields of declared types. Backends:
//   - Precomputed: delegates to RuntimeHints from a hint.Registry
//   - Live: uses package reflect over a Catalog of types and constructors
//   - Resolving: composes two executors with fallback
//   - Recording: decorates an executor and logs every call
//
// Failures are reported as *InvocationError with a stable ErrorCode.
// Errors returned by the invoked code itself and argument index-range
// failures propagate unchanged, and panics raised by invoked code are not
// recovered. Calls are synchronous and take no context: a caller that
// needs a deadline must impose it externally.
package executor

import (
	"fmt"

	"github.com/roach88/mirror/internal/args"
	"github.com/roach88/mirror/internal/hint"
)

// Backend names an executor variant.
type Backend string

const (
	BackendPrecomputed Backend = "precomputed"
	BackendLive        Backend = "live"
	BackendResolving   Backend = "resolving"
)

// ParseBackend parses "precomputed" or "live".
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendPrecomputed, BackendLive:
		return Backend(s), nil
	default:
		return "", fmt.Errorf("unknown executor backend %q", s)
	}
}

// Executor is the common invocation contract. None of the operations
// mutate their ExecutableArgument; side effects are confined to the target.
type Executor interface {
	// Backend names the variant.
	Backend() Backend

	// NewInstance constructs typeName through the named constructor
	// ("" for the unnamed one).
	NewInstance(typeName, ctor string, a *args.ExecutableArgument) (any, error)

	// InvokeMethod calls a method on instance.
	InvokeMethod(instance any, method string, a *args.ExecutableArgument) (any, error)

	// GetValue reads a field or getter of instance.
	GetValue(instance any, field string) (any, error)

	// SetValue writes a field or setter of instance.
	SetValue(instance any, field string, value any) error
}

// New constructs an instance and checks it has type T.
// A value of another type yields a GenericResolution error.
func New[T any](e Executor, typeName, ctor string, a *args.ExecutableArgument) (T, error) {
	v, err := e.NewInstance(typeName, ctor, a)
	if err != nil {
		var zero T
		return zero, err
	}
	return expect[T](e.Backend(), typeName, ctor, v)
}

// Invoke calls a method and checks the result has type T. A nil result is
// accepted as the zero value of T.
func Invoke[T any](e Executor, instance any, method string, a *args.ExecutableArgument) (T, error) {
	v, err := e.InvokeMethod(instance, method, a)
	if err != nil {
		var zero T
		return zero, err
	}
	return expect[T](e.Backend(), hint.TypeNameOf(instance), method, v)
}

// Get reads a field and checks the value has type T. A nil value is
// accepted as the zero value of T.
func Get[T any](e Executor, instance any, field string) (T, error) {
	v, err := e.GetValue(instance, field)
	if err != nil {
		var zero T
		return zero, err
	}
	return expect[T](e.Backend(), hint.TypeNameOf(instance), field, v)
}

func expect[T any](b Backend, typeName, member string, v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, NewGenericResolution(b, typeName, member,
			fmt.Errorf("expected %T, got %T", zero, v))
	}
	return t, nil
}

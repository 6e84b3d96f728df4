package executor

import (
	"reflect"

	"github.com/roach88/mirror/internal/args"
	"github.com/roach88/mirror/internal/hint"
)

// Precomputed executes through RuntimeHints and never introspects.
// Only an executed hint result counts; anything else is reported with the
// not-found code of the operation.
type Precomputed struct {
	registry *hint.Registry
}

var _ Executor = (*Precomputed)(nil)

// NewPrecomputed creates a precomputed executor over registry.
func NewPrecomputed(registry *hint.Registry) *Precomputed {
	return &Precomputed{registry: registry}
}

// Backend implements Executor.
func (p *Precomputed) Backend() Backend { return BackendPrecomputed }

// NewInstance implements Executor.
func (p *Precomputed) NewInstance(typeName, ctor string, a *args.ExecutableArgument) (any, error) {
	h, ok := p.lookup(typeName)
	if !ok {
		return nil, NewConstructorNotFound(BackendPrecomputed, typeName, ctor).withMessage("no hint registered")
	}
	res, err := h.NewInstance(ctor, a)
	if err != nil {
		return nil, err
	}
	if !res.Executed {
		return nil, NewConstructorNotFound(BackendPrecomputed, typeName, ctor)
	}
	if isNilValue(res.Value) {
		return nil, NewUnsupported(BackendPrecomputed, typeName, ctor, "hint executed but produced no instance")
	}
	return res.Value, nil
}

// InvokeMethod implements Executor.
func (p *Precomputed) InvokeMethod(instance any, method string, a *args.ExecutableArgument) (any, error) {
	typeName := hint.TypeNameOf(instance)
	h, ok := p.lookup(typeName)
	if !ok {
		return nil, NewMethodNotFound(BackendPrecomputed, typeName, method).withMessage("no hint registered")
	}
	res, err := h.InvokeMethod(instance, method, a)
	if err != nil {
		return nil, err
	}
	if !res.Executed {
		return nil, NewMethodNotFound(BackendPrecomputed, typeName, method)
	}
	return res.Value, nil
}

// GetValue implements Executor.
func (p *Precomputed) GetValue(instance any, field string) (any, error) {
	typeName := hint.TypeNameOf(instance)
	h, ok := p.lookup(typeName)
	if !ok {
		return nil, NewFieldAccess(BackendPrecomputed, typeName, field).withMessage("no hint registered")
	}
	res, err := h.GetField(instance, field)
	if err != nil {
		return nil, err
	}
	if !res.Executed {
		return nil, NewFieldAccess(BackendPrecomputed, typeName, field)
	}
	return res.Value, nil
}

// SetValue implements Executor.
func (p *Precomputed) SetValue(instance any, field string, value any) error {
	typeName := hint.TypeNameOf(instance)
	h, ok := p.lookup(typeName)
	if !ok {
		return NewFieldMutation(BackendPrecomputed, typeName, field).withMessage("no hint registered")
	}
	res, err := h.SetField(instance, field, value)
	if err != nil {
		return err
	}
	if !res.Executed {
		return NewFieldMutation(BackendPrecomputed, typeName, field)
	}
	return nil
}

func (p *Precomputed) lookup(typeName string) (hint.RuntimeHint, bool) {
	if p.registry == nil || typeName == "" {
		return nil, false
	}
	return p.registry.Lookup(typeName)
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

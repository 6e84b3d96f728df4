package hint

import "github.com/roach88/mirror/internal/args"

// Funcs is a table-driven RuntimeHint, the shape emitted by hint generators.
// Missing table entries report NotExecuted.
type Funcs struct {
	Type         string
	Constructors map[string]func(a *args.ExecutableArgument) (any, error)
	Methods      map[string]func(instance any, a *args.ExecutableArgument) (any, error)
	Getters      map[string]func(instance any) (any, error)
	Setters      map[string]func(instance, value any) error
}

var _ RuntimeHint = (*Funcs)(nil)

// TypeName implements RuntimeHint.
func (f *Funcs) TypeName() string { return f.Type }

// NewInstance implements RuntimeHint.
func (f *Funcs) NewInstance(ctor string, a *args.ExecutableArgument) (Result, error) {
	fn, ok := f.Constructors[ctor]
	if !ok {
		return NotExecuted, nil
	}
	v, err := fn(a)
	if err != nil {
		return NotExecuted, err
	}
	return Executed(v), nil
}

// InvokeMethod implements RuntimeHint.
func (f *Funcs) InvokeMethod(instance any, name string, a *args.ExecutableArgument) (Result, error) {
	fn, ok := f.Methods[name]
	if !ok {
		return NotExecuted, nil
	}
	v, err := fn(instance, a)
	if err != nil {
		return NotExecuted, err
	}
	return Executed(v), nil
}

// GetField implements RuntimeHint.
func (f *Funcs) GetField(instance any, name string) (Result, error) {
	fn, ok := f.Getters[name]
	if !ok {
		return NotExecuted, nil
	}
	v, err := fn(instance)
	if err != nil {
		return NotExecuted, err
	}
	return Executed(v), nil
}

// SetField implements RuntimeHint.
func (f *Funcs) SetField(instance any, name string, value any) (Result, error) {
	fn, ok := f.Setters[name]
	if !ok {
		return NotExecuted, nil
	}
	if err := fn(instance, value); err != nil {
		return NotExecuted, err
	}
	return Executed(nil), nil
}

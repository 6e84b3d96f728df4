package testutil

import (
	"fmt"

	"github.com/roach88/mirror/internal/args"
	"github.com/roach88/mirror/internal/hint"
)

// The hints below have the shape a hint generator emits for the fixtures.

func intArg(a *args.ExecutableArgument, key any, def int) (int, error) {
	var v any
	if name, named := key.(string); named {
		bound, ok := a.Lookup(name)
		if !ok {
			return def, nil
		}
		v = bound
	} else {
		at, err := a.At(key.(int))
		if err != nil {
			return 0, err
		}
		v = at
	}
	n, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("argument %v: want int, got %T", key, v)
	}
	return n, nil
}

func stringArg(a *args.ExecutableArgument, idx int) (string, error) {
	v, err := a.At(idx)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %d: want string, got %T", idx, v)
	}
	return s, nil
}

// CounterHint returns the generated hint for Counter.
func CounterHint() *hint.Funcs {
	return &hint.Funcs{
		Type: CounterType,
		Constructors: map[string]func(*args.ExecutableArgument) (any, error){
			"": func(a *args.ExecutableArgument) (any, error) {
				start, err := intArg(a, 0, 0)
				if err != nil {
					return nil, err
				}
				return NewCounter(start), nil
			},
		},
		Methods: map[string]func(any, *args.ExecutableArgument) (any, error){
			"increment": func(i any, _ *args.ExecutableArgument) (any, error) {
				return i.(*Counter).Increment(), nil
			},
			"add": func(i any, a *args.ExecutableArgument) (any, error) {
				n, err := intArg(a, 0, 0)
				if err != nil {
					return nil, err
				}
				times, err := intArg(a, "times", 1)
				if err != nil {
					return nil, err
				}
				return i.(*Counter).Add(n, times), nil
			},
			"reset": func(i any, _ *args.ExecutableArgument) (any, error) {
				i.(*Counter).Reset()
				return nil, nil
			},
			"fail": func(i any, _ *args.ExecutableArgument) (any, error) {
				return nil, i.(*Counter).Fail()
			},
		},
		Getters: map[string]func(any) (any, error){
			"count": func(i any) (any, error) { return i.(*Counter).Count, nil },
			"step":  func(i any) (any, error) { return i.(*Counter).Step, nil },
		},
		Setters: map[string]func(any, any) error{
			"count": func(i, v any) error {
				n, ok := v.(int)
				if !ok {
					return fmt.Errorf("count: want int, got %T", v)
				}
				i.(*Counter).Count = n
				return nil
			},
			"step": func(i, v any) error {
				n, ok := v.(int)
				if !ok {
					return fmt.Errorf("step: want int, got %T", v)
				}
				i.(*Counter).Step = n
				return nil
			},
		},
	}
}

// GreeterHint returns the generated hint for Greeter.
func GreeterHint() *hint.Funcs {
	return &hint.Funcs{
		Type: GreeterType,
		Constructors: map[string]func(*args.ExecutableArgument) (any, error){
			"": func(a *args.ExecutableArgument) (any, error) {
				greeting, err := stringArg(a, 0)
				if err != nil {
					return nil, err
				}
				return NewGreeter(greeting), nil
			},
			"formal": func(*args.ExecutableArgument) (any, error) {
				return NewFormalGreeter(), nil
			},
		},
		Methods: map[string]func(any, *args.ExecutableArgument) (any, error){
			"greet": func(i any, a *args.ExecutableArgument) (any, error) {
				name, err := stringArg(a, 0)
				if err != nil {
					return nil, err
				}
				return i.(*Greeter).Greet(name), nil
			},
		},
		Getters: map[string]func(any) (any, error){
			"greeting": func(i any) (any, error) { return i.(*Greeter).Greeting, nil },
		},
	}
}

// Registry returns a fresh registry holding the fixture hints.
func Registry() *hint.Registry {
	r := hint.NewRegistry()
	// Both hints have distinct, non-empty type names.
	_ = r.RegisterAll(map[string]hint.RuntimeHint{
		CounterType: CounterHint(),
		GreeterType: GreeterHint(),
	})
	return r
}

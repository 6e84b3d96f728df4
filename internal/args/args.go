package args

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Symbol is the symbolic form of a named-argument key.
// It is a distinct type so the symbolic view cannot be confused with the
// string-keyed view at compile time.
type Symbol string

// SymbolFor returns the symbol for a named-argument key.
func SymbolFor(name string) Symbol {
	return Symbol(name)
}

// Name returns the argument name the symbol stands for.
func (s Symbol) Name() string {
	return string(s)
}

// String renders the symbol as #name.
func (s Symbol) String() string {
	return "#" + string(s)
}

// LookupMode selects how Argument interprets its key.
type LookupMode int

const (
	// LookupAuto dispatches by the dynamic type of the key:
	// names go to named lookup, integers to positional lookup.
	LookupAuto LookupMode = iota
	// LookupNamed treats the key as an argument name.
	LookupNamed
	// LookupPositional treats the key as a zero-based index.
	LookupPositional
)

// String returns a human-readable representation of the LookupMode.
func (m LookupMode) String() string {
	switch m {
	case LookupAuto:
		return "auto"
	case LookupNamed:
		return "named"
	case LookupPositional:
		return "positional"
	default:
		return fmt.Sprintf("LookupMode(%d)", int(m))
	}
}

// ErrIndexOutOfRange is matched by every *RangeError via errors.Is.
var ErrIndexOutOfRange = errors.New("positional index out of range")

// RangeError reports a positional lookup outside [0, Len).
// It signals a caller programming error and is never normalized by executors.
type RangeError struct {
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("positional argument index %d out of range [0, %d)", e.Index, e.Len)
}

// Is reports whether target is ErrIndexOutOfRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// KeyError reports a key whose type does not fit the requested lookup mode.
type KeyError struct {
	Key  any
	Mode LookupMode
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("invalid %s argument key %v (%T)", e.Mode, e.Key, e.Key)
}

// ExecutableArgument is an immutable snapshot of an invocation's arguments.
type ExecutableArgument struct {
	positional []any
	named      map[string]any
	symbolized map[Symbol]any
}

// Unmodified creates an argument set from the given maps without altering
// order or values. Both inputs are copied; nil inputs become empty.
func Unmodified(named map[string]any, positional []any) *ExecutableArgument {
	a := &ExecutableArgument{
		positional: make([]any, len(positional)),
		named:      make(map[string]any, len(named)),
		symbolized: make(map[Symbol]any, len(named)),
	}
	copy(a.positional, positional)
	for k, v := range named {
		a.named[k] = v
		a.symbolized[SymbolFor(k)] = v
	}
	return a
}

// None returns an empty argument set.
func None() *ExecutableArgument {
	return Unmodified(nil, nil)
}

// Positional returns an argument set with only positional values.
func Positional(values []any) *ExecutableArgument {
	return Unmodified(nil, values)
}

// Named returns an argument set with only named values.
func Named(values map[string]any) *ExecutableArgument {
	return Unmodified(values, nil)
}

// Optional returns an argument set where either part may be nil.
func Optional(named map[string]any, positional []any) *ExecutableArgument {
	return Unmodified(named, positional)
}

// PositionalArguments returns the positional values in call order.
func (a *ExecutableArgument) PositionalArguments() []any {
	if a == nil {
		return []any{}
	}
	out := make([]any, len(a.positional))
	copy(out, a.positional)
	return out
}

// NamedArguments returns the named values keyed by argument name.
func (a *ExecutableArgument) NamedArguments() map[string]any {
	out := make(map[string]any)
	if a == nil {
		return out
	}
	for k, v := range a.named {
		out[k] = v
	}
	return out
}

// SymbolizedNamedArguments returns the named values keyed by Symbol.
// The key set and values always match NamedArguments.
func (a *ExecutableArgument) SymbolizedNamedArguments() map[Symbol]any {
	out := make(map[Symbol]any)
	if a == nil {
		return out
	}
	for k, v := range a.symbolized {
		out[k] = v
	}
	return out
}

// Argument looks up a single value.
//
// Named lookups return nil both for an absent name and for a name bound to
// nil; use Lookup when presence matters. Positional lookups outside the list
// return a *RangeError. In LookupAuto mode, keys that are neither names nor
// integers yield nil without error.
func (a *ExecutableArgument) Argument(key any, mode LookupMode) (any, error) {
	switch mode {
	case LookupNamed:
		name, ok := nameOf(key)
		if !ok {
			return nil, &KeyError{Key: key, Mode: mode}
		}
		v, _ := a.Lookup(name)
		return v, nil

	case LookupPositional:
		idx, ok := indexOf(key)
		if !ok {
			return nil, &KeyError{Key: key, Mode: mode}
		}
		return a.At(idx)

	case LookupAuto:
		if name, ok := nameOf(key); ok {
			v, _ := a.Lookup(name)
			return v, nil
		}
		if idx, ok := indexOf(key); ok {
			return a.At(idx)
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown lookup mode %s", mode)
	}
}

// Get is Argument in LookupAuto mode.
func (a *ExecutableArgument) Get(key any) (any, error) {
	return a.Argument(key, LookupAuto)
}

// Lookup returns the named value and whether the name was bound at all.
func (a *ExecutableArgument) Lookup(name string) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.named[name]
	return v, ok
}

// At returns the positional value at idx.
func (a *ExecutableArgument) At(idx int) (any, error) {
	n := a.Len()
	if idx < 0 || idx >= n {
		return nil, &RangeError{Index: idx, Len: n}
	}
	return a.positional[idx], nil
}

// Len returns the number of positional values.
func (a *ExecutableArgument) Len() int {
	if a == nil {
		return 0
	}
	return len(a.positional)
}

// NamedLen returns the number of named values.
func (a *ExecutableArgument) NamedLen() int {
	if a == nil {
		return 0
	}
	return len(a.named)
}

// IsEmpty reports whether there are no arguments of either kind.
func (a *ExecutableArgument) IsEmpty() bool {
	return a.Len() == 0 && a.NamedLen() == 0
}

// Names returns the named-argument keys in sorted order.
func (a *ExecutableArgument) Names() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.named))
	for k := range a.named {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String renders the arguments deterministically for logs.
func (a *ExecutableArgument) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < a.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", a.positional[i])
	}
	for i, name := range a.Names() {
		if i > 0 || a.Len() > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", name, a.named[name])
	}
	b.WriteByte(')')
	return b.String()
}

func nameOf(key any) (string, bool) {
	switch k := key.(type) {
	case string:
		return k, true
	case Symbol:
		return string(k), true
	default:
		return "", false
	}
}

func indexOf(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, true
	case int8:
		return int(k), true
	case int16:
		return int(k), true
	case int32:
		return int(k), true
	case int64:
		return int(k), true
	case uint:
		return int(k), true
	case uint8:
		return int(k), true
	case uint16:
		return int(k), true
	case uint32:
		return int(k), true
	case uint64:
		return int(k), true
	default:
		return 0, false
	}
}

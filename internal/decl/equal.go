package decl

import (
	"fmt"
	"reflect"
	"sort"
)

// propser is implemented by every value that participates in structural equality.
type propser interface {
	EqualityProps() []any
}

// Equal reports whether two declarations are structurally equal.
// Two nil declarations are equal; nil never equals a non-nil declaration.
func Equal(a, b Declaration) bool {
	an, bn := isNil(a), isNil(b)
	if an || bn {
		return an && bn
	}
	return reflect.DeepEqual(flatten(a), flatten(b))
}

// EqualLinks reports whether two links name the same type expression.
func EqualLinks(a, b *LinkDeclaration) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(flatten(a), flatten(b))
}

// flatten converts a value into a tree of plain values (nil, bool, int64,
// uint64, float64, string, []any) that can be compared with reflect.DeepEqual
// and serialized canonically. Nested declarations become a list headed by
// their dynamic type name followed by their flattened properties.
// Nil and empty slices flatten identically.
func flatten(v any) any {
	if v == nil {
		return nil
	}
	if k := reflect.TypeOf(v).Kind(); k == reflect.Pointer || k == reflect.Func || k == reflect.Chan {
		if reflect.ValueOf(v).IsNil() {
			return nil
		}
	}
	if p, ok := v.(propser); ok {
		props := p.EqualityProps()
		out := make([]any, 0, len(props)+1)
		out = append(out, fmt.Sprintf("%T", v))
		for _, prop := range props {
			out = append(out, flatten(prop))
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = flatten(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		keys := rv.MapKeys()
		pairs := make([][2]any, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, [2]any{fmt.Sprint(k.Interface()), flatten(rv.MapIndex(k).Interface())})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i][0].(string) < pairs[j][0].(string) })
		out := make([]any, 0, len(pairs)*2) // [k0, v0, k1, v1, ...]
		for _, p := range pairs {
			out = append(out, p[0], p[1])
		}
		return out
	case reflect.Pointer:
		return flatten(rv.Elem().Interface())
	default:
		return fmt.Sprintf("%#v", v)
	}
}

// isNil reports whether v is nil or an interface holding a typed nil.
func isNil(v any) bool {
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

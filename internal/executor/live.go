package executor

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/mirror/internal/args"
	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/hint"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// errLiveDisabled is the cause reported when introspection is switched off.
var errLiveDisabled = errors.New("live introspection unavailable in this environment")

// Live executes through package reflect.
//
// When a MemberLookup is configured, each call is checked against the
// declared member kind first: a member declared with a conflicting kind
// (a getter requested as a method, a method requested as a constructor)
// fails with the not-found code of the operation. When metadata is
// missing the call proceeds and a warning is logged with
// fallback=invoke-only.
type Live struct {
	catalog *Catalog
	members MemberLookup
	enabled bool
	logger  *slog.Logger
}

var _ Executor = (*Live)(nil)

// LiveOption configures a Live executor.
type LiveOption func(*Live)

// WithMembers sets the declaration metadata used for validation.
func WithMembers(m MemberLookup) LiveOption {
	return func(l *Live) { l.members = m }
}

// WithLiveLogger sets the logger for inconclusive validations.
func WithLiveLogger(logger *slog.Logger) LiveOption {
	return func(l *Live) { l.logger = logger }
}

// WithIntrospection enables or disables reflection. A disabled executor
// fails every call with GenericResolution.
func WithIntrospection(enabled bool) LiveOption {
	return func(l *Live) { l.enabled = enabled }
}

// NewLive creates a live executor over catalog.
func NewLive(catalog *Catalog, opts ...LiveOption) *Live {
	if catalog == nil {
		catalog = NewCatalog()
	}
	l := &Live{catalog: catalog, enabled: true, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Backend implements Executor.
func (l *Live) Backend() Backend { return BackendLive }

// NewInstance implements Executor.
func (l *Live) NewInstance(typeName, ctor string, a *args.ExecutableArgument) (any, error) {
	if !l.enabled {
		return nil, NewGenericResolution(BackendLive, typeName, ctor, errLiveDisabled)
	}
	t, ok := l.catalog.Type(typeName)
	if !ok {
		return nil, NewGenericResolution(BackendLive, typeName, ctor, fmt.Errorf("type %s is not in the catalog", typeName))
	}

	v, m := l.validate(typeName, ctor, opConstruct)
	if v == invalid {
		return nil, NewConstructorNotFound(BackendLive, typeName, ctor).withMessage("member is not a constructor")
	}

	fn, ok := l.catalog.Constructor(typeName, ctor)
	if !ok {
		if ctor == "" {
			return l.literal(t, typeName, a)
		}
		return nil, NewConstructorNotFound(BackendLive, typeName, ctor)
	}
	in, err := bindArgs(fn.Type(), m, a)
	if err != nil {
		return nil, NewGenericResolution(BackendLive, typeName, ctor, err)
	}
	out, err := results(fn.Call(in))
	if err != nil {
		return nil, err
	}
	if isNilValue(out) {
		return nil, NewUnsupported(BackendLive, typeName, ctor, "constructor returned no instance")
	}
	return out, nil
}

// InvokeMethod implements Executor.
func (l *Live) InvokeMethod(instance any, method string, a *args.ExecutableArgument) (any, error) {
	typeName := hint.TypeNameOf(instance)
	if !l.enabled {
		return nil, NewGenericResolution(BackendLive, typeName, method, errLiveDisabled)
	}
	if instance == nil {
		return nil, NewMethodNotFound(BackendLive, typeName, method).withMessage("nil instance")
	}

	v, m := l.validate(typeName, method, opInvoke)
	if v == invalid {
		return nil, NewMethodNotFound(BackendLive, typeName, method).withMessage("member is not a method")
	}

	fn, ok := methodByName(reflect.ValueOf(instance), method)
	if !ok {
		return nil, NewMethodNotFound(BackendLive, typeName, method)
	}
	in, err := bindArgs(fn.Type(), m, a)
	if err != nil {
		return nil, NewGenericResolution(BackendLive, typeName, method, err)
	}
	return results(fn.Call(in))
}

// GetValue implements Executor.
func (l *Live) GetValue(instance any, field string) (any, error) {
	typeName := hint.TypeNameOf(instance)
	if !l.enabled {
		return nil, NewGenericResolution(BackendLive, typeName, field, errLiveDisabled)
	}
	if instance == nil {
		return nil, NewFieldAccess(BackendLive, typeName, field).withMessage("nil instance")
	}
	if v, _ := l.validate(typeName, field, opGet); v == invalid {
		return nil, NewFieldAccess(BackendLive, typeName, field).withMessage("member is not readable")
	}

	rv := reflect.ValueOf(instance)
	if f, ok := structField(rv, field); ok {
		return f.Interface(), nil
	}
	for _, name := range []string{field, "Get" + exported(field)} {
		fn, ok := methodByName(rv, name)
		if ok && fn.Type().NumIn() == 0 && fn.Type().NumOut() > 0 {
			return results(fn.Call(nil))
		}
	}
	return nil, NewFieldAccess(BackendLive, typeName, field)
}

// SetValue implements Executor.
func (l *Live) SetValue(instance any, field string, value any) error {
	typeName := hint.TypeNameOf(instance)
	if !l.enabled {
		return NewGenericResolution(BackendLive, typeName, field, errLiveDisabled)
	}
	if instance == nil {
		return NewFieldMutation(BackendLive, typeName, field).withMessage("nil instance")
	}
	if v, _ := l.validate(typeName, field, opSet); v == invalid {
		return NewFieldMutation(BackendLive, typeName, field).withMessage("member is not writable")
	}

	rv := reflect.ValueOf(instance)
	if f, ok := structField(rv, field); ok {
		if !f.CanSet() {
			return NewFieldMutation(BackendLive, typeName, field).withMessage("field is not addressable")
		}
		cv, err := convert(value, f.Type())
		if err != nil {
			return NewGenericResolution(BackendLive, typeName, field, err)
		}
		f.Set(cv)
		return nil
	}
	fn, ok := methodByName(rv, "Set"+exported(field))
	if !ok || fn.Type().NumIn() != 1 {
		return NewFieldMutation(BackendLive, typeName, field)
	}
	cv, err := convert(value, fn.Type().In(0))
	if err != nil {
		return NewGenericResolution(BackendLive, typeName, field, err)
	}
	_, err = results(fn.Call([]reflect.Value{cv}))
	return err
}

// literal builds a zero instance of t and assigns named arguments to its
// exported fields.
func (l *Live) literal(t reflect.Type, typeName string, a *args.ExecutableArgument) (any, error) {
	if a.Len() > 0 {
		return nil, NewGenericResolution(BackendLive, typeName, "",
			errors.New("positional arguments need a registered constructor"))
	}
	p := reflect.New(t)
	named := a.NamedArguments()
	if len(named) > 0 && t.Kind() != reflect.Struct {
		return nil, NewGenericResolution(BackendLive, typeName, "",
			fmt.Errorf("named arguments on non-struct type %s", t))
	}
	for _, name := range sortedNames(named) {
		f, ok := structField(p, name)
		if !ok || !f.CanSet() {
			return nil, NewGenericResolution(BackendLive, typeName, "", fmt.Errorf("no settable field %q", name))
		}
		cv, err := convert(named[name], f.Type())
		if err != nil {
			return nil, NewGenericResolution(BackendLive, typeName, "", fmt.Errorf("field %q: %w", name, err))
		}
		f.Set(cv)
	}
	return p.Interface(), nil
}

type operation int

const (
	opConstruct operation = iota
	opInvoke
	opGet
	opSet
)

func (o operation) String() string {
	switch o {
	case opConstruct:
		return "construct"
	case opInvoke:
		return "invoke"
	case opGet:
		return "get"
	case opSet:
		return "set"
	}
	return "unknown"
}

type verdict int

const (
	inconclusive verdict = iota
	valid
	invalid
)

// validate checks member against declaration metadata. The returned
// declaration, when present, drives named-argument binding.
func (l *Live) validate(typeName, member string, op operation) (verdict, *decl.MethodDeclaration) {
	var cls *decl.ClassDeclaration
	if l.members != nil {
		cls, _ = l.members.Class(typeName)
	}
	v, m := inconclusive, (*decl.MethodDeclaration)(nil)
	if cls != nil {
		v, m = checkMember(cls, member, op)
	}
	if v == inconclusive {
		l.logger.Warn("member metadata unavailable",
			"type", typeName,
			"member", member,
			"op", op.String(),
			"fallback", "invoke-only")
	}
	return v, m
}

func checkMember(cls *decl.ClassDeclaration, name string, op operation) (verdict, *decl.MethodDeclaration) {
	field := cls.Field(name)
	method := memberOfKind(cls, name, decl.MemberMethod)
	getter := memberOfKind(cls, name, decl.MemberGetter)
	setter := memberOfKind(cls, name, decl.MemberSetter)
	ctor := cls.Constructor(name)

	switch op {
	case opConstruct:
		if ctor != nil {
			return valid, ctor
		}
		if field != nil || method != nil || getter != nil || setter != nil {
			return invalid, nil
		}
	case opInvoke:
		if method != nil {
			return valid, method
		}
		if field != nil || getter != nil || setter != nil || ctor != nil {
			return invalid, nil
		}
	case opGet:
		if field != nil || getter != nil {
			return valid, getter
		}
		if method != nil || setter != nil {
			return invalid, nil
		}
	case opSet:
		if setter != nil {
			return valid, setter
		}
		if field != nil && !field.IsFinal() {
			return valid, nil
		}
		if field != nil || method != nil || getter != nil {
			return invalid, nil
		}
	}
	return inconclusive, nil
}

func memberOfKind(cls *decl.ClassDeclaration, name string, kind decl.MemberKind) *decl.MethodDeclaration {
	for _, m := range cls.Methods() {
		if m.Name() == name && m.Kind() == kind {
			return m
		}
	}
	return nil
}

// methodByName finds a method by its exact name, then with the first
// letter upper-cased.
func methodByName(v reflect.Value, name string) (reflect.Value, bool) {
	if name == "" {
		return reflect.Value{}, false
	}
	if m := v.MethodByName(name); m.IsValid() {
		return m, true
	}
	if up := exported(name); up != name {
		if m := v.MethodByName(up); m.IsValid() {
			return m, true
		}
	}
	return reflect.Value{}, false
}

// structField finds an exported struct field through any pointers.
func structField(v reflect.Value, name string) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct || name == "" {
		return reflect.Value{}, false
	}
	for _, candidate := range []string{name, exported(name)} {
		sf, ok := v.Type().FieldByName(candidate)
		if ok && sf.IsExported() {
			return v.FieldByIndex(sf.Index), true
		}
	}
	return reflect.Value{}, false
}

func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// bindArgs orders the call arguments for ft: positional values first,
// then declared named parameters in declaration order.
func bindArgs(ft reflect.Type, m *decl.MethodDeclaration, a *args.ExecutableArgument) ([]reflect.Value, error) {
	values := a.PositionalArguments()
	if a.NamedLen() > 0 || (m != nil && len(m.NamedParameters()) > 0) {
		if m == nil {
			return nil, errors.New("named arguments require declaration metadata")
		}
		if want := len(m.PositionalParameters()); len(values) != want {
			return nil, fmt.Errorf("got %d positional arguments, declaration has %d", len(values), want)
		}
		named := a.NamedArguments()
		for _, p := range m.NamedParameters() {
			if v, ok := named[p.Name()]; ok {
				values = append(values, v)
				delete(named, p.Name())
				continue
			}
			if def, ok := p.Default(); ok {
				values = append(values, def)
				continue
			}
			if p.IsRequired() {
				return nil, fmt.Errorf("missing required named argument %q", p.Name())
			}
			values = append(values, nil)
		}
		if len(named) > 0 {
			return nil, fmt.Errorf("unknown named arguments: %s", strings.Join(sortedNames(named), ", "))
		}
	}

	n := ft.NumIn()
	switch {
	case ft.IsVariadic() && len(values) < n-1:
		return nil, fmt.Errorf("got %d arguments, want at least %d", len(values), n-1)
	case !ft.IsVariadic() && len(values) != n:
		return nil, fmt.Errorf("got %d arguments, want %d", len(values), n)
	}

	in := make([]reflect.Value, len(values))
	for i, v := range values {
		var pt reflect.Type
		if ft.IsVariadic() && i >= n-1 {
			pt = ft.In(n - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		cv, err := convert(v, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = cv
	}
	return in, nil
}

// convert adapts v to t. Numeric values convert only when no information
// is lost; []any and map[string]any convert element-wise.
func convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	switch {
	case isNumeric(rv.Kind()) && isNumeric(t.Kind()):
		if isUnsigned(t.Kind()) && isNegative(rv) {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %s", v, t)
		}
		c := rv.Convert(t)
		if c.Convert(rv.Type()).Interface() != rv.Interface() {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %s", v, t)
		}
		return c, nil
	case rv.Kind() == reflect.String && t.Kind() == reflect.String:
		return rv.Convert(t), nil
	case rv.Kind() == reflect.Slice && t.Kind() == reflect.Slice:
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			e, err := convert(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(e)
		}
		return out, nil
	case rv.Kind() == reflect.Map && t.Kind() == reflect.Map:
		out := reflect.MakeMapWithSize(t, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := convert(iter.Key().Interface(), t.Key())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %v: %w", iter.Key(), err)
			}
			e, err := convert(iter.Value().Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %v: %w", iter.Key(), err)
			}
			out.SetMapIndex(k, e)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isNegative(v reflect.Value) bool {
	switch {
	case v.CanInt():
		return v.Int() < 0
	case v.CanFloat():
		return v.Float() < 0
	}
	return false
}

// results maps call results to a single value. A trailing non-nil error
// is returned unchanged; several values are returned as []any.
func results(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}
	return vals, nil
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

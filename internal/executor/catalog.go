package executor

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/hint"
)

// Catalog makes types and constructor functions visible to the live
// backend. Go cannot look up either by name at run time, so programs
// register what they want reachable.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
	ctors map[string]map[string]reflect.Value
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		types: make(map[string]reflect.Type),
		ctors: make(map[string]map[string]reflect.Value),
	}
}

// AddType registers the type of sample under hint.TypeNameOf(sample) and
// returns that name. Pointer samples register their element type.
func (c *Catalog) AddType(sample any) string {
	name := hint.TypeNameOf(sample)
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[name] = t
	return name
}

// AddConstructor registers fn as constructor ctor ("" for the unnamed one)
// of typeName. fn must be a function returning the instance, optionally
// followed by an error.
func (c *Catalog) AddConstructor(typeName, ctor string, fn any) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("constructor %s.%s: not a function (%T)", typeName, ctor, fn)
	}
	ft := v.Type()
	switch {
	case ft.NumOut() == 1 && ft.Out(0) != errorType:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return fmt.Errorf("constructor %s.%s: must return (T) or (T, error), got %s", typeName, ctor, ft)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctors[typeName] == nil {
		c.ctors[typeName] = make(map[string]reflect.Value)
	}
	c.ctors[typeName][ctor] = v
	return nil
}

// Type returns the registered type.
func (c *Catalog) Type(name string) (reflect.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.types[name]
	return t, ok
}

// Constructor returns the registered constructor function.
func (c *Catalog) Constructor(typeName, ctor string) (reflect.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.ctors[typeName][ctor]
	return fn, ok
}

// Types returns the registered type names in sorted order.
func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.types))
	for name := range c.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MemberLookup supplies declaration metadata used to validate live calls.
type MemberLookup interface {
	// Class returns the declaration of a type, or false when unknown.
	Class(typeName string) (*decl.ClassDeclaration, bool)
}

// ResolverLookup adapts a declaration resolver to MemberLookup.
type ResolverLookup struct {
	Resolver decl.Resolver
}

// Class implements MemberLookup.
func (l ResolverLookup) Class(typeName string) (*decl.ClassDeclaration, bool) {
	if l.Resolver == nil {
		return nil, false
	}
	ref, err := decl.ReferenceFromQualifiedName(typeName)
	if err != nil {
		return nil, false
	}
	d, err := l.Resolver.Resolve(context.Background(), ref)
	if err != nil || d == nil {
		return nil, false
	}
	return decl.AsClass(d)
}

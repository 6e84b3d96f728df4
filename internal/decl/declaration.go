package decl

import (
	"context"
	"sort"
)

// Declaration is the base of all metadata nodes.
type Declaration interface {
	// Name is the simple, unqualified name.
	Name() string

	// QualifiedName is unique within the graph.
	QualifiedName() string

	// LibraryURI identifies the owning library. It is a lookup key only.
	LibraryURI() string

	// Reference is the canonical reference used as cache key.
	Reference() string

	IsPublic() bool
	IsSynthetic() bool

	// Annotations returns the annotations applied to the declaration.
	Annotations() []*Annotation

	// EqualityProps returns the ordered, semantically relevant properties
	// compared by Equal.
	EqualityProps() []any
}

// TypeDeclaration is a Declaration that names a type.
type TypeDeclaration interface {
	Declaration
	Kind() TypeKind
	TypeArguments() []*LinkDeclaration
}

// Composite is implemented by every declaration with a member surface:
// classes, mixins, enums, records and functions.
type Composite interface {
	TypeDeclaration
	Class() *ClassDeclaration
}

// Linker is implemented by declarations that are also lightweight links
// (records and functions).
type Linker interface {
	Declaration
	Link() *LinkDeclaration
}

// Resolver materializes declarations for canonical references.
// Implementations return nil, nil when a reference cannot be resolved.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (Declaration, error)
}

// AsClass returns the class surface of a declaration, if it has one.
func AsClass(d Declaration) (*ClassDeclaration, bool) {
	c, ok := d.(Composite)
	if !ok || isNil(c) {
		return nil, false
	}
	return c.Class(), true
}

// base holds the attributes shared by all concrete declarations.
type base struct {
	name        string
	libraryURI  string
	owner       string // enclosing type name for members, empty for top-level
	private     bool
	synthetic   bool
	annotations []*Annotation
}

// Name returns the simple name.
func (b *base) Name() string { return b.name }

// LibraryURI returns the owning library URI.
func (b *base) LibraryURI() string { return b.libraryURI }

// QualifiedName returns the library-scoped qualified name.
func (b *base) QualifiedName() string {
	if b.owner != "" {
		return QualifiedName(b.libraryURI, b.owner) + "." + b.name
	}
	return QualifiedName(b.libraryURI, b.name)
}

// Reference returns the canonical reference.
func (b *base) Reference() string {
	if b.owner != "" {
		return Reference(b.libraryURI, b.owner) + "." + b.name
	}
	return Reference(b.libraryURI, b.name)
}

// Owner returns the enclosing type name for members.
func (b *base) Owner() string { return b.owner }

// IsPublic reports whether the declaration is visible outside its library.
func (b *base) IsPublic() bool { return !b.private }

// IsSynthetic reports whether the declaration was synthesized rather than written.
func (b *base) IsSynthetic() bool { return b.synthetic }

// Annotations returns a copy of the annotation list.
func (b *base) Annotations() []*Annotation {
	out := make([]*Annotation, len(b.annotations))
	copy(out, b.annotations)
	return out
}

// HasAnnotation reports whether an annotation of the given qualified type is present.
func (b *base) HasAnnotation(qualifiedType string) bool {
	return b.Annotation(qualifiedType) != nil
}

// Annotation returns the first annotation of the given qualified type, or nil.
func (b *base) Annotation(qualifiedType string) *Annotation {
	for _, a := range b.annotations {
		if a.TypeName() == qualifiedType {
			return a
		}
	}
	return nil
}

func (b *base) baseProps() []any {
	return []any{b.QualifiedName(), b.private, b.synthetic, b.annotations}
}

// Annotation is an annotation applied to a declaration.
type Annotation struct {
	typ    *LinkDeclaration
	values map[string]any
}

// NewAnnotation creates an annotation of the given type with named values.
func NewAnnotation(typ *LinkDeclaration, values map[string]any) *Annotation {
	v := make(map[string]any, len(values))
	for k, val := range values {
		v[k] = val
	}
	return &Annotation{typ: typ, values: v}
}

// Type returns the annotation's type link.
func (a *Annotation) Type() *LinkDeclaration { return a.typ }

// TypeName returns the qualified name of the annotation type.
func (a *Annotation) TypeName() string {
	if a.typ == nil {
		return ""
	}
	return a.typ.QualifiedName()
}

// Value returns a named annotation value.
func (a *Annotation) Value(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Values returns a copy of the annotation values.
func (a *Annotation) Values() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// EqualityProps implements structural equality for annotations.
func (a *Annotation) EqualityProps() []any {
	keys := make([]string, 0, len(a.values))
	for k := range a.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, a.values[k])
	}
	return []any{a.typ, pairs}
}

package decl

import (
	"errors"
	"fmt"
)

// MemberOptions holds attributes shared by field and method constructors.
type MemberOptions struct {
	LibraryURI  string
	Owner       string
	Private     bool
	Synthetic   bool
	Annotations []*Annotation
}

func (o MemberOptions) base(name string) base {
	anns := make([]*Annotation, len(o.Annotations))
	copy(anns, o.Annotations)
	return base{
		name:        name,
		libraryURI:  o.LibraryURI,
		owner:       o.Owner,
		private:     o.Private,
		synthetic:   o.Synthetic,
		annotations: anns,
	}
}

// FieldOptions configures a FieldDeclaration.
type FieldOptions struct {
	MemberOptions
	Kind     FieldKind
	Type     *LinkDeclaration
	Nullable bool
	Final    bool
	Static   bool
	Value    any // enum ordinal or annotation default
}

// FieldDeclaration describes a class, record, enum or annotation field.
//
// A field is addressed either by a zero-based position (record positional
// fields) or by a name key, never both. The two constructors are the only way
// to build one, so the exclusivity holds for every instance.
type FieldDeclaration struct {
	base
	kind     FieldKind
	typ      *LinkDeclaration
	nullable bool
	final    bool
	static   bool
	value    any
	position int
	key      string
}

// NewPositionalField creates a record positional field.
// The field is named "$<position+1>".
func NewPositionalField(position int, opts FieldOptions) (*FieldDeclaration, error) {
	if position < 0 {
		return nil, fmt.Errorf("positional field: negative position %d", position)
	}
	return &FieldDeclaration{
		base:     opts.base(fmt.Sprintf("$%d", position+1)),
		kind:     opts.Kind,
		typ:      opts.Type,
		nullable: opts.Nullable,
		final:    opts.Final,
		static:   opts.Static,
		value:    opts.Value,
		position: position,
	}, nil
}

// NewNamedField creates a field addressed by name.
func NewNamedField(name string, opts FieldOptions) (*FieldDeclaration, error) {
	if name == "" {
		return nil, errors.New("named field: empty name")
	}
	return &FieldDeclaration{
		base:     opts.base(name),
		kind:     opts.Kind,
		typ:      opts.Type,
		nullable: opts.Nullable,
		final:    opts.Final,
		static:   opts.Static,
		value:    opts.Value,
		position: -1,
		key:      name,
	}, nil
}

// Kind returns the field family.
func (f *FieldDeclaration) Kind() FieldKind { return f.kind }

// Type returns the declared type link (may be nil for untyped fields).
func (f *FieldDeclaration) Type() *LinkDeclaration { return f.typ }

// IsNullable reports whether the field accepts nil.
func (f *FieldDeclaration) IsNullable() bool { return f.nullable }

// IsFinal reports whether the field is immutable after construction.
func (f *FieldDeclaration) IsFinal() bool { return f.final }

// IsStatic reports whether the field belongs to the type rather than instances.
func (f *FieldDeclaration) IsStatic() bool { return f.static }

// Value returns the constant value carried by enum and annotation fields.
func (f *FieldDeclaration) Value() any { return f.value }

// Position returns the zero-based position of a positional field.
func (f *FieldDeclaration) Position() (int, bool) {
	return f.position, f.position >= 0
}

// Key returns the name key of a named field.
func (f *FieldDeclaration) Key() (string, bool) {
	return f.key, f.position < 0
}

// IsPositional reports whether the field is addressed by position.
func (f *FieldDeclaration) IsPositional() bool { return f.position >= 0 }

// EqualityProps implements structural equality.
func (f *FieldDeclaration) EqualityProps() []any {
	return append(f.baseProps(), f.kind, f.typ, f.nullable, f.final, f.static, f.value, f.position, f.key)
}

// ParameterDeclaration describes one parameter of an executable member.
type ParameterDeclaration struct {
	name       string
	typ        *LinkDeclaration
	position   int // -1 for named parameters
	named      bool
	required   bool
	nullable   bool
	hasDefault bool
	def        any
}

// ParameterOptions configures a ParameterDeclaration.
type ParameterOptions struct {
	Type       *LinkDeclaration
	Named      bool
	Required   bool
	Nullable   bool
	HasDefault bool
	Default    any
}

// NewParameter creates a parameter. Positional parameters carry their index.
func NewParameter(name string, position int, opts ParameterOptions) *ParameterDeclaration {
	if opts.Named {
		position = -1
	}
	return &ParameterDeclaration{
		name:       name,
		typ:        opts.Type,
		position:   position,
		named:      opts.Named,
		required:   opts.Required,
		nullable:   opts.Nullable,
		hasDefault: opts.HasDefault,
		def:        opts.Default,
	}
}

func (p *ParameterDeclaration) Name() string           { return p.name }
func (p *ParameterDeclaration) Type() *LinkDeclaration { return p.typ }
func (p *ParameterDeclaration) IsNamed() bool          { return p.named }
func (p *ParameterDeclaration) IsRequired() bool       { return p.required }
func (p *ParameterDeclaration) IsNullable() bool       { return p.nullable }

// Position returns the index of a positional parameter.
func (p *ParameterDeclaration) Position() (int, bool) {
	return p.position, !p.named
}

// Default returns the default value, if one was declared.
func (p *ParameterDeclaration) Default() (any, bool) {
	return p.def, p.hasDefault
}

// EqualityProps implements structural equality.
func (p *ParameterDeclaration) EqualityProps() []any {
	return []any{p.name, p.typ, p.position, p.named, p.required, p.nullable, p.hasDefault, p.def}
}

// MethodOptions configures a MethodDeclaration.
type MethodOptions struct {
	MemberOptions
	Kind           MemberKind
	ReturnType     *LinkDeclaration
	Parameters     []*ParameterDeclaration
	TypeParameters []*LinkDeclaration
	Static         bool
	Abstract       bool
}

// MethodDeclaration describes a method, getter, setter or constructor.
type MethodDeclaration struct {
	base
	kind       MemberKind
	returnType *LinkDeclaration
	params     []*ParameterDeclaration
	typeParams []*LinkDeclaration
	static     bool
	abstract   bool
}

// NewMethod creates a method declaration. Unnamed constructors use the empty name.
func NewMethod(name string, opts MethodOptions) *MethodDeclaration {
	params := make([]*ParameterDeclaration, len(opts.Parameters))
	copy(params, opts.Parameters)
	tps := make([]*LinkDeclaration, len(opts.TypeParameters))
	copy(tps, opts.TypeParameters)
	return &MethodDeclaration{
		base:       opts.base(name),
		kind:       opts.Kind,
		returnType: opts.ReturnType,
		params:     params,
		typeParams: tps,
		static:     opts.Static,
		abstract:   opts.Abstract,
	}
}

// Kind returns the member kind.
func (m *MethodDeclaration) Kind() MemberKind { return m.kind }

// ReturnType returns the declared return type (nil for constructors and void).
func (m *MethodDeclaration) ReturnType() *LinkDeclaration { return m.returnType }

func (m *MethodDeclaration) IsStatic() bool   { return m.static }
func (m *MethodDeclaration) IsAbstract() bool { return m.abstract }

// TypeArguments returns the method's own type parameters.
func (m *MethodDeclaration) TypeArguments() []*LinkDeclaration {
	out := make([]*LinkDeclaration, len(m.typeParams))
	copy(out, m.typeParams)
	return out
}

// Parameters returns all parameters in declaration order.
func (m *MethodDeclaration) Parameters() []*ParameterDeclaration {
	out := make([]*ParameterDeclaration, len(m.params))
	copy(out, m.params)
	return out
}

// Parameter returns the parameter with the given name, or nil.
func (m *MethodDeclaration) Parameter(name string) *ParameterDeclaration {
	for _, p := range m.params {
		if p.name == name {
			return p
		}
	}
	return nil
}

// PositionalParameters returns the positional parameters ordered by position.
func (m *MethodDeclaration) PositionalParameters() []*ParameterDeclaration {
	var out []*ParameterDeclaration
	for _, p := range m.params {
		if !p.named {
			out = append(out, p)
		}
	}
	return out
}

// NamedParameters returns the named parameters in declaration order.
func (m *MethodDeclaration) NamedParameters() []*ParameterDeclaration {
	var out []*ParameterDeclaration
	for _, p := range m.params {
		if p.named {
			out = append(out, p)
		}
	}
	return out
}

// EqualityProps implements structural equality.
func (m *MethodDeclaration) EqualityProps() []any {
	return append(m.baseProps(), m.kind, m.returnType, m.params, m.typeParams, m.static, m.abstract)
}

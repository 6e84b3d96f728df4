package decl

// ClassOptions configures a ClassDeclaration.
type ClassOptions struct {
	LibraryURI     string
	Kind           TypeKind
	Private        bool
	Synthetic      bool
	Abstract       bool
	Annotations    []*Annotation
	TypeParameters []*LinkDeclaration
	Superclass     *LinkDeclaration
	Interfaces     []*LinkDeclaration
	Mixins         []*LinkDeclaration
	Fields         []*FieldDeclaration
	Methods        []*MethodDeclaration
	Values         []*FieldDeclaration // enum values
}

// ClassDeclaration is the unifying type declaration: classes, mixins and
// enums use it directly, records and functions embed it.
type ClassDeclaration struct {
	base
	kind         TypeKind
	abstract     bool
	typeParams   []*LinkDeclaration
	superclass   *LinkDeclaration
	interfaces   []*LinkDeclaration
	mixins       []*LinkDeclaration
	fields       []*FieldDeclaration
	methods      []*MethodDeclaration
	constructors []*MethodDeclaration
	values       []*FieldDeclaration
}

// NewClass creates a class, mixin or enum declaration.
// Methods of kind MemberConstructor are kept apart from ordinary members.
func NewClass(name string, opts ClassOptions) *ClassDeclaration {
	c := &ClassDeclaration{
		base: MemberOptions{
			LibraryURI:  opts.LibraryURI,
			Private:     opts.Private,
			Synthetic:   opts.Synthetic,
			Annotations: opts.Annotations,
		}.base(name),
		kind:       opts.Kind,
		abstract:   opts.Abstract,
		typeParams: cloneLinks(opts.TypeParameters),
		superclass: opts.Superclass,
		interfaces: cloneLinks(opts.Interfaces),
		mixins:     cloneLinks(opts.Mixins),
		fields:     cloneFields(opts.Fields),
		values:     cloneFields(opts.Values),
	}
	if c.kind == TypeKindUnknown {
		c.kind = TypeKindClass
	}
	for _, m := range opts.Methods {
		if m.kind == MemberConstructor {
			c.constructors = append(c.constructors, m)
			continue
		}
		c.methods = append(c.methods, m)
	}
	return c
}

// Class returns the receiver; it satisfies Composite.
func (c *ClassDeclaration) Class() *ClassDeclaration { return c }

// Kind returns the declaration variant.
func (c *ClassDeclaration) Kind() TypeKind { return c.kind }

// IsAbstract reports whether the type cannot be instantiated directly.
func (c *ClassDeclaration) IsAbstract() bool { return c.abstract }

// TypeArguments returns the declared type parameters.
func (c *ClassDeclaration) TypeArguments() []*LinkDeclaration { return cloneLinks(c.typeParams) }

// Superclass returns the superclass link, or nil.
func (c *ClassDeclaration) Superclass() *LinkDeclaration { return c.superclass }

// Interfaces returns the implemented interface links.
func (c *ClassDeclaration) Interfaces() []*LinkDeclaration { return cloneLinks(c.interfaces) }

// Mixins returns the applied mixin links.
func (c *ClassDeclaration) Mixins() []*LinkDeclaration { return cloneLinks(c.mixins) }

// Supertypes returns superclass, interfaces and mixins in that order.
func (c *ClassDeclaration) Supertypes() []*LinkDeclaration {
	var out []*LinkDeclaration
	if c.superclass != nil {
		out = append(out, c.superclass)
	}
	out = append(out, c.interfaces...)
	out = append(out, c.mixins...)
	return out
}

// Fields returns the fields in declaration order.
func (c *ClassDeclaration) Fields() []*FieldDeclaration { return cloneFields(c.fields) }

// Field returns the named field, or nil.
func (c *ClassDeclaration) Field(name string) *FieldDeclaration {
	for _, f := range c.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// PositionalField returns the positional field at index, or nil.
func (c *ClassDeclaration) PositionalField(index int) *FieldDeclaration {
	for _, f := range c.fields {
		if pos, ok := f.Position(); ok && pos == index {
			return f
		}
	}
	return nil
}

// Values returns the enum values in declaration order.
func (c *ClassDeclaration) Values() []*FieldDeclaration { return cloneFields(c.values) }

// Value returns the enum value with the given name, or nil.
func (c *ClassDeclaration) Value(name string) *FieldDeclaration {
	for _, v := range c.values {
		if v.name == name {
			return v
		}
	}
	return nil
}

// Methods returns methods, getters and setters in declaration order.
func (c *ClassDeclaration) Methods() []*MethodDeclaration { return cloneMethods(c.methods) }

// Method returns the first non-constructor member with the given name, or nil.
func (c *ClassDeclaration) Method(name string) *MethodDeclaration {
	for _, m := range c.methods {
		if m.name == name {
			return m
		}
	}
	return nil
}

// Constructors returns the constructors in declaration order.
func (c *ClassDeclaration) Constructors() []*MethodDeclaration { return cloneMethods(c.constructors) }

// Constructor returns the constructor with the given name, or nil.
// The unnamed constructor has the empty name.
func (c *ClassDeclaration) Constructor(name string) *MethodDeclaration {
	for _, m := range c.constructors {
		if m.name == name {
			return m
		}
	}
	return nil
}

// Member returns any executable member with the given name, constructors last.
func (c *ClassDeclaration) Member(name string) *MethodDeclaration {
	if m := c.Method(name); m != nil {
		return m
	}
	return c.Constructor(name)
}

// EqualityProps implements structural equality.
func (c *ClassDeclaration) EqualityProps() []any {
	return append(c.baseProps(),
		c.kind, c.abstract, c.typeParams, c.superclass, c.interfaces, c.mixins,
		c.fields, c.methods, c.constructors, c.values)
}

// RecordDeclaration is a record type. Its fields are positional or named;
// it is also a link to itself so it can stand in wherever a type is referenced.
type RecordDeclaration struct {
	ClassDeclaration
	resolver Resolver
}

// NewRecord creates a record declaration from positional and named fields.
func NewRecord(name string, opts ClassOptions, r Resolver) *RecordDeclaration {
	opts.Kind = TypeKindRecord
	return &RecordDeclaration{
		ClassDeclaration: *NewClass(name, opts),
		resolver:         r,
	}
}

// PositionalFields returns the positional fields ordered by position.
func (r *RecordDeclaration) PositionalFields() []*FieldDeclaration {
	var out []*FieldDeclaration
	for i := 0; ; i++ {
		f := r.PositionalField(i)
		if f == nil {
			return out
		}
		out = append(out, f)
	}
}

// NamedFields returns the named fields in declaration order.
func (r *RecordDeclaration) NamedFields() []*FieldDeclaration {
	var out []*FieldDeclaration
	for _, f := range r.fields {
		if !f.IsPositional() {
			out = append(out, f)
		}
	}
	return out
}

// Link returns a link to this record.
func (r *RecordDeclaration) Link() *LinkDeclaration {
	return selfLink(&r.ClassDeclaration, r.resolver)
}

// FunctionDeclaration is a function or closure type.
type FunctionDeclaration struct {
	ClassDeclaration
	returnType *LinkDeclaration
	params     []*ParameterDeclaration
	resolver   Resolver
}

// FunctionOptions configures NewFunction.
type FunctionOptions struct {
	ClassOptions
	ReturnType *LinkDeclaration
	Parameters []*ParameterDeclaration
}

// NewFunction creates a function declaration. Kind must be function or
// closure; anything else is treated as function.
func NewFunction(name string, opts FunctionOptions, r Resolver) *FunctionDeclaration {
	if opts.Kind != TypeKindClosure {
		opts.Kind = TypeKindFunction
	}
	params := make([]*ParameterDeclaration, len(opts.Parameters))
	copy(params, opts.Parameters)
	return &FunctionDeclaration{
		ClassDeclaration: *NewClass(name, opts.ClassOptions),
		returnType:       opts.ReturnType,
		params:           params,
		resolver:         r,
	}
}

// ReturnType returns the declared return type.
func (f *FunctionDeclaration) ReturnType() *LinkDeclaration { return f.returnType }

// Parameters returns the parameters in declaration order.
func (f *FunctionDeclaration) Parameters() []*ParameterDeclaration {
	out := make([]*ParameterDeclaration, len(f.params))
	copy(out, f.params)
	return out
}

// Link returns a link to this function.
func (f *FunctionDeclaration) Link() *LinkDeclaration {
	return selfLink(&f.ClassDeclaration, f.resolver)
}

// EqualityProps implements structural equality.
func (f *FunctionDeclaration) EqualityProps() []any {
	return append(f.ClassDeclaration.EqualityProps(), f.returnType, f.params)
}

func selfLink(c *ClassDeclaration, r Resolver) *LinkDeclaration {
	return NewLink(c.libraryURI, c.name, LinkOptions{
		Kind:          c.kind,
		TypeArguments: c.typeParams,
		Resolver:      r,
	})
}

func cloneLinks(in []*LinkDeclaration) []*LinkDeclaration {
	out := make([]*LinkDeclaration, len(in))
	copy(out, in)
	return out
}

func cloneFields(in []*FieldDeclaration) []*FieldDeclaration {
	out := make([]*FieldDeclaration, len(in))
	copy(out, in)
	return out
}

func cloneMethods(in []*MethodDeclaration) []*MethodDeclaration {
	out := make([]*MethodDeclaration, len(in))
	copy(out, in)
	return out
}

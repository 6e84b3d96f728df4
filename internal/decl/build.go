package decl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDeclaration is wrapped by every Build failure.
var ErrInvalidDeclaration = errors.New("invalid declaration")

// Build materializes a raw declaration of libraryURI. Links created for
// supertypes, member types and type arguments resolve lazily through r,
// which may be nil.
//
// Build fails only on malformed input: a missing or ill-formed name, an
// unknown kind, or a field that is both positional and named.
func Build(raw RawDeclaration, libraryURI string, r Resolver) (Declaration, error) {
	b := builder{libraryURI: libraryURI, owner: raw.Name, resolver: r}
	d, err := b.declaration(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDeclaration, Reference(libraryURI, raw.Name), err)
	}
	return d, nil
}

type builder struct {
	libraryURI string
	owner      string
	resolver   Resolver
}

func (b builder) declaration(raw RawDeclaration) (Declaration, error) {
	if err := checkName(raw.Name); err != nil {
		return nil, err
	}
	kind, err := ParseTypeKind(raw.Kind)
	if err != nil {
		return nil, err
	}

	opts := ClassOptions{
		LibraryURI: b.libraryURI,
		Kind:       kind,
		Private:    raw.Private,
		Synthetic:  raw.Synthetic,
		Abstract:   raw.Abstract,
	}
	if opts.Annotations, err = b.annotations(raw.Annotations); err != nil {
		return nil, err
	}
	if opts.TypeParameters, err = b.links(raw.TypeParameters); err != nil {
		return nil, fmt.Errorf("type parameters: %w", err)
	}
	if opts.Superclass, err = b.link(raw.Superclass); err != nil {
		return nil, fmt.Errorf("superclass: %w", err)
	}
	if opts.Interfaces, err = b.links(raw.Interfaces); err != nil {
		return nil, fmt.Errorf("interfaces: %w", err)
	}
	if opts.Mixins, err = b.links(raw.Mixins); err != nil {
		return nil, fmt.Errorf("mixins: %w", err)
	}

	fieldKind := FieldClass
	switch {
	case kind == TypeKindRecord:
		fieldKind = FieldRecord
	case raw.AnnotationType:
		fieldKind = FieldAnnotation
	}
	positions := make(map[int]bool)
	for i, rf := range raw.Fields {
		if rf.Position != nil && kind != TypeKindRecord {
			return nil, fmt.Errorf("field %d: positional field outside a record", i)
		}
		f, err := b.field(rf, fieldKind, nil)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		if pos, ok := f.Position(); ok {
			if positions[pos] {
				return nil, fmt.Errorf("field %d: duplicate position %d", i, pos)
			}
			positions[pos] = true
		}
		opts.Fields = append(opts.Fields, f)
	}
	// Positions must be 0..n-1.
	for pos := range len(positions) {
		if !positions[pos] {
			return nil, fmt.Errorf("positional fields skip position %d", pos)
		}
	}

	if len(raw.Values) > 0 && kind != TypeKindEnum {
		return nil, fmt.Errorf("enum values on %s declaration", kind)
	}
	for i, rv := range raw.Values {
		if rv.Position != nil {
			return nil, fmt.Errorf("enum value %d: enum values are named", i)
		}
		f, err := b.field(rv, FieldEnum, i)
		if err != nil {
			return nil, fmt.Errorf("enum value %d: %w", i, err)
		}
		opts.Values = append(opts.Values, f)
	}

	for _, rm := range raw.Methods {
		m, err := b.method(rm)
		if err != nil {
			return nil, fmt.Errorf("method %q: %w", rm.Name, err)
		}
		opts.Methods = append(opts.Methods, m)
	}

	switch kind {
	case TypeKindRecord:
		return NewRecord(raw.Name, opts, b.resolver), nil
	case TypeKindFunction, TypeKindClosure:
		ret, err := b.link(raw.ReturnType)
		if err != nil {
			return nil, fmt.Errorf("return type: %w", err)
		}
		params, err := b.parameters(raw.Parameters)
		if err != nil {
			return nil, err
		}
		return NewFunction(raw.Name, FunctionOptions{
			ClassOptions: opts,
			ReturnType:   ret,
			Parameters:   params,
		}, b.resolver), nil
	default:
		if raw.ReturnType != nil || len(raw.Parameters) > 0 {
			return nil, fmt.Errorf("parameters on %s declaration", kind)
		}
		return NewClass(raw.Name, opts), nil
	}
}

func (b builder) member(private, synthetic bool, anns []RawAnnotation) (MemberOptions, error) {
	a, err := b.annotations(anns)
	if err != nil {
		return MemberOptions{}, err
	}
	return MemberOptions{
		LibraryURI:  b.libraryURI,
		Owner:       b.owner,
		Private:     private,
		Synthetic:   synthetic,
		Annotations: a,
	}, nil
}

// field builds a field; ordinal is the default value for enum values.
func (b builder) field(raw RawField, kind FieldKind, ordinal any) (*FieldDeclaration, error) {
	mo, err := b.member(raw.Private, raw.Synthetic, raw.Annotations)
	if err != nil {
		return nil, err
	}
	typ, err := b.link(raw.Type)
	if err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	value := raw.Value
	if value == nil {
		value = ordinal
	}
	opts := FieldOptions{
		MemberOptions: mo,
		Kind:          kind,
		Type:          typ,
		Nullable:      raw.Nullable,
		Final:         raw.Final,
		Static:        raw.Static,
		Value:         value,
	}

	if raw.Position != nil {
		pos := *raw.Position
		if raw.Key != "" {
			return nil, fmt.Errorf("field has both position %d and key %q", pos, raw.Key)
		}
		if raw.Name != "" && raw.Name != fmt.Sprintf("$%d", pos+1) {
			return nil, fmt.Errorf("field has both position %d and name %q", pos, raw.Name)
		}
		return NewPositionalField(pos, opts)
	}

	name := raw.Key
	if name == "" {
		name = raw.Name
	} else if raw.Name != "" && raw.Name != raw.Key {
		return nil, fmt.Errorf("field name %q does not match key %q", raw.Name, raw.Key)
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	return NewNamedField(name, opts)
}

func (b builder) method(raw RawMethod) (*MethodDeclaration, error) {
	kind, err := ParseMemberKind(raw.Kind)
	if err != nil {
		return nil, err
	}
	// Unnamed constructors are legal; everything else needs a name.
	if raw.Name != "" || kind != MemberConstructor {
		if err := checkName(raw.Name); err != nil {
			return nil, err
		}
	}
	mo, err := b.member(raw.Private, raw.Synthetic, raw.Annotations)
	if err != nil {
		return nil, err
	}
	ret, err := b.link(raw.ReturnType)
	if err != nil {
		return nil, fmt.Errorf("return type: %w", err)
	}
	params, err := b.parameters(raw.Parameters)
	if err != nil {
		return nil, err
	}
	tps, err := b.links(raw.TypeParameters)
	if err != nil {
		return nil, fmt.Errorf("type parameters: %w", err)
	}
	return NewMethod(raw.Name, MethodOptions{
		MemberOptions:  mo,
		Kind:           kind,
		ReturnType:     ret,
		Parameters:     params,
		TypeParameters: tps,
		Static:         raw.Static,
		Abstract:       raw.Abstract,
	}), nil
}

func (b builder) parameters(raws []RawParameter) ([]*ParameterDeclaration, error) {
	var out []*ParameterDeclaration
	pos := 0
	seen := make(map[string]bool, len(raws))
	for _, rp := range raws {
		if err := checkName(rp.Name); err != nil {
			return nil, fmt.Errorf("parameter: %w", err)
		}
		if seen[rp.Name] {
			return nil, fmt.Errorf("duplicate parameter %q", rp.Name)
		}
		seen[rp.Name] = true
		typ, err := b.link(rp.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", rp.Name, err)
		}
		p := NewParameter(rp.Name, pos, ParameterOptions{
			Type:       typ,
			Named:      rp.Named,
			Required:   rp.Required,
			Nullable:   rp.Nullable,
			HasDefault: rp.Default != nil,
			Default:    rp.Default,
		})
		if !rp.Named {
			pos++
		}
		out = append(out, p)
	}
	return out, nil
}

func (b builder) annotations(raws []RawAnnotation) ([]*Annotation, error) {
	var out []*Annotation
	for _, ra := range raws {
		typ, err := b.link(&ra.Type)
		if err != nil {
			return nil, fmt.Errorf("annotation: %w", err)
		}
		out = append(out, NewAnnotation(typ, ra.Values))
	}
	return out, nil
}

func (b builder) links(raws []RawType) ([]*LinkDeclaration, error) {
	var out []*LinkDeclaration
	for i := range raws {
		l, err := b.link(&raws[i])
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (b builder) link(raw *RawType) (*LinkDeclaration, error) {
	if raw == nil {
		return nil, nil
	}
	if raw.Name == "" {
		return nil, errors.New("type without name")
	}
	kind := TypeKindUnknown
	if raw.Kind != "" {
		k, err := ParseTypeKind(raw.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	args, err := b.links(raw.Arguments)
	if err != nil {
		return nil, fmt.Errorf("type arguments of %s: %w", raw.Name, err)
	}
	uri := raw.Library
	switch {
	case raw.Builtin:
		uri = ""
	case uri == "":
		uri = b.libraryURI
	}
	return NewLink(uri, raw.Name, LinkOptions{
		Kind:          kind,
		Nullable:      raw.Nullable,
		TypeArguments: args,
		Resolver:      b.resolver,
	}), nil
}

func checkName(name string) error {
	switch {
	case name == "":
		return errors.New("missing name")
	case strings.ContainsAny(name, ".# \t\n"):
		return fmt.Errorf("malformed name %q", name)
	}
	return nil
}

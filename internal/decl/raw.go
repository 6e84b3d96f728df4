package decl

// RawLibrary is the structural content of one library as delivered by the
// scanning collaborator. It is the unit stored, ingested and validated.
type RawLibrary struct {
	URI          string           `json:"uri" yaml:"uri"`
	Declarations []RawDeclaration `json:"declarations" yaml:"declarations"`
}

// Declaration returns the raw declaration with the given name, or nil.
func (l *RawLibrary) Declaration(name string) *RawDeclaration {
	if l == nil {
		return nil
	}
	for i := range l.Declarations {
		if l.Declarations[i].Name == name {
			return &l.Declarations[i]
		}
	}
	return nil
}

// Names returns the declared names in library order.
func (l *RawLibrary) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, len(l.Declarations))
	for i, d := range l.Declarations {
		names[i] = d.Name
	}
	return names
}

// RawDeclaration is a top-level type declaration before materialization.
// Kind is one of class, mixin, enum, record, function or closure; empty means class.
type RawDeclaration struct {
	Name           string          `json:"name" yaml:"name"`
	Kind           string          `json:"kind,omitempty" yaml:"kind,omitempty"`
	Private        bool            `json:"private,omitempty" yaml:"private,omitempty"`
	Synthetic      bool            `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
	Abstract       bool            `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	AnnotationType bool            `json:"annotation_type,omitempty" yaml:"annotation_type,omitempty"`
	TypeParameters []RawType       `json:"type_parameters,omitempty" yaml:"type_parameters,omitempty"`
	Superclass     *RawType        `json:"superclass,omitempty" yaml:"superclass,omitempty"`
	Interfaces     []RawType       `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Mixins         []RawType       `json:"mixins,omitempty" yaml:"mixins,omitempty"`
	Fields         []RawField      `json:"fields,omitempty" yaml:"fields,omitempty"`
	Methods        []RawMethod     `json:"methods,omitempty" yaml:"methods,omitempty"`
	Values         []RawField      `json:"values,omitempty" yaml:"values,omitempty"`
	Annotations    []RawAnnotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`

	// Function and closure declarations only.
	ReturnType *RawType       `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Parameters []RawParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// RawType references a type. An empty Library means the library of the
// enclosing declaration; Builtin marks language builtins such as int.
type RawType struct {
	Name      string    `json:"name" yaml:"name"`
	Library   string    `json:"library,omitempty" yaml:"library,omitempty"`
	Builtin   bool      `json:"builtin,omitempty" yaml:"builtin,omitempty"`
	Kind      string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Nullable  bool      `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Arguments []RawType `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// RawField is a field, record field or enum value.
// Exactly one of Position (record positional field) or Name/Key is used.
type RawField struct {
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	Key         string          `json:"key,omitempty" yaml:"key,omitempty"`
	Position    *int            `json:"position,omitempty" yaml:"position,omitempty"`
	Type        *RawType        `json:"type,omitempty" yaml:"type,omitempty"`
	Nullable    bool            `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Final       bool            `json:"final,omitempty" yaml:"final,omitempty"`
	Static      bool            `json:"static,omitempty" yaml:"static,omitempty"`
	Private     bool            `json:"private,omitempty" yaml:"private,omitempty"`
	Synthetic   bool            `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
	Value       any             `json:"value,omitempty" yaml:"value,omitempty"`
	Annotations []RawAnnotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// RawMethod is a method, getter, setter or constructor.
type RawMethod struct {
	Name           string          `json:"name" yaml:"name"`
	Kind           string          `json:"kind,omitempty" yaml:"kind,omitempty"`
	ReturnType     *RawType        `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Parameters     []RawParameter  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	TypeParameters []RawType       `json:"type_parameters,omitempty" yaml:"type_parameters,omitempty"`
	Static         bool            `json:"static,omitempty" yaml:"static,omitempty"`
	Abstract       bool            `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Private        bool            `json:"private,omitempty" yaml:"private,omitempty"`
	Synthetic      bool            `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
	Annotations    []RawAnnotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// RawParameter is one parameter of a method or function.
type RawParameter struct {
	Name     string   `json:"name" yaml:"name"`
	Type     *RawType `json:"type,omitempty" yaml:"type,omitempty"`
	Named    bool     `json:"named,omitempty" yaml:"named,omitempty"`
	Required bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Nullable bool     `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Default  any      `json:"default,omitempty" yaml:"default,omitempty"`
}

// RawAnnotation is an annotation application.
type RawAnnotation struct {
	Type   RawType        `json:"type" yaml:"type"`
	Values map[string]any `json:"values,omitempty" yaml:"values,omitempty"`
}

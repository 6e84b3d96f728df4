package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/mirror/internal/decl"
)

// DeclarationView is the printable summary of a declaration.
type DeclarationView struct {
	Reference     string       `json:"reference"`
	QualifiedName string       `json:"qualified_name"`
	Kind          string       `json:"kind"`
	Public        bool         `json:"public"`
	Abstract      bool         `json:"abstract,omitempty"`
	Supertypes    []string     `json:"supertypes,omitempty"`
	Fields        []FieldView  `json:"fields,omitempty"`
	Values        []FieldView  `json:"values,omitempty"`
	Constructors  []MemberView `json:"constructors,omitempty"`
	Methods       []MemberView `json:"methods,omitempty"`
	Annotations   []string     `json:"annotations,omitempty"`
}

// FieldView summarizes a field or enum value.
type FieldView struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Final    bool   `json:"final,omitempty"`
	Static   bool   `json:"static,omitempty"`
	Nullable bool   `json:"nullable,omitempty"`
	Value    any    `json:"value,omitempty"`
}

// MemberView summarizes an executable member.
type MemberView struct {
	QualifiedName string   `json:"qualified_name"`
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Parameters    []string `json:"parameters,omitempty"`
	Returns       string   `json:"returns,omitempty"`
	Static        bool     `json:"static,omitempty"`
	Annotations   []string `json:"annotations,omitempty"`
}

func viewOf(d decl.Declaration) DeclarationView {
	v := DeclarationView{
		Reference:     d.Reference(),
		QualifiedName: d.QualifiedName(),
		Kind:          "declaration",
		Public:        d.IsPublic(),
		Annotations:   annotationNames(d.Annotations()),
	}
	if td, ok := d.(decl.TypeDeclaration); ok {
		v.Kind = td.Kind().String()
	}
	cls, ok := decl.AsClass(d)
	if !ok {
		return v
	}
	v.Abstract = cls.IsAbstract()
	for _, st := range cls.Supertypes() {
		v.Supertypes = append(v.Supertypes, st.String())
	}
	for _, f := range cls.Fields() {
		v.Fields = append(v.Fields, fieldView(f))
	}
	for _, f := range cls.Values() {
		v.Values = append(v.Values, fieldView(f))
	}
	for _, m := range cls.Constructors() {
		v.Constructors = append(v.Constructors, memberView(m))
	}
	for _, m := range cls.Methods() {
		v.Methods = append(v.Methods, memberView(m))
	}
	return v
}

func fieldView(f *decl.FieldDeclaration) FieldView {
	return FieldView{
		Name:     f.Name(),
		Type:     linkString(f.Type()),
		Final:    f.IsFinal(),
		Static:   f.IsStatic(),
		Nullable: f.IsNullable(),
		Value:    f.Value(),
	}
}

func memberView(m *decl.MethodDeclaration) MemberView {
	mv := MemberView{
		QualifiedName: m.QualifiedName(),
		Name:          m.Name(),
		Kind:          m.Kind().String(),
		Returns:       linkString(m.ReturnType()),
		Static:        m.IsStatic(),
		Annotations:   annotationNames(m.Annotations()),
	}
	for _, p := range m.Parameters() {
		mv.Parameters = append(mv.Parameters, parameterString(p))
	}
	return mv
}

func parameterString(p *decl.ParameterDeclaration) string {
	var b strings.Builder
	if t := linkString(p.Type()); t != "" {
		b.WriteString(t)
		b.WriteByte(' ')
	}
	b.WriteString(p.Name())
	if def, ok := p.Default(); ok {
		fmt.Fprintf(&b, " = %v", def)
	}
	if p.IsNamed() {
		return "{" + b.String() + "}"
	}
	return b.String()
}

func linkString(l *decl.LinkDeclaration) string {
	if l == nil {
		return ""
	}
	return l.String()
}

func annotationNames(as []*decl.Annotation) []string {
	var out []string
	for _, a := range as {
		out = append(out, "@"+a.TypeName())
	}
	return out
}

// writeDeclaration renders v as an indented text block.
func writeDeclaration(w io.Writer, v DeclarationView) {
	header := v.Kind
	if v.Abstract {
		header = "abstract " + header
	}
	fmt.Fprintf(w, "%s %s\n", header, v.QualifiedName)
	fmt.Fprintf(w, "  reference: %s\n", v.Reference)
	if len(v.Annotations) > 0 {
		fmt.Fprintf(w, "  annotations: %s\n", strings.Join(v.Annotations, " "))
	}
	if len(v.Supertypes) > 0 {
		fmt.Fprintf(w, "  supertypes: %s\n", strings.Join(v.Supertypes, ", "))
	}
	writeFields(w, "fields", v.Fields)
	writeFields(w, "values", v.Values)
	writeMembers(w, "constructors", v.Constructors)
	writeMembers(w, "methods", v.Methods)
}

func writeFields(w io.Writer, title string, fields []FieldView) {
	if len(fields) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", title)
	for _, f := range fields {
		var mods []string
		if f.Static {
			mods = append(mods, "static")
		}
		if f.Final {
			mods = append(mods, "final")
		}
		if f.Type != "" {
			mods = append(mods, f.Type)
		}
		line := strings.Join(append(mods, f.Name), " ")
		if f.Nullable {
			line += " (nullable)"
		}
		if f.Value != nil {
			line += fmt.Sprintf(" = %v", f.Value)
		}
		fmt.Fprintf(w, "    %s\n", line)
	}
}

func writeMembers(w io.Writer, title string, members []MemberView) {
	if len(members) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", title)
	for _, m := range members {
		fmt.Fprintf(w, "    %s\n", memberLine(m))
	}
}

func memberLine(m MemberView) string {
	name := m.Name
	if name == "" {
		name = "(unnamed)"
	}
	line := fmt.Sprintf("%s %s(%s)", m.Kind, name, strings.Join(m.Parameters, ", "))
	if m.Returns != "" {
		line += " -> " + m.Returns
	}
	if len(m.Annotations) > 0 {
		line += " " + strings.Join(m.Annotations, " ")
	}
	return line
}

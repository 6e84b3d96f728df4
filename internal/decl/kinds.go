package decl

import (
	"fmt"
	"strings"
)

// TypeKind discriminates the variants of a type declaration.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindClass
	TypeKindMixin
	TypeKindEnum
	TypeKindRecord
	TypeKindFunction
	TypeKindClosure
)

var typeKindNames = map[TypeKind]string{
	TypeKindUnknown:  "unknown",
	TypeKindClass:    "class",
	TypeKindMixin:    "mixin",
	TypeKindEnum:     "enum",
	TypeKindRecord:   "record",
	TypeKindFunction: "function",
	TypeKindClosure:  "closure",
}

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	if s, ok := typeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// IsLinkable reports whether declarations of this kind are also links.
func (k TypeKind) IsLinkable() bool {
	return k == TypeKindRecord || k == TypeKindFunction || k == TypeKindClosure
}

// ParseTypeKind parses a kind name. The empty string parses as class.
func ParseTypeKind(s string) (TypeKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeKindClass, nil
	}
	for k, name := range typeKindNames {
		if k != TypeKindUnknown && name == s {
			return k, nil
		}
	}
	return TypeKindUnknown, fmt.Errorf("unknown type kind %q", s)
}

// MemberKind classifies executable members.
type MemberKind int

const (
	MemberMethod MemberKind = iota
	MemberGetter
	MemberSetter
	MemberConstructor
)

// String returns a human-readable representation of the MemberKind.
func (k MemberKind) String() string {
	switch k {
	case MemberMethod:
		return "method"
	case MemberGetter:
		return "getter"
	case MemberSetter:
		return "setter"
	case MemberConstructor:
		return "constructor"
	default:
		return fmt.Sprintf("MemberKind(%d)", int(k))
	}
}

// ParseMemberKind parses a member kind name. The empty string parses as method.
func ParseMemberKind(s string) (MemberKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "method":
		return MemberMethod, nil
	case "getter":
		return MemberGetter, nil
	case "setter":
		return MemberSetter, nil
	case "constructor":
		return MemberConstructor, nil
	default:
		return MemberMethod, fmt.Errorf("unknown member kind %q", s)
	}
}

// FieldKind records which family a FieldDeclaration belongs to.
type FieldKind int

const (
	FieldClass FieldKind = iota
	FieldRecord
	FieldEnum
	FieldAnnotation
)

// String returns a human-readable representation of the FieldKind.
func (k FieldKind) String() string {
	switch k {
	case FieldClass:
		return "class"
	case FieldRecord:
		return "record"
	case FieldEnum:
		return "enum"
	case FieldAnnotation:
		return "annotation"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

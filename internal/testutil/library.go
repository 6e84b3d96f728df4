package testutil

import (
	"fmt"

	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/executor"
)

func builtin(name string) *decl.RawType {
	return &decl.RawType{Name: name, Builtin: true}
}

// Library returns the declarations of the fixture types.
func Library() decl.RawLibrary {
	return decl.RawLibrary{
		URI: LibraryURI,
		Declarations: []decl.RawDeclaration{
			{
				Name: "Counter",
				Fields: []decl.RawField{
					{Name: "count", Type: builtin("int")},
					{Name: "step", Type: builtin("int")},
				},
				Methods: []decl.RawMethod{
					{Kind: "constructor", Parameters: []decl.RawParameter{{Name: "start", Type: builtin("int")}}},
					{Name: "increment", ReturnType: builtin("int")},
					{Name: "add", ReturnType: builtin("int"), Parameters: []decl.RawParameter{
						{Name: "n", Type: builtin("int")},
						{Name: "times", Type: builtin("int"), Named: true, Default: 1},
					}},
					{Name: "reset", ReturnType: builtin("void")},
					{Name: "fail", ReturnType: builtin("void")},
				},
			},
			{
				Name: "Greeter",
				Fields: []decl.RawField{
					{Name: "greeting", Type: builtin("string"), Final: true},
				},
				Methods: []decl.RawMethod{
					{Kind: "constructor", Parameters: []decl.RawParameter{{Name: "greeting", Type: builtin("string")}}},
					{Name: "formal", Kind: "constructor"},
					{Name: "greet", ReturnType: builtin("string"), Parameters: []decl.RawParameter{{Name: "name", Type: builtin("string")}}},
					{Name: "shout", ReturnType: builtin("string"), Parameters: []decl.RawParameter{{Name: "name", Type: builtin("string")}}},
				},
			},
		},
	}
}

// members is an executor.MemberLookup over built declarations.
type members map[string]*decl.ClassDeclaration

func (m members) Class(typeName string) (*decl.ClassDeclaration, bool) {
	c, ok := m[typeName]
	return c, ok
}

// Members returns the fixture declarations as member metadata for the live
// backend, keyed by qualified name.
func Members() executor.MemberLookup {
	lib := Library()
	out := make(members, len(lib.Declarations))
	for _, raw := range lib.Declarations {
		d, err := decl.Build(raw, lib.URI, nil)
		if err != nil {
			panic(fmt.Sprintf("testutil: %v", err))
		}
		cls, ok := decl.AsClass(d)
		if !ok {
			panic(fmt.Sprintf("testutil: %s has no class surface", d.Reference()))
		}
		out[d.QualifiedName()] = cls
	}
	return out
}

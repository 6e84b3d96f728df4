package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/mirror/internal/decl"
)

const shopURI = "example.com/shop"

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestLibrary returns a small library exercising every any-typed
// raw field.
func createTestLibrary() decl.RawLibrary {
	return decl.RawLibrary{
		URI: shopURI,
		Declarations: []decl.RawDeclaration{
			{
				Name: "Cart",
				Fields: []decl.RawField{
					{Name: "owner", Type: &decl.RawType{Name: "string", Builtin: true}, Nullable: true},
				},
				Methods: []decl.RawMethod{
					{Name: "add", Parameters: []decl.RawParameter{
						{Name: "item", Type: &decl.RawType{Name: "Item"}},
						{Name: "qty", Named: true, Default: 1},
						{Name: "ratio", Named: true, Default: 0.5},
					}},
				},
				Annotations: []decl.RawAnnotation{
					{Type: decl.RawType{Name: "Reflectable"}, Values: map[string]any{"level": 2, "tags": []any{"a", 3}}},
				},
			},
			{Name: "Item"},
			{Name: "Reflectable", AnnotationType: true},
			{
				Name:   "Color",
				Kind:   "enum",
				Values: []decl.RawField{{Name: "red"}, {Name: "green", Value: 7}},
			},
		},
	}
}

// createTestInvocation creates a test invocation record with minimal required fields.
func createTestInvocation(id string, seq int64, typeName, member string) InvocationRecord {
	return InvocationRecord{
		ID:        id,
		Seq:       seq,
		Backend:   "precomputed",
		Operation: "invoke",
		Type:      typeName,
		Member:    member,
		Args:      `{"named":{},"positional":[]}`,
		Outcome:   OutcomeOK,
		Result:    "null",
	}
}

package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/resolve"
)

const shopYAML = `uri: example.com/shop
declarations:
  - name: Cart
    superclass: {name: Entity}
    fields:
      - name: owner
        type: {name: string, builtin: true}
    methods:
      - name: add
        parameters:
          - name: qty
            named: true
            default: 1
  - name: Entity
    abstract: true
  - name: Point
    kind: record
    fields:
      - position: 0
        type: {name: int, builtin: true}
`

const utilCUE = `
library: "example.com/util": declarations: [{
	name: "Clock"
	methods: [{name: "now", kind: "getter"}]
}, {
	name: "Status"
	kind: "enum"
	values: [{name: "on"}, {name: "off"}]
}]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMemory(t *testing.T) {
	m := NewMemory(decl.RawLibrary{URI: "a"})
	m.Put(decl.RawLibrary{URI: "b"})

	lib, err := m.Library(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", lib.URI)

	_, err = m.Library(context.Background(), "c")
	assert.ErrorIs(t, err, resolve.ErrLibraryNotFound)

	assert.Equal(t, []string{"a", "b"}, m.URIs())
	m.Delete("a")
	assert.Equal(t, []string{"b"}, m.URIs())
}

func TestYAMLDir(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shop.yaml", shopYAML)

	y, errs := OpenYAMLDir(dir)
	require.Empty(t, errs)
	assert.Equal(t, []string{"example.com/shop"}, y.URIs())

	lib, err := y.Library(context.Background(), "example.com/shop")
	require.NoError(t, err)
	require.Len(t, lib.Declarations, 3)
	assert.Equal(t, 1, lib.Declaration("Cart").Methods[0].Parameters[0].Default)
	require.NotNil(t, lib.Declaration("Point").Fields[0].Position)

	// Reads are lazy: an edit is visible without reopening.
	require.NoError(t, os.WriteFile(path, []byte("uri: example.com/shop\ndeclarations: [{name: Only}]\n"), 0o644))
	lib, err = y.Library(context.Background(), "example.com/shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"Only"}, lib.Names())

	_, err = y.Library(context.Background(), "example.com/none")
	assert.ErrorIs(t, err, resolve.ErrLibraryNotFound)
}

func TestYAMLDirErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "uri: x\n")
	writeFile(t, dir, "b.yml", "uri: x\n")
	writeFile(t, dir, "c.yaml", "declarations: []\n")
	writeFile(t, dir, "d.yaml", "uri: [unterminated\n")

	y, errs := OpenYAMLDir(dir)
	require.NotNil(t, y)
	require.Len(t, errs, 3)

	codes := map[string]bool{}
	for _, err := range errs {
		var le *LoadError
		require.True(t, errors.As(err, &le))
		codes[le.Code] = true
	}
	assert.True(t, codes[ErrCodeDuplicateURI])
	assert.True(t, codes[ErrCodeMissingURI])
	assert.True(t, codes[ErrCodeLoadFailed])
}

func TestCUEDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "util.cue", utilCUE)

	c, errs := OpenCUEDir(dir)
	require.Empty(t, errs)
	assert.Equal(t, []string{"example.com/util"}, c.URIs())

	lib, err := c.Library(context.Background(), "example.com/util")
	require.NoError(t, err)
	assert.Equal(t, []string{"Clock", "Status"}, lib.Names())
	assert.Equal(t, "getter", lib.Declaration("Clock").Methods[0].Kind)
}

func TestCUEDirSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.cue", "library: {")

	_, errs := OpenCUEDir(dir)
	require.Len(t, errs, 1)
	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeLoadFailed, le.Code)
}

func TestLoadMixedDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shop.yaml", shopYAML)
	writeFile(t, dir, "nested/util.cue", utilCUE)

	libs, errs := Load(dir)
	require.Empty(t, errs)
	require.Len(t, libs, 2)
	assert.Equal(t, "example.com/shop", libs[0].URI)
	assert.Equal(t, "example.com/util", libs[1].URI)
}

func TestLoadEmptyAndMissing(t *testing.T) {
	_, errs := Load(t.TempDir())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeNoFiles)

	_, errs = Load(filepath.Join(t.TempDir(), "missing"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeNotFound)
}

type failingSource struct{ err error }

func (f failingSource) Library(context.Context, string) (*decl.RawLibrary, error) {
	return nil, f.err
}

func TestChain(t *testing.T) {
	first := NewMemory(decl.RawLibrary{URI: "a", Declarations: []decl.RawDeclaration{{Name: "First"}}})
	second := NewMemory(
		decl.RawLibrary{URI: "a", Declarations: []decl.RawDeclaration{{Name: "Second"}}},
		decl.RawLibrary{URI: "b"},
	)
	broken := failingSource{err: errors.New("io")}

	chain := Chain{broken, first, second}

	lib, err := chain.Library(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"First"}, lib.Names())

	lib, err = chain.Library(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "b", lib.URI)

	_, err = chain.Library(context.Background(), "c")
	assert.EqualError(t, err, "io")

	_, err = Chain{first}.Library(context.Background(), "c")
	assert.ErrorIs(t, err, resolve.ErrLibraryNotFound)
}

func TestChainFeedsResolver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shop.yaml", shopYAML)
	y, errs := OpenYAMLDir(dir)
	require.Empty(t, errs)

	r, err := resolve.New(Chain{NewMemory(), y})
	require.NoError(t, err)
	defer r.Close()

	d, err := r.Lookup(context.Background(), "example.com/shop.Cart")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "example.com/shop#Cart", d.Reference())
}

func TestValidate(t *testing.T) {
	lib := decl.RawLibrary{
		URI: "example.com/shop",
		Declarations: []decl.RawDeclaration{
			{Name: "Box", TypeParameters: []decl.RawType{{Name: "T"}}, Fields: []decl.RawField{
				{Name: "value", Type: &decl.RawType{Name: "T"}},
				{Name: "count", Type: &decl.RawType{Name: "int"}},
				{Name: "clock", Type: &decl.RawType{Name: "Clock", Library: "example.com/util"}},
			}},
			{Name: "Box"},
			{Name: "Bad", Kind: "struct"},
			{Name: "Ghost", Superclass: &decl.RawType{Name: "Phantom"}},
		},
	}

	errs := Validate(lib)
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	assert.ElementsMatch(t, []string{ErrCodeDuplicateName, ErrCodeInvalidDecl, ErrCodeUnknownLocalRef}, codes)

	assert.Len(t, Validate(decl.RawLibrary{}), 1)
	assert.Empty(t, Validate(decl.RawLibrary{URI: "ok", Declarations: []decl.RawDeclaration{{Name: "A"}}}))
}

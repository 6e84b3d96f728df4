package executor

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/args"
	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/hint"
)

const fixtureURI = "github.com/roach88/mirror/internal/executor"

var (
	counterType = fixtureURI + ".counter"
	pointType   = fixtureURI + ".point"
	errBoom     = errors.New("boom")
)

type counter struct {
	Count   int
	Step    int
	Version int
	label   string
}

func newCounter(start int) *counter { return &counter{Count: start, Step: 1} }

func (c *counter) Increment() int { c.Count += c.Step; return c.Count }

func (c *counter) Add(n, times int) int { c.Count += n * times; return c.Count }

func (c *counter) Label() string { return c.label }

func (c *counter) SetLabel(s string) { c.label = s }

func (c *counter) Fail() error { return errBoom }

func (c *counter) Split() (int, int) { return c.Count, c.Step }

func (c *counter) Sum(xs ...int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func (c *counter) Explode() { panic("explode") }

type point struct {
	X, Y int
}

type classMap map[string]*decl.ClassDeclaration

func (m classMap) Class(typeName string) (*decl.ClassDeclaration, bool) {
	c, ok := m[typeName]
	return c, ok
}

func counterClass(t *testing.T) *decl.ClassDeclaration {
	t.Helper()
	member := decl.MemberOptions{LibraryURI: fixtureURI, Owner: "counter"}
	intType := decl.NewLink("", "int", decl.LinkOptions{})

	field := func(name string, final bool) *decl.FieldDeclaration {
		f, err := decl.NewNamedField(name, decl.FieldOptions{MemberOptions: member, Type: intType, Final: final})
		require.NoError(t, err)
		return f
	}
	method := func(name string, kind decl.MemberKind, params ...*decl.ParameterDeclaration) *decl.MethodDeclaration {
		return decl.NewMethod(name, decl.MethodOptions{MemberOptions: member, Kind: kind, Parameters: params})
	}

	return decl.NewClass("counter", decl.ClassOptions{
		LibraryURI: fixtureURI,
		Fields:     []*decl.FieldDeclaration{field("count", false), field("step", false), field("version", true)},
		Methods: []*decl.MethodDeclaration{
			method("", decl.MemberConstructor, decl.NewParameter("start", 0, decl.ParameterOptions{Type: intType})),
			method("increment", decl.MemberMethod),
			method("add", decl.MemberMethod,
				decl.NewParameter("n", 0, decl.ParameterOptions{Type: intType}),
				decl.NewParameter("times", 1, decl.ParameterOptions{Type: intType, Named: true, HasDefault: true, Default: 1})),
			method("label", decl.MemberGetter),
			method("label", decl.MemberSetter, decl.NewParameter("value", 0, decl.ParameterOptions{})),
			method("fail", decl.MemberMethod),
			method("split", decl.MemberMethod),
			method("sum", decl.MemberMethod),
		},
	})
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	require.Equal(t, counterType, c.AddType(&counter{}))
	require.Equal(t, pointType, c.AddType(point{}))
	require.NoError(t, c.AddConstructor(counterType, "", newCounter))
	require.NoError(t, c.AddConstructor(counterType, "zero", func() (*counter, error) { return &counter{Step: 1}, nil }))
	require.NoError(t, c.AddConstructor(counterType, "none", func() *counter { return nil }))
	return c
}

func newTestLive(t *testing.T, opts ...LiveOption) (*Live, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	opts = append([]LiveOption{
		WithMembers(classMap{counterType: counterClass(t)}),
		WithLiveLogger(logger),
	}, opts...)
	return NewLive(testCatalog(t), opts...), &buf
}

func counterHint() *hint.Funcs {
	return &hint.Funcs{
		Type: counterType,
		Constructors: map[string]func(*args.ExecutableArgument) (any, error){
			"": func(a *args.ExecutableArgument) (any, error) {
				start, err := a.At(0)
				if err != nil {
					return nil, err
				}
				return newCounter(start.(int)), nil
			},
			"none": func(*args.ExecutableArgument) (any, error) { return nil, nil },
		},
		Methods: map[string]func(any, *args.ExecutableArgument) (any, error){
			"increment": func(i any, _ *args.ExecutableArgument) (any, error) { return i.(*counter).Increment(), nil },
			"fail":      func(i any, _ *args.ExecutableArgument) (any, error) { return nil, i.(*counter).Fail() },
		},
		Getters: map[string]func(any) (any, error){
			"count": func(i any) (any, error) { return i.(*counter).Count, nil },
		},
		Setters: map[string]func(any, any) error{
			"count": func(i, v any) error { i.(*counter).Count = v.(int); return nil },
		},
	}
}

func testRegistry(t *testing.T) *hint.Registry {
	t.Helper()
	r := hint.NewRegistry()
	require.NoError(t, r.Register(counterHint()))
	return r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

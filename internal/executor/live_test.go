package executor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/args"
)

func TestLiveConstruct(t *testing.T) {
	l, _ := newTestLive(t)
	assert.Equal(t, BackendLive, l.Backend())

	c, err := New[*counter](l, counterType, "", args.Positional([]any{5}))
	require.NoError(t, err)
	assert.Equal(t, 5, c.Count)

	c, err = New[*counter](l, counterType, "zero", args.None())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Count)

	_, err = l.NewInstance(counterType, "none", args.None())
	assert.True(t, IsUnsupported(err))

	_, err = l.NewInstance(counterType, "missing", args.None())
	assert.True(t, IsConstructorNotFound(err))
}

func TestLiveConstructLiteral(t *testing.T) {
	l, _ := newTestLive(t)

	p, err := New[*point](l, pointType, "", args.Named(map[string]any{"x": 1, "y": 2}))
	require.NoError(t, err)
	assert.Equal(t, &point{X: 1, Y: 2}, p)

	_, err = l.NewInstance(pointType, "", args.Named(map[string]any{"z": 1}))
	assert.True(t, IsGenericResolution(err))

	_, err = l.NewInstance(pointType, "", args.Positional([]any{1, 2}))
	assert.True(t, IsGenericResolution(err))
}

func TestLiveUnknownTypeIsGenericResolution(t *testing.T) {
	l, _ := newTestLive(t)

	_, err := l.NewInstance("example.com/shop.Cart", "", args.None())
	assert.True(t, IsGenericResolution(err))
	assert.False(t, IsNotFound(err))
}

func TestLiveMemberKindValidation(t *testing.T) {
	l, logs := newTestLive(t)
	c := newCounter(0)

	_, err := l.InvokeMethod(c, "label", args.None())
	assert.True(t, IsMethodNotFound(err), "getter requested as a method")

	_, err = l.NewInstance(counterType, "increment", args.None())
	assert.True(t, IsConstructorNotFound(err), "method requested as a constructor")

	_, err = l.GetValue(c, "increment")
	assert.True(t, IsFieldAccess(err))

	err = l.SetValue(c, "version", 2)
	assert.True(t, IsFieldMutation(err), "final field")

	assert.Empty(t, logs.String(), "conclusive validations do not warn")
}

func TestLiveInconclusiveValidationWarns(t *testing.T) {
	l, logs := newTestLive(t, WithMembers(nil))
	c := newCounter(1)

	n, err := l.InvokeMethod(c, "increment", args.None())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, logs.String(), "fallback=invoke-only")
	assert.Contains(t, logs.String(), "member=increment")

	// Metadata present but silent about the member.
	l, logs = newTestLive(t)
	assert.Panics(t, func() { _, _ = l.InvokeMethod(c, "explode", args.None()) }, "panics are not recovered")
	assert.Contains(t, logs.String(), "fallback=invoke-only")
}

func TestLiveNamedArguments(t *testing.T) {
	l, _ := newTestLive(t)

	tests := []struct {
		name string
		args *args.ExecutableArgument
		want int
	}{
		{"explicit", args.Unmodified(map[string]any{"times": 3}, []any{2}), 6},
		{"default", args.Positional([]any{2}), 2},
		{"float to int", args.Positional([]any{2.0}), 2},
		{"int64", args.Unmodified(map[string]any{"times": int8(2)}, []any{int64(2)}), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := l.InvokeMethod(newCounter(0), "add", tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestLiveArgumentFailures(t *testing.T) {
	l, _ := newTestLive(t)
	bare := NewLive(testCatalog(t), WithLiveLogger(discardLogger()))
	c := newCounter(0)

	tests := []struct {
		name string
		e    *Live
		args *args.ExecutableArgument
	}{
		{"unknown named", l, args.Unmodified(map[string]any{"twice": true}, []any{1})},
		{"missing positional", l, args.Named(map[string]any{"times": 2})},
		{"lossy float", l, args.Positional([]any{2.5})},
		{"wrong type", l, args.Positional([]any{"two"})},
		{"nil for int", l, args.Positional([]any{nil})},
		{"too many positional", l, args.Positional([]any{1, 2})},
		{"named without metadata", bare, args.Unmodified(map[string]any{"times": 2}, []any{1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.e.InvokeMethod(c, "add", tt.args)
			assert.True(t, IsGenericResolution(err), "got %v", err)
		})
	}
}

func TestLiveResults(t *testing.T) {
	l, _ := newTestLive(t)
	c := newCounter(3)

	_, err := l.InvokeMethod(c, "fail", args.None())
	assert.True(t, errors.Is(err, errBoom))
	assert.Empty(t, CodeOf(err), "errors from invoked code are not wrapped")

	v, err := l.InvokeMethod(c, "split", args.None())
	require.NoError(t, err)
	assert.Equal(t, []any{3, 1}, v)

	v, err = l.InvokeMethod(c, "sum", args.Positional([]any{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, 6, v)

	v, err = l.InvokeMethod(c, "sum", args.None())
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	_, err = l.InvokeMethod(c, "reset", args.None())
	assert.True(t, IsMethodNotFound(err))
}

func TestLiveFields(t *testing.T) {
	l, _ := newTestLive(t)
	c := newCounter(1)

	v, err := l.GetValue(c, "count")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, l.SetValue(c, "count", 7))
	assert.Equal(t, 7, c.Count)

	require.NoError(t, l.SetValue(c, "label", "hits"))
	v, err = l.GetValue(c, "label")
	require.NoError(t, err)
	assert.Equal(t, "hits", v)

	err = l.SetValue(c, "count", "many")
	assert.True(t, IsGenericResolution(err))

	_, err = l.GetValue(c, "missing")
	assert.True(t, IsFieldAccess(err))

	err = l.SetValue(c, "missing", 1)
	assert.True(t, IsFieldMutation(err))

	err = l.SetValue(counter{}, "count", 1)
	assert.True(t, IsFieldMutation(err), "value receivers are not addressable")
}

func TestLiveDisabled(t *testing.T) {
	l, _ := newTestLive(t, WithIntrospection(false))
	c := newCounter(0)

	_, err := l.NewInstance(counterType, "", args.Positional([]any{1}))
	assert.True(t, IsGenericResolution(err))
	_, err = l.InvokeMethod(c, "increment", args.None())
	assert.True(t, IsGenericResolution(err))
	_, err = l.GetValue(c, "count")
	assert.True(t, IsGenericResolution(err))
	assert.True(t, IsGenericResolution(l.SetValue(c, "count", 1)))
	assert.Equal(t, 0, c.Count)
}

func TestCatalog(t *testing.T) {
	c := testCatalog(t)
	assert.Equal(t, []string{counterType, pointType}, c.Types())

	assert.Error(t, c.AddConstructor(counterType, "bad", 42))
	assert.Error(t, c.AddConstructor(counterType, "bad", func() {}))
	assert.Error(t, c.AddConstructor(counterType, "bad", func() (int, int) { return 0, 0 }))

	_, ok := c.Constructor(counterType, "bad")
	assert.False(t, ok)
	_, ok = c.Type("a.Missing")
	assert.False(t, ok)
}

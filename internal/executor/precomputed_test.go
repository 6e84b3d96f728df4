package executor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/args"
	"github.com/roach88/mirror/internal/hint"
)

func TestPrecomputedRoundTrip(t *testing.T) {
	p := NewPrecomputed(testRegistry(t))
	assert.Equal(t, BackendPrecomputed, p.Backend())

	c, err := New[*counter](p, counterType, "", args.Positional([]any{4}))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Count)

	n, err := Invoke[int](p, c, "increment", args.None())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, p.SetValue(c, "count", 10))
	got, err := Get[int](p, c, "count")
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}

func TestPrecomputedMissingHint(t *testing.T) {
	p := NewPrecomputed(hint.NewRegistry())

	_, err := p.NewInstance("example.com/shop.Cart", "", args.None())
	assert.True(t, IsConstructorNotFound(err))

	_, err = p.InvokeMethod(&counter{}, "increment", args.None())
	assert.True(t, IsMethodNotFound(err))

	_, err = p.GetValue(&counter{}, "count")
	assert.True(t, IsFieldAccess(err))

	err = p.SetValue(&counter{}, "count", 1)
	assert.True(t, IsFieldMutation(err))

	_, err = NewPrecomputed(nil).NewInstance(counterType, "", args.None())
	assert.True(t, IsConstructorNotFound(err))
}

func TestPrecomputedNotExecuted(t *testing.T) {
	p := NewPrecomputed(testRegistry(t))
	c := newCounter(0)

	_, err := p.NewInstance(counterType, "named", args.None())
	assert.True(t, IsConstructorNotFound(err))

	_, err = p.InvokeMethod(c, "reset", args.None())
	var ie *InvocationError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, ErrCodeMethodNotFound, ie.Code)
	assert.Equal(t, counterType, ie.Type)
	assert.Equal(t, "reset", ie.Member)

	_, err = p.GetValue(c, "label")
	assert.True(t, IsFieldAccess(err))

	err = p.SetValue(c, "label", "x")
	assert.True(t, IsFieldMutation(err))
}

func TestPrecomputedExecutedWithoutValue(t *testing.T) {
	p := NewPrecomputed(testRegistry(t))

	_, err := p.NewInstance(counterType, "none", args.None())
	assert.True(t, IsUnsupported(err))
	assert.False(t, IsNotFound(err))
}

func TestPrecomputedPropagatesErrors(t *testing.T) {
	p := NewPrecomputed(testRegistry(t))

	_, err := p.NewInstance(counterType, "", args.None())
	assert.True(t, errors.Is(err, args.ErrIndexOutOfRange), "range failure propagates unchanged")
	assert.Empty(t, CodeOf(err))

	_, err = p.InvokeMethod(newCounter(0), "fail", args.None())
	assert.Same(t, errBoom, err)
}

func TestGenericHelpersTypeMismatch(t *testing.T) {
	p := NewPrecomputed(testRegistry(t))
	c := newCounter(1)

	_, err := Invoke[string](p, c, "increment", args.None())
	assert.True(t, IsGenericResolution(err))

	_, err = New[point](p, counterType, "", args.Positional([]any{1}))
	assert.True(t, IsGenericResolution(err))

	_, err = Get[int](p, c, "missing")
	assert.True(t, IsFieldAccess(err), "executor errors pass through unchanged")
}

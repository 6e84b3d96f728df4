package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/args"
)

func buildTest(t *testing.T, s Settings) *Resolving {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	r, err := Build(ctx, s, testRegistry(t), testCatalog(t), classMap{counterType: counterClass(t)}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestBuild_Defaults(t *testing.T) {
	r := buildTest(t, DefaultSettings())
	assert.Equal(t, BackendPrecomputed, r.Primary().Backend())
	assert.Equal(t, BackendLive, r.Secondary().Backend())

	c, err := r.NewInstance(counterType, "", args.Positional([]any{5}))
	require.NoError(t, err)

	// add has no hint and resolves through the live backend.
	v, err := r.InvokeMethod(c, "add", args.Positional([]any{2}))
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestBuild_LivePrimary(t *testing.T) {
	s := DefaultSettings()
	s.Primary = BackendLive
	r := buildTest(t, s)
	assert.Equal(t, BackendLive, r.Primary().Backend())
	assert.Equal(t, BackendPrecomputed, r.Secondary().Backend())
}

func TestBuild_IntrospectionDisabled(t *testing.T) {
	s := DefaultSettings()
	s.Introspection = false
	r := buildTest(t, s)

	c, err := r.NewInstance(counterType, "", args.Positional([]any{1}))
	require.NoError(t, err)

	_, err = r.InvokeMethod(c, "add", args.Positional([]any{2}))
	require.Error(t, err)
	assert.Equal(t, ErrCodeMethodNotFound, CodeOf(err))
}

func TestBuild_NoFallback(t *testing.T) {
	s := DefaultSettings()
	s.Fallback = false
	r := buildTest(t, s)

	c, err := r.NewInstance(counterType, "", args.Positional([]any{1}))
	require.NoError(t, err)

	_, err = r.InvokeMethod(c, "add", args.Positional([]any{2}))
	assert.True(t, IsNotFound(err))
}

func TestBuild_OffContext(t *testing.T) {
	s := DefaultSettings()
	s.OffContext = true
	r := buildTest(t, s)

	c, err := r.NewInstance(counterType, "zero", args.None())
	require.NoError(t, err)

	v, err := r.InvokeMethod(c, "add", args.Positional([]any{3}))
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestBuild_CloseStopsWorker(t *testing.T) {
	s := DefaultSettings()
	s.OffContext = true
	r, err := Build(context.Background(), s, testRegistry(t), testCatalog(t), nil, discardLogger())
	require.NoError(t, err)

	c, err := r.NewInstance(counterType, "zero", args.None())
	require.NoError(t, err)

	r.Close()
	r.Close()

	_, err = r.NewInstance(counterType, "zero", args.None())
	assert.True(t, IsConstructorNotFound(err), "live fallback is unavailable once closed")

	v, err := r.InvokeMethod(c, "increment", args.None())
	require.NoError(t, err, "precomputed calls do not use the worker")
	assert.Equal(t, 1, v)
}

func TestBuild_UnknownPrimary(t *testing.T) {
	s := DefaultSettings()
	s.Primary = BackendResolving
	_, err := Build(context.Background(), s, testRegistry(t), testCatalog(t), nil, nil)
	assert.ErrorContains(t, err, `unknown executor backend "resolving"`)
}

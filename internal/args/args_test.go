package args

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmodified_PreservesInputs(t *testing.T) {
	named := map[string]any{"count": 5, "enabled": true, "label": nil}
	positional := []any{1, nil, "x", 2.5}

	a := Unmodified(named, positional)

	assert.Equal(t, positional, a.PositionalArguments())
	assert.Equal(t, named, a.NamedArguments())

	sym := a.SymbolizedNamedArguments()
	require.Len(t, sym, len(named))
	for k, v := range named {
		got, ok := sym[SymbolFor(k)]
		require.True(t, ok, "symbol for %q missing", k)
		assert.Equal(t, v, got)
	}
}

func TestUnmodified_CopiesInputs(t *testing.T) {
	named := map[string]any{"a": 1}
	positional := []any{1, 2}

	a := Unmodified(named, positional)
	named["b"] = 2
	positional[0] = 99

	assert.Equal(t, map[string]any{"a": 1}, a.NamedArguments())
	assert.Equal(t, []any{1, 2}, a.PositionalArguments())

	// Returned views are copies too.
	view := a.PositionalArguments()
	view[1] = "mutated"
	assert.Equal(t, []any{1, 2}, a.PositionalArguments())
}

func TestEmptyFactories(t *testing.T) {
	for name, a := range map[string]*ExecutableArgument{
		"none":     None(),
		"optional": Optional(nil, nil),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, a.PositionalArguments())
			assert.NotNil(t, a.PositionalArguments())
			assert.Empty(t, a.NamedArguments())
			assert.Empty(t, a.SymbolizedNamedArguments())
			assert.True(t, a.IsEmpty())
		})
	}
}

func TestNamedFactory(t *testing.T) {
	a := Named(map[string]any{"count": 5, "enabled": true})

	assert.Equal(t, []any{}, a.PositionalArguments())
	assert.Equal(t, map[string]any{"count": 5, "enabled": true}, a.NamedArguments())
}

func TestPositionalFactory(t *testing.T) {
	a := Positional([]any{1, "hello", true})

	v, err := a.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = a.Get(5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	var re *RangeError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 5, re.Index)
	assert.Equal(t, 3, re.Len)
}

func TestArgument_Positional(t *testing.T) {
	values := []any{"a", nil, 3}
	a := Positional(values)

	for i := range values {
		v, err := a.Argument(i, LookupPositional)
		require.NoError(t, err)
		assert.Equal(t, values[i], v)
	}

	for _, idx := range []int{-1, 3, 100} {
		_, err := a.Argument(idx, LookupPositional)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", idx)
	}

	_, err := a.Argument("name", LookupPositional)
	var ke *KeyError
	assert.ErrorAs(t, err, &ke)
}

func TestArgument_Named(t *testing.T) {
	a := Named(map[string]any{"present": 1, "explicitNil": nil})

	v, err := a.Argument("present", LookupNamed)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = a.Argument("explicitNil", LookupNamed)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = a.Argument("absent", LookupNamed)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = a.Argument(SymbolFor("present"), LookupNamed)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = a.Argument(0, LookupNamed)
	var ke *KeyError
	assert.ErrorAs(t, err, &ke)
}

func TestLookup_DistinguishesPresence(t *testing.T) {
	a := Named(map[string]any{"explicitNil": nil})

	v, ok := a.Lookup("explicitNil")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = a.Lookup("absent")
	assert.False(t, ok)
}

func TestArgument_Auto(t *testing.T) {
	a := Unmodified(map[string]any{"name": "n"}, []any{"p0", "p1"})

	tests := []struct {
		name    string
		key     any
		want    any
		wantErr bool
	}{
		{"string key", "name", "n", false},
		{"symbol key", SymbolFor("name"), "n", false},
		{"int key", 1, "p1", false},
		{"int64 key", int64(0), "p0", false},
		{"uint8 key", uint8(1), "p1", false},
		{"out of range", 2, nil, true},
		{"float key", 1.0, nil, false},
		{"bool key", true, nil, false},
		{"nil key", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := a.Argument(tt.key, LookupAuto)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIndexOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestString_Deterministic(t *testing.T) {
	a := Unmodified(map[string]any{"b": 2, "a": 1}, []any{"x"})
	assert.Equal(t, "(x, a: 1, b: 2)", a.String())
	assert.Equal(t, "()", None().String())
	assert.Equal(t, "(a: 1)", Named(map[string]any{"a": 1}).String())
}

func TestNilReceiver(t *testing.T) {
	var a *ExecutableArgument
	assert.Equal(t, 0, a.Len())
	assert.Empty(t, a.NamedArguments())
	_, err := a.At(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestLookupMode_String(t *testing.T) {
	assert.Equal(t, "auto", LookupAuto.String())
	assert.Equal(t, "named", LookupNamed.String())
	assert.Equal(t, "positional", LookupPositional.String())
	assert.Equal(t, "LookupMode(9)", LookupMode(9).String())
}

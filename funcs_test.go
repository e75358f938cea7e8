package gotemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeFunc(t *testing.T) {
	out, err := rangeFunc(3)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, out)

	out, err = rangeFunc(1, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, out)

	out, err = rangeFunc(5, 0, -2)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 1}, out)

	_, err = rangeFunc(1, 2, 0)
	assert.Error(t, err)
}

func TestIndexFunc(t *testing.T) {
	v, err := indexFunc([]string{"a", "b", "c"}, int64(1))
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	v, err = indexFunc(map[string]int{"x": 9}, "x")
	require.NoError(t, err)
	assert.Equal(t, 9, v)

	v, err = indexFunc(map[string]int{"x": 9}, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = indexFunc([]string{"a"}, int64(5))
	assert.Error(t, err)
}

func TestArithFuncs(t *testing.T) {
	add := arith("add")
	v, err := add(int64(1), int64(2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = add("foo", "bar")
	require.NoError(t, err)
	assert.Equal(t, "foobar", v)

	v, err = add(1.5, int64(1))
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	div := arith("div")
	_, err = div(int64(1), int64(0))
	assert.Error(t, err)

	mod := arith("mod")
	_, err = mod(1.0, 2.0)
	assert.Error(t, err)
}

func TestComparisonFuncs(t *testing.T) {
	ok, err := eqFunc(int64(1), int64(1), int64(2))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = neFunc("a", "b")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ltFunc(int64(1), int64(2))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = geFunc("b", "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNotFunc(t *testing.T) {
	assert.True(t, notFunc(""))
	assert.False(t, notFunc("x"))
	assert.True(t, notFunc(int64(0)))
}

func TestDefaultFunc(t *testing.T) {
	assert.Equal(t, "x", defaultFunc("fallback", "x"))
	assert.Equal(t, "fallback", defaultFunc("fallback", ""))
}

func TestURLEncodeFunc(t *testing.T) {
	assert.Equal(t, "a+b%26c", urlencodeFunc("a b&c"))
}

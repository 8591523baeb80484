package trig

import (
	"testing"

	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
	"github.com/stretchr/testify/require"
)

func TestSinSinProductToSum(t *testing.T) {
	omega := symbols.New("a")
	a := NewKey(Sin, 1)
	b := NewKey(Sin, 2)

	var out [term.MaxArity]Key
	var neg [term.MaxArity]bool
	n := a.Mul(b, omega, &out, &neg)
	require.Equal(t, 2, n)
	require.Equal(t, Key{Kind: Cos, Arg: NewKey(Cos, -1).Arg}, out[0])
	require.False(t, neg[0])
	require.Equal(t, Key{Kind: Cos, Arg: NewKey(Cos, 3).Arg}, out[1])
	require.True(t, neg[1])
}

func TestSinOfZeroArgIsIgnorable(t *testing.T) {
	omega := symbols.New("a")
	require.True(t, NewKey(Sin, 0).IsIgnorable(omega))
	require.False(t, NewKey(Cos, 0).IsIgnorable(omega))
	require.False(t, NewKey(Sin, 1).IsIgnorable(omega))
}

func TestHashDistinguishesSinAndCos(t *testing.T) {
	require.NotEqual(t, NewKey(Sin, 1).Hash(), NewKey(Cos, 1).Hash())
}

func TestEqual(t *testing.T) {
	require.True(t, NewKey(Sin, 1, 2).Equal(NewKey(Sin, 1, 2)))
	require.False(t, NewKey(Sin, 1, 2).Equal(NewKey(Cos, 1, 2)))
}

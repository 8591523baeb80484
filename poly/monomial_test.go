package poly

import (
	"testing"

	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/stretchr/testify/require"
)

func TestMulSumsExponents(t *testing.T) {
	a := NewMonomial(1, 2)
	b := NewMonomial(3, 0)

	var out [4]Monomial
	var neg [4]bool
	n := a.Mul(b, symbols.New("x", "y"), &out, &neg)
	require.Equal(t, 1, n)
	require.Equal(t, NewMonomial(4, 2), out[0])
	require.False(t, neg[0])
}

func TestEqualRequiresSameLength(t *testing.T) {
	a := NewMonomial(1, 0)
	b := NewMonomial(1, 0, 0)
	require.False(t, a.Equal(b))
}

func TestTotalDegree(t *testing.T) {
	require.Equal(t, 0, NewMonomial().TotalDegree())
	require.Equal(t, 5, NewMonomial(2, 3).TotalDegree())
}

func TestIsCompatible(t *testing.T) {
	m := NewMonomial(1, 2)
	require.True(t, m.IsCompatible(symbols.New("x", "y")))
	require.False(t, m.IsCompatible(symbols.New("x")))
}

func TestHashConsistentWithEqual(t *testing.T) {
	a := NewMonomial(1, 2, 3)
	b := NewMonomial(1, 2, 3)
	require.Equal(t, a.Hash(), b.Hash())
}

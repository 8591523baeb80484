package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualRequiresSameOrder(t *testing.T) {
	a := New("x", "y")
	b := New("y", "x")
	require.False(t, a.Equal(b))
	require.True(t, a.Equal(New("x", "y")))
}

func TestLenAndName(t *testing.T) {
	s := New("x", "y", "z")
	require.Equal(t, 3, s.Len())
	require.Equal(t, "y", s.Name(1))
}

func TestNewCopiesNames(t *testing.T) {
	names := []string{"x", "y"}
	s := New(names...)
	names[0] = "mutated"
	require.Equal(t, "x", s.Name(0))
}

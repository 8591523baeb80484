package truncate

import (
	"testing"

	"github.com/biscani-labs/seriesmul/coeff"
	"github.com/biscani-labs/seriesmul/poly"
	"github.com/biscani-labs/seriesmul/term"
	"github.com/stretchr/testify/require"
)

func monoTerm(e int32) term.Term[poly.Monomial, coeff.Float64] {
	return term.Term[poly.Monomial, coeff.Float64]{Key: poly.NewMonomial(e), Coeff: 1}
}

func TestNoneIsInactive(t *testing.T) {
	n := None[poly.Monomial, coeff.Float64]()
	require.Equal(t, Inactive, n.Kind())
	require.False(t, IsActive[poly.Monomial, coeff.Float64](n))
	require.False(t, n.Skip(monoTerm(5), monoTerm(5)))
	require.False(t, n.Filter(monoTerm(5)))
}

func TestDegreeCutoffKindAndSkip(t *testing.T) {
	tr := NewDegreeCutoff[poly.Monomial, coeff.Float64](5, poly.Monomial.TotalDegree)
	require.Equal(t, Skipping, tr.Kind())
	require.True(t, IsActive[poly.Monomial, coeff.Float64](tr))

	require.False(t, tr.Skip(monoTerm(2), monoTerm(3)))
	require.True(t, tr.Skip(monoTerm(3), monoTerm(3)))
}

func TestDegreeCutoffFilter(t *testing.T) {
	tr := NewDegreeCutoff[poly.Monomial, coeff.Float64](5, poly.Monomial.TotalDegree)
	require.False(t, tr.Filter(monoTerm(5)))
	require.True(t, tr.Filter(monoTerm(6)))
}

func TestDegreeCutoffCompareTermsAscending(t *testing.T) {
	tr := NewDegreeCutoff[poly.Monomial, coeff.Float64](10, poly.Monomial.TotalDegree)
	require.True(t, tr.CompareTerms(monoTerm(1), monoTerm(2)))
	require.False(t, tr.CompareTerms(monoTerm(2), monoTerm(1)))
	require.False(t, tr.CompareTerms(monoTerm(2), monoTerm(2)))
}

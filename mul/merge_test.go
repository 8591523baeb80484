package mul

import (
	"testing"

	"github.com/biscani-labs/seriesmul/accum"
	"github.com/biscani-labs/seriesmul/coeff"
	"github.com/biscani-labs/seriesmul/poly"
	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
	"github.com/stretchr/testify/require"
)

func TestFinalMergeCombinesAcrossSources(t *testing.T) {
	omega := symbols.New("x")
	target := accum.New[poly.Monomial, coeff.Float64](0)
	require.NoError(t, target.Rehash(64))

	src1 := accum.New[poly.Monomial, coeff.Float64](0)
	src2 := accum.New[poly.Monomial, coeff.Float64](0)
	_, err := src1.Insert(term.Term[poly.Monomial, coeff.Float64]{Key: poly.NewMonomial(1), Coeff: 2}, omega)
	require.NoError(t, err)
	_, err = src2.Insert(term.Term[poly.Monomial, coeff.Float64]{Key: poly.NewMonomial(1), Coeff: 3}, omega)
	require.NoError(t, err)
	_, err = src2.Insert(term.Term[poly.Monomial, coeff.Float64]{Key: poly.NewMonomial(2), Coeff: 1}, omega)
	require.NoError(t, err)

	require.NoError(t, finalMerge(target, []*accum.Accumulator[poly.Monomial, coeff.Float64]{src1, src2}, omega))
	require.Equal(t, 2, target.Len())

	got := target.Find(poly.NewMonomial(1))
	require.NotNil(t, got)
	require.Equal(t, coeff.Float64(5), got.Coeff)
}

func TestFinalMergeEmptySources(t *testing.T) {
	omega := symbols.New("x")
	target := accum.New[poly.Monomial, coeff.Float64](0)
	require.NoError(t, finalMerge(target, nil, omega))
	require.Equal(t, 0, target.Len())
}

func TestFinalMergeRehashesOnOverflow(t *testing.T) {
	omega := symbols.New("x")
	target := accum.New[poly.Monomial, coeff.Float64](0)
	require.NoError(t, target.Rehash(8))

	src := accum.New[poly.Monomial, coeff.Float64](0)
	for i := int32(0); i < 50; i++ {
		_, err := src.Insert(term.Term[poly.Monomial, coeff.Float64]{Key: poly.NewMonomial(i), Coeff: 1}, omega)
		require.NoError(t, err)
	}

	require.NoError(t, finalMerge(target, []*accum.Accumulator[poly.Monomial, coeff.Float64]{src}, omega))
	require.Equal(t, 50, target.Len())
	require.LessOrEqual(t, target.LoadFactor(), target.MaxLoadFactor())
}

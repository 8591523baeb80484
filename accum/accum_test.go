package accum

import (
	"math/rand"
	"testing"

	"github.com/biscani-labs/seriesmul/coeff"
	"github.com/biscani-labs/seriesmul/poly"
	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
	"github.com/stretchr/testify/require"
)

func mono(e ...int32) poly.Monomial { return poly.NewMonomial(e...) }

func TestInsertCombinesAndErases(t *testing.T) {
	omega := symbols.New("x", "y")
	a := New[poly.Monomial, coeff.Float64](0)

	grew, err := a.Insert(term.Term[poly.Monomial, coeff.Float64]{Key: mono(1, 0), Coeff: 3}, omega)
	require.NoError(t, err)
	require.True(t, grew)
	require.Equal(t, 1, a.Len())

	grew, err = a.Insert(term.Term[poly.Monomial, coeff.Float64]{Key: mono(1, 0), Coeff: -3}, omega)
	require.NoError(t, err)
	require.False(t, grew)
	require.Equal(t, 0, a.Len())

	found := a.Find(mono(1, 0))
	require.Nil(t, found)
}

func TestInsertManyAndFind(t *testing.T) {
	omega := symbols.New("x", "y")
	a := New[poly.Monomial, coeff.Float64](0)

	const n = 500
	rng := rand.New(rand.NewSource(1))
	want := map[[2]int32]float64{}
	for i := 0; i < n; i++ {
		e0, e1 := int32(rng.Intn(50)), int32(rng.Intn(50))
		c := float64(rng.Intn(20) - 10)
		_, err := a.Insert(term.Term[poly.Monomial, coeff.Float64]{Key: mono(e0, e1), Coeff: coeff.Float64(c)}, omega)
		require.NoError(t, err)
		want[[2]int32{e0, e1}] += c
	}

	got := map[[2]int32]float64{}
	a.All(func(tm *term.Term[poly.Monomial, coeff.Float64]) bool {
		got[[2]int32{tm.Key.Exp[0], tm.Key.Exp[1]}] = float64(tm.Coeff)
		return true
	})

	for k, v := range want {
		if v == 0 {
			require.NotContains(t, got, k)
			continue
		}
		require.InDelta(t, v, got[k], 1e-9)
	}
}

func TestMergeMatchesInsertSemantics(t *testing.T) {
	omega := symbols.New("x")
	direct := New[poly.Monomial, coeff.Float64](0)
	merged := New[poly.Monomial, coeff.Float64](0)

	terms := []term.Term[poly.Monomial, coeff.Float64]{
		{Key: mono(1), Coeff: 2},
		{Key: mono(2), Coeff: 5},
		{Key: mono(1), Coeff: -2},
		{Key: mono(3), Coeff: 1},
	}
	for _, tm := range terms {
		_, err := direct.Insert(tm, omega)
		require.NoError(t, err)
	}
	for _, tm := range terms {
		bucket, err := merged.Bucket(tm.Key)
		if err != nil {
			require.NoError(t, merged.Rehash(8))
			bucket, err = merged.Bucket(tm.Key)
			require.NoError(t, err)
		}
		merged.Merge(tm, bucket, omega)
	}

	require.Equal(t, direct.Len(), merged.Len())
	direct.All(func(tm *term.Term[poly.Monomial, coeff.Float64]) bool {
		got := merged.Find(tm.Key)
		require.NotNil(t, got)
		require.Equal(t, tm.Coeff, got.Coeff)
		return true
	})
}

func TestRehashPreservesContent(t *testing.T) {
	omega := symbols.New("x")
	a := New[poly.Monomial, coeff.Float64](0)
	for i := int32(0); i < 200; i++ {
		_, err := a.Insert(term.Term[poly.Monomial, coeff.Float64]{Key: mono(i), Coeff: coeff.Float64(i)}, omega)
		require.NoError(t, err)
	}
	before := a.Len()
	require.NoError(t, a.Rehash(1000))
	require.Equal(t, before, a.Len())
	for i := int32(0); i < 200; i++ {
		got := a.Find(mono(i))
		require.NotNil(t, got)
		require.Equal(t, coeff.Float64(i), got.Coeff)
	}
}

func TestClearEmptiesWithoutDeallocating(t *testing.T) {
	omega := symbols.New("x")
	a := New[poly.Monomial, coeff.Float64](0)
	for i := int32(0); i < 20; i++ {
		_, err := a.Insert(term.Term[poly.Monomial, coeff.Float64]{Key: mono(i), Coeff: 1}, omega)
		require.NoError(t, err)
	}
	cap := a.BucketCount()
	a.Clear()
	require.Equal(t, 0, a.Len())
	require.Equal(t, cap, a.BucketCount())
	require.Nil(t, a.Find(mono(0)))
}

func TestBucketZeroCapacity(t *testing.T) {
	a := New[poly.Monomial, coeff.Float64](0)
	_, err := a.Bucket(mono(1))
	require.Error(t, err)
}

package mul

import (
	"sync"
	"testing"

	"github.com/biscani-labs/seriesmul/coeff"
	"github.com/biscani-labs/seriesmul/config"
	"github.com/biscani-labs/seriesmul/poly"
	"github.com/biscani-labs/seriesmul/series"
	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
	"github.com/biscani-labs/seriesmul/truncate"
	"github.com/biscani-labs/seriesmul/xerrors"
	"github.com/stretchr/testify/require"
)

func monoTerm1(e int32, c float64) term.Term[poly.Monomial, coeff.Float64] {
	return term.Term[poly.Monomial, coeff.Float64]{Key: poly.NewMonomial(e), Coeff: coeff.Float64(c)}
}

func TestMultiplyRequiresMatchingOmega(t *testing.T) {
	a := series.New[poly.Monomial, coeff.Float64](symbols.New("x"))
	b := series.New[poly.Monomial, coeff.Float64](symbols.New("y"))
	_, err := Multiply(a, b, truncate.None[poly.Monomial, coeff.Float64]())
	require.ErrorIs(t, err, xerrors.ErrIncompatibleSymbols)
}

func TestMultiplyEmptyOperandShortCircuits(t *testing.T) {
	omega := symbols.New("x")
	a := series.New[poly.Monomial, coeff.Float64](omega)
	b := series.New[poly.Monomial, coeff.Float64](omega)
	require.NoError(t, b.Insert(monoTerm1(1, 1)))

	result, err := Multiply(a, b, truncate.None[poly.Monomial, coeff.Float64]())
	require.NoError(t, err)
	require.Equal(t, 0, result.Len())
}

func TestMultiplyXPlusOneTimesXMinusOne(t *testing.T) {
	omega := symbols.New("x")
	s1 := series.New[poly.Monomial, coeff.Float64](omega)
	require.NoError(t, s1.Insert(monoTerm1(1, 1)))
	require.NoError(t, s1.Insert(monoTerm1(0, 1)))
	s2 := series.New[poly.Monomial, coeff.Float64](omega)
	require.NoError(t, s2.Insert(monoTerm1(1, 1)))
	require.NoError(t, s2.Insert(monoTerm1(0, -1)))

	result, err := Multiply(s1, s2, truncate.None[poly.Monomial, coeff.Float64]())
	require.NoError(t, err)
	require.Equal(t, 2, result.Len())

	sq := result.Accumulator().Find(poly.NewMonomial(2))
	require.NotNil(t, sq)
	require.Equal(t, coeff.Float64(1), sq.Coeff)

	constTerm := result.Accumulator().Find(poly.NewMonomial(0))
	require.NotNil(t, constTerm)
	require.Equal(t, coeff.Float64(-1), constTerm.Coeff)

	linear := result.Accumulator().Find(poly.NewMonomial(1))
	require.Nil(t, linear)
}

// TestMultiplyParallelMatchesSingleThreaded covers spec scenario S5: the
// same operand pair multiplied with n_threads in {1,2,4,8} must produce
// term-for-term equal results.
func TestMultiplyParallelMatchesSingleThreaded(t *testing.T) {
	omega := symbols.New("x")
	const n = 300
	s1 := series.New[poly.Monomial, coeff.Float64](omega)
	s2 := series.New[poly.Monomial, coeff.Float64](omega)
	for i := int32(0); i < n; i++ {
		require.NoError(t, s1.Insert(monoTerm1(i, float64(i+1))))
		require.NoError(t, s2.Insert(monoTerm1(i, float64(2*i+1))))
	}

	saved := config.Global()
	defer config.SetGlobal(saved)

	config.SetGlobal(config.New(config.WithNThreads(1)))
	reference, err := Multiply(s1, s2, truncate.None[poly.Monomial, coeff.Float64]())
	require.NoError(t, err)

	for _, nThreads := range []int{1, 2, 4, 8} {
		config.SetGlobal(config.New(config.WithNThreads(nThreads), config.WithMinWorkPerThread(1)))
		got, err := Multiply(s1, s2, truncate.None[poly.Monomial, coeff.Float64]())
		require.NoError(t, err)

		require.Equal(t, reference.Len(), got.Len(), "nThreads=%d", nThreads)
		reference.All(func(tm *term.Term[poly.Monomial, coeff.Float64]) bool {
			match := got.Accumulator().Find(tm.Key)
			require.NotNil(t, match, "nThreads=%d missing key", nThreads)
			require.InDelta(t, float64(tm.Coeff), float64(match.Coeff), 1e-9, "nThreads=%d", nThreads)
			return true
		})
	}
}

func TestWithTraceInvokedOnSingleThreaded(t *testing.T) {
	omega := symbols.New("x")
	s1 := series.New[poly.Monomial, coeff.Float64](omega)
	require.NoError(t, s1.Insert(monoTerm1(1, 1)))
	s2 := series.New[poly.Monomial, coeff.Float64](omega)
	require.NoError(t, s2.Insert(monoTerm1(1, 1)))

	var mu sync.Mutex
	calls := 0
	_, err := Multiply(s1, s2, truncate.None[poly.Monomial, coeff.Float64](), WithTrace[poly.Monomial, coeff.Float64](func(estimated, actual uint64) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))
	require.NoError(t, err)
	require.GreaterOrEqual(t, calls, 1)
}

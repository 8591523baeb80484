package mul

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/biscani-labs/seriesmul/accum"
	"github.com/biscani-labs/seriesmul/config"
	"github.com/biscani-labs/seriesmul/series"
	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
	"github.com/biscani-labs/seriesmul/truncate"
	"github.com/biscani-labs/seriesmul/xerrors"
)

type workerContextKey struct{}

// options holds the per-call configuration installed by Option values.
type options[K term.Key[K], C term.Coefficient[C]] struct {
	trace   func(estimated, actual uint64)
	pinCPUs bool
}

// Option configures a single call to Multiply or MultiplyContext.
type Option[K term.Key[K], C term.Coefficient[C]] func(*options[K, C])

// WithTrace installs a callback invoked once per density estimate computed
// during the call: once per worker thread (comparing that thread's
// pre-multiplication estimate against its accumulator's actual final size),
// and once more for the whole-operand estimate used to size the final merge
// target. This mirrors the diagnostic trace_estimates performs in the
// reference multiplier this package is ported from, tracking how often the
// estimator's guess and the real outcome agree. Defaults to nil (no
// tracing, no cost) when not supplied. fn may be invoked concurrently from
// multiple worker goroutines when the driver runs multi-threaded, and must
// synchronize its own access to any shared state.
func WithTrace[K term.Key[K], C term.Coefficient[C]](fn func(estimated, actual uint64)) Option[K, C] {
	return func(o *options[K, C]) { o.trace = fn }
}

// WithCPUPinning makes multiplyParallel pin each worker goroutine's OS
// thread to its own CPU before running, mirroring the reference driver's
// per-worker thread_management::binder call (see DESIGN.md). Pinning is
// always best-effort: a no-op on non-Linux platforms, and never treated as
// an error even on Linux, since affinity is a scheduling hint, not a
// correctness requirement. Has no effect on the single-threaded path.
func WithCPUPinning[K term.Key[K], C term.Coefficient[C]](enabled bool) Option[K, C] {
	return func(o *options[K, C]) { o.pinCPUs = enabled }
}

func buildOptions[K term.Key[K], C term.Coefficient[C]](opts []Option[K, C]) options[K, C] {
	var o options[K, C]
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// MarkWorker returns a context that causes a nested MultiplyContext call to
// behave as if it were already running inside one of this package's own
// worker goroutines: it is forced to a single thread regardless of
// config.Global().NThreads(). This package never needs to mark its own
// context, since none of its internal goroutines call back into
// MultiplyContext; it exists for callers who drive their own worker pool
// (for instance a coefficient type whose Mul recursively multiplies two
// sub-series) and want to call MultiplyContext from inside one of their own
// workers without mul spawning a second, nested layer of threads on top.
func MarkWorker(ctx context.Context) context.Context {
	return context.WithValue(ctx, workerContextKey{}, true)
}

// Multiply returns the product of s1 and s2 under trunc. Both series must
// share an identical symbol set, or xerrors.ErrIncompatibleSymbols is
// returned. Either operand being empty short-circuits to an empty result
// without touching trunc or config.Global() at all.
func Multiply[K term.Key[K], C term.Coefficient[C]](s1, s2 *series.Series[K, C], trunc truncate.Truncator[K, C], opts ...Option[K, C]) (*series.Series[K, C], error) {
	return MultiplyContext(context.Background(), s1, s2, trunc, opts...)
}

// MultiplyContext is Multiply with an explicit context, whose only use
// inside this package is the recursion guard in resolveThreadCount: a
// context marked with MarkWorker forces the call onto a single thread. The
// worker goroutines this package starts do not mark any context, and
// Key.Mul and Coefficient.Mul receive none, so a nested multiplication is
// kept single-threaded only when its caller passes a context marked with
// MarkWorker.
func MultiplyContext[K term.Key[K], C term.Coefficient[C]](ctx context.Context, s1, s2 *series.Series[K, C], trunc truncate.Truncator[K, C], opts ...Option[K, C]) (*series.Series[K, C], error) {
	if !s1.Omega().Equal(s2.Omega()) {
		return nil, xerrors.ErrIncompatibleSymbols
	}
	omega := s1.Omega()
	if s1.Len() == 0 || s2.Len() == 0 {
		return series.New[K, C](omega), nil
	}
	o := buildOptions(opts)

	terms1, terms2 := s1.Terms(), s2.Terms()
	size1, size2 := len(terms1), len(terms2)
	active := trunc.Kind() != truncate.Inactive

	nThreads := resolveThreadCount(ctx, size1, size2)
	if nThreads <= 1 {
		acc := accum.New[K, C](0)
		f, err := newFunctor(terms1, terms2, trunc, active, omega, acc)
		if err != nil {
			return nil, err
		}
		_, estimate := rehasher(f, size1, size2)
		if err := blockedMultiply(f, size1, size2); err != nil {
			return nil, err
		}
		if o.trace != nil {
			o.trace(estimate, uint64(acc.Len()))
		}
		return series.FromAccumulator(omega, acc), nil
	}
	return multiplyParallel(terms1, terms2, trunc, active, omega, nThreads, o)
}

// resolveThreadCount applies the driver's thread-count heuristic: start
// from config.Global().NThreads(); if the work per thread it implies falls
// below config.Global().MinWorkPerThread(), shrink to whatever thread
// count would give each thread at least that much work (never below 1);
// clamp to size1, since partitioning always splits operand 1; and force 1
// if ctx was marked with MarkWorker, to avoid recursive oversubscription.
// The workers started by multiplyParallel do not mark a context, so a call
// made from inside one of them is not detected unless its caller marks the
// context itself.
func resolveThreadCount(ctx context.Context, size1, size2 int) int {
	cfg := config.Global()
	n := cfg.NThreads()
	if n < 1 {
		n = 1
	}
	if n != 1 {
		minWork := cfg.MinWorkPerThread()
		workSize := size1 * size2
		if minWork > 0 && workSize/n < minWork {
			n = workSize / minWork
			if n < 1 {
				n = 1
			}
		}
	}
	if n > size1 {
		n = size1
	}
	if insideWorker(ctx) {
		n = 1
	}
	return n
}

func insideWorker(ctx context.Context) bool {
	v, _ := ctx.Value(workerContextKey{}).(bool)
	return v
}

// multiplyParallel splits terms1 into nThreads contiguous blocks (the last
// absorbing any remainder), multiplies each block against the whole of
// terms2 into its own private accumulator, estimates the combined result
// size against the whole operand pair, then merges every per-thread
// accumulator but one into a chosen (or freshly rehashed) target.
//
// Workers are plain goroutines joined by a sync.WaitGroup rather than an
// errgroup.WithContext pool: every worker runs to completion even after a
// sibling fails, and only the first captured error is returned, mirroring
// the reference driver's policy of gathering every worker's exception into
// a mutex-guarded vector and rethrowing just the first. An errgroup.Group
// pool would be the wrong tool here specifically because its *WithContext
// variant cancels siblings on first error; the merge phase (merge.go) uses
// one anyway, for its read-only scan step, where cancellation never
// triggers in practice but the structure is still simpler to express as an
// errgroup.
func multiplyParallel[K term.Key[K], C term.Coefficient[C]](
	terms1, terms2 []term.Term[K, C],
	trunc truncate.Truncator[K, C],
	active bool,
	omega symbols.Set,
	nThreads int,
	o options[K, C],
) (*series.Series[K, C], error) {
	size1, size2 := len(terms1), len(terms2)
	block := size1 / nThreads

	accs := make([]*accum.Accumulator[K, C], nThreads)

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error
	for i := 0; i < nThreads; i++ {
		i, start := i, i*block
		s1 := block
		if i == nThreads-1 {
			s1 = size1 - start
		}

		acc := accum.New[K, C](0)
		accs[i] = acc
		f, err := newFunctor(terms1[start:start+s1], terms2, trunc, active, omega, acc)
		if err != nil {
			return nil, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if o.pinCPUs {
				pinToCPU(i % runtime.NumCPU())
			}
			_, estimate := rehasher(f, s1, size2)
			if err := blockedMultiply(f, s1, size2); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}
			if o.trace != nil {
				o.trace(estimate, uint64(acc.Len()))
			}
		}()
	}
	wg.Wait()
	if firstErr != nil {
		for _, a := range accs {
			a.Clear()
		}
		return nil, firstErr
	}

	estAcc := accum.New[K, C](0)
	estFunctor, err := newFunctor(terms1, terms2, trunc, active, omega, estAcc)
	if err != nil {
		return nil, err
	}
	finalEstimate, ok := estimateFinalSize(estFunctor, size1, size2)
	if !ok || finalEstimate == 0 {
		finalEstimate = 1
	}

	maxLoadFactor := config.Global().MaxLoadFactor()
	var target *accum.Accumulator[K, C]
	targetIdx := -1
	for i, a := range accs {
		if float64(a.BucketCount())*maxLoadFactor >= float64(finalEstimate) {
			target, targetIdx = a, i
			break
		}
	}
	if target == nil {
		target = accum.New[K, C](0)
		if err := target.Rehash(uint64(math.Ceil(float64(finalEstimate) / maxLoadFactor))); err != nil {
			return nil, err
		}
	}

	sources := make([]*accum.Accumulator[K, C], 0, len(accs))
	for i, a := range accs {
		if i != targetIdx {
			sources = append(sources, a)
		}
	}

	if err := finalMerge(target, sources, omega); err != nil {
		for _, a := range accs {
			a.Clear()
		}
		target.Clear()
		return nil, err
	}
	for _, a := range sources {
		a.Clear()
	}
	if o.trace != nil {
		o.trace(finalEstimate, uint64(target.Len()))
	}
	return series.FromAccumulator(omega, target), nil
}

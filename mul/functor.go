// Package mul implements series multiplication: the block-tiled iteration
// over a pair of term lists (functor.go, tiler.go), the Monte-Carlo density
// estimator used to pre-size the result before it is built (estimator.go),
// the multi-threaded driver that partitions the work across per-thread
// accumulators (driver.go), and the final merge that combines those
// accumulators into one result (merge.go). The merge scans its sources
// concurrently but applies their terms to the target on one goroutine; it
// does not partition the target's bucket space among goroutines.
package mul

import (
	"sort"

	"github.com/biscani-labs/seriesmul/accum"
	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
	"github.com/biscani-labs/seriesmul/truncate"
	"github.com/biscani-labs/seriesmul/xerrors"
)

// functor drives the term-by-term multiplication of a slice of operand-1
// terms against the full operand-2 term list, forwarding results into a
// target accumulator. A functor is single-owner: it is never shared between
// goroutines, though its target accumulator may be (during the final
// merge, not during ordinary multiplication).
type functor[K term.Key[K], C term.Coefficient[C]] struct {
	terms1 []term.Term[K, C]
	terms2 []term.Term[K, C]

	trunc  truncate.Truncator[K, C]
	active bool
	omega  symbols.Set
	target *accum.Accumulator[K, C]

	scratch [term.MaxArity]term.Term[K, C]
	nres    int
}

// newFunctor validates that active agrees with trunc's own classification,
// and — only when the truncator is a skipping one — sorts both term slices
// in place by trunc.CompareTerms, a precondition for the row-break skip
// optimisation in tiler.go.
func newFunctor[K term.Key[K], C term.Coefficient[C]](
	terms1, terms2 []term.Term[K, C],
	trunc truncate.Truncator[K, C],
	active bool,
	omega symbols.Set,
	target *accum.Accumulator[K, C],
) (*functor[K, C], error) {
	if active != (trunc.Kind() != truncate.Inactive) {
		return nil, xerrors.ErrTruncatorFlagMismatch
	}
	f := &functor[K, C]{
		terms1: terms1,
		terms2: terms2,
		trunc:  trunc,
		active: active,
		omega:  omega,
		target: target,
	}
	if f.active && f.trunc.Kind() == truncate.Skipping {
		less := f.trunc.CompareTerms
		sort.Slice(f.terms1, func(a, b int) bool { return less(f.terms1[a], f.terms1[b]) })
		sort.Slice(f.terms2, func(a, b int) bool { return less(f.terms2[a], f.terms2[b]) })
	}
	return f, nil
}

// skip reports whether the pair (i,j) can be discarded without being
// multiplied. Only a skipping truncator is ever consulted.
func (f *functor[K, C]) skip(i, j int) bool {
	if !f.active || f.trunc.Kind() != truncate.Skipping {
		return false
	}
	return f.trunc.Skip(f.terms1[i], f.terms2[j])
}

// filter reports whether a computed result term should be discarded. Only a
// filtering truncator is ever consulted; a skipping truncator's Filter is
// never called, since any result that would be filtered was already
// skipped upstream.
func (f *functor[K, C]) filter(t term.Term[K, C]) bool {
	if !f.active || f.trunc.Kind() != truncate.Filtering {
		return false
	}
	return f.trunc.Filter(t)
}

// multiply computes the product of terms1[i] and terms2[j], writing the
// (at most term.MaxArity) result terms into f.scratch and recording how
// many were written in f.nres. A result key's sign flag (from Key.Mul)
// negates its coefficient via Sub from the zero value; when more than one
// result key is produced the shared coefficient product is halved first,
// per the product-to-sum halving convention documented on term.Key.Mul.
func (f *functor[K, C]) multiply(i, j int) {
	t1, t2 := f.terms1[i], f.terms2[j]

	var keys [term.MaxArity]K
	var neg [term.MaxArity]bool
	n := t1.Key.Mul(t2.Key, f.omega, &keys, &neg)

	coeff := t1.Coeff.Mul(t2.Coeff)
	if n > 1 {
		coeff = coeff.Half()
	}

	for s := 0; s < n; s++ {
		c := coeff
		if neg[s] {
			var zero C
			c = zero.Sub(c)
		}
		f.scratch[s] = term.Term[K, C]{Key: keys[s], Coeff: c}
	}
	f.nres = n
}

// insert forwards the scratch terms from the last multiply call into the
// target accumulator. When checkFilter is false (used only during density
// estimation, where results are discarded immediately after counting), the
// filter check is skipped entirely. It is also skipped whenever the
// truncator is a skipping one, since skip already subsumes filtering.
// Returns how many of the forwarded terms caused the target to strictly
// grow.
func (f *functor[K, C]) insert(checkFilter bool) (int, error) {
	grew := 0
	skipping := f.active && f.trunc.Kind() == truncate.Skipping
	for s := 0; s < f.nres; s++ {
		t := f.scratch[s]
		if checkFilter && !skipping && f.filter(t) {
			continue
		}
		ok, err := f.target.Insert(t, f.omega)
		if err != nil {
			return grew, err
		}
		if ok {
			grew++
		}
	}
	return grew, nil
}

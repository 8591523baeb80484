// Package series implements Series[K,C]: an ordered symbol set Ω paired with
// an accum.Accumulator[K,C] holding the series' term multiset. A Series is
// the unit every multiplier operation in package mul consumes and produces.
//
// Two series only compose (add, multiply) if their symbol sets are
// identical, not merely compatible in length; Add (and mul.Multiply)
// return xerrors.ErrIncompatibleSymbols when they are not.
package series

import (
	"github.com/biscani-labs/seriesmul/accum"
	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
	"github.com/biscani-labs/seriesmul/xerrors"
)

// Series is Ω together with a multiset of terms over Ω, deduplicated and
// combined by key equality.
type Series[K term.Key[K], C term.Coefficient[C]] struct {
	omega symbols.Set
	acc   *accum.Accumulator[K, C]
}

// New returns an empty Series over omega.
func New[K term.Key[K], C term.Coefficient[C]](omega symbols.Set) *Series[K, C] {
	return &Series[K, C]{omega: omega, acc: accum.New[K, C](0)}
}

// FromAccumulator wraps an already-populated accumulator as a Series over
// omega, without copying. Used by package mul to hand back the result of a
// multiplication without re-inserting every term one at a time.
func FromAccumulator[K term.Key[K], C term.Coefficient[C]](omega symbols.Set, acc *accum.Accumulator[K, C]) *Series[K, C] {
	return &Series[K, C]{omega: omega, acc: acc}
}

// Omega returns the series' symbol set.
func (s *Series[K, C]) Omega() symbols.Set { return s.omega }

// Len returns the number of distinct, non-ignorable terms currently held.
func (s *Series[K, C]) Len() int { return s.acc.Len() }

// Accumulator exposes the series' backing accumulator, for package mul's
// internal use as a multiplication operand or target.
func (s *Series[K, C]) Accumulator() *accum.Accumulator[K, C] { return s.acc }

// Terms returns every term currently held, in accumulator bucket order. The
// returned slice is a snapshot copy; mutating it does not affect s.
func (s *Series[K, C]) Terms() []term.Term[K, C] {
	out := make([]term.Term[K, C], 0, s.acc.Len())
	s.acc.All(func(t *term.Term[K, C]) bool {
		out = append(out, *t)
		return true
	})
	return out
}

// Insert adds t to the series, combining with any existing term of equal
// key and dropping the result if it becomes ignorable. Returns
// xerrors.ErrIncompatibleSymbols if t.Key is not well-formed for s.Omega().
func (s *Series[K, C]) Insert(t term.Term[K, C]) error {
	if !t.Key.IsCompatible(s.omega) {
		return xerrors.ErrIncompatibleSymbols
	}
	_, err := s.acc.Insert(t, s.omega)
	return err
}

// Add returns a new Series holding the term-wise sum of s and other. Both
// must share an identical symbol set.
func Add[K term.Key[K], C term.Coefficient[C]](s, other *Series[K, C]) (*Series[K, C], error) {
	if !s.omega.Equal(other.omega) {
		return nil, xerrors.ErrIncompatibleSymbols
	}
	out := New[K, C](s.omega)
	s.acc.All(func(t *term.Term[K, C]) bool {
		_, _ = out.acc.Insert(*t, out.omega)
		return true
	})
	other.acc.All(func(t *term.Term[K, C]) bool {
		_, _ = out.acc.Insert(*t, out.omega)
		return true
	})
	return out, nil
}

// All calls yield for every term currently held, stopping early if yield
// returns false.
func (s *Series[K, C]) All(yield func(*term.Term[K, C]) bool) {
	s.acc.All(yield)
}

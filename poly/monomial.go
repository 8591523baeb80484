// Package poly implements a monomial key type: a fixed-capacity exponent
// vector over a shared symbol set. Monomial has key arity 1 — multiplying
// two monomials under the same symbol set produces exactly one monomial,
// whose exponent vector is the element-wise sum of the operands'.
package poly

import (
	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
	"github.com/cespare/xxhash/v2"
)

// MaxSymbols bounds the number of symbols a Monomial can range over,
// letting the exponent vector live inline rather than behind a slice
// pointer, matching the "must not allocate dynamically when the key itself
// is inline" requirement on Key.Mul.
const MaxSymbols = 16

// Monomial is an exponent vector x0^e0 * x1^e1 * ... over an implicit
// symbol set. Only the first n entries of Exp are meaningful; n is tracked
// so a Monomial constructed for a smaller symbol set can still be compared
// and hashed consistently.
type Monomial struct {
	Exp [MaxSymbols]int32
	N   int
}

// NewMonomial builds a Monomial from the given exponents, in symbol order.
func NewMonomial(exp ...int32) Monomial {
	var m Monomial
	m.N = len(exp)
	copy(m.Exp[:], exp)
	return m
}

// Hash hashes the meaningful prefix of the exponent vector.
func (m Monomial) Hash() uint64 {
	var buf [MaxSymbols * 4]byte
	for i := 0; i < m.N; i++ {
		e := uint32(m.Exp[i])
		buf[4*i] = byte(e)
		buf[4*i+1] = byte(e >> 8)
		buf[4*i+2] = byte(e >> 16)
		buf[4*i+3] = byte(e >> 24)
	}
	return xxhash.Sum64(buf[:4*m.N])
}

// Equal reports whether m and other have identical exponent vectors.
func (m Monomial) Equal(other Monomial) bool {
	if m.N != other.N {
		return false
	}
	for i := 0; i < m.N; i++ {
		if m.Exp[i] != other.Exp[i] {
			return false
		}
	}
	return true
}

// IsCompatible reports whether m's exponent count matches omega's symbol
// count.
func (m Monomial) IsCompatible(omega symbols.Set) bool {
	return m.N == omega.Len()
}

// IsIgnorable always returns false: a monomial key is never structurally
// zero on its own, only its coefficient can be.
func (m Monomial) IsIgnorable(omega symbols.Set) bool { return false }

// TotalDegree returns the sum of the exponent vector, used by degree-cutoff
// truncators to decide whether a term pair's product should be skipped.
func (m Monomial) TotalDegree() int {
	var d int32
	for i := 0; i < m.N; i++ {
		d += m.Exp[i]
	}
	return int(d)
}

// Mul writes the element-wise sum of m and other's exponent vectors into
// out[0] and returns 1 (arity 1, never negated).
func (m Monomial) Mul(other Monomial, omega symbols.Set, out *[term.MaxArity]Monomial, neg *[term.MaxArity]bool) int {
	var r Monomial
	r.N = m.N
	for i := 0; i < m.N; i++ {
		r.Exp[i] = m.Exp[i] + other.Exp[i]
	}
	out[0] = r
	neg[0] = false
	return 1
}

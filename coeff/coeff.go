// Package coeff provides two concrete term.Coefficient implementations:
// Float64, a plain floating-point scalar, and Rational, an exact big.Rat
// scalar for uses that need exact cancellation (such as the 1/2
// coefficients of the sin/cos product-to-sum identity).
//
// No example repo in the retrieval pack carries an arbitrary-precision
// rational arithmetic dependency, so Rational is built on the standard
// library's math/big rather than a third-party bignum package — see
// DESIGN.md.
package coeff

import "math/big"

// Float64 is a term.Coefficient backed by a plain float64.
type Float64 float64

func (c Float64) Add(other Float64) Float64 { return c + other }
func (c Float64) Mul(other Float64) Float64 { return c * other }
func (c Float64) Sub(other Float64) Float64 { return c - other }
func (c Float64) Half() Float64              { return c / 2 }
func (c Float64) IsZero() bool               { return c == 0 }

// Rational is a term.Coefficient backed by math/big.Rat, giving exact
// arithmetic for tests that must observe exact cancellation.
type Rational struct {
	r big.Rat
}

// NewRational builds a Rational equal to num/den.
func NewRational(num, den int64) Rational {
	var v Rational
	v.r.SetFrac64(num, den)
	return v
}

func (c Rational) Add(other Rational) Rational {
	var out Rational
	out.r.Add(&c.r, &other.r)
	return out
}

func (c Rational) Mul(other Rational) Rational {
	var out Rational
	out.r.Mul(&c.r, &other.r)
	return out
}

func (c Rational) Sub(other Rational) Rational {
	var out Rational
	out.r.Sub(&c.r, &other.r)
	return out
}

func (c Rational) Half() Rational {
	var out Rational
	out.r.Quo(&c.r, big.NewRat(2, 1))
	return out
}

func (c Rational) IsZero() bool { return c.r.Sign() == 0 }

// String renders the rational as "num/den" (or "num" when the denominator
// is 1), for debugging and test failure messages.
func (c Rational) String() string { return c.r.RatString() }

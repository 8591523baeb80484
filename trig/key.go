// Package trig implements a trigonometric key type: Kind (sin or cos) paired
// with an integer exponent-style argument vector. Two trig keys multiply via
// the product-to-sum identities, always producing exactly two result keys
// and a coefficient halved on both.
package trig

import (
	"github.com/biscani-labs/seriesmul/poly"
	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
)

// Kind distinguishes a sine key from a cosine key.
type Kind uint8

const (
	Sin Kind = iota
	Cos
)

// Key is Kind(Arg) for an argument vector Arg shared with poly.Monomial's
// exponent-vector representation (here read as integer coefficients of the
// symbols inside the trig argument, not as polynomial exponents).
type Key struct {
	Kind Kind
	Arg  poly.Monomial
}

// NewKey builds a trig.Key from a kind and argument coefficients. The
// argument's sign is canonicalized (see canonicalize) so that keys built
// from negated-but-equivalent arguments compare and hash equal. For Cos
// this is always value-preserving, since cos is even; for Sin it is only
// value-preserving up to sign, since sin is odd — a caller passing a
// negative-leading argument to NewKey(Sin, ...) gets back the key for
// sin(-arg), not sin(arg), and must negate its own coefficient to compensate.
func NewKey(kind Kind, arg ...int32) Key {
	canon, _ := canonicalize(poly.NewMonomial(arg...))
	return Key{Kind: kind, Arg: canon}
}

// canonicalize returns arg's canonical form — arg itself, or its negation,
// whichever has a positive first nonzero exponent — and whether negation
// was needed. Without this, sin(x-y) and sin(y-x) would be stored as two
// distinct, non-cancelling keys even though sin(-t) = -sin(t) means they
// are the same term up to sign.
func canonicalize(arg poly.Monomial) (poly.Monomial, bool) {
	for i := 0; i < arg.N; i++ {
		switch {
		case arg.Exp[i] > 0:
			return arg, false
		case arg.Exp[i] < 0:
			var negated poly.Monomial
			negated.N = arg.N
			for j := 0; j < arg.N; j++ {
				negated.Exp[j] = -arg.Exp[j]
			}
			return negated, true
		}
	}
	return arg, false
}

// Hash combines Kind into the argument hash so sin(a) and cos(a) never
// collide.
func (k Key) Hash() uint64 {
	h := k.Arg.Hash()
	if k.Kind == Cos {
		h ^= 0x9e3779b97f4a7c15
	}
	return h
}

// Equal reports whether k and other have the same kind and argument.
func (k Key) Equal(other Key) bool {
	return k.Kind == other.Kind && k.Arg.Equal(other.Arg)
}

// IsCompatible reports whether k's argument is well-formed for omega.
func (k Key) IsCompatible(omega symbols.Set) bool {
	return k.Arg.IsCompatible(omega)
}

// IsIgnorable reports whether k is structurally zero: sin of the
// identically-zero argument is the zero function regardless of coefficient.
func (k Key) IsIgnorable(omega symbols.Set) bool {
	if k.Kind != Sin {
		return false
	}
	for i := 0; i < k.Arg.N; i++ {
		if k.Arg.Exp[i] != 0 {
			return false
		}
	}
	return true
}

// Mul applies the product-to-sum identities:
//
//	sin(a)*sin(b) = [cos(a-b) - cos(a+b)] / 2
//	cos(a)*cos(b) = [cos(a-b) + cos(a+b)] / 2
//	sin(a)*cos(b) = [sin(a+b) + sin(a-b)] / 2
//	cos(a)*sin(b) = [sin(a+b) - sin(a-b)] / 2
//
// always writing 2 result keys (arity 2): for sin*sin and cos*cos the
// argument difference first and the sum second, for the mixed products the
// sum first and the difference second, with neg set on whichever slot
// carries the minus sign.
//
// Both result arguments are canonicalized before being stored (see
// canonicalize), folding any required sign flip into neg for Sin results
// (Cos is even and needs no such correction): this is what makes, for
// example, the two cross terms of (sin(x)+cos(y))*(sin(x)-cos(y)) — which
// otherwise land on the distinct, non-cancelling keys sin(x-y) and
// sin(y-x) — collapse onto the same stored key so they cancel correctly.
func (k Key) Mul(other Key, omega symbols.Set, out *[term.MaxArity]Key, neg *[term.MaxArity]bool) int {
	sum := addArg(k.Arg, other.Arg, 1)
	diff := addArg(k.Arg, other.Arg, -1)

	switch {
	case k.Kind == Sin && other.Kind == Sin:
		setResult(&out[0], &neg[0], Cos, diff, false)
		setResult(&out[1], &neg[1], Cos, sum, true)
	case k.Kind == Cos && other.Kind == Cos:
		setResult(&out[0], &neg[0], Cos, diff, false)
		setResult(&out[1], &neg[1], Cos, sum, false)
	case k.Kind == Sin && other.Kind == Cos:
		setResult(&out[0], &neg[0], Sin, sum, false)
		setResult(&out[1], &neg[1], Sin, diff, false)
	default: // Cos * Sin
		setResult(&out[0], &neg[0], Sin, sum, false)
		setResult(&out[1], &neg[1], Sin, diff, true)
	}
	return 2
}

// setResult stores the canonical Key(kind, arg) into *outKey, and wantNeg
// into *outNeg corrected for the sign flip canonicalize applied: a Sin
// result whose argument had to be negated to canonicalize also flips sign
// (sin is odd), so wantNeg is inverted; a Cos result never flips (cos is
// even).
func setResult(outKey *Key, outNeg *bool, kind Kind, arg poly.Monomial, wantNeg bool) {
	canon, flipped := canonicalize(arg)
	*outKey = Key{Kind: kind, Arg: canon}
	*outNeg = wantNeg
	if kind == Sin && flipped {
		*outNeg = !*outNeg
	}
}

func addArg(a, b poly.Monomial, sign int32) poly.Monomial {
	var r poly.Monomial
	r.N = a.N
	for i := 0; i < a.N; i++ {
		r.Exp[i] = a.Exp[i] + sign*b.Exp[i]
	}
	return r
}

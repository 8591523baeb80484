// Package term defines the capability interfaces that every key type and
// coefficient type must satisfy to participate in the multiplier, and the
// Term type that pairs them. The multiplier package never knows the
// concrete key or coefficient type; it is written once against these
// constraints and monomorphised per instantiation by the compiler, following
// the "small capability interface... pick generics when the target language
// supports it" design note.
package term

import "github.com/biscani-labs/seriesmul/symbols"

// MaxArity is the largest number of result keys a single key multiplication
// can produce. Polynomial keys have arity 1; trigonometric keys split into
// sin/cos via a product-to-sum identity and have arity 2; divisor-augmented
// keys (not implemented by this module — see DESIGN.md) would need up to 4.
const MaxArity = 4

// Key is the capability contract every key type must implement. K is the
// concrete key type itself (a self-referential constraint), which lets
// Equal and Mul take and return concrete K values instead of boxing through
// an interface.
type Key[K any] interface {
	// Hash returns a hash of the key's content. Pure function of the key;
	// must be consistent with Equal.
	Hash() uint64

	// Equal reports whether k and other denote the same key.
	Equal(other K) bool

	// IsCompatible reports whether k is well-formed with respect to omega
	// (typically: the key's arity/dimension matches omega.Len()).
	IsCompatible(omega symbols.Set) bool

	// IsIgnorable reports whether k denotes a structurally-zero term once
	// its coefficient has been combined. Most key types always return
	// false here; the coefficient's own IsZero is what actually gates
	// term removal.
	IsIgnorable(omega symbols.Set) bool

	// Mul multiplies k by other under the shared symbol set omega, writing
	// the (at most MaxArity) result keys into out and a per-slot sign flag
	// into neg (true if that slot's coefficient contribution is negated
	// relative to the plain coefficient product), and returns how many
	// slots were written. Implementations must not heap-allocate when the
	// key type itself is an inline (non-pointer) value.
	//
	// When arity (the returned count) is greater than 1, the caller halves
	// the coefficient product before applying neg — this is the
	// "division by 2" product-to-sum requirement on coefficient types,
	// kept out of Mul itself so Key stays free of knowledge of how C
	// implements division.
	Mul(other K, omega symbols.Set, out *[MaxArity]K, neg *[MaxArity]bool) int
}

// Coefficient is the capability contract every coefficient type must
// implement. Coefficients are semiring values: default-constructible to
// zero (the Go zero value of C must be the additive identity),
// copy-constructible (C is a plain value type), with in-place addition and
// value-returning multiplication and subtraction.
type Coefficient[C any] interface {
	// Add returns c + other. Named Add rather than a true in-place += since
	// Go generics method sets can't mix value and pointer receivers for a
	// self-referential constraint; callers combine by reassignment
	// (slot.Coeff = slot.Coeff.Add(other)), which is what "combine
	// coefficients in place" compiles down to here.
	Add(other C) C

	// Mul returns c * other.
	Mul(other C) C

	// Sub returns c - other.
	Sub(other C) C

	// Half returns c / 2. Used by key types whose Mul applies a
	// product-to-sum identity (arity > 1).
	Half() C

	// IsZero reports whether c is the additive identity.
	IsZero() bool
}

// Term is a single (coefficient, key) pair.
type Term[K Key[K], C Coefficient[C]] struct {
	Key   K
	Coeff C
}

// IsIgnorable reports whether t should be excluded from a series: either its
// key declares itself ignorable, or its coefficient has combined down to
// zero.
func (t *Term[K, C]) IsIgnorable(omega symbols.Set) bool {
	return t.Coeff.IsZero() || t.Key.IsIgnorable(omega)
}

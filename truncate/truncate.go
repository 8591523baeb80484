// Package truncate implements the Truncator contract used by the multiplier
// to discard term pairs (or terms) that cannot contribute to a result below
// some cutoff, and a concrete degree-cutoff truncator.
//
// A Truncator is categorised, via Kind, as inactive, filtering, or skipping.
// An inactive truncator never changes the multiplier's output. A filtering
// truncator is checked against every candidate result term after it is
// computed, independently of the order the inputs are visited in. A skipping
// truncator additionally requires both operand term lists to be sorted by
// CompareTerms before multiplication starts, and is consulted before each
// pair is even multiplied: once Skip reports true for a pair (i,j), the
// multiplier assumes the same holds for every (i,j') with j' > j, and moves
// on to i+1 without trying them. Skip subsumes Filter: a skipping
// truncator's Filter is never consulted by the multiplier, since any result
// that would be filtered was already skipped.
package truncate

import "github.com/biscani-labs/seriesmul/term"

// Kind categorises a Truncator's strategy.
type Kind int

const (
	// Inactive truncators never skip or filter anything.
	Inactive Kind = iota
	// Filtering truncators are checked once per computed result term.
	Filtering
	// Skipping truncators require sorted operands and are checked once per
	// candidate term pair, before multiplication.
	Skipping
)

// Truncator is the capability contract a truncation policy must implement.
type Truncator[K term.Key[K], C term.Coefficient[C]] interface {
	// Kind reports this truncator's strategy. IsActive is equivalent to
	// Kind() != Inactive.
	Kind() Kind

	// CompareTerms reports whether a should sort before b. Only consulted
	// when Kind() == Skipping, to presort both operand term lists once
	// before multiplication begins.
	CompareTerms(a, b term.Term[K, C]) bool

	// Skip reports whether the product of a and b can be discarded without
	// being computed. Only consulted when Kind() == Skipping.
	Skip(a, b term.Term[K, C]) bool

	// Filter reports whether a computed result term t should be discarded.
	// Only consulted when Kind() == Filtering.
	Filter(t term.Term[K, C]) bool
}

// IsActive reports whether t changes the multiplier's output at all.
func IsActive[K term.Key[K], C term.Coefficient[C]](t Truncator[K, C]) bool {
	return t.Kind() != Inactive
}

type none[K term.Key[K], C term.Coefficient[C]] struct{}

// None returns an inactive Truncator: every candidate pair and result term
// is kept, matching an unconstrained multiplication.
func None[K term.Key[K], C term.Coefficient[C]]() Truncator[K, C] {
	return none[K, C]{}
}

func (none[K, C]) Kind() Kind                             { return Inactive }
func (none[K, C]) CompareTerms(a, b term.Term[K, C]) bool { return false }
func (none[K, C]) Skip(a, b term.Term[K, C]) bool         { return false }
func (none[K, C]) Filter(t term.Term[K, C]) bool          { return false }

// DegreeFunc extracts a non-negative total degree from a key, for key types
// (such as poly.Monomial) that have one.
type DegreeFunc[K any] func(k K) int

type degreeCutoff[K term.Key[K], C term.Coefficient[C]] struct {
	max    int
	degree DegreeFunc[K]
}

// NewDegreeCutoff returns a skipping Truncator that discards any term pair
// whose product would exceed total degree max, using degree to read a key's
// total degree. Because degree is additive under multiplication and
// non-negative, sorting each operand by degree (ascending) makes Skip's
// row-break optimisation exact: once a.degree+b.degree exceeds max for some
// j, it also exceeds max for every larger j in the same row.
func NewDegreeCutoff[K term.Key[K], C term.Coefficient[C]](max int, degree DegreeFunc[K]) Truncator[K, C] {
	return degreeCutoff[K, C]{max: max, degree: degree}
}

func (d degreeCutoff[K, C]) Kind() Kind { return Skipping }

func (d degreeCutoff[K, C]) CompareTerms(a, b term.Term[K, C]) bool {
	return d.degree(a.Key) < d.degree(b.Key)
}

func (d degreeCutoff[K, C]) Skip(a, b term.Term[K, C]) bool {
	return d.degree(a.Key)+d.degree(b.Key) > d.max
}

func (d degreeCutoff[K, C]) Filter(t term.Term[K, C]) bool {
	return d.degree(t.Key) > d.max
}

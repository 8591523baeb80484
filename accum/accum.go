// Package accum implements the open-addressed hash container used to
// accumulate the terms produced by the multiplier. The design follows
// Google's Swiss Tables (https://abseil.io/about/design/swisstables): a
// separate control-byte array stores one byte per slot, 7 bits of which are
// taken from hash(key) and the remaining bit marks the slot empty, deleted,
// full, or the sentinel. Probing is a hybrid of linear probing within a
// group of slots and quadratic probing across groups.
//
// Unlike a textbook Swiss table, slots here do not simply overwrite on a
// repeated key: Insert combines coefficients via Coefficient's Add, and
// removes the term if the combination becomes ignorable.
// This is the "accumulator" sense of the container: it sums like terms as
// they stream in, rather than replacing them.
//
// Two low-level operations exist purely to support the driver's
// bucket-partitioned final merge (see package mul): Bucket computes the
// pure function of key and capacity that determines a term's home bucket,
// and UniqueInsert places a term directly into a caller-supplied bucket
// without probing for an existing entry, on the precondition that the
// caller has already established none exists. Bucket depends only on key
// content and capacity, but it is the exact slot a key's probe window starts
// from, not a group-aligned index, so keys whose home buckets fall in
// different bucket ranges can still write into the same group window. The
// merge in package mul therefore applies terms to its target from a single
// goroutine.
package accum

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/biscani-labs/seriesmul/config"
	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
	"github.com/biscani-labs/seriesmul/xerrors"
)

const (
	groupSize = 8

	ctrlEmpty    byte = 0b10000000
	ctrlDeleted  byte = 0b11111110
	ctrlSentinel byte = 0b11111111
)

// Accumulator is an open-addressed set of term.Term[K,C], keyed by K's
// equality and combined by C's Add. An Accumulator is not safe for
// concurrent use; the parallel driver gives each worker its own private
// Accumulator, and during the final merge the shared target is only read
// (through Bucket) by the scan goroutines and written by a single goroutine.
type Accumulator[K term.Key[K], C term.Coefficient[C]] struct {
	// ctrls has capacity+groupSize entries when capacity > 0. ctrls[capacity]
	// is always ctrlSentinel. The first groupSize-1 entries are mirrored at
	// the end so a probe near the end of the array never needs a bounds
	// check.
	ctrls []byte
	slots []term.Term[K, C]

	// capacity is always of the form 2^n-1 (or 0), so that hash&capacity
	// computes hash mod (capacity+1) with a bitwise AND.
	capacity uint64
	used     int
	// growthLeft is how many more unique inserts can happen before a
	// rehash is required, derived from maxLoadFactor.
	growthLeft int

	maxLoadFactor float64
}

// Option configures an Accumulator at construction time.
type Option[K term.Key[K], C term.Coefficient[C]] func(*Accumulator[K, C])

// WithMaxLoadFactor overrides the accumulator's max load factor (default
// taken from config.Global().MaxLoadFactor()).
func WithMaxLoadFactor[K term.Key[K], C term.Coefficient[C]](f float64) Option[K, C] {
	return func(a *Accumulator[K, C]) { a.maxLoadFactor = f }
}

// New constructs an empty Accumulator, optionally pre-sized to hold at
// least initialCapacity terms without a rehash.
func New[K term.Key[K], C term.Coefficient[C]](initialCapacity int, opts ...Option[K, C]) *Accumulator[K, C] {
	a := &Accumulator[K, C]{maxLoadFactor: config.Global().MaxLoadFactor()}
	for _, opt := range opts {
		opt(a)
	}
	if initialCapacity > 0 {
		target := nextTableCapacity(uint64(initialCapacity), a.maxLoadFactor)
		a.resize(target)
	}
	return a
}

// Len returns the number of terms currently accumulated.
func (a *Accumulator[K, C]) Len() int { return a.used }

// BucketCount returns the number of buckets (capacity+1, or 0 if empty).
func (a *Accumulator[K, C]) BucketCount() uint64 {
	if a.capacity == 0 {
		return 0
	}
	return a.capacity + 1
}

// MaxLoadFactor returns the accumulator's configured max load factor.
func (a *Accumulator[K, C]) MaxLoadFactor() float64 { return a.maxLoadFactor }

// LoadFactor returns size/bucket_count, or 0 for an empty accumulator.
func (a *Accumulator[K, C]) LoadFactor() float64 {
	if a.capacity == 0 {
		return 0
	}
	return float64(a.used) / float64(a.capacity+1)
}

// Bucket computes the home bucket for k: a pure function of k's hash and
// the accumulator's current capacity. Returns xerrors.ErrZeroDivision if
// the accumulator has zero capacity.
func (a *Accumulator[K, C]) Bucket(k K) (uint64, error) {
	if a.capacity == 0 {
		return 0, xerrors.ErrZeroDivision
	}
	return h1(k.Hash()) & a.capacity, nil
}

// Find returns a pointer to the stored term with key k, or nil if absent.
// The returned pointer is invalidated by any subsequent mutation of a.
func (a *Accumulator[K, C]) Find(k K) *term.Term[K, C] {
	if a.capacity == 0 {
		return nil
	}
	bucket, _ := a.Bucket(k)
	return a.findAt(k, bucket)
}

// findAt locates k starting the probe sequence from the supplied home
// bucket, which the caller must have obtained from Bucket against this same
// capacity.
func (a *Accumulator[K, C]) findAt(k K, bucket uint64) *term.Term[K, C] {
	h2b := h2(k.Hash())
	seq := makeProbeSeq(bucket, a.capacity)
	for {
		group := a.ctrls[seq.offset : seq.offset+groupSize]
		for _, bit := range matchByte(group, h2b) {
			i := seq.offsetAt(bit, a.capacity)
			if a.slots[i].Key.Equal(k) {
				return &a.slots[i]
			}
		}
		if hasEmpty(group) {
			return nil
		}
		seq = seq.next(a.capacity)
	}
}

// Insert combines t into the accumulator: if a term with an equal key
// exists, t.Coeff is added into it via Add, and the stored term is
// erased if the combination becomes ignorable with respect to omega.
// Otherwise t is inserted as a new term. Insert returns true if the
// accumulator's size strictly grew.
func (a *Accumulator[K, C]) Insert(t term.Term[K, C], omega symbols.Set) (bool, error) {
	if t.IsIgnorable(omega) {
		// Adding it to an existing term changes nothing, and storing it as
		// a new term would keep an ignorable term.
		return false, nil
	}
	if a.capacity == 0 {
		a.resize(nextTableCapacity(1, a.maxLoadFactor))
	}
	bucket, err := a.Bucket(t.Key)
	if err != nil {
		return false, err
	}
	h2b := h2(t.Key.Hash())
	seq := makeProbeSeq(bucket, a.capacity)
	for {
		group := a.ctrls[seq.offset : seq.offset+groupSize]
		for _, bit := range matchByte(group, h2b) {
			i := seq.offsetAt(bit, a.capacity)
			if a.slots[i].Key.Equal(t.Key) {
				a.slots[i].Coeff = a.slots[i].Coeff.Add(t.Coeff)
				if a.slots[i].IsIgnorable(omega) {
					a.eraseAt(i)
					return false, nil
				}
				return false, nil
			}
		}
		if hasEmpty(group) {
			if a.growthLeft == 0 {
				a.rehashForGrowth()
				return a.Insert(t, omega)
			}
			a.uncheckedPut(bucket, t)
			return true, nil
		}
		seq = seq.next(a.capacity)
	}
}

// UniqueInsert inserts t directly into the probe chain starting at bucket,
// on the precondition that no term with an equal key is already present.
// Violating the precondition produces a duplicate entry and corrupts the
// invariant that Find returns a unique match. It is used only by the final
// merge, which has already probed and confirmed absence.
func (a *Accumulator[K, C]) UniqueInsert(t term.Term[K, C], bucket uint64) {
	if a.growthLeft == 0 {
		a.rehashForGrowth()
		bucket, _ = a.Bucket(t.Key)
	}
	a.uncheckedPut(bucket, t)
}

// Merge combines t into the accumulator starting the probe from the
// caller-supplied home bucket, without recomputing it from t.Key. It is used
// by the final merge, which has already scanned every source term into
// (bucket, term) pairs; bucket must have been computed against the current
// capacity. Returns +1 if t was inserted as a brand new term, -1 if an existing term
// was combined and then erased as ignorable, and 0 if an existing term was
// combined without being erased.
func (a *Accumulator[K, C]) Merge(t term.Term[K, C], bucket uint64, omega symbols.Set) int {
	h2b := h2(t.Key.Hash())
	seq := makeProbeSeq(bucket, a.capacity)
	for {
		group := a.ctrls[seq.offset : seq.offset+groupSize]
		for _, bit := range matchByte(group, h2b) {
			i := seq.offsetAt(bit, a.capacity)
			if a.slots[i].Key.Equal(t.Key) {
				a.slots[i].Coeff = a.slots[i].Coeff.Add(t.Coeff)
				if a.slots[i].IsIgnorable(omega) {
					a.eraseAt(i)
					return -1
				}
				return 0
			}
		}
		if hasEmpty(group) {
			a.UniqueInsert(t, bucket)
			return 1
		}
		seq = seq.next(a.capacity)
	}
}

func (a *Accumulator[K, C]) uncheckedPut(bucket uint64, t term.Term[K, C]) {
	seq := makeProbeSeq(bucket, a.capacity)
	for {
		group := a.ctrls[seq.offset : seq.offset+groupSize]
		if bit, ok := firstEmptyOrDeleted(group); ok {
			i := seq.offsetAt(bit, a.capacity)
			wasEmpty := a.ctrls[i] == ctrlEmpty
			a.slots[i] = t
			a.setCtrl(i, h2(t.Key.Hash()))
			if wasEmpty {
				a.growthLeft--
			}
			a.used++
			return
		}
		seq = seq.next(a.capacity)
	}
}

func (a *Accumulator[K, C]) eraseAt(i uint64) {
	a.used--
	a.slots[i] = term.Term[K, C]{}
	a.setCtrl(i, ctrlDeleted)
}

// Clear empties the accumulator without releasing its backing arrays.
func (a *Accumulator[K, C]) Clear() {
	for i := range a.ctrls {
		a.ctrls[i] = ctrlEmpty
	}
	if a.capacity > 0 {
		a.ctrls[a.capacity] = ctrlSentinel
	}
	for i := range a.slots {
		a.slots[i] = term.Term[K, C]{}
	}
	a.used = 0
	a.growthLeft = growthBudget(a.capacity, a.maxLoadFactor)
}

// All calls yield for every stored term, in bucket order, stopping early if
// yield returns false.
func (a *Accumulator[K, C]) All(yield func(*term.Term[K, C]) bool) {
	for i := uint64(0); i < a.capacity; i++ {
		if a.ctrls[i] != ctrlEmpty && a.ctrls[i] != ctrlDeleted {
			if !yield(&a.slots[i]) {
				return
			}
		}
	}
}

// Rehash moves all terms into a freshly allocated table with capacity at
// least n buckets. On allocation failure (which in Go manifests as a panic
// from make, not an error return) the caller is expected to have already
// guarded against unreasonable n; both new arrays are allocated before the
// old ones are replaced, so an allocation panic leaves the table unchanged.
func (a *Accumulator[K, C]) Rehash(n uint64) error {
	target := nextTableCapacity(n, a.maxLoadFactor)
	a.resize(target)
	return nil
}

func (a *Accumulator[K, C]) rehashForGrowth() {
	a.resize(2*a.capacity + 1)
}

// resize reallocates ctrls/slots to the given capacity (must be 2^n-1) and
// reinserts every live term.
func (a *Accumulator[K, C]) resize(newCapacity uint64) {
	if newCapacity < groupSize-1 {
		newCapacity = groupSize - 1
	}
	oldCapacity, oldCtrls, oldSlots := a.capacity, a.ctrls, a.slots

	a.ctrls = make([]byte, newCapacity+groupSize)
	a.slots = make([]term.Term[K, C], newCapacity)
	for i := range a.ctrls {
		a.ctrls[i] = ctrlEmpty
	}
	a.ctrls[newCapacity] = ctrlSentinel
	a.capacity = newCapacity
	a.used = 0
	a.growthLeft = growthBudget(newCapacity, a.maxLoadFactor)

	for i := uint64(0); i < oldCapacity; i++ {
		c := oldCtrls[i]
		if c == ctrlEmpty || c == ctrlDeleted {
			continue
		}
		t := oldSlots[i]
		bucket, _ := a.Bucket(t.Key)
		a.uncheckedPut(bucket, t)
	}
}

// EvaluateSparsity returns a histogram of probe displacement (the number of
// groups a slot's occupant is away from its home group) to chain-length
// count, as a cheap diagnostic of how evenly keys are spread across
// buckets. A well-behaved hash function concentrates almost everything at
// displacement 0.
func (a *Accumulator[K, C]) EvaluateSparsity() map[int]int {
	hist := map[int]int{}
	for i := uint64(0); i < a.capacity; i++ {
		c := a.ctrls[i]
		if c == ctrlEmpty || c == ctrlDeleted {
			continue
		}
		home, _ := a.Bucket(a.slots[i].Key)
		disp := probeDisplacement(home, i, a.capacity)
		hist[disp]++
	}
	return hist
}

func probeDisplacement(home, actual, capacity uint64) int {
	seq := makeProbeSeq(home, capacity)
	for d := 0; ; d++ {
		if actual >= seq.offset && actual < seq.offset+groupSize {
			return d
		}
		seq = seq.next(capacity)
		if d > int(capacity/groupSize)+1 {
			// Should be unreachable for a well-formed table; avoid a hang.
			return d
		}
	}
}

func growthBudget(capacity uint64, maxLoadFactor float64) int {
	if capacity == 0 {
		return 0
	}
	budget := int(float64(capacity) * maxLoadFactor)
	// Keep at least one slot empty: Insert and findAt stop probing only
	// when they reach a group with an empty slot.
	if budget > int(capacity)-1 {
		budget = int(capacity) - 1
	}
	if budget < 1 {
		budget = 1
	}
	return budget
}

// nextTableCapacity returns the smallest value of the form 2^n-1 such that
// a table of that capacity can hold at least minTerms terms without
// exceeding maxLoadFactor.
func nextTableCapacity(minTerms uint64, maxLoadFactor float64) uint64 {
	if minTerms == 0 {
		minTerms = 1
	}
	// +2 rather than +1 leaves room for the empty slot growthBudget reserves.
	needed := uint64(float64(minTerms)/maxLoadFactor) + 2
	if needed < groupSize {
		needed = groupSize
	}
	n := uint64(1) << bits.Len64(needed-1)
	return n - 1
}

func (a *Accumulator[K, C]) setCtrl(i uint64, v byte) {
	a.ctrls[i] = v
	mirror := ((i - (groupSize - 1)) & a.capacity) + (groupSize - 1)
	a.ctrls[mirror] = v
}

func (a *Accumulator[K, C]) String() string {
	return fmt.Sprintf("accum.Accumulator{capacity=%d used=%d growthLeft=%d}", a.capacity, a.used, a.growthLeft)
}

// --- control byte / probe sequence machinery ---

// h1 extracts the portion of the hash used to pick a home bucket.
func h1(h uint64) uint64 { return h >> 7 }

// h2 extracts the 7 bits stored in the control byte for a full slot.
func h2(h uint64) byte { return byte(h & 0x7f) }

const (
	bitsetLSB uint64 = 0x0101010101010101
	bitsetMSB uint64 = 0x8080808080808080
)

// matchByte returns, as a small slice, the in-group indices [0,groupSize) whose control byte equals want.
// want is always a 7-bit h2 value with its top bit clear, the same
// precondition cockroachdb-swiss's matchH2 relies on, so the same SWAR
// trick applies: XOR every byte in the group against a want-filled word, so
// a matching byte becomes zero, then detect the zero byte(s) via the
// standard haszero computation and read their positions off the resulting
// bitset. The one departure from matchH2 is reading the group through
// encoding/binary instead of reinterpreting a *ctrl through unsafe.Pointer
// — groupSize-byte alignment isn't guaranteed here the way it is over
// matchH2's fixed-layout array, so converting via unsafe would risk an
// unaligned read on some architectures.
func matchByte(group []byte, want byte) []int {
	v := binary.LittleEndian.Uint64(group) ^ (bitsetLSB * uint64(want))
	matches := ((v - bitsetLSB) &^ v) & bitsetMSB

	var out [groupSize]int
	n := 0
	for matches != 0 {
		out[n] = int(bits.TrailingZeros64(matches) >> 3)
		n++
		matches &= matches - 1
	}
	return out[:n]
}

func hasEmpty(group []byte) bool {
	for _, c := range group {
		if c == ctrlEmpty {
			return true
		}
	}
	return false
}

func firstEmptyOrDeleted(group []byte) (int, bool) {
	for i, c := range group {
		if c == ctrlEmpty || c == ctrlDeleted {
			return i, true
		}
	}
	return 0, false
}

// probeSeq maintains the state for a quadratic probe sequence over groups:
// p(i) := groupSize*(i^2+i)/2 + hash (mod capacity+1). This visits every
// group exactly once when the number of groups is a power of two.
type probeSeq struct {
	offset uint64
	index  uint64
}

func makeProbeSeq(homeBucket, capacity uint64) probeSeq {
	return probeSeq{offset: homeBucket & capacity}
}

func (s probeSeq) next(capacity uint64) probeSeq {
	s.index += groupSize
	s.offset = (s.offset + s.index) & capacity
	return s
}

func (s probeSeq) offsetAt(i int, capacity uint64) uint64 {
	return (s.offset + uint64(i)) & capacity
}

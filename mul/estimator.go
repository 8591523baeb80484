package mul

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/biscani-labs/seriesmul/config"
	"github.com/biscani-labs/seriesmul/term"
	"github.com/spaolacci/murmur3"
)

// estimatorTrials is the number of Monte-Carlo trials averaged into a single
// density estimate.
const estimatorTrials = 10

// estimatorMultiplier divides the cross-product size before the square root
// that gives the per-trial sample cap, and multiplies the squared mean count
// in the final estimate — see estimateFinalSize.
const estimatorMultiplier = 4

// estimateFinalSize approximates the number of distinct, non-filtered
// result terms that multiplying f's full operand-1 and operand-2 term
// lists would produce, without actually performing the multiplication.
//
// Each of estimatorTrials trials walks a random permutation of both operand
// index lists, multiplying and inserting pairs into f.target (which is
// assumed empty on entry and is Clear()'d at the end of every trial,
// including the last) until either a birthday-paradox collision stops the
// trial early (the target's size failed to grow from an insertion that
// should have strictly grown it, meaning a result key was already present
// — a sign the sample is exhausting the term space) or a fixed sample cap
// is reached. Each time the operand-1 cursor wraps, operand 2's order is
// rotated by one and its cursor restarts, so the next pass pairs different
// terms. The trial's count (and how many of its results would have
// been filtered) are accumulated, and the final estimate is the squared
// mean trial count, scaled by estimatorMultiplier and by the observed
// fraction of non-filtered results.
//
// Trials are not independent in the sense of starting from a fresh clear
// table each time with unrelated randomness discarded between trials — the
// accumulator's bucket layout from one trial can influence displacement
// patterns observed in the next even after Clear, since Clear empties
// slots without reallocating or rehashing. This mirrors the reference
// estimator this is ported from, which intentionally reuses one container
// and one random engine across all trials rather than paying for a fresh
// table each time; see DESIGN.md.
//
// Returns (0, true) for a degenerate input (either operand empty) with no
// sampling performed, and (_, false) if any insertion during sampling
// failed, in which case f.target has been cleared and the caller should
// give up on sizing.
func estimateFinalSize[K term.Key[K], C term.Coefficient[C]](f *functor[K, C], size1, size2 int) (uint64, bool) {
	if size1 == 0 || size2 == 0 {
		return 0, true
	}

	maxSamples := int(math.Sqrt(float64(size1) * float64(size2) / float64(estimatorMultiplier)))
	if maxSamples < 1 {
		maxSamples = 1
	}

	idx1 := make([]int, size1)
	for i := range idx1 {
		idx1[i] = i
	}
	idx2 := make([]int, size2)
	for i := range idx2 {
		idx2[i] = i
	}

	rng := rand.New(rand.NewSource(estimatorSeed(f)))

	var total, filtered int
	for trial := 0; trial < estimatorTrials; trial++ {
		rng.Shuffle(len(idx1), func(a, b int) { idx1[a], idx1[b] = idx1[b], idx1[a] })
		rng.Shuffle(len(idx2), func(a, b int) { idx2[a], idx2[b] = idx2[b], idx2[a] })

		count, countFiltered := 0, 0
		p1, p2 := 0, 0
		for count < maxSamples {
			if p1 == len(idx1) {
				p1 = 0
				rotateRight1(idx2)
				p2 = 0
			}
			if p2 == len(idx2) {
				p2 = 0
			}

			before := f.target.Len()
			f.multiply(idx1[p1], idx2[p2])
			if _, err := f.insert(false); err != nil {
				f.target.Clear()
				return 0, false
			}
			if f.target.Len() != before+f.nres {
				// Birthday-paradox collision: a result key that should
				// have been new was already present.
				break
			}
			for s := 0; s < f.nres; s++ {
				if f.filter(f.scratch[s]) {
					countFiltered++
				}
			}
			count += f.nres
			p1++
			p2++
		}
		f.target.Clear()

		if total > math.MaxInt64-count || filtered > math.MaxInt64-countFiltered {
			return 0, false
		}
		total += count
		filtered += countFiltered
	}

	if total == 0 {
		return 0, true
	}
	mean := float64(total) / float64(estimatorTrials)
	estimate := mean * mean * float64(estimatorMultiplier) * float64(total-filtered) / float64(total)
	if estimate < 0 {
		estimate = 0
	}
	return uint64(estimate), true
}

// rotateRight1 rotates s by one position to the right in place: the last
// element moves to the front. Called whenever operand 1's sampling cursor
// wraps, so that the next pass sees operand 2 starting from a different
// offset instead of retracing the exact same pairs.
func rotateRight1(s []int) {
	if len(s) < 2 {
		return
	}
	last := s[len(s)-1]
	copy(s[1:], s[:len(s)-1])
	s[0] = last
}

// estimatorSeed derives a deterministic seed from the content being
// estimated, so repeated calls over the same operand pair are reproducible
// while concurrent calls over different per-thread operand-1 slices (see
// driver.go) are decorrelated from one another.
func estimatorSeed[K term.Key[K], C term.Coefficient[C]](f *functor[K, C]) int64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], f.terms1[0].Key.Hash())
	binary.LittleEndian.PutUint64(buf[8:16], f.terms2[0].Key.Hash())
	binary.LittleEndian.PutUint64(buf[16:24], uint64(len(f.terms1))<<32|uint64(len(f.terms2)))
	return int64(murmur3.Sum64(buf[:]))
}

// rehasher decides whether estimating and pre-sizing f.target is worth its
// own cost, mirroring the guard in the reference implementation: only
// bother if the full cross product size1*size2 is at least
// config.Global().MinWorkPerThread() (computed as size1 >=
// minWork/size2 to avoid overflowing the product for large operands).
// On success, f.target has been rehashed to hold the estimate at the
// target's configured max load factor. On any failure (no positive
// estimate, or the rehash itself erroring) f.target is cleared and left at
// whatever capacity it already had, and the caller proceeds without a
// pre-sized target — this is the only place in the whole multiplier where
// an error degrades the estimate to "none" instead of propagating.
func rehasher[K term.Key[K], C term.Coefficient[C]](f *functor[K, C], size1, size2 int) (bool, uint64) {
	minWork := config.Global().MinWorkPerThread()
	if size2 == 0 || size1 < minWork/size2 {
		return false, 0
	}
	estimate, ok := estimateFinalSize(f, size1, size2)
	if !ok || estimate == 0 {
		f.target.Clear()
		return false, 0
	}
	target := uint64(math.Ceil(float64(estimate) / f.target.MaxLoadFactor()))
	if err := f.target.Rehash(target); err != nil {
		f.target.Clear()
		return false, 0
	}
	return true, estimate
}

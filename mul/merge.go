package mul

import (
	"math"

	"github.com/biscani-labs/seriesmul/accum"
	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
	"golang.org/x/sync/errgroup"
)

// pendingMerge is one source term together with its home bucket against
// the merge target's current capacity, computed once during the scan phase
// so the apply phase never needs to touch a source accumulator again.
type pendingMerge[K term.Key[K], C term.Coefficient[C]] struct {
	bucket uint64
	t      term.Term[K, C]
}

// finalMerge folds every term of every accumulator in sources into target,
// combining coefficients on key collision and dropping terms that become
// ignorable, then rehashes target if the merge pushed it over its max load
// factor. target is assumed already sized so that most merges fit without
// a rehash (see driver.go's candidate-reuse / pre-rehash logic).
//
// The merge runs in two phases. Phase one scans every source accumulator
// concurrently (one goroutine per source; purely read-only against that
// source, so no synchronization is needed there) to build a flat slice of
// (bucket, term) pairs, with each source's pairs written into a disjoint
// sub-range of the slice. Phase two applies every pending pair to target on
// a single goroutine.
//
// Phase two is sequential rather than partitioned across target's bucket
// space, unlike the reference multiplier's lock-free final_merge. That
// design relies on a key's home bucket range never being touched by any
// other worker's range, which in turn relies on probe groups being aligned
// to fixed groupSize boundaries. This accumulator's groups are not so
// aligned — accum.Accumulator.Bucket returns the exact slot a key's probe
// sequence starts from, not a rounded group index, the same design
// cockroachdb/swiss's map.go uses and documents as deliberately
// unaligned — so two keys with home buckets a few slots apart can still
// write into each other's "range" on nothing more than an ordinary,
// collision-free insert. A worker partitioned by bucket range therefore
// cannot be shown to own a disjoint set of slots, and a fix would require
// either re-deriving group-aligned buckets (changing the probing scheme
// this package was grounded on) or switching to a chaining-based
// container, where each bucket is an independent list and disjoint ranges
// really are disjoint (closer to the shape `array_hash_set.cpp` suggests
// for the reference's own hash_set). Given that, this port keeps the
// simpler, always-correct sequential apply rather than a partitioned one
// that only looks concurrent behind a single mutex.
func finalMerge[K term.Key[K], C term.Coefficient[C]](target *accum.Accumulator[K, C], sources []*accum.Accumulator[K, C], omega symbols.Set) error {
	if len(sources) == 0 {
		return nil
	}

	total := 0
	for _, s := range sources {
		total += s.Len()
	}
	pending := make([]pendingMerge[K, C], total)

	var scan errgroup.Group
	offset := 0
	for _, src := range sources {
		src, start := src, offset
		offset += src.Len()
		scan.Go(func() error {
			i := start
			var scanErr error
			src.All(func(t *term.Term[K, C]) bool {
				bucket, err := target.Bucket(t.Key)
				if err != nil {
					scanErr = err
					return false
				}
				pending[i] = pendingMerge[K, C]{bucket: bucket, t: *t}
				i++
				return true
			})
			return scanErr
		})
	}
	if err := scan.Wait(); err != nil {
		return err
	}

	scanned := target.BucketCount()
	for _, p := range pending {
		bucket := p.bucket
		if target.BucketCount() != scanned {
			// A UniqueInsert inside Merge grew target, so the bucket
			// computed during the scan no longer matches its capacity.
			bucket, _ = target.Bucket(p.t.Key)
		}
		target.Merge(p.t, bucket, omega)
	}

	if target.LoadFactor() > target.MaxLoadFactor() {
		return target.Rehash(uint64(math.Ceil(float64(target.Len()) / target.MaxLoadFactor())))
	}
	return nil
}

package mul

import "github.com/biscani-labs/seriesmul/term"

// blockSize is the fixed tile edge used by blockedMultiply. Chosen, as in
// the reference implementation this is ported from, to keep a tile's
// working set of keys and coefficients resident in L2 cache regardless of
// the concrete key/coefficient type's size.
const blockSize = 256

// blockedMultiply iterates every pair (i,j) in [0,size1) x [0,size2),
// tiled into blockSize x blockSize blocks, multiplying and inserting each
// pair via f. Each full block row is swept tile by tile over the full
// columns (regulars1 x regulars2) and then over its right-edge remainder
// columns (regulars1 x rem2); after all full block rows come the
// bottom-edge remainder rows against the full columns (rem1 x regulars2),
// and finally the bottom-right corner (rem1 x rem2) — the same four-strip
// decomposition regardless of which dimension has a partial block.
//
// Within a tile, skip(i,j) returning true breaks only the inner j loop: the
// multiplier assumes (per truncate.Truncator's skipping contract) that the
// remaining j' > j in that row would also be skipped, but makes no such
// assumption across i or across tiles.
func blockedMultiply[K term.Key[K], C term.Coefficient[C]](f *functor[K, C], size1, size2 int) error {
	nblocks1, nblocks2 := size1/blockSize, size2/blockSize
	rem1Start, rem2Start := nblocks1*blockSize, nblocks2*blockSize

	for b1 := 0; b1 < nblocks1; b1++ {
		iStart, iEnd := b1*blockSize, b1*blockSize+blockSize
		for b2 := 0; b2 < nblocks2; b2++ {
			jStart, jEnd := b2*blockSize, b2*blockSize+blockSize
			if err := multiplyTile(f, iStart, iEnd, jStart, jEnd); err != nil {
				return err
			}
		}
		if rem2Start < size2 {
			if err := multiplyTile(f, iStart, iEnd, rem2Start, size2); err != nil {
				return err
			}
		}
	}

	if rem1Start < size1 {
		for b2 := 0; b2 < nblocks2; b2++ {
			jStart, jEnd := b2*blockSize, b2*blockSize+blockSize
			if err := multiplyTile(f, rem1Start, size1, jStart, jEnd); err != nil {
				return err
			}
		}
		if rem2Start < size2 {
			if err := multiplyTile(f, rem1Start, size1, rem2Start, size2); err != nil {
				return err
			}
		}
	}
	return nil
}

func multiplyTile[K term.Key[K], C term.Coefficient[C]](f *functor[K, C], iStart, iEnd, jStart, jEnd int) error {
	for i := iStart; i < iEnd; i++ {
		for j := jStart; j < jEnd; j++ {
			if f.skip(i, j) {
				break
			}
			f.multiply(i, j)
			if _, err := f.insert(true); err != nil {
				return err
			}
		}
	}
	return nil
}

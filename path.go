package merkletree

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sunmoon11100/poseidon-merkle-tree/compress"
)

// updatePath computes the effect of writing leaf at leafIndex: it returns the
// updated left-sibling cache and the new root, in exactly len(filled)
// compression calls. The inputs are not mutated, so the caller can commit the
// result atomically.
//
// Walking from the leaf to the root, the running hash at level i sits at node
// index leafIndex>>i. An even index is a left child: its right sibling does
// not exist yet, so it is cached for the sibling's future insertion and
// paired with the empty subtree zeros[i]. An odd index is a right child: the
// left sibling was completed by an earlier insertion and filled[i] still
// holds its hash.
func updatePath(filled, zeros []fr.Element, leafIndex uint64, leaf fr.Element, f compress.Func) ([]fr.Element, fr.Element) {
	next := make([]fr.Element, len(filled))
	copy(next, filled)

	cur := leaf
	idx := leafIndex
	for i := range next {
		if idx%2 == 0 {
			next[i] = cur
			cur = f(cur, zeros[i])
		} else {
			cur = f(next[i], cur)
		}
		idx /= 2
	}
	return next, cur
}

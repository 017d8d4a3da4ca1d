// Package fulltree recomputes Merkle roots from scratch. It is the naive
// reference the incremental implementation is differentially tested against,
// and is deliberately written level by level over the whole padded tree.
package fulltree

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sunmoon11100/poseidon-merkle-tree/compress"
)

// Root hashes a full binary tree of 2^depth leaves, the first len(leaves)
// being the given ones in order and the rest the zero leaf.
func Root(leaves []fr.Element, depth int, zeroLeaf fr.Element, f compress.Func) fr.Element {
	level := make([]fr.Element, 1<<uint(depth))
	for i := range level {
		if i < len(leaves) {
			level[i] = leaves[i]
		} else {
			level[i] = zeroLeaf
		}
	}
	for len(level) > 1 {
		next := make([]fr.Element, len(level)/2)
		for i := range next {
			next[i] = f(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}

package merkletree

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"

	"github.com/sunmoon11100/poseidon-merkle-tree/compress"
)

// zeroLeafTag is hashed and reduced into the scalar field to obtain the
// canonical empty leaf. Deployed sets that pin a different constant can
// override it with WithZeroLeaf.
const zeroLeafTag = "poseidon-merkle-tree.leaf"

func defaultZeroLeaf() fr.Element {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(zeroLeafTag))
	var z fr.Element
	z.SetBytes(h.Sum(nil))
	return z
}

// zeroHashes returns the hash of the all-empty subtree at every level:
// z[0] is the empty leaf and z[i+1] = compress(z[i], z[i]), so z[depth] is
// the root of the empty tree. The table depends only on depth, the empty
// leaf and the compression function, and is owned by a single tree instance.
func zeroHashes(depth int, zeroLeaf fr.Element, f compress.Func) []fr.Element {
	z := make([]fr.Element, depth+1)
	z[0] = zeroLeaf
	for i := 0; i < depth; i++ {
		z[i+1] = f(z[i], z[i])
	}
	return z
}

// Package merkletree maintains an append-only, fixed-depth binary Merkle tree
// whose two-to-one compression function is SNARK-friendly, producing
// commitments suitable for use inside zero-knowledge circuits (anonymity-set
// or nullifier-set membership, for example).
//
// Leaves are inserted one at a time, in order, and the root is recomputed
// incrementally in O(depth) compression calls using a cache of the most
// recently completed left subtree at each level. A bounded window of recent
// roots answers "was this root valid at some recent point", tolerating the
// skew between the root a prover observed and the root after subsequent
// insertions.
//
// The default compression is the width-2 BN254 Poseidon2 permutation with a
// feed-forward, from github.com/consensys/gnark-crypto; MiMC and
// caller-supplied functions are also supported. Proof generation and
// verification are out of scope: the tree only commits leaves and remembers
// roots.
package merkletree

import "github.com/blang/semver/v4"

// Version of the library. It is embedded in snapshot headers and checked on
// restore.
var Version = semver.MustParse("0.2.0")

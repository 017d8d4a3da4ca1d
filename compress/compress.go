// Package compress provides two-to-one compression functions over the BN254
// scalar field, used as the internal node combiner of the Merkle tree. The
// functions are deterministic and assumed collision-resistant; the tree treats
// them as opaque.
package compress

import (
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	_ "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
	gchash "github.com/consensys/gnark-crypto/hash"
)

// Func combines two field elements into one.
type Func func(left, right fr.Element) fr.Element

var bn254Permutation = sync.OnceValue(func() *poseidon2.Permutation {
	params := poseidon2.GetDefaultParameters()
	return poseidon2.NewPermutation(2, params.NbFullRounds, params.NbPartialRounds)
})

// Poseidon2 returns the default compression: the width-2 Poseidon2
// permutation with a feed-forward on the second state element,
// compress(a, b) = permutation(a, b)[1] + b.
func Poseidon2() Func {
	perm := bn254Permutation()
	return func(left, right fr.Element) fr.Element {
		x := [2]fr.Element{left, right}
		y := x[1]
		if err := perm.Permutation(x[:]); err != nil {
			// the input width always matches the permutation width
			panic(err)
		}
		x[1].Add(&x[1], &y)
		return x[1]
	}
}

// MiMC returns a MiMC-based compression, for trees whose membership proofs
// are verified in-circuit with the MiMC gadget.
func MiMC() Func {
	return func(left, right fr.Element) fr.Element {
		h := gchash.MIMC_BN254.New()
		l := left.Bytes()
		r := right.Bytes()
		h.Write(l[:])
		h.Write(r[:])
		var res fr.Element
		res.SetBytes(h.Sum(nil))
		return res
	}
}

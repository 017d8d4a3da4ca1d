package merkletree

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sunmoon11100/poseidon-merkle-tree/compress"
	"github.com/sunmoon11100/poseidon-merkle-tree/logger"
)

const (
	// MaxDepth bounds the depth accepted by New.
	MaxDepth = 20

	// DefaultHistorySize is the number of recent roots retained for
	// IsKnownRoot when WithHistorySize is not used.
	DefaultHistorySize = 20
)

// Tree is an append-only fixed-depth binary Merkle tree. All state is owned
// exclusively by the instance; distinct trees are independent. A single tree
// is not safe for concurrent mutation: an insertion updates the subtree
// cache, the root, the leaf count and the history as one logical unit, so
// callers must serialize access themselves.
type Tree struct {
	depth     int
	leafCount uint64

	// filled[i] caches the hash of the most recently completed left child at
	// level i. It is read only when the insertion path passes through a right
	// child at that level, which guarantees an earlier insertion wrote it.
	filled []fr.Element

	// zeros[i] is the hash of the all-empty subtree at level i; zeros[depth]
	// is the empty-tree root.
	zeros []fr.Element

	root     fr.Element
	history  *rootHistory
	compress compress.Func
	zeroLeaf fr.Element
}

// Option modifies the construction of a Tree. See WithCompressor,
// WithHistorySize and WithZeroLeaf.
type Option func(*treeConfig) error

type treeConfig struct {
	compress    compress.Func
	historySize int
	zeroLeaf    fr.Element
}

// WithCompressor overrides the default Poseidon2 compression. The same
// function must be supplied again when restoring a snapshot of the tree.
func WithCompressor(f compress.Func) Option {
	return func(cfg *treeConfig) error {
		if f == nil {
			return fmt.Errorf("compressor must not be nil")
		}
		cfg.compress = f
		return nil
	}
}

// WithHistorySize sets the number of recent roots retained for IsKnownRoot.
func WithHistorySize(size int) Option {
	return func(cfg *treeConfig) error {
		if size < 1 {
			return fmt.Errorf("history size must be at least 1, got %d", size)
		}
		cfg.historySize = size
		return nil
	}
}

// WithZeroLeaf overrides the canonical empty-leaf element.
func WithZeroLeaf(zero fr.Element) Option {
	return func(cfg *treeConfig) error {
		cfg.zeroLeaf = zero
		return nil
	}
}

func newTreeConfig(opts ...Option) (treeConfig, error) {
	cfg := treeConfig{
		compress:    compress.Poseidon2(),
		historySize: DefaultHistorySize,
		zeroLeaf:    defaultZeroLeaf(),
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return treeConfig{}, err
		}
	}
	return cfg, nil
}

// New returns an empty tree of the given depth, holding up to 2^depth leaves.
func New(depth int, opts ...Option) (*Tree, error) {
	if depth < 1 || depth > MaxDepth {
		return nil, fmt.Errorf("%w: depth %d not in [1, %d]", ErrInvalidDepth, depth, MaxDepth)
	}
	cfg, err := newTreeConfig(opts...)
	if err != nil {
		return nil, err
	}

	zeros := zeroHashes(depth, cfg.zeroLeaf, cfg.compress)
	filled := make([]fr.Element, depth)
	copy(filled, zeros[:depth])

	t := &Tree{
		depth:    depth,
		filled:   filled,
		zeros:    zeros,
		root:     zeros[depth],
		history:  newRootHistory(cfg.historySize),
		compress: cfg.compress,
		zeroLeaf: cfg.zeroLeaf,
	}
	t.history.push(t.root)

	log := logger.Logger()
	log.Debug().Int("depth", depth).Uint64("capacity", t.Capacity()).
		Int("historySize", cfg.historySize).Msg("new merkle tree")
	return t, nil
}

// Insert appends a leaf given as the canonical 32-byte big-endian encoding of
// a field element and returns the index it was placed at. The tree is left
// unchanged on error. Callers holding raw data rather than an encoded element
// should hash it first with HashLeaf.
func (t *Tree) Insert(leaf []byte) (uint64, error) {
	if len(leaf) != fr.Bytes {
		return 0, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidLeafEncoding, fr.Bytes, len(leaf))
	}
	var e fr.Element
	if err := e.SetBytesCanonical(leaf); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLeafEncoding, err)
	}
	return t.InsertElement(e)
}

// InsertElement appends a leaf already encoded as a field element and returns
// the index it was placed at.
func (t *Tree) InsertElement(leaf fr.Element) (uint64, error) {
	if t.leafCount == t.Capacity() {
		return 0, ErrTreeFull
	}
	index := t.leafCount

	filled, root := updatePath(t.filled, t.zeros, index, leaf, t.compress)

	t.filled = filled
	t.root = root
	t.leafCount++
	t.history.push(root)
	return index, nil
}

// IsKnownRoot reports whether root was the tree's root at some point within
// the last history-size insertions. The empty-tree root is known right after
// construction and is evicted like any other root.
func (t *Tree) IsKnownRoot(root fr.Element) bool {
	return t.history.contains(&root)
}

// IsKnownRootBytes is IsKnownRoot on the canonical 32-byte big-endian
// encoding of a root. Malformed encodings are simply unknown.
func (t *Tree) IsKnownRootBytes(root []byte) bool {
	var e fr.Element
	if len(root) != fr.Bytes || e.SetBytesCanonical(root) != nil {
		return false
	}
	return t.IsKnownRoot(e)
}

// Root returns the current root: the root of a full tree of Capacity leaves
// where the first LeafCount are the inserted ones and the rest are the
// canonical empty leaf.
func (t *Tree) Root() fr.Element {
	return t.root
}

// LeafCount returns the number of leaves inserted so far.
func (t *Tree) LeafCount() uint64 {
	return t.leafCount
}

// Capacity returns 2^depth, the maximum number of leaves.
func (t *Tree) Capacity() uint64 {
	return 1 << uint(t.depth)
}

// Depth returns the tree depth fixed at construction.
func (t *Tree) Depth() int {
	return t.depth
}

// ZeroHashes returns a copy of the empty-subtree hash table, zeros[0] being
// the empty leaf and zeros[Depth] the empty-tree root.
func (t *Tree) ZeroHashes() []fr.Element {
	out := make([]fr.Element, len(t.zeros))
	copy(out, t.zeros)
	return out
}

// HashLeaf maps arbitrary bytes into the scalar field, for callers inserting
// raw data rather than pre-encoded elements.
func HashLeaf(data []byte) (fr.Element, error) {
	elems, err := fr.Hash(data, []byte("poseidon-merkle-tree.hash-leaf"), 1)
	if err != nil {
		return fr.Element{}, err
	}
	return elems[0], nil
}

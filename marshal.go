package merkletree

import (
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/blang/semver/v4"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"

	"github.com/sunmoon11100/poseidon-merkle-tree/logger"
)

// snapshot is the serialized form of a Tree. The compression function is not
// part of it: restoring a tree built with a non-default compressor requires
// supplying the same WithCompressor option to Load, and a mismatch is caught
// by the root revalidation.
type snapshot struct {
	Version     string
	Depth       int
	HistorySize int
	LeafCount   uint64
	ZeroLeaf    []byte
	Root        []byte
	Filled      [][]byte
	History     [][]byte // oldest to newest
}

// WriteTo serializes the tree state with CBOR, prefixed by a header carrying
// the library version and tree shape.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	s := snapshot{
		Version:     Version.String(),
		Depth:       t.depth,
		HistorySize: len(t.history.roots),
		LeafCount:   t.leafCount,
		ZeroLeaf:    elementBytes(t.zeroLeaf),
		Root:        elementBytes(t.root),
		Filled:      make([][]byte, t.depth),
	}
	for i, f := range t.filled {
		s.Filled[i] = elementBytes(f)
	}
	newest := t.history.newestToOldest()
	for i := len(newest) - 1; i >= 0; i-- {
		s.History = append(s.History, elementBytes(newest[i]))
	}

	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	data, err := em.Marshal(&s)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Load deserializes a tree written by WriteTo and revalidates it: the header
// is checked against the library version (a mismatch only warns), the shape
// against the tree bounds, and the stored root against a recomputation from
// the filled subtrees. Options may supply the compressor the writer used;
// depth, history size and zero leaf come from the snapshot itself.
func Load(r io.Reader, opts ...Option) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var s snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	objectVersion, err := semver.Parse(s.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: when parsing snapshot version: %v", ErrInvalidSnapshot, err)
	}
	if Version.Compare(objectVersion) != 0 {
		log := logger.Logger()
		log.Warn().Str("binary", Version.String()).Str("snapshot", objectVersion.String()).
			Msg("library version mismatch with snapshot. there are no guarantees on compatibility")
	}

	if s.Depth < 1 || s.Depth > MaxDepth {
		return nil, fmt.Errorf("%w: depth %d not in [1, %d]", ErrInvalidSnapshot, s.Depth, MaxDepth)
	}
	if s.HistorySize < 1 {
		return nil, fmt.Errorf("%w: history size %d", ErrInvalidSnapshot, s.HistorySize)
	}
	if s.LeafCount > 1<<uint(s.Depth) {
		return nil, fmt.Errorf("%w: leaf count %d exceeds capacity", ErrInvalidSnapshot, s.LeafCount)
	}
	if len(s.Filled) != s.Depth {
		return nil, fmt.Errorf("%w: %d filled subtrees for depth %d", ErrInvalidSnapshot, len(s.Filled), s.Depth)
	}
	if len(s.History) < 1 || len(s.History) > s.HistorySize {
		return nil, fmt.Errorf("%w: %d history entries for window of %d", ErrInvalidSnapshot, len(s.History), s.HistorySize)
	}

	cfg, err := newTreeConfig(opts...)
	if err != nil {
		return nil, err
	}
	zeroLeaf, err := decodeElement(s.ZeroLeaf)
	if err != nil {
		return nil, fmt.Errorf("%w: zero leaf: %v", ErrInvalidSnapshot, err)
	}

	t := &Tree{
		depth:     s.Depth,
		leafCount: s.LeafCount,
		filled:    make([]fr.Element, s.Depth),
		zeros:     zeroHashes(s.Depth, zeroLeaf, cfg.compress),
		history:   newRootHistory(s.HistorySize),
		compress:  cfg.compress,
		zeroLeaf:  zeroLeaf,
	}
	for i, b := range s.Filled {
		if t.filled[i], err = decodeElement(b); err != nil {
			return nil, fmt.Errorf("%w: filled subtree %d: %v", ErrInvalidSnapshot, i, err)
		}
	}
	if t.root, err = decodeElement(s.Root); err != nil {
		return nil, fmt.Errorf("%w: root: %v", ErrInvalidSnapshot, err)
	}
	for i, b := range s.History {
		root, err := decodeElement(b)
		if err != nil {
			return nil, fmt.Errorf("%w: history entry %d: %v", ErrInvalidSnapshot, i, err)
		}
		t.history.push(root)
	}
	if newest := t.history.newestToOldest()[0]; !newest.Equal(&t.root) {
		return nil, fmt.Errorf("%w: root is not the newest history entry", ErrInvalidSnapshot)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate cross-checks the stored root against a recomputation from the
// filled subtrees and the zero table: folding the empty leaf upwards, level i
// takes filled[i] as left sibling when bit i of the leaf count is set and the
// empty subtree as right sibling otherwise. A full tree has no next insertion
// path, so only its history is checked.
func (t *Tree) Validate() error {
	if t.leafCount == t.Capacity() {
		return nil
	}
	live := bitset.From([]uint64{t.leafCount})
	node := t.zeros[0]
	for i := 0; i < t.depth; i++ {
		if live.Test(uint(i)) {
			node = t.compress(t.filled[i], node)
		} else {
			node = t.compress(node, t.zeros[i])
		}
	}
	if !node.Equal(&t.root) {
		return fmt.Errorf("%w: stored root does not match filled subtrees", ErrInvalidSnapshot)
	}
	return nil
}

func elementBytes(e fr.Element) []byte {
	b := e.Bytes()
	return b[:]
}

func decodeElement(b []byte) (fr.Element, error) {
	var e fr.Element
	if len(b) != fr.Bytes {
		return e, fmt.Errorf("expected %d bytes, got %d", fr.Bytes, len(b))
	}
	err := e.SetBytesCanonical(b)
	return e, err
}

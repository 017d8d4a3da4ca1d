package merkletree

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sunmoon11100/poseidon-merkle-tree/compress"
)

func buildTree(t *testing.T, nbLeaves int, opts ...Option) *Tree {
	t.Helper()
	tree, err := New(4, opts...)
	require.NoError(t, err)
	for i := 0; i < nbLeaves; i++ {
		var leaf fr.Element
		leaf.SetUint64(uint64(i) + 1)
		_, err := tree.InsertElement(leaf)
		require.NoError(t, err)
	}
	return tree
}

func TestSnapshotRoundTrip(t *testing.T) {
	assert := require.New(t)

	tree := buildTree(t, 5, WithHistorySize(3))

	var buf bytes.Buffer
	n, err := tree.WriteTo(&buf)
	assert.NoError(err)
	assert.Equal(int64(buf.Len()), n)

	loaded, err := Load(&buf)
	assert.NoError(err)

	assert.Equal(tree.Depth(), loaded.Depth())
	assert.Equal(tree.LeafCount(), loaded.LeafCount())
	a, b := tree.Root(), loaded.Root()
	assert.True(a.Equal(&b))

	// the serialized form of the restored tree is identical
	var buf2, buf3 bytes.Buffer
	_, err = tree.WriteTo(&buf2)
	assert.NoError(err)
	_, err = loaded.WriteTo(&buf3)
	assert.NoError(err)
	assert.Empty(cmp.Diff(buf2.Bytes(), buf3.Bytes()))
}

func TestSnapshotPreservesHistory(t *testing.T) {
	assert := require.New(t)

	tree := buildTree(t, 6, WithHistorySize(4))
	roots := tree.history.newestToOldest()

	var buf bytes.Buffer
	_, err := tree.WriteTo(&buf)
	assert.NoError(err)
	loaded, err := Load(&buf)
	assert.NoError(err)

	for _, root := range roots {
		assert.True(loaded.IsKnownRoot(root))
	}
	assert.False(loaded.IsKnownRoot(elem(999)))
}

func TestSnapshotThenInsertMatchesLiveTree(t *testing.T) {
	assert := require.New(t)

	live := buildTree(t, 5)

	var buf bytes.Buffer
	_, err := live.WriteTo(&buf)
	assert.NoError(err)
	loaded, err := Load(&buf)
	assert.NoError(err)

	for i := uint64(0); i < 7; i++ {
		leaf := elem(100 + i)
		liveIdx, err := live.InsertElement(leaf)
		assert.NoError(err)
		loadedIdx, err := loaded.InsertElement(leaf)
		assert.NoError(err)
		assert.Equal(liveIdx, loadedIdx)

		a, b := live.Root(), loaded.Root()
		assert.True(a.Equal(&b), "insert %d diverged after restore", i)
	}
}

func TestSnapshotWithCompressor(t *testing.T) {
	assert := require.New(t)

	tree := buildTree(t, 3, WithCompressor(compress.MiMC()))

	var buf bytes.Buffer
	_, err := tree.WriteTo(&buf)
	assert.NoError(err)

	// restoring with the default compressor fails the root revalidation
	_, err = Load(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(err, ErrInvalidSnapshot)

	loaded, err := Load(bytes.NewReader(buf.Bytes()), WithCompressor(compress.MiMC()))
	assert.NoError(err)
	a, b := tree.Root(), loaded.Root()
	assert.True(a.Equal(&b))
}

func corrupt(t *testing.T, tree *Tree, mutate func(*snapshot)) error {
	t.Helper()
	var buf bytes.Buffer
	_, err := tree.WriteTo(&buf)
	require.NoError(t, err)

	var s snapshot
	require.NoError(t, cbor.Unmarshal(buf.Bytes(), &s))
	mutate(&s)
	data, err := cbor.Marshal(&s)
	require.NoError(t, err)

	_, err = Load(bytes.NewReader(data))
	return err
}

func TestSnapshotCorruption(t *testing.T) {
	assert := require.New(t)
	tree := buildTree(t, 5)

	assert.ErrorIs(corrupt(t, tree, func(s *snapshot) {
		e := elem(1234)
		tampered := e.Bytes()
		s.Root = tampered[:]
		s.History[len(s.History)-1] = tampered[:]
	}), ErrInvalidSnapshot)

	assert.ErrorIs(corrupt(t, tree, func(s *snapshot) {
		s.Depth = MaxDepth + 1
	}), ErrInvalidSnapshot)

	assert.ErrorIs(corrupt(t, tree, func(s *snapshot) {
		s.LeafCount = 1 << 10
	}), ErrInvalidSnapshot)

	assert.ErrorIs(corrupt(t, tree, func(s *snapshot) {
		s.Filled = s.Filled[:2]
	}), ErrInvalidSnapshot)

	assert.ErrorIs(corrupt(t, tree, func(s *snapshot) {
		s.History = nil
	}), ErrInvalidSnapshot)

	assert.ErrorIs(corrupt(t, tree, func(s *snapshot) {
		// the newest history entry must be the current root
		s.History[len(s.History)-1] = s.History[0]
	}), ErrInvalidSnapshot)

	assert.ErrorIs(corrupt(t, tree, func(s *snapshot) {
		fr.Modulus().FillBytes(s.Filled[0])
	}), ErrInvalidSnapshot)

	assert.ErrorIs(corrupt(t, tree, func(s *snapshot) {
		s.Version = "not-a-version"
	}), ErrInvalidSnapshot)

	_, err := Load(bytes.NewReader([]byte("garbage")))
	assert.ErrorIs(err, ErrInvalidSnapshot)
}

func TestSnapshotFullTree(t *testing.T) {
	assert := require.New(t)

	tree := buildTree(t, 16) // capacity of depth 4
	assert.Equal(tree.Capacity(), tree.LeafCount())

	var buf bytes.Buffer
	_, err := tree.WriteTo(&buf)
	assert.NoError(err)
	loaded, err := Load(&buf)
	assert.NoError(err)

	a, b := tree.Root(), loaded.Root()
	assert.True(a.Equal(&b))
	_, err = loaded.InsertElement(elem(1))
	assert.ErrorIs(err, ErrTreeFull)
}

package merkletree

import "errors"

var (
	// ErrInvalidDepth is returned by New when the requested depth is outside
	// [1, MaxDepth].
	ErrInvalidDepth = errors.New("invalid tree depth")

	// ErrTreeFull is returned by Insert once capacity leaves have been
	// inserted. The tree is left unchanged.
	ErrTreeFull = errors.New("merkle tree is full")

	// ErrInvalidLeafEncoding is returned by Insert when the supplied bytes are
	// not the canonical encoding of a scalar field element.
	ErrInvalidLeafEncoding = errors.New("leaf is not a canonical field element")

	// ErrInvalidSnapshot is returned by Load when a snapshot is structurally
	// malformed or its stored root does not match its own state.
	ErrInvalidSnapshot = errors.New("invalid tree snapshot")
)

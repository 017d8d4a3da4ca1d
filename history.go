package merkletree

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// rootHistory is a fixed-capacity window over the most recent roots. It is a
// preallocated arena written round-robin: once full, each push overwrites the
// oldest entry. Only entries actually pushed are ever read, so a query for
// the zero element cannot match leftover arena slots.
type rootHistory struct {
	roots []fr.Element
	next  int // arena slot the next push writes to
	count int // number of live entries, at most len(roots)
}

func newRootHistory(size int) *rootHistory {
	return &rootHistory{roots: make([]fr.Element, size)}
}

// push records root as the newest entry, evicting the oldest when the window
// is full.
func (h *rootHistory) push(root fr.Element) {
	h.roots[h.next] = root
	h.next = (h.next + 1) % len(h.roots)
	if h.count < len(h.roots) {
		h.count++
	}
}

// contains reports whether root is currently retained. Linear in the window
// size, scanning newest to oldest.
func (h *rootHistory) contains(root *fr.Element) bool {
	i := h.next
	for range h.count {
		if i == 0 {
			i = len(h.roots)
		}
		i--
		if h.roots[i].Equal(root) {
			return true
		}
	}
	return false
}

// newestToOldest returns the live entries, newest first.
func (h *rootHistory) newestToOldest() []fr.Element {
	out := make([]fr.Element, 0, h.count)
	i := h.next
	for range h.count {
		if i == 0 {
			i = len(h.roots)
		}
		i--
		out = append(out, h.roots[i])
	}
	return out
}

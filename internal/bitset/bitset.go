// Package bitset implements the dense free-slot bitmap used by every
// per-kind item arena (see internal/entarena). Below or equal to 64 slots
// the set lives inline in a single uint64; above that it grows into a
// slice of words. Both representations preserve slot identity across
// growth: a bit's index never changes, only the backing storage does.
//
// Grounded on original_source/src/game/active.c (active_delete,
// active_deleted, active_recycle, active_grow): the free-bit is set on
// delete, cleared on recycle, and the recycle scan always picks the
// lowest free index first (bit-trailing-zero scan), which is what makes
// matchmaking order in internal/ports deterministic.
package bitset

import "math/bits"

// Set is a growable free-slot bitmap. The zero value is an empty set
// backed by the inline word.
type Set struct {
	inline uint64
	words  []uint64 // non-nil once cap > 64
}

// inlineCap is the slot count above which Set switches to the dynamic
// representation.
const inlineCap = 64

// Mark sets bit i (slot i is free / deleted).
func (s *Set) Mark(i int) {
	if s.words == nil {
		s.inline |= 1 << uint(i)
		return
	}
	w, b := i/64, uint(i%64)
	s.words[w] |= 1 << b
}

// Clear unsets bit i (slot i is recycled / live again).
func (s *Set) Clear(i int) {
	if s.words == nil {
		s.inline &^= 1 << uint(i)
		return
	}
	w, b := i/64, uint(i%64)
	if w < len(s.words) {
		s.words[w] &^= 1 << b
	}
}

// Test reports whether bit i is set.
func (s *Set) Test(i int) bool {
	if s.words == nil {
		return s.inline&(1<<uint(i)) != 0
	}
	w, b := i/64, uint(i%64)
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<b) != 0
}

// Empty reports whether no bits are set (fast path for the common case of
// a fully-live arena, avoiding a scan in Lowest).
func (s *Set) Empty() bool {
	if s.words == nil {
		return s.inline == 0
	}
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Lowest returns the lowest set bit index and true, or (0, false) if the
// set is empty. This is the recycle scan: lowest-free-slot-first.
func (s *Set) Lowest() (int, bool) {
	if s.words == nil {
		if s.inline == 0 {
			return 0, false
		}
		return bits.TrailingZeros64(s.inline), true
	}
	for i, w := range s.words {
		if w == 0 {
			continue
		}
		return i*64 + bits.TrailingZeros64(w), true
	}
	return 0, false
}

// Grow expands the set to cover newCap slots, migrating from the inline
// word to a dynamic slice the first time newCap exceeds inlineCap. Slot
// identity is preserved: bit i means the same thing before and after.
func (s *Set) Grow(newCap int) {
	needWords := (newCap + 63) / 64
	if s.words == nil {
		if newCap <= inlineCap {
			return
		}
		s.words = make([]uint64, needWords)
		s.words[0] = s.inline
		s.inline = 0
		return
	}
	if len(s.words) < needWords {
		grown := make([]uint64, needWords)
		copy(grown, s.words)
		s.words = grown
	}
}

// Package ports implements the two-slot input/output channel and the
// per-tick round-robin worker matchmaker described in spec.md §4.2 — "the
// hardest, most-studied subsystem" of the core.
//
// Grounded on original_source/src/game/chunk.h (the workers accounting
// struct {queue, count, idle, fail, clean, ops} and the
// chunk_ports_request/produce/consume/consumed/reset surface) and on the
// teacher's internal/clockpro (a single-threaded, externally-synchronised
// circular structure mutated only from within the owning shard's critical
// section — ports.Bank borrows that same "no internal locking, caller
// serialises" contract since a chunk is only ever touched by the one
// shard-worker goroutine stepping it).
package ports

import (
	"sort"

	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/internal/ring"
)

// InState is the input slot's state machine (spec.md §3 Ports).
type InState uint8

const (
	InNil InState = iota
	InRequested
	InReceived
)

// State is one entity's port cell: a single input slot and a single
// output slot.
type State struct {
	InKind  idcode.ItemKind
	InState InState
	OutKind idcode.ItemKind
	OutSet  bool
}

// Workers is the per-tick accounting snapshot (spec.md §3 Chunk,
// spec.md §8 invariant: idle+work+clean+fail == count).
type Workers struct {
	Queue uint16
	Count uint8
	Idle  uint8
	Fail  uint8
	Clean uint8
}

// opsCap bounds the worker ops-ring. spec.md §9 treats the wrap at 2^16 as
// an explicit cap, not a bug: very old ops are silently dropped once the
// ring has seen more than opsCap pushes.
const opsCap = 1 << 16

// Bank holds every entity's port state for one chunk plus the worker
// matchmaker's bookkeeping. Not safe for concurrent use — like every
// per-chunk structure, it is owned by exactly one shard-worker goroutine
// for the duration of a tick (spec.md §5).
type Bank struct {
	states     map[idcode.ID]*State
	workers    uint8 // configured worker count for this chunk
	ops        *ring.Ring[uint32]
	stats      Workers
	resetClean uint8 // pending input-request resets since the last Match
}

// New constructs an empty bank with the given worker count.
func New(workerCount uint8) *Bank {
	return &Bank{
		states:  make(map[idcode.ID]*State),
		workers: workerCount,
		ops:     ring.New[uint32](opsCap),
	}
}

func (b *Bank) state(id idcode.ID) *State {
	s, ok := b.states[id]
	if !ok {
		s = &State{}
		b.states[id] = s
	}
	return s
}

// Get returns the (read-only) port state for id, or the zero State if none
// has been allocated yet.
func (b *Bank) Get(id idcode.ID) State {
	if s, ok := b.states[id]; ok {
		return *s
	}
	return State{}
}

// Forget drops id's port state entirely, called when the entity itself is
// deleted from its arena.
func (b *Bank) Forget(id idcode.ID) { delete(b.states, id) }

// Produce writes the output kind iff the output slot is empty. Returns
// true on success (spec.md §4.2 "ports_produce").
func (b *Bank) Produce(id idcode.ID, kind idcode.ItemKind) bool {
	s := b.state(id)
	if s.OutSet {
		return false
	}
	s.OutKind, s.OutSet = kind, true
	return true
}

// Consumed reports whether the output slot has been cleared by a
// transfer since the last Produce.
func (b *Bank) Consumed(id idcode.ID) bool {
	s := b.state(id)
	return !s.OutSet
}

// Request marks the input slot as wanting kind. Idempotent while already
// requested.
func (b *Bank) Request(id idcode.ID, kind idcode.ItemKind) {
	s := b.state(id)
	if s.InState == InRequested {
		return
	}
	s.InKind, s.InState = kind, InRequested
}

// Consume returns the kind held in the input slot if received, clearing
// it to nil. Returns (0, false) otherwise.
func (b *Bank) Consume(id idcode.ID) (idcode.ItemKind, bool) {
	s := b.state(id)
	if s.InState != InReceived {
		return 0, false
	}
	kind := s.InKind
	s.InState = InNil
	return kind, true
}

// Reset clears both slots and cancels any outstanding request.
//
// Open Question resolution (spec.md §9): this core runs the matchmaker as
// a single batch phase per tick, strictly after every machine's Step has
// already called Request/Produce/Reset for that tick (spec.md §4.11
// orders "step" before "worker matchmaker"). A reset can therefore never
// observe a match that the matchmaker hasn't run yet, so the
// already-matched-but-unobserved race the original source exhibits
// cannot arise here — a Reset that cancels a still-pending request counts
// as a clean cancellation, never a fail (spec.md §4.2); a Reset with no
// pending request counts nothing. Since Reset fires before Match builds its req
// list, a cancelled request would otherwise vanish from the tick's
// accounting entirely; bank a clean credit now so the next Match folds
// it into that tick's Workers snapshot.
func (b *Bank) Reset(id idcode.ID) {
	s := b.state(id)
	if s.InState == InRequested {
		b.resetClean++
	}
	*s = State{}
}

// Match runs one tick's worker round: gathers every id with a pending
// input request, and for each (in ascending id order, matching spec.md
// §9's "kind-index ascending, slot-index ascending" rule since our ids
// already encode kind in the high byte) scans producers with a matching
// output kind, moving at most one item per worker. Returns the tick's
// accounting snapshot.
func (b *Bank) Match() Workers {
	var req []idcode.ID
	for id, s := range b.states {
		if s.InState == InRequested {
			req = append(req, id)
		}
	}
	sort.Slice(req, func(i, j int) bool { return req[i] < req[j] })

	var producers []idcode.ID
	for id, s := range b.states {
		if s.OutSet {
			producers = append(producers, id)
		}
	}
	sort.Slice(producers, func(i, j int) bool { return producers[i] < producers[j] })

	stats := Workers{Queue: uint16(len(req)), Count: b.workers, Clean: b.resetClean}
	b.resetClean = 0
	used := uint8(0)

	for _, rid := range req {
		if used >= b.workers {
			break
		}
		rs := b.states[rid]
		matched := false
		for _, pid := range producers {
			ps := b.states[pid]
			if !ps.OutSet || ps.OutKind != rs.InKind {
				continue
			}
			rs.InState = InReceived
			ps.OutSet = false
			used++
			stats.Clean++
			b.ops.Push(uint32(pid)<<16 | uint32(rid))
			matched = true
			break
		}
		if !matched {
			stats.Fail++
		}
	}

	if used < b.workers {
		stats.Idle = b.workers - used
	}
	b.stats = stats
	return stats
}

// LastStats returns the accounting snapshot from the most recent Match.
func (b *Bank) LastStats() Workers { return b.stats }

// Ops returns the worker ops-ring (packed (producer_id<<16|receiver_id)
// entries), exposed for diagnostics/the proxy read view.
func (b *Bank) Ops() *ring.Ring[uint32] { return b.ops }

// SetWorkers updates the configured worker count for this chunk (e.g. as
// fusion/solar overhead changes it — spec.md §3 Chunk workers field).
func (b *Bank) SetWorkers(n uint8) { b.workers = n }

// Package entarena implements the dense, per-kind item arena: the
// backing store for every machine kind living in a chunk (spec.md §4.1
// "Item arena", the chunk's single busiest allocator).
//
// Grounded on original_source/src/game/active.c. We replace the
// teacher's GOEXPERIMENT=arenas wrapper (internal/arena in
// Voskan-arena-cache, gated behind a build tag too fragile to carry into
// a long-lived service) with a plain slice-backed allocator using
// internal/bitset for free-slot tracking, matching active.c's own
// struct-of-arrays layout (a flat slots array plus a free bitmap) far
// more closely than the Go-arena wrapper would have anyway.
package entarena

import (
	"github.com/legionsim/core/internal/bitset"
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/simctx"
)

// Ops is the lifecycle function table a machine kind supplies when
// registering its arena — the Go analogue of active.c's per-type
// function pointers (create/step/io).
type Ops[T any] struct {
	// Init runs once, when a slot is actually instantiated at drain time.
	Init func(id idcode.ID, item *T, args []int64)
	// Step runs once per tick for every live item, in ascending id order.
	Step func(id idcode.ID, item *T, ctx simctx.Context)
	// IO dispatches one io() call against a specific live item.
	IO func(id idcode.ID, item *T, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err)
}

type pendingCreate struct {
	id   idcode.ID
	args []int64
}

// Arena is a dense, growable store of one item kind. Not safe for
// concurrent use: owned by exactly one chunk, itself owned by exactly
// one shard-worker goroutine per tick.
type Arena[T any] struct {
	kind idcode.ItemKind
	ops  Ops[T]

	slots []T
	free  bitset.Set
	live  int

	virtualLen int
	pending    []pendingCreate
}

// New constructs an empty arena for kind with the given lifecycle hooks.
func New[T any](kind idcode.ItemKind, ops Ops[T]) *Arena[T] {
	return &Arena[T]{kind: kind, ops: ops}
}

// Kind returns the item kind this arena stores.
func (a *Arena[T]) Kind() idcode.ItemKind { return a.kind }

// Count returns the number of currently live items.
func (a *Arena[T]) Count() int { return a.live }

// Get returns a pointer to item's live state, or nil if id is not a
// currently live member of this arena.
func (a *Arena[T]) Get(id idcode.ID) *T {
	if id == idcode.Nil || id.Kind() != a.kind {
		return nil
	}
	idx := id.Index()
	if idx < 0 || idx >= len(a.slots) || a.free.Test(idx) {
		return nil
	}
	return &a.slots[idx]
}

// Create reserves a slot for a new item and queues its instantiation,
// returning the id it will have once drained. Mirrors active_create:
// the slot isn't actually touched until DrainPending runs, so a machine
// that spawns a copy of itself never sees — and never steps — the copy
// in the same tick it was created (spec.md §4.1 "Deferred creation").
// Returns ok=false once the kind has reached idcode.MaxSeq live+pending
// items.
func (a *Arena[T]) Create(args []int64) (idcode.ID, bool) {
	// Lowest free slot not already reserved by a pending create; its free
	// bit stays set until DrainPending instantiates it.
	idx, ok := -1, false
	for i := 0; i < len(a.slots) && !ok; i++ {
		ok = a.free.Test(i)
		for _, pc := range a.pending {
			ok = ok && pc.id.Index() != i
		}
		idx = i
	}
	if !ok {
		if a.virtualLen >= idcode.MaxSeq {
			return idcode.Nil, false
		}
		idx = a.virtualLen
		a.virtualLen++
	}
	id := idcode.Make(a.kind, uint8(idx+1))
	a.pending = append(a.pending, pendingCreate{id: id, args: args})
	return id, true
}

// Delete marks id's slot free for recycling. The slot's memory is
// cleared lazily, the next time that index is reused by Create.
func (a *Arena[T]) Delete(id idcode.ID) {
	if id == idcode.Nil || id.Kind() != a.kind {
		return
	}
	idx := id.Index()
	if idx < 0 || idx >= len(a.slots) || a.free.Test(idx) {
		return
	}
	a.free.Mark(idx)
	a.live--
}

func (a *Arena[T]) growTo(n int) {
	if n <= len(a.slots) {
		return
	}
	newCap := len(a.slots)
	if newCap == 0 {
		newCap = 8
	}
	for newCap < n {
		newCap *= 2
	}
	grown := make([]T, n, newCap)
	copy(grown, a.slots)
	a.slots = grown
	a.free.Grow(newCap)
}

// Step runs ops.Step once for every item that was already live at the
// start of the tick, in ascending id order — items created this tick are
// untouched until DrainPending.
func (a *Arena[T]) Step(ctx simctx.Context) {
	if a.ops.Step == nil {
		return
	}
	for idx := 0; idx < len(a.slots); idx++ {
		if a.free.Test(idx) {
			continue
		}
		id := idcode.Make(a.kind, uint8(idx+1))
		a.ops.Step(id, &a.slots[idx], ctx)
	}
}

// DrainPending instantiates every item queued by Create since the last
// drain: grows the backing slice if needed, zeroes the slot, and runs
// ops.Init. Called once per tick, strictly after Step, by the owning
// chunk's step pipeline (spec.md §4.11).
func (a *Arena[T]) DrainPending(ctx simctx.Context) {
	if len(a.pending) == 0 {
		return
	}
	for _, pc := range a.pending {
		idx := pc.id.Index()
		a.growTo(idx + 1)
		a.free.Clear(idx)
		var zero T
		a.slots[idx] = zero
		a.live++
		if a.ops.Init != nil {
			a.ops.Init(pc.id, &a.slots[idx], pc.args)
		}
	}
	a.pending = a.pending[:0]
}

// IO dispatches one io() call against id's live item.
func (a *Arena[T]) IO(ctx simctx.Context, id idcode.ID, op simctx.IOOp, args []int64) (int64, simctx.Err) {
	item := a.Get(id)
	if item == nil {
		return 0, simctx.ErrA0Invalid
	}
	if a.ops.IO == nil {
		return 0, simctx.ErrA0Unknown
	}
	return a.ops.IO(id, item, ctx, op, args)
}

// Each calls fn for every currently live item, in ascending id order.
func (a *Arena[T]) Each(fn func(id idcode.ID, item *T)) {
	for idx := 0; idx < len(a.slots); idx++ {
		if a.free.Test(idx) {
			continue
		}
		fn(idcode.Make(a.kind, uint8(idx+1)), &a.slots[idx])
	}
}

// Any returns the id of some currently live item of this kind (the
// lowest-index one), or false if none are live. Used by machines that
// consume one local entity of a kind they don't otherwise track by id
// (e.g. a packer converting a placed machine back into an item).
func (a *Arena[T]) Any() (idcode.ID, bool) {
	for idx := 0; idx < len(a.slots); idx++ {
		if a.free.Test(idx) {
			continue
		}
		return idcode.Make(a.kind, uint8(idx+1)), true
	}
	return idcode.Nil, false
}

// ItemArena is the type-erased view of an Arena[T], letting a chunk hold
// a heterogeneous map[idcode.ItemKind]ItemArena over every machine kind.
type ItemArena interface {
	Kind() idcode.ItemKind
	Count() int
	Any() (idcode.ID, bool)
	Delete(id idcode.ID)
	Step(ctx simctx.Context)
	DrainPending(ctx simctx.Context)
	IO(ctx simctx.Context, id idcode.ID, op simctx.IOOp, args []int64) (int64, simctx.Err)
}

// Package shard implements one thread-local group of chunks, advanced
// in lockstep with its peers behind the epoch barrier in pkg/shards
// (spec.md §4.12).
//
// Grounded on original_source/src/game/shards.c (shard_begin/exec/end,
// the shard_*_push/pop effect-bus functions).
package shard

import (
	"sort"

	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/chunk"
	"github.com/legionsim/core/pkg/lanes"
)

// Effect is one record a chunk pushed into the shard's out-buffer during
// exec, applied to world state by the main thread during end.
type Effect struct {
	Kind  EffectKind
	Coord idcode.Coord // chunk that emitted it

	// Log
	ID    idcode.ID
	Key   int64
	Value int64

	// TechLearn
	Owner uint32
	Item  idcode.ItemKind
	Bit   uint8

	// Lane
	Packet lanes.Packet
}

// EffectKind tags which fields of Effect are meaningful.
type EffectKind uint8

const (
	EffectLog EffectKind = iota
	EffectTechLearn
	EffectLane
)

// Shard owns a fixed vector of chunks and an append-only effect buffer
// for one tick.
type Shard struct {
	index  int
	chunks []*chunk.Chunk
	coords map[idcode.Coord]*chunk.Chunk

	out []Effect
}

// New constructs an empty shard identified by index (its position in
// the shards pool's fixed iteration order, spec.md §4.12 "applied ...
// in a fixed shard index order").
func New(index int) *Shard {
	return &Shard{index: index, coords: make(map[idcode.Coord]*chunk.Chunk)}
}

// Index returns this shard's fixed pool index.
func (s *Shard) Index() int { return s.index }

// Register adds c to this shard, in insertion order (spec.md §4.12
// "Within one shard, per-chunk order is the insertion order into that
// shard").
func (s *Shard) Register(c *chunk.Chunk) {
	s.chunks = append(s.chunks, c)
	s.coords[c.Coord()] = c
}

// Chunks returns the shard's owned chunks in insertion order.
func (s *Shard) Chunks() []*chunk.Chunk { return s.chunks }

// Len returns how many chunks this shard owns.
func (s *Shard) Len() int { return len(s.chunks) }

// Log implements chunk.EffectSink.
func (s *Shard) Log(coord idcode.Coord, id idcode.ID, key, value int64) {
	s.out = append(s.out, Effect{Kind: EffectLog, Coord: coord, ID: id, Key: key, Value: value})
}

// TechLearn implements chunk.EffectSink.
func (s *Shard) TechLearn(owner uint32, item idcode.ItemKind, bit uint8) {
	s.out = append(s.out, Effect{Kind: EffectTechLearn, Owner: owner, Item: item, Bit: bit})
}

// Lane implements chunk.EffectSink.
func (s *Shard) Lane(p lanes.Packet) {
	s.out = append(s.out, Effect{Kind: EffectLane, Packet: p})
}

// Begin clears the out-buffer and installs this shard as every owned
// chunk's effect sink and tick counter for the coming tick. Probe/scan
// resolution is read-only and handled directly through chunk.WorldView,
// so begin carries no separate probe/scan fill-in pass (see
// pkg/chunk.Chunk.ProbeValue and DESIGN.md).
func (s *Shard) Begin(tick int64) {
	s.out = s.out[:0]
	for _, c := range s.chunks {
		c.SetSink(s)
		c.SetTick(tick)
	}
}

// Exec steps every owned chunk once, in insertion order.
func (s *Shard) Exec() {
	for _, c := range s.chunks {
		c.Step()
	}
}

// Drain returns the accumulated effect buffer for this tick's end phase
// and clears it.
func (s *Shard) Drain() []Effect {
	out := s.out
	s.out = nil
	return out
}

// sortedCoords returns this shard's chunk coordinates in ascending
// order, used only for diagnostics/tests that want a deterministic
// listing.
func (s *Shard) sortedCoords() []idcode.Coord {
	out := make([]idcode.Coord, 0, len(s.chunks))
	for c := range s.coords {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// proxy.go implements the read-only view over World that external
// callers (the CLI's status printer, cmd/legion-inspect, debug
// attachments) use instead of touching World directly — spec.md §3
// "Proxy" row. Every method is a plain read; Proxy never mutates World.
package world

import (
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/chunk"
	"github.com/legionsim/core/pkg/lanes"
)

// Proxy is a read-only handle onto a World, safe to share with
// components that must never mutate simulation state directly.
type Proxy struct {
	w *World
}

// NewProxy wraps w in a read-only view.
func NewProxy(w *World) Proxy { return Proxy{w: w} }

// Tick returns the world's current tick count.
func (p Proxy) Tick() int64 { return p.w.Tick() }

// ChunkCount reports how many chunks the world owns.
func (p Proxy) ChunkCount() int { return len(p.w.chunks) }

// ChunkLog returns the retained log ring for the chunk at coord, or nil
// if coord is unclaimed.
func (p Proxy) ChunkLog(coord idcode.Coord) []chunk.LogEntry {
	c := p.w.Chunk(coord)
	if c == nil {
		return nil
	}
	return c.LogRing().Slice()
}

// PendingLanes returns every packet currently in flight toward coord,
// oldest arrival first.
func (p Proxy) PendingLanes(coord idcode.Coord) []lanes.Packet {
	return p.w.lanesTbl.Pending(coord)
}

// TechBits returns owner's learned-bit bitmap for item.
func (p Proxy) TechBits(owner uint32, item idcode.ItemKind) uint64 {
	m := p.w.tech[owner]
	if m == nil {
		return 0
	}
	return m[item]
}

// StarAbundance reports coord's remaining yield of item.
func (p Proxy) StarAbundance(coord idcode.Coord, item idcode.ItemKind) (int64, bool) {
	return p.w.StarAbundance(coord, item)
}

// ModCount reports how many distinct mods the world's registry holds.
func (p Proxy) ModCount() int { return p.w.mods.Len() }

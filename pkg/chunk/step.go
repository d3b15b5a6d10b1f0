package chunk

import (
	"sort"

	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/lanes"
)

// SetSeed fixes the chunk's per-entity RNG seed base (spec.md §5
// "Determinism: all randomness uses a per-entity seeded PRNG").
func (c *Chunk) SetSeed(seed uint64) { c.seed = seed }

func (c *Chunk) sortedKinds() []idcode.ItemKind {
	kinds := make([]idcode.ItemKind, 0, len(c.arenas))
	for k := range c.arenas {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Step runs exactly one tick of the chunk pipeline, in the order
// spec.md §4.11 fixes, with one deliberate reordering: solar production
// (listed as part of step 4, "energy step") is credited to the ledger
// before step 2 instead of after it, so the energy a tape runner gates
// on in the same tick's arena step reflects this tick's solar yield, not
// last tick's — matching energy.Ledger.Produce's "use it or lose it
// within the tick" model (internal/energy/energy.go) rather than
// deferring solar to a tick where no arena step can observe it.
//  1. drain lanes-arrival queue
//  1b. credit this tick's solar output to the energy ledger
//  2. step every arena (arena order, then slot index)
//  3. run the worker matchmaker
//  4. subtract consumed, reset the per-tick energy counters
//  5. (port launches etc. are finalised inline during step 2 via
//     effect emission, so no separate pass is needed in this design)
//  6. drain per-arena creation queues
func (c *Chunk) Step() {
	c.drainArrivals()

	c.energy.Produce(c.world.SolarOutput(c.coord))

	for _, k := range c.sortedKinds() {
		c.arenas[k].Step(c)
	}

	c.ports.Match()

	c.energy.StepReset()

	for _, k := range c.sortedKinds() {
		c.arenas[k].DrainPending(c)
	}
}

func (c *Chunk) drainArrivals() {
	if len(c.arrivalQueue) == 0 {
		return
	}
	due := c.arrivalQueue
	c.arrivalQueue = nil

	for _, p := range due {
		switch p.Kind {
		case lanes.KindEntity:
			c.CreateFrom(p.Item, p.Payload)
		case lanes.KindData:
			c.dispatchData(p)
		case lanes.KindPill:
			c.pills[p.Item] = append(c.pills[p.Item], p.Count)
		}
	}
}

func (c *Chunk) dispatchData(p lanes.Packet) {
	channel := uint8(0)
	payload := p.Payload
	if len(payload) >= 1 {
		channel = uint8(payload[0])
		payload = payload[1:]
	}
	k := listenerKey{src: p.Src, channel: channel}
	for _, id := range c.listeners[k] {
		if r, ok := c.receivers[id]; ok {
			r.Deliver(payload)
		}
	}
}

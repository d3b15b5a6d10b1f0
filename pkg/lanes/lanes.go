// Package lanes implements in-flight packets between stars: travel
// time, a global coord-keyed arrival schedule, and per-tick delivery
// into destination chunks (spec.md §4.13).
//
// Grounded on original_source/src/game/lanes.h (struct lanes{world,
// lanes(htable), index(htable), data(heap)}, struct lanes_packet{owner,
// item, len, speed, src, dst, data}, lanes_travel/launch/step).
package lanes

import (
	"sort"

	"github.com/legionsim/core/internal/idcode"
)

// Kind distinguishes what a packet does on arrival (spec.md §4.11: "for
// each packet, make a new entity of its kind (transmits go to the
// receive-listener dispatch instead)" — we extend that same dispatch
// rule to pill cargo, which joins a dock queue instead of spawning an
// entity).
type Kind uint8

const (
	KindEntity Kind = iota // spawn a new entity of Item's kind at Dst
	KindData                // route to receive listeners matching (Src, channel)
	KindPill                // join Dst's undocked pill queue for Item
)

// Packet is one in-flight lane packet, copied by value — no borrowed
// references outlive it (spec.md §4.13).
type Packet struct {
	Kind  Kind
	Item  idcode.ItemKind
	Src   idcode.Coord
	Dst   idcode.Coord
	Speed uint32

	Arrival int64
	Payload []int64
	Count   int64 // meaningful for KindPill
}

// Travel computes the tick delay for a packet travelling at speed
// between src and dst, using Chebyshev sector distance: ⌈dist/speed⌉
// (spec.md §3 "Arrival tick = now + ⌈dist(src,dst)/speed⌉"), floored at
// 1 tick so a zero-distance launch (e.g. a port with no Target, which
// lanes-launches toward its own coord) still satisfies §8's invariant
// that every in-flight packet has arrival_tick > now — a same-tick
// delivery would let it be dequeued by the very Step call that follows
// its own Launch within the same world.Step.
func Travel(speed uint32, src, dst idcode.Coord) int64 {
	if speed == 0 {
		speed = 1
	}
	dist := idcode.SectorDist(src, dst)
	ticks := (dist + int64(speed) - 1) / int64(speed)
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// Lanes is the global coord -> sorted-by-arrival packet schedule.
type Lanes struct {
	byDst map[idcode.Coord][]Packet
}

// New constructs an empty Lanes table.
func New() *Lanes {
	return &Lanes{byDst: make(map[idcode.Coord][]Packet)}
}

// Launch schedules p for arrival at its Dst, computing Arrival from
// Travel if not already set.
func (l *Lanes) Launch(p Packet, now int64) {
	if p.Arrival == 0 {
		p.Arrival = now + Travel(p.Speed, p.Src, p.Dst)
	}
	q := l.byDst[p.Dst]
	i := sort.Search(len(q), func(i int) bool { return q[i].Arrival >= p.Arrival })
	q = append(q, Packet{})
	copy(q[i+1:], q[i:])
	q[i] = p
	l.byDst[p.Dst] = q
}

// Step pops every packet destined for coord with Arrival <= now,
// returning them in arrival order, and leaves later packets scheduled.
func (l *Lanes) Step(coord idcode.Coord, now int64) []Packet {
	q := l.byDst[coord]
	if len(q) == 0 {
		return nil
	}
	i := sort.Search(len(q), func(i int) bool { return q[i].Arrival > now })
	if i == 0 {
		return nil
	}
	due := append([]Packet(nil), q[:i]...)
	rest := append([]Packet(nil), q[i:]...)
	if len(rest) == 0 {
		delete(l.byDst, coord)
	} else {
		l.byDst[coord] = rest
	}
	return due
}

// Pending returns every packet currently in flight toward coord, oldest
// arrival first, without removing them — used by the proxy read view
// and by delta saves.
func (l *Lanes) Pending(coord idcode.Coord) []Packet {
	q := l.byDst[coord]
	out := make([]Packet, len(q))
	copy(out, q)
	return out
}

// Len returns the total number of in-flight packets across every
// destination, for diagnostics.
func (l *Lanes) Len() int {
	n := 0
	for _, q := range l.byDst {
		n += len(q)
	}
	return n
}

// All returns every in-flight packet across every destination, for
// snapshotting. Order is unspecified across destinations but preserved
// within one; Launch restores each packet's own Arrival unchanged since
// it is already nonzero.
func (l *Lanes) All() []Packet {
	out := make([]Packet, 0, l.Len())
	for _, q := range l.byDst {
		out = append(out, q...)
	}
	return out
}

// Package chunk implements the per-star simulation container: the
// item arenas, the ports/workers bank, the energy ledger, the listener
// set, and the six-step tick pipeline (spec.md §4.11).
//
// Grounded on original_source/src/game/chunk.h/.c. *Chunk implements
// pkg/simctx.Context, the narrow interface pkg/machines programs
// against, so chunk and machines never import each other directly
// (spec.md §9 "Cyclic references").
package chunk

import (
	"math/rand/v2"

	"github.com/legionsim/core/internal/energy"
	"github.com/legionsim/core/internal/entarena"
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/internal/ports"
	"github.com/legionsim/core/internal/ring"
	"github.com/legionsim/core/pkg/lanes"
	"github.com/legionsim/core/pkg/simctx"
)

// WorldView is the read-only handle a chunk holds into the world
// (spec.md §9: "chunks hold only the world's handle ... used for
// read-only calls into read-model data"). Built fresh once per tick by
// the main goroutine before any shard runs, so every chunk's reads
// during exec see a consistent as-of-tick-start snapshot without
// locking (spec.md §5 "Writes by the main thread before start
// happen-before worker reads in exec").
type WorldView interface {
	StarAbundance(coord idcode.Coord, item idcode.ItemKind) (int64, bool)
	ScanSector(it simctx.ScanIt) (idcode.Coord, bool)
	TechKnown(owner uint32, item idcode.ItemKind, bit uint8) bool
	Specs(specID int, args []int64) int64
	SolarOutput(coord idcode.Coord) int64
}

// EffectSink is the shard's per-tick out-buffer. Chunks push mutating,
// cross-chunk-visible effects here during exec; the shard applies them
// to world state during end, strictly after every chunk in the tick has
// finished stepping (spec.md §4.12).
type EffectSink interface {
	Log(coord idcode.Coord, id idcode.ID, key, value int64)
	TechLearn(owner uint32, item idcode.ItemKind, bit uint8)
	Lane(p lanes.Packet)
}

// LogEntry is one record in a chunk's retained log ring (spec.md §7).
type LogEntry struct {
	ID    idcode.ID
	Key   int64
	Value int64
}

const logRingCap = 256

type listenerKey struct {
	src     idcode.Coord
	channel uint8
}

// Chunk is one star's simulation container. Owned by exactly one
// shard-worker goroutine for the duration of a tick; never touches
// another chunk's memory directly (spec.md §4.11).
type Chunk struct {
	coord idcode.Coord
	name  int64
	owner uint32
	tick  int64
	seed  uint64

	world WorldView
	sink  EffectSink

	arenas map[idcode.ItemKind]entarena.ItemArena
	ports  *ports.Bank
	energy *energy.Ledger
	log    *ring.Ring[LogEntry]

	listeners map[listenerKey][]idcode.ID
	receivers map[idcode.ID]simctx.Receiver

	pills map[idcode.ItemKind][]int64

	arrivalQueue []lanes.Packet
	rngs         map[idcode.ID]*rand.Rand
}

// New constructs an empty chunk at coord, owned by owner, backed by
// world for read-only lookups.
func New(coord idcode.Coord, name int64, owner uint32, energyCap int64, workers uint8, world WorldView) *Chunk {
	return &Chunk{
		coord:     coord,
		name:      name,
		owner:     owner,
		world:     world,
		arenas:    make(map[idcode.ItemKind]entarena.ItemArena),
		ports:     ports.New(workers),
		energy:    energy.New(energyCap),
		log:       ring.New[LogEntry](logRingCap),
		listeners: make(map[listenerKey][]idcode.ID),
		receivers: make(map[idcode.ID]simctx.Receiver),
		pills:     make(map[idcode.ItemKind][]int64),
		rngs:      make(map[idcode.ID]*rand.Rand),
	}
}

// Register installs an item kind's arena. Called once per kind at
// world construction time, before any tick runs.
func (c *Chunk) Register(a entarena.ItemArena) {
	c.arenas[a.Kind()] = a
}

// RegisterReceiver records id as addressable by Send or a transmitted
// data packet. A mailbox-bearing machine calls this on its own first
// Step (simctx.Context.RegisterReceiver), since Init has no Context to
// register through at construction time.
func (c *Chunk) RegisterReceiver(id idcode.ID, r simctx.Receiver) {
	c.receivers[id] = r
}

// SetSink installs this tick's effect sink. Called once per tick by the
// owning shard before Step.
func (c *Chunk) SetSink(sink EffectSink) { c.sink = sink }

// SetTick advances the chunk's local tick counter, called once per tick
// by the owning shard before Step.
func (c *Chunk) SetTick(tick int64) { c.tick = tick }

// Coord returns the chunk's star coordinate.
func (c *Chunk) Coord() idcode.Coord { return c.coord }

// Ports exposes the chunk's worker bank for the step pipeline's
// matchmaker phase.
func (c *Chunk) Ports() *ports.Bank { return c.ports }

// Energy exposes the chunk's energy ledger for the step pipeline's
// energy phase.
func (c *Chunk) Energy() *energy.Ledger { return c.energy }

// LogRing exposes the chunk's retained log ring, for the proxy read view.
func (c *Chunk) LogRing() *ring.Ring[LogEntry] { return c.log }

// Arrive appends a freshly delivered lane packet to next tick's arrival
// queue (spec.md §4.13: delivery happens "for next tick", never
// mid-tick).
func (c *Chunk) Arrive(p lanes.Packet) {
	c.arrivalQueue = append(c.arrivalQueue, p)
}

// --- simctx.Context -----------------------------------------------------

func (c *Chunk) Now() int64          { return c.tick }
func (c *Chunk) Name() int64         { return c.name }
func (c *Chunk) Owner() uint32       { return c.owner }

func (c *Chunk) EnergyAvailable() int64        { return c.energy.Available() }
func (c *Chunk) EnergyConsume(amount int64) bool { return c.energy.Consume(amount) }
func (c *Chunk) EnergyProduce(amount int64)    { c.energy.Produce(amount) }

func (c *Chunk) PortsRequest(id idcode.ID, kind idcode.ItemKind) { c.ports.Request(id, kind) }
func (c *Chunk) PortsConsume(id idcode.ID) (idcode.ItemKind, bool) { return c.ports.Consume(id) }
func (c *Chunk) PortsProduce(id idcode.ID, kind idcode.ItemKind) bool {
	return c.ports.Produce(id, kind)
}
func (c *Chunk) PortsConsumed(id idcode.ID) bool { return c.ports.Consumed(id) }
func (c *Chunk) PortsReset(id idcode.ID)         { c.ports.Reset(id) }

func (c *Chunk) Create(kind idcode.ItemKind) (idcode.ID, bool) {
	return c.CreateFrom(kind, nil)
}

func (c *Chunk) CreateFrom(kind idcode.ItemKind, args []int64) (idcode.ID, bool) {
	a, ok := c.arenas[kind]
	if !ok {
		return idcode.Nil, false
	}
	type creator interface {
		Create(args []int64) (idcode.ID, bool)
	}
	cr, ok := a.(creator)
	if !ok {
		return idcode.Nil, false
	}
	id, ok := cr.Create(args)
	if !ok {
		c.Log(idcode.Nil, int64(simctx.ErrOutOfSpace), int64(kind))
	}
	return id, ok
}

func (c *Chunk) Delete(id idcode.ID) {
	if a, ok := c.arenas[id.Kind()]; ok {
		a.Delete(id)
	}
	c.ports.Forget(id)
	delete(c.receivers, id)
	delete(c.rngs, id)
}

func (c *Chunk) Count(kind idcode.ItemKind) int {
	if a, ok := c.arenas[kind]; ok {
		return a.Count()
	}
	return 0
}

// DeleteOne deletes one currently live entity of kind (an arbitrary one,
// the arena's lowest-index live slot), reporting whether one existed.
// Used by the packer to convert a placed machine back into a packable
// item (spec.md §4.9).
func (c *Chunk) DeleteOne(kind idcode.ItemKind) bool {
	a, ok := c.arenas[kind]
	if !ok {
		return false
	}
	id, ok := a.Any()
	if !ok {
		return false
	}
	c.Delete(id)
	return true
}

func (c *Chunk) Extract(kind idcode.ItemKind) bool {
	qty, ok := c.world.StarAbundance(c.coord, kind)
	return ok && qty > 0
}

func (c *Chunk) Send(dst idcode.ID, payload []int64) bool {
	r, ok := c.receivers[dst]
	if !ok {
		return false
	}
	r.Deliver(payload)
	return true
}

func (c *Chunk) Dispatch(dst idcode.ID, op simctx.IOOp, args []int64) (int64, simctx.Err) {
	a, ok := c.arenas[dst.Kind()]
	if !ok {
		return 0, simctx.ErrA0Invalid
	}
	return a.IO(c, dst, op, args)
}

func (c *Chunk) Log(id idcode.ID, key, value int64) {
	c.log.Push(LogEntry{ID: id, Key: key, Value: value})
	if c.sink != nil {
		c.sink.Log(c.coord, id, key, value)
	}
}

func (c *Chunk) TechLearnBit(item idcode.ItemKind, bit uint8) {
	if c.sink != nil {
		c.sink.TechLearn(c.owner, item, bit)
	}
}

func (c *Chunk) LanesLaunch(item idcode.ItemKind, speed uint32, dst idcode.Coord, payload []int64) {
	c.emitLane(lanes.Packet{Kind: lanes.KindEntity, Item: item, Speed: speed, Src: c.coord, Dst: dst, Payload: payload})
}

func (c *Chunk) LanesTransmit(dataKind idcode.ItemKind, speed uint32, dst idcode.Coord, payload []int64) {
	c.emitLane(lanes.Packet{Kind: lanes.KindData, Item: dataKind, Speed: speed, Src: c.coord, Dst: dst, Payload: payload})
}

func (c *Chunk) LanesLaunchPill(item idcode.ItemKind, count int64, speed uint32, dst idcode.Coord) {
	c.emitLane(lanes.Packet{Kind: lanes.KindPill, Item: item, Speed: speed, Src: c.coord, Dst: dst, Count: count})
}

func (c *Chunk) emitLane(p lanes.Packet) {
	if c.sink != nil {
		c.sink.Lane(p)
	}
}

func (c *Chunk) DockPill(item idcode.ItemKind) (int64, bool) {
	q := c.pills[item]
	if len(q) == 0 {
		return 0, false
	}
	qty := q[0]
	if len(q) == 1 {
		delete(c.pills, item)
	} else {
		c.pills[item] = q[1:]
	}
	return qty, true
}

func (c *Chunk) LanesListen(id idcode.ID, src idcode.Coord, channel uint8) {
	k := listenerKey{src: src, channel: channel}
	c.listeners[k] = append(c.listeners[k], id)
}

func (c *Chunk) LanesUnlisten(id idcode.ID, src idcode.Coord, channel uint8) {
	k := listenerKey{src: src, channel: channel}
	ids := c.listeners[k]
	for i, v := range ids {
		if v == id {
			c.listeners[k] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

func (c *Chunk) Probe(dst idcode.Coord, item idcode.ItemKind) {
	// Read-only snapshot lookups resolve synchronously via ProbeValue;
	// Probe itself is a no-op registration kept for API symmetry with
	// the IO vocabulary's separate probe/value verbs.
}

func (c *Chunk) ProbeValue(dst idcode.Coord, item idcode.ItemKind) (int64, bool) {
	return c.world.StarAbundance(dst, item)
}

func (c *Chunk) Scan(it simctx.ScanIt) {}

func (c *Chunk) ScanValue(it simctx.ScanIt) (idcode.Coord, bool) {
	return c.world.ScanSector(it)
}

func (c *Chunk) Specs(specID int, args []int64) int64 {
	return c.world.Specs(specID, args)
}

func (c *Chunk) TechKnown(item idcode.ItemKind, bit uint8) bool {
	return c.world.TechKnown(c.owner, item, bit)
}

func (c *Chunk) Rand(id idcode.ID) *rand.Rand {
	r, ok := c.rngs[id]
	if !ok {
		r = rand.New(rand.NewPCG(c.seed, uint64(id)))
		c.rngs[id] = r
	}
	return r
}

package machines

import (
	"math/rand/v2"

	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/simctx"
)

// fakeCtx is a minimal, in-memory simctx.Context stand-in for unit
// tests: no chunk, no shards, just enough bookkeeping for a single
// machine's Step/IO to exercise real decision paths.
type fakeCtx struct {
	now   int64
	coord idcode.Coord
	name  int64
	owner uint32

	energy int64

	portReq      map[idcode.ID]idcode.ItemKind
	portReady    map[idcode.ID]idcode.ItemKind
	portConsumed map[idcode.ID]bool

	extractable map[idcode.ItemKind]bool
	counts      map[idcode.ItemKind]int

	dockQty map[idcode.ItemKind]int64

	probeValues map[probeKey]int64
	scanResult  idcode.Coord
	scanFound   bool

	receivers map[idcode.ID]simctx.Receiver

	logs []logCall

	techKnown map[techKey]bool
	learned   []techKey

	specsFn func(id int, args []int64) int64

	rngs map[idcode.ID]*rand.Rand
}

type logCall struct {
	ID    idcode.ID
	Key   int64
	Value int64
}

type techKey struct {
	item idcode.ItemKind
	bit  uint8
}

type probeKey struct {
	dst  idcode.Coord
	item idcode.ItemKind
}

func newFakeCtx() *fakeCtx {
	return &fakeCtx{
		portReq:      map[idcode.ID]idcode.ItemKind{},
		portReady:    map[idcode.ID]idcode.ItemKind{},
		portConsumed: map[idcode.ID]bool{},
		extractable:  map[idcode.ItemKind]bool{},
		counts:       map[idcode.ItemKind]int{},
		dockQty:      map[idcode.ItemKind]int64{},
		probeValues:  map[probeKey]int64{},
		receivers:    map[idcode.ID]simctx.Receiver{},
		techKnown:    map[techKey]bool{},
		rngs:         map[idcode.ID]*rand.Rand{},
	}
}

func (c *fakeCtx) Now() int64          { return c.now }
func (c *fakeCtx) Coord() idcode.Coord { return c.coord }
func (c *fakeCtx) Name() int64         { return c.name }
func (c *fakeCtx) Owner() uint32       { return c.owner }

func (c *fakeCtx) EnergyAvailable() int64 { return c.energy }
func (c *fakeCtx) EnergyConsume(amount int64) bool {
	if c.energy < amount {
		return false
	}
	c.energy -= amount
	return true
}
func (c *fakeCtx) EnergyProduce(amount int64) { c.energy += amount }

func (c *fakeCtx) PortsRequest(id idcode.ID, kind idcode.ItemKind) { c.portReq[id] = kind }
func (c *fakeCtx) PortsConsume(id idcode.ID) (idcode.ItemKind, bool) {
	kind, ok := c.portReady[id]
	if ok {
		delete(c.portReady, id)
	}
	return kind, ok
}
func (c *fakeCtx) PortsProduce(id idcode.ID, kind idcode.ItemKind) bool {
	c.portConsumed[id] = true
	return true
}
func (c *fakeCtx) PortsConsumed(id idcode.ID) bool { return c.portConsumed[id] }
func (c *fakeCtx) PortsReset(id idcode.ID) {
	delete(c.portReq, id)
	delete(c.portReady, id)
	delete(c.portConsumed, id)
}

func (c *fakeCtx) Create(kind idcode.ItemKind) (idcode.ID, bool) { return idcode.Nil, false }
func (c *fakeCtx) CreateFrom(kind idcode.ItemKind, args []int64) (idcode.ID, bool) {
	return idcode.Nil, false
}
func (c *fakeCtx) Delete(id idcode.ID)    {}
func (c *fakeCtx) Count(kind idcode.ItemKind) int { return c.counts[kind] }
func (c *fakeCtx) DeleteOne(kind idcode.ItemKind) bool {
	if c.counts[kind] <= 0 {
		return false
	}
	c.counts[kind]--
	return true
}

func (c *fakeCtx) Extract(kind idcode.ItemKind) bool { return c.extractable[kind] }

func (c *fakeCtx) Send(dst idcode.ID, payload []int64) bool {
	r, ok := c.receivers[dst]
	if !ok {
		return false
	}
	r.Deliver(payload)
	return true
}

func (c *fakeCtx) RegisterReceiver(id idcode.ID, r simctx.Receiver) {
	c.receivers[id] = r
}

func (c *fakeCtx) Dispatch(dst idcode.ID, op simctx.IOOp, args []int64) (int64, simctx.Err) {
	return 0, simctx.ErrA0Invalid
}

func (c *fakeCtx) Log(id idcode.ID, key, value int64) {
	c.logs = append(c.logs, logCall{ID: id, Key: key, Value: value})
}

func (c *fakeCtx) TechLearnBit(item idcode.ItemKind, bit uint8) {
	k := techKey{item: item, bit: bit}
	c.techKnown[k] = true
	c.learned = append(c.learned, k)
}

func (c *fakeCtx) LanesLaunch(item idcode.ItemKind, speed uint32, dst idcode.Coord, payload []int64) {}
func (c *fakeCtx) LanesTransmit(dataKind idcode.ItemKind, speed uint32, dst idcode.Coord, payload []int64) {
}
func (c *fakeCtx) LanesLaunchPill(item idcode.ItemKind, count int64, speed uint32, dst idcode.Coord) {
}
func (c *fakeCtx) DockPill(item idcode.ItemKind) (int64, bool) {
	qty, ok := c.dockQty[item]
	if ok {
		delete(c.dockQty, item)
	}
	return qty, ok
}

func (c *fakeCtx) LanesListen(id idcode.ID, src idcode.Coord, channel uint8)   {}
func (c *fakeCtx) LanesUnlisten(id idcode.ID, src idcode.Coord, channel uint8) {}
func (c *fakeCtx) Probe(dst idcode.Coord, item idcode.ItemKind)                {}
func (c *fakeCtx) ProbeValue(dst idcode.Coord, item idcode.ItemKind) (int64, bool) {
	v, ok := c.probeValues[probeKey{dst: dst, item: item}]
	return v, ok
}
func (c *fakeCtx) Scan(it simctx.ScanIt) {}
func (c *fakeCtx) ScanValue(it simctx.ScanIt) (idcode.Coord, bool) {
	return c.scanResult, c.scanFound
}

func (c *fakeCtx) Specs(specID int, args []int64) int64 {
	if c.specsFn == nil {
		return 0
	}
	return c.specsFn(specID, args)
}

func (c *fakeCtx) TechKnown(item idcode.ItemKind, bit uint8) bool {
	return c.techKnown[techKey{item: item, bit: bit}]
}

func (c *fakeCtx) Rand(id idcode.ID) *rand.Rand {
	r, ok := c.rngs[id]
	if !ok {
		r = rand.New(rand.NewPCG(1, uint64(id)))
		c.rngs[id] = r
	}
	return r
}

// Package simctx defines the narrow interface that machine implementations
// (pkg/machines) use to talk to their owning chunk, without pkg/chunk and
// pkg/machines importing each other. *chunk.Chunk implements Context.
//
// This mirrors the one-way ownership rule in spec.md §9 ("Cyclic
// references"): chunks hold only a read-only handle into the world, and
// machines hold only this narrow handle into their chunk. Mutations that
// must be visible outside the chunk go through the effect methods (Log,
// TechLearnBit and the Lanes* calls), never through a back-reference.
package simctx

import (
	"math/rand/v2"

	"github.com/legionsim/core/internal/idcode"
)

// IOOp is an IO verb atom understood by chunk_io / active_io dispatch.
type IOOp uint16

const (
	IOPing IOOp = iota + 1
	IOState
	IOReset
	IOItem
	IOTape
	IOMod
	IOSend
	IORecv
	IOLog
	IOCoord
	IOTick
	IOID
	IOName
	IOSpecs
	IOLaunch
	IOTransmit
	IOReceive
	IODbgAttach
	IODbgDetach
	IODbgBreak
	IODbgStep
	IOValue
	IOActivate
)

// Err is an ioe_* error code, returned to the caller via the VM stack and
// recorded in the chunk log (spec.md §6/§7).
type Err uint8

const (
	ErrNone Err = iota
	ErrMissingArg
	ErrA0Invalid
	ErrA1Invalid
	ErrA0Unknown
	ErrOutOfSpace
	ErrOutOfRange
	ErrStarved
	ErrInvalidState
	ErrVMFault
)

func (e Err) String() string {
	switch e {
	case ErrNone:
		return "ok"
	case ErrMissingArg:
		return "ioe_missing_arg"
	case ErrA0Invalid:
		return "ioe_a0_invalid"
	case ErrA1Invalid:
		return "ioe_a1_invalid"
	case ErrA0Unknown:
		return "ioe_a0_unknown"
	case ErrOutOfSpace:
		return "ioe_out_of_space"
	case ErrOutOfRange:
		return "ioe_out_of_range"
	case ErrStarved:
		return "ioe_starved"
	case ErrInvalidState:
		return "ioe_invalid_state"
	case ErrVMFault:
		return "ioe_vm_fault"
	default:
		return "ioe_unknown"
	}
}

// Context is the set of chunk operations a machine's lifecycle hooks may
// call during init/make/load/step/io.
type Context interface {
	Now() int64
	Coord() idcode.Coord
	Name() int64
	Owner() uint32

	// Energy ledger.
	EnergyAvailable() int64
	EnergyConsume(amount int64) bool
	EnergyProduce(amount int64)

	// Ports & workers (internal/ports).
	PortsRequest(id idcode.ID, kind idcode.ItemKind)
	PortsConsume(id idcode.ID) (idcode.ItemKind, bool)
	PortsProduce(id idcode.ID, kind idcode.ItemKind) bool
	PortsConsumed(id idcode.ID) bool
	PortsReset(id idcode.ID)

	// Entities.
	Create(kind idcode.ItemKind) (idcode.ID, bool)
	CreateFrom(kind idcode.ItemKind, args []int64) (idcode.ID, bool)
	Delete(id idcode.ID)
	Count(kind idcode.ItemKind) int
	// DeleteOne deletes one arbitrary currently live entity of kind,
	// reporting whether one existed. Used by a machine that consumes a
	// local entity it doesn't track by id (spec.md §4.9, the packer).
	DeleteOne(kind idcode.ItemKind) bool

	// Harvesting: whether the star can still yield the given element.
	Extract(kind idcode.ItemKind) bool

	// Same-chunk direct messaging between brains (spec.md §4.7 io_send):
	// delivers payload into dst's inbound mailbox. Returns false if dst
	// is not a live brain in this chunk.
	Send(dst idcode.ID, payload []int64) bool

	// RegisterReceiver makes id addressable by Send/data-listener
	// dispatch within this chunk. A machine with a mailbox (brain,
	// receive) must call this itself on first Step, since Init has no
	// Context to register through at construction time.
	RegisterReceiver(id idcode.ID, r Receiver)

	// Dispatch is chunk_io's catch-all: routes an IO atom not handled
	// locally by the caller to whatever entity dst identifies, within
	// this chunk.
	Dispatch(dst idcode.ID, op IOOp, args []int64) (int64, Err)

	// Cross-star effects, surfaced via the shard effect bus (pkg/shard).
	Log(id idcode.ID, key, value int64)
	TechLearnBit(item idcode.ItemKind, bit uint8)

	// LanesLaunch posts a lane packet that spawns a new entity of item's
	// kind at dst on arrival (e.g. a nomad or port launching itself).
	LanesLaunch(item idcode.ItemKind, speed uint32, dst idcode.Coord, payload []int64)
	// LanesTransmit posts a data packet; on arrival it is routed to
	// matching receive listeners instead of spawning an entity.
	LanesTransmit(dataKind idcode.ItemKind, speed uint32, dst idcode.Coord, payload []int64)
	// LanesLaunchPill posts count units of item as undocked cargo; on
	// arrival it joins the destination chunk's pill queue instead of
	// spawning an entity (spec.md §4.9 "chunk_pills_dock").
	LanesLaunchPill(item idcode.ItemKind, count int64, speed uint32, dst idcode.Coord)
	// DockPill claims one pending undocked pill of item at this chunk,
	// FIFO. Returns the cargo count and true on success.
	DockPill(item idcode.ItemKind) (int64, bool)

	LanesListen(id idcode.ID, src idcode.Coord, channel uint8)
	LanesUnlisten(id idcode.ID, src idcode.Coord, channel uint8)
	Probe(dst idcode.Coord, item idcode.ItemKind)
	ProbeValue(dst idcode.Coord, item idcode.ItemKind) (int64, bool)
	Scan(it ScanIt)
	ScanValue(it ScanIt) (idcode.Coord, bool)

	// Frozen configuration lookups.
	Specs(specID int, args []int64) int64
	TechKnown(item idcode.ItemKind, bit uint8) bool

	// Deterministic per-entity PRNG.
	Rand(id idcode.ID) *rand.Rand
}

// Receiver is anything addressable by Send or a transmitted data packet:
// a mailbox of one payload, overwritten on each delivery.
type Receiver interface {
	Deliver(payload []int64)
}

// ScanIt identifies a scanner query: either a specific target coordinate
// or a wide sector sweep starting from an origin.
type ScanIt struct {
	Origin idcode.Coord
	Target idcode.Coord // CoordNil when wide
	Wide   bool
	Sector int32
}

package machines

import (
	"github.com/legionsim/core/internal/entarena"
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/simctx"
)

// PortState is the pill-launcher's docking cycle (spec.md §4.9).
type PortState uint8

const (
	PortIdle PortState = iota
	PortDocking
	PortDocked
	PortLoading
	PortUnloading
	PortLaunch
)

// PortLaunchSpeed is the frozen im_port_launch_speed constant (lane
// speed a launched pill travels at).
const PortLaunchSpeed = 100

// Port is the pill launcher/docker machine: a target coord, a "want"
// cargo request, and the "has" cargo actually docked.
//
// Grounded on original_source/src/items/port/port.h
// (im_port_pack/im_port_unpack bit-packing, im_port_speed).
type Port struct {
	ID       idcode.ID
	State    PortState
	Target   idcode.Coord
	WantItem idcode.ItemKind
	WantQty  int64
	HasItem  idcode.ItemKind
	HasQty   int64

	dockEnergy   int64
	launchEnergy int64
}

// NewPortArena builds the arena backing the port kind. dockEnergy and
// launchEnergy are the frozen fixed energy costs spec.md §4.9 charges
// for docking and for launch.
func NewPortArena(kind idcode.ItemKind, dockEnergy, launchEnergy int64) *entarena.Arena[Port] {
	return entarena.New(kind, entarena.Ops[Port]{
		Init: func(id idcode.ID, p *Port, args []int64) {
			p.ID = id
			p.Target = idcode.CoordNil
			p.dockEnergy = dockEnergy
			p.launchEnergy = launchEnergy
		},
		Step: func(id idcode.ID, p *Port, ctx simctx.Context) {
			portStep(p, ctx)
		},
		IO: func(id idcode.ID, p *Port, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			return portIO(p, ctx, op, args)
		},
	})
}

func portStep(p *Port, ctx simctx.Context) {
	switch p.State {
	case PortIdle:
		// waits for io_activate

	case PortDocking:
		if !ctx.EnergyConsume(p.dockEnergy) {
			return
		}
		if qty, ok := ctx.DockPill(p.WantItem); ok {
			p.HasItem, p.HasQty = p.WantItem, qty
			p.State = PortDocked
		}

	case PortDocked:
		if p.WantQty > 0 {
			p.State = PortUnloading
		} else {
			p.State = PortLoading
		}

	case PortLoading:
		if !ctx.PortsProduce(p.ID, p.HasItem) {
			return
		}
		p.HasQty = 0
		p.State = PortLaunch

	case PortUnloading:
		kind, ok := ctx.PortsConsume(p.ID)
		if !ok {
			ctx.PortsRequest(p.ID, p.HasItem)
			return
		}
		if kind == p.HasItem {
			p.HasQty++
		}
		p.State = PortLaunch

	case PortLaunch:
		if !ctx.EnergyConsume(p.launchEnergy) {
			return
		}
		dst := p.Target
		if dst == idcode.CoordNil {
			dst = ctx.Coord()
		}
		ctx.LanesLaunchPill(p.HasItem, p.HasQty, PortLaunchSpeed, dst)
		p.HasItem, p.HasQty = 0, 0
		p.State = PortDocking
	}
}

func portIO(p *Port, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
	switch op {
	case simctx.IOCoord:
		if len(args) < 2 {
			return 0, simctx.ErrMissingArg
		}
		p.Target = idcode.MakeCoord(int32(args[0]), int32(args[1]))
		return 1, simctx.ErrNone
	case simctx.IOItem:
		if len(args) < 1 {
			return 0, simctx.ErrMissingArg
		}
		p.WantItem = idcode.ItemKind(args[0])
		if len(args) >= 2 {
			p.WantQty = args[1]
		}
		return 1, simctx.ErrNone
	case simctx.IOActivate:
		if p.State == PortIdle {
			p.State = PortDocking
		}
		return 1, simctx.ErrNone
	case simctx.IOReset:
		ctx.PortsReset(p.ID)
		p.State = PortIdle
		p.HasItem, p.HasQty = 0, 0
		return 1, simctx.ErrNone
	case simctx.IOState:
		return int64(p.State), simctx.ErrNone
	default:
		return 0, simctx.ErrA0Unknown
	}
}

// Packer deletes local entities matching a configured item kind and
// produces that same item on its output slot — converting a placed
// machine back into a packable item (spec.md §4.9).
type Packer struct {
	ID   idcode.ID
	Item idcode.ItemKind
}

// NewPackerArena builds the arena backing the packer kind.
func NewPackerArena(kind idcode.ItemKind) *entarena.Arena[Packer] {
	return entarena.New(kind, entarena.Ops[Packer]{
		Init: func(id idcode.ID, pk *Packer, args []int64) {
			pk.ID = id
		},
		Step: func(id idcode.ID, pk *Packer, ctx simctx.Context) {
			if pk.Item == 0 {
				return
			}
			if !ctx.DeleteOne(pk.Item) {
				return
			}
			ctx.PortsProduce(pk.ID, pk.Item)
		},
		IO: func(id idcode.ID, pk *Packer, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			switch op {
			case simctx.IOItem:
				if len(args) < 1 {
					return 0, simctx.ErrMissingArg
				}
				pk.Item = idcode.ItemKind(args[0])
				return 1, simctx.ErrNone
			case simctx.IOReset:
				pk.Item = 0
				return 1, simctx.ErrNone
			default:
				return 0, simctx.ErrA0Unknown
			}
		},
	})
}

// nomadCargoLen is im_nomad_cargo_len: at most this many distinct item
// kinds may be carried at once.
const nomadCargoLen = 12

// nomadDataLen is im_nomad_data_len: user memory words carried across a
// launch/make cycle (e.g. a passenger brain's mod id).
const nomadDataLen = 3

// nomadCargoMax is im_nomad_cargo_max: per-kind cargo count cap.
const nomadCargoMax = 255

// NomadOp mirrors im_nomad_op.
type NomadOp uint8

const (
	NomadPack NomadOp = iota
	NomadLoad
	NomadUnload
	NomadLaunch
)

type nomadSlot struct {
	item  idcode.ItemKind
	count uint8
}

// Nomad carries a small inventory of packed items plus 3 user memory
// words across a lane flight (spec.md §4.9).
//
// Grounded on original_source/src/items/nomad/nomad.h
// (im_nomad_cargo_len=12, im_nomad_data_len=3, im_nomad_cargo_max=255).
type Nomad struct {
	ID     idcode.ID
	Cargo  [nomadCargoLen]nomadSlot
	Data   [nomadDataLen]int64
	ModID  int64
	Target idcode.Coord
}

func (n *Nomad) find(item idcode.ItemKind) int {
	for i, s := range n.Cargo {
		if s.item == item {
			return i
		}
	}
	return -1
}

func (n *Nomad) add(item idcode.ItemKind, count uint8) bool {
	if idx := n.find(item); idx >= 0 {
		room := nomadCargoMax - int(n.Cargo[idx].count)
		if room <= 0 {
			return false
		}
		if int(count) > room {
			count = uint8(room)
		}
		n.Cargo[idx].count += count
		return true
	}
	for i, s := range n.Cargo {
		if s.item == 0 {
			if count > nomadCargoMax {
				count = nomadCargoMax
			}
			n.Cargo[i] = nomadSlot{item: item, count: count}
			return true
		}
	}
	return false // no free slot: dropped; IOItem reports ErrOutOfSpace, Init ignores it (spec.md §9 Open Question)
}

// NewNomadArena builds the arena backing the nomad kind.
func NewNomadArena(kind idcode.ItemKind) *entarena.Arena[Nomad] {
	return entarena.New(kind, entarena.Ops[Nomad]{
		Init: func(id idcode.ID, n *Nomad, args []int64) {
			n.ID = id
			n.Target = idcode.CoordNil
			if len(args) >= 1 {
				n.ModID = args[0]
			}
			// Bin-pack cargo from launch args in index order — items
			// that don't fit are dropped. Init has no Context, so no
			// log entry is written for them (spec.md §9 Open Question).
			for i := 1; i+1 < len(args); i += 2 {
				item := idcode.ItemKind(args[i])
				count := uint8(args[i+1])
				if item == 0 {
					continue
				}
				n.add(item, count)
			}
		},
		IO: func(id idcode.ID, n *Nomad, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			return nomadIO(n, ctx, op, args)
		},
	})
}

func nomadIO(n *Nomad, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
	switch op {
	case simctx.IOItem:
		if len(args) < 2 {
			return 0, simctx.ErrMissingArg
		}
		item := idcode.ItemKind(args[0])
		count := uint8(args[1])
		if ctx.Count(item) == 0 {
			return 0, simctx.ErrA0Invalid
		}
		if !n.add(item, count) {
			return 0, simctx.ErrOutOfSpace
		}
		return 1, simctx.ErrNone
	case simctx.IOCoord:
		if len(args) < 2 {
			return 0, simctx.ErrMissingArg
		}
		n.Target = idcode.MakeCoord(int32(args[0]), int32(args[1]))
		return 1, simctx.ErrNone
	case simctx.IOLaunch:
		payload := make([]int64, 0, 1+2*nomadCargoLen)
		payload = append(payload, n.ModID)
		for _, s := range n.Cargo {
			if s.item == 0 {
				continue
			}
			payload = append(payload, int64(s.item), int64(s.count))
		}
		dst := n.Target
		if dst == idcode.CoordNil {
			dst = ctx.Coord()
		}
		ctx.LanesLaunch(n.ID.Kind(), 0, dst, payload)
		ctx.Delete(n.ID)
		return 1, simctx.ErrNone
	case simctx.IOReset:
		*n = Nomad{ID: n.ID, Target: idcode.CoordNil}
		return 1, simctx.ErrNone
	default:
		return 0, simctx.ErrA0Unknown
	}
}

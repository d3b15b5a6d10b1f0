package machines

import (
	"github.com/legionsim/core/internal/entarena"
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/simctx"
)

// LabState is the lab's three-state research cycle (spec.md §4.6).
type LabState uint8

const (
	LabIdle LabState = iota
	LabWaiting
	LabWorking
)

// TechView supplies the frozen tech-bit layout for an item: how many
// unlockable bits it has. Bits is static per-item configuration, shared
// across every owner; whether a given bit is already learned is instead
// resolved per-tick through simctx.Context.TechKnown, which the chunk
// parametrises by its own owner (TechView has no owner to key by).
type TechView interface {
	Bits(item idcode.ItemKind) int
}

// Lab is the research machine: consumes a selected item, counts down a
// fixed work duration, then learns one random still-unknown bit.
//
// Grounded on original_source/src/items/lab/lab.c (selected item, bit
// selection via per-instance RNG over the unknown-bit set).
type Lab struct {
	ID    idcode.ID
	Item  idcode.ItemKind
	State LabState
	Left  int
	Cap   int
	Tech  TechView
}

// NewLabArena builds the arena backing the lab kind. workCap is the
// frozen im_lab work duration for this configuration.
func NewLabArena(kind idcode.ItemKind, tech TechView, workCap int) *entarena.Arena[Lab] {
	return entarena.New(kind, entarena.Ops[Lab]{
		Init: func(id idcode.ID, l *Lab, args []int64) {
			l.ID = id
			l.Tech = tech
			l.Cap = workCap
		},
		Step: func(id idcode.ID, l *Lab, ctx simctx.Context) {
			switch l.State {
			case LabIdle:
				if l.Item == 0 {
					return
				}
				ctx.PortsRequest(l.ID, l.Item)
				l.State = LabWaiting
			case LabWaiting:
				if _, ok := ctx.PortsConsume(l.ID); ok {
					l.Left = l.Cap
					l.State = LabWorking
				}
			case LabWorking:
				l.Left--
				if l.Left > 0 {
					return
				}
				unknown := unknownBits(ctx, l.Tech, l.Item)
				if len(unknown) == 0 {
					l.Item = 0
					l.State = LabIdle
					return
				}
				rng := ctx.Rand(l.ID)
				bit := unknown[rng.IntN(len(unknown))]
				ctx.TechLearnBit(l.Item, bit)
				l.State = LabIdle
			}
		},
		IO: func(id idcode.ID, l *Lab, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			switch op {
			case simctx.IOItem:
				if len(args) < 1 {
					return 0, simctx.ErrMissingArg
				}
				l.Item = idcode.ItemKind(args[0])
				l.State = LabIdle
				return 1, simctx.ErrNone
			case simctx.IOReset:
				l.Item = 0
				l.State = LabIdle
				ctx.PortsReset(l.ID)
				return 1, simctx.ErrNone
			case simctx.IOState:
				return int64(l.State), simctx.ErrNone
			default:
				return 0, simctx.ErrA0Unknown
			}
		},
	})
}

func unknownBits(ctx simctx.Context, tech TechView, item idcode.ItemKind) []uint8 {
	n := tech.Bits(item)
	var out []uint8
	for b := 0; b < n; b++ {
		if !ctx.TechKnown(item, uint8(b)) {
			out = append(out, uint8(b))
		}
	}
	return out
}

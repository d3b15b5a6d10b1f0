package machines

import (
	"github.com/legionsim/core/internal/entarena"
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/simctx"
)

// Fusion is the energy-producing reactor (spec.md §4.5).
//
// Grounded on original_source/src/items/fusion/fusion.h
// (im_fusion{id, paused, waiting, energy}, im_fusion_energy_cap,
// im_fusion_energy_output).
type Fusion struct {
	ID      idcode.ID
	RodItem idcode.ItemKind
	Paused  bool
	Waiting bool
	Energy  int64 // buffered reserve
	Cap     int64
	Output  int64
}

// NewFusionArena builds the arena backing the fusion kind. cap and
// output are the frozen im_fusion_energy_cap / im_fusion_energy_output
// constants for this configuration.
func NewFusionArena(kind idcode.ItemKind, rod idcode.ItemKind, cap, output int64) *entarena.Arena[Fusion] {
	return entarena.New(kind, entarena.Ops[Fusion]{
		Init: func(id idcode.ID, f *Fusion, args []int64) {
			f.ID = id
			f.RodItem = rod
			f.Cap = cap
			f.Output = output
		},
		Step: func(id idcode.ID, f *Fusion, ctx simctx.Context) {
			if f.Paused {
				return
			}
			if f.Energy+f.Output < f.Cap {
				if !f.Waiting {
					ctx.PortsRequest(f.ID, f.RodItem)
					f.Waiting = true
				} else if _, ok := ctx.PortsConsume(f.ID); ok {
					f.Waiting = false
					f.Energy = f.Cap // a rod instantly tops up the reserve
				}
			}
			if f.Energy <= 0 {
				return
			}
			out := f.Output
			if out > f.Energy {
				out = f.Energy
			}
			f.Energy -= out
			ctx.EnergyProduce(out)
		},
		IO: func(id idcode.ID, f *Fusion, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			switch op {
			case simctx.IOActivate:
				f.Paused = false
				return 1, simctx.ErrNone
			case simctx.IOReset:
				f.Paused = true
				f.Waiting = false
				ctx.PortsReset(f.ID)
				return 1, simctx.ErrNone
			case simctx.IOState:
				return f.Energy, simctx.ErrNone
			default:
				return 0, simctx.ErrA0Unknown
			}
		},
	})
}

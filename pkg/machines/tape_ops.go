package machines

import (
	"github.com/legionsim/core/internal/entarena"
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/internal/tape"
	"github.com/legionsim/core/pkg/simctx"
)

func tapeIO(r *TapeRunner, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
	switch op {
	case simctx.IOItem, simctx.IOTape:
		if len(args) < 1 {
			return 0, simctx.ErrMissingArg
		}
		item := idcode.ItemKind(args[0])
		if r.Registry.Lookup(item) == nil {
			return 0, simctx.ErrA0Unknown
		}
		loops := tape.InfLoops
		if len(args) >= 2 && args[1] >= 0 && args[1] < int64(tape.InfLoops) {
			loops = uint16(args[1])
		}
		r.Cursor = tape.NewCursor(item, loops, r.Registry)
		return 1, simctx.ErrNone
	case simctx.IOReset:
		r.Cursor.Reset()
		return 1, simctx.ErrNone
	case simctx.IOState:
		if r.Cursor.Tape() == nil {
			return 0, simctx.ErrNone
		}
		return int64(r.Cursor.Pos), simctx.ErrNone
	default:
		return 0, simctx.ErrA0Unknown
	}
}

// newTapeOps builds the lifecycle table shared by every tape-driven
// machine kind; harvester gates the Output step on Extract() the way
// extract/condenser special-case a starved star (spec.md §4.3).
func newTapeOps(reg *tape.Registry, harvester bool) entarena.Ops[TapeRunner] {
	return entarena.Ops[TapeRunner]{
		Init: func(id idcode.ID, r *TapeRunner, args []int64) {
			r.ID = id
			r.Registry = reg
			r.Harvester = harvester
		},
		Step: func(id idcode.ID, r *TapeRunner, ctx simctx.Context) {
			TapeRunnerStep(r, ctx)
		},
		IO: func(id idcode.ID, r *TapeRunner, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			return tapeIO(r, ctx, op, args)
		},
	}
}

// NewExtractArena builds the arena backing the harvester that turns a
// star's raw elemental abundance into a stream of the matching item.
func NewExtractArena(kind idcode.ItemKind, reg *tape.Registry) *entarena.Arena[TapeRunner] {
	return entarena.New(kind, newTapeOps(reg, true))
}

// NewPrinterArena builds the arena backing a generic non-harvester
// single-recipe tape runner (printer, assembly, collider).
func NewPrinterArena(kind idcode.ItemKind, reg *tape.Registry) *entarena.Arena[TapeRunner] {
	return entarena.New(kind, newTapeOps(reg, false))
}

// NewCondenserArena builds the arena backing condenser, the other
// harvester kind (gas giant skimming rather than surface extraction).
func NewCondenserArena(kind idcode.ItemKind, reg *tape.Registry) *entarena.Arena[TapeRunner] {
	return entarena.New(kind, newTapeOps(reg, true))
}

// Package machines implements every item kind's lifecycle logic: the
// function tables that internal/entarena.Arena[T] drives through
// Init/Step/IO, one file per spec.md §4 component.
package machines

import (
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/internal/tape"
	"github.com/legionsim/core/pkg/simctx"
)

// TapeRunner is the shared state machine behind extract, printer,
// assembly, condenser and collider (spec.md §4.3): a packed tape cursor
// plus the harvester-starve special case.
//
// Grounded on original_source/src/items/extract, printer, assembly,
// collider (the four *_im.c step functions, which are all thin
// wrappers over the same tape-cursor state machine).
type TapeRunner struct {
	ID        idcode.ID
	Cursor    tape.Cursor
	Harvester bool // extract/condenser: Output gated by Extract(kind)
	Registry  *tape.Registry
}

// TapeRunnerStep advances one runner by exactly one tick, per spec.md
// §4.3: pay energy, then act on the current step.
func TapeRunnerStep(r *TapeRunner, ctx simctx.Context) {
	cur, ok := r.Cursor.Current()
	if !ok {
		return
	}
	tp := r.Cursor.Tape()
	if tp == nil {
		return
	}
	if !ctx.EnergyConsume(tp.EnergyPerTick) {
		return // back-pressure idle, no state change
	}

	switch cur.Kind {
	case tape.StepInput:
		if !r.Cursor.Waiting {
			ctx.PortsRequest(r.ID, cur.Item)
			r.Cursor.Waiting = true
			return
		}
		if _, ok := ctx.PortsConsume(r.ID); ok {
			r.Cursor.Advance()
		}

	case tape.StepWork:
		r.Cursor.Advance()

	case tape.StepOutput:
		if !r.Cursor.Waiting {
			if r.Harvester && !ctx.Extract(cur.Item) {
				r.Cursor.Reset()
				ctx.Log(r.ID, int64(simctx.ErrStarved), 0)
				return
			}
			if !ctx.PortsProduce(r.ID, cur.Item) {
				return
			}
			r.Cursor.Waiting = true
			return
		}
		if ctx.PortsConsumed(r.ID) {
			r.Cursor.Advance()
		}
	}
}

package machines

import (
	"math/bits"

	"github.com/legionsim/core/internal/entarena"
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/simctx"
)

// BurnerOp is the burner's tiny state machine (spec.md §4.4:
// "{nil -> in -> work -> in -> ...}").
//
// Grounded on original_source/src/items/burner/burner.h (im_burner_op,
// the {work.left, work.cap} pair).
type BurnerOp uint8

const (
	BurnerNil BurnerOp = iota
	BurnerIn
	BurnerWork
)

// BurnerSpecs supplies the frozen per-item constants the burner needs:
// the elemental composition of a fuel item's recipe (used to derive both
// the work duration and the energy payout) — sourced from the same
// frozen tape/item registry every other machine reads, never computed
// at runtime.
type BurnerSpecs interface {
	// ElementSum returns the sum of element numeric codes in the recipe
	// that produces item, folding item_elem_o into item_elem_m, or the
	// item's own numeric code for an elemental with no recipe.
	ElementSum(item idcode.ItemKind) int64
}

// Burner converts one fuel item into a burst of energy.
type Burner struct {
	ID     idcode.ID
	Item   idcode.ItemKind
	Op     BurnerOp
	Specs  BurnerSpecs
	Left   int
	Cap    int
	Energy int64 // fixed per-tick output while working
}

func burnerWorkCap(sum int64) int {
	if sum <= 1 {
		return 1
	}
	return bits.Len64(uint64(sum - 1))
}

// NewBurnerArena builds the arena backing the burner kind.
func NewBurnerArena(kind idcode.ItemKind, specs BurnerSpecs, outputEnergy int64) *entarena.Arena[Burner] {
	return entarena.New(kind, entarena.Ops[Burner]{
		Init: func(id idcode.ID, b *Burner, args []int64) {
			b.ID = id
			b.Specs = specs
			b.Energy = outputEnergy
			if len(args) >= 1 {
				b.Item = idcode.ItemKind(args[0])
			}
		},
		Step: func(id idcode.ID, b *Burner, ctx simctx.Context) {
			switch b.Op {
			case BurnerNil:
				if b.Item != 0 {
					ctx.PortsRequest(b.ID, b.Item)
					b.Op = BurnerIn
				}
			case BurnerIn:
				kind, ok := ctx.PortsConsume(b.ID)
				if !ok {
					return
				}
				sum := b.Specs.ElementSum(kind)
				b.Cap = burnerWorkCap(sum)
				b.Left = b.Cap
				b.Op = BurnerWork
			case BurnerWork:
				ctx.EnergyProduce(b.Energy)
				b.Left--
				if b.Left <= 0 {
					b.Op = BurnerIn
					ctx.PortsRequest(b.ID, b.Item)
				}
			}
		},
		IO: func(id idcode.ID, b *Burner, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			switch op {
			case simctx.IOItem:
				if len(args) < 1 {
					return 0, simctx.ErrMissingArg
				}
				b.Item = idcode.ItemKind(args[0])
				b.Op = BurnerNil
				return 1, simctx.ErrNone
			case simctx.IOReset:
				b.Op = BurnerNil
				b.Left, b.Cap = 0, 0
				return 1, simctx.ErrNone
			case simctx.IOState:
				return int64(b.Op), simctx.ErrNone
			default:
				return 0, simctx.ErrA0Unknown
			}
		},
	})
}

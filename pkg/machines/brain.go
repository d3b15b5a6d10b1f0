package machines

import (
	"github.com/legionsim/core/internal/entarena"
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/internal/vm"
	"github.com/legionsim/core/pkg/modreg"
	"github.com/legionsim/core/pkg/simctx"
)

// Brain hosts one VM: a program counter into a mod, an instruction
// budget ("speed"), the VM's own stack/registers/flags, debug/breakpoint
// state, and a depth-1 inbound packet mailbox filled by a peer's
// io_send (spec.md §4.7).
//
// Grounded on original_source/src/items/brain/brain.h.
type Brain struct {
	ID       idcode.ID
	Mods     *modreg.Registry
	Machine  *vm.Machine
	Speed    int
	Fault    bool
	Break    uint32
	DbgPause bool

	inbound    []int64
	hasInbox   bool
	registered bool
}

// NewBrainArena builds the arena backing the brain kind.
func NewBrainArena(kind idcode.ItemKind, mods *modreg.Registry, speed int) *entarena.Arena[Brain] {
	return entarena.New(kind, entarena.Ops[Brain]{
		Init: func(id idcode.ID, b *Brain, args []int64) {
			b.ID = id
			b.Mods = mods
			b.Machine = vm.New()
			b.Speed = speed
		},
		Step: func(id idcode.ID, b *Brain, ctx simctx.Context) {
			brainStep(b, ctx)
		},
		IO: func(id idcode.ID, b *Brain, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			return brainIO(b, ctx, op, args)
		},
	})
}

// Deliver fills the brain's inbound mailbox, overwriting whatever was
// there — the buffer has depth 1, same as receive's listener ring.
// Called by the chunk implementing simctx.Context.Send.
func (b *Brain) Deliver(payload []int64) {
	b.inbound = append(b.inbound[:0], payload...)
	b.hasInbox = true
}

func brainStep(b *Brain, ctx simctx.Context) {
	if !b.registered {
		ctx.RegisterReceiver(b.ID, b)
		b.registered = true
	}
	if b.DbgPause || b.Fault || b.Machine.Faulted {
		return
	}
	if b.Machine.IP == b.Break {
		b.DbgPause = true
		return
	}

	sig := b.Machine.Run(b.Speed, nil)
	switch sig.Kind {
	case vm.SigFault:
		b.Fault = true
		ctx.Log(b.ID, int64(simctx.ErrVMFault), 0)
	case vm.SigLoad:
		mod, err := b.Mods.Get(uint32(sig.ModID>>32), uint32(sig.ModID))
		if err == nil {
			b.Machine.Load(mod.Prog)
		} else {
			b.Fault = true
		}
	case vm.SigReset:
		b.Machine.Reset()
	case vm.SigIO:
		result, ok := dispatchBrainIO(b, ctx, sig)
		if !ok {
			result = 0
		}
		b.Machine.ResumeIO(result, sig.IOToReg, sig.IORegN)
	}
}

// dispatchBrainIO handles the local intrinsics inline and forwards
// everything else to the host chunk's IO dispatch (spec.md §4.7: "id,
// tick, coord, name, log, specs, send, recv, dbg_*").
func dispatchBrainIO(b *Brain, ctx simctx.Context, sig vm.Signal) (int64, bool) {
	op := simctx.IOOp(sig.IOAtom)
	switch op {
	case simctx.IOID:
		return int64(b.ID), true
	case simctx.IOTick:
		return ctx.Now(), true
	case simctx.IOCoord:
		return int64(ctx.Coord()), true
	case simctx.IOName:
		return ctx.Name(), true
	case simctx.IOLog:
		if len(sig.IOArgs) < 2 {
			return 0, false
		}
		ctx.Log(b.ID, sig.IOArgs[0], sig.IOArgs[1])
		return 1, true
	case simctx.IOSpecs:
		if len(sig.IOArgs) < 1 {
			return 0, false
		}
		return ctx.Specs(int(sig.IOArgs[0]), sig.IOArgs[1:]), true
	case simctx.IOSend:
		return 1, ctx.Send(idcode.ID(sig.IODst), sig.IOArgs)
	case simctx.IORecv:
		if !b.hasInbox {
			return 0, true
		}
		b.hasInbox = false
		return int64(len(b.inbound)), true
	case simctx.IODbgAttach, simctx.IODbgDetach:
		b.DbgPause = op == simctx.IODbgAttach
		return 1, true
	case simctx.IODbgBreak:
		if len(sig.IOArgs) >= 1 {
			b.Break = uint32(sig.IOArgs[0])
		}
		return 1, true
	case simctx.IODbgStep:
		b.Machine.Run(1, nil)
		return 1, true
	default:
		result, ioErr := ctx.Dispatch(idcode.ID(sig.IODst), op, sig.IOArgs)
		return result, ioErr == simctx.ErrNone
	}
}

func brainIO(b *Brain, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
	switch op {
	case simctx.IOMod:
		if len(args) < 2 {
			return 0, simctx.ErrMissingArg
		}
		mod, err := b.Mods.Get(uint32(args[0]), uint32(args[1]))
		if err != nil {
			return 0, simctx.ErrA1Invalid
		}
		b.Machine.Load(mod.Prog)
		b.Fault = false
		return 1, simctx.ErrNone
	case simctx.IOReset:
		b.Machine.Reset()
		b.Fault = false
		b.DbgPause = false
		return 1, simctx.ErrNone
	case simctx.IOState:
		return int64(b.Machine.IP), simctx.ErrNone
	default:
		return 0, simctx.ErrA0Unknown
	}
}

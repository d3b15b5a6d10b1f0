package machines

import (
	"github.com/legionsim/core/internal/entarena"
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/internal/ring"
	"github.com/legionsim/core/pkg/simctx"
)

// TransmitSpeed is the frozen lane speed data packets travel at
// (im_transmit has no speed field of its own in the original; it reuses
// the lane subsystem's default data-packet speed).
const TransmitSpeed = 100

// Transmit carries a channel and a target coord; io_transmit packs the
// channel into the payload and launches a lane packet (spec.md §4.8).
//
// Grounded on original_source/src/items/transmit/transmit.h.
type Transmit struct {
	ID      idcode.ID
	Channel uint8
	Target  idcode.Coord
}

// NewTransmitArena builds the arena backing the transmit kind.
func NewTransmitArena(kind idcode.ItemKind, dataKind idcode.ItemKind) *entarena.Arena[Transmit] {
	return entarena.New(kind, entarena.Ops[Transmit]{
		Init: func(id idcode.ID, t *Transmit, args []int64) {
			t.ID = id
			t.Target = idcode.CoordNil
		},
		IO: func(id idcode.ID, t *Transmit, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			switch op {
			case simctx.IOCoord:
				if len(args) < 2 {
					return 0, simctx.ErrMissingArg
				}
				t.Target = idcode.MakeCoord(int32(args[0]), int32(args[1]))
				return 1, simctx.ErrNone
			case simctx.IOState:
				if len(args) < 1 {
					return 0, simctx.ErrMissingArg
				}
				t.Channel = uint8(args[0])
				return 1, simctx.ErrNone
			case simctx.IOTransmit:
				if t.Target == idcode.CoordNil {
					return 0, simctx.ErrInvalidState
				}
				payload := make([]int64, 0, len(args)+1)
				payload = append(payload, int64(t.Channel))
				payload = append(payload, args...)
				ctx.LanesTransmit(dataKind, TransmitSpeed, t.Target, payload)
				return 1, simctx.ErrNone
			case simctx.IOReset:
				t.Target = idcode.CoordNil
				t.Channel = 0
				return 1, simctx.ErrNone
			default:
				return 0, simctx.ErrA0Unknown
			}
		},
	})
}

// Receive holds a channel, a listen-from coord, and a depth-1 ring of
// delivered packets (spec.md §4.8).
//
// Grounded on original_source/src/items/receive/receive.h
// (im_receive{channel, head, tail, target, buffer[]}); our ring buffer
// depth is fixed at 1 per spec.md §4.8 ("older entries dropped")
// instead of the original's variable-length buffer.
type Receive struct {
	ID      idcode.ID
	Channel uint8
	Target  idcode.Coord
	inbox   *ring.Ring[[]int64]

	registered bool
}

// NewReceiveArena builds the arena backing the receive kind.
func NewReceiveArena(kind idcode.ItemKind) *entarena.Arena[Receive] {
	return entarena.New(kind, entarena.Ops[Receive]{
		Init: func(id idcode.ID, r *Receive, args []int64) {
			r.ID = id
			r.Target = idcode.CoordNil
			r.inbox = ring.New[[]int64](1)
		},
		Step: func(id idcode.ID, r *Receive, ctx simctx.Context) {
			if !r.registered {
				ctx.RegisterReceiver(r.ID, r)
				r.registered = true
			}
		},
		IO: func(id idcode.ID, r *Receive, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			switch op {
			case simctx.IOCoord:
				if len(args) < 2 {
					return 0, simctx.ErrMissingArg
				}
				r.Target = idcode.MakeCoord(int32(args[0]), int32(args[1]))
				ctx.LanesListen(r.ID, r.Target, r.Channel)
				return 1, simctx.ErrNone
			case simctx.IOState:
				if len(args) < 1 {
					return 0, simctx.ErrMissingArg
				}
				if r.Target != idcode.CoordNil {
					ctx.LanesUnlisten(r.ID, r.Target, r.Channel)
				}
				r.Channel = uint8(args[0])
				if r.Target != idcode.CoordNil {
					ctx.LanesListen(r.ID, r.Target, r.Channel)
				}
				return 1, simctx.ErrNone
			case simctx.IOReceive:
				if pkt, ok := r.inbox.Pop(); ok {
					return int64(len(pkt)), simctx.ErrNone
				}
				return 0, simctx.ErrNone
			case simctx.IOReset:
				if r.Target != idcode.CoordNil {
					ctx.LanesUnlisten(r.ID, r.Target, r.Channel)
				}
				r.Target = idcode.CoordNil
				r.Channel = 0
				r.inbox.Clear()
				return 1, simctx.ErrNone
			default:
				return 0, simctx.ErrA0Unknown
			}
		},
	})
}

// Deliver pushes a freshly-arrived packet into the listener's depth-1
// ring, overwriting whatever was undelivered (spec.md §4.8 "older
// entries dropped"). Called by the chunk's lane-arrival dispatch.
func (r *Receive) Deliver(payload []int64) {
	r.inbox.Push(payload)
}

package machines

import (
	"github.com/legionsim/core/internal/entarena"
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/simctx"
)

// proberScanDivisor scales prober/scanner work cost by range: work.cap =
// dist/divisor ticks (spec.md §4.10).
const proberScanDivisor = 1000

// Prober queries a single specific coordinate for one item's abundance
// (spec.md §4.10).
//
// Grounded on original_source/src/items/prober/prober.h
// (im_prober{work, item, coord, result}).
type Prober struct {
	ID     idcode.ID
	Item   idcode.ItemKind
	Target idcode.Coord
	Left   int
	Cap    int
	Result int64
	Done   bool
}

// NewProberArena builds the arena backing the prober kind.
func NewProberArena(kind idcode.ItemKind) *entarena.Arena[Prober] {
	return entarena.New(kind, entarena.Ops[Prober]{
		Init: func(id idcode.ID, p *Prober, args []int64) { p.ID = id },
		Step: func(id idcode.ID, p *Prober, ctx simctx.Context) {
			if p.Target == idcode.CoordNil || p.Done {
				return
			}
			if p.Left == 0 {
				p.Left = p.Cap
			}
			p.Left--
			if p.Left > 0 {
				return
			}
			ctx.Probe(p.Target, p.Item)
			if v, ok := ctx.ProbeValue(p.Target, p.Item); ok {
				p.Result = v
			}
			p.Done = true
		},
		IO: func(id idcode.ID, p *Prober, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			switch op {
			case simctx.IOItem:
				if len(args) < 1 {
					return 0, simctx.ErrMissingArg
				}
				p.Item = idcode.ItemKind(args[0])
				return 1, simctx.ErrNone
			case simctx.IOCoord:
				if len(args) < 2 {
					return 0, simctx.ErrMissingArg
				}
				p.Target = idcode.MakeCoord(int32(args[0]), int32(args[1]))
				dist := idcode.SectorDist(ctx.Coord(), p.Target)
				p.Cap = int(dist / proberScanDivisor)
				p.Left, p.Done = 0, false
				return 1, simctx.ErrNone
			case simctx.IOValue:
				if !p.Done {
					return 0, simctx.ErrInvalidState
				}
				v := p.Result
				p.Target, p.Done = idcode.CoordNil, false
				return v, simctx.ErrNone
			case simctx.IOReset:
				*p = Prober{ID: p.ID}
				return 1, simctx.ErrNone
			default:
				return 0, simctx.ErrA0Unknown
			}
		},
	})
}

// Scanner sweeps for any inhabited star, either a specific target coord
// or a wide sector search (spec.md §4.10).
//
// Grounded on original_source/src/items/scanner/scanner.h
// (im_scanner{work, it (world_scan_it), result}).
type Scanner struct {
	ID     idcode.ID
	It     simctx.ScanIt
	Left   int
	Cap    int
	Result idcode.Coord
	Found  bool
	Done   bool
}

// NewScannerArena builds the arena backing the scanner kind.
func NewScannerArena(kind idcode.ItemKind) *entarena.Arena[Scanner] {
	return entarena.New(kind, entarena.Ops[Scanner]{
		Init: func(id idcode.ID, s *Scanner, args []int64) { s.ID = id },
		Step: func(id idcode.ID, s *Scanner, ctx simctx.Context) {
			if s.Done || (s.It.Origin == idcode.CoordNil) {
				return
			}
			if s.Left == 0 {
				s.Left = s.Cap
			}
			s.Left--
			if s.Left > 0 {
				return
			}
			ctx.Scan(s.It)
			if c, ok := ctx.ScanValue(s.It); ok {
				s.Result, s.Found = c, true
			}
			s.Done = true
		},
		IO: func(id idcode.ID, s *Scanner, ctx simctx.Context, op simctx.IOOp, args []int64) (int64, simctx.Err) {
			switch op {
			case simctx.IOCoord:
				s.It.Origin = ctx.Coord()
				if len(args) >= 2 {
					s.It.Wide = false
					s.It.Target = idcode.MakeCoord(int32(args[0]), int32(args[1]))
					dist := idcode.SectorDist(s.It.Origin, s.It.Target)
					s.Cap = int(dist / proberScanDivisor)
				} else if len(args) == 1 {
					s.It.Wide = true
					s.It.Sector = int32(args[0])
					s.Cap = int(args[0])
				}
				s.Left, s.Done, s.Found = 0, false, false
				return 1, simctx.ErrNone
			case simctx.IOValue:
				if !s.Done {
					return 0, simctx.ErrInvalidState
				}
				v := int64(s.Result)
				if !s.Found {
					v = int64(idcode.CoordNil)
				}
				s.It.Origin, s.Done = idcode.CoordNil, false
				return v, simctx.ErrNone
			case simctx.IOReset:
				*s = Scanner{ID: s.ID}
				return 1, simctx.ErrNone
			default:
				return 0, simctx.ErrA0Unknown
			}
		},
	})
}

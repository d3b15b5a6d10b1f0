package machines

import (
	"testing"

	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/simctx"
)

func TestPortDockingRequiresEnergyAndPill(t *testing.T) {
	arena := NewPortArena(idcode.ItemKind(19), 5, 5)
	id, _ := arena.Create(nil)
	arena.DrainPending(nil)

	ctx := newFakeCtx()
	arena.IO(ctx, id, simctx.IOItem, []int64{int64(idcode.ItemKind(3)), 1})
	arena.IO(ctx, id, simctx.IOActivate, nil)

	// Not enough energy: stays in PortDocking.
	arena.Step(ctx)
	if arena.Get(id).State != PortDocking {
		t.Fatalf("state without energy = %v, want PortDocking", arena.Get(id).State)
	}

	ctx.energy = 100
	arena.Step(ctx) // energy ok, but no pill docked yet
	if arena.Get(id).State != PortDocking {
		t.Fatalf("state without docked pill = %v, want PortDocking", arena.Get(id).State)
	}

	ctx.dockQty[idcode.ItemKind(3)] = 7
	arena.Step(ctx)
	p := arena.Get(id)
	if p.State != PortDocked || p.HasQty != 7 {
		t.Fatalf("after dock: state=%v qty=%d, want PortDocked/7", p.State, p.HasQty)
	}
}

func TestPortUnloadingCyclesToLaunch(t *testing.T) {
	arena := NewPortArena(idcode.ItemKind(19), 0, 0)
	id, _ := arena.Create(nil)
	arena.DrainPending(nil)

	p := arena.Get(id)
	p.State = PortDocked
	p.HasItem = idcode.ItemKind(3)
	p.WantQty = 1

	ctx := newFakeCtx()
	arena.Step(ctx) // PortDocked -> PortUnloading (WantQty > 0)
	if p.State != PortUnloading {
		t.Fatalf("state = %v, want PortUnloading", p.State)
	}

	arena.Step(ctx) // no port consumed yet: requests, stays
	if _, ok := ctx.portReq[id]; !ok {
		t.Fatal("port did not request cargo while unloading")
	}

	ctx.portReady[id] = idcode.ItemKind(3)
	arena.Step(ctx)
	if p.State != PortLaunch || p.HasQty != 1 {
		t.Fatalf("after consume: state=%v qty=%d, want PortLaunch/1", p.State, p.HasQty)
	}

	arena.Step(ctx) // launches, resets to docking
	if p.State != PortDocking || p.HasQty != 0 {
		t.Fatalf("after launch: state=%v qty=%d, want PortDocking/0", p.State, p.HasQty)
	}
}

func TestPortResetClearsCargoAndPorts(t *testing.T) {
	arena := NewPortArena(idcode.ItemKind(19), 0, 0)
	id, _ := arena.Create(nil)
	arena.DrainPending(nil)

	p := arena.Get(id)
	p.State = PortDocked
	p.HasItem, p.HasQty = idcode.ItemKind(3), 9

	ctx := newFakeCtx()
	ctx.portReq[id] = idcode.ItemKind(3)
	if _, err := arena.IO(ctx, id, simctx.IOReset, nil); err != 0 {
		t.Fatalf("IOReset error: %v", err)
	}
	if p.State != PortIdle || p.HasQty != 0 {
		t.Fatalf("after reset: state=%v qty=%d, want PortIdle/0", p.State, p.HasQty)
	}
	if _, ok := ctx.portReq[id]; ok {
		t.Fatal("port request still present after reset")
	}
}

func TestPackerProducesWhenConfiguredItemPresent(t *testing.T) {
	arena := NewPackerArena(idcode.ItemKind(20))
	id, _ := arena.Create(nil)
	arena.DrainPending(nil)

	ctx := newFakeCtx()
	arena.IO(ctx, id, simctx.IOItem, []int64{int64(idcode.ItemKind(4))})

	arena.Step(ctx) // Count is 0: nothing produced
	if ctx.PortsConsumed(id) {
		t.Fatal("packer produced with zero local count")
	}

	ctx.counts[idcode.ItemKind(4)] = 1
	arena.Step(ctx)
	if !ctx.PortsConsumed(id) {
		t.Fatal("packer did not produce when item present")
	}
}

func TestNomadAddFillsSlotsThenRejects(t *testing.T) {
	n := &Nomad{}
	for i := 0; i < nomadCargoLen; i++ {
		if !n.add(idcode.ItemKind(i+1), 1) {
			t.Fatalf("add #%d failed unexpectedly", i)
		}
	}
	if n.add(idcode.ItemKind(nomadCargoLen+1), 1) {
		t.Fatal("add succeeded past cargo capacity, want rejection")
	}
}

func TestNomadAddMergesExistingSlotUpToMax(t *testing.T) {
	n := &Nomad{}
	item := idcode.ItemKind(5)
	if !n.add(item, 250) {
		t.Fatal("initial add failed")
	}
	if !n.add(item, 10) {
		t.Fatal("merge add failed")
	}
	if got := n.Cargo[n.find(item)].count; got != nomadCargoMax {
		t.Fatalf("merged count = %d, want capped at %d", got, nomadCargoMax)
	}
	if n.add(item, 1) {
		t.Fatal("add succeeded at full slot, want rejection")
	}
}

func TestNomadIOItemRequiresLocalAvailability(t *testing.T) {
	arena := NewNomadArena(idcode.ItemKind(21))
	id, _ := arena.Create(nil)
	arena.DrainPending(nil)

	ctx := newFakeCtx()
	item := idcode.ItemKind(6)
	if _, err := arena.IO(ctx, id, simctx.IOItem, []int64{int64(item), 3}); err != simctx.ErrA0Invalid {
		t.Fatalf("IOItem with no local stock = %v, want ErrA0Invalid", err)
	}

	ctx.counts[item] = 1
	if _, err := arena.IO(ctx, id, simctx.IOItem, []int64{int64(item), 3}); err != 0 {
		t.Fatalf("IOItem with stock available = %v, want ok", err)
	}
	n := arena.Get(id)
	if n.Cargo[n.find(item)].count != 3 {
		t.Fatalf("cargo count = %d, want 3", n.Cargo[n.find(item)].count)
	}
}

func TestNomadResetClearsCargoAndTarget(t *testing.T) {
	arena := NewNomadArena(idcode.ItemKind(21))
	id, _ := arena.Create(nil)
	arena.DrainPending(nil)

	ctx := newFakeCtx()
	ctx.counts[idcode.ItemKind(6)] = 1
	arena.IO(ctx, id, simctx.IOItem, []int64{int64(idcode.ItemKind(6)), 1})
	arena.IO(ctx, id, simctx.IOCoord, []int64{4, 5})

	if _, err := arena.IO(ctx, id, simctx.IOReset, nil); err != 0 {
		t.Fatalf("IOReset error: %v", err)
	}
	n := arena.Get(id)
	if n.Target != idcode.CoordNil || n.find(idcode.ItemKind(6)) != -1 {
		t.Fatalf("nomad after reset = %+v, want cleared cargo/target", n)
	}
}

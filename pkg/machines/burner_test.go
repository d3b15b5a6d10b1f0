package machines

import (
	"testing"

	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/simctx"
)

type constBurnerSpecs struct{ sum int64 }

func (s constBurnerSpecs) ElementSum(item idcode.ItemKind) int64 { return s.sum }

func TestBurnerWorkCap(t *testing.T) {
	cases := []struct {
		sum  int64
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
	}
	for _, c := range cases {
		if got := burnerWorkCap(c.sum); got != c.want {
			t.Errorf("burnerWorkCap(%d) = %d, want %d", c.sum, got, c.want)
		}
	}
}

func TestBurnerFullCycle(t *testing.T) {
	arena := NewBurnerArena(idcode.ItemKind(13), constBurnerSpecs{sum: 3}, 5)
	id, _ := arena.Create(nil)
	arena.DrainPending(nil)

	ctx := newFakeCtx()
	arena.IO(ctx, id, simctx.IOItem, []int64{int64(idcode.ItemKind(1))})

	arena.Step(ctx) // BurnerNil -> BurnerIn (requests fuel)
	if _, ok := ctx.portReq[id]; !ok {
		t.Fatal("burner did not request fuel")
	}

	ctx.portReady[id] = idcode.ItemKind(1)
	arena.Step(ctx) // BurnerIn -> BurnerWork, Cap derived from sum=3 -> 2

	b := arena.Get(id)
	if b.Op != BurnerWork || b.Cap != 2 {
		t.Fatalf("after consuming fuel: op=%v cap=%d, want BurnerWork cap=2", b.Op, b.Cap)
	}

	arena.Step(ctx) // Left 2 -> 1, still working
	if ctx.energy != 5 {
		t.Fatalf("energy after one work tick = %d, want 5", ctx.energy)
	}

	arena.Step(ctx) // Left 1 -> 0, cycles back to BurnerIn and re-requests
	if b.Op != BurnerIn {
		t.Fatalf("op after work exhausted = %v, want BurnerIn", b.Op)
	}
	if ctx.energy != 10 {
		t.Fatalf("total energy after two work ticks = %d, want 10", ctx.energy)
	}
}

func TestBurnerResetClearsWorkState(t *testing.T) {
	arena := NewBurnerArena(idcode.ItemKind(13), constBurnerSpecs{sum: 3}, 5)
	id, _ := arena.Create(nil)
	arena.DrainPending(nil)

	ctx := newFakeCtx()
	arena.IO(ctx, id, simctx.IOItem, []int64{int64(idcode.ItemKind(1))})
	arena.Step(ctx)

	if _, err := arena.IO(ctx, id, simctx.IOReset, nil); err != 0 {
		t.Fatalf("IOReset error: %v", err)
	}
	b := arena.Get(id)
	if b.Op != BurnerNil || b.Left != 0 || b.Cap != 0 {
		t.Fatalf("state after reset = %+v, want BurnerNil/0/0", b)
	}
}

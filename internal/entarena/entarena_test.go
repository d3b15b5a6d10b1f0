package entarena

import (
	"testing"

	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/simctx"
)

type widget struct {
	Initialized bool
	Steps       int
	Args        []int64
}

func newWidgetArena() *Arena[widget] {
	return New(idcode.ItemKind(1), Ops[widget]{
		Init: func(id idcode.ID, w *widget, args []int64) {
			w.Initialized = true
			w.Args = args
		},
		Step: func(id idcode.ID, w *widget, ctx simctx.Context) {
			w.Steps++
		},
	})
}

func TestCreateDeferredUntilDrainPending(t *testing.T) {
	a := newWidgetArena()

	id, ok := a.Create([]int64{1, 2})
	if !ok {
		t.Fatal("Create returned ok=false")
	}
	if a.Get(id) != nil {
		t.Fatal("newly created item visible before DrainPending")
	}
	if a.Count() != 0 {
		t.Fatalf("Count before drain = %d, want 0", a.Count())
	}

	a.DrainPending(nil)

	w := a.Get(id)
	if w == nil {
		t.Fatal("item not visible after DrainPending")
	}
	if !w.Initialized {
		t.Fatal("Init hook never ran")
	}
	if len(w.Args) != 2 || w.Args[0] != 1 || w.Args[1] != 2 {
		t.Fatalf("Init args = %v, want [1 2]", w.Args)
	}
	if a.Count() != 1 {
		t.Fatalf("Count after drain = %d, want 1", a.Count())
	}
}

func TestStepSkipsItemsCreatedThisTick(t *testing.T) {
	a := newWidgetArena()

	id1, _ := a.Create(nil)
	a.DrainPending(nil)

	id2, _ := a.Create(nil) // created this tick, should not be stepped yet

	a.Step(nil)

	if a.Get(id1).Steps != 1 {
		t.Fatalf("pre-existing item Steps = %d, want 1", a.Get(id1).Steps)
	}

	a.DrainPending(nil)
	if a.Get(id2).Steps != 0 {
		t.Fatalf("freshly drained item Steps = %d, want 0 (not yet stepped)", a.Get(id2).Steps)
	}
}

func TestDeleteFreesSlotForReuse(t *testing.T) {
	a := newWidgetArena()

	id, _ := a.Create(nil)
	a.DrainPending(nil)
	a.Delete(id)

	if a.Get(id) != nil {
		t.Fatal("deleted item still visible via Get")
	}
	if a.Count() != 0 {
		t.Fatalf("Count after delete = %d, want 0", a.Count())
	}

	id2, ok := a.Create(nil)
	a.DrainPending(nil)
	if !ok {
		t.Fatal("Create after delete failed")
	}
	if id2.Index() != id.Index() {
		t.Fatalf("freed slot not reused: got index %d, want %d", id2.Index(), id.Index())
	}
}

func TestGetRejectsWrongKindAndNil(t *testing.T) {
	a := newWidgetArena()
	id, _ := a.Create(nil)
	a.DrainPending(nil)

	wrongKind := idcode.Make(idcode.ItemKind(2), id.Seq())
	if a.Get(wrongKind) != nil {
		t.Fatal("Get returned a value for a mismatched kind")
	}
	if a.Get(idcode.Nil) != nil {
		t.Fatal("Get returned a value for idcode.Nil")
	}
}

func TestEachVisitsOnlyLiveItems(t *testing.T) {
	a := newWidgetArena()
	id1, _ := a.Create(nil)
	id2, _ := a.Create(nil)
	a.DrainPending(nil)
	a.Delete(id1)

	seen := map[idcode.ID]bool{}
	a.Each(func(id idcode.ID, w *widget) { seen[id] = true })

	if len(seen) != 1 || !seen[id2] {
		t.Fatalf("Each visited %v, want only %v", seen, id2)
	}
}

package world

import (
	"errors"
	"testing"

	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/internal/vm"
	"github.com/legionsim/core/pkg/machines"
)

func noModsSource(major, version uint32) (*vm.Program, error) {
	return nil, errors.New("no mod source in this test")
}

func TestWorldStepAdvancesTick(t *testing.T) {
	w, err := New(noModsSource, WithShards(1), WithSeed(1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	home := idcode.MakeCoord(0, 0)
	w.AddStar(home, StarDescriptor{
		Class:      0,
		Abundance:  map[idcode.ItemKind]int64{idcode.ItemKind(4): 1000},
		SolarUnits: 0,
	})

	c := w.AddChunk(home, 1, 1, 1000, 1)
	packer := machines.NewPackerArena(idcode.ItemKind(20))
	c.Register(packer)

	id, ok := packer.Create(nil)
	if !ok {
		t.Fatal("Create failed")
	}
	packer.DrainPending(nil)
	pk := packer.Get(id)
	pk.Item = idcode.ItemKind(4)

	w.Start()
	defer w.Stop()

	if w.Tick() != 0 {
		t.Fatalf("initial tick = %d, want 0", w.Tick())
	}
	w.Step()
	if w.Tick() != 1 {
		t.Fatalf("tick after Step = %d, want 1", w.Tick())
	}
	w.Step()
	if w.Tick() != 2 {
		t.Fatalf("tick after second Step = %d, want 2", w.Tick())
	}
}

func TestWorldLearnTechBitSetsTechKnown(t *testing.T) {
	w, err := New(noModsSource, WithShards(1), WithSeed(1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if w.TechKnown(1, idcode.ItemKind(4), 0) {
		t.Fatal("tech known before any learning")
	}
	w.learnTechBit(1, idcode.ItemKind(4), 0)
	if !w.TechKnown(1, idcode.ItemKind(4), 0) {
		t.Fatal("tech not known after learnTechBit")
	}
}

func TestWorldSnapshotRestoreRoundTrip(t *testing.T) {
	w, err := New(noModsSource, WithShards(1), WithSeed(7))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	home := idcode.MakeCoord(0, 0)
	w.AddStar(home, StarDescriptor{
		Class:      1,
		Abundance:  map[idcode.ItemKind]int64{idcode.ItemKind(4): 500},
		SolarUnits: 3,
	})
	w.learnTechBit(2, idcode.ItemKind(4), 1)

	snap := w.Snapshot()

	w2, err := New(noModsSource, WithShards(1), WithSeed(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w2.Restore(snap)

	if w2.Tick() != w.Tick() {
		t.Fatalf("restored tick = %d, want %d", w2.Tick(), w.Tick())
	}
	if !w2.TechKnown(2, idcode.ItemKind(4), 1) {
		t.Fatal("restored world missing learned tech bit")
	}
	if got, ok := w2.StarAbundance(home, idcode.ItemKind(4)); !ok || got != 500 {
		t.Fatalf("restored star abundance = %d,%v, want 500,true", got, ok)
	}
}

package config

import (
	"testing"

	"github.com/legionsim/core/internal/idcode"
)

func TestDefaultItemLookup(t *testing.T) {
	r := Default()

	def := r.Item(KindAlloyA)
	if def.Name != "alloy_a" {
		t.Fatalf("KindAlloyA name = %q, want alloy_a", def.Name)
	}
	if def.LabBits != 4 {
		t.Fatalf("KindAlloyA LabBits = %d, want 4", def.LabBits)
	}
}

func TestItemOutOfRangeReturnsZeroValue(t *testing.T) {
	r := Default()
	if got := r.Item(kindCount + 10); got != (ItemDef{}) {
		t.Fatalf("out-of-range Item() = %+v, want zero value", got)
	}
}

func TestBitsMatchesItemLabBits(t *testing.T) {
	r := Default()
	cases := []struct {
		kind idcode.ItemKind
		want int
	}{
		{KindAlloyA, 4},
		{KindAlloyB, 6},
		{KindElemA, 0},
	}
	for _, c := range cases {
		if got := r.Bits(c.kind); got != c.want {
			t.Errorf("Bits(%v) = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestSpecUnknownIDReturnsZero(t *testing.T) {
	r := Default()
	if got := r.Spec(int(specCount)+1, nil); got != 0 {
		t.Fatalf("Spec(unknown) = %d, want 0", got)
	}
}

func TestSpecTruncatesExcessArgs(t *testing.T) {
	r := Default()
	args := make([]int64, SpecsMaxArgs+5)
	if got := r.Spec(int(SpecFusionEnergyCap), args); got != 1_000_000 {
		t.Fatalf("Spec(SpecFusionEnergyCap) = %d, want 1_000_000", got)
	}
}

func TestSolarOutputByClass(t *testing.T) {
	cases := []struct {
		class StarClass
		want  int64
	}{
		{StarDwarf, 4},
		{StarMain, 10},
		{StarGiant, 18},
		{StarSupergiant, 30},
		{starClassCount, 0},
	}
	for _, c := range cases {
		if got := SolarOutput(c.class); got != c.want {
			t.Errorf("SolarOutput(%v) = %d, want %d", c.class, got, c.want)
		}
	}
}

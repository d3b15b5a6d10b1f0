// Package config holds the frozen, startup-built configuration tables
// spec.md §6 describes: the item registration table, star classes and
// their solar output, and the specs function table. All of it is built
// once by Default (or a caller-supplied variant) and never mutated
// afterward — "Global mutable state: avoid ... built once at startup
// into an immutable registry passed by handle" (spec.md §9).
//
// Grounded on original_source/src/game/items.h (item registration table:
// kind -> {name, atom, init-fn, lab-bits, lab-work}) and
// original_source/src/game/specs.h (specs_max_args, spec ids).
package config

import "github.com/legionsim/core/internal/idcode"

// Item kind partition (spec.md §3 "Item kind"): contiguous ranges fixed
// at compile time so a kind's range membership can be tested with a
// single comparison.
const (
	KindNil idcode.ItemKind = iota

	// Natural elements, harvested by extract/condenser from a star.
	KindElemA
	KindElemB
	KindElemC
	KindElemD

	// Synthesised elements, produced by assembly/printer tapes.
	KindAlloyA
	KindAlloyB

	// Logistics: nomads, lane cargo bookkeeping.
	KindNomad

	// Active kinds: one per machine family in pkg/machines.
	KindExtract
	KindPrinter
	KindAssembly
	KindCondenser
	KindCollider
	KindBurner
	KindFusion
	KindLab
	KindBrain
	KindTransmit
	KindReceive
	KindPort
	KindPacker
	KindProber
	KindScanner

	// Passive components: storage, frames, rods.
	KindStorage
	KindRod

	// System pseudo-items.
	KindEnergy
	KindData
	KindUser
	KindDummy

	kindCount
)

// ItemDef is one row of the item registration table (spec.md §6
// "Configuration").
type ItemDef struct {
	Name    string
	Atom    int64
	LabBits int // unlockable bits gating this item's recipes; 0 = no lab gate
	LabWork int // ticks a lab spends per bit
}

// StarClass buckets a star descriptor's solar yield (spec.md §4.11 "sum
// solar output = f(star-class, local solar count)").
type StarClass uint8

const (
	StarDwarf StarClass = iota
	StarMain
	StarGiant
	StarSupergiant

	starClassCount
)

// solarOutputPerUnit is the per-unit energy a single solar collector yields at
// each star class, frozen configuration (original_source's im_solar
// table, folded into one constant array here since the distilled spec
// exposes no per-star override).
var solarOutputPerUnit = [starClassCount]int64{
	StarDwarf:      4,
	StarMain:       10,
	StarGiant:      18,
	StarSupergiant: 30,
}

// SpecID identifies one entry in the specs function table (spec.md §6
// "specs (scalar or computed by functions over up to specs_max_args)").
type SpecID int

const (
	SpecFusionEnergyCap SpecID = iota
	SpecFusionEnergyOutput
	SpecPortLoadTicks
	SpecPortLaunchSpeed
	SpecNomadLaunchSpeed
	SpecTransmitSpeed

	specCount
)

// SpecsMaxArgs bounds the argument count any SpecFn accepts (original
// source's specs_max_args).
const SpecsMaxArgs = 4

// SpecFn computes a spec value, optionally taking up to SpecsMaxArgs
// scalar arguments. Most specs ignore args and return a constant.
type SpecFn func(args []int64) int64

func constSpec(v int64) SpecFn { return func([]int64) int64 { return v } }

// Registry is the immutable frozen-configuration bundle built once at
// startup (spec.md §9 "built once at startup into an immutable
// registry passed by handle").
type Registry struct {
	items [kindCount]ItemDef
	specs [specCount]SpecFn
}

// Default builds the standard configuration table. Callers needing a
// scenario-specific table (tests, tools) can construct a Registry by
// hand and override individual slots before use.
func Default() *Registry {
	r := &Registry{}

	r.items[KindElemA] = ItemDef{Name: "elem_a", Atom: 1}
	r.items[KindElemB] = ItemDef{Name: "elem_b", Atom: 2}
	r.items[KindElemC] = ItemDef{Name: "elem_c", Atom: 3}
	r.items[KindElemD] = ItemDef{Name: "elem_d", Atom: 4}
	r.items[KindAlloyA] = ItemDef{Name: "alloy_a", Atom: 5, LabBits: 4, LabWork: 100}
	r.items[KindAlloyB] = ItemDef{Name: "alloy_b", Atom: 6, LabBits: 6, LabWork: 150}
	r.items[KindNomad] = ItemDef{Name: "nomad", Atom: 7}
	r.items[KindExtract] = ItemDef{Name: "extract", Atom: 8}
	r.items[KindPrinter] = ItemDef{Name: "printer", Atom: 9}
	r.items[KindAssembly] = ItemDef{Name: "assembly", Atom: 10}
	r.items[KindCondenser] = ItemDef{Name: "condenser", Atom: 11}
	r.items[KindCollider] = ItemDef{Name: "collider", Atom: 12}
	r.items[KindBurner] = ItemDef{Name: "burner", Atom: 13}
	r.items[KindFusion] = ItemDef{Name: "fusion", Atom: 14}
	r.items[KindLab] = ItemDef{Name: "lab", Atom: 15}
	r.items[KindBrain] = ItemDef{Name: "brain", Atom: 16}
	r.items[KindTransmit] = ItemDef{Name: "transmit", Atom: 17}
	r.items[KindReceive] = ItemDef{Name: "receive", Atom: 18}
	r.items[KindPort] = ItemDef{Name: "port", Atom: 19}
	r.items[KindPacker] = ItemDef{Name: "packer", Atom: 20}
	r.items[KindProber] = ItemDef{Name: "prober", Atom: 21}
	r.items[KindScanner] = ItemDef{Name: "scanner", Atom: 22}
	r.items[KindStorage] = ItemDef{Name: "storage", Atom: 23}
	r.items[KindRod] = ItemDef{Name: "rod", Atom: 24}
	r.items[KindEnergy] = ItemDef{Name: "energy", Atom: 25}
	r.items[KindData] = ItemDef{Name: "data", Atom: 26}
	r.items[KindUser] = ItemDef{Name: "user", Atom: 27}
	r.items[KindDummy] = ItemDef{Name: "dummy", Atom: 28}

	r.specs[SpecFusionEnergyCap] = constSpec(1_000_000)
	r.specs[SpecFusionEnergyOutput] = constSpec(5_000)
	r.specs[SpecPortLoadTicks] = constSpec(20)
	r.specs[SpecPortLaunchSpeed] = constSpec(100)
	r.specs[SpecNomadLaunchSpeed] = constSpec(100)
	r.specs[SpecTransmitSpeed] = constSpec(100)

	return r
}

// Item returns the registration row for kind.
func (r *Registry) Item(kind idcode.ItemKind) ItemDef {
	if int(kind) >= len(r.items) {
		return ItemDef{}
	}
	return r.items[kind]
}

// Bits returns kind's unlockable tech-bit count, satisfying
// pkg/machines.TechView without pkg/machines needing to import config.
func (r *Registry) Bits(kind idcode.ItemKind) int {
	return r.Item(kind).LabBits
}

// Spec evaluates specID with args, per spec.md §9 simctx.Context.Specs.
// Unknown spec ids return 0.
func (r *Registry) Spec(specID int, args []int64) int64 {
	if specID < 0 || specID >= int(specCount) || r.specs[specID] == nil {
		return 0
	}
	if len(args) > SpecsMaxArgs {
		args = args[:SpecsMaxArgs]
	}
	return r.specs[specID](args)
}

// SolarOutput returns the per-collector-unit energy a star of class
// yields this tick (spec.md §4.11 step 4).
func SolarOutput(class StarClass) int64 {
	if int(class) >= len(solarOutputPerUnit) {
		return 0
	}
	return solarOutputPerUnit[class]
}

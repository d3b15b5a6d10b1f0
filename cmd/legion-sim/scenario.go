package main

// scenario.go builds the small demonstration system legion-sim runs on
// every start (a -load snapshot is restored on top of it): a handful of
// stars wired with extract,
// printer, lab and brain machines. The game content tables themselves
// (full item/recipe/star-name catalogs) are frozen configuration
// supplied externally at startup (spec.md §1 Non-goals); this is just
// enough wiring for the CLI to drive a real tick loop end to end.

import (
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/internal/tape"
	"github.com/legionsim/core/pkg/config"
	"github.com/legionsim/core/pkg/machines"
	"github.com/legionsim/core/pkg/world"
)

const demoOwner uint32 = 1

// buildDemoWorld wires a two-star system: one holding an extractor and
// a printer (with the elem_a and alloy_a tapes registered), one holding
// a lab. The machines start with no tape or item selected. Both chunks
// register a port arena, but no port entity and no lane packet is
// created.
func buildDemoWorld(specs *config.Registry, w *world.World) {
	tapes := tape.NewRegistry([]*tape.Tape{
		{
			Output: config.KindAlloyA,
			Host:   config.KindPrinter,
			Steps: []tape.Step{
				{Kind: tape.StepInput, Item: config.KindElemA},
				{Kind: tape.StepWork},
				{Kind: tape.StepOutput, Item: config.KindAlloyA},
			},
			EnergyPerTick: 1,
		},
		{
			Output: config.KindElemA,
			Host:   config.KindExtract,
			Steps: []tape.Step{
				{Kind: tape.StepWork},
				{Kind: tape.StepOutput, Item: config.KindElemA},
			},
			EnergyPerTick: 1,
		},
	})

	home := idcode.MakeCoord(0, 0)
	lab := idcode.MakeCoord(1, 0)

	w.AddStar(home, world.StarDescriptor{
		Class:      config.StarMain,
		SolarUnits: 4,
		Abundance:  map[idcode.ItemKind]int64{config.KindElemA: 1_000_000},
	})
	w.AddStar(lab, world.StarDescriptor{
		Class:      config.StarDwarf,
		SolarUnits: 2,
		Abundance:  map[idcode.ItemKind]int64{},
	})

	homeChunk := w.AddChunk(home, 0x686f6d65, demoOwner, 10_000, 8)
	homeChunk.Register(machines.NewExtractArena(config.KindExtract, tapes))
	homeChunk.Register(machines.NewPrinterArena(config.KindPrinter, tapes))
	homeChunk.Register(machines.NewPortArena(config.KindPort, 5, 5))
	homeChunk.Register(machines.NewBrainArena(config.KindBrain, w.Mods(), 64))

	labChunk := w.AddChunk(lab, 0x6c616220, demoOwner, 5_000, 4)
	labChunk.Register(machines.NewLabArena(config.KindLab, specs, 100))
	labChunk.Register(machines.NewPortArena(config.KindPort, 5, 5))

	homeChunk.CreateFrom(config.KindExtract, nil)
	homeChunk.CreateFrom(config.KindPrinter, nil)
	labChunk.CreateFrom(config.KindLab, nil)
}

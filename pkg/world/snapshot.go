package world

// snapshot.go bridges World's internal maps to pkg/persist's wire
// format (spec.md §6 "Save format"). Kept in this package, rather than
// exposing every internal map through getters, since only World knows
// how to reassemble stars/tech/lanes into live state on restore.

import (
	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/config"
	"github.com/legionsim/core/pkg/lanes"
	"github.com/legionsim/core/pkg/persist"
)

// Snapshot captures every piece of world state persist.Encode needs
// (seed, tick, star descriptors, tech bitmaps, in-flight lane packets).
// Call before Stop; chunk-local active-item state is out of scope (see
// pkg/persist/snapshot.go's doc comment).
func (w *World) Snapshot() persist.Snapshot {
	s := persist.Snapshot{
		Seed: w.seed,
		Tick: w.tick,
	}

	for coord, d := range w.stars {
		s.Stars = append(s.Stars, persist.StarRecord{
			Coord:      coord,
			Class:      uint8(d.Class),
			SolarUnits: d.SolarUnits,
			Abundance:  d.Abundance,
		})
	}

	for owner, bits := range w.tech {
		s.Tech = append(s.Tech, persist.TechRecord{Owner: owner, Bits: bits})
	}

	s.Lanes = w.lanesTbl.All()
	return s
}

// Restore replaces World's seed, tick, stars, tech and in-flight lanes
// with a previously captured Snapshot. Must be called before Start, and
// before any AddChunk that depends on the restored star table.
func (w *World) Restore(s persist.Snapshot) {
	w.seed = s.Seed
	w.tick = s.Tick

	w.stars = make(map[idcode.Coord]StarDescriptor, len(s.Stars))
	for _, st := range s.Stars {
		w.stars[st.Coord] = StarDescriptor{
			Class:      config.StarClass(st.Class),
			SolarUnits: st.SolarUnits,
			Abundance:  st.Abundance,
		}
	}

	w.tech = make(map[uint32]map[idcode.ItemKind]uint64, len(s.Tech))
	for _, t := range s.Tech {
		w.tech[t.Owner] = t.Bits
	}

	w.lanesTbl = lanes.New()
	for _, p := range s.Lanes {
		w.lanesTbl.Launch(p, w.tick)
	}
}

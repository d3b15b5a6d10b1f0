// Package world implements the global read-model and the main tick
// loop: the coord→chunk map, the mods registry, tech-per-user bitmaps,
// the lanes schedule, and the shards pool that steps every chunk in
// parallel behind the epoch barrier (spec.md §4.12, §5).
//
// Grounded on original_source/src/game/world.h/.c (world owns chunks,
// lanes, mods, tech, log; mutated only by the main thread) and
// Voskan/arena-cache's top-level pkg/cache.go for the functional-option
// constructor shape.
package world

import (
	"go.uber.org/zap"

	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/chunk"
	"github.com/legionsim/core/pkg/config"
	"github.com/legionsim/core/pkg/lanes"
	"github.com/legionsim/core/pkg/modreg"
	"github.com/legionsim/core/pkg/shard"
	"github.com/legionsim/core/pkg/shards"
	"github.com/legionsim/core/pkg/simctx"
)

// StarDescriptor is the frozen-at-creation physical state of one star:
// its class (solar yield) and elemental abundances (spec.md §3 "Chunk
// ... star descriptor (coord + elemental abundances)").
type StarDescriptor struct {
	Class      config.StarClass
	Abundance  map[idcode.ItemKind]int64
	SolarUnits int64 // local solar-collector count feeding SolarOutput
}

// World owns every chunk, the lane schedule, the mod registry and the
// per-user tech bitmaps. World state is mutated only by the goroutine
// that calls Step (spec.md §9 "World ... mutated only by the main
// thread"); chunks read it during exec through the chunk.WorldView
// methods below, which is safe without locking because Step never
// mutates world state concurrently with a running epoch — see
// pkg/shards' barrier and spec.md §5's happens-before argument.
type World struct {
	chunks map[idcode.Coord]*chunk.Chunk
	stars  map[idcode.Coord]StarDescriptor
	tech   map[uint32]map[idcode.ItemKind]uint64

	lanesTbl *lanes.Lanes
	mods     *modreg.Registry
	specs    *config.Registry
	pool     *shards.Pool

	tick int64
	seed uint64

	log     *zap.Logger
	metrics metricsSink
}

// New constructs an empty World with n shard worker goroutines not yet
// started; call Start to launch them.
func New(source modreg.Source, opts ...Option) (*World, error) {
	c := defaultConfig()
	if err := applyOptions(c, opts); err != nil {
		return nil, err
	}

	return &World{
		chunks:   make(map[idcode.Coord]*chunk.Chunk),
		stars:    make(map[idcode.Coord]StarDescriptor),
		tech:     make(map[uint32]map[idcode.ItemKind]uint64),
		lanesTbl: lanes.New(),
		mods:     modreg.New(source),
		specs:    c.specs,
		pool:     shards.New(c.shards),
		seed:     c.seed,
		log:      c.logger,
		metrics:  newMetricsSink(c.registry),
	}, nil
}

// AddStar registers a star's physical descriptor. Must be called before
// AddChunk claims that coordinate.
func (w *World) AddStar(coord idcode.Coord, desc StarDescriptor) {
	w.stars[coord] = desc
}

// AddChunk creates a chunk at coord, owned by owner, and assigns it to
// its shard via consistent hashing (spec.md §4.12). The caller is
// responsible for registering the chunk's item arenas (pkg/machines
// constructors) before the first Tick.
func (w *World) AddChunk(coord idcode.Coord, name int64, owner uint32, energyCap int64, workers uint8) *chunk.Chunk {
	c := chunk.New(coord, name, owner, energyCap, workers, w)
	c.SetSeed(w.seed ^ uint64(coord))
	w.chunks[coord] = c

	idx := w.pool.ShardFor(coord)
	w.pool.Shards()[idx].Register(c)
	return c
}

// Chunk returns the chunk at coord, or nil if unclaimed.
func (w *World) Chunk(coord idcode.Coord) *chunk.Chunk { return w.chunks[coord] }

// Mods exposes the world's mod registry, for cmd wiring brain machines.
func (w *World) Mods() *modreg.Registry { return w.mods }

// Tick returns the current world tick count.
func (w *World) Tick() int64 { return w.tick }

// Start launches the shard worker pool. Must be called once, after
// every chunk has been added and its arenas registered.
func (w *World) Start() {
	w.pool.Start(func(s *shard.Shard) { s.Exec() })
}

// Stop signals every shard worker to exit and waits for them to join
// (spec.md §4.12 "Cancellation").
func (w *World) Stop() {
	w.pool.Quit()
}

// Step advances the world by exactly one tick: begin (install this
// tick's sink on every chunk), exec (parallel, behind the barrier), end
// (drain each shard's effects in fixed shard-index order and apply them
// to world state, then schedule lane arrivals for the next tick).
func (w *World) Step() {
	shardList := w.pool.Shards()

	for _, s := range shardList {
		s.Begin(w.tick)
	}

	w.pool.StartTick()
	w.pool.WaitTick(len(shardList))

	chunksStepped := 0
	for _, s := range shardList {
		chunksStepped += s.Len()
		for _, e := range s.Drain() {
			w.applyEffect(e)
		}
	}

	for coord, c := range w.chunks {
		for _, p := range w.lanesTbl.Step(coord, w.tick) {
			c.Arrive(p)
		}
	}

	w.tick++
	w.metrics.incTick()
	w.metrics.setChunksStepped(chunksStepped)
	w.metrics.setLanePackets(w.lanesTbl.Len())
}

func (w *World) applyEffect(e shard.Effect) {
	switch e.Kind {
	case shard.EffectLog:
		w.log.Debug("chunk log", zap.Uint64("coord", uint64(e.Coord)), zap.Uint16("id", uint16(e.ID)), zap.Int64("key", e.Key), zap.Int64("value", e.Value))
	case shard.EffectTechLearn:
		w.learnTechBit(e.Owner, e.Item, e.Bit)
	case shard.EffectLane:
		w.lanesTbl.Launch(e.Packet, w.tick)
	}
}

func (w *World) learnTechBit(owner uint32, item idcode.ItemKind, bit uint8) {
	m := w.tech[owner]
	if m == nil {
		m = make(map[idcode.ItemKind]uint64)
		w.tech[owner] = m
	}
	m[item] |= 1 << uint(bit)
}

// --- chunk.WorldView -----------------------------------------------------

// StarAbundance reports coord's remaining yield of item, as of this
// tick's start.
func (w *World) StarAbundance(coord idcode.Coord, item idcode.ItemKind) (int64, bool) {
	d, ok := w.stars[coord]
	if !ok {
		return 0, false
	}
	qty, ok := d.Abundance[item]
	return qty, ok
}

// ScanSector resolves a prober/scanner query against the star
// descriptor table: Target checks one coordinate's habitation, Wide
// sweeps every star within Sector of Origin for the first inhabited one
// (spec.md §4.10 "Scanner ... 'wide' ... or 'target'").
func (w *World) ScanSector(it simctx.ScanIt) (idcode.Coord, bool) {
	if !it.Wide {
		if _, ok := w.chunks[it.Target]; ok {
			return it.Target, true
		}
		return idcode.CoordNil, false
	}
	var best idcode.Coord
	found := false
	for coord := range w.chunks {
		if idcode.SectorDist(it.Origin, coord) > int64(it.Sector) {
			continue
		}
		if !found || coord < best {
			best, found = coord, true
		}
	}
	return best, found
}

// TechKnown reports whether owner has learned bit of item.
func (w *World) TechKnown(owner uint32, item idcode.ItemKind, bit uint8) bool {
	m := w.tech[owner]
	if m == nil {
		return false
	}
	return m[item]&(1<<uint(bit)) != 0
}

// Specs evaluates a frozen spec function (spec.md §9 simctx.Context.Specs).
func (w *World) Specs(specID int, args []int64) int64 {
	return w.specs.Spec(specID, args)
}

// SolarOutput returns coord's total solar energy yield for the current
// tick: per-unit output for the star's class times its local solar
// collector count (spec.md §4.11 step 4).
func (w *World) SolarOutput(coord idcode.Coord) int64 {
	d, ok := w.stars[coord]
	if !ok {
		return 0
	}
	return config.SolarOutput(d.Class) * d.SolarUnits
}

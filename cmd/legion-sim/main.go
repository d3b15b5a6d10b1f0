// Command legion-sim runs the tick loop standalone: build (or load) a
// world, start its shard workers, and step it at a chosen pace until
// asked to stop, optionally saving a snapshot on exit.
//
// Grounded on ehrlich-b-go-ublk's cmd/ublk-mem/main.go for the flag
// layout, signal handling and shutdown-timeout shape; the metrics HTTP
// endpoint follows Voskan-arena-cache's own promhttp wiring
// (pkg/metrics.go's Collector is exported the same way).
package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/legionsim/core/internal/vm"
	"github.com/legionsim/core/pkg/config"
	"github.com/legionsim/core/pkg/persist"
	"github.com/legionsim/core/pkg/world"
)

// speed names the pacing presets spec.md's CLI surface exposes; each
// maps to a fixed inter-tick delay rather than a target tick rate, same
// as the original's im_dbg_speed setting.
var speedDelay = map[string]time.Duration{
	"pause":   0, // handled separately: steps nothing
	"slow":    200 * time.Millisecond,
	"fast":    50 * time.Millisecond,
	"faster":  10 * time.Millisecond,
	"fastest": 0,
}

func main() {
	var (
		seed       = flag.Uint64("seed", 1, "deterministic world RNG seed")
		shards     = flag.Int("shards", 4, "shard worker goroutine count")
		ticks      = flag.Int64("ticks", 0, "stop after this many ticks (0 = run until signalled)")
		speedFlag  = flag.String("speed", "fast", "pace preset: pause, slow, fast, faster, fastest")
		savePath   = flag.String("save", "", "badger directory to save a snapshot into on exit")
		loadPath   = flag.String("load", "", "badger directory to resume the latest snapshot from")
		metricsBnd = flag.String("metrics", "", "address to serve /metrics on (empty disables it)")
		verbose    = flag.Bool("v", false, "verbose (debug-level) logging")
	)
	flag.Parse()

	delay, ok := speedDelay[*speedFlag]
	if !ok {
		fmt.Fprintf(os.Stderr, "legion-sim: unknown -speed %q\n", *speedFlag)
		os.Exit(2)
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "legion-sim: logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	if *metricsBnd != "" {
		serveMetrics(*metricsBnd, registry, logger)
	}

	specs := config.Default()
	opts := []world.Option{
		world.WithShards(*shards),
		world.WithSeed(*seed),
		world.WithMetrics(registry),
		world.WithLogger(logger),
		world.WithSpecs(specs),
	}

	// No assembler ships with this binary (spec.md §1 Non-goals); brains
	// created at runtime via io_mod simply fail to load until a host
	// wires a real Source in.
	noMods := func(major, version uint32) (*vm.Program, error) {
		return nil, fmt.Errorf("legion-sim: no mod source configured for %d.%d", major, version)
	}

	w, err := world.New(noMods, opts...)
	if err != nil {
		logger.Fatal("world.New", zap.Error(err))
	}

	var store *persist.Store
	if *savePath != "" || *loadPath != "" {
		dir := *savePath
		if dir == "" {
			dir = *loadPath
		}
		store, err = persist.Open(dir)
		if err != nil {
			logger.Fatal("persist.Open", zap.Error(err))
		}
		defer store.Close()
	}

	// The demo topology (stars, chunks, arenas) is frozen scenario
	// wiring, not persisted state (pkg/persist's scope is world-level
	// bookkeeping, not per-kind item POD — see pkg/persist/snapshot.go).
	// Build it first, then let a loaded snapshot overwrite the
	// world-level state (seed, tick, star descriptors, tech, in-flight
	// lanes) on top of it.
	buildDemoWorld(specs, w)

	if *loadPath != "" {
		src := store
		if *savePath != "" && *loadPath != *savePath {
			src, err = persist.Open(*loadPath)
			if err != nil {
				logger.Fatal("persist.Open", zap.Error(err))
			}
			defer src.Close()
		}
		if err := loadSnapshot(src, w); err != nil {
			logger.Fatal("load snapshot", zap.Error(err))
		}
		logger.Info("resumed from snapshot", zap.Int64("tick", w.Tick()))
	} else {
		logger.Info("built demo world")
	}

	w.Start()
	defer w.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("running", zap.String("speed", *speedFlag), zap.Int64("ticks", *ticks))

	var ticker *time.Ticker
	if delay > 0 {
		ticker = time.NewTicker(delay)
		defer ticker.Stop()
	}

runLoop:
	for *ticks == 0 || w.Tick() < *ticks {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			break runLoop
		default:
		}

		if *speedFlag == "pause" {
			<-sigCh
			logger.Info("received shutdown signal")
			break runLoop
		}

		w.Step()

		if ticker != nil {
			<-ticker.C
		}
	}

	logger.Info("stopped", zap.Int64("final_tick", w.Tick()))

	if *savePath != "" {
		if err := saveSnapshot(store, w); err != nil {
			logger.Error("save snapshot", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("saved snapshot", zap.Int64("tick", w.Tick()))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
}

func saveSnapshot(store *persist.Store, w *world.World) error {
	body, err := persist.Encode(w.Snapshot())
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	_, err = store.Save(body)
	return err
}

func loadSnapshot(store *persist.Store, w *world.World) error {
	_, body, err := store.Head()
	if err != nil {
		return fmt.Errorf("head: %w", err)
	}
	snap, err := persist.Decode(body)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	w.Restore(snap)
	return nil
}

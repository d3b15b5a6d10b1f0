package world

// config.go defines World's internal configuration object and its
// functional options, mirroring arena-cache's pkg/config.go exactly:
// fields default in defaultConfig, options only ever capture external
// handles (registry, logger, seed), and applyOptions validates
// invariants before New returns.
//
// Grounded on Voskan/arena-cache's pkg/config.go.

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/legionsim/core/pkg/config"
)

// Option configures a World at construction time.
type Option func(*cfg)

type cfg struct {
	shards int
	seed   uint64

	registry *prometheus.Registry
	logger   *zap.Logger
	specs    *config.Registry
}

func defaultConfig() *cfg {
	return &cfg{
		shards: 1,
		logger: zap.NewNop(),
		specs:  config.Default(),
	}
}

// WithShards sets the shard thread pool size. Must be a positive power
// of two is NOT required here (unlike the teacher's cache, shard count
// here is a scheduling parameter, not a hash-mask divisor — pkg/shards
// uses a modulo, not a mask).
func WithShards(n int) Option {
	return func(c *cfg) { c.shards = n }
}

// WithSeed fixes the world's deterministic RNG seed (spec.md §5).
func WithSeed(seed uint64) Option {
	return func(c *cfg) { c.seed = seed }
}

// WithMetrics enables Prometheus metrics collection for the world.
// Passing nil disables metrics (default).
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *cfg) { c.registry = reg }
}

// WithLogger plugs an external zap.Logger. The world never logs on the
// per-tick hot path; only rotation/fault/rare events do.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSpecs overrides the frozen configuration registry (items, specs).
// Intended for tests and tools that need a scenario-specific table.
func WithSpecs(r *config.Registry) Option {
	return func(c *cfg) {
		if r != nil {
			c.specs = r
		}
	}
}

func applyOptions(c *cfg, opts []Option) error {
	for _, opt := range opts {
		opt(c)
	}
	if c.shards <= 0 {
		return errInvalidShards
	}
	return nil
}

var errInvalidShards = errors.New("world: shards must be > 0")

// Package shards implements the shard thread pool: consistent hashing
// of chunks to shards, and the atomic epoch-barrier that synchronises N
// worker goroutines with the one main goroutine that owns the world
// (spec.md §4.12, §5).
//
// Grounded on original_source/src/game/shards.c (shard_sync word,
// shard_sync_start/wait_end on the main thread, shard_sync_wait_start/end
// on workers, hash_u64(coord) % shards->len for chunk placement).
package shards

import (
	"sync/atomic"
	"time"

	"github.com/legionsim/core/internal/idcode"
	"github.com/legionsim/core/pkg/shard"
)

// sync word layout, ported from shard_sync: quit-bit at the MSB, epoch
// in the upper 56 bits, finished-count in the low byte.
const (
	quitMask     uint64 = 1 << 63
	epochBit     uint64 = 1 << 8
	finishedMask uint64 = 0xFF
)

// Pool is the fixed-size shard thread pool. One goroutine per shard;
// the caller's goroutine (typically the world's run loop) is the "main
// thread" that owns world state and calls StartTick/WaitTick.
type Pool struct {
	shards []*shard.Shard

	sync atomic.Uint64
}

// New builds a pool of n shards. It starts no goroutines; Start
// launches one worker per shard.
func New(n int) *Pool {
	p := &Pool{
		shards: make([]*shard.Shard, n),
	}
	for i := range p.shards {
		p.shards[i] = shard.New(i)
	}
	return p
}

// Shards returns the pool's shards in fixed index order.
func (p *Pool) Shards() []*shard.Shard { return p.shards }

// hashCoord64 is a fixed (unseeded) integer mix of coord, splitmix64's
// finalizer — the same bit-identical result every run, every process,
// matching hash_u64 in original_source/src/game/shards.c. A seeded
// hash/maphash would place chunks on different shards across runs,
// changing the fixed shard-index effect-apply order spec.md §4.12/§8
// require to be deterministic.
func hashCoord64(v uint64) uint64 {
	v ^= v >> 30
	v *= 0xbf58476d1ce4e5b9
	v ^= v >> 27
	v *= 0x94d049bb133111eb
	v ^= v >> 31
	return v
}

// ShardFor returns the shard index owning coord: hash(coord) mod
// shard_count, stable across runs (spec.md §4.12).
func (p *Pool) ShardFor(coord idcode.Coord) int {
	return int(hashCoord64(uint64(coord)) % uint64(len(p.shards)))
}

// Start launches one worker goroutine per shard. Each worker loops:
// wait_start, run exec via runFn, fetch_add(1) to signal finished.
func (p *Pool) Start(runFn func(s *shard.Shard)) {
	for _, s := range p.shards {
		go p.worker(s, runFn)
	}
}

func (p *Pool) worker(s *shard.Shard, runFn func(s *shard.Shard)) {
	var lastEpoch uint64
	for {
		word := p.waitStart(lastEpoch)
		if word&quitMask != 0 {
			p.sync.Add(1)
			return
		}
		lastEpoch = word &^ finishedMask &^ quitMask
		runFn(s)
		p.sync.Add(1)
	}
}

func (p *Pool) waitStart(prevEpoch uint64) uint64 {
	for {
		word := p.sync.Load()
		if word&quitMask != 0 {
			return word
		}
		epoch := word &^ finishedMask &^ quitMask
		if epoch > prevEpoch {
			return word
		}
		time.Sleep(time.Millisecond)
	}
}

// StartTick begins a new epoch: every worker's wait_start unblocks and
// runs exactly once.
func (p *Pool) StartTick() {
	for {
		old := p.sync.Load()
		epoch := old &^ finishedMask &^ quitMask
		next := (epoch + epochBit) &^ finishedMask
		if p.sync.CompareAndSwap(old, next) {
			return
		}
	}
}

// WaitTick spins until n workers (every shard) have finished the
// current epoch.
func (p *Pool) WaitTick(n int) {
	for {
		word := p.sync.Load()
		if int(word&finishedMask) >= n {
			return
		}
	}
}

// Quit flips the quit-bit and waits one more epoch so every worker can
// observe it and exit cleanly before the caller returns (spec.md §4.12
// "Cancellation").
func (p *Pool) Quit() {
	for {
		old := p.sync.Load()
		next := (old | quitMask) &^ finishedMask
		if p.sync.CompareAndSwap(old, next) {
			break
		}
	}
	p.WaitTick(len(p.shards))
}

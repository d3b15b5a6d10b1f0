// Package modreg is the registry of compiled brain modules: a
// content-addressed store keyed by (major, version) plus a
// singleflight-guarded compile cache, mirroring the teacher's
// pkg/loader.go thundering-herd dedup for cache misses.
//
// Grounded on original_source/src/game/mod.h (mod_major/mod_version,
// mod_find) and spec.md §4.7 "Mod".
package modreg

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/legionsim/core/internal/vm"
)

// Mod is one compiled, immutable brain module: bytecode plus its symbol
// index, addressed by a (major, version) pair the way spec.md §6's
// io_mod expects a host to resolve "mod major.version".
type Mod struct {
	Major   uint32
	Version uint32
	Prog    *vm.Program
}

func key(major, version uint32) string {
	return fmt.Sprintf("%d.%d", major, version)
}

// Source compiles a (major, version) pair into a *Mod. Registries never
// compile bytecode themselves (the assembler is out of scope, spec.md
// §1); Source is supplied by whatever loads frozen mod blobs at startup
// or from a save file.
type Source func(major, version uint32) (*vm.Program, error)

// Registry is the in-memory table of compiled mods, populated lazily
// from a Source and deduplicated across concurrent shard-worker
// goroutines requesting the same mod for the first time.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[string]*Mod
	source Source
	group  singleflight.Group
}

// New constructs an empty registry backed by source.
func New(source Source) *Registry {
	return &Registry{
		byKey:  make(map[string]*Mod),
		source: source,
	}
}

// Get returns the compiled mod for (major, version), compiling it via
// Source on first use. Concurrent callers racing on the same key share a
// single compile (golang.org/x/sync/singleflight), the same pattern the
// teacher's loaderGroup uses to collapse cache-miss storms.
func (r *Registry) Get(major, version uint32) (*Mod, error) {
	k := key(major, version)

	r.mu.RLock()
	if m, ok := r.byKey[k]; ok {
		r.mu.RUnlock()
		return m, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.group.Do(k, func() (any, error) {
		r.mu.RLock()
		if m, ok := r.byKey[k]; ok {
			r.mu.RUnlock()
			return m, nil
		}
		r.mu.RUnlock()

		prog, err := r.source(major, version)
		if err != nil {
			return nil, err
		}
		m := &Mod{Major: major, Version: version, Prog: prog}

		r.mu.Lock()
		r.byKey[k] = m
		r.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Mod), nil
}

// Put installs a pre-built mod directly, bypassing Source. Saves written
// by pkg/persist carry no mods, so nothing in this repository calls it
// on load.
func (r *Registry) Put(m *Mod) {
	r.mu.Lock()
	r.byKey[key(m.Major, m.Version)] = m
	r.mu.Unlock()
}

// Len reports how many distinct mods have been compiled or installed.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}

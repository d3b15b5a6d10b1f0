// Package tape implements the immutable recipe type and its packed
// runtime cursor (spec.md §3 "Tape", "Tape cursor").
//
// Grounded on original_source/src/items/extract, printer, assembly,
// collider (the four *_im.c tape-driven machines) and spec.md §4.3.
package tape

import "github.com/legionsim/core/internal/idcode"

// StepKind is one instruction in a tape.
type StepKind uint8

const (
	StepInput StepKind = iota
	StepWork
	StepOutput
)

// Step is one entry in a tape's ordered instruction sequence.
type Step struct {
	Kind StepKind
	Item idcode.ItemKind // meaningful for StepInput/StepOutput
}

// Tape is a read-only recipe: an ordered sequence of input/work/output
// steps, loaded once at startup from frozen configuration and never
// mutated afterward.
type Tape struct {
	Output    idcode.ItemKind // the item this tape produces
	Host      idcode.ItemKind // the machine kind that may run this tape
	Steps     []Step
	TechBits  int      // number of lab-unlockable bits gating this recipe
	TechGate  []uint8  // bit indices that must all be known to run
	EnergyPerTick int64
}

// Registry is the frozen, immutable-after-Build table of tapes, keyed by
// the item they produce.
type Registry struct {
	byOutput map[idcode.ItemKind]*Tape
}

// NewRegistry builds a Registry from a fixed list of tapes. Called once at
// startup with frozen configuration (spec.md §1 Out of scope: "the
// human-readable game content tables ... supplied as frozen configuration
// at startup").
func NewRegistry(tapes []*Tape) *Registry {
	r := &Registry{byOutput: make(map[idcode.ItemKind]*Tape, len(tapes))}
	for _, t := range tapes {
		r.byOutput[t.Output] = t
	}
	return r
}

// Lookup returns the tape that produces item, or nil if none exists.
func (r *Registry) Lookup(item idcode.ItemKind) *Tape {
	if r == nil {
		return nil
	}
	return r.byOutput[item]
}

// InfLoops marks a cursor as looping forever (spec.md §3 "loop counter
// (inf ≡ max)").
const InfLoops uint16 = 0xFFFF

// Cursor is the packed tape-runner state: {tape kind, position, pointer
// cache}. The cached *Tape pointer is a host-memory convenience and must
// never be persisted — only (Kind, Pos) is canonical (spec.md §3, §9
// "Tape packed pointer").
type Cursor struct {
	Kind    idcode.ItemKind
	Pos     uint16
	Loops   uint16
	Waiting bool

	cache *Tape
}

// NewCursor starts a cursor at position 0 for the tape producing item,
// with the given loop count (use InfLoops for "forever").
func NewCursor(item idcode.ItemKind, loops uint16, reg *Registry) Cursor {
	c := Cursor{Kind: item, Loops: loops}
	c.Resolve(reg)
	return c
}

// Resolve re-binds the cached tape pointer from the registry. Must be
// called after Load before any Step/Current call (spec.md §9).
func (c *Cursor) Resolve(reg *Registry) {
	c.cache = reg.Lookup(c.Kind)
}

// Tape returns the resolved tape, or nil if Kind has no registered tape
// (e.g. cursor is nil/unset).
func (c *Cursor) Tape() *Tape { return c.cache }

// Valid reports whether the cursor points at a known item with a
// resolved tape and is within bounds.
func (c *Cursor) Valid() bool {
	return c.cache != nil && int(c.Pos) < len(c.cache.Steps)
}

// Current returns the instruction at the cursor's position.
func (c *Cursor) Current() (Step, bool) {
	if !c.Valid() {
		return Step{}, false
	}
	return c.cache.Steps[c.Pos], true
}

// Advance moves the cursor to the next step, wrapping to 0 and consuming
// one loop when it runs off the end. Returns false once the loop counter
// reaches zero and the cursor has reset to the nil state.
func (c *Cursor) Advance() bool {
	if c.cache == nil {
		return false
	}
	c.Waiting = false
	c.Pos++
	if int(c.Pos) < len(c.cache.Steps) {
		return true
	}
	c.Pos = 0
	if c.Loops == InfLoops {
		return true
	}
	if c.Loops == 0 {
		c.Reset()
		return false
	}
	c.Loops--
	if c.Loops == 0 {
		c.Reset()
		return false
	}
	return true
}

// Reset clears the cursor back to the nil state (spec.md §4.3 "Reset
// semantics").
func (c *Cursor) Reset() {
	*c = Cursor{}
}

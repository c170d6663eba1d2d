package playtest

import (
	"testing"

	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/engine"
	"gridadventure/internal/sim/entity"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/levels"
)

// Harness drives a level through adventure.Step using only exported APIs:
// - Step/Steps issue actions and keep the specialized level
// - Agent/AgentPos/KindsAt/Count inspect the current frame
// - Digest exposes the canonical digest for determinism checks
//
// Every step is also checked for full specialization, so any scenario test
// doubles as a classification check.
type Harness struct {
	T     *testing.T
	Level *grid.Level

	Digests []string
}

func New(t *testing.T, name string) *Harness {
	t.Helper()
	def, ok := levels.Lookup(name)
	if !ok {
		t.Fatalf("unknown level %q", name)
	}
	return NewFromLevel(t, def.Level())
}

func NewFromLevel(t *testing.T, l *grid.Level) *Harness {
	t.Helper()
	h := &Harness{T: t, Level: adventure.Specialize(l)}
	h.Digests = append(h.Digests, h.Digest())
	return h
}

func (h *Harness) Step(a engine.Action) *grid.Level {
	h.T.Helper()
	next, idx := adventure.FromStateIndexed(adventure.StepState(adventure.ToState(h.Level), a))
	if n := idx.Unclassified(); n != 0 {
		h.T.Fatalf("step %v left %d unclassified objects", a, n)
	}
	h.Level = next
	h.Digests = append(h.Digests, h.Digest())
	return next
}

func (h *Harness) Steps(as ...engine.Action) *grid.Level {
	h.T.Helper()
	for _, a := range as {
		h.Step(a)
	}
	return h.Level
}

// StepWhile repeats a while cond holds, failing after limit steps.
func (h *Harness) StepWhile(a engine.Action, limit int, cond func(h *Harness) bool) {
	h.T.Helper()
	for i := 0; cond(h); i++ {
		if i >= limit {
			h.T.Fatalf("StepWhile(%v): still true after %d steps", a, limit)
		}
		h.Step(a)
	}
}

func (h *Harness) Digest() string {
	return adventure.ToState(h.Level).Digest()
}

func (h *Harness) Agent() (*adventure.Agent, grid.Position) {
	h.T.Helper()
	p, o, ok := h.Level.Find(func(o entity.Object) bool { return adventure.KindOf(o) == adventure.KindAgent })
	if !ok {
		h.T.Fatalf("no agent on the level")
	}
	return o.(*adventure.Agent), p
}

func (h *Harness) AgentPos() grid.Position {
	h.T.Helper()
	_, p := h.Agent()
	return p
}

func (h *Harness) Health() int {
	h.T.Helper()
	a, _ := h.Agent()
	if a.Health == nil {
		h.T.Fatalf("agent has no health")
	}
	return a.Health.Current
}

func (h *Harness) KindsAt(p grid.Position) []adventure.Kind {
	var out []adventure.Kind
	for _, o := range h.Level.At(p) {
		out = append(out, adventure.KindOf(o))
	}
	return out
}

func (h *Harness) Has(p grid.Position, k adventure.Kind) bool {
	for _, got := range h.KindsAt(p) {
		if got == k {
			return true
		}
	}
	return false
}

// Count is the number of top-level occupants of kind k.
func (h *Harness) Count(k adventure.Kind) int {
	n := 0
	h.Level.Walk(func(_ grid.Position, c grid.Cell) {
		for _, o := range c {
			if adventure.KindOf(o) == k {
				n++
			}
		}
	})
	return n
}

// Find returns the first position of kind k in row-major order.
func (h *Harness) Find(k adventure.Kind) (grid.Position, adventure.Specialized, bool) {
	p, o, ok := h.Level.Find(func(o entity.Object) bool { return adventure.KindOf(o) == k })
	if !ok {
		return grid.Position{}, nil, false
	}
	return p, o.(adventure.Specialized), true
}

package adventure

import (
	"gridadventure/internal/sim/engine"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/state"
)

// ToState exports l to canonical form. Ids are reassigned densely in
// row-major order and portal pair keys follow the reassignment.
func ToState(l *grid.Level) *state.State {
	return state.FromLevel(l)
}

// FromState imports canonical state and specializes it.
func FromState(s *state.State) *grid.Level {
	return Specialize(state.ToLevel(s))
}

// FromStateIndexed is FromState that also returns the identity index, which
// resolves portal pairs.
func FromStateIndexed(s *state.State) (*grid.Level, *Index) {
	return SpecializeIndexed(state.ToLevel(s))
}

// Step advances l by one action through the canonical engine and returns the
// re-specialized result. l is not modified.
func Step(l *grid.Level, a engine.Action) *grid.Level {
	return FromState(engine.Step(ToState(l), a))
}

// StepState advances canonical state without specializing, for loops that
// only need the final frame.
func StepState(s *state.State, a engine.Action) *state.State {
	return engine.Step(s, a)
}

// RoundTrip is FromState(ToState(l)).
func RoundTrip(l *grid.Level) *grid.Level {
	return FromState(ToState(l))
}

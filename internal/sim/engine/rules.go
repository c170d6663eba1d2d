package engine

import (
	"sort"

	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/state"
)

// MovementRule maps an action to a single-cell offset. ok is false when the
// action does not move the agent.
type MovementRule func(a Action) (dx, dy int, ok bool)

// Objective reports whether the state counts as won.
type Objective func(s *state.State) bool

const (
	MovementCardinal = "cardinal"

	ObjectiveExit              = "exit"
	ObjectiveCollectGemsAndExit = "collect_gems_and_exit"
)

var movements = map[string]MovementRule{
	MovementCardinal: cardinal,
}

var objectives = map[string]Objective{
	ObjectiveExit:               onExit,
	ObjectiveCollectGemsAndExit: collectGemsAndExit,
}

func Movement(name string) (MovementRule, bool) {
	m, ok := movements[name]
	return m, ok
}

func LookupObjective(name string) (Objective, bool) {
	o, ok := objectives[name]
	return o, ok
}

func MovementNames() []string { return sortedKeys(movements) }

func ObjectiveNames() []string { return sortedKeys(objectives) }

func sortedKeys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func cardinal(a Action) (int, int, bool) {
	var d component.Direction
	switch a {
	case ActionUp:
		d = component.DirUp
	case ActionDown:
		d = component.DirDown
	case ActionLeft:
		d = component.DirLeft
	case ActionRight:
		d = component.DirRight
	default:
		return 0, 0, false
	}
	dx, dy := d.Delta()
	return dx, dy, true
}

func onExit(s *state.State) bool {
	agent, ok := s.AgentID()
	if !ok {
		return false
	}
	pos, ok := s.Position[agent]
	if !ok {
		return false
	}
	for _, id := range s.At(pos) {
		if s.Exit.Has(id) {
			return true
		}
	}
	return false
}

// collectGemsAndExit wins once no requirable is left on the grid and the
// agent stands on an exit. Requirables held in an inventory have no position.
func collectGemsAndExit(s *state.State) bool {
	for id := range s.Requirable {
		if s.Position.Has(id) {
			return false
		}
	}
	return onExit(s)
}

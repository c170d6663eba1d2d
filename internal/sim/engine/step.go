package engine

import (
	"sort"

	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/ids"
	"gridadventure/internal/sim/state"
)

// Step advances s by one action and returns the next state. s is not
// modified. A state that is already won or lost is returned as a copy.
//
// Order within a turn: autonomous movers, the agent's action, contact
// damage, status countdown, tile cost, then win/lose evaluation.
func Step(s *state.State, a Action) *state.State {
	n := s.Clone()
	n.Normalize()
	if n.Win || n.Lose {
		return n
	}
	n.Message = ""

	t := &turn{s: n}
	t.moveAutonomous()
	if agent, ok := n.AgentID(); ok && !n.Dead.Has(agent) {
		t.agent = agent
		switch a {
		case ActionPickUp:
			t.pickUp()
		case ActionUseKey:
			t.useKey()
		case ActionWait:
		default:
			if rule, ok := Movement(n.Movement); ok {
				if dx, dy, ok := rule(a); ok {
					t.moveAgent(dx, dy)
				}
			}
		}
		t.contactDamage()
		t.tickStatus()
		t.payCost()
	}
	n.Turn++
	t.evaluate()
	return n
}

type turn struct {
	s     *state.State
	agent ids.ID
}

func (t *turn) inBounds(p grid.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < t.s.Width && p.Y < t.s.Height
}

func (t *turn) blocked(p grid.Position, except ids.ID) bool {
	for _, id := range t.s.At(p) {
		if id != except && t.s.Blocking.Has(id) {
			return true
		}
	}
	return false
}

func (t *turn) pushablesAt(p grid.Position) []ids.ID {
	var out []ids.ID
	for _, id := range t.s.At(p) {
		if t.s.Pushable.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

func sortedIDs[T any](st state.Store[T]) []ids.ID {
	out := make([]ids.ID, 0, len(st))
	for id := range st {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// moveAutonomous advances every positioned entity with a movement
// descriptor. A mover that would leave the grid or enter a blocking,
// pushable or other moving entity's cell stops; with the bounce rule it
// also turns around. Either way it holds its position for the turn.
func (t *turn) moveAutonomous() {
	s := t.s
	for _, id := range sortedIDs(s.Moving) {
		pos, ok := s.Position[id]
		if !ok {
			continue
		}
		mv := s.Moving[id]
		steps := mv.Speed
		if steps < 1 {
			steps = 1
		}
		for i := 0; i < steps; i++ {
			dx, dy := mv.Direction.Delta()
			next := pos.Add(dx, dy)
			if !t.inBounds(next) || t.obstructsMover(next, id) {
				if mv.OnCollision == component.CollisionBounce {
					mv.Direction = mv.Direction.Reverse()
					s.Moving[id] = mv
				}
				break
			}
			pos = next
		}
		s.Position[id] = pos
	}
}

func (t *turn) obstructsMover(p grid.Position, self ids.ID) bool {
	for _, id := range t.s.At(p) {
		if id == self {
			continue
		}
		if t.s.Blocking.Has(id) || t.s.Pushable.Has(id) || t.s.Moving.Has(id) {
			return true
		}
	}
	return false
}

func (t *turn) statusMembers() []ids.ID {
	return t.s.Status[t.agent].Effects
}

func (t *turn) hasEffect(match func(id ids.ID) bool) bool {
	for _, id := range t.statusMembers() {
		if match(id) {
			return true
		}
	}
	return false
}

func (t *turn) speedMultiplier() int {
	best := 1
	for _, id := range t.statusMembers() {
		if sp, ok := t.s.Speed[id]; ok && sp.Multiplier > best {
			best = sp.Multiplier
		}
	}
	return best
}

func (t *turn) phasing() bool {
	return t.hasEffect(t.s.Phasing.Has)
}

func (t *turn) moveAgent(dx, dy int) {
	s := t.s
	phasing := t.phasing()
	for i := 0; i < t.speedMultiplier(); i++ {
		pos := s.Position[t.agent]
		next := pos.Add(dx, dy)
		if !t.inBounds(next) {
			return
		}
		if !phasing {
			if boxes := t.pushablesAt(next); len(boxes) > 0 {
				beyond := next.Add(dx, dy)
				if !t.inBounds(beyond) || t.blocked(beyond, 0) || len(t.pushablesAt(beyond)) > 0 {
					return
				}
				for _, b := range boxes {
					s.Position[b] = beyond
				}
			}
			if t.blocked(next, t.agent) {
				return
			}
		}
		s.Position[t.agent] = next
		if dest, ok := t.portalExit(next); ok {
			s.Position[t.agent] = dest
			return
		}
	}
}

// portalExit returns the position of the pair of a portal at p.
func (t *turn) portalExit(p grid.Position) (grid.Position, bool) {
	for _, id := range t.s.At(p) {
		pt, ok := t.s.Portal[id]
		if !ok || pt.Pair == 0 {
			continue
		}
		if dest, ok := t.s.Position[pt.Pair]; ok {
			return dest, true
		}
	}
	return grid.Position{}, false
}

func isEffect(s *state.State, id ids.ID) bool {
	return s.Speed.Has(id) || s.Immunity.Has(id) || s.Phasing.Has(id)
}

func (t *turn) pickUp() {
	s := t.s
	pos := s.Position[t.agent]
	for _, id := range s.At(pos) {
		if id == t.agent || !s.Collectible.Has(id) {
			continue
		}
		delete(s.Position, id)
		if r, ok := s.Rewardable[id]; ok {
			s.Score += r.Amount
		}
		if isEffect(s, id) {
			st := s.Status[t.agent]
			st.Effects = append(st.Effects, id)
			s.Status[t.agent] = st
		} else {
			inv := s.Inventory[t.agent]
			inv.Items = append(inv.Items, id)
			s.Inventory[t.agent] = inv
		}
	}
}

// useKey unlocks the first locked entity on or next to the agent whose key
// id matches a key in the inventory. The key is consumed.
func (t *turn) useKey() {
	s := t.s
	pos := s.Position[t.agent]
	around := []grid.Position{pos, pos.Add(0, -1), pos.Add(0, 1), pos.Add(-1, 0), pos.Add(1, 0)}
	for _, p := range around {
		for _, id := range s.At(p) {
			lock, ok := s.Locked[id]
			if !ok {
				continue
			}
			key, ok := t.findKey(lock.KeyID)
			if !ok {
				continue
			}
			delete(s.Locked, id)
			delete(s.Blocking, id)
			t.dropFromInventory(key)
			s.Remove(key)
			s.Message = "unlocked"
			return
		}
	}
}

func (t *turn) findKey(keyID string) (ids.ID, bool) {
	for _, id := range t.s.Inventory[t.agent].Items {
		if k, ok := t.s.Key[id]; ok && k.KeyID == keyID {
			return id, true
		}
	}
	return 0, false
}

func (t *turn) dropFromInventory(id ids.ID) {
	inv := t.s.Inventory[t.agent]
	inv.Items = without(inv.Items, id)
	t.s.Inventory[t.agent] = inv
}

func (t *turn) dropEffect(id ids.ID) {
	st := t.s.Status[t.agent]
	st.Effects = without(st.Effects, id)
	t.s.Status[t.agent] = st
	t.s.Remove(id)
}

func without(list []ids.ID, id ids.ID) []ids.ID {
	out := make([]ids.ID, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (t *turn) shield() (ids.ID, bool) {
	for _, id := range t.statusMembers() {
		if t.s.Immunity.Has(id) {
			return id, true
		}
	}
	return 0, false
}

func (t *turn) contactDamage() {
	s := t.s
	hp, ok := s.Health[t.agent]
	if !ok {
		return
	}
	pos := s.Position[t.agent]
	for _, id := range s.At(pos) {
		dmg, ok := s.Damage[id]
		if id == t.agent || !ok {
			continue
		}
		if sh, ok := t.shield(); ok {
			if ul, ok := s.UsageLimit[sh]; ok {
				ul.Amount--
				s.UsageLimit[sh] = ul
				if ul.Amount <= 0 {
					t.dropEffect(sh)
				}
			}
			continue
		}
		if dmg.Lethal {
			hp.Current = 0
		} else {
			hp.Current -= dmg.Amount
		}
	}
	if hp.Current < 0 {
		hp.Current = 0
	}
	s.Health[t.agent] = hp
}

func (t *turn) tickStatus() {
	s := t.s
	for _, id := range append([]ids.ID(nil), t.statusMembers()...) {
		tl, ok := s.TimeLimit[id]
		if !ok {
			continue
		}
		tl.Amount--
		s.TimeLimit[id] = tl
		if tl.Amount <= 0 {
			t.dropEffect(id)
		}
	}
}

func (t *turn) payCost() {
	s := t.s
	for _, id := range s.At(s.Position[t.agent]) {
		if c, ok := s.Cost[id]; ok && id != t.agent {
			s.Score -= c.Amount
		}
	}
}

func (t *turn) evaluate() {
	s := t.s
	if t.agent != 0 {
		if hp, ok := s.Health[t.agent]; ok && hp.Current <= 0 {
			s.Dead[t.agent] = component.Dead{}
			s.Lose = true
			s.Message = "agent died"
			return
		}
	}
	if obj, ok := LookupObjective(s.Objective); ok && obj(s) {
		s.Win = true
		s.Message = "objective complete"
		return
	}
	if s.TurnLimit > 0 && s.Turn >= s.TurnLimit {
		s.Lose = true
		s.Message = "turn limit reached"
	}
}

package state

import (
	"fmt"

	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/entity"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/ids"
)

// FromLevel exports a level into canonical form. Every reachable object gets
// a fresh dense id: cell occupants in row-major order, each container's
// nested members right after it. An object referenced from several places
// keeps a single row; distinct objects never merge, even with equal ids.
// Portal pair keys are rewritten to the new ids; a pair pointing outside
// the level is dropped.
func FromLevel(l *grid.Level) *State {
	s := New(l.Width, l.Height, l.Meta)

	var dense ids.Dense
	remap := ids.Remap{}
	seen := map[entity.Object]ids.ID{}
	bags := map[ids.ID]*entity.Entity{}
	var order []ids.ID

	var assign func(o entity.Object) ids.ID
	assign = func(o entity.Object) ids.ID {
		if id, ok := seen[o]; ok {
			return id
		}
		// Distinct objects that share an old id (clones, struct copies) each
		// get their own row. Portal keys follow the first holder.
		id := dense.Next()
		seen[o] = id
		if old := o.EntityID(); old != 0 {
			if _, taken := remap[old]; !taken {
				remap[old] = id
			}
		}
		g := o.Generic()
		bags[id] = g
		order = append(order, id)
		for _, m := range g.InventoryList {
			assign(m)
		}
		for _, m := range g.StatusList {
			assign(m)
		}
		return id
	}

	l.Walk(func(p grid.Position, c grid.Cell) {
		for _, o := range c {
			id := assign(o)
			if _, placed := s.Position[id]; !placed {
				s.Position[id] = p
			}
		}
	})

	for _, id := range order {
		copyComponents(s, id, bags[id], remap, seen)
	}
	return s
}

func copyComponents(s *State, id ids.ID, e *entity.Entity, remap ids.Remap, seen map[entity.Object]ids.ID) {
	s.Entities[id] = struct{}{}
	put(s.Agent, id, e.Agent)
	put(s.Appearance, id, e.Appearance)
	put(s.Blocking, id, e.Blocking)
	put(s.Collectible, id, e.Collectible)
	put(s.Collidable, id, e.Collidable)
	put(s.Cost, id, e.Cost)
	put(s.Damage, id, e.Damage)
	put(s.Dead, id, e.Dead)
	put(s.Exit, id, e.Exit)
	put(s.Health, id, e.Health)
	put(s.Immunity, id, e.Immunity)
	put(s.Key, id, e.Key)
	put(s.Locked, id, e.Locked)
	put(s.Moving, id, e.Moving)
	put(s.Phasing, id, e.Phasing)
	put(s.Pushable, id, e.Pushable)
	put(s.Requirable, id, e.Requirable)
	put(s.Rewardable, id, e.Rewardable)
	put(s.Speed, id, e.Speed)
	put(s.TimeLimit, id, e.TimeLimit)
	put(s.UsageLimit, id, e.UsageLimit)

	if e.Portal != nil {
		pair, _ := remap.Resolve(e.Portal.Pair)
		s.Portal[id] = component.Portal{Pair: pair}
	}
	if e.Inventory != nil || len(e.InventoryList) > 0 {
		s.Inventory[id] = component.Inventory{Items: memberIDs(e.InventoryList, seen)}
	}
	if e.Status != nil || len(e.StatusList) > 0 {
		s.Status[id] = component.Status{Effects: memberIDs(e.StatusList, seen)}
	}
}

func put[T any](st Store[T], id ids.ID, v *T) {
	if v != nil {
		st[id] = *v
	}
}

func memberIDs(list []entity.Object, seen map[entity.Object]ids.ID) []ids.ID {
	out := make([]ids.ID, 0, len(list))
	for _, m := range list {
		out = append(out, seen[m])
	}
	return out
}

// ToLevel imports canonical state as a level of generic entities. Ids are
// kept. Positioned entities are placed in ascending id order; container
// members are resolved into the nested lists and shared by pointer.
func ToLevel(s *State) *grid.Level {
	l := grid.New(s.Width, s.Height, s.Meta())

	bags := make(map[ids.ID]*entity.Entity, len(s.Entities))
	all := s.IDs()
	for _, id := range all {
		bags[id] = bagFor(s, id)
	}
	for _, id := range all {
		e := bags[id]
		if inv, ok := s.Inventory[id]; ok {
			e.InventoryList = resolveMembers(bags, id, inv.Items)
		}
		if st, ok := s.Status[id]; ok {
			e.StatusList = resolveMembers(bags, id, st.Effects)
		}
	}
	for _, id := range all {
		p, ok := s.Position[id]
		if !ok {
			continue
		}
		if !l.InBounds(p) {
			panic(fmt.Sprintf("state: %s positioned at %s outside %dx%d", id, p, s.Width, s.Height))
		}
		l.Add(p, bags[id])
	}
	return l
}

func bagFor(s *State, id ids.ID) *entity.Entity {
	e := &entity.Entity{ID: id}
	e.Agent = get(s.Agent, id)
	e.Appearance = get(s.Appearance, id)
	e.Blocking = get(s.Blocking, id)
	e.Collectible = get(s.Collectible, id)
	e.Collidable = get(s.Collidable, id)
	e.Cost = get(s.Cost, id)
	e.Damage = get(s.Damage, id)
	e.Dead = get(s.Dead, id)
	e.Exit = get(s.Exit, id)
	e.Health = get(s.Health, id)
	e.Immunity = get(s.Immunity, id)
	e.Key = get(s.Key, id)
	e.Locked = get(s.Locked, id)
	e.Moving = get(s.Moving, id)
	e.Phasing = get(s.Phasing, id)
	e.Portal = get(s.Portal, id)
	e.Pushable = get(s.Pushable, id)
	e.Requirable = get(s.Requirable, id)
	e.Rewardable = get(s.Rewardable, id)
	e.Speed = get(s.Speed, id)
	e.TimeLimit = get(s.TimeLimit, id)
	e.UsageLimit = get(s.UsageLimit, id)
	if inv, ok := s.Inventory[id]; ok {
		e.Inventory = &component.Inventory{Items: append([]ids.ID(nil), inv.Items...)}
	}
	if st, ok := s.Status[id]; ok {
		e.Status = &component.Status{Effects: append([]ids.ID(nil), st.Effects...)}
	}
	return e
}

func get[T any](st Store[T], id ids.ID) *T {
	v, ok := st[id]
	if !ok {
		return nil
	}
	return &v
}

func resolveMembers(bags map[ids.ID]*entity.Entity, owner ids.ID, members []ids.ID) []entity.Object {
	out := make([]entity.Object, 0, len(members))
	for _, m := range members {
		b, ok := bags[m]
		if !ok {
			panic(fmt.Sprintf("state: %s references missing member %s", owner, m))
		}
		out = append(out, b)
	}
	return out
}

package entity

import (
	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/ids"
)

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone deep-copies the component values of e. Nested lists are copied
// shallowly: the members are shared, the slices are not.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := &Entity{
		ID:          e.ID,
		Agent:       clonePtr(e.Agent),
		Appearance:  clonePtr(e.Appearance),
		Blocking:    clonePtr(e.Blocking),
		Collectible: clonePtr(e.Collectible),
		Collidable:  clonePtr(e.Collidable),
		Cost:        clonePtr(e.Cost),
		Damage:      clonePtr(e.Damage),
		Dead:        clonePtr(e.Dead),
		Exit:        clonePtr(e.Exit),
		Health:      clonePtr(e.Health),
		Immunity:    clonePtr(e.Immunity),
		Key:         clonePtr(e.Key),
		Locked:      clonePtr(e.Locked),
		Moving:      clonePtr(e.Moving),
		Phasing:     clonePtr(e.Phasing),
		Portal:      clonePtr(e.Portal),
		Pushable:    clonePtr(e.Pushable),
		Requirable:  clonePtr(e.Requirable),
		Rewardable:  clonePtr(e.Rewardable),
		Speed:       clonePtr(e.Speed),
		TimeLimit:   clonePtr(e.TimeLimit),
		UsageLimit:  clonePtr(e.UsageLimit),
	}
	if e.Inventory != nil {
		out.Inventory = &component.Inventory{Items: append([]ids.ID(nil), e.Inventory.Items...)}
	}
	if e.Status != nil {
		out.Status = &component.Status{Effects: append([]ids.ID(nil), e.Status.Effects...)}
	}
	out.InventoryList = append([]Object(nil), e.InventoryList...)
	out.StatusList = append([]Object(nil), e.StatusList...)
	return out
}

// Walk calls fn for o and, depth first, for every member of its nested lists.
// Each object is visited once even if it is reachable along several paths.
func Walk(o Object, fn func(Object)) {
	seen := map[Object]bool{}
	var visit func(Object)
	visit = func(o Object) {
		if o == nil || seen[o] {
			return
		}
		seen[o] = true
		fn(o)
		g := o.Generic()
		for _, m := range g.InventoryList {
			visit(m)
		}
		for _, m := range g.StatusList {
			visit(m)
		}
	}
	visit(o)
}

package entity

import (
	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/ids"
)

// Object is anything that can occupy a cell or a nested list: a generic
// Entity or one of the typed variants built on top of it.
type Object interface {
	EntityID() ids.ID
	// Generic returns the object as a component bag. For *Entity this is the
	// receiver itself; typed variants materialize a fresh bag.
	Generic() *Entity
}

// Entity is a bag of optional components. A nil pointer means the component is absent.
type Entity struct {
	ID ids.ID

	Agent       *component.Agent
	Appearance  *component.Appearance
	Blocking    *component.Blocking
	Collectible *component.Collectible
	Collidable  *component.Collidable
	Cost        *component.Cost
	Damage      *component.Damage
	Dead        *component.Dead
	Exit        *component.Exit
	Health      *component.Health
	Immunity    *component.Immunity
	Inventory   *component.Inventory
	Key         *component.Key
	Locked      *component.Locked
	Moving      *component.Moving
	Phasing     *component.Phasing
	Portal      *component.Portal
	Pushable    *component.Pushable
	Requirable  *component.Requirable
	Rewardable  *component.Rewardable
	Speed       *component.Speed
	Status      *component.Status
	TimeLimit   *component.TimeLimit
	UsageLimit  *component.UsageLimit

	// Contained objects, in order. The Inventory/Status components mark that
	// the entity is a container; these lists hold the members themselves.
	InventoryList []Object
	StatusList    []Object
}

// New returns an empty entity with a fresh id.
func New() *Entity {
	return &Entity{ID: ids.New()}
}

func (e *Entity) EntityID() ids.ID { return e.ID }

func (e *Entity) Generic() *Entity { return e }

// AppearanceName returns the appearance tag or "" when there is none.
func (e *Entity) AppearanceName() string {
	if e == nil || e.Appearance == nil {
		return ""
	}
	return e.Appearance.Name
}

// Priority is the draw order of the entity; entities without appearance sort last.
func (e *Entity) Priority() int {
	if e == nil || e.Appearance == nil {
		return int(^uint(0) >> 1)
	}
	return e.Appearance.Priority
}

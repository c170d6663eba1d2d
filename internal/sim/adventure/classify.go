package adventure

import "gridadventure/internal/sim/entity"

// Appearance tags the classifier keys on.
const (
	AppearanceDoor  = "door"
	AppearanceCore  = "core"
	AppearanceBox   = "box"
	AppearanceLava  = "lava"
	AppearanceFloor = "floor"
	AppearanceWall  = "wall"
)

// Classify narrows o to its catalog variant. Objects that are already
// specialized come back unchanged, as do objects no rule matches. The input
// is never modified; the result shares nested list members with it.
func Classify(o entity.Object) entity.Object {
	if o == nil {
		return nil
	}
	if _, ok := o.(Specialized); ok {
		return o
	}
	e := o.Generic()
	if s := classify(e); s != nil {
		return s
	}
	return o
}

// classify is the ordered rule chain. The first rule that matches wins.
func classify(e *entity.Entity) Specialized {
	name := e.AppearanceName()
	switch {
	case e.Agent != nil:
		return &Agent{
			Base:       baseOf(e),
			Health:     clonePtr(e.Health),
			Collidable: clonePtr(e.Collidable),
			Dead:       clonePtr(e.Dead),
			Inventory:  append([]entity.Object(nil), e.InventoryList...),
			Status:     append([]entity.Object(nil), e.StatusList...),
		}
	case e.Exit != nil:
		return &Exit{Base: baseOf(e)}
	case name == AppearanceDoor:
		if e.Locked != nil {
			return &LockedDoor{Base: baseOf(e), Locked: *e.Locked, Blocking: clonePtr(e.Blocking)}
		}
		return &UnlockedDoor{Base: baseOf(e)}
	case e.Key != nil:
		return &Key{Base: baseOf(e), Key: *e.Key, Collectible: clonePtr(e.Collectible)}
	case e.Collectible != nil:
		return classifyCollectible(e)
	case name == AppearanceBox:
		if e.Moving != nil {
			return &MovingBox{Base: baseOf(e), Moving: *e.Moving, Blocking: clonePtr(e.Blocking)}
		}
		return &Box{Base: baseOf(e), Pushable: clonePtr(e.Pushable), Blocking: clonePtr(e.Blocking)}
	case name == AppearanceLava:
		return &Lava{Base: baseOf(e), Damage: clonePtr(e.Damage), Collidable: clonePtr(e.Collidable)}
	case e.Moving != nil && e.Collidable != nil && e.Damage != nil:
		return &Robot{Base: baseOf(e), Damage: *e.Damage, Moving: *e.Moving, Blocking: clonePtr(e.Blocking)}
	case name == AppearanceFloor:
		return &Floor{Base: baseOf(e), Cost: clonePtr(e.Cost)}
	case name == AppearanceWall:
		return &Wall{Base: baseOf(e), Blocking: clonePtr(e.Blocking)}
	case e.Portal != nil:
		return &Portal{Base: baseOf(e), Pair: e.Portal.Pair}
	}
	return nil
}

func classifyCollectible(e *entity.Entity) Specialized {
	switch {
	case e.Speed != nil:
		return &SpeedPowerUp{Base: baseOf(e), Speed: *e.Speed, TimeLimit: clonePtr(e.TimeLimit)}
	case e.Immunity != nil:
		return &ShieldPowerUp{Base: baseOf(e), UsageLimit: clonePtr(e.UsageLimit)}
	case e.Phasing != nil:
		return &PhasingPowerUp{Base: baseOf(e), TimeLimit: clonePtr(e.TimeLimit)}
	case e.AppearanceName() == AppearanceCore || e.Requirable != nil:
		return &Gem{Base: baseOf(e), Requirable: clonePtr(e.Requirable), Rewardable: clonePtr(e.Rewardable)}
	}
	return &Coin{Base: baseOf(e), Rewardable: clonePtr(e.Rewardable)}
}

// Signature lists the components present on o, for diagnostics.
func Signature(o entity.Object) []string {
	e := o.Generic()
	var out []string
	add := func(present bool, name string) {
		if present {
			out = append(out, name)
		}
	}
	add(e.Agent != nil, "agent")
	add(e.Blocking != nil, "blocking")
	add(e.Collectible != nil, "collectible")
	add(e.Collidable != nil, "collidable")
	add(e.Cost != nil, "cost")
	add(e.Damage != nil, "damage")
	add(e.Dead != nil, "dead")
	add(e.Exit != nil, "exit")
	add(e.Health != nil, "health")
	add(e.Immunity != nil, "immunity")
	add(e.Inventory != nil, "inventory")
	add(e.Key != nil, "key")
	add(e.Locked != nil, "locked")
	add(e.Moving != nil, "moving")
	add(e.Phasing != nil, "phasing")
	add(e.Portal != nil, "portal")
	add(e.Pushable != nil, "pushable")
	add(e.Requirable != nil, "requirable")
	add(e.Rewardable != nil, "rewardable")
	add(e.Speed != nil, "speed")
	add(e.Status != nil, "status")
	add(e.TimeLimit != nil, "time_limit")
	add(e.UsageLimit != nil, "usage_limit")
	return out
}

package adventure

import (
	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/entity"
	"gridadventure/internal/sim/ids"
)

// Specialized is an entity narrowed to exactly one catalog variant.
// Generic rebuilds a component bag that classifies back to the same Kind.
type Specialized interface {
	entity.Object
	Kind() Kind
}

// Base is embedded by every variant.
type Base struct {
	ID         ids.ID
	Appearance *component.Appearance
}

func (b *Base) EntityID() ids.ID { return b.ID }

func (b *Base) AppearanceName() string {
	if b.Appearance == nil {
		return ""
	}
	return b.Appearance.Name
}

func (b *Base) bag() *entity.Entity {
	return &entity.Entity{ID: b.ID, Appearance: clonePtr(b.Appearance)}
}

func baseOf(e *entity.Entity) Base {
	return Base{ID: e.ID, Appearance: clonePtr(e.Appearance)}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func marker[T any]() *T { return new(T) }

// Agent is the player. Its nested lists hold specialized members after a
// traversal.
type Agent struct {
	Base
	Health     *component.Health
	Collidable *component.Collidable
	Dead       *component.Dead
	Inventory  []entity.Object
	Status     []entity.Object
}

func (*Agent) Kind() Kind { return KindAgent }

func (a *Agent) Generic() *entity.Entity {
	e := a.bag()
	e.Agent = marker[component.Agent]()
	e.Health = clonePtr(a.Health)
	e.Collidable = clonePtr(a.Collidable)
	e.Dead = clonePtr(a.Dead)
	e.InventoryList = append([]entity.Object(nil), a.Inventory...)
	e.StatusList = append([]entity.Object(nil), a.Status...)
	e.Inventory = &component.Inventory{Items: objectIDs(a.Inventory)}
	e.Status = &component.Status{Effects: objectIDs(a.Status)}
	return e
}

// SetHealth replaces the health component with a full one of the given
// size. The agent must already have one.
func (a *Agent) SetHealth(current int) {
	if a.Health == nil {
		panic("adventure: SetHealth on agent without a health component")
	}
	a.Health = &component.Health{Current: current, Max: current}
}

func objectIDs(list []entity.Object) []ids.ID {
	out := make([]ids.ID, 0, len(list))
	for _, o := range list {
		out = append(out, o.EntityID())
	}
	return out
}

type Floor struct {
	Base
	Cost *component.Cost
}

func (*Floor) Kind() Kind { return KindFloor }

func (f *Floor) Generic() *entity.Entity {
	e := f.bag()
	e.Cost = clonePtr(f.Cost)
	return e
}

type Wall struct {
	Base
	Blocking *component.Blocking
}

func (*Wall) Kind() Kind { return KindWall }

func (w *Wall) Generic() *entity.Entity {
	e := w.bag()
	e.Blocking = clonePtr(w.Blocking)
	return e
}

type Exit struct{ Base }

func (*Exit) Kind() Kind { return KindExit }

func (x *Exit) Generic() *entity.Entity {
	e := x.bag()
	e.Exit = marker[component.Exit]()
	return e
}

type Coin struct {
	Base
	Rewardable *component.Rewardable
}

func (*Coin) Kind() Kind { return KindCoin }

func (c *Coin) Generic() *entity.Entity {
	e := c.bag()
	e.Collectible = marker[component.Collectible]()
	e.Rewardable = clonePtr(c.Rewardable)
	return e
}

type Gem struct {
	Base
	Requirable *component.Requirable
	Rewardable *component.Rewardable
}

func (*Gem) Kind() Kind { return KindGem }

func (g *Gem) Generic() *entity.Entity {
	e := g.bag()
	e.Collectible = marker[component.Collectible]()
	e.Requirable = clonePtr(g.Requirable)
	e.Rewardable = clonePtr(g.Rewardable)
	return e
}

type Key struct {
	Base
	Key         component.Key
	Collectible *component.Collectible
}

func (*Key) Kind() Kind { return KindKey }

func (k *Key) Generic() *entity.Entity {
	e := k.bag()
	key := k.Key
	e.Key = &key
	e.Collectible = clonePtr(k.Collectible)
	return e
}

type LockedDoor struct {
	Base
	Locked   component.Locked
	Blocking *component.Blocking
}

func (*LockedDoor) Kind() Kind { return KindLockedDoor }

func (d *LockedDoor) Generic() *entity.Entity {
	e := d.bag()
	lock := d.Locked
	e.Locked = &lock
	e.Blocking = clonePtr(d.Blocking)
	return e
}

type UnlockedDoor struct{ Base }

func (*UnlockedDoor) Kind() Kind { return KindUnlockedDoor }

func (d *UnlockedDoor) Generic() *entity.Entity { return d.bag() }

// Portal refers to its pair by id. Resolve it through an Index.
type Portal struct {
	Base
	Pair ids.ID
}

func (*Portal) Kind() Kind { return KindPortal }

func (p *Portal) Generic() *entity.Entity {
	e := p.bag()
	e.Portal = &component.Portal{Pair: p.Pair}
	return e
}

// PairWith links p and other both ways. Former partners are not touched.
func (p *Portal) PairWith(other *Portal) {
	p.Pair = other.ID
	other.Pair = p.ID
}

// Box is a pushable crate. It never carries a movement descriptor.
type Box struct {
	Base
	Pushable *component.Pushable
	Blocking *component.Blocking
}

func (*Box) Kind() Kind { return KindBox }

func (b *Box) Generic() *entity.Entity {
	e := b.bag()
	e.Pushable = clonePtr(b.Pushable)
	e.Blocking = clonePtr(b.Blocking)
	return e
}

type MovingBox struct {
	Base
	Moving   component.Moving
	Blocking *component.Blocking
}

func (*MovingBox) Kind() Kind { return KindMovingBox }

func (b *MovingBox) Generic() *entity.Entity {
	e := b.bag()
	mv := b.Moving
	e.Moving = &mv
	e.Blocking = clonePtr(b.Blocking)
	return e
}

func (b *MovingBox) SetDirection(d component.Direction) {
	b.Moving = component.Moving{Direction: d, OnCollision: b.Moving.OnCollision, Speed: b.Moving.Speed}
}

type Robot struct {
	Base
	Damage component.Damage
	Moving component.Moving

	// Blocking is only set when a generic robot carried it.
	Blocking *component.Blocking
}

func (*Robot) Kind() Kind { return KindRobot }

func (r *Robot) Generic() *entity.Entity {
	e := r.bag()
	dmg, mv := r.Damage, r.Moving
	e.Damage = &dmg
	e.Moving = &mv
	e.Collidable = marker[component.Collidable]()
	e.Blocking = clonePtr(r.Blocking)
	return e
}

func (r *Robot) SetDirection(d component.Direction) {
	r.Moving = component.Moving{Direction: d, OnCollision: r.Moving.OnCollision, Speed: r.Moving.Speed}
}

type Lava struct {
	Base
	Damage     *component.Damage
	Collidable *component.Collidable
}

func (*Lava) Kind() Kind { return KindLava }

func (l *Lava) Generic() *entity.Entity {
	e := l.bag()
	e.Damage = clonePtr(l.Damage)
	e.Collidable = clonePtr(l.Collidable)
	return e
}

type SpeedPowerUp struct {
	Base
	Speed     component.Speed
	TimeLimit *component.TimeLimit
}

func (*SpeedPowerUp) Kind() Kind { return KindSpeedPowerUp }

func (p *SpeedPowerUp) Generic() *entity.Entity {
	e := p.bag()
	sp := p.Speed
	e.Collectible = marker[component.Collectible]()
	e.Speed = &sp
	e.TimeLimit = clonePtr(p.TimeLimit)
	return e
}

type ShieldPowerUp struct {
	Base
	UsageLimit *component.UsageLimit
}

func (*ShieldPowerUp) Kind() Kind { return KindShieldPowerUp }

func (p *ShieldPowerUp) Generic() *entity.Entity {
	e := p.bag()
	e.Collectible = marker[component.Collectible]()
	e.Immunity = marker[component.Immunity]()
	e.UsageLimit = clonePtr(p.UsageLimit)
	return e
}

type PhasingPowerUp struct {
	Base
	TimeLimit *component.TimeLimit
}

func (*PhasingPowerUp) Kind() Kind { return KindPhasingPowerUp }

func (p *PhasingPowerUp) Generic() *entity.Entity {
	e := p.bag()
	e.Collectible = marker[component.Collectible]()
	e.Phasing = marker[component.Phasing]()
	e.TimeLimit = clonePtr(p.TimeLimit)
	return e
}

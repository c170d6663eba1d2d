package adventure

import (
	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/ids"
	"gridadventure/internal/sim/tuning"
)

// Default appearance priorities. Lower values are drawn first.
const (
	PriorityAgent  = 0
	PriorityRobot  = 1
	PriorityBox    = 2
	PriorityItem   = 4
	PriorityDoor   = 6
	PriorityPortal = 7
	PriorityLava   = 7
	PriorityExit   = 9
	PriorityWall   = 9
	PriorityFloor  = 10
)

// Factory builds fresh specialized entities with tuned default components.
// Zero arguments to its methods select the tuned default.
type Factory struct {
	t tuning.Tuning
}

func NewFactory(t tuning.Tuning) *Factory {
	return &Factory{t: t}
}

var std = NewFactory(tuning.Defaults())

// Default is the factory behind the package-level constructors.
func Default() *Factory { return std }

func (f *Factory) Tuning() tuning.Tuning { return f.t }

func base(name string, priority int) Base {
	return Base{ID: ids.New(), Appearance: &component.Appearance{Name: name, Priority: priority}}
}

func background(name string, priority int) Base {
	b := base(name, priority)
	b.Appearance.Background = true
	return b
}

func icon(name string) Base {
	b := base(name, PriorityItem)
	b.Appearance.Icon = true
	return b
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func (f *Factory) Agent(health int) *Agent {
	h := orDefault(health, f.t.Entities.AgentHealth)
	return &Agent{
		Base:       base("human", PriorityAgent),
		Health:     &component.Health{Current: h, Max: h},
		Collidable: marker[component.Collidable](),
	}
}

func (f *Factory) Floor() *Floor {
	return &Floor{Base: background(AppearanceFloor, PriorityFloor), Cost: &component.Cost{Amount: f.t.Entities.FloorCost}}
}

func (f *Factory) Wall() *Wall {
	return &Wall{Base: background(AppearanceWall, PriorityWall), Blocking: marker[component.Blocking]()}
}

func (f *Factory) Exit() *Exit {
	return &Exit{Base: base("exit", PriorityExit)}
}

func (f *Factory) Coin() *Coin {
	return &Coin{Base: icon("coin"), Rewardable: &component.Rewardable{Amount: f.t.Entities.CoinReward}}
}

func (f *Factory) Gem() *Gem {
	return &Gem{Base: icon("gem"), Requirable: marker[component.Requirable]()}
}

func (f *Factory) Key(keyID string) *Key {
	if keyID == "" {
		keyID = f.t.Entities.KeyID
	}
	return &Key{Base: icon("key"), Key: component.Key{KeyID: keyID}, Collectible: marker[component.Collectible]()}
}

func (f *Factory) LockedDoor(keyID string) *LockedDoor {
	if keyID == "" {
		keyID = f.t.Entities.KeyID
	}
	return &LockedDoor{
		Base:     base(AppearanceDoor, PriorityDoor),
		Locked:   component.Locked{KeyID: keyID},
		Blocking: marker[component.Blocking](),
	}
}

func (f *Factory) UnlockedDoor() *UnlockedDoor {
	return &UnlockedDoor{Base: base(AppearanceDoor, PriorityDoor)}
}

// Portal builds a portal. A non-nil pair is linked both ways.
func (f *Factory) Portal(pair *Portal) *Portal {
	p := &Portal{Base: base("portal", PriorityPortal)}
	if pair != nil {
		p.PairWith(pair)
	}
	return p
}

func (f *Factory) PortalPair() (*Portal, *Portal) {
	a := f.Portal(nil)
	return a, f.Portal(a)
}

func (f *Factory) Box() *Box {
	return &Box{
		Base:     base(AppearanceBox, PriorityBox),
		Pushable: marker[component.Pushable](),
		Blocking: marker[component.Blocking](),
	}
}

func (f *Factory) moving(dir component.Direction) component.Moving {
	if dir == 0 {
		dir = f.t.DefaultDirection()
	}
	return component.Moving{Direction: dir, OnCollision: f.t.DefaultCollision(), Speed: f.t.Entities.MoveSpeed}
}

func (f *Factory) MovingBox(dir component.Direction) *MovingBox {
	return &MovingBox{
		Base:     base(AppearanceBox, PriorityBox),
		Moving:   f.moving(dir),
		Blocking: marker[component.Blocking](),
	}
}

func (f *Factory) Robot(dir component.Direction) *Robot {
	return &Robot{
		Base:   base("robot", PriorityRobot),
		Damage: component.Damage{Amount: f.t.Entities.RobotDamage},
		Moving: f.moving(dir),
	}
}

func (f *Factory) Lava() *Lava {
	return &Lava{
		Base:       base(AppearanceLava, PriorityLava),
		Damage:     &component.Damage{Amount: f.t.Entities.LavaDamage},
		Collidable: marker[component.Collidable](),
	}
}

func (f *Factory) SpeedPowerUp() *SpeedPowerUp {
	return &SpeedPowerUp{
		Base:      icon("boots"),
		Speed:     component.Speed{Multiplier: f.t.Entities.SpeedMultiplier},
		TimeLimit: &component.TimeLimit{Amount: f.t.Entities.SpeedDuration},
	}
}

func (f *Factory) ShieldPowerUp() *ShieldPowerUp {
	return &ShieldPowerUp{Base: icon("shield"), UsageLimit: &component.UsageLimit{Amount: f.t.Entities.ShieldUsage}}
}

func (f *Factory) PhasingPowerUp() *PhasingPowerUp {
	return &PhasingPowerUp{Base: icon("ghost"), TimeLimit: &component.TimeLimit{Amount: f.t.Entities.PhasingDuration}}
}

func NewAgent(health int) *Agent { return std.Agent(health) }
func NewFloor() *Floor { return std.Floor() }
func NewWall() *Wall { return std.Wall() }
func NewExit() *Exit { return std.Exit() }
func NewCoin() *Coin { return std.Coin() }
func NewGem() *Gem { return std.Gem() }
func NewKey(keyID string) *Key { return std.Key(keyID) }
func NewLockedDoor(keyID string) *LockedDoor { return std.LockedDoor(keyID) }
func NewUnlockedDoor() *UnlockedDoor { return std.UnlockedDoor() }
func NewPortal(pair *Portal) *Portal { return std.Portal(pair) }
func NewPortalPair() (*Portal, *Portal) { return std.PortalPair() }
func NewBox() *Box { return std.Box() }
func NewMovingBox(dir component.Direction) *MovingBox { return std.MovingBox(dir) }
func NewRobot(dir component.Direction) *Robot { return std.Robot(dir) }
func NewLava() *Lava { return std.Lava() }
func NewSpeedPowerUp() *SpeedPowerUp { return std.SpeedPowerUp() }
func NewShieldPowerUp() *ShieldPowerUp { return std.ShieldPowerUp() }
func NewPhasingPowerUp() *PhasingPowerUp { return std.PhasingPowerUp() }

package component

import "gridadventure/internal/sim/ids"

// Markers carry no data; presence is the signal.
type (
	Agent       struct{}
	Blocking    struct{}
	Collectible struct{}
	Collidable  struct{}
	Dead        struct{}
	Exit        struct{}
	Immunity    struct{}
	Phasing     struct{}
	Pushable    struct{}
	Requirable  struct{}
)

// Appearance is the rendered tag of an entity. Lower Priority values are drawn on top.
type Appearance struct {
	Name       string `json:"name"`
	Priority   int    `json:"priority"`
	Background bool   `json:"background,omitempty"`
	Icon       bool   `json:"icon,omitempty"`
}

type Cost struct {
	Amount int `json:"amount"`
}

type Damage struct {
	Amount int  `json:"amount"`
	Lethal bool `json:"lethal,omitempty"`
}

type Health struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

type Key struct {
	KeyID string `json:"key_id"`
}

type Locked struct {
	KeyID string `json:"key_id"`
}

type Rewardable struct {
	Amount int `json:"amount"`
}

type Speed struct {
	Multiplier int `json:"multiplier"`
}

type TimeLimit struct {
	Amount int `json:"amount"`
}

type UsageLimit struct {
	Amount int `json:"amount"`
}

// Portal links to its pair by entity id. Zero means unpaired.
type Portal struct {
	Pair ids.ID `json:"pair"`
}

// Inventory and Status hold member entity ids in insertion order.
type Inventory struct {
	Items []ids.ID `json:"items"`
}

type Status struct {
	Effects []ids.ID `json:"effects"`
}

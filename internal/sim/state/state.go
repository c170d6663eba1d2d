package state

import (
	"sort"

	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/ids"
)

// Store holds one component kind for every entity that has it.
type Store[T any] map[ids.ID]T

func (s Store[T]) Has(id ids.ID) bool {
	_, ok := s[id]
	return ok
}

func (s Store[T]) clone() Store[T] {
	out := make(Store[T], len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// State is the engine's canonical, variant-agnostic snapshot. Entities are
// rows keyed by id; each component lives in its own store.
type State struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Movement  string `json:"movement"`
	Objective string `json:"objective"`
	Seed      int64  `json:"seed"`
	Turn      int    `json:"turn"`
	Score     int    `json:"score"`
	Win       bool   `json:"win"`
	Lose      bool   `json:"lose"`
	Message   string `json:"message,omitempty"`
	TurnLimit int    `json:"turn_limit,omitempty"`

	Entities Store[struct{}]       `json:"entities"`
	Position Store[grid.Position] `json:"position"`

	Agent       Store[component.Agent]       `json:"agent"`
	Appearance  Store[component.Appearance]  `json:"appearance"`
	Blocking    Store[component.Blocking]    `json:"blocking"`
	Collectible Store[component.Collectible] `json:"collectible"`
	Collidable  Store[component.Collidable]  `json:"collidable"`
	Cost        Store[component.Cost]        `json:"cost"`
	Damage      Store[component.Damage]      `json:"damage"`
	Dead        Store[component.Dead]        `json:"dead"`
	Exit        Store[component.Exit]        `json:"exit"`
	Health      Store[component.Health]      `json:"health"`
	Immunity    Store[component.Immunity]    `json:"immunity"`
	Inventory   Store[component.Inventory]   `json:"inventory"`
	Key         Store[component.Key]         `json:"key"`
	Locked      Store[component.Locked]      `json:"locked"`
	Moving      Store[component.Moving]      `json:"moving"`
	Phasing     Store[component.Phasing]     `json:"phasing"`
	Portal      Store[component.Portal]      `json:"portal"`
	Pushable    Store[component.Pushable]    `json:"pushable"`
	Requirable  Store[component.Requirable]  `json:"requirable"`
	Rewardable  Store[component.Rewardable]  `json:"rewardable"`
	Speed       Store[component.Speed]       `json:"speed"`
	Status      Store[component.Status]      `json:"status"`
	TimeLimit   Store[component.TimeLimit]   `json:"time_limit"`
	UsageLimit  Store[component.UsageLimit]  `json:"usage_limit"`
}

func New(width, height int, meta grid.Meta) *State {
	s := &State{Width: width, Height: height}
	s.SetMeta(meta)
	s.initStores()
	return s
}

func (s *State) initStores() {
	if s.Entities == nil {
		s.Entities = Store[struct{}]{}
	}
	if s.Position == nil {
		s.Position = Store[grid.Position]{}
	}
	initStore(&s.Agent)
	initStore(&s.Appearance)
	initStore(&s.Blocking)
	initStore(&s.Collectible)
	initStore(&s.Collidable)
	initStore(&s.Cost)
	initStore(&s.Damage)
	initStore(&s.Dead)
	initStore(&s.Exit)
	initStore(&s.Health)
	initStore(&s.Immunity)
	initStore(&s.Inventory)
	initStore(&s.Key)
	initStore(&s.Locked)
	initStore(&s.Moving)
	initStore(&s.Phasing)
	initStore(&s.Portal)
	initStore(&s.Pushable)
	initStore(&s.Requirable)
	initStore(&s.Rewardable)
	initStore(&s.Speed)
	initStore(&s.Status)
	initStore(&s.TimeLimit)
	initStore(&s.UsageLimit)
}

func initStore[T any](s *Store[T]) {
	if *s == nil {
		*s = Store[T]{}
	}
}

// Normalize fills nil stores and nil member lists, e.g. after decoding a
// state that omitted them. Digests are only comparable between normalized
// states.
func (s *State) Normalize() {
	s.initStores()
	for id, inv := range s.Inventory {
		if inv.Items == nil {
			inv.Items = []ids.ID{}
			s.Inventory[id] = inv
		}
	}
	for id, st := range s.Status {
		if st.Effects == nil {
			st.Effects = []ids.ID{}
			s.Status[id] = st
		}
	}
}

func (s *State) Meta() grid.Meta {
	return grid.Meta{
		Movement:  s.Movement,
		Objective: s.Objective,
		Seed:      s.Seed,
		Turn:      s.Turn,
		Score:     s.Score,
		Win:       s.Win,
		Lose:      s.Lose,
		Message:   s.Message,
		TurnLimit: s.TurnLimit,
	}
}

func (s *State) SetMeta(m grid.Meta) {
	s.Movement = m.Movement
	s.Objective = m.Objective
	s.Seed = m.Seed
	s.Turn = m.Turn
	s.Score = m.Score
	s.Win = m.Win
	s.Lose = m.Lose
	s.Message = m.Message
	s.TurnLimit = m.TurnLimit
}

// IDs returns all entity ids in ascending order.
func (s *State) IDs() []ids.ID {
	out := make([]ids.ID, 0, len(s.Entities))
	for id := range s.Entities {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// At returns the ids positioned at p, ascending.
func (s *State) At(p grid.Position) []ids.ID {
	var out []ids.ID
	for id, pos := range s.Position {
		if pos == p {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AgentID returns the lowest id carrying the agent marker.
func (s *State) AgentID() (ids.ID, bool) {
	var best ids.ID
	for id := range s.Agent {
		if best == 0 || id < best {
			best = id
		}
	}
	return best, best != 0
}

// Remove deletes an entity and every component it has. Container lists that
// reference it are left alone; callers detach it first.
func (s *State) Remove(id ids.ID) {
	delete(s.Entities, id)
	delete(s.Position, id)
	delete(s.Agent, id)
	delete(s.Appearance, id)
	delete(s.Blocking, id)
	delete(s.Collectible, id)
	delete(s.Collidable, id)
	delete(s.Cost, id)
	delete(s.Damage, id)
	delete(s.Dead, id)
	delete(s.Exit, id)
	delete(s.Health, id)
	delete(s.Immunity, id)
	delete(s.Inventory, id)
	delete(s.Key, id)
	delete(s.Locked, id)
	delete(s.Moving, id)
	delete(s.Phasing, id)
	delete(s.Portal, id)
	delete(s.Pushable, id)
	delete(s.Requirable, id)
	delete(s.Rewardable, id)
	delete(s.Speed, id)
	delete(s.Status, id)
	delete(s.TimeLimit, id)
	delete(s.UsageLimit, id)
}

// Clone returns an independent copy; component values are copied, and the
// id slices inside Inventory/Status are duplicated.
func (s *State) Clone() *State {
	out := *s
	out.Entities = s.Entities.clone()
	out.Position = s.Position.clone()
	out.Agent = s.Agent.clone()
	out.Appearance = s.Appearance.clone()
	out.Blocking = s.Blocking.clone()
	out.Collectible = s.Collectible.clone()
	out.Collidable = s.Collidable.clone()
	out.Cost = s.Cost.clone()
	out.Damage = s.Damage.clone()
	out.Dead = s.Dead.clone()
	out.Exit = s.Exit.clone()
	out.Health = s.Health.clone()
	out.Immunity = s.Immunity.clone()
	out.Key = s.Key.clone()
	out.Locked = s.Locked.clone()
	out.Moving = s.Moving.clone()
	out.Phasing = s.Phasing.clone()
	out.Portal = s.Portal.clone()
	out.Pushable = s.Pushable.clone()
	out.Requirable = s.Requirable.clone()
	out.Rewardable = s.Rewardable.clone()
	out.Speed = s.Speed.clone()
	out.TimeLimit = s.TimeLimit.clone()
	out.UsageLimit = s.UsageLimit.clone()
	out.Inventory = make(Store[component.Inventory], len(s.Inventory))
	for id, inv := range s.Inventory {
		out.Inventory[id] = component.Inventory{Items: append(make([]ids.ID, 0, len(inv.Items)), inv.Items...)}
	}
	out.Status = make(Store[component.Status], len(s.Status))
	for id, st := range s.Status {
		out.Status[id] = component.Status{Effects: append(make([]ids.ID, 0, len(st.Effects)), st.Effects...)}
	}
	return &out
}

package levels

import (
	"sort"
	"strings"

	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/grid"
)

// Def names a level layout and its default seed.
type Def struct {
	Code  string `json:"code"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Seed  int64  `json:"seed"`

	build func(f *adventure.Factory, seed int64) *grid.Level
}

// Build lays the level out with f, or the default factory when f is nil.
// seed 0 selects the default seed.
func (d Def) Build(f *adventure.Factory, seed int64) *grid.Level {
	if f == nil {
		f = adventure.Default()
	}
	if seed == 0 {
		seed = d.Seed
	}
	return d.build(f, seed)
}

// Level is Build with the default factory and seed.
func (d Def) Level() *grid.Level { return d.Build(nil, 0) }

var intro = []Def{
	{Code: "A0", Slug: "basic_movement", Title: "Basic Movement", Seed: 100, build: basicMovement},
	{Code: "A1", Slug: "maze_turns", Title: "Maze Turns", Seed: 101, build: mazeTurns},
	{Code: "A2", Slug: "optional_coin", Title: "Optional Coin Path", Seed: 102, build: optionalCoin},
	{Code: "A3", Slug: "required_multiple", Title: "Multiple Required Gems", Seed: 104, build: requiredMultiple},
	{Code: "A4", Slug: "key_door", Title: "Key & Door", Seed: 105, build: keyDoor},
	{Code: "A5", Slug: "hazard_detour", Title: "Hazard Detour", Seed: 106, build: hazardDetour},
	{Code: "A6", Slug: "pushable_box", Title: "Pushable Box", Seed: 108, build: pushableBox},
	{Code: "A7", Slug: "power_shield", Title: "Shield Powerup", Seed: 110, build: powerShield},
	{Code: "A8", Slug: "power_ghost", Title: "Ghost Powerup", Seed: 111, build: powerGhost},
	{Code: "A9", Slug: "power_boots", Title: "Boots Powerup", Seed: 112, build: powerBoots},
	{Code: "A10", Slug: "combined_mechanics", Title: "Combined Mechanics", Seed: 113, build: combinedMechanics},
	{Code: "A11", Slug: "boss", Title: "Boss Level", Seed: 113, build: boss},
}

// Extra layouts exercise mechanics the intro sequence does not.
var extra = []Def{
	{Code: "B0", Slug: "required_one", Title: "One Required Gem", Seed: 103, build: requiredOne},
	{Code: "B1", Slug: "portal_shortcut", Title: "Portal Shortcut", Seed: 107, build: portalShortcut},
	{Code: "B2", Slug: "enemy_patrol", Title: "Enemy Patrol", Seed: 109, build: enemyPatrol},
	{Code: "B3", Slug: "moving_box", Title: "Moving Box", Seed: 113, build: movingBox},
}

// Intro returns the intro sequence in play order.
func Intro() []Def { return append([]Def(nil), intro...) }

// All returns every registered level, intro first.
func All() []Def {
	out := make([]Def, 0, len(intro)+len(extra))
	out = append(out, intro...)
	return append(out, extra...)
}

// Lookup finds a level by code, slug or title, case-insensitively.
func Lookup(name string) (Def, bool) {
	name = strings.TrimSpace(name)
	for _, d := range All() {
		if strings.EqualFold(d.Code, name) || strings.EqualFold(d.Slug, name) || strings.EqualFold(d.Title, name) {
			return d, true
		}
	}
	return Def{}, false
}

// Slugs lists every level slug, sorted.
func Slugs() []string {
	var out []string
	for _, d := range All() {
		out = append(out, d.Slug)
	}
	sort.Strings(out)
	return out
}

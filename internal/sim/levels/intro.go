package levels

import (
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/engine"
	"gridadventure/internal/sim/grid"
)

// TurnLimit applies to every intro level.
const TurnLimit = 50

type builder struct {
	f *adventure.Factory
	l *grid.Level
}

func newLevel(f *adventure.Factory, w, h int, seed int64) *builder {
	l := grid.New(w, h, grid.Meta{
		Movement:  engine.MovementCardinal,
		Objective: engine.ObjectiveCollectGemsAndExit,
		Seed:      seed,
		TurnLimit: TurnLimit,
	})
	b := &builder{f: f, l: l}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l.Add(grid.Position{X: x, Y: y}, f.Floor())
		}
	}
	return b
}

func (b *builder) wall(x, y int) { b.l.Add(grid.Position{X: x, Y: y}, b.f.Wall()) }

func (b *builder) border() {
	w, h := b.l.Width, b.l.Height
	for x := 0; x < w; x++ {
		b.wall(x, 0)
		b.wall(x, h-1)
	}
	for y := 0; y < h; y++ {
		b.wall(0, y)
		b.wall(w-1, y)
	}
}

func (b *builder) walls(ps ...[2]int) {
	for _, p := range ps {
		b.wall(p[0], p[1])
	}
}

func (b *builder) put(x, y int, o ...adventure.Specialized) {
	for _, v := range o {
		b.l.Add(grid.Position{X: x, Y: y}, v)
	}
}

func basicMovement(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 7, 5
	b := newLevel(f, w, h, seed)
	b.put(1, h/2, f.Agent(0))
	b.put(w-2, h/2, f.Exit())
	for y := 0; y < h; y++ {
		if y != h/2 {
			b.wall(w/2, y)
		}
	}
	return b.l
}

func mazeTurns(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 9, 7
	b := newLevel(f, w, h, seed)
	b.border()
	for x := 2; x < w-2; x++ {
		b.wall(x, 2)
	}
	for x := 2; x < w-2; x++ {
		if x != w/2 {
			b.wall(x, h-3)
		}
	}
	b.put(1, 1, f.Agent(0))
	b.put(w-2, h-2, f.Exit())
	return b.l
}

func optionalCoin(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 9, 7
	b := newLevel(f, w, h, seed)
	b.border()
	b.wall(1, 2)
	b.wall(3, 3)
	for x := 3; x < w-2; x++ {
		b.wall(x, 2)
	}
	for x := 2; x < w-2; x++ {
		if x != w/2 {
			b.wall(x, h-3)
		}
	}
	b.put(1, 1, f.Agent(0))
	b.put(w-2, h-2, f.Exit())
	for x := 1; x < w-2; x++ {
		b.put(x, h-2, f.Coin())
	}
	return b.l
}

func requiredOne(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 9, 7
	b := newLevel(f, w, h, seed)
	b.border()
	midx, midy := w/2, h/2
	b.put(1, midy, f.Agent(0))
	b.put(w-2, midy, f.Exit())
	b.put(midx-1, midy-1, f.Gem())
	return b.l
}

func requiredMultiple(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 11, 9
	b := newLevel(f, w, h, seed)
	b.border()
	midx, midy := w/2, h/2
	for x := 1; x < w-1; x++ {
		for y := 1; y < h-1; y++ {
			if x != midx && y != midy {
				b.wall(x, y)
			}
		}
	}
	b.put(1, midy, f.Agent(0))
	b.put(w-2, midy, f.Exit())
	b.put(midx, 1, f.Gem())
	b.put(midx, h-2, f.Gem())
	return b.l
}

func keyDoor(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 11, 9
	b := newLevel(f, w, h, seed)
	for y := 0; y < h; y++ {
		if y != h/2 {
			b.wall(w/2, y)
		}
	}
	b.put(1, h/2, f.Agent(0))
	b.put(w-2, h/2, f.Exit())
	b.put(2, h/2-1, f.Key(""))
	b.put(w/2, h/2, f.LockedDoor(""))
	return b.l
}

func hazardDetour(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 11, 9
	b := newLevel(f, w, h, seed)
	b.put(1, h/2, f.Agent(3))
	b.put(w-2, h/2, f.Exit())
	b.put(w/2-1, h/2, f.Lava())
	b.put(w-3, h/2, f.Lava())
	for y := 1; y < h-1; y++ {
		if y != h/2 {
			b.wall(w/2-1, y)
		}
	}
	for y := 2; y < h-2; y++ {
		if y != h/2 {
			b.wall(w-3, y)
		}
	}
	return b.l
}

// portalShortcut walls the grid in half; the only way across is the portal
// pair.
func portalShortcut(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 7, 7
	b := newLevel(f, w, h, seed)
	for y := 0; y < h; y++ {
		b.wall(w/2, y)
	}
	in, out := f.PortalPair()
	b.put(1, h/2+1, f.Agent(0))
	b.put(2, 1, in)
	b.put(w-1, h/2, out)
	b.put(w-2, h-2, f.Exit())
	return b.l
}

func pushableBox(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 11, 9
	b := newLevel(f, w, h, seed)
	for y := 0; y < h; y++ {
		if y != h/2 {
			b.wall(w/2, y)
		}
	}
	b.put(1, h/2, f.Agent(0))
	b.put(w-2, h/2, f.Exit())
	b.put(w/2-1, h/2, f.Box())
	return b.l
}

// movingBox has a box bouncing between its start and the wall two cells
// below it.
func movingBox(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 7, 7
	b := newLevel(f, w, h, seed)
	b.put(1, h/2, f.Agent(0))
	b.put(w-2, h/2, f.Exit())
	b.put(w/2, h/2, f.MovingBox(component.DirDown))
	b.wall(w/2, h/2+2)
	return b.l
}

func enemyPatrol(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 9, 7
	b := newLevel(f, w, h, seed)
	b.border()
	b.put(1, h/2, f.Agent(0))
	b.put(w-2, h/2, f.Exit())
	b.put(3, 1, f.Robot(component.DirDown))
	b.put(5, h-2, f.Robot(component.DirUp))
	return b.l
}

func powerShield(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 11, 9
	b := newLevel(f, w, h, seed)
	b.put(1, h/2, f.Agent(2))
	b.put(w-2, h/2, f.Exit())
	for y := 0; y < h; y++ {
		if y != h/2 {
			b.wall(w/2, y)
		}
	}
	b.put(2, h/2-3, f.ShieldPowerUp())
	b.put(w/2, h/2, f.Lava())
	return b.l
}

func powerGhost(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 13, 9
	b := newLevel(f, w, h, seed)
	b.put(1, h/2, f.Agent(0))
	b.put(w-2, h/2, f.Exit())
	for y := 0; y < h; y++ {
		b.wall(w/2, y)
	}
	b.put(2, h/2-3, f.PhasingPowerUp())
	return b.l
}

func powerBoots(f *adventure.Factory, seed int64) *grid.Level {
	w, h := 13, 9
	b := newLevel(f, w, h, seed)
	b.put(1, h/2, f.Agent(1))
	b.put(w-2, h/2, f.Exit())
	for y := 0; y < h; y++ {
		if y != h/2 && y != h/2+1 {
			b.wall(w/2, y)
			b.wall(w/2+1, y)
			b.wall(w/2+2, y)
		}
	}
	b.put(w/2-1, h/2+1, f.SpeedPowerUp())
	return b.l
}

func combinedMechanics(f *adventure.Factory, seed int64) *grid.Level {
	b := newLevel(f, 7, 7, seed)
	b.put(0, 0, f.Agent(0))
	b.walls(
		[2]int{3, 0}, [2]int{5, 0},
		[2]int{1, 1},
		[2]int{1, 2}, [2]int{3, 2}, [2]int{4, 2}, [2]int{6, 2},
		[2]int{0, 3}, [2]int{3, 3}, [2]int{5, 3},
		[2]int{1, 4},
		[2]int{3, 5}, [2]int{5, 5}, [2]int{6, 5},
		[2]int{1, 6}, [2]int{3, 6},
	)
	b.put(6, 3, f.Gem())
	b.put(0, 4, f.Key(""))
	b.put(3, 4, f.LockedDoor(""))
	b.put(6, 6, f.Exit())
	return b.l
}

func boss(f *adventure.Factory, seed int64) *grid.Level {
	b := newLevel(f, 7, 7, seed)
	b.put(0, 0, f.Agent(1))
	b.put(0, 6, f.Exit())
	b.walls(
		[2]int{3, 0}, [2]int{0, 1}, [2]int{1, 1}, [2]int{3, 1}, [2]int{5, 1},
		[2]int{3, 2}, [2]int{5, 2}, [2]int{1, 3}, [2]int{1, 4}, [2]int{3, 4},
		[2]int{5, 4}, [2]int{1, 5}, [2]int{2, 5}, [2]int{3, 5}, [2]int{5, 5},
	)
	b.put(2, 1, f.Box())
	b.put(0, 5, f.Gem())
	b.put(6, 3, f.Gem())
	for _, p := range [][2]int{{1, 2}, {4, 2}, {3, 3}, {6, 5}, {2, 6}, {3, 6}} {
		b.put(p[0], p[1], f.Coin())
	}
	b.put(0, 2, f.SpeedPowerUp())
	b.put(2, 3, f.PhasingPowerUp())
	b.put(4, 0, f.ShieldPowerUp())
	b.put(4, 4, f.Key(""))
	b.put(1, 6, f.LockedDoor(""))
	b.put(5, 3, f.Lava())
	return b.l
}

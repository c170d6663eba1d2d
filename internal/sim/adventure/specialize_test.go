package adventure

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/engine"
	"gridadventure/internal/sim/entity"
	"gridadventure/internal/sim/grid"
)

func at(x, y int) grid.Position { return grid.Position{X: x, Y: y} }

func sandbox() *grid.Level {
	return grid.New(10, 10, grid.Meta{Movement: engine.MovementCardinal, Objective: engine.ObjectiveExit, Seed: 1})
}

func TestSandboxScenarios(t *testing.T) {
	l := sandbox()
	agent := generic("human", func(e *entity.Entity) {
		e.Agent = &component.Agent{}
		e.Health = &component.Health{Current: 5, Max: 5}
	})
	locked := generic("door", func(e *entity.Entity) { e.Locked = &component.Locked{KeyID: "k"} })
	open := generic("door", nil)
	gem := generic("core", func(e *entity.Entity) {
		e.Collectible = &component.Collectible{}
		e.Requirable = &component.Requirable{}
	})
	coin := generic("coin", func(e *entity.Entity) { e.Collectible = &component.Collectible{} })
	mbox := generic("box", func(e *entity.Entity) { e.Moving = mv() })
	box := generic("box", func(e *entity.Entity) { e.Pushable = &component.Pushable{} })
	p1, p2 := NewPortalPair()

	l.Add(at(0, 0), agent)
	l.Add(at(7, 0), locked)
	l.Add(at(8, 0), open)
	l.Add(at(5, 0), gem)
	l.Add(at(3, 0), coin)
	l.Add(at(4, 4), mbox)
	l.Add(at(6, 6), box)
	l.Add(at(0, 1), p1)
	l.Add(at(1, 1), p2)

	out, idx := SpecializeIndexed(l)

	want := map[grid.Position]Kind{
		at(0, 0): KindAgent,
		at(7, 0): KindLockedDoor,
		at(8, 0): KindUnlockedDoor,
		at(5, 0): KindGem,
		at(3, 0): KindCoin,
		at(4, 4): KindMovingBox,
		at(6, 6): KindBox,
		at(0, 1): KindPortal,
		at(1, 1): KindPortal,
	}
	for p, k := range want {
		c := out.At(p)
		if len(c) != 1 {
			t.Fatalf("%v: got %d occupants want 1", p, len(c))
		}
		if got := KindOf(c[0]); got != k {
			t.Fatalf("%v: got %v want %v", p, got, k)
		}
	}
	if out.At(at(6, 6))[0].Generic().Moving != nil {
		t.Fatalf("box carries movement")
	}

	a := out.At(at(0, 1))[0].(*Portal)
	b := out.At(at(1, 1))[0].(*Portal)
	if pa, ok := idx.Pair(a); !ok || pa != b {
		t.Fatalf("index pair of a: got %v,%v", pa, ok)
	}
	if pb, ok := idx.Pair(b); !ok || pb != a {
		t.Fatalf("index pair of b: got %v,%v", pb, ok)
	}

	back, idx2 := FromStateIndexed(ToState(out))
	ra, ok1 := back.At(at(0, 1))[0].(*Portal)
	rb, ok2 := back.At(at(1, 1))[0].(*Portal)
	if !ok1 || !ok2 {
		t.Fatalf("portals lost their variant in the round trip")
	}
	if ra.Pair != rb.ID || rb.Pair != ra.ID {
		t.Fatalf("pairing not symmetric after round trip: %v->%v %v->%v", ra.ID, ra.Pair, rb.ID, rb.Pair)
	}
	if q, ok := idx2.Pair(ra); !ok || q != rb {
		t.Fatalf("round-trip index pair: got %v,%v", q, ok)
	}
}

func TestSpecializeCompletenessAndPurity(t *testing.T) {
	l := grid.New(4, 3, grid.Meta{Turn: 3, Score: -2, TurnLimit: 9})
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			l.Add(at(x, y), generic("floor", func(e *entity.Entity) { e.Cost = &component.Cost{Amount: 1} }))
		}
	}
	l.Add(at(1, 1), generic("tree", nil), generic("lava", func(e *entity.Entity) { e.Damage = &component.Damage{Amount: 2} }))
	l.Add(at(3, 2), NewWall())
	before := snapshotCells(l)

	out := Specialize(l)

	if out.Width != l.Width || out.Height != l.Height || out.Meta != l.Meta {
		t.Fatalf("dimensions or metadata changed")
	}
	l.Walk(func(p grid.Position, c grid.Cell) {
		if got := len(out.At(p)); got != len(c) {
			t.Fatalf("%v: got %d occupants want %d", p, got, len(c))
		}
	})
	if got := KindOf(out.At(at(1, 1))[0]); got != KindFloor {
		t.Fatalf("cell order: first occupant is %v", got)
	}
	if got := out.At(at(1, 1))[1]; got != l.At(at(1, 1))[1] {
		t.Fatalf("unclassified occupant was replaced")
	}
	if got := KindOf(out.At(at(1, 1))[2]); got != KindLava {
		t.Fatalf("cell order: third occupant is %v", got)
	}
	if got := out.At(at(3, 2))[1]; got != l.At(at(3, 2))[1] {
		t.Fatalf("already specialized wall was replaced")
	}
	after := snapshotCells(l)
	for p, objs := range before {
		for i, o := range objs {
			if after[p][i] != o {
				t.Fatalf("input level mutated at %v", p)
			}
		}
	}
}

func snapshotCells(l *grid.Level) map[grid.Position][]entity.Object {
	out := map[grid.Position][]entity.Object{}
	l.Walk(func(p grid.Position, c grid.Cell) {
		out[p] = append([]entity.Object(nil), c...)
	})
	return out
}

func TestNestedPreservation(t *testing.T) {
	key := generic("key", func(e *entity.Entity) { e.Key = &component.Key{KeyID: "k"} })
	gem := generic("gem", func(e *entity.Entity) {
		e.Collectible = &component.Collectible{}
		e.Requirable = &component.Requirable{}
	})
	odd := generic("feather", nil)
	boots := generic("boots", func(e *entity.Entity) {
		e.Collectible = &component.Collectible{}
		e.Speed = &component.Speed{Multiplier: 2}
	})
	agent := generic("human", func(e *entity.Entity) {
		e.Agent = &component.Agent{}
		e.InventoryList = []entity.Object{key, gem, odd}
		e.StatusList = []entity.Object{boots}
	})
	l := grid.New(2, 2, grid.Meta{})
	l.Add(at(1, 1), agent)

	out := Specialize(l)
	a, ok := out.At(at(1, 1))[0].(*Agent)
	if !ok {
		t.Fatalf("got %T want *Agent", out.At(at(1, 1))[0])
	}
	wantInv := []Kind{KindKey, KindGem, KindNone}
	if len(a.Inventory) != len(wantInv) {
		t.Fatalf("inventory length: got %d want %d", len(a.Inventory), len(wantInv))
	}
	for i, k := range wantInv {
		if got := KindOf(a.Inventory[i]); got != k {
			t.Fatalf("inventory[%d]: got %v want %v", i, got, k)
		}
	}
	if len(a.Status) != 1 || KindOf(a.Status[0]) != KindSpeedPowerUp {
		t.Fatalf("status: %v", a.Status)
	}
	if a.Inventory[2] != entity.Object(odd) {
		t.Fatalf("unclassified member replaced")
	}
	if len(agent.InventoryList) != 3 || agent.InventoryList[0] != entity.Object(key) {
		t.Fatalf("source inventory mutated")
	}
}

func TestEmptyNestedListsStayEmpty(t *testing.T) {
	l := grid.New(1, 1, grid.Meta{})
	l.Add(at(0, 0), generic("human", func(e *entity.Entity) { e.Agent = &component.Agent{} }))
	a := Specialize(l).At(at(0, 0))[0].(*Agent)
	if len(a.Inventory) != 0 || len(a.Status) != 0 {
		t.Fatalf("empty lists grew: %v %v", a.Inventory, a.Status)
	}
}

func TestSharedObjectSpecializedOnce(t *testing.T) {
	gem := generic("core", func(e *entity.Entity) { e.Collectible = &component.Collectible{} })
	agent := generic("human", func(e *entity.Entity) {
		e.Agent = &component.Agent{}
		e.InventoryList = []entity.Object{gem}
	})
	l := grid.New(2, 1, grid.Meta{})
	l.Add(at(0, 0), agent)
	l.Add(at(1, 0), gem)

	out, idx := SpecializeIndexed(l)
	inCell := out.At(at(1, 0))[0]
	inBag := out.At(at(0, 0))[0].(*Agent).Inventory[0]
	if inCell != inBag {
		t.Fatalf("one source object produced two specialized instances")
	}
	if got, ok := idx.Of(gem); !ok || got != inCell {
		t.Fatalf("index Of: got %v,%v", got, ok)
	}
	if got, ok := idx.Resolve(gem.ID); !ok || got != inCell {
		t.Fatalf("index Resolve: got %v,%v", got, ok)
	}
	if idx.Len() != 2 {
		t.Fatalf("index size: got %d want 2", idx.Len())
	}
}

func TestSpecializedAgentCopiedNotMutated(t *testing.T) {
	key := generic("key", func(e *entity.Entity) { e.Key = &component.Key{KeyID: "k"} })
	a := NewAgent(3)
	a.Inventory = []entity.Object{key}
	l := grid.New(1, 1, grid.Meta{})
	l.Add(at(0, 0), a)

	got := Specialize(l).At(at(0, 0))[0].(*Agent)
	if got == a {
		t.Fatalf("agent with generic members was reused instead of copied")
	}
	if KindOf(got.Inventory[0]) != KindKey {
		t.Fatalf("member not specialized")
	}
	if a.Inventory[0] != entity.Object(key) {
		t.Fatalf("original agent mutated")
	}

	l2 := grid.New(1, 1, grid.Meta{})
	clean := NewAgent(3)
	clean.Inventory = []entity.Object{NewKey("k")}
	l2.Add(at(0, 0), clean)
	if Specialize(l2).At(at(0, 0))[0] != entity.Object(clean) {
		t.Fatalf("fully specialized agent should pass through")
	}
}

func TestSelfContainingAgentTerminates(t *testing.T) {
	agent := generic("human", func(e *entity.Entity) { e.Agent = &component.Agent{} })
	agent.InventoryList = []entity.Object{agent}
	l := grid.New(1, 1, grid.Meta{})
	l.Add(at(0, 0), agent)

	a := Specialize(l).At(at(0, 0))[0].(*Agent)
	if len(a.Inventory) != 1 || KindOf(a.Inventory[0]) != KindAgent {
		t.Fatalf("cycle member: %v", a.Inventory)
	}
}

func TestFallbackContainerMembersSpecialized(t *testing.T) {
	coin := generic("coin", func(e *entity.Entity) { e.Collectible = &component.Collectible{} })
	chest := generic("chest", func(e *entity.Entity) { e.InventoryList = []entity.Object{coin} })
	l := grid.New(1, 1, grid.Meta{})
	l.Add(at(0, 0), chest)

	got := Specialize(l).At(at(0, 0))[0]
	g, ok := got.(*entity.Entity)
	if !ok || KindOf(got) != KindNone {
		t.Fatalf("chest should stay generic, got %T", got)
	}
	if KindOf(g.InventoryList[0]) != KindCoin {
		t.Fatalf("member of unclassified container not specialized")
	}
	if chest.InventoryList[0] != entity.Object(coin) {
		t.Fatalf("source container mutated")
	}
}

func TestSpecializerLogsUnclassified(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	l := grid.New(3, 1, grid.Meta{})
	l.Add(at(2, 0), generic("tree", nil))
	l.Add(at(0, 0), NewFloor())

	_, idx := Specializer{Log: logger}.Specialize(l)
	if idx.Unclassified() != 1 {
		t.Fatalf("unclassified: got %d want 1", idx.Unclassified())
	}
	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "specialize: no variant matched" {
			found = true
			if e.Data["x"] != 2 || e.Data["appearance"] != "tree" {
				t.Fatalf("log fields: %v", e.Data)
			}
		}
	}
	if !found {
		t.Fatalf("no debug entry for the unclassified entity; got %d entries", len(hook.AllEntries()))
	}
}

func TestStepRespecializes(t *testing.T) {
	l := grid.New(3, 1, grid.Meta{Movement: engine.MovementCardinal, Objective: engine.ObjectiveExit})
	l.Add(at(0, 0), NewFloor(), NewAgent(0))
	l.Add(at(1, 0), NewFloor(), NewCoin())
	l.Add(at(2, 0), NewFloor(), NewExit())
	before := l.Count()

	next := Step(l, engine.ActionRight)
	if next.Turn != 1 {
		t.Fatalf("turn: got %d want 1", next.Turn)
	}
	if _, obj, ok := next.Find(func(o entity.Object) bool { return KindOf(o) == KindAgent }); !ok {
		t.Fatalf("agent lost")
	} else if p, _, _ := next.Find(func(o entity.Object) bool { return o == obj }); p != at(1, 0) {
		t.Fatalf("agent at %v want (1,0)", p)
	}
	if l.Count() != before || KindOf(l.At(at(0, 0))[1]) != KindAgent {
		t.Fatalf("Step mutated its input")
	}

	next = Step(next, engine.ActionPickUp)
	_, obj, _ := next.Find(func(o entity.Object) bool { return KindOf(o) == KindAgent })
	a := obj.(*Agent)
	if len(a.Inventory) != 1 || KindOf(a.Inventory[0]) != KindCoin {
		t.Fatalf("coin not in specialized inventory: %v", a.Inventory)
	}
	if next.Score != 5-3-3 {
		t.Fatalf("score: got %d want %d", next.Score, 5-3-3)
	}

	next = Step(next, engine.ActionRight)
	if !next.Win {
		t.Fatalf("expected win on exit, message %q", next.Message)
	}
}

func TestRoundTripIsFixedPoint(t *testing.T) {
	l := grid.New(3, 2, grid.Meta{Movement: engine.MovementCardinal})
	a := NewAgent(4)
	a.Inventory = []entity.Object{NewKey("blue"), NewGem()}
	a.Status = []entity.Object{NewShieldPowerUp()}
	p, q := NewPortalPair()
	l.Add(at(0, 0), NewFloor(), a)
	l.Add(at(1, 0), NewLockedDoor("blue"))
	l.Add(at(2, 0), p)
	l.Add(at(0, 1), NewRobot(component.DirUp), NewLava())
	l.Add(at(1, 1), NewMovingBox(0), NewSpeedPowerUp())
	l.Add(at(2, 1), q, NewPhasingPowerUp())

	once := ToState(l)
	twice := ToState(RoundTrip(l))
	if once.Digest() != twice.Digest() {
		t.Fatalf("round trip is not a fixed point")
	}
	back := RoundTrip(l)
	back.Walk(func(pos grid.Position, c grid.Cell) {
		for i, o := range c {
			if KindOf(o) != KindOf(l.At(pos)[i]) {
				t.Fatalf("%v[%d]: got %v want %v", pos, i, KindOf(o), KindOf(l.At(pos)[i]))
			}
		}
	})
}

func TestSetHealthAndDirection(t *testing.T) {
	a := NewAgent(5)
	old := a.Health
	a.SetHealth(2)
	if a.Health == old || old.Current != 5 || a.Health.Current != 2 || a.Health.Max != 2 {
		t.Fatalf("SetHealth must replace the component: old %+v new %+v", old, a.Health)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("SetHealth without health should panic")
		}
	}()
	r := NewRobot(component.DirLeft)
	r.SetDirection(component.DirUp)
	if r.Moving.Direction != component.DirUp || r.Moving.Speed != 1 {
		t.Fatalf("robot direction: %+v", r.Moving)
	}
	(&Agent{}).SetHealth(1)
}

package state

import (
	"testing"

	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/entity"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/ids"
)

func appearance(name string) *component.Appearance {
	return &component.Appearance{Name: name}
}

func sampleLevel() (*grid.Level, *entity.Entity, *entity.Entity, *entity.Entity) {
	l := grid.New(3, 2, grid.Meta{Movement: "cardinal", Objective: "exit", Seed: 7, TurnLimit: 50})

	floor := entity.New()
	floor.Appearance = appearance("floor")
	floor.Cost = &component.Cost{Amount: 3}

	key := entity.New()
	key.Appearance = appearance("key")
	key.Collectible = &component.Collectible{}
	key.Key = &component.Key{KeyID: "red"}

	agent := entity.New()
	agent.Agent = &component.Agent{}
	agent.Appearance = appearance("human")
	agent.Health = &component.Health{Current: 5, Max: 5}
	agent.Inventory = &component.Inventory{Items: []ids.ID{key.ID}}
	agent.InventoryList = []entity.Object{key}

	pa := entity.New()
	pb := entity.New()
	pa.Appearance = appearance("portal")
	pb.Appearance = appearance("portal")
	pa.Portal = &component.Portal{Pair: pb.ID}
	pb.Portal = &component.Portal{Pair: pa.ID}

	l.Add(grid.Position{X: 2, Y: 1}, floor)
	l.Add(grid.Position{X: 0, Y: 0}, agent)
	l.Add(grid.Position{X: 1, Y: 0}, pa)
	l.Add(grid.Position{X: 0, Y: 1}, pb)
	return l, agent, pa, pb
}

func TestFromLevelRenumbersRowMajor(t *testing.T) {
	l, _, _, _ := sampleLevel()
	s := FromLevel(l)

	if got := len(s.Entities); got != 5 {
		t.Fatalf("entities: got %d want 5", got)
	}
	// agent(0,0)=1, key nested=2, portal(1,0)=3, portal(0,1)=4, floor(2,1)=5
	if !s.Agent.Has(1) {
		t.Fatalf("agent should be id 1")
	}
	if s.Key[2].KeyID != "red" {
		t.Fatalf("key should be id 2, got %+v", s.Key)
	}
	if _, ok := s.Position[2]; ok {
		t.Fatalf("nested key must not have a position")
	}
	if got := s.Inventory[1].Items; len(got) != 1 || got[0] != 2 {
		t.Fatalf("inventory: got %v want [2]", got)
	}
	if s.Portal[3].Pair != 4 || s.Portal[4].Pair != 3 {
		t.Fatalf("portal pairs: got %+v", s.Portal)
	}
	if s.Position[5] != (grid.Position{X: 2, Y: 1}) {
		t.Fatalf("floor position: got %v", s.Position[5])
	}
	if s.Movement != "cardinal" || s.Seed != 7 || s.TurnLimit != 50 {
		t.Fatalf("meta not carried: %+v", s.Meta())
	}
}

func TestToLevelRestoresNestingAndPairs(t *testing.T) {
	l, _, _, _ := sampleLevel()
	s := FromLevel(l)
	back := ToLevel(s)

	if back.Count() != l.Count() {
		t.Fatalf("count: got %d want %d", back.Count(), l.Count())
	}
	c := back.At(grid.Position{X: 0, Y: 0})
	if len(c) != 1 {
		t.Fatalf("agent cell: got %d occupants", len(c))
	}
	a := c[0].Generic()
	if a.Agent == nil || len(a.InventoryList) != 1 || a.InventoryList[0].Generic().Key == nil {
		t.Fatalf("agent inventory not restored: %+v", a)
	}
	pa := back.At(grid.Position{X: 1, Y: 0})[0].Generic()
	pb := back.At(grid.Position{X: 0, Y: 1})[0].Generic()
	if pa.Portal.Pair != pb.ID || pb.Portal.Pair != pa.ID {
		t.Fatalf("pairs: %v->%v %v->%v", pa.ID, pa.Portal.Pair, pb.ID, pb.Portal.Pair)
	}

	again := FromLevel(back)
	if again.Digest() != s.Digest() {
		t.Fatalf("round trip changed digest")
	}
}

func TestFromLevelDropsDanglingPair(t *testing.T) {
	l := grid.New(1, 1, grid.Meta{})
	p := entity.New()
	p.Portal = &component.Portal{Pair: ids.ID(999999999)}
	l.Add(grid.Position{}, p)

	s := FromLevel(l)
	if got := s.Portal[1].Pair; got != 0 {
		t.Fatalf("dangling pair: got %v want 0", got)
	}
}

func TestSharedObjectKeepsOneRow(t *testing.T) {
	l := grid.New(2, 1, grid.Meta{})
	gem := entity.New()
	gem.Collectible = &component.Collectible{}
	a := entity.New()
	a.Agent = &component.Agent{}
	a.InventoryList = []entity.Object{gem}
	b := entity.New()
	b.Agent = &component.Agent{}
	b.InventoryList = []entity.Object{gem}
	l.Add(grid.Position{X: 0}, a)
	l.Add(grid.Position{X: 1}, b)

	s := FromLevel(l)
	if got := len(s.Entities); got != 3 {
		t.Fatalf("entities: got %d want 3", got)
	}
	if s.Inventory[1].Items[0] != s.Inventory[3].Items[0] {
		t.Fatalf("shared member renumbered twice: %+v", s.Inventory)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l, _, _, _ := sampleLevel()
	s := FromLevel(l)
	c := s.Clone()

	c.Health[1] = component.Health{Current: 1, Max: 5}
	inv := c.Inventory[1]
	inv.Items[0] = 99
	c.Position[5] = grid.Position{}
	c.Turn = 3

	if s.Health[1].Current != 5 {
		t.Fatalf("clone shares health store")
	}
	if s.Inventory[1].Items[0] != 2 {
		t.Fatalf("clone shares inventory slice")
	}
	if s.Position[5] != (grid.Position{X: 2, Y: 1}) {
		t.Fatalf("clone shares position store")
	}
	if s.Turn != 0 {
		t.Fatalf("clone shares meta")
	}
}

func TestRemoveAndAt(t *testing.T) {
	l, _, _, _ := sampleLevel()
	s := FromLevel(l)
	if got := s.At(grid.Position{X: 1, Y: 0}); len(got) != 1 || got[0] != 3 {
		t.Fatalf("At: got %v want [3]", got)
	}
	s.Remove(3)
	if s.Entities.Has(3) || s.Portal.Has(3) || s.Position.Has(3) {
		t.Fatalf("Remove left rows behind")
	}
	if id, ok := s.AgentID(); !ok || id != 1 {
		t.Fatalf("AgentID: got %v,%v", id, ok)
	}
}

func TestDigestStable(t *testing.T) {
	l, _, _, _ := sampleLevel()
	a := FromLevel(l)
	b := FromLevel(l)
	if a.Digest() != b.Digest() {
		t.Fatalf("digest differs for identical exports")
	}
	b.Score = 1
	if a.Digest() == b.Digest() {
		t.Fatalf("digest ignores score")
	}
}

func TestClonesWithEqualIDsKeepTheirRows(t *testing.T) {
	l := grid.New(3, 1, grid.Meta{})
	w := entity.New()
	w.Appearance = appearance("wall")
	w.Blocking = &component.Blocking{}
	c := w.Clone()
	if c.ID != w.ID {
		t.Fatalf("clone id: got %v want %v", c.ID, w.ID)
	}
	l.Add(grid.Position{X: 0}, w)
	l.Add(grid.Position{X: 2}, c)

	s := FromLevel(l)
	if got := len(s.Entities); got != 2 {
		t.Fatalf("entities: got %d want 2", got)
	}
	if s.Position[1] != (grid.Position{X: 0}) || s.Position[2] != (grid.Position{X: 2}) {
		t.Fatalf("positions: %+v", s.Position)
	}
	if got := ToLevel(s).Count(); got != 2 {
		t.Fatalf("occupants after import: got %d want 2", got)
	}
}

func TestPortalPairFollowsFirstHolderOfAnID(t *testing.T) {
	l := grid.New(3, 1, grid.Meta{})
	pa := entity.New()
	pb := entity.New()
	pa.Portal = &component.Portal{Pair: pb.ID}
	pb.Portal = &component.Portal{Pair: pa.ID}
	dup := pb.Clone()
	l.Add(grid.Position{X: 0}, pa)
	l.Add(grid.Position{X: 1}, pb)
	l.Add(grid.Position{X: 2}, dup)

	s := FromLevel(l)
	if got := len(s.Entities); got != 3 {
		t.Fatalf("entities: got %d want 3", got)
	}
	if s.Portal[1].Pair != 2 || s.Portal[2].Pair != 1 || s.Portal[3].Pair != 1 {
		t.Fatalf("pairs: %+v", s.Portal)
	}
}

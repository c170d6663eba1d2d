package ws

import (
	"sort"

	"gridadventure/internal/protocol"
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/catalogs"
	"gridadventure/internal/sim/encoding"
	"gridadventure/internal/sim/entity"
	"gridadventure/internal/sim/grid"
)

// BuildFrame renders a specialized level as a FRAME message. Cells list
// their occupants bottom layer first.
func BuildFrame(l *grid.Level, seq int, assets *catalogs.AssetCatalog) protocol.FrameMsg {
	ls := encoding.EncodeLayers(l)
	f := protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		Seq:             seq,
		Turn:            l.Turn,
		Score:           l.Score,
		Win:             l.Win,
		Lose:            l.Lose,
		Message:         l.Message,
		Digest:          adventure.ToState(l).Digest(),
		Layers:          protocol.LayersObs{Encoding: "RLE", Base: ls.Base, Top: ls.Top},
		Cells:           []protocol.CellObs{},
	}

	l.Walk(func(p grid.Position, c grid.Cell) {
		if len(c) == 0 {
			return
		}
		objs := append([]entity.Object(nil), c...)
		sort.SliceStable(objs, func(i, j int) bool {
			return objs[i].Generic().Priority() > objs[j].Generic().Priority()
		})
		cell := protocol.CellObs{Pos: [2]int{p.X, p.Y}}
		for _, o := range objs {
			cell.Entities = append(cell.Entities, entityObs(o, assets))
		}
		f.Cells = append(f.Cells, cell)

		for _, o := range c {
			if a, ok := o.(*adventure.Agent); ok && f.Agent == nil {
				f.Agent = agentObs(a, p, assets)
			}
		}
	})
	return f
}

func entityObs(o entity.Object, assets *catalogs.AssetCatalog) protocol.EntityObs {
	out := protocol.EntityObs{
		ID:         o.EntityID().String(),
		Kind:       adventure.KindOf(o).String(),
		Appearance: o.Generic().AppearanceName(),
		Properties: catalogs.Properties(o),
	}
	if assets != nil {
		out.Asset, _ = assets.AssetFor(o)
	}
	return out
}

func agentObs(a *adventure.Agent, p grid.Position, assets *catalogs.AssetCatalog) *protocol.AgentObs {
	out := &protocol.AgentObs{
		ID:        a.EntityID().String(),
		Pos:       [2]int{p.X, p.Y},
		Dead:      a.Dead != nil,
		Inventory: []protocol.EntityObs{},
		Status:    []protocol.EntityObs{},
	}
	if a.Health != nil {
		out.Health, out.MaxHealth = a.Health.Current, a.Health.Max
	}
	for _, m := range a.Inventory {
		out.Inventory = append(out.Inventory, entityObs(m, assets))
	}
	for _, m := range a.Status {
		out.Status = append(out.Status, entityObs(m, assets))
	}
	return out
}

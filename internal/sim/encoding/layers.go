package encoding

import (
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/entity"
	"gridadventure/internal/sim/grid"
)

// Layers is a compact view of a specialized level: for every cell, the kind
// of its background occupant and the kind drawn on top of everything else.
type Layers struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Base   string `json:"base"`
	Top    string `json:"top"`
}

// Flatten returns the raw base and top layers of l, row-major.
func Flatten(l *grid.Level) (base, top []adventure.Kind) {
	base = make([]adventure.Kind, 0, l.Width*l.Height)
	top = make([]adventure.Kind, 0, l.Width*l.Height)
	l.Walk(func(_ grid.Position, c grid.Cell) {
		base = append(base, pick(c, true))
		top = append(top, pick(c, false))
	})
	return base, top
}

// pick returns the kind of the occupant with the lowest priority value among
// background (or non-background) occupants. The earliest occupant wins ties.
func pick(c grid.Cell, background bool) adventure.Kind {
	var best entity.Object
	bestPri := 0
	for _, o := range c {
		g := o.Generic()
		if g.Appearance == nil || g.Appearance.Background != background {
			continue
		}
		if best == nil || g.Appearance.Priority < bestPri {
			best, bestPri = o, g.Appearance.Priority
		}
	}
	return adventure.KindOf(best)
}

func EncodeLayers(l *grid.Level) Layers {
	base, top := Flatten(l)
	return Layers{Width: l.Width, Height: l.Height, Base: EncodeKinds(base), Top: EncodeKinds(top)}
}

// Decode expands both layers.
func (ls Layers) Decode() (base, top []adventure.Kind, err error) {
	n := ls.Width * ls.Height
	if base, err = DecodeKinds(ls.Base, n); err != nil {
		return nil, nil, err
	}
	if top, err = DecodeKinds(ls.Top, n); err != nil {
		return nil, nil, err
	}
	return base, top, nil
}

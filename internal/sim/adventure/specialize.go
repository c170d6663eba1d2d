package adventure

import (
	"github.com/sirupsen/logrus"

	"gridadventure/internal/sim/entity"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/ids"
)

// Index maps entity ids and source objects to their specialized
// counterparts for one traversal.
type Index struct {
	byID     map[ids.ID]entity.Object
	bySource map[entity.Object]entity.Object
	fallback int
}

func newIndex() *Index {
	return &Index{
		byID:     map[ids.ID]entity.Object{},
		bySource: map[entity.Object]entity.Object{},
	}
}

// Resolve returns the specialized object carrying id.
func (x *Index) Resolve(id ids.ID) (entity.Object, bool) {
	if id == 0 {
		return nil, false
	}
	o, ok := x.byID[id]
	return o, ok
}

// Of returns what src became during the traversal.
func (x *Index) Of(src entity.Object) (entity.Object, bool) {
	o, ok := x.bySource[src]
	return o, ok
}

// Pair resolves the partner of p. Pairs that point outside the traversed
// level, or at something that is not a portal, do not resolve.
func (x *Index) Pair(p *Portal) (*Portal, bool) {
	o, ok := x.Resolve(p.Pair)
	if !ok {
		return nil, false
	}
	q, ok := o.(*Portal)
	return q, ok
}

// Len is the number of distinct objects visited, nested members included.
func (x *Index) Len() int { return len(x.byID) }

// Unclassified is how many visited objects matched no rule.
func (x *Index) Unclassified() int { return x.fallback }

// Specializer runs grid traversals. The zero value is ready to use; Log, if
// set, receives one debug line per object no rule matched.
type Specializer struct {
	Log logrus.FieldLogger
}

// Specialize classifies every occupant of l, and every member nested inside
// them, into a new level with the same dimensions and metadata.
func Specialize(l *grid.Level) *grid.Level {
	out, _ := Specializer{}.Specialize(l)
	return out
}

// SpecializeIndexed is Specialize that also returns the identity index.
func SpecializeIndexed(l *grid.Level) (*grid.Level, *Index) {
	return Specializer{}.Specialize(l)
}

func (sp Specializer) Specialize(l *grid.Level) (*grid.Level, *Index) {
	p := &pass{log: sp.Log, index: newIndex()}
	out := l.Empty()
	l.Walk(func(pos grid.Position, c grid.Cell) {
		if len(c) == 0 {
			return
		}
		cell := make(grid.Cell, 0, len(c))
		for _, o := range c {
			cell = append(cell, p.visit(o, pos))
		}
		out.SetCell(pos, cell)
	})
	if sp.Log != nil && p.index.fallback > 0 {
		sp.Log.WithFields(logrus.Fields{
			"unclassified": p.index.fallback,
			"objects":      p.index.Len(),
		}).Debug("specialize: pass finished with unclassified objects")
	}
	return out, p.index
}

type pass struct {
	log   logrus.FieldLogger
	index *Index
}

// visit specializes o once. The result is registered before nested members
// are visited, so a container that reaches itself terminates.
func (p *pass) visit(o entity.Object, at grid.Position) entity.Object {
	if o == nil {
		return nil
	}
	if out, ok := p.index.bySource[o]; ok {
		return out
	}
	out := Classify(o)
	p.record(o, out)

	switch v := out.(type) {
	case *Agent:
		inv, invChanged := p.visitList(v.Inventory, at)
		st, stChanged := p.visitList(v.Status, at)
		if !invChanged && !stChanged {
			break
		}
		if out == o {
			cp := *v
			v = &cp
		}
		v.Inventory, v.Status = inv, st
		out = v
		p.record(o, out)
	case *entity.Entity:
		inv, invChanged := p.visitList(v.InventoryList, at)
		st, stChanged := p.visitList(v.StatusList, at)
		if invChanged || stChanged {
			cp := v.Clone()
			cp.InventoryList, cp.StatusList = inv, st
			out = cp
			p.record(o, out)
		}
		p.index.fallback++
		if p.log != nil {
			p.log.WithFields(logrus.Fields{
				"id":         v.ID.String(),
				"x":          at.X,
				"y":          at.Y,
				"appearance": v.AppearanceName(),
				"components": Signature(v),
			}).Debug("specialize: no variant matched")
		}
	}
	return out
}

func (p *pass) record(src, out entity.Object) {
	p.index.bySource[src] = out
	if id := out.EntityID(); id != 0 {
		p.index.byID[id] = out
	}
}

// visitList specializes every member of list and reports whether any
// member changed. The input slice is never written.
func (p *pass) visitList(list []entity.Object, at grid.Position) ([]entity.Object, bool) {
	if len(list) == 0 {
		return list, false
	}
	out := make([]entity.Object, len(list))
	changed := false
	for i, m := range list {
		out[i] = p.visit(m, at)
		if out[i] != m {
			changed = true
		}
	}
	return out, changed
}

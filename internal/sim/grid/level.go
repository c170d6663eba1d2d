package grid

import (
	"fmt"

	"gridadventure/internal/sim/entity"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

func (p Position) Add(dx, dy int) Position { return Position{X: p.X + dx, Y: p.Y + dy} }

// Cell holds the occupants of one coordinate in insertion order.
type Cell []entity.Object

// Meta is simulation metadata carried along with a level. The core passes it
// through untouched; the engine interprets Movement and Objective by name.
type Meta struct {
	Movement  string
	Objective string
	Seed      int64
	Turn      int
	Score     int
	Win       bool
	Lose      bool
	Message   string
	TurnLimit int
}

// Level is a width x height grid of cells plus metadata. Cells are stored
// row-major: cells[y][x].
type Level struct {
	Width  int
	Height int
	Meta

	cells [][]Cell
}

func New(width, height int, meta Meta) *Level {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("grid: invalid dimensions %dx%d", width, height))
	}
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
	}
	return &Level{Width: width, Height: height, Meta: meta, cells: cells}
}

// Empty returns a level with the same dimensions and metadata and no occupants.
func (l *Level) Empty() *Level {
	return New(l.Width, l.Height, l.Meta)
}

func (l *Level) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < l.Width && p.Y < l.Height
}

func (l *Level) mustInBounds(p Position) {
	if !l.InBounds(p) {
		panic(fmt.Sprintf("grid: position %s outside %dx%d level", p, l.Width, l.Height))
	}
}

// At returns the occupants of p. The returned slice must not be modified.
func (l *Level) At(p Position) Cell {
	if !l.InBounds(p) {
		return nil
	}
	return l.cells[p.Y][p.X]
}

func (l *Level) Add(p Position, objs ...entity.Object) {
	l.mustInBounds(p)
	l.cells[p.Y][p.X] = append(l.cells[p.Y][p.X], objs...)
}

// Placement pairs a position with an object for AddMany.
type Placement struct {
	Pos Position
	Obj entity.Object
}

func (l *Level) AddMany(ps []Placement) {
	for _, p := range ps {
		l.Add(p.Pos, p.Obj)
	}
}

// SetCell replaces the occupants of p.
func (l *Level) SetCell(p Position, c Cell) {
	l.mustInBounds(p)
	l.cells[p.Y][p.X] = c
}

// Remove drops o from p and reports whether it was there.
func (l *Level) Remove(p Position, o entity.Object) bool {
	if !l.InBounds(p) {
		return false
	}
	c := l.cells[p.Y][p.X]
	for i, cur := range c {
		if cur == o {
			l.cells[p.Y][p.X] = append(c[:i:i], c[i+1:]...)
			return true
		}
	}
	return false
}

// Walk visits every cell row by row, left to right. This is the single
// traversal order used everywhere a level is scanned.
func (l *Level) Walk(fn func(p Position, c Cell)) {
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			fn(Position{X: x, Y: y}, l.cells[y][x])
		}
	}
}

// Find returns the first position holding an object for which match is true.
func (l *Level) Find(match func(entity.Object) bool) (Position, entity.Object, bool) {
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			for _, o := range l.cells[y][x] {
				if match(o) {
					return Position{X: x, Y: y}, o, true
				}
			}
		}
	}
	return Position{}, nil, false
}

// Count returns the number of top-level occupants.
func (l *Level) Count() int {
	n := 0
	l.Walk(func(_ Position, c Cell) { n += len(c) })
	return n
}

package component

import "fmt"

type Direction uint8

const (
	DirUp Direction = iota + 1
	DirDown
	DirLeft
	DirRight
)

var directionNames = map[Direction]string{
	DirUp:    "up",
	DirDown:  "down",
	DirLeft:  "left",
	DirRight: "right",
}

func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

func ParseDirection(s string) (Direction, bool) {
	for d, name := range directionNames {
		if name == s {
			return d, true
		}
	}
	return 0, false
}

// Delta returns the grid offset of one step; y grows downwards.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

func (d Direction) Reverse() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return d
}

type CollisionRule string

const (
	CollisionBounce CollisionRule = "bounce"
	CollisionStop   CollisionRule = "stop"
)

// Moving describes autonomous movement. Speed is cells per turn.
type Moving struct {
	Direction   Direction     `json:"direction"`
	OnCollision CollisionRule `json:"on_collision"`
	Speed       int           `json:"speed"`
}

package engine

import (
	"fmt"
	"strings"
)

type Action uint8

const (
	ActionUp Action = iota + 1
	ActionDown
	ActionLeft
	ActionRight
	ActionWait
	ActionPickUp
	ActionUseKey
)

var actionNames = []struct {
	a    Action
	name string
}{
	{ActionUp, "UP"},
	{ActionDown, "DOWN"},
	{ActionLeft, "LEFT"},
	{ActionRight, "RIGHT"},
	{ActionWait, "WAIT"},
	{ActionPickUp, "PICK_UP"},
	{ActionUseKey, "USE_KEY"},
}

func (a Action) String() string {
	for _, n := range actionNames {
		if n.a == a {
			return n.name
		}
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// ParseAction accepts the canonical names case-insensitively.
func ParseAction(s string) (Action, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, n := range actionNames {
		if n.name == s {
			return n.a, true
		}
	}
	return 0, false
}

// Actions lists every action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, len(actionNames))
	for _, n := range actionNames {
		out = append(out, n.a)
	}
	return out
}

func (a Action) MarshalText() ([]byte, error) {
	if _, ok := ParseAction(a.String()); !ok {
		return nil, fmt.Errorf("engine: invalid action %d", uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	v, ok := ParseAction(string(b))
	if !ok {
		return fmt.Errorf("engine: unknown action %q", string(b))
	}
	*a = v
	return nil
}

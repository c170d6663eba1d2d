package adventure

import "fmt"

// Kind tags a specialized entity. The zero value means "not specialized".
type Kind uint8

const (
	KindNone Kind = iota
	KindAgent
	KindFloor
	KindWall
	KindExit
	KindCoin
	KindGem
	KindKey
	KindLockedDoor
	KindUnlockedDoor
	KindPortal
	KindBox
	KindMovingBox
	KindRobot
	KindLava
	KindSpeedPowerUp
	KindShieldPowerUp
	KindPhasingPowerUp
)

var kindNames = [...]string{
	KindNone:           "none",
	KindAgent:          "agent",
	KindFloor:          "floor",
	KindWall:           "wall",
	KindExit:           "exit",
	KindCoin:           "coin",
	KindGem:            "gem",
	KindKey:            "key",
	KindLockedDoor:     "locked_door",
	KindUnlockedDoor:   "unlocked_door",
	KindPortal:         "portal",
	KindBox:            "box",
	KindMovingBox:      "moving_box",
	KindRobot:          "robot",
	KindLava:           "lava",
	KindSpeedPowerUp:   "speed_powerup",
	KindShieldPowerUp:  "shield_powerup",
	KindPhasingPowerUp: "phasing_powerup",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s && Kind(k) != KindNone {
			return Kind(k), true
		}
	}
	return KindNone, false
}

// Kinds returns the catalog in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames)-1)
	for k := KindAgent; int(k) < len(kindNames); k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	if string(b) == KindNone.String() {
		*k = KindNone
		return nil
	}
	v, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("adventure: unknown kind %q", string(b))
	}
	*k = v
	return nil
}

// KindOf reports the kind of o, or KindNone for an unspecialized object.
func KindOf(o any) Kind {
	if s, ok := o.(Specialized); ok {
		return s.Kind()
	}
	return KindNone
}

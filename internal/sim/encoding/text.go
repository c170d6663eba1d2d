package encoding

import (
	"strings"

	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/grid"
)

var glyphs = map[adventure.Kind]byte{
	adventure.KindNone:           ' ',
	adventure.KindAgent:          '@',
	adventure.KindFloor:          '.',
	adventure.KindWall:           '#',
	adventure.KindExit:           'E',
	adventure.KindCoin:           'c',
	adventure.KindGem:            '*',
	adventure.KindKey:            'k',
	adventure.KindLockedDoor:     'D',
	adventure.KindUnlockedDoor:   'd',
	adventure.KindPortal:         'O',
	adventure.KindBox:            'B',
	adventure.KindMovingBox:      'M',
	adventure.KindRobot:          'R',
	adventure.KindLava:           '~',
	adventure.KindSpeedPowerUp:   's',
	adventure.KindShieldPowerUp:  'h',
	adventure.KindPhasingPowerUp: 'g',
}

// Glyph is the single-character form of k used by Render.
func Glyph(k adventure.Kind) byte {
	if g, ok := glyphs[k]; ok {
		return g
	}
	return '?'
}

// Render draws l one row per line, showing the top layer where a cell has
// one and the base layer otherwise.
func Render(l *grid.Level) string {
	base, top := Flatten(l)
	var b strings.Builder
	b.Grow((l.Width + 1) * l.Height)
	for i := range base {
		k := top[i]
		if k == adventure.KindNone {
			k = base[i]
		}
		b.WriteByte(Glyph(k))
		if (i+1)%l.Width == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

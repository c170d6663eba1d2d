package encoding

import (
	"testing"

	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/grid"
)

func TestRLE_RoundTrip(t *testing.T) {
	in := make([]adventure.Kind, 0, 200)
	in = append(in, adventure.KindWall, adventure.KindWall, adventure.KindWall, adventure.KindFloor, adventure.KindFloor, adventure.KindAgent)
	for i := 0; i < 50; i++ {
		in = append(in, adventure.KindFloor)
	}
	in = append(in, adventure.KindNone, adventure.KindExit, adventure.KindExit, adventure.KindPhasingPowerUp)

	enc := EncodeKinds(in)
	out, err := DecodeKinds(enc, len(in))
	if err != nil {
		t.Fatalf("DecodeKinds: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("mismatch at %d: got %v want %v", i, out[i], in[i])
		}
	}
}

func TestRLE_RejectsWrongLength(t *testing.T) {
	enc := EncodeKinds([]adventure.Kind{adventure.KindFloor, adventure.KindFloor})
	if _, err := DecodeKinds(enc, 3); err == nil {
		t.Fatalf("short layer accepted")
	}
	if _, err := DecodeKinds(enc, 1); err == nil {
		t.Fatalf("long layer accepted")
	}
	if _, err := DecodeKinds("!!", 1); err == nil {
		t.Fatalf("bad base64 accepted")
	}
}

func TestLayers(t *testing.T) {
	l := grid.New(3, 1, grid.Meta{})
	for x := 0; x < 3; x++ {
		l.Add(grid.Position{X: x, Y: 0}, adventure.NewFloor())
	}
	l.Add(grid.Position{X: 0, Y: 0}, adventure.NewWall())
	l.Add(grid.Position{X: 1, Y: 0}, adventure.NewCoin(), adventure.NewAgent(0))

	ls := EncodeLayers(l)
	base, top, err := ls.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	wantBase := []adventure.Kind{adventure.KindWall, adventure.KindFloor, adventure.KindFloor}
	wantTop := []adventure.Kind{adventure.KindNone, adventure.KindAgent, adventure.KindNone}
	for i := range wantBase {
		if base[i] != wantBase[i] || top[i] != wantTop[i] {
			t.Fatalf("cell %d: got %v/%v want %v/%v", i, base[i], top[i], wantBase[i], wantTop[i])
		}
	}
}

func TestRender(t *testing.T) {
	l := grid.New(3, 2, grid.Meta{})
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			l.Add(grid.Position{X: x, Y: y}, adventure.NewFloor())
		}
	}
	l.Add(grid.Position{X: 0, Y: 0}, adventure.NewWall())
	l.Add(grid.Position{X: 1, Y: 0}, adventure.NewCoin(), adventure.NewAgent(0))
	l.Add(grid.Position{X: 2, Y: 1}, adventure.NewExit())

	if got, want := Render(l), "#@.\n..E\n"; got != want {
		t.Fatalf("Render: got %q want %q", got, want)
	}
	if Glyph(adventure.Kind(200)) != '?' {
		t.Fatalf("unknown kind glyph")
	}
}

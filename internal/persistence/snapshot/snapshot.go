package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"gridadventure/internal/sim/component"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/ids"
	"gridadventure/internal/sim/state"
)

const Version = 1

var (
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	ErrDigestMismatch     = errors.New("snapshot: digest mismatch")
)

// Header is written as a plain JSON line ahead of the gob body so tools can
// identify a file without decoding all of it.
type Header struct {
	Version int    `json:"version"`
	Level   string `json:"level,omitempty"`
	Turn    int    `json:"turn"`
	Digest  string `json:"digest"`
}

// StateV1 is the gob body of a state file. Marker stores travel as sorted id
// lists because gob cannot encode empty structs.
type StateV1 struct {
	Header Header

	Width     int
	Height    int
	Movement  string
	Objective string
	Seed      int64
	Turn      int
	Score     int
	Win       bool
	Lose      bool
	Message   string
	TurnLimit int

	Entities []ids.ID
	Markers  map[string][]ids.ID
	Position map[ids.ID]grid.Position

	Appearance map[ids.ID]component.Appearance
	Cost       map[ids.ID]component.Cost
	Damage     map[ids.ID]component.Damage
	Health     map[ids.ID]component.Health
	Inventory  map[ids.ID]component.Inventory
	Key        map[ids.ID]component.Key
	Locked     map[ids.ID]component.Locked
	Moving     map[ids.ID]component.Moving
	Portal     map[ids.ID]component.Portal
	Rewardable map[ids.ID]component.Rewardable
	Speed      map[ids.ID]component.Speed
	Status     map[ids.ID]component.Status
	TimeLimit  map[ids.ID]component.TimeLimit
	UsageLimit map[ids.ID]component.UsageLimit
}

func keys[T any](s state.Store[T]) []ids.ID {
	out := make([]ids.ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func markerStore[T any](list []ids.ID) state.Store[T] {
	var zero T
	out := make(state.Store[T], len(list))
	for _, id := range list {
		out[id] = zero
	}
	return out
}

func values[T any](s state.Store[T]) map[ids.ID]T {
	out := make(map[ids.ID]T, len(s))
	for id, v := range s {
		out[id] = v
	}
	return out
}

func store[T any](m map[ids.ID]T) state.Store[T] {
	out := make(state.Store[T], len(m))
	for id, v := range m {
		out[id] = v
	}
	return out
}

// FromState captures s for writing. level names the layout it was built
// from and may be empty.
func FromState(s *state.State, level string) StateV1 {
	s = s.Clone()
	s.Normalize()
	b := StateV1{
		Header: Header{Version: Version, Level: level, Turn: s.Turn, Digest: s.Digest()},

		Width:     s.Width,
		Height:    s.Height,
		Movement:  s.Movement,
		Objective: s.Objective,
		Seed:      s.Seed,
		Turn:      s.Turn,
		Score:     s.Score,
		Win:       s.Win,
		Lose:      s.Lose,
		Message:   s.Message,
		TurnLimit: s.TurnLimit,

		Entities: keys(s.Entities),
		Markers: map[string][]ids.ID{
			"agent":       keys(s.Agent),
			"blocking":    keys(s.Blocking),
			"collectible": keys(s.Collectible),
			"collidable":  keys(s.Collidable),
			"dead":        keys(s.Dead),
			"exit":        keys(s.Exit),
			"immunity":    keys(s.Immunity),
			"phasing":     keys(s.Phasing),
			"pushable":    keys(s.Pushable),
			"requirable":  keys(s.Requirable),
		},
		Position: values(s.Position),

		Appearance: values(s.Appearance),
		Cost:       values(s.Cost),
		Damage:     values(s.Damage),
		Health:     values(s.Health),
		Inventory:  values(s.Inventory),
		Key:        values(s.Key),
		Locked:     values(s.Locked),
		Moving:     values(s.Moving),
		Portal:     values(s.Portal),
		Rewardable: values(s.Rewardable),
		Speed:      values(s.Speed),
		Status:     values(s.Status),
		TimeLimit:  values(s.TimeLimit),
		UsageLimit: values(s.UsageLimit),
	}
	return b
}

// State rebuilds the canonical state and checks it against the header digest.
func (b StateV1) State() (*state.State, error) {
	if b.Header.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, b.Header.Version)
	}
	s := &state.State{
		Width:     b.Width,
		Height:    b.Height,
		Movement:  b.Movement,
		Objective: b.Objective,
		Seed:      b.Seed,
		Turn:      b.Turn,
		Score:     b.Score,
		Win:       b.Win,
		Lose:      b.Lose,
		Message:   b.Message,
		TurnLimit: b.TurnLimit,

		Entities: markerStore[struct{}](b.Entities),
		Position: store(b.Position),

		Agent:       markerStore[component.Agent](b.Markers["agent"]),
		Blocking:    markerStore[component.Blocking](b.Markers["blocking"]),
		Collectible: markerStore[component.Collectible](b.Markers["collectible"]),
		Collidable:  markerStore[component.Collidable](b.Markers["collidable"]),
		Dead:        markerStore[component.Dead](b.Markers["dead"]),
		Exit:        markerStore[component.Exit](b.Markers["exit"]),
		Immunity:    markerStore[component.Immunity](b.Markers["immunity"]),
		Phasing:     markerStore[component.Phasing](b.Markers["phasing"]),
		Pushable:    markerStore[component.Pushable](b.Markers["pushable"]),
		Requirable:  markerStore[component.Requirable](b.Markers["requirable"]),

		Appearance: store(b.Appearance),
		Cost:       store(b.Cost),
		Damage:     store(b.Damage),
		Health:     store(b.Health),
		Inventory:  store(b.Inventory),
		Key:        store(b.Key),
		Locked:     store(b.Locked),
		Moving:     store(b.Moving),
		Portal:     store(b.Portal),
		Rewardable: store(b.Rewardable),
		Speed:      store(b.Speed),
		Status:     store(b.Status),
		TimeLimit:  store(b.TimeLimit),
		UsageLimit: store(b.UsageLimit),
	}
	s.Normalize()
	if b.Header.Digest != "" && s.Digest() != b.Header.Digest {
		return nil, ErrDigestMismatch
	}
	return s, nil
}

// WriteState writes s as zstd(header line + gob body).
func WriteState(path string, s *state.State, level string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)
	body := FromState(s, level)
	hb, _ := json.Marshal(body.Header)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&body); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

func ReadState(path string) (*state.State, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, Header{}, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	hdr, err := readHeader(br)
	if err != nil {
		return nil, Header{}, err
	}
	if hdr.Version != Version {
		return nil, hdr, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr.Version)
	}

	var body StateV1
	if err := gob.NewDecoder(br).Decode(&body); err != nil {
		return nil, hdr, fmt.Errorf("gob decode: %w", err)
	}
	s, err := body.State()
	return s, body.Header, err
}

// ReadHeader decodes only the leading header line of a state file.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return Header{}, err
	}
	defer dec.Close()
	return readHeader(bufio.NewReader(dec))
}

func readHeader(br *bufio.Reader) (Header, error) {
	var hdr Header
	line, err := br.ReadBytes('\n')
	if err != nil {
		return hdr, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, fmt.Errorf("decode header: %w", err)
	}
	return hdr, nil
}

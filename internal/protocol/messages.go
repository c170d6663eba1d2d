package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Level           string `json:"level,omitempty"`
	Seed            int64  `json:"seed,omitempty"`
	// Watch attaches to a running session by id instead of starting one.
	// Watchers receive frames but may not act.
	Watch string `json:"watch,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	Level           LevelRef       `json:"level"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	Kinds           []string       `json:"kinds"`
	Actions         []string       `json:"actions"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type LevelRef struct {
	Code  string `json:"code"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Seed  int64  `json:"seed"`
}

type CatalogDigests struct {
	AssetsDigest string `json:"assets_digest"`
	TuningDigest string `json:"tuning_digest,omitempty"`
}

// ACT (client -> server)
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             int    `json:"seq,omitempty"`
	Action          string `json:"action"`
}

// FRAME (server -> client): the specialized level after a step, or the
// initial level right after WELCOME.
type FrameMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             int    `json:"seq"`
	Turn            int    `json:"turn"`
	Score           int    `json:"score"`
	Win             bool   `json:"win"`
	Lose            bool   `json:"lose"`
	Message         string `json:"message,omitempty"`
	Digest          string `json:"digest"`

	Agent  *AgentObs `json:"agent,omitempty"`
	Layers LayersObs `json:"layers"`
	Cells  []CellObs `json:"cells"`
}

type AgentObs struct {
	ID        string      `json:"id"`
	Pos       [2]int      `json:"pos"`
	Health    int         `json:"health"`
	MaxHealth int         `json:"max_health"`
	Dead      bool        `json:"dead,omitempty"`
	Inventory []EntityObs `json:"inventory"`
	Status    []EntityObs `json:"status"`
}

// LayersObs carries RLE-encoded per-cell kinds, row-major.
type LayersObs struct {
	Encoding string `json:"encoding"`
	Base     string `json:"base"`
	Top      string `json:"top"`
}

// CellObs lists the occupants of one non-empty cell, in draw order.
type CellObs struct {
	Pos      [2]int      `json:"pos"`
	Entities []EntityObs `json:"entities"`
}

type EntityObs struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	Appearance string   `json:"appearance,omitempty"`
	Asset      string   `json:"asset,omitempty"`
	Properties []string `json:"properties,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
	Seq             int    `json:"seq,omitempty"`
}

func NewError(code, msg string, seq int) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, Code: code, Message: msg, Seq: seq}
}

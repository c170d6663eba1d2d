package ws

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	steplog "gridadventure/internal/persistence/log"
	"gridadventure/internal/protocol"
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/catalogs"
	"gridadventure/internal/sim/engine"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/levels"
)

type Options struct {
	Log          logrus.FieldLogger
	Factory      *adventure.Factory
	Assets       *catalogs.AssetCatalog
	TuningDigest string
	// OnStep is called after every applied action, from the player's
	// connection goroutine.
	OnStep func(sessionID string, e steplog.StepLogEntry)
	// WatchQueue bounds each watcher's pending frames. Default 16.
	WatchQueue int
}

type Server struct {
	opts Options
	log  logrus.FieldLogger

	upgrader websocket.Upgrader

	nextID   atomic.Uint64
	mu       sync.Mutex
	sessions map[string]*session
}

// SessionInfo describes a running session.
type SessionInfo struct {
	ID       string `json:"id"`
	Level    string `json:"level"`
	Seq      int    `json:"seq"`
	Turn     int    `json:"turn"`
	Watchers int    `json:"watchers"`
}

func NewServer(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Factory == nil {
		opts.Factory = adventure.Default()
	}
	if opts.Assets == nil {
		opts.Assets = catalogs.Builtin()
	}
	if opts.WatchQueue <= 0 {
		opts.WatchQueue = 16
	}
	return &Server{
		opts: opts,
		log:  opts.Log.WithField("component", "ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		sessions: map[string]*session{},
	}
}

// Sessions lists running sessions ordered by id.
func (s *Server) Sessions() []SessionInfo {
	s.mu.Lock()
	list := make([]*session, 0, len(s.sessions))
	for _, ss := range s.sessions {
		list = append(list, ss)
	}
	s.mu.Unlock()

	out := make([]SessionInfo, 0, len(list))
	for _, ss := range list {
		l, seq := ss.snapshot()
		out = append(out, SessionInfo{
			ID:       ss.id,
			Level:    ss.def.Slug,
			Seq:      seq,
			Turn:     l.Turn,
			Watchers: ss.watcherCount(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) lookup(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hello, ok := s.handshake(conn)
		if !ok {
			return
		}
		if hello.Watch != "" {
			s.serveWatcher(conn, hello.Watch)
			return
		}
		s.servePlayer(conn, hello)
	}
}

func (s *Server) handshake(conn *websocket.Conn) (protocol.HelloMsg, bool) {
	var hello protocol.HelloMsg
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return hello, false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		s.writeError(conn, protocol.ErrProtoBadRequest, "expected HELLO", 0)
		return hello, false
	}
	if err := json.Unmarshal(msg, &hello); err != nil {
		s.writeError(conn, protocol.ErrProtoBadRequest, "bad HELLO", 0)
		return hello, false
	}
	if hello.ProtocolVersion != protocol.Version {
		s.writeError(conn, protocol.ErrProtoVersion, "bad protocol_version", 0)
		return hello, false
	}
	return hello, true
}

func (s *Server) servePlayer(conn *websocket.Conn, hello protocol.HelloMsg) {
	def, ok := levels.Lookup(hello.Level)
	if !ok {
		s.writeError(conn, protocol.ErrUnknownLevel, "unknown level: "+hello.Level, 0)
		return
	}

	id := "S" + strconv.FormatUint(s.nextID.Add(1), 10)
	ss := newSession(id, def, s.opts.Factory, hello.Seed)
	s.mu.Lock()
	s.sessions[id] = ss
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		ss.close()
	}()

	log := s.log.WithFields(logrus.Fields{"session": id, "level": def.Slug})
	log.Info("session started")
	defer log.Info("session ended")

	l, _ := ss.snapshot()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       id,
		Level:           protocol.LevelRef{Code: def.Code, Slug: def.Slug, Title: def.Title, Seed: l.Seed},
		Width:           l.Width,
		Height:          l.Height,
		Kinds:           kindNames(),
		Actions:         actionNames(),
		Catalogs: protocol.CatalogDigests{
			AssetsDigest: s.opts.Assets.Digest,
			TuningDigest: s.opts.TuningDigest,
		},
	}
	if err := s.writeJSON(conn, welcome); err != nil {
		return
	}
	if err := s.writeJSON(conn, BuildFrame(l, 0, s.opts.Assets)); err != nil {
		return
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			_ = s.writeJSON(conn, protocol.NewError(protocol.ErrProtoBadRequest, "bad json", 0))
			continue
		}
		if base.Type != protocol.TypeAct {
			_ = s.writeJSON(conn, protocol.NewError(protocol.ErrBadRequest, "unexpected "+base.Type, 0))
			continue
		}
		var act protocol.ActMsg
		if err := json.Unmarshal(msg, &act); err != nil {
			_ = s.writeJSON(conn, protocol.NewError(protocol.ErrProtoBadRequest, "bad ACT", 0))
			continue
		}
		if act.ProtocolVersion != protocol.Version {
			_ = s.writeJSON(conn, protocol.NewError(protocol.ErrProtoVersion, "bad protocol_version", act.Seq))
			continue
		}
		a, ok := engine.ParseAction(act.Action)
		if !ok {
			_ = s.writeJSON(conn, protocol.NewError(protocol.ErrBadAction, "unknown action: "+act.Action, act.Seq))
			continue
		}

		next, seq, entry := ss.step(a)
		b, err := json.Marshal(BuildFrame(next, seq, s.opts.Assets))
		if err != nil {
			log.WithError(err).Error("encode frame")
			_ = s.writeJSON(conn, protocol.NewError(protocol.ErrInternal, "encode frame", act.Seq))
			return
		}
		if err := s.write(conn, b); err != nil {
			return
		}
		if n := ss.broadcast(b); n > 0 {
			log.WithField("dropped", n).Debug("watchers behind")
		}
		if s.opts.OnStep != nil {
			s.opts.OnStep(id, entry)
		}
		log.WithFields(logrus.Fields{
			"turn":   entry.Turn,
			"action": a.String(),
			"score":  entry.Score,
		}).Debug("step")
		if entry.Win || entry.Lose {
			log.WithFields(logrus.Fields{"win": entry.Win, "lose": entry.Lose, "turn": entry.Turn}).Info("level finished")
		}
	}
}

func (s *Server) serveWatcher(conn *websocket.Conn, sessionID string) {
	ss := s.lookup(sessionID)
	if ss == nil {
		s.writeError(conn, protocol.ErrBadRequest, "unknown session: "+sessionID, 0)
		return
	}
	out := make(chan []byte, s.opts.WatchQueue)
	first := func(l *grid.Level, seq int) []byte {
		b, err := json.Marshal(BuildFrame(l, seq, s.opts.Assets))
		if err != nil {
			return nil
		}
		return b
	}
	if !ss.watch(out, first) {
		s.writeError(conn, protocol.ErrBadRequest, "session ended", 0)
		return
	}

	log := s.log.WithFields(logrus.Fields{"session": sessionID, "role": "watcher"})
	log.Info("watcher attached")
	defer log.Info("watcher detached")

	// Writer goroutine; the reader loop below never writes directly.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for b := range out {
			if err := s.write(conn, b); err != nil {
				_ = conn.Close()
				for range out {
				}
				return
			}
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
			time.Now().Add(time.Second))
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.Type != protocol.TypeAct {
			continue
		}
		b, _ := json.Marshal(protocol.NewError(protocol.ErrObserverOnly, "watchers cannot act", 0))
		select {
		case out <- b:
		default:
		}
	}
	ss.unwatch(out)
	<-done
}

func (s *Server) writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.write(conn, b)
}

func (s *Server) write(conn *websocket.Conn, b []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

// writeError reports a handshake failure and closes the connection.
func (s *Server) writeError(conn *websocket.Conn, code, msg string, seq int) {
	_ = s.writeJSON(conn, protocol.NewError(code, msg, seq))
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg),
		time.Now().Add(time.Second))
}

func kindNames() []string {
	out := make([]string, 0, len(adventure.Kinds()))
	for _, k := range adventure.Kinds() {
		out = append(out, k.String())
	}
	return out
}

func actionNames() []string {
	out := make([]string, 0, len(engine.Actions()))
	for _, a := range engine.Actions() {
		out = append(out, a.String())
	}
	return out
}

package ws

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	steplog "gridadventure/internal/persistence/log"
	"gridadventure/internal/protocol"
	"gridadventure/internal/sim/levels"
)

func newTestServer(t *testing.T, onStep func(string, steplog.StepLogEntry)) (*Server, string) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	srv := NewServer(Options{Log: log, OnStep: onStep})
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	return srv, "ws" + strings.TrimPrefix(hs.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func send(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	if err := c.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func recv(t *testing.T, c *websocket.Conn, v any) string {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v != nil {
		if err := json.Unmarshal(b, v); err != nil {
			t.Fatalf("unmarshal %s: %v", base.Type, err)
		}
	}
	return base.Type
}

func hello(level string) protocol.HelloMsg {
	return protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, Level: level}
}

func act(seq int, a string) protocol.ActMsg {
	return protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version, Seq: seq, Action: a}
}

func TestPlayerSession(t *testing.T) {
	var (
		mu    sync.Mutex
		steps []steplog.StepLogEntry
	)
	srv, url := newTestServer(t, func(_ string, e steplog.StepLogEntry) {
		mu.Lock()
		steps = append(steps, e)
		mu.Unlock()
	})
	c := dial(t, url)
	send(t, c, hello("basic_movement"))

	var w protocol.WelcomeMsg
	if typ := recv(t, c, &w); typ != protocol.TypeWelcome {
		t.Fatalf("first message: got %s want WELCOME", typ)
	}
	def, _ := levels.Lookup("basic_movement")
	if w.Level.Slug != def.Slug || w.Level.Seed != def.Seed || w.SessionID == "" {
		t.Fatalf("welcome: %+v", w)
	}
	if len(w.Kinds) != 17 || len(w.Actions) != 7 || w.Catalogs.AssetsDigest == "" {
		t.Fatalf("welcome catalogs: kinds %d actions %d digest %q", len(w.Kinds), len(w.Actions), w.Catalogs.AssetsDigest)
	}

	var f0 protocol.FrameMsg
	if typ := recv(t, c, &f0); typ != protocol.TypeFrame {
		t.Fatalf("second message: got %s want FRAME", typ)
	}
	if f0.Seq != 0 || f0.Turn != 0 || f0.Agent == nil || f0.Layers.Encoding != "RLE" {
		t.Fatalf("initial frame: %+v", f0)
	}

	send(t, c, act(1, "RIGHT"))
	var f1 protocol.FrameMsg
	if typ := recv(t, c, &f1); typ != protocol.TypeFrame {
		t.Fatalf("after ACT: got %s want FRAME", typ)
	}
	if f1.Seq != 1 || f1.Turn != 1 {
		t.Fatalf("frame: seq %d turn %d want 1 1", f1.Seq, f1.Turn)
	}
	if f1.Digest == f0.Digest {
		t.Fatalf("digest did not change after a step")
	}

	send(t, c, act(2, "JUMP"))
	var e protocol.ErrorMsg
	if typ := recv(t, c, &e); typ != protocol.TypeError || e.Code != protocol.ErrBadAction || e.Seq != 2 {
		t.Fatalf("bad action: got %s %+v", typ, e)
	}

	if got := srv.Sessions(); len(got) != 1 || got[0].Turn != 1 || got[0].Level != "basic_movement" {
		t.Fatalf("sessions: %+v", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(steps) != 1 || steps[0].Before != f0.Digest || steps[0].After != f1.Digest {
		t.Fatalf("step log: %+v", steps)
	}
}

func TestHandshakeErrors(t *testing.T) {
	_, url := newTestServer(t, nil)

	c := dial(t, url)
	send(t, c, hello("no_such_level"))
	var e protocol.ErrorMsg
	if typ := recv(t, c, &e); typ != protocol.TypeError || e.Code != protocol.ErrUnknownLevel {
		t.Fatalf("unknown level: got %s %+v", typ, e)
	}

	c2 := dial(t, url)
	h := hello("basic_movement")
	h.ProtocolVersion = "0.1"
	send(t, c2, h)
	if typ := recv(t, c2, &e); typ != protocol.TypeError || e.Code != protocol.ErrProtoVersion {
		t.Fatalf("bad version: got %s %+v", typ, e)
	}

	c3 := dial(t, url)
	send(t, c3, act(1, "UP"))
	if typ := recv(t, c3, &e); typ != protocol.TypeError || e.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("no hello: got %s %+v", typ, e)
	}
}

func TestWatcherReceivesFrames(t *testing.T) {
	srv, url := newTestServer(t, nil)
	p := dial(t, url)
	send(t, p, hello("A0"))
	var w protocol.WelcomeMsg
	recv(t, p, &w)
	recv(t, p, nil)

	o := dial(t, url)
	send(t, o, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, Watch: w.SessionID})
	var f0 protocol.FrameMsg
	if typ := recv(t, o, &f0); typ != protocol.TypeFrame || f0.Seq != 0 {
		t.Fatalf("watcher first frame: got %s seq %d", typ, f0.Seq)
	}

	// The first frame is queued as part of registration.
	if got := srv.Sessions(); len(got) != 1 || got[0].Watchers != 1 {
		t.Fatalf("sessions: %+v", got)
	}

	send(t, o, act(1, "UP"))
	var e protocol.ErrorMsg
	if typ := recv(t, o, &e); typ != protocol.TypeError || e.Code != protocol.ErrObserverOnly {
		t.Fatalf("watcher act: got %s %+v", typ, e)
	}

	send(t, p, act(1, "RIGHT"))
	var pf protocol.FrameMsg
	recv(t, p, &pf)
	var of protocol.FrameMsg
	if typ := recv(t, o, &of); typ != protocol.TypeFrame || of.Seq != 1 || of.Digest != pf.Digest {
		t.Fatalf("watcher frame: got %s seq %d", typ, of.Seq)
	}

	_ = p.Close()
	_ = o.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := o.ReadMessage(); err == nil {
		t.Fatalf("watcher still connected after the player left")
	}
}

func TestWatchUnknownSession(t *testing.T) {
	_, url := newTestServer(t, nil)
	c := dial(t, url)
	send(t, c, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, Watch: "S404"})
	var e protocol.ErrorMsg
	if typ := recv(t, c, &e); typ != protocol.TypeError || e.Code != protocol.ErrBadRequest {
		t.Fatalf("unknown session: got %s %+v", typ, e)
	}
}

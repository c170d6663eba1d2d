package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"gridadventure/internal/persistence/snapshot"
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/levels"
	"gridadventure/internal/transport/ws"
)

func newTestRouter(t *testing.T) *httptest.Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := &Server{ws: ws.NewServer(ws.Options{Log: log}), factory: adventure.Default()}
	s.routes()
	hs := httptest.NewServer(s.router)
	t.Cleanup(hs.Close)
	return hs
}

func TestLevelsRoute(t *testing.T) {
	hs := newTestRouter(t)
	resp, err := http.Get(hs.URL + URI_LEVELS)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var got []levels.Def
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(levels.All()) {
		t.Fatalf("levels: got %d want %d", len(got), len(levels.All()))
	}
	if got[0].Slug != "basic_movement" {
		t.Fatalf("first level: got %q want basic_movement", got[0].Slug)
	}
}

func TestLevelRouteServesStateDocument(t *testing.T) {
	hs := newTestRouter(t)
	resp, err := http.Get(hs.URL + "/v1/levels/A4?seed=9")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d want 200", resp.StatusCode)
	}
	st, level, err := snapshot.DecodeJSON(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if level != "key_door" || st.Seed != 9 {
		t.Fatalf("document: level %q seed %d", level, st.Seed)
	}

	for path, want := range map[string]int{
		"/v1/levels/nope":        http.StatusNotFound,
		"/v1/levels/A4?seed=abc": http.StatusBadRequest,
		URI_HEALTH:               http.StatusOK,
		URI_SESSIONS:             http.StatusOK,
	} {
		r, err := http.Get(hs.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		r.Body.Close()
		if r.StatusCode != want {
			t.Fatalf("%s: got %d want %d", path, r.StatusCode, want)
		}
	}
}

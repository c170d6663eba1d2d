package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matryer/way"

	"gridadventure/internal/persistence/indexdb"
	"gridadventure/internal/persistence/snapshot"
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/levels"
	"gridadventure/internal/transport/ws"
)

const (
	URI_WS       = "/v1/ws"
	URI_LEVELS   = "/v1/levels"
	URI_LEVEL    = "/v1/levels/:level"
	URI_SESSIONS = "/v1/sessions"
	URI_HEALTH   = "/healthz"
)

type Server struct {
	router  *way.Router
	ws      *ws.Server
	idx     *indexdb.SQLiteIndex
	factory *adventure.Factory
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URI_WS, s.ws.Handler())
	s.router.HandleFunc("GET", URI_LEVELS, s.handleLevels)
	s.router.HandleFunc("GET", URI_LEVEL, s.handleLevel)
	s.router.HandleFunc("GET", URI_SESSIONS, s.handleSessions)
	s.router.HandleFunc("GET", URI_HEALTH, s.handleHealth)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, levels.All())
}

// handleLevel serves a level's initial state as a JSON state document.
// ?seed= overrides the level's default seed.
func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	def, ok := levels.Lookup(way.Param(r.Context(), "level"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	var seed int64
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "bad seed", http.StatusBadRequest)
			return
		}
		seed = n
	}
	st := adventure.ToState(def.Build(s.factory, seed))
	w.Header().Set("Content-Type", "application/json")
	if err := snapshot.EncodeJSON(w, st, def.Slug); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Sessions())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"ok": true, "sessions": len(s.ws.Sessions())}
	if s.idx != nil {
		out["index"] = s.idx.Stats()
	}
	writeJSON(w, http.StatusOK, out)
}

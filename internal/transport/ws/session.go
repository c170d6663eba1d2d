package ws

import (
	"sync"

	steplog "gridadventure/internal/persistence/log"
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/engine"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/levels"
)

// session is one play-through of a level. Only the owning connection steps
// it; watchers get every frame through their out channel.
type session struct {
	id  string
	def levels.Def

	mu       sync.Mutex
	level    *grid.Level
	digest   string
	seq      int
	closed   bool
	watchers map[chan []byte]struct{}
}

func newSession(id string, def levels.Def, f *adventure.Factory, seed int64) *session {
	// Canonicalize once so entity ids in frames are the dense ids the
	// engine assigns.
	s := adventure.ToState(def.Build(f, seed))
	return &session{
		id:       id,
		def:      def,
		level:    adventure.FromState(s),
		digest:   s.Digest(),
		watchers: map[chan []byte]struct{}{},
	}
}

// step applies a and returns the new level with its log entry.
func (s *session) step(a engine.Action) (*grid.Level, int, steplog.StepLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := adventure.StepState(adventure.ToState(s.level), a)
	e := steplog.StepLogEntry{
		Turn:    next.Turn,
		Action:  a,
		Before:  s.digest,
		After:   next.Digest(),
		Score:   next.Score,
		Win:     next.Win,
		Lose:    next.Lose,
		Message: next.Message,
	}
	s.level = adventure.FromState(next)
	s.digest = e.After
	s.seq++
	return s.level, s.seq, e
}

func (s *session) snapshot() (*grid.Level, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level, s.seq
}

// watch registers out and reports false if the session already ended. The
// frame built by first, if any, is queued under the same lock, so no
// broadcast can reach out ahead of it.
func (s *session) watch(out chan []byte, first func(l *grid.Level, seq int) []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if first != nil {
		if b := first(s.level, s.seq); b != nil {
			select {
			case out <- b:
			default:
			}
		}
	}
	s.watchers[out] = struct{}{}
	return true
}

func (s *session) unwatch(out chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watchers[out]; ok {
		delete(s.watchers, out)
		close(out)
	}
}

// broadcast never blocks; a watcher that falls behind misses frames.
func (s *session) broadcast(b []byte) (dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for out := range s.watchers {
		select {
		case out <- b:
		default:
			dropped++
		}
	}
	return dropped
}

// close ends the session and disconnects every watcher.
func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for out := range s.watchers {
		close(out)
	}
	s.watchers = map[chan []byte]struct{}{}
}

func (s *session) watcherCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

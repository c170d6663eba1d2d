package main

import (
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"gridadventure/internal/persistence/indexdb"
	steplog "gridadventure/internal/persistence/log"
)

// recorder appends every session's steps to <runs>/<session>/steps.jsonl.zst
// and mirrors them into the index when one is open.
type recorder struct {
	dir string
	idx *indexdb.SQLiteIndex
	log logrus.FieldLogger

	mu   sync.Mutex
	logs map[string]*steplog.StepLogger
}

func newRecorder(dir string, idx *indexdb.SQLiteIndex, log logrus.FieldLogger) *recorder {
	return &recorder{dir: dir, idx: idx, log: log, logs: map[string]*steplog.StepLogger{}}
}

func (r *recorder) OnStep(sessionID string, e steplog.StepLogEntry) {
	r.mu.Lock()
	l := r.logs[sessionID]
	if l == nil {
		l = steplog.NewStepLogger(filepath.Join(r.dir, sessionID))
		r.logs[sessionID] = l
	}
	err := l.WriteStep(e)
	if err == nil && (e.Win || e.Lose) {
		err = l.Close()
		delete(r.logs, sessionID)
	}
	r.mu.Unlock()

	if err != nil {
		r.log.WithError(err).WithField("session", sessionID).Warn("step log")
	}
	_ = r.idx.WriteStep(sessionID, e)
}

func (r *recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.logs {
		if err := l.Close(); err != nil {
			r.log.WithError(err).WithField("session", id).Warn("close step log")
		}
	}
	r.logs = map[string]*steplog.StepLogger{}
}

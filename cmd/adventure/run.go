package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"gridadventure/internal/persistence/archive"
	"gridadventure/internal/persistence/indexdb"
	steplog "gridadventure/internal/persistence/log"
	"gridadventure/internal/persistence/snapshot"
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/catalogs"
	"gridadventure/internal/sim/engine"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/state"
	"gridadventure/internal/sim/tuning"
)

// Run files inside -out.
const (
	InitialStateFile = "initial.state.zst"
	FinalStateFile   = "final.state.zst"
	FinalJSONFile    = "final.json"
)

// runner plays a script and, when dir is set, records it so cmd/replay can
// verify it later.
type runner struct {
	log   logrus.FieldLogger
	level string
	dir   string

	// archive, when set, receives a copy of the final state of a won or
	// lost run.
	archive string

	steps *steplog.StepLogger
	idx   *indexdb.SQLiteIndex
}

func (r *runner) open(initial *state.State, assets *catalogs.AssetCatalog, tune tuning.Tuning) error {
	if r.dir == "" {
		return nil
	}
	path := filepath.Join(r.dir, InitialStateFile)
	if err := snapshot.WriteState(path, initial, r.level); err != nil {
		return err
	}
	idx, err := indexdb.OpenSQLite(filepath.Join(r.dir, "index.sqlite"))
	if err != nil {
		return err
	}
	r.idx = idx
	if err := idx.UpsertCatalogs(assets, tune); err != nil {
		r.log.WithError(err).Warn("index: upsert catalogs")
	}
	idx.RecordState(path, r.level, initial)
	r.steps = steplog.NewStepLogger(r.dir)
	return nil
}

// play applies script in order and stops early once the level is decided.
func (r *runner) play(s *state.State, script []engine.Action) *state.State {
	runID := filepath.Base(r.dir)
	before := s.Digest()
	for _, a := range script {
		if s.Win || s.Lose {
			r.log.WithField("turn", s.Turn).Info("level finished; ignoring remaining actions")
			break
		}
		s = adventure.StepState(s, a)
		e := steplog.StepLogEntry{
			Turn:    s.Turn,
			Action:  a,
			Before:  before,
			After:   s.Digest(),
			Score:   s.Score,
			Win:     s.Win,
			Lose:    s.Lose,
			Message: s.Message,
		}
		before = e.After
		r.log.WithFields(logrus.Fields{"turn": e.Turn, "action": a.String(), "score": e.Score}).Debug("step")
		if r.steps != nil {
			if err := r.steps.WriteStep(e); err != nil {
				r.log.WithError(err).Warn("step log")
			}
		}
		_ = r.idx.WriteStep(runID, e)
	}
	return s
}

func (r *runner) close(final *state.State) error {
	if r.dir == "" {
		return nil
	}
	if err := r.steps.Close(); err != nil {
		return err
	}
	path := filepath.Join(r.dir, FinalStateFile)
	if err := snapshot.WriteState(path, final, r.level); err != nil {
		return err
	}
	r.idx.RecordState(path, r.level, final)
	if r.archive != "" {
		dst, ok, err := archive.ArchiveFinishedRun(r.archive, filepath.Base(r.dir), r.level, path, final)
		if err != nil {
			return err
		}
		if ok {
			r.log.WithFields(logrus.Fields{"path": dst, "outcome": archive.Outcome(final)}).Info("run archived")
		}
	}

	f, err := os.Create(filepath.Join(r.dir, FinalJSONFile))
	if err != nil {
		return err
	}
	if err := snapshot.EncodeJSON(f, final, r.level); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return r.idx.Close()
}

// printAssets lists every occupant with the asset a renderer would use.
func printAssets(l *grid.Level, assets *catalogs.AssetCatalog) {
	l.Walk(func(p grid.Position, c grid.Cell) {
		parts := make([]string, 0, len(c))
		for _, o := range c {
			asset, ok := assets.AssetFor(o)
			if !ok {
				asset = "-"
			}
			parts = append(parts, fmt.Sprintf("%s:%s", adventure.KindOf(o), asset))
		}
		if len(parts) > 0 {
			fmt.Printf("%v %s\n", p, strings.Join(parts, " "))
		}
	})
}

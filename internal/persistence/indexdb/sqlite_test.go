package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	steplog "gridadventure/internal/persistence/log"
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/catalogs"
	"gridadventure/internal/sim/engine"
	"gridadventure/internal/sim/levels"
	"gridadventure/internal/sim/tuning"
)

func TestSQLiteIndex_RecordState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	d, _ := levels.Lookup("required_multiple")
	s := adventure.ToState(d.Level())
	idx.RecordState("/runs/1/state-0.zst", d.Slug, s)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var (
		level    string
		turn     int
		entities int
	)
	row := db.QueryRow(`SELECT level,turn,entities FROM states WHERE digest=?`, s.Digest())
	if err := row.Scan(&level, &turn, &entities); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if level != "required_multiple" || turn != 0 || entities != len(s.Entities) {
		t.Fatalf("row mismatch: level=%q turn=%d entities=%d", level, turn, entities)
	}

	var gems, agents int
	if err := db.QueryRow(`SELECT count FROM state_kinds WHERE digest=? AND kind='gem'`, s.Digest()).Scan(&gems); err != nil {
		t.Fatalf("gem count: %v", err)
	}
	if err := db.QueryRow(`SELECT count FROM state_kinds WHERE digest=? AND kind='agent'`, s.Digest()).Scan(&agents); err != nil {
		t.Fatalf("agent count: %v", err)
	}
	if gems != 2 || agents != 1 {
		t.Fatalf("kinds: gems=%d agents=%d", gems, agents)
	}
}

func TestSQLiteIndex_WriteStepAndCatalogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := idx.UpsertCatalogs(catalogs.Builtin(), tuning.Defaults()); err != nil {
		t.Fatalf("UpsertCatalogs: %v", err)
	}
	_ = idx.WriteStep("run1", steplog.StepLogEntry{Turn: 1, Action: engine.ActionLeft, Before: "a", After: "b", Score: -3})
	_ = idx.WriteStep("run1", steplog.StepLogEntry{Turn: 2, Action: engine.ActionUseKey, Before: "b", After: "c", Lose: true})
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var n, lose int
	var action string
	if err := db.QueryRow(`SELECT COUNT(*) FROM steps WHERE run_id='run1'`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("steps: got %d, %v want 2", n, err)
	}
	if err := db.QueryRow(`SELECT action,lose FROM steps WHERE run_id='run1' AND turn=2`).Scan(&action, &lose); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if action != "USE_KEY" || lose != 1 {
		t.Fatalf("step 2: action=%q lose=%d", action, lose)
	}

	var digest string
	if err := db.QueryRow(`SELECT digest FROM catalogs WHERE name='assets'`).Scan(&digest); err != nil {
		t.Fatalf("assets row: %v", err)
	}
	if digest != catalogs.Builtin().Digest {
		t.Fatalf("assets digest: got %s want %s", digest, catalogs.Builtin().Digest)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqStep}

	_ = s.WriteStep("r", steplog.StepLogEntry{Turn: 2})
	d, _ := levels.Lookup("basic_movement")
	s.RecordState("/tmp/x.zst", d.Slug, adventure.ToState(d.Level()))

	st := s.Stats()
	if st.DropStepTotal != 1 || st.DropStateTotal != 1 {
		t.Fatalf("drops: step=%d state=%d want 1/1", st.DropStepTotal, st.DropStateTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestCountKindsIncludesNestedMembers(t *testing.T) {
	d, _ := levels.Lookup("key_door")
	l := d.Level()
	s := adventure.ToState(l)
	for _, a := range []engine.Action{engine.ActionUp, engine.ActionRight, engine.ActionPickUp} {
		s = engine.Step(s, a)
	}
	counts := CountKinds(adventure.FromState(s))
	if counts[adventure.KindKey] != 1 || counts[adventure.KindNone] != 0 {
		t.Fatalf("counts: %v", counts)
	}
}

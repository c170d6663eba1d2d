package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	steplog "gridadventure/internal/persistence/log"
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/catalogs"
	"gridadventure/internal/sim/entity"
	"gridadventure/internal/sim/grid"
	"gridadventure/internal/sim/state"
	"gridadventure/internal/sim/tuning"
)

// SQLiteIndex is a queryable read model of recorded runs. Writes are queued
// and applied by a single goroutine; the step log and state files remain the
// source of truth, so a full queue drops rows instead of blocking play.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropStep  atomic.Uint64
	dropState atomic.Uint64
}

type reqKind int

const (
	reqStep reqKind = iota + 1
	reqState
)

type req struct {
	kind reqKind

	runID string
	step  steplog.StepLogEntry
	state stateRow
}

type stateRow struct {
	Digest     string
	Level      string
	Path       string
	Turn       int
	Width      int
	Height     int
	Entities   int
	Score      int
	Win        bool
	Lose       bool
	Kinds      map[adventure.Kind]int
	RecordedAt string
}

// Stats reports queue health.
type Stats struct {
	QueueDepth     int
	QueueCapacity  int
	DropStepTotal  uint64
	DropStateTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS steps (
			run_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			action TEXT NOT NULL,
			before_digest TEXT NOT NULL,
			after_digest TEXT NOT NULL,
			score INTEGER NOT NULL,
			win INTEGER NOT NULL,
			lose INTEGER NOT NULL,
			message TEXT,
			PRIMARY KEY (run_id, turn)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_steps_after ON steps(after_digest);`,
		`CREATE TABLE IF NOT EXISTS states (
			digest TEXT PRIMARY KEY,
			level TEXT NOT NULL,
			path TEXT NOT NULL,
			turn INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			entities INTEGER NOT NULL,
			score INTEGER NOT NULL,
			win INTEGER NOT NULL,
			lose INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_states_level_turn ON states(level, turn);`,
		`CREATE TABLE IF NOT EXISTS state_kinds (
			digest TEXT NOT NULL,
			kind TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (digest, kind)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropStepTotal:  s.dropStep.Load(),
		DropStateTotal: s.dropState.Load(),
	}
}

func (s *SQLiteIndex) WriteStep(runID string, e steplog.StepLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqStep, runID: runID, step: e}:
	default:
		s.dropStep.Add(1)
	}
	return nil
}

// RecordState indexes a state written to path, including how many entities
// of each variant it specializes to. Nested inventory and status members
// are counted too.
func (s *SQLiteIndex) RecordState(path, level string, st *state.State) {
	if s == nil || s.closed.Load() {
		return
	}
	r := stateRow{
		Digest:     st.Digest(),
		Level:      level,
		Path:       path,
		Turn:       st.Turn,
		Width:      st.Width,
		Height:     st.Height,
		Entities:   len(st.Entities),
		Score:      st.Score,
		Win:        st.Win,
		Lose:       st.Lose,
		Kinds:      CountKinds(adventure.FromState(st)),
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- req{kind: reqState, state: r}:
	default:
		s.dropState.Add(1)
	}
}

// CountKinds tallies the variants of every object reachable from l.
// Unclassified objects are counted under KindNone.
func CountKinds(l *grid.Level) map[adventure.Kind]int {
	out := map[adventure.Kind]int{}
	seen := map[entity.Object]bool{}
	l.Walk(func(_ grid.Position, c grid.Cell) {
		for _, o := range c {
			entity.Walk(o, func(m entity.Object) {
				if seen[m] {
					return
				}
				seen[m] = true
				out[adventure.KindOf(m)]++
			})
		}
	})
	return out
}

// UpsertCatalogs stores the asset table and tuning in effect, keyed by digest.
func (s *SQLiteIndex) UpsertCatalogs(assets *catalogs.AssetCatalog, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if assets != nil {
		if b, _ := json.Marshal(assets.Defs); len(b) > 0 {
			rows = append(rows, kv{name: "assets", digest: assets.Digest, json: b})
		}
	}
	if b, _ := json.Marshal(tune); len(b) > 0 {
		rows = append(rows, kv{name: "tuning", digest: tune.Digest(), json: b})
	}
	{
		names := make([]string, 0, len(adventure.Kinds()))
		for _, k := range adventure.Kinds() {
			names = append(names, k.String())
		}
		b, _ := json.Marshal(names)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "kinds", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertStep, _ := s.db.Prepare(`INSERT OR REPLACE INTO steps(run_id,turn,action,before_digest,after_digest,score,win,lose,message) VALUES(?,?,?,?,?,?,?,?,?)`)
	insertState, _ := s.db.Prepare(`INSERT OR REPLACE INTO states(digest,level,path,turn,width,height,entities,score,win,lose,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	insertKind, _ := s.db.Prepare(`INSERT OR REPLACE INTO state_kinds(digest,kind,count) VALUES(?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertStep, insertState, insertKind} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqStep:
			e := r.step
			if insertStep == nil {
				break
			}
			if _, err := tx.Stmt(insertStep).Exec(
				r.runID,
				e.Turn,
				e.Action.String(),
				e.Before,
				e.After,
				e.Score,
				boolInt(e.Win),
				boolInt(e.Lose),
				e.Message,
			); err != nil {
				rollback()
				continue
			}
			opCount++

		case reqState:
			st := r.state
			if insertState == nil || insertKind == nil {
				break
			}
			if _, err := tx.Stmt(insertState).Exec(
				st.Digest,
				st.Level,
				st.Path,
				st.Turn,
				st.Width,
				st.Height,
				st.Entities,
				st.Score,
				boolInt(st.Win),
				boolInt(st.Lose),
				st.RecordedAt,
			); err != nil {
				rollback()
				continue
			}
			opCount++
			for k, n := range st.Kinds {
				if _, err := tx.Stmt(insertKind).Exec(st.Digest, k.String(), n); err != nil {
					rollback()
					break
				}
				opCount++
			}
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}

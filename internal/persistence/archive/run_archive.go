package archive

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"gridadventure/internal/sim/state"
)

type RunArchiveMeta struct {
	RunID     string `json:"run_id"`
	Level     string `json:"level"`
	Seed      int64  `json:"seed"`
	Turn      int    `json:"turn"`
	Score     int    `json:"score"`
	Outcome   string `json:"outcome"`
	Digest    string `json:"digest"`
	State     string `json:"state"`
	CreatedAt string `json:"created_at"`
}

// Outcome names how a finished run ended, or "" while it is still open.
func Outcome(s *state.State) string {
	switch {
	case s.Win:
		return "win"
	case s.Lose:
		return "lose"
	}
	return ""
}

// ArchiveFinishedRun copies a finished run's final state file into
// `dataDir/archives/<level>/<runID>/`. It returns (archivedPath, archived=true)
// only when st is a win or a loss.
func ArchiveFinishedRun(dataDir, runID, level, statePath string, st *state.State) (archivedPath string, archived bool, err error) {
	outcome := Outcome(st)
	if outcome == "" {
		return "", false, nil
	}
	if level == "" {
		level = "unnamed"
	}

	archiveDir := filepath.Join(dataDir, "archives", level, runID)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", false, err
	}

	dst := filepath.Join(archiveDir, filepath.Base(statePath))
	if err := copyFile(statePath, dst); err != nil {
		return "", false, err
	}

	meta := RunArchiveMeta{
		RunID:     runID,
		Level:     level,
		Seed:      st.Seed,
		Turn:      st.Turn,
		Score:     st.Score,
		Outcome:   outcome,
		Digest:    st.Digest(),
		State:     filepath.Base(dst),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644)
	}

	return dst, true, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

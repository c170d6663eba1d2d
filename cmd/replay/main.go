package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	steplog "gridadventure/internal/persistence/log"
	"gridadventure/internal/persistence/snapshot"
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/state"
)

func main() {
	var (
		runDir    = flag.String("run", "", "run directory written by cmd/adventure")
		statePath = flag.String("state", "", "initial state file (default: <run>/initial.state.zst)")
		stepsPath = flag.String("steps", "", "step log (default: <run>/steps.jsonl.zst)")
		finalPath = flag.String("final", "", "expected final state (default: <run>/final.state.zst if present)")
	)
	flag.Parse()

	if *runDir == "" && *statePath == "" {
		fmt.Fprintln(os.Stderr, "missing -run or -state")
		os.Exit(2)
	}
	if *statePath == "" {
		*statePath = filepath.Join(*runDir, "initial.state.zst")
	}
	if *stepsPath == "" && *runDir != "" {
		*stepsPath = steplog.StepLogPath(*runDir)
	}
	if *finalPath == "" && *runDir != "" {
		p := filepath.Join(*runDir, "final.state.zst")
		if _, err := os.Stat(p); err == nil {
			*finalPath = p
		}
	}

	s, hdr, err := snapshot.ReadState(*statePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read state:", err)
		os.Exit(1)
	}
	fmt.Printf("state v%d level=%s turn=%d %dx%d entities=%d digest=%s\n",
		hdr.Version, hdr.Level, hdr.Turn, s.Width, s.Height, len(s.Entities), hdr.Digest)

	if *stepsPath == "" {
		return
	}
	steps, err := steplog.ReadSteps(*stepsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read steps:", err)
		os.Exit(1)
	}

	final, err := Replay(s, steps)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	if *finalPath != "" {
		want, _, err := snapshot.ReadState(*finalPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read final:", err)
			os.Exit(1)
		}
		if want.Digest() != final.Digest() {
			fmt.Fprintf(os.Stderr, "final digest mismatch: replay=%s file=%s\n", final.Digest(), want.Digest())
			os.Exit(1)
		}
	}
	fmt.Printf("replay ok: checked=%d steps turn=%d score=%d win=%v lose=%v\n",
		len(steps), final.Turn, final.Score, final.Win, final.Lose)
}

// Replay re-simulates steps from s and checks every recorded digest.
func Replay(s *state.State, steps []steplog.StepLogEntry) (*state.State, error) {
	for i, e := range steps {
		if got := s.Digest(); got != e.Before {
			return nil, fmt.Errorf("step %d (turn %d): before digest mismatch: got %s want %s", i, e.Turn, got, e.Before)
		}
		s = adventure.StepState(s, e.Action)
		if s.Turn != e.Turn {
			return nil, fmt.Errorf("step %d: turn mismatch: got %d want %d", i, s.Turn, e.Turn)
		}
		if got := s.Digest(); got != e.After {
			return nil, fmt.Errorf("step %d (turn %d): after digest mismatch: got %s want %s", i, e.Turn, got, e.After)
		}
	}
	return s, nil
}

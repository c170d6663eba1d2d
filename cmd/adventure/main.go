package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gridadventure/internal/logging"
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/catalogs"
	"gridadventure/internal/sim/encoding"
	"gridadventure/internal/sim/engine"
	"gridadventure/internal/sim/levels"
	"gridadventure/internal/sim/tuning"
)

func main() {
	var (
		level      = flag.String("level", "basic_movement", "level code, slug or title")
		seed       = flag.Int64("seed", 0, "seed (0: the level's default)")
		actions    = flag.String("actions", "", "comma separated actions, e.g. UP,RIGHT,PICK_UP")
		outDir     = flag.String("out", "", "run directory for state files and the step log (optional)")
		archiveDir = flag.String("archive", "", "data directory that keeps finished runs under archives/ (optional)")
		configDir  = flag.String("configs", "./configs", "config directory")
		list       = flag.Bool("list", false, "list levels and exit")
		assetsOnly = flag.Bool("assets", false, "print the asset of every occupant instead of the map")
		logLevel   = flag.String("log_level", "", "log level")
	)
	flag.Parse()

	log := logging.New(*logLevel, "text").WithField("component", "adventure")

	if *list {
		for _, d := range levels.All() {
			fmt.Printf("%-4s %-20s %s\n", d.Code, d.Slug, d.Title)
		}
		return
	}

	def, ok := levels.Lookup(*level)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown level %q (have: %s)\n", *level, strings.Join(levels.Slugs(), ", "))
		os.Exit(2)
	}
	script, err := parseActions(*actions)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	tune, err := tuning.Load(filepath.Join(*configDir, "tuning.yaml"))
	if err != nil {
		log.WithError(err).Warn("tuning: using defaults")
		tune = tuning.Defaults()
	}
	assets, err := catalogs.LoadAssets(filepath.Join(*configDir, "assets.yaml"))
	if err != nil {
		log.WithError(err).Warn("assets: using builtin table")
		assets = catalogs.Builtin()
	}

	initial := adventure.ToState(def.Build(adventure.NewFactory(tune), *seed))
	run := &runner{log: log, level: def.Slug, dir: *outDir, archive: *archiveDir}
	if err := run.open(initial, assets, tune); err != nil {
		log.WithError(err).Fatal("open run")
	}

	final := run.play(initial, script)
	if err := run.close(final); err != nil {
		log.WithError(err).Fatal("close run")
	}

	l := adventure.FromState(final)
	fmt.Printf("%s (%s) turn=%d score=%d win=%v lose=%v\n", def.Title, def.Code, final.Turn, final.Score, final.Win, final.Lose)
	if final.Message != "" {
		fmt.Println(final.Message)
	}
	if *assetsOnly {
		printAssets(l, assets)
	} else {
		fmt.Print(encoding.Render(l))
	}
	fmt.Println("digest", final.Digest())
}

func parseActions(s string) ([]engine.Action, error) {
	var out []engine.Action
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		a, ok := engine.ParseAction(f)
		if !ok {
			return nil, fmt.Errorf("unknown action %q", f)
		}
		out = append(out, a)
	}
	return out, nil
}

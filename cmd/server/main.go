package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"gridadventure/internal/logging"
	"gridadventure/internal/persistence/indexdb"
	"gridadventure/internal/sim/adventure"
	"gridadventure/internal/sim/catalogs"
	"gridadventure/internal/sim/tuning"
	"gridadventure/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		assetsPath = flag.String("assets", "", "path to assets.yaml (default: <configs>/assets.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite run index")
		logLevel   = flag.String("log_level", "", "log level (default: $LOG_LEVEL or info)")
		logFormat  = flag.String("log_format", "", "text or json (default: $LOG_FORMAT or text)")
	)
	flag.Parse()

	logger := logging.New(*logLevel, *logFormat)
	log := logger.WithField("component", "server")

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Fatal("load tuning")
		}
		log.WithField("path", tp).Warn("tuning not found; using defaults")
		tune = tuning.Defaults()
	}

	ap := strings.TrimSpace(*assetsPath)
	if ap == "" {
		ap = filepath.Join(*configDir, "assets.yaml")
	}
	assets, err := catalogs.LoadAssets(ap)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Fatal("load assets")
		}
		log.WithField("path", ap).Warn("assets not found; using builtin table")
		assets = catalogs.Builtin()
	}

	// Optional read model; play never depends on it.
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "runs.sqlite"))
		if err != nil {
			log.WithError(err).Fatal("open index")
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(assets, tune); err != nil {
			log.WithError(err).Warn("index: upsert catalogs")
		}
	}

	rec := newRecorder(filepath.Join(*dataDir, "runs"), idx, log)
	defer rec.Close()

	wsSrv := ws.NewServer(ws.Options{
		Log:          logger,
		Factory:      adventure.NewFactory(tune),
		Assets:       assets,
		TuningDigest: tune.Digest(),
		OnStep:       rec.OnStep,
	})

	s := &Server{ws: wsSrv, idx: idx, factory: adventure.NewFactory(tune)}
	s.routes()

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(logrus.Fields{
			"addr":          *addr,
			"assets_digest": assets.Digest,
			"tuning_digest": tune.Digest(),
		}).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/storage"
)

// The running server holds the store in memory and rewrites the whole
// blob on every change, so by default the export is sent to it over HTTP.
// -offline writes the store directly and is only safe while no server is
// running against it.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to Alpha Progression CSV export (required)")
	week := flag.String("week", "", "name of the week to import into (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing workouts")
	serverURL := flag.String("server", "", "liftlog server URL (default derived from config)")
	offline := flag.Bool("offline", false, "write the store directly; the server must be stopped")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" || *week == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -file export.csv -week \"Week 1\" [-dry-run] [-server URL | -offline]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Error("failed to open export", "path", *filePath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if *dryRun {
		log.Info("DRY RUN mode, no workouts will be written")
	}

	var result *ingest.Result
	if *offline {
		result, err = importOffline(ctx, log, cfg, f, *week, *dryRun)
	} else {
		url := *serverURL
		if url == "" {
			url = defaultServerURL(cfg)
		}
		log.Info("sending export", "server", url)
		result, err = alpha.NewClient(url).Import(ctx, f, *week, *dryRun)
	}
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	printResult(log, result)
	log.Info("import complete")
}

// defaultServerURL is where the server from the same config listens.
func defaultServerURL(cfg *config.Config) string {
	if cfg.Tailscale.Enabled {
		return "http://" + cfg.Tailscale.Hostname
	}
	return fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
}

func importOffline(ctx context.Context, log *slog.Logger, cfg *config.Config, r io.Reader, week string, dryRun bool) (*ingest.Result, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		return nil, errors.New("offline import needs a persistent storage driver, not memory")
	}
	backend, err := storage.OpenBackend(ctx, cfg.Storage.Driver, cfg.Storage.Path, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}
	defer backend.Close()

	store, err := storage.Open(ctx, backend, log, storage.WithKey(cfg.Storage.Key))
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	return alpha.NewProvider(store, log).Ingest(ctx, r, week, dryRun)
}

func printResult(log *slog.Logger, r *ingest.Result) {
	log.Info("import stats",
		"week", r.Week,
		"sessions_received", r.SessionsReceived,
		"workouts_inserted", r.WorkoutsInserted,
		"workouts_skipped", r.WorkoutsSkipped,
		"sets_inserted", r.SetsInserted,
		"warmups_skipped", r.WarmupsSkipped,
		"dry_run", r.DryRun,
	)
}

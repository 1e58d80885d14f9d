package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finley/internal/config"
	"finley/internal/forecast"
	"finley/internal/gather"
	"finley/internal/pipeline"
	"finley/internal/scheduler"
	"finley/internal/store"
	"finley/internal/util"
)

func main() {
	// .env is optional; real environments set variables directly.
	godotenv.Load()

	cfgPath := "config/finley.yaml"
	if p := os.Getenv("FINLEY_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	forecasts, err := store.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("failed to open forecast store: %v", err)
	}
	defer forecasts.Close()

	if err := forecasts.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	var archive *store.BarArchive
	if cfg.Storage.DataDir != "" {
		archive = store.NewBarArchive(cfg.Storage.DataDir)
	}

	p := pipeline.New(
		gather.NewUniverseProvider(cfg.Universe.URL, cfg.Universe.CSVPath),
		gather.NewFetcher(
			gather.NewAlpacaFetcher(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL),
			cfg.Fetch.MaxWorkers,
			cfg.Fetch.RateLimitPerMin,
		),
		forecast.NewTrainer(),
		forecasts,
		archive,
		cfg.Fetch.Timeout,
	)

	if cfg.Schedule == "" {
		if err := p.Run(ctx); err != nil {
			log.Fatalf("pipeline run failed: %v", err)
		}
		return
	}

	sched, err := scheduler.New(ctx, cfg.Schedule, p)
	if err != nil {
		log.Fatalf("invalid schedule %q: %v", cfg.Schedule, err)
	}
	sched.Start()
	defer sched.Stop()

	slog.Info("finley-forecast running on schedule", "spec", cfg.Schedule)
	<-ctx.Done()
}

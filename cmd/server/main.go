// Package main implements the entry point for the lessondeck API server,
// which stores teachers' lesson plans and turns them into illustrated slide
// decks in the background.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/lessondeck/internal/config"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/phrazzld/lessondeck/internal/platform/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "lessondeck: %v\n", err)
		os.Exit(1)
	}
}

// run loads configuration, connects to Postgres, applies migrations and
// serves until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("lessondeck starting",
		"port", cfg.Server.Port,
		"image_mode", cfg.Generation.ImageMode,
		"task_workers", cfg.Task.WorkerCount)

	db, err := postgres.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, db, log); err != nil {
			return err
		}
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		return err
	}
	defer app.cleanup()

	return app.Run(ctx)
}

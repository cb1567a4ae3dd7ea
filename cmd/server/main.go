// Package main implements the entry point for the CampForge API server,
// which manages scouting groups, camp activities and AI-assisted activity
// evaluations.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/campforge/campforge-api/internal/config"
	"github.com/campforge/campforge-api/internal/platform/logger"
)

func main() {
	ctx := context.Background()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging and wires the
// application: database, migrations, stores, services and the background
// worker. The worker is started before the HTTP server so queued requests
// survive restarts without waiting for traffic.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"worker_poll_interval_sec", cfg.Worker.PollIntervalSec,
		"worker_batch_size", cfg.Worker.BatchSize)

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(app.db, appLogger); err != nil {
		app.cleanup()
		return nil, err
	}

	app.worker.Start(ctx)

	return app, nil
}

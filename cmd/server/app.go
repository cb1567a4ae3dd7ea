package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/campforge/campforge-api/internal/config"
	"github.com/campforge/campforge-api/internal/platform/gemini"
	"github.com/campforge/campforge-api/internal/platform/postgres"
	"github.com/campforge/campforge-api/internal/service/auth"
	"github.com/campforge/campforge-api/internal/service/evaluation"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/campforge/campforge-api/internal/worker"
)

// application holds the wired dependencies of the server process.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore       store.UserStore
	groupStore      store.GroupStore
	activityStore   store.ActivityStore
	requestStore    store.EvaluationRequestStore
	evaluationStore store.EvaluationStore

	jwtService        auth.JWTService
	passwordVerifier  auth.PasswordVerifier
	evaluationService *evaluation.Service
	worker            *worker.Worker
}

// newApplication wires stores, services and the background worker from the
// loaded configuration. The caller owns the returned application's lifecycle
// and must call cleanup when done.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.groupStore = postgres.NewPostgresGroupStore(db, logger)
	app.activityStore = postgres.NewPostgresActivityStore(db, logger)
	app.requestStore = postgres.NewPostgresEvaluationRequestStore(db, logger)
	app.evaluationStore = postgres.NewPostgresEvaluationStore(db, logger)

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	app.passwordVerifier = auth.NewBcryptVerifier(cfg.Auth.BCryptCost)

	app.evaluationService, err = evaluation.NewService(
		logger,
		app.activityStore,
		app.groupStore,
		app.requestStore,
		app.evaluationStore,
		time.Duration(cfg.Worker.CooldownSec)*time.Second,
		time.Duration(cfg.Worker.PollHintSec)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluation service: %w", err)
	}

	llmClient, err := gemini.NewClient(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	writer, err := evaluation.NewWriter(logger, db, app.evaluationStore, app.requestStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluation writer: %w", err)
	}

	app.worker, err = worker.New(
		logger,
		worker.Config{
			PollInterval: time.Duration(cfg.Worker.PollIntervalSec) * time.Second,
			BatchSize:    cfg.Worker.BatchSize,
			JobTimeout:   time.Duration(cfg.LLM.RequestTimeoutSec) * time.Second,
			StuckAge:     time.Duration(cfg.Worker.StuckAgeMinutes) * time.Minute,
		},
		app.requestStore,
		app.activityStore,
		app.groupStore,
		llmClient,
		writer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker: %w", err)
	}

	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}

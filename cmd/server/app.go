package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/lessondeck/internal/api"
	"github.com/phrazzld/lessondeck/internal/config"
	"github.com/phrazzld/lessondeck/internal/deck"
	"github.com/phrazzld/lessondeck/internal/export"
	"github.com/phrazzld/lessondeck/internal/platform/gemini"
	"github.com/phrazzld/lessondeck/internal/platform/postgres"
	"github.com/phrazzld/lessondeck/internal/platform/redis"
	"github.com/phrazzld/lessondeck/internal/service"
	"github.com/phrazzld/lessondeck/internal/service/auth"
	"github.com/phrazzld/lessondeck/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService  auth.JWTService
	lessonPlans service.LessonPlanService
	decks       service.DeckService

	taskRunner *task.TaskRunner
	closeCache func() error
}

// newApplication wires stores, the generation pipeline, the task runner and
// the services. The task runner is created but not started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	planStore := postgres.NewPostgresLessonPlanStore(db, logger)
	deckStore := postgres.NewPostgresDeckStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)

	cache := app.connectCache(ctx)

	generator, err := gemini.NewGenerator(ctx, logger.With("component", "llm_generator"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}

	opts, err := deck.OptionsFromConfig(cfg.LLM, cfg.Generation, cache)
	if err != nil {
		return nil, fmt.Errorf("invalid generation settings: %w", err)
	}
	pipeline := deck.NewPipeline(generator, generator, opts, logger.With("component", "deck_pipeline"))
	progress := deck.NewProgressRegistry()

	registry := task.NewRegistry()
	app.taskRunner = task.NewTaskRunner(taskStore, registry, runnerConfig(cfg.Task), logger)

	factory, err := task.NewDeckGenerationTaskFactory(pipeline, planStore, deckStore, progress, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck task factory: %w", err)
	}
	factory.Register(registry)

	fonts, err := export.LoadFonts(cfg.Export.FontRegular, cfg.Export.FontBold)
	if err != nil {
		return nil, err
	}
	exporter, err := export.NewExporter(fonts)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	app.lessonPlans, err = service.NewLessonPlanService(planStore, exporter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson plan service: %w", err)
	}

	app.decks, err = service.NewDeckService(service.DeckServiceDeps{
		DB:       db,
		Plans:    planStore,
		Decks:    deckStore,
		Runner:   app.taskRunner,
		Factory:  factory,
		Progress: progress,
		Exporter: exporter,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// connectCache dials the optional Redis image cache. The server runs without
// a cache when it is not configured or unreachable.
func (app *application) connectCache(ctx context.Context) deck.ImageCache {
	if app.config.Cache.RedisAddr == "" {
		app.logger.Info("image cache disabled")
		return nil
	}

	cache, closeFn, err := redis.Connect(ctx, app.config.Cache, app.logger)
	if err != nil {
		app.logger.Warn("image cache unavailable, continuing without it", "error", err)
		return nil
	}
	app.closeCache = closeFn
	app.logger.Info("image cache connected", "ttl_minutes", app.config.Cache.TTLMinutes)
	return cache
}

// runnerConfig maps the task section onto the runner's settings, keeping
// the runner defaults for anything unset.
func runnerConfig(cfg config.TaskConfig) task.TaskRunnerConfig {
	rc := task.DefaultTaskRunnerConfig()
	if cfg.WorkerCount > 0 {
		rc.WorkerCount = cfg.WorkerCount
	}
	if cfg.QueueSize > 0 {
		rc.QueueSize = cfg.QueueSize
	}
	if cfg.StuckTaskAgeMinutes > 0 {
		rc.StuckTaskAge = time.Duration(cfg.StuckTaskAgeMinutes) * time.Minute
	}
	if cfg.DeckTimeoutMinutes > 0 {
		rc.TaskTimeout = time.Duration(cfg.DeckTimeoutMinutes) * time.Minute
	}
	return rc
}

// Run starts the task runner and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.taskRunner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	router := api.NewRouter(api.RouterDeps{
		JWT:         app.jwtService,
		LessonPlans: app.lessonPlans,
		Decks:       app.decks,
		DB:          app.db,
		Logger:      app.logger,
	})

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.logger.Info("stopping task runner")
		app.taskRunner.Stop()
	}
	if app.closeCache != nil {
		if err := app.closeCache(); err != nil {
			app.logger.Error("failed to close image cache", "error", err)
		}
	}
}

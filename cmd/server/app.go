package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/vocabflow/internal/config"
	"github.com/phrazzld/vocabflow/internal/domain/srs"
	"github.com/phrazzld/vocabflow/internal/events"
	"github.com/phrazzld/vocabflow/internal/generation"
	"github.com/phrazzld/vocabflow/internal/jobs"
	"github.com/phrazzld/vocabflow/internal/platform/gemini"
	"github.com/phrazzld/vocabflow/internal/platform/sqlstore"
	"github.com/phrazzld/vocabflow/internal/redact"
	"github.com/phrazzld/vocabflow/internal/service/auth"
	"github.com/phrazzld/vocabflow/internal/service/learning"
	"github.com/phrazzld/vocabflow/internal/store"
	"github.com/phrazzld/vocabflow/internal/task"
)

// application holds the shared dependencies so they can be shut down in
// order.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlstore.DB

	stores     sqlstore.Stores
	jwtService auth.JWTService
	generator  generation.Generator
	emitter    *events.InMemoryEventEmitter
	service    *learning.Service

	taskRunner *task.TaskRunner
	jobs       *jobs.Scheduler
}

// newApplication creates the services and starts the background workers.
// The caller owns db until newApplication succeeds; afterwards cleanup
// closes it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sqlstore.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		stores: sqlstore.NewStores(db, logger),
	}

	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Server.Timezone, err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.generator = generation.Unavailable{}
	if cfg.LLM.Enabled() {
		g, err := gemini.NewGenerator(ctx, logger, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
		}
		app.generator = g
		logger.Info("LLM generator initialized", slog.String("model", cfg.LLM.ModelName))
	} else {
		logger.Warn("no Gemini API key configured, text import is disabled")
	}

	registry := task.NewRegistry()
	registry.Register(task.TaskTypePersistWords, task.PersistWordsBuilder(app.stores.Words))
	app.taskRunner = task.NewTaskRunner(app.stores.Tasks, registry, taskRunnerConfig(cfg.Task), logger)

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.Subscribe(task.NewPersistenceEventHandler(app.stores.Words, app.taskRunner, logger), events.TypeWordsUpdated)
	app.emitter.Subscribe(events.NewActivityHandler(logger), events.TypeWordsImported, events.TypeStoryCompleted)

	app.service = learning.NewService(
		app.stores.Words,
		app.stores.Stats,
		app.stores.Stories,
		app.emitter,
		srs.NewDefaultService(),
		logger,
		learning.WithGenerator(app.generator),
		learning.WithLocation(loc),
	)
	app.taskRunner.SetCompletionHandler(func(t task.Task) {
		if p, ok := t.(*task.PersistWordsTask); ok {
			app.service.WordsPersisted(p.LearnerID(), p.Words())
		}
	})

	if err := app.taskRunner.Start(ctx); err != nil {
		if !store.IsSchemaMissing(err) {
			return nil, fmt.Errorf("failed to start task runner: %w", err)
		}
		// Without tables nothing can be persisted; the API reports
		// setup required until migrations are applied and the server restarts.
		logger.Warn("database schema missing, background persistence disabled",
			slog.String("error", redact.Error(err)))
	}

	app.jobs, err = jobs.New(app.taskRunner, jobs.ConfigFromTask(cfg.Task), logger)
	if err != nil {
		app.taskRunner.Stop()
		return nil, fmt.Errorf("failed to create maintenance jobs: %w", err)
	}
	app.jobs.Start()

	logger.Info("application initialized")
	return app, nil
}

func taskRunnerConfig(cfg config.TaskConfig) task.TaskRunnerConfig {
	rc := task.DefaultTaskRunnerConfig()
	rc.WorkerCount = cfg.WorkerCount
	rc.QueueSize = cfg.QueueSize
	rc.MaxAttempts = cfg.MaxAttempts
	rc.StuckTaskAge = time.Duration(cfg.StuckTaskAgeMinutes) * time.Minute
	return rc
}

// Run serves HTTP until ctx is cancelled, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the background work, then closes the database. Jobs go
// first so they do not requeue into a stopped runner.
func (app *application) cleanup() {
	if app.jobs != nil {
		app.jobs.Stop()
	}
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", redact.Error(err)))
		}
	}
	app.logger.Info("application shutdown completed")
}

// Package main runs the VocabFlow API server: it schedules vocabulary
// review sessions, tracks daily progress and serves reading stories.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phrazzld/vocabflow/internal/config"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/platform/sqlstore"
	"github.com/phrazzld/vocabflow/internal/redact"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("vocabflow server: %s", redact.Error(err))
	}
}

// run wires the application and blocks until ctx is cancelled or the HTTP
// server fails.
func run(ctx context.Context) error {
	if err := loadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("timezone", cfg.Server.Timezone),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("llm_enabled", cfg.LLM.Enabled()))

	db, err := sqlstore.Open(ctx, cfg.Database, l)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if _, err := sqlstore.Migrate(ctx, db, sqlstore.MigrateUp, l); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// loadDotEnv reads environment variables from path. A missing file is not
// an error; variables already set in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

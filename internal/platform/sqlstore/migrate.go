package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migration commands accepted by Migrate.
const (
	MigrateUp      = "up"
	MigrateDown    = "down"
	MigrateStatus  = "status"
	MigrateVersion = "version"
)

// MigrationStatus describes one migration file.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

func (db *DB) provider() (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationsFS, db.Dialect.migrationsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	p, err := goose.NewProvider(db.Dialect.goose, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return p, nil
}

// Migrate runs a migration command against db. "up" applies all pending
// migrations, "down" rolls back the latest one, "status" and "version" only
// report. The returned statuses describe the state after the command.
func Migrate(ctx context.Context, db *DB, command string, logger *slog.Logger) ([]MigrationStatus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "migrations", "command", command, "driver", db.Dialect.Name())

	p, err := db.provider()
	if err != nil {
		return nil, err
	}

	switch command {
	case MigrateUp:
		results, err := p.Up(ctx)
		for _, r := range results {
			logger.Info("migration applied", "source", r.Source.Path, "duration_ms", r.Duration.Milliseconds())
		}
		if err != nil {
			return nil, fmt.Errorf("migrate up: %w", err)
		}
	case MigrateDown:
		r, err := p.Down(ctx)
		if err != nil {
			return nil, fmt.Errorf("migrate down: %w", err)
		}
		logger.Info("migration rolled back", "source", r.Source.Path)
	case MigrateStatus:
	case MigrateVersion:
		v, err := p.GetDBVersion(ctx)
		if err != nil {
			return nil, fmt.Errorf("migrate version: %w", err)
		}
		logger.Info("database version", "version", v)
	default:
		return nil, fmt.Errorf("unknown migration command %q", command)
	}

	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationStatus{
			Version: s.Source.Version,
			Source:  s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/vocabflow/internal/config"
	"github.com/phrazzld/vocabflow/internal/store"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB is a connection pool together with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// New wraps an open pool.
func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{DB: db, Dialect: dialect}
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.URL
	if dialect == SQLite {
		dsn = sqliteDSN(cfg.SQLitePath)
	}

	sqlDB, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name(), err)
	}
	configurePool(sqlDB, dialect, cfg.SQLitePath)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect.Name(), err)
	}

	db := New(sqlDB, dialect)
	if dialect == SQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil && !isMemory(cfg.SQLitePath) {
			logger.Warn("failed to enable WAL mode", "error", err)
		}
	}

	logger.Info("database connection established", "driver", dialect.Name())
	return db, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

func sqliteDSN(path string) string {
	if isMemory(path) {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func configurePool(db *sql.DB, dialect Dialect, sqlitePath string) {
	switch {
	case dialect == SQLite && isMemory(sqlitePath):
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	case dialect == SQLite:
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(time.Minute)
	}
}

// Stores bundles the store implementations sharing one pool.
type Stores struct {
	Words   *WordStore
	Stats   *StatsStore
	Stories *StoryStore
	Tasks   *TaskStore
}

// NewStores creates all stores for db.
func NewStores(db *DB, logger *slog.Logger) Stores {
	return Stores{
		Words:   NewWordStore(db, logger),
		Stats:   NewStatsStore(db, logger),
		Stories: NewStoryStore(db, logger),
		Tasks:   NewTaskStore(db, logger),
	}
}

// exec and query helpers rebind the query for the dialect.

func (db *DB) exec(ctx context.Context, q store.DBTX, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, db.Dialect.Rebind(query), args...)
}

func (db *DB) query(ctx context.Context, q store.DBTX, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, db.Dialect.Rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, q store.DBTX, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, db.Dialect.Rebind(query), args...)
}

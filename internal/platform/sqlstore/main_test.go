package sqlstore

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/vocabflow/internal/config"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDB returns a migrated in-memory SQLite database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"}, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = Migrate(ctx, db, MigrateUp, quietLogger())
	require.NoError(t, err)
	return db
}

var baseTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newWord(id, word string) domain.WordRecord {
	return domain.WordRecord{
		ID:       id,
		Word:     word,
		Meaning:  "meaning of " + word,
		Example:  "An example with " + word + ".",
		Language: "en",
		Status:   domain.WordStatusNew,
	}
}

func reviewedWord(id, word string, last time.Time) domain.WordRecord {
	w := newWord(id, word)
	w.Status = domain.WordStatusLearning
	w.Interval = 1
	w.Repetition = 1
	w.NextReviewDate = last.AddDate(0, 0, 1)
	w.LastReviewDate = last
	w.StrengthScore = 10
	w.TotalAttempts = 1
	w.AvgResponseTime = 1200.5
	return w
}

package logger_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestLogger(t *testing.T) {
	t.Parallel()

	l, buf := logger.NewTestLogger(t)
	l.Debug("debug is captured")
	l.Info("word imported", slog.String("word", "lucid"), slog.Int("count", 3))

	logger.AssertLogContains(t, buf, "debug is captured")
	logger.AssertLogField(t, buf, "word", "lucid")
	logger.AssertLogField(t, buf, "count", float64(3))

	entries, err := buf.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	buf.Reset()
	assert.Empty(t, buf.String())
}

func TestTestLogBufferConcurrentWrites(t *testing.T) {
	t.Parallel()

	l, buf := logger.NewTestLogger(t)
	ctx := logger.WithLogger(context.Background(), l)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.FromContext(ctx).Info("tick")
		}()
	}
	wg.Wait()

	entries, err := buf.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 50)
}

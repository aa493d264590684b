package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestLogBuffer is a thread-safe buffer for capturing log output in tests.
type TestLogBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write implements io.Writer for TestLogBuffer.
func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns the buffer contents as a string.
func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset clears the buffer contents.
func (b *TestLogBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Entries parses the buffer contents as JSON log entries, one per line.
func (b *TestLogBuffer) Entries() ([]map[string]any, error) {
	lines := strings.Split(b.String(), "\n")
	entries := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// NewTestLogger returns a JSON logger at debug level that writes into the
// returned buffer. The buffer is dumped to the test log when t fails.
func NewTestLogger(t testing.TB) (*slog.Logger, *TestLogBuffer) {
	t.Helper()
	buf := &TestLogBuffer{}
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("captured logs:\n%s", buf.String())
		}
	})
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// AssertLogContains fails the test when the captured output does not
// contain content.
func AssertLogContains(t testing.TB, buf *TestLogBuffer, content string) {
	t.Helper()
	if !strings.Contains(buf.String(), content) {
		t.Errorf("expected log to contain %q, got:\n%s", content, buf.String())
	}
}

// AssertLogField fails the test unless some entry has field set to expected.
// JSON numbers decode as float64.
func AssertLogField(t testing.TB, buf *TestLogBuffer, field string, expected any) {
	t.Helper()
	entries, err := buf.Entries()
	if err != nil {
		t.Fatalf("failed to parse log entries: %v", err)
	}
	for _, e := range entries {
		if v, ok := e[field]; ok && v == expected {
			return
		}
	}
	t.Errorf("no log entry has %s=%v, got:\n%s", field, expected, buf.String())
}

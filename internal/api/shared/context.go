package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// ContextKey is the type of the request context keys set by the API
// middleware.
type ContextKey string

const (
	// LearnerIDContextKey holds the authenticated learner id (the token
	// subject).
	LearnerIDContextKey ContextKey = "learnerID"

	// TraceIDKey holds the per-request trace id.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace id.
	TraceIDLength = 16 // 32 hex characters
)

// WithLearnerID returns a copy of ctx carrying learnerID.
func WithLearnerID(ctx context.Context, learnerID string) context.Context {
	return context.WithValue(ctx, LearnerIDContextKey, learnerID)
}

// LearnerID returns the learner id stored in ctx. The boolean is false when
// the request was not authenticated.
func LearnerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(LearnerIDContextKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// SetTraceID adds a fresh trace id to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace id from ctx, or "" when none is set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns 32 hex characters. A uuid is used when the
// system random source fails.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if n, err := rand.Read(b); err != nil || n != TraceIDLength {
		id := uuid.New()
		return hex.EncodeToString(id[:])
	}
	return hex.EncodeToString(b)
}

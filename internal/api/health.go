package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/vocabflow/internal/api/shared"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/redact"
)

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

const healthTimeout = 2 * time.Second

// HealthHandler returns a handler for GET /health. It responds 503 when db
// does not answer a ping.
func HealthHandler(db Pinger, fallback *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), fallback).
				Warn("health check failed", slog.String("error", redact.Error(err)))
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: "down"})
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Database: "up"})
	}
}

package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/vocabflow/internal/api/shared"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/redact"
	"github.com/phrazzld/vocabflow/internal/service/auth"
)

// requireLearner returns the authenticated learner id. It writes a 401
// and returns false when the auth middleware did not run.
func requireLearner(w http.ResponseWriter, r *http.Request, log *slog.Logger) (string, bool) {
	learnerID, ok := shared.LearnerID(r.Context())
	if !ok {
		log.Warn("learner ID not found in request context")
		HandleAPIError(w, r, auth.ErrMissingSubject, "")
		return "", false
	}
	return learnerID, true
}

// decodeAndValidate decodes the JSON body into v and validates it. On
// failure it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}, log *slog.Logger) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// getPathParam returns a required URL path parameter.
func getPathParam(r *http.Request, name string) (string, error) {
	value := chi.URLParam(r, name)
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrValidation, name)
	}
	return value, nil
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/vocabflow/internal/api/shared"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/generation"
	"github.com/phrazzld/vocabflow/internal/service/auth"
	"github.com/phrazzld/vocabflow/internal/service/learning"
	"github.com/phrazzld/vocabflow/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"nil error", nil, http.StatusInternalServerError, "An unexpected error occurred"},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
		{"expired token", fmt.Errorf("validate: %w", auth.ErrExpiredToken), http.StatusUnauthorized, "Token expired"},
		{"story not found", learning.ErrStoryNotFound, http.StatusNotFound, "Story not found"},
		{"word not found", fmt.Errorf("get: %w", store.ErrWordNotFound), http.StatusNotFound, "Word not found"},
		{"invalid transition", fmt.Errorf("begin quiz: %w", learning.ErrInvalidTransition), http.StatusConflict, "Session is not in the right state for this action"},
		{"duplicate word", store.ErrWordExists, http.StatusConflict, "Already exists"},
		{"invalid settings", learning.ErrInvalidSettings, http.StatusBadRequest, "Invalid settings"},
		{"empty text", learning.ErrEmptyInput, http.StatusBadRequest, "Text is required"},
		{"invalid status", fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidStatus), http.StatusBadRequest, "Invalid word status"},
		{"validation", domain.ErrValidation, http.StatusBadRequest, "Validation error"},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest, "Request body is required"},
		{"content blocked", generation.ErrContentBlocked, http.StatusUnprocessableEntity, "The text was rejected by the content filter"},
		{"setup required", learning.ErrSetupRequired, http.StatusServiceUnavailable, "Database setup required"},
		{
			"generator unavailable through service error",
			learning.NewServiceError("import", "failed to extract", generation.ErrUnavailable),
			http.StatusServiceUnavailable,
			"Text analysis is not available",
		},
		{"transient generation failure", generation.ErrTransientFailure, http.StatusServiceUnavailable, "Text analysis is temporarily unavailable"},
		{"generation failed", generation.ErrInvalidResponse, http.StatusBadGateway, "Text analysis failed"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "Request timed out"},
		{"nothing to review", learning.ErrNothingToReview, http.StatusNoContent, "An unexpected error occurred"},
		{"unknown", errors.New("postgres://user:secret@db/vocab refused"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantStatus, MapErrorToStatusCode(tt.err))
			assert.Equal(t, tt.wantMessage, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.Validate.Struct(TextRequest{})
	assert.Equal(t, "Invalid Text: required field", SanitizeValidationError(err))

	err = shared.Validate.Struct(SubmitAnswersRequest{Results: []QuizAnswer{{WordID: "w1", ResponseTimeMs: -1}}})
	assert.Equal(t, "Invalid ResponseTimeMs: too small", SanitizeValidationError(err))

	flattened := errors.New("Key: 'WordEntry.Word' Error:Field validation for 'Word' failed on the 'required' tag")
	assert.Equal(t, "Invalid Word: required field", SanitizeValidationError(flattened))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}

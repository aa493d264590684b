package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/vocabflow/internal/api/shared"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/generation"
	"github.com/phrazzld/vocabflow/internal/service/auth"
	"github.com/phrazzld/vocabflow/internal/service/learning"
	"github.com/phrazzld/vocabflow/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing the error itself to the client.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMissingSubject):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, learning.ErrStoryNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, learning.ErrInvalidTransition),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, learning.ErrInvalidSettings),
		errors.Is(err, learning.ErrEmptyInput),
		errors.Is(err, generation.ErrEmptyInput),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	// Unavailable: no schema or no language model configured
	case errors.Is(err, learning.ErrSetupRequired),
		errors.Is(err, store.ErrSchemaMissing),
		errors.Is(err, generation.ErrUnavailable),
		errors.Is(err, generation.ErrTransientFailure):
		return http.StatusServiceUnavailable

	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	// Special cases
	case errors.Is(err, learning.ErrNothingToReview):
		return http.StatusNoContent

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMissingSubject):
		return "Invalid token"

	case errors.Is(err, learning.ErrStoryNotFound):
		return "Story not found"
	case errors.Is(err, store.ErrWordNotFound):
		return "Word not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, learning.ErrInvalidTransition):
		return "Session is not in the right state for this action"
	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	case errors.Is(err, learning.ErrInvalidSettings):
		return "Invalid settings"
	case errors.Is(err, learning.ErrEmptyInput),
		errors.Is(err, generation.ErrEmptyInput):
		return "Text is required"
	case errors.Is(err, domain.ErrInvalidStatus):
		return "Invalid word status"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation error"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.Is(err, generation.ErrContentBlocked):
		return "The text was rejected by the content filter"
	case errors.Is(err, learning.ErrSetupRequired),
		errors.Is(err, store.ErrSchemaMissing):
		return "Database setup required"
	case errors.Is(err, generation.ErrUnavailable):
		return "Text analysis is not available"
	case errors.Is(err, generation.ErrTransientFailure):
		return "Text analysis is temporarily unavailable"
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return "Text analysis failed"

	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a short message that
// names the first failing field and rule.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}

	// Errors rendered to strings by another layer still carry the
	// validator's "Field validation for 'X' failed on the 'tag' tag" form.
	errMsg := err.Error()
	if _, after, ok := strings.Cut(errMsg, "Field validation for '"); ok {
		field, rest, _ := strings.Cut(after, "'")
		if _, tagPart, ok := strings.Cut(rest, "on the '"); ok {
			tag, _, _ := strings.Cut(tagPart, "'")
			return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
		}
		return fmt.Sprintf("Invalid %s", field)
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. A non-empty fallback
// replaces the generic message for unclassified server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

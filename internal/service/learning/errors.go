package learning

import (
	"errors"
	"fmt"
)

// Common error types for the learning service.
var (
	// ErrNothingToReview indicates that the planned session is empty.
	// It is an expected outcome, not a failure.
	ErrNothingToReview = errors.New("nothing to review")

	// ErrInvalidTransition indicates a session operation that is not allowed
	// in the learner's current session phase.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrStoryNotFound indicates that the story id is not in the learner's
	// catalog.
	ErrStoryNotFound = errors.New("story not found")

	// ErrSetupRequired indicates that the database schema has not been
	// created yet.
	ErrSetupRequired = errors.New("setup required")

	// ErrInvalidSettings indicates that daily settings failed validation.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrEmptyInput indicates that an import carried no usable content.
	ErrEmptyInput = errors.New("empty input")
)

// ServiceError wraps errors from the learning service with the operation
// that failed, so callers can use errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session", "complete_quiz")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is wrapped with a more specific message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyWord is returned when a word record has no surface form.
	ErrEmptyWord = errors.New("word cannot be empty")

	// ErrEmptyID is returned when an entity is missing its identifier.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrInvalidStatus is returned for an unknown word status.
	ErrInvalidStatus = errors.New("invalid word status")

	// ErrInvalidQuestionType is returned for an unknown story question type.
	ErrInvalidQuestionType = errors.New("invalid question type")

	// ErrInvalidDate is returned when a day string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)

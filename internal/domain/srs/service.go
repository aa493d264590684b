package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/vocabflow/internal/domain"
)

// Common errors
var (
	ErrNilWord = errors.New("word record cannot be nil")
)

// Service defines the memory-model operations used by the orchestration layer.
type Service interface {
	// ApplyAnswer returns the word's state after a single answer.
	ApplyAnswer(
		word *domain.WordRecord,
		correct bool,
		responseTimeMs float64,
		now time.Time,
	) (*domain.WordRecord, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
// A nil params falls back to the defaults.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// ApplyAnswer implements the Service interface
func (s *defaultService) ApplyAnswer(
	word *domain.WordRecord,
	correct bool,
	responseTimeMs float64,
	now time.Time,
) (*domain.WordRecord, error) {
	if word == nil {
		return nil, ErrNilWord
	}

	updated := applyAnswer(*word, correct, responseTimeMs, now, s.params)
	return &updated, nil
}

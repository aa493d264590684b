package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WordStatus is the lifecycle state of a word.
type WordStatus string

// Word lifecycle states. MISTAKE is a side state entered on any wrong
// answer and left for LEARNING on the next correct one.
const (
	WordStatusNew      WordStatus = "NEW"
	WordStatusLearning WordStatus = "LEARNING"
	WordStatusLearned  WordStatus = "LEARNED"
	WordStatusMistake  WordStatus = "MISTAKE"
)

// DefaultLanguage is stored when an imported word carries no language tag.
const DefaultLanguage = "en"

// Strength bounds.
const (
	MinStrength = 0
	MaxStrength = 100
)

// Valid reports whether s is a known status.
func (s WordStatus) Valid() bool {
	switch s {
	case WordStatusNew, WordStatusLearning, WordStatusLearned, WordStatusMistake:
		return true
	}
	return false
}

// WordRecord is one vocabulary item owned by a learner, together with its
// spaced repetition state and answer analytics.
type WordRecord struct {
	ID       string     `json:"id"`
	Word     string     `json:"word"`
	Meaning  string     `json:"meaning"`
	Example  string     `json:"example"`
	Language string     `json:"language,omitempty"`
	Status   WordStatus `json:"status"`

	Interval       int       `json:"interval"`   // days until next due
	Repetition     int       `json:"repetition"` // consecutive correct answers since last reset
	NextReviewDate time.Time `json:"nextReviewDate"`
	LastReviewDate time.Time `json:"lastReviewDate,omitzero"`

	StrengthScore   int     `json:"strengthScore"`
	MistakeCount    int     `json:"mistakeCount"`
	TotalAttempts   int     `json:"totalAttempts"`
	AvgResponseTime float64 `json:"avgResponseTime"` // milliseconds
}

// NewWordRecord builds a freshly imported word: status NEW with every
// counter at zero, due immediately.
func NewWordRecord(word, meaning, example, language string) WordRecord {
	return WordRecord{
		ID:       uuid.NewString(),
		Word:     strings.TrimSpace(word),
		Meaning:  strings.TrimSpace(meaning),
		Example:  strings.TrimSpace(example),
		Language: language,
		Status:   WordStatusNew,
	}
}

// Validate checks the record's structural invariants.
func (w *WordRecord) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("%w: word %w", ErrValidation, ErrEmptyID)
	}
	if strings.TrimSpace(w.Word) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyWord)
	}
	if !w.Status.Valid() {
		return fmt.Errorf("%w: %w %q", ErrValidation, ErrInvalidStatus, w.Status)
	}
	if w.StrengthScore < MinStrength || w.StrengthScore > MaxStrength {
		return fmt.Errorf("%w: strength score %d out of range", ErrValidation, w.StrengthScore)
	}
	if w.Interval < 0 || w.Repetition < 0 || w.MistakeCount < 0 || w.TotalAttempts < 0 {
		return fmt.Errorf("%w: counters cannot be negative", ErrValidation)
	}
	if w.TotalAttempts == 0 && w.Status != WordStatusNew {
		return fmt.Errorf("%w: unattempted word must be %s", ErrValidation, WordStatusNew)
	}
	return nil
}

// IsPracticed reports whether the word has been answered at least once.
func (w *WordRecord) IsPracticed() bool {
	return w.TotalAttempts > 0
}

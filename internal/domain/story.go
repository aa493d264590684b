package domain

import (
	"fmt"
	"strings"
	"time"
)

// QuestionType distinguishes the two story quiz formats.
type QuestionType string

// Story question types.
const (
	QuestionFillBlank QuestionType = "FILL_BLANK"
	QuestionMatching  QuestionType = "MATCHING"
)

// StoryQuestion is one comprehension question attached to a story.
type StoryQuestion struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	TargetWord    string       `json:"targetWord"`
	Question      string       `json:"question"`
	CorrectAnswer string       `json:"correctAnswer"`
	Options       []string     `json:"options,omitempty"`
}

// Story is a reading passage built around a set of target words.
type Story struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	TargetWords []string        `json:"targetWords"`
	Questions   []StoryQuestion `json:"questions"`
	IsCustom    bool            `json:"isCustom,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitzero"`
}

// Validate checks that the story can be stored and rendered.
func (s *Story) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: story %w", ErrValidation, ErrEmptyID)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: story title cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(s.Content) == "" {
		return fmt.Errorf("%w: story content cannot be empty", ErrValidation)
	}
	for i, q := range s.Questions {
		if q.Type != QuestionFillBlank && q.Type != QuestionMatching {
			return fmt.Errorf("%w: question %d: %w %q", ErrValidation, i, ErrInvalidQuestionType, q.Type)
		}
	}
	return nil
}

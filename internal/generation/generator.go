package generation

import (
	"context"
	"strings"

	"github.com/phrazzld/vocabflow/internal/domain"
)

// ExtractedWord is one vocabulary item found in a text.
type ExtractedWord struct {
	Word    string `json:"word" validate:"required"`
	Meaning string `json:"meaning"`
	Example string `json:"example"`
}

// GeneratedStory is the model's analysis of a text. The caller supplies the
// story id and keeps the original text as content.
type GeneratedStory struct {
	Title       string
	TargetWords []string
	Questions   []domain.StoryQuestion
}

// VocabularyExtractor finds vocabulary in free text.
type VocabularyExtractor interface {
	ExtractVocabulary(ctx context.Context, text string) ([]ExtractedWord, error)
}

// StoryGenerator turns a text into a titled story with quiz questions.
type StoryGenerator interface {
	GenerateStory(ctx context.Context, text string) (*GeneratedStory, error)
}

// Generator provides both generation services.
type Generator interface {
	VocabularyExtractor
	StoryGenerator
}

// Unavailable is the Generator used when no model is configured. Every call
// fails with ErrUnavailable.
type Unavailable struct{}

// ExtractVocabulary implements VocabularyExtractor.
func (Unavailable) ExtractVocabulary(context.Context, string) ([]ExtractedWord, error) {
	return nil, ErrUnavailable
}

// GenerateStory implements StoryGenerator.
func (Unavailable) GenerateStory(context.Context, string) (*GeneratedStory, error) {
	return nil, ErrUnavailable
}

// NormalizeWords trims entries, drops those without a word and removes
// case-insensitive duplicates, keeping the first occurrence.
func NormalizeWords(words []ExtractedWord) []ExtractedWord {
	seen := make(map[string]bool, len(words))
	out := make([]ExtractedWord, 0, len(words))
	for _, w := range words {
		w.Word = strings.TrimSpace(w.Word)
		w.Meaning = strings.TrimSpace(w.Meaning)
		w.Example = strings.TrimSpace(w.Example)
		key := strings.ToLower(w.Word)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}

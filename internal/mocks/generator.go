package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/vocabflow/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// ExtractVocabularyFn overrides the default ExtractVocabulary response
	ExtractVocabularyFn func(ctx context.Context, text string) ([]generation.ExtractedWord, error)

	// GenerateStoryFn overrides the default GenerateStory response
	GenerateStoryFn func(ctx context.Context, text string) (*generation.GeneratedStory, error)

	// Default response values
	Words []generation.ExtractedWord
	Story *generation.GeneratedStory
	Err   error

	// mu protects the call tracking state for concurrent test cases
	mu    sync.Mutex
	texts []string
}

var _ generation.Generator = (*MockGenerator)(nil)

// ExtractVocabulary implements generation.VocabularyExtractor
func (m *MockGenerator) ExtractVocabulary(ctx context.Context, text string) ([]generation.ExtractedWord, error) {
	m.record(text)
	if m.ExtractVocabularyFn != nil {
		return m.ExtractVocabularyFn(ctx, text)
	}
	return m.Words, m.Err
}

// GenerateStory implements generation.StoryGenerator
func (m *MockGenerator) GenerateStory(ctx context.Context, text string) (*generation.GeneratedStory, error) {
	m.record(text)
	if m.GenerateStoryFn != nil {
		return m.GenerateStoryFn(ctx, text)
	}
	return m.Story, m.Err
}

func (m *MockGenerator) record(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
}

// Texts returns every text passed to the generator, in call order.
func (m *MockGenerator) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// NewMockGeneratorWithWords creates a MockGenerator that extracts the given words
func NewMockGeneratorWithWords(words ...generation.ExtractedWord) *MockGenerator {
	return &MockGenerator{Words: words}
}

// NewMockGeneratorWithError creates a MockGenerator that fails every call with err
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// MockGeneratorWithContentBlocked simulates the model refusing the text
func MockGeneratorWithContentBlocked() *MockGenerator {
	return NewMockGeneratorWithError(generation.ErrContentBlocked)
}

// MockGeneratorWithTransientFailure simulates a retryable outage
func MockGeneratorWithTransientFailure() *MockGenerator {
	return NewMockGeneratorWithError(generation.ErrTransientFailure)
}

// Reset clears the call tracking state
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = nil
}

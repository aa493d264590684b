package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabflow/internal/config"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/generation"
	"google.golang.org/genai"
)

const (
	minTargetWords = 5
	maxTargetWords = 7
	minQuestions   = 3
	maxQuestions   = 5

	defaultStoryTitle = "Imported Story"
)

// contentGenerator is the part of the genai client the generator uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	logger *slog.Logger
	config config.LLMConfig
	models contentGenerator

	// wait sleeps between retries; replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator backed by a Gemini API client.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}
	return newGenerator(logger, cfg, client.Models)
}

func newGenerator(logger *slog.Logger, cfg config.LLMConfig, models contentGenerator) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if models == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	return &Generator{
		logger: logger.With(slog.String("component", "gemini"), slog.String("model", cfg.ModelName)),
		config: cfg,
		models: models,
		wait:   sleepContext,
	}, nil
}

// ExtractVocabulary implements generation.VocabularyExtractor.
func (g *Generator) ExtractVocabulary(ctx context.Context, text string) ([]generation.ExtractedWord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, generation.ErrEmptyInput
	}
	prompt, err := renderPrompt(vocabularyPrompt, promptData{Text: text})
	if err != nil {
		return nil, err
	}

	var resp vocabularyResponse
	if err := g.generateJSON(ctx, prompt, vocabularySchema, &resp); err != nil {
		return nil, err
	}

	words := make([]generation.ExtractedWord, 0, len(resp.Words))
	for _, w := range resp.Words {
		words = append(words, generation.ExtractedWord{Word: w.Word, Meaning: w.Meaning, Example: w.Example})
	}
	words = generation.NormalizeWords(words)
	g.logger.InfoContext(ctx, "extracted vocabulary",
		slog.Int("returned", len(resp.Words)),
		slog.Int("kept", len(words)))
	return words, nil
}

// GenerateStory implements generation.StoryGenerator.
func (g *Generator) GenerateStory(ctx context.Context, text string) (*generation.GeneratedStory, error) {
	if strings.TrimSpace(text) == "" {
		return nil, generation.ErrEmptyInput
	}
	prompt, err := renderPrompt(storyPrompt, promptData{
		Text:         text,
		MinTargets:   minTargetWords,
		MaxTargets:   maxTargetWords,
		MinQuestions: minQuestions,
		MaxQuestions: maxQuestions,
	})
	if err != nil {
		return nil, err
	}

	var resp storyResponse
	if err := g.generateJSON(ctx, prompt, storySchema, &resp); err != nil {
		return nil, err
	}

	story := &generation.GeneratedStory{
		Title:       strings.TrimSpace(resp.Title),
		TargetWords: []string{},
		Questions:   []domain.StoryQuestion{},
	}
	if story.Title == "" {
		story.Title = defaultStoryTitle
	}
	for _, w := range resp.TargetWords {
		if w = strings.TrimSpace(w); w != "" {
			story.TargetWords = append(story.TargetWords, w)
		}
	}
	for i, q := range resp.Questions {
		qt := domain.QuestionType(strings.ToUpper(strings.TrimSpace(q.Type)))
		if (qt != domain.QuestionFillBlank && qt != domain.QuestionMatching) ||
			strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.CorrectAnswer) == "" {
			g.logger.WarnContext(ctx, "dropping malformed story question",
				slog.Int("index", i), slog.String("type", q.Type))
			continue
		}
		sq := domain.StoryQuestion{
			ID:            uuid.NewString(),
			Type:          qt,
			TargetWord:    q.TargetWord,
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
		}
		if qt == domain.QuestionMatching {
			sq.Options = q.Options
		}
		story.Questions = append(story.Questions, sq)
	}
	if len(story.Questions) == 0 {
		return nil, fmt.Errorf("%w: no usable questions in story response", generation.ErrInvalidResponse)
	}
	return story, nil
}

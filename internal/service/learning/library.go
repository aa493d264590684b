package learning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/domain/progress"
	"github.com/phrazzld/vocabflow/internal/events"
	"github.com/phrazzld/vocabflow/internal/generation"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/redact"
)

// Import sources recorded on words.imported events.
const (
	SourceManual      = "manual"
	SourceText        = "text"
	SourceSpreadsheet = "spreadsheet"
)

// ImportResult reports what an import added.
type ImportResult struct {
	Words []domain.WordRecord `json:"words"`
	// Skipped counts entries that were empty or already in the library.
	Skipped int `json:"skipped"`
}

// Library returns the learner's words narrowed by filter, with summary
// counts over the whole library.
func (s *Service) Library(ctx context.Context, learnerID string, filter progress.LibraryFilter) (*progress.Library, error) {
	if !filter.Practice.Valid() {
		return nil, fmt.Errorf("%w: unknown practice filter %q", domain.ErrValidation, filter.Practice)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %w %q", domain.ErrValidation, domain.ErrInvalidStatus, filter.Status)
	}

	words, err := s.fetchWords(ctx, learnerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to fetch words",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("library", "failed to fetch words", err)
	}

	lib := progress.FilterLibrary(words, filter)
	return &lib, nil
}

// ImportWords adds entries to the learner's library as NEW words. Entries
// without a word, repeated entries and words already in the library
// (compared case-insensitively) are skipped.
func (s *Service) ImportWords(ctx context.Context, learnerID string, entries []generation.ExtractedWord, source string) (*ImportResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	normalized := generation.NormalizeWords(entries)
	skipped := len(entries) - len(normalized)

	existing, err := s.fetchWords(ctx, learnerID)
	if err != nil {
		log.ErrorContext(ctx, "failed to fetch words",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("import_words", "failed to fetch words", err)
	}
	known := make(map[string]bool, len(existing))
	for _, w := range existing {
		known[strings.ToLower(strings.TrimSpace(w.Word))] = true
	}

	words := make([]domain.WordRecord, 0, len(normalized))
	for _, e := range normalized {
		if known[strings.ToLower(e.Word)] {
			skipped++
			continue
		}
		words = append(words, domain.NewWordRecord(e.Word, e.Meaning, e.Example, domain.DefaultLanguage))
	}

	if len(words) > 0 {
		if err := s.words.Insert(ctx, learnerID, words); err != nil {
			log.ErrorContext(ctx, "failed to insert words",
				slog.String("learner_id", learnerID),
				slog.Int("count", len(words)),
				slog.String("error", redact.Error(err)))
			return nil, NewServiceError("import_words", "failed to insert words", err)
		}
	}

	s.emitActivity(ctx, events.TypeWordsImported, events.WordsImported{
		LearnerID: learnerID,
		Count:     len(words),
		Skipped:   skipped,
		Source:    source,
	})
	return &ImportResult{Words: words, Skipped: skipped}, nil
}

// ImportFromText extracts vocabulary from text with the configured model
// and imports it.
//
// Returns generation.ErrUnavailable when no model is configured and
// ErrEmptyInput for blank text.
func (s *Service) ImportFromText(ctx context.Context, learnerID, text string) (*ImportResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	extracted, err := s.generator.ExtractVocabulary(ctx, text)
	if err != nil {
		if !errors.Is(err, generation.ErrUnavailable) {
			logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "vocabulary extraction failed",
				slog.String("learner_id", learnerID),
				slog.Int("text_length", len(text)),
				slog.String("error", redact.Error(err)))
		}
		return nil, NewServiceError("import_from_text", "vocabulary extraction failed", err)
	}
	return s.ImportWords(ctx, learnerID, extracted, SourceText)
}

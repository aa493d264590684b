package api

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/domain/progress"
	"github.com/phrazzld/vocabflow/internal/generation"
	"github.com/phrazzld/vocabflow/internal/service/learning"
)

// LearningService is the learning workflow the handlers expose.
// *learning.Service implements it.
type LearningService interface {
	Dashboard(ctx context.Context, learnerID string) (*learning.Dashboard, error)
	FocusWords(ctx context.Context, learnerID string) ([]domain.WordRecord, error)

	StartSession(ctx context.Context, learnerID string) (*learning.Session, error)
	CurrentSession(ctx context.Context, learnerID string) learning.Session
	BeginQuiz(ctx context.Context, learnerID string) (*learning.Session, error)
	CompleteQuiz(ctx context.Context, learnerID string, results []domain.QuizResult) (*learning.QuizOutcome, error)
	AbandonSession(ctx context.Context, learnerID string) error

	Library(ctx context.Context, learnerID string, filter progress.LibraryFilter) (*progress.Library, error)
	ImportWords(ctx context.Context, learnerID string, entries []generation.ExtractedWord, source string) (*learning.ImportResult, error)
	ImportFromText(ctx context.Context, learnerID, text string) (*learning.ImportResult, error)
	PracticeWords(ctx context.Context, learnerID string) ([]domain.WordRecord, error)
	PracticeAnswers(ctx context.Context, learnerID string, results []domain.QuizResult) (*learning.QuizOutcome, error)

	Stories(ctx context.Context, learnerID string) ([]domain.Story, error)
	NextStory(ctx context.Context, learnerID string) (*learning.StoryRecommendation, error)
	ImportStory(ctx context.Context, learnerID, text string) (*domain.Story, error)
	CompleteStory(ctx context.Context, learnerID, storyID string) (domain.UserStats, error)

	ApplySettingsToday(ctx context.Context, learnerID string, settings domain.DailySettings) error
	SaveDefaultSettings(ctx context.Context, learnerID string, settings domain.DailySettings) (domain.UserStats, error)
}

var _ LearningService = (*learning.Service)(nil)

// LearningHandler serves the learner-facing API.
type LearningHandler struct {
	service LearningService
	logger  *slog.Logger
}

// NewLearningHandler creates a LearningHandler.
func NewLearningHandler(service LearningService, logger *slog.Logger) *LearningHandler {
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("service cannot be nil for LearningHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for LearningHandler")
	}
	return &LearningHandler{
		service: service,
		logger:  logger.With(slog.String("component", "learning_handler")),
	}
}

// Routes registers the handler's endpoints on r. Callers mount it behind
// the auth middleware.
func (h *LearningHandler) Routes(r chi.Router) {
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/focus-words", h.GetFocusWords)
	r.Put("/settings", h.PutSettings)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Post("/", h.StartSession)
		r.Delete("/", h.AbandonSession)
		r.Post("/quiz", h.BeginQuiz)
		r.Post("/complete", h.CompleteQuiz)
	})

	r.Route("/words", func(r chi.Router) {
		r.Get("/", h.ListWords)
		r.Post("/", h.ImportWords)
		r.Post("/extract", h.ExtractWords)
		r.Get("/practice", h.GetPracticeWords)
		r.Post("/practice", h.SubmitPractice)
	})

	r.Route("/stories", func(r chi.Router) {
		r.Get("/", h.ListStories)
		r.Post("/", h.ImportStory)
		r.Get("/next", h.GetNextStory)
		r.Post("/{id}/complete", h.CompleteStory)
	})
}

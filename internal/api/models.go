package api

import (
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/generation"
)

// QuizAnswer is one answer in a quiz or practice submission.
type QuizAnswer struct {
	WordID         string  `json:"wordId"         validate:"required"`
	Correct        bool    `json:"correct"`
	ResponseTimeMs float64 `json:"responseTimeMs" validate:"gte=0"`
}

// SubmitAnswersRequest is the payload of POST /sessions/complete and
// POST /words/practice.
type SubmitAnswersRequest struct {
	Results []QuizAnswer `json:"results" validate:"required,min=1,dive"`
}

func (r SubmitAnswersRequest) toResults() []domain.QuizResult {
	out := make([]domain.QuizResult, len(r.Results))
	for i, a := range r.Results {
		out[i] = domain.QuizResult{WordID: a.WordID, Correct: a.Correct, ResponseTimeMs: a.ResponseTimeMs}
	}
	return out
}

// WordEntry is a word supplied by the learner.
type WordEntry struct {
	Word    string `json:"word"    validate:"required,max=200"`
	Meaning string `json:"meaning" validate:"max=1000"`
	Example string `json:"example" validate:"max=2000"`
}

// ImportWordsRequest is the payload of POST /words.
type ImportWordsRequest struct {
	Words []WordEntry `json:"words" validate:"required,min=1,max=500,dive"`
}

func (r ImportWordsRequest) toEntries() []generation.ExtractedWord {
	out := make([]generation.ExtractedWord, len(r.Words))
	for i, w := range r.Words {
		out[i] = generation.ExtractedWord{Word: w.Word, Meaning: w.Meaning, Example: w.Example}
	}
	return out
}

// TextRequest carries free text for vocabulary extraction or story import.
type TextRequest struct {
	Text string `json:"text" validate:"required,max=50000"`
}

// WordsResponse lists words.
type WordsResponse struct {
	Words []domain.WordRecord `json:"words"`
}

// StoriesResponse lists stories.
type StoriesResponse struct {
	Stories []domain.Story `json:"stories"`
}

// StatsResponse returns the learner's stats after an update.
type StatsResponse struct {
	Stats domain.UserStats `json:"stats"`
}

// SettingsResponse returns the settings in effect after an update.
type SettingsResponse struct {
	Scope    string               `json:"scope"`
	Settings domain.DailySettings `json:"settings"`
}

// Settings scopes accepted by PUT /settings.
const (
	scopeDefault = "default"
	scopeToday   = "today"
)

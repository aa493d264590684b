package srs

import (
	"math"
	"time"

	"github.com/phrazzld/vocabflow/internal/domain"
)

const day = 24 * time.Hour

// nextStatus returns the status after an answer.
//
// Wrong answers always move the word to MISTAKE. Correct answers move NEW and
// MISTAKE to LEARNING, and promote LEARNING to LEARNED once the word already
// has params.LearnedAfter consecutive correct answers.
func nextStatus(current domain.WordStatus, repetition int, correct bool, params *Params) domain.WordStatus {
	if !correct {
		return domain.WordStatusMistake
	}
	switch current {
	case domain.WordStatusNew, domain.WordStatusMistake:
		return domain.WordStatusLearning
	case domain.WordStatusLearning:
		if repetition >= params.LearnedAfter {
			return domain.WordStatusLearned
		}
		return domain.WordStatusLearning
	default:
		return current
	}
}

// nextInterval returns the interval in days after a correct answer.
func nextInterval(interval, repetition int, params *Params) int {
	switch repetition {
	case 0:
		return params.FirstInterval
	case 1:
		return params.SecondInterval
	default:
		return int(math.Round(float64(interval) * params.IntervalGrowth))
	}
}

func clampStrength(v int) int {
	return min(domain.MaxStrength, max(domain.MinStrength, v))
}

// applyAnswer is the pure update rule. The input is not modified.
func applyAnswer(
	word domain.WordRecord,
	correct bool,
	responseTimeMs float64,
	now time.Time,
	params *Params,
) domain.WordRecord {
	out := word

	// Out-of-range input is clamped so the rule stays total.
	repetition := max(0, word.Repetition)
	interval := max(0, word.Interval)
	attempts := max(0, word.TotalAttempts)
	responseTimeMs = max(0, responseTimeMs)

	out.Status = nextStatus(word.Status, repetition, correct, params)
	if correct {
		out.Interval = nextInterval(interval, repetition, params)
		out.Repetition = repetition + 1
		out.StrengthScore = clampStrength(word.StrengthScore + params.StrengthGain)
	} else {
		out.Interval = 0
		out.Repetition = 0
		out.StrengthScore = clampStrength(word.StrengthScore - params.StrengthPenalty)
		out.MistakeCount = max(0, word.MistakeCount) + 1
	}

	out.NextReviewDate = now.Add(time.Duration(out.Interval) * day)
	out.LastReviewDate = now
	out.TotalAttempts = attempts + 1
	out.AvgResponseTime = (max(0, word.AvgResponseTime)*float64(attempts) + responseTimeMs) /
		float64(out.TotalAttempts)

	return out
}

// ApplyAnswer updates a word after one answer using the default parameters.
// It is a pure function: no I/O, no randomness, and the input is copied.
func ApplyAnswer(word domain.WordRecord, correct bool, responseTimeMs float64, now time.Time) domain.WordRecord {
	return applyAnswer(word, correct, responseTimeMs, now, NewDefaultParams())
}

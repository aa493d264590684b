package store

import (
	"context"

	"github.com/phrazzld/vocabflow/internal/domain"
)

// StatsStore persists the single stats record of each learner.
type StatsStore interface {
	// FetchOrCreate returns the learner's stats, storing defaults first when
	// the learner has none yet.
	FetchOrCreate(ctx context.Context, learnerID string, defaults domain.UserStats) (domain.UserStats, error)

	// Save replaces the learner's stats.
	Save(ctx context.Context, learnerID string, stats domain.UserStats) error
}

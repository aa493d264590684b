// Package progress derives profile figures from a learner's words and stats:
// experience points, level, badges and the word library summary.
package progress

import (
	"github.com/phrazzld/vocabflow/internal/domain"
)

// XP weights and the width of one level.
const (
	XPPerLearnedWord  = 10
	XPPerLearningWord = 5
	XPPerStory        = 50
	XPPerLevel        = 200
)

// Badge is an achievement and whether the learner has unlocked it.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

// Profile is the learner's progress summary.
type Profile struct {
	XP              int     `json:"xp"`
	Level           int     `json:"level"`
	NextLevelXP     int     `json:"nextLevelXp"`
	LevelProgress   float64 `json:"levelProgress"`
	LearnedWords    int     `json:"learnedWords"`
	LearningWords   int     `json:"learningWords"`
	StoriesComplete int     `json:"storiesCompleted"`
	Streak          int     `json:"streak"`
	Badges          []Badge `json:"badges"`
	UnlockedBadges  int     `json:"unlockedBadges"`
}

type badgeRule struct {
	id, name, desc string
	unlocked       func(learned, stories, streak int) bool
}

var badgeRules = []badgeRule{
	{"streak_3", "On Fire", "Reach a 3-day streak", func(_, _, streak int) bool { return streak >= 3 }},
	{"streak_7", "Dedicated", "Reach a 7-day streak", func(_, _, streak int) bool { return streak >= 7 }},
	{"words_10", "First Steps", "Learn 10 words", func(learned, _, _ int) bool { return learned >= 10 }},
	{"words_50", "Scholar", "Learn 50 words", func(learned, _, _ int) bool { return learned >= 50 }},
	{"stories_1", "Reader", "Complete 1 story", func(_, stories, _ int) bool { return stories >= 1 }},
	{"stories_5", "Bookworm", "Complete 5 stories", func(_, stories, _ int) bool { return stories >= 5 }},
}

// Compute builds the profile for words and stats.
func Compute(words []domain.WordRecord, stats domain.UserStats) Profile {
	var learned, learning int
	for _, w := range words {
		switch w.Status {
		case domain.WordStatusLearned:
			learned++
		case domain.WordStatusLearning:
			learning++
		}
	}
	stories := len(stats.CompletedStoryIDs)

	xp := learned*XPPerLearnedWord + learning*XPPerLearningWord + stories*XPPerStory
	level := xp/XPPerLevel + 1

	p := Profile{
		XP:              xp,
		Level:           level,
		NextLevelXP:     level * XPPerLevel,
		LevelProgress:   float64(xp-(level-1)*XPPerLevel) / XPPerLevel * 100,
		LearnedWords:    learned,
		LearningWords:   learning,
		StoriesComplete: stories,
		Streak:          stats.Streak,
		Badges:          make([]Badge, 0, len(badgeRules)),
	}
	for _, r := range badgeRules {
		b := Badge{ID: r.id, Name: r.name, Description: r.desc, Unlocked: r.unlocked(learned, stories, stats.Streak)}
		if b.Unlocked {
			p.UnlockedBadges++
		}
		p.Badges = append(p.Badges, b)
	}
	return p
}

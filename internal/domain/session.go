package domain

// SessionBreakdown summarises a planned session. It is derived from the
// word set and stats on every request and never persisted.
type SessionBreakdown struct {
	Total            int  `json:"total"`
	NewCount         int  `json:"newCount"`
	ReviewCount      int  `json:"reviewCount"`
	WeakCount        int  `json:"weakCount"`
	EstimatedMinutes int  `json:"estimatedMinutes"`
	StoryAvailable   bool `json:"storyAvailable"`
}

// QuizResult is a learner's answer to one word.
type QuizResult struct {
	WordID         string  `json:"wordId"`
	Correct        bool    `json:"correct"`
	ResponseTimeMs float64 `json:"responseTimeMs"`
}

// Package story holds the built-in reading catalog and the next-story
// recommendation.
package story

import (
	"slices"
	"strings"

	"github.com/phrazzld/vocabflow/internal/domain"
)

var builtIns = []domain.Story{
	{
		ID:    "story_1",
		Title: "The Morning Routine",
		Content: "John woke up early to the sound of birds. He brewed a strong coffee and sat by the window. " +
			"The sun was rising, casting a golden glow over the city. He opened his book and began to read, " +
			"enjoying the quiet moment before the chaos of the day began.",
		TargetWords: []string{"coffee", "window", "sun", "book", "chaos", "city", "morning"},
		Questions: []domain.StoryQuestion{
			{
				ID:            "q1",
				Type:          domain.QuestionFillBlank,
				TargetWord:    "coffee",
				Question:      "He brewed a strong ___ and sat by the window.",
				CorrectAnswer: "coffee",
			},
			{
				ID:            "q2",
				Type:          domain.QuestionMatching,
				TargetWord:    "chaos",
				Question:      `What does "chaos" mean in this context?`,
				CorrectAnswer: "Complete disorder and confusion",
				Options:       []string{"Complete disorder and confusion", "A peaceful time", "A type of breakfast"},
			},
		},
	},
	{
		ID:    "story_2",
		Title: "A Walk in the Park",
		Content: "Sarah decided to take a break from work. She walked to the nearby park to clear her mind. " +
			"The trees were green and the air was fresh. She saw a dog chasing a ball and smiled. " +
			"It was important to appreciate nature.",
		TargetWords: []string{"park", "trees", "air", "dog", "nature", "work", "break"},
		Questions: []domain.StoryQuestion{
			{
				ID:            "q3",
				Type:          domain.QuestionFillBlank,
				TargetWord:    "nature",
				Question:      "It was important to appreciate ___.",
				CorrectAnswer: "nature",
			},
			{
				ID:            "q4",
				Type:          domain.QuestionMatching,
				TargetWord:    "fresh",
				Question:      "The air was ___.",
				CorrectAnswer: "fresh",
				Options:       []string{"fresh", "stale", "dirty"},
			},
		},
	},
	{
		ID:    "story_3",
		Title: "The Tech Conference",
		Content: "The developers gathered in the main hall. The speaker discussed the future of artificial intelligence. " +
			"Everyone listened intently, taking notes on their laptops. Innovation was moving fast, " +
			"and nobody wanted to be left behind.",
		TargetWords: []string{"developers", "future", "intelligence", "notes", "innovation", "laptops"},
		Questions: []domain.StoryQuestion{
			{
				ID:            "q5",
				Type:          domain.QuestionFillBlank,
				TargetWord:    "innovation",
				Question:      "___ was moving fast.",
				CorrectAnswer: "innovation",
			},
			{
				ID:            "q6",
				Type:          domain.QuestionMatching,
				TargetWord:    "future",
				Question:      "The speaker discussed the ___ of AI.",
				CorrectAnswer: "future",
				Options:       []string{"future", "past", "history"},
			},
		},
	},
}

// BuiltIns returns a copy of the system stories.
func BuiltIns() []domain.Story {
	out := make([]domain.Story, len(builtIns))
	for i, s := range builtIns {
		out[i] = clone(s)
	}
	return out
}

func clone(s domain.Story) domain.Story {
	s.TargetWords = slices.Clone(s.TargetWords)
	qs := make([]domain.StoryQuestion, len(s.Questions))
	for i, q := range s.Questions {
		q.Options = slices.Clone(q.Options)
		qs[i] = q
	}
	s.Questions = qs
	return s
}

// Catalog returns the built-ins followed by the learner's own stories.
func Catalog(userStories []domain.Story) []domain.Story {
	return append(BuiltIns(), userStories...)
}

// Find returns the catalog entry with the given id.
func Find(catalog []domain.Story, id string) (domain.Story, bool) {
	i := slices.IndexFunc(catalog, func(s domain.Story) bool { return s.ID == id })
	if i < 0 {
		return domain.Story{}, false
	}
	return catalog[i], true
}

// Recommend returns the first story in catalog order that has not been
// completed. It returns false when every story is done.
func Recommend(completedIDs []string, catalog []domain.Story) (domain.Story, bool) {
	for _, s := range catalog {
		if !slices.Contains(completedIDs, s.ID) {
			return s, true
		}
	}
	return domain.Story{}, false
}

// FindWordInLibrary looks up a story target word in the learner's library,
// ignoring case.
func FindWordInLibrary(target string, library []domain.WordRecord) (domain.WordRecord, bool) {
	for _, w := range library {
		if strings.EqualFold(w.Word, target) {
			return w, true
		}
	}
	return domain.WordRecord{}, false
}

// LibraryMatches returns the library words matching the story's target words,
// in target-word order. Target words missing from the library are skipped.
func LibraryMatches(s domain.Story, library []domain.WordRecord) []domain.WordRecord {
	out := make([]domain.WordRecord, 0, len(s.TargetWords))
	for _, target := range s.TargetWords {
		if w, ok := FindWordInLibrary(target, library); ok {
			out = append(out, w)
		}
	}
	return out
}

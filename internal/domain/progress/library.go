package progress

import (
	"strings"

	"github.com/phrazzld/vocabflow/internal/domain"
)

// PracticeFilter narrows the library by whether a word has been attempted.
type PracticeFilter string

// Practice filters.
const (
	FilterAll          PracticeFilter = "ALL"
	FilterPracticed    PracticeFilter = "PRACTICED"
	FilterNotPracticed PracticeFilter = "NOT_PRACTICED"
)

// Valid reports whether f is a known filter. The empty filter means ALL.
func (f PracticeFilter) Valid() bool {
	switch f {
	case "", FilterAll, FilterPracticed, FilterNotPracticed:
		return true
	}
	return false
}

// LibraryFilter selects words from the library. Zero values match everything.
type LibraryFilter struct {
	Query    string
	Status   domain.WordStatus
	Practice PracticeFilter
}

// LibrarySummary holds counts over the whole library, independent of the
// filter.
type LibrarySummary struct {
	Total        int                       `json:"total"`
	Practiced    int                       `json:"practiced"`
	NotPracticed int                       `json:"notPracticed"`
	ByStatus     map[domain.WordStatus]int `json:"byStatus"`
}

// Library is a filtered view of the learner's words.
type Library struct {
	Words   []domain.WordRecord `json:"words"`
	Summary LibrarySummary      `json:"summary"`
}

func (f LibraryFilter) matches(w domain.WordRecord, query string) bool {
	if query != "" &&
		!strings.Contains(strings.ToLower(w.Word), query) &&
		!strings.Contains(strings.ToLower(w.Meaning), query) &&
		!strings.Contains(strings.ToLower(w.Example), query) {
		return false
	}
	if f.Status != "" && w.Status != f.Status {
		return false
	}
	switch f.Practice {
	case FilterPracticed:
		return w.TotalAttempts > 0
	case FilterNotPracticed:
		return w.TotalAttempts == 0
	}
	return true
}

// FilterLibrary applies f to words, keeping input order.
func FilterLibrary(words []domain.WordRecord, f LibraryFilter) Library {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	lib := Library{
		Words: make([]domain.WordRecord, 0, len(words)),
		Summary: LibrarySummary{
			Total: len(words),
			ByStatus: map[domain.WordStatus]int{
				domain.WordStatusNew:      0,
				domain.WordStatusLearning: 0,
				domain.WordStatusLearned:  0,
				domain.WordStatusMistake:  0,
			},
		},
	}
	for _, w := range words {
		if w.TotalAttempts > 0 {
			lib.Summary.Practiced++
		} else {
			lib.Summary.NotPracticed++
		}
		lib.Summary.ByStatus[w.Status]++
		if f.matches(w, query) {
			lib.Words = append(lib.Words, w)
		}
	}
	return lib
}

package learning

import (
	"testing"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answered(w domain.WordRecord, attempts int) domain.WordRecord {
	w.TotalAttempts = attempts
	w.Repetition = attempts
	return w
}

func TestPendingWords(t *testing.T) {
	t.Parallel()

	t.Run("merge replaces older stored records", func(t *testing.T) {
		t.Parallel()
		p := newPendingWords()
		stored := newWords("alpha", "beta")
		p.track(learnerID, []domain.WordRecord{answered(stored[0], 1)})

		merged := p.merge(learnerID, stored)
		require.Len(t, merged, 2)
		assert.Equal(t, 1, merged[0].TotalAttempts)
		assert.Zero(t, merged[1].TotalAttempts)
		assert.Zero(t, stored[0].TotalAttempts, "input not modified")
		assert.Equal(t, 1, p.count(learnerID))
	})

	t.Run("merge drops entries the store caught up with", func(t *testing.T) {
		t.Parallel()
		p := newPendingWords()
		word := newWords("alpha")[0]
		p.track(learnerID, []domain.WordRecord{answered(word, 1)})

		merged := p.merge(learnerID, []domain.WordRecord{answered(word, 1)})
		assert.Equal(t, 1, merged[0].TotalAttempts)
		assert.Zero(t, p.count(learnerID))
	})

	t.Run("track keeps the newest update", func(t *testing.T) {
		t.Parallel()
		p := newPendingWords()
		word := newWords("alpha")[0]
		p.track(learnerID, []domain.WordRecord{answered(word, 2)})
		p.track(learnerID, []domain.WordRecord{answered(word, 1)})

		merged := p.merge(learnerID, []domain.WordRecord{word})
		assert.Equal(t, 2, merged[0].TotalAttempts)
	})

	t.Run("settle keeps words answered after the write", func(t *testing.T) {
		t.Parallel()
		p := newPendingWords()
		words := newWords("alpha", "beta")
		p.track(learnerID, []domain.WordRecord{answered(words[0], 2), answered(words[1], 1)})

		p.settle(learnerID, []domain.WordRecord{answered(words[0], 1), answered(words[1], 1)})
		assert.Equal(t, 1, p.count(learnerID))

		p.settle(learnerID, []domain.WordRecord{answered(words[0], 2)})
		assert.Zero(t, p.count(learnerID))
	})

	t.Run("learners are separate", func(t *testing.T) {
		t.Parallel()
		p := newPendingWords()
		word := newWords("alpha")[0]
		p.track(learnerID, []domain.WordRecord{answered(word, 1)})

		merged := p.merge("other-learner", []domain.WordRecord{word})
		assert.Zero(t, merged[0].TotalAttempts)
		assert.Zero(t, p.count("other-learner"))
	})
}

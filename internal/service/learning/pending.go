package learning

import (
	"sync"

	"github.com/phrazzld/vocabflow/internal/domain"
)

// pendingWords holds answered words whose write is still queued. Reads merge
// them over the stored records so a later request never starts from a
// record the learner has already moved past.
//
// An entry is newer than the stored record while its TotalAttempts is
// higher; every answer adds one attempt.
type pendingWords struct {
	mu    sync.Mutex
	words map[string]map[string]domain.WordRecord
}

func newPendingWords() *pendingWords {
	return &pendingWords{words: make(map[string]map[string]domain.WordRecord)}
}

func supersedes(pending, stored domain.WordRecord) bool {
	return pending.TotalAttempts > stored.TotalAttempts
}

// track records words queued for writing.
func (p *pendingWords) track(learnerID string, words []domain.WordRecord) {
	if len(words) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	byID := p.words[learnerID]
	if byID == nil {
		byID = make(map[string]domain.WordRecord, len(words))
		p.words[learnerID] = byID
	}
	for _, w := range words {
		if cur, ok := byID[w.ID]; ok && supersedes(cur, w) {
			continue
		}
		byID[w.ID] = w
	}
}

// settle drops the entries that written has caught up with. A word answered
// again after the write stays pending.
func (p *pendingWords) settle(learnerID string, written []domain.WordRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	byID := p.words[learnerID]
	for _, w := range written {
		if cur, ok := byID[w.ID]; ok && !supersedes(cur, w) {
			delete(byID, w.ID)
		}
	}
	if len(byID) == 0 {
		delete(p.words, learnerID)
	}
}

// merge returns stored with pending entries in place of the records they
// supersede. The stored slice is not modified. Entries the store has caught
// up with are dropped.
func (p *pendingWords) merge(learnerID string, stored []domain.WordRecord) []domain.WordRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	byID := p.words[learnerID]
	if len(byID) == 0 {
		return stored
	}

	out := make([]domain.WordRecord, len(stored))
	copy(out, stored)
	for i, w := range out {
		cur, ok := byID[w.ID]
		if !ok {
			continue
		}
		if supersedes(cur, w) {
			out[i] = cur
		} else {
			delete(byID, w.ID)
		}
	}
	if len(byID) == 0 {
		delete(p.words, learnerID)
	}
	return out
}

// count returns how many of the learner's words are pending.
func (p *pendingWords) count(learnerID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.words[learnerID])
}

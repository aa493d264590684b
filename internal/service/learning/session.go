package learning

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/phrazzld/vocabflow/internal/domain"
)

// Phase is the position of a learner in the session state machine.
type Phase string

// Session phases. A learner moves Idle → Learning → Quizzing → Idle and may
// abandon from any phase.
const (
	PhaseIdle     Phase = "IDLE"
	PhaseLearning Phase = "LEARNING"
	PhaseQuizzing Phase = "QUIZZING"
)

// Session is a learner's current review session.
type Session struct {
	Phase     Phase                   `json:"phase"`
	Words     []domain.WordRecord     `json:"words"`
	Breakdown domain.SessionBreakdown `json:"breakdown"`
	StartedAt time.Time               `json:"startedAt,omitzero"`
}

func (s Session) clone() Session {
	s.Words = slices.Clone(s.Words)
	return s
}

// sessionRegistry holds one session per learner. Missing entries are Idle.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]Session)}
}

// get returns a copy of the learner's session.
func (r *sessionRegistry) get(learnerID string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[learnerID]; ok {
		return s.clone()
	}
	return Session{Phase: PhaseIdle}
}

// start moves an idle learner into Learning with the given cards.
func (r *sessionRegistry) start(learnerID string, s Session) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[learnerID]; ok && cur.Phase != PhaseIdle {
		return Session{}, fmt.Errorf("%w: cannot start a session while %s", ErrInvalidTransition, cur.Phase)
	}
	s.Phase = PhaseLearning
	r.sessions[learnerID] = s.clone()
	return s, nil
}

// transition moves the learner from one phase to another. It returns the
// session as it was before the move, with Phase set to the new phase.
func (r *sessionRegistry) transition(learnerID string, from, to Phase) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.sessions[learnerID]
	if !ok {
		cur = Session{Phase: PhaseIdle}
	}
	if cur.Phase != from {
		return Session{}, fmt.Errorf("%w: expected %s, learner is %s", ErrInvalidTransition, from, cur.Phase)
	}
	out := cur.clone()
	out.Phase = to
	if to == PhaseIdle {
		delete(r.sessions, learnerID)
	} else {
		cur.Phase = to
		r.sessions[learnerID] = cur
	}
	return out, nil
}

// restore puts s back for a learner who is still Idle. It undoes a
// transition whose follow-up work failed.
func (r *sessionRegistry) restore(learnerID string, s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[learnerID]; ok && cur.Phase != PhaseIdle {
		return false
	}
	r.sessions[learnerID] = s.clone()
	return true
}

// reset returns the learner to Idle from any phase and reports the phase
// the learner was in.
func (r *sessionRegistry) reset(learnerID string) Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.sessions[learnerID]
	delete(r.sessions, learnerID)
	if !ok {
		return PhaseIdle
	}
	return cur.Phase
}

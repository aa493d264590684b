package task

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownTaskType is returned when no builder is registered for a stored
// task's type.
var ErrUnknownTaskType = errors.New("unknown task type")

// Builder recreates an executable task from its stored record.
type Builder func(rec Record) (Task, error)

// Registry maps task types to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register sets the builder for taskType, replacing any previous one.
func (r *Registry) Register(taskType string, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[taskType] = b
}

// Build recreates the task stored in rec.
func (r *Registry) Build(rec Record) (Task, error) {
	r.mu.RLock()
	b, ok := r.builders[rec.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskType, rec.Type)
	}
	return b(rec)
}

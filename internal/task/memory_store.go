package task

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryTaskStore is a TaskStore kept in process memory. Task state does not
// survive a restart.
type MemoryTaskStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	order   []uuid.UUID
	now     func() time.Time
}

// NewMemoryTaskStore creates an empty MemoryTaskStore.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		records: make(map[uuid.UUID]*Record),
		now:     time.Now,
	}
}

// WithClock replaces the store's time source.
func (s *MemoryTaskStore) WithClock(now func() time.Time) *MemoryTaskStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// SaveTask implements TaskStore.
func (s *MemoryTaskStore) SaveTask(_ context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if _, exists := s.records[task.ID()]; !exists {
		s.order = append(s.order, task.ID())
	}
	s.records[task.ID()] = &Record{
		ID:        task.ID(),
		Type:      task.Type(),
		Payload:   slices.Clone(task.Payload()),
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// UpdateTaskStatus implements TaskStore.
func (s *MemoryTaskStore) UpdateTaskStatus(_ context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[taskID]
	if !ok {
		return nil
	}
	rec.Status = status
	rec.LastError = errorMsg
	rec.UpdatedAt = s.now().UTC()
	if status == TaskStatusProcessing {
		rec.Attempts++
	}
	return nil
}

// ListTasks implements TaskStore.
func (s *MemoryTaskStore) ListTasks(_ context.Context, status TaskStatus, olderThan time.Duration) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().UTC().Add(-olderThan)
	var out []Record
	for _, id := range s.order {
		rec := s.records[id]
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && rec.UpdatedAt.After(cutoff) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Get returns a copy of the stored record for id.
func (s *MemoryTaskStore) Get(id uuid.UUID) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

var _ TaskStore = (*MemoryTaskStore)(nil)

package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	audit "veriscreen/pkg/platform/audit"
)

// InMemoryStore keeps audit events in arrival order. It backs unit tests and
// the default wiring when no durable sink is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListRecent returns up to limit events, newest first. A non-positive limit
// returns everything.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	recent := make([]audit.Event, 0, limit)
	for i := len(s.events) - 1; i >= len(s.events)-limit; i-- {
		recent = append(recent, s.events[i])
	}
	return recent, nil
}

// ListByEvaluation returns the events recorded for one evaluation, in
// arrival order.
func (s *InMemoryStore) ListByEvaluation(_ context.Context, evaluationID uuid.UUID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []audit.Event
	for _, event := range s.events {
		if event.EvaluationID == evaluationID {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

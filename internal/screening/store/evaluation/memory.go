package evaluation

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"veriscreen/internal/screening/models"
	"veriscreen/pkg/platform/sentinel"
)

// InMemory keeps evaluations in process memory. Intended for tests and local
// development without a database.
type InMemory struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*models.Evaluation
	order []uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[uuid.UUID]*models.Evaluation)}
}

// Create stores a new evaluation. Returns sentinel.ErrConflict when the ID is
// already present.
func (s *InMemory) Create(_ context.Context, evaluation *models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[evaluation.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := *evaluation
	s.byID[evaluation.ID] = &copied
	s.order = append(s.order, evaluation.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evaluation, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *evaluation
	return &copied, nil
}

// ListRecent returns up to limit evaluations, newest first. A non-positive
// limit returns everything.
func (s *InMemory) ListRecent(_ context.Context, limit int) ([]*models.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	out := make([]*models.Evaluation, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		copied := *s.byID[s.order[i]]
		out = append(out, &copied)
	}
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

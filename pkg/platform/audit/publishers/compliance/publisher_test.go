package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "veriscreen/pkg/platform/audit"
	"veriscreen/pkg/platform/audit/store/memory"
)

type failingStore struct {
	err error
}

func (s *failingStore) Append(context.Context, audit.Event) error {
	return s.err
}

func TestEmitPersistsEvent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	pub := New(store)

	evaluationID := uuid.New()
	err := pub.Emit(ctx, audit.Event{
		EvaluationID: evaluationID,
		Action:       string(audit.EventEvaluationCompleted),
		Decision:     "MEDIUM_RELEVANCE",
	})
	require.NoError(t, err)

	events, err := store.ListByEvaluation(ctx, evaluationID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp must be stamped")
}

func TestEmitFailsClosed(t *testing.T) {
	storeErr := errors.New("connection refused")
	pub := New(&failingStore{err: storeErr})

	err := pub.Emit(context.Background(), audit.Event{
		EvaluationID: uuid.New(),
		Action:       string(audit.EventHighRelevanceHits),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.ErrorContains(t, err, "compliance audit persistence failed")
}

func TestEmitRejectsInvalidEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	pub := New(store)

	tests := []struct {
		name  string
		event audit.Event
	}{
		{
			name:  "missing action",
			event: audit.Event{EvaluationID: uuid.New()},
		},
		{
			name:  "missing evaluation id",
			event: audit.Event{Action: string(audit.EventEvaluationCompleted)},
		},
		{
			name: "non-compliance action",
			event: audit.Event{
				EvaluationID: uuid.New(),
				Action:       string(audit.EventEvaluationAccessed),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, pub.Emit(ctx, tt.event))
		})
	}

	all, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected events must not reach the store")
}

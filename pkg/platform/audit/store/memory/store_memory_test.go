package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "veriscreen/pkg/platform/audit"
)

func TestAppendAndListRecent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	for _, action := range []string{"first", "second", "third"} {
		require.NoError(t, store.Append(ctx, audit.Event{Action: action}))
	}

	recent, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Action)
	assert.Equal(t, "second", recent[1].Action)

	all, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListByEvaluation(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	evaluationID := uuid.New()
	require.NoError(t, store.Append(ctx, audit.Event{
		EvaluationID: evaluationID,
		Action:       string(audit.EventEvaluationCompleted),
	}))
	require.NoError(t, store.Append(ctx, audit.Event{
		EvaluationID: uuid.New(),
		Action:       string(audit.EventEvaluationCompleted),
	}))
	require.NoError(t, store.Append(ctx, audit.Event{
		EvaluationID: evaluationID,
		Action:       string(audit.EventEvaluationAccessed),
	}))

	events, err := store.ListByEvaluation(ctx, evaluationID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventEvaluationCompleted), events[0].Action)
	assert.Equal(t, string(audit.EventEvaluationAccessed), events[1].Action)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, audit.Event{Action: "anything"}))
	store.Clear()

	all, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Append(ctx, audit.Event{Action: "concurrent"})
		}()
	}
	wg.Wait()

	all, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

// Package worker drains asynchronously emitted audit events to a store.
// Operational and security events flow through here; the compliance path
// writes synchronously and never enters the channel.
package worker

import (
	"context"
	"log/slog"

	audit "veriscreen/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. Persistence
// failures are logged and the event is dropped: async events are
// best-effort and one bad write must not stall the drain.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run blocks draining the inbox until ctx is cancelled. On cancellation any
// events already buffered in the channel are flushed before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) flush(ctx context.Context) {
	for {
		select {
		case event := <-w.inbox:
			w.append(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event audit.Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "audit event dropped",
			"action", event.Action,
			"category", event.Category,
			"error", err,
		)
	}
}

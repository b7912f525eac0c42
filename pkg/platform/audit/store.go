package audit

import "context"

// Store persists audit events. Sinks range from the in-memory store used in
// tests to the postgres outbox and the Kafka producer. Implementations must
// be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}

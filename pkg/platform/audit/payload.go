package audit

import (
	"time"

	"github.com/google/uuid"
)

// Payload is the wire form of an event as written to the outbox table and
// published to Kafka. Field names are stable API for downstream consumers.
type Payload struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Timestamp     string `json:"timestamp"`
	EvaluationID  string `json:"evaluation_id,omitempty"`
	ClientID      string `json:"client_id,omitempty"`
	Action        string `json:"action"`
	Decision      string `json:"decision,omitempty"`
	Reason        string `json:"reason,omitempty"`
	SubjectIDHash string `json:"subject_id_hash,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	IP            string `json:"ip,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	ClientApp     string `json:"client_app,omitempty"`
}

// NewPayload assigns the event its wire identity. The category is always
// derived from the action so eventCategories stays the source of truth, and
// a zero timestamp is stamped with the current time.
func NewPayload(event Event) Payload {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	p := Payload{
		ID:            uuid.NewString(),
		Category:      string(AuditEvent(event.Action).Category()),
		Timestamp:     ts.Format(time.RFC3339Nano),
		ClientID:      event.ClientID,
		Action:        event.Action,
		Decision:      event.Decision,
		Reason:        event.Reason,
		SubjectIDHash: event.SubjectIDHash,
		RequestID:     event.RequestID,
		IP:            event.IP,
		UserAgent:     event.UserAgent,
		ClientApp:     event.ClientApp,
	}
	if event.EvaluationID != uuid.Nil {
		p.EvaluationID = event.EvaluationID.String()
	}
	return p
}

package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention.
	// Examples: completed evaluations, high relevance screening hits.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring and
	// forensics. These feed into SIEM systems and alerting pipelines.
	// Examples: auth failures, rejected admin tokens.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled or aggregated with shorter retention.
	// Examples: evaluation reads, listing access patterns.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. Applicant identity
// never appears raw: use SubjectHash for the SubjectIDHash field.
type Event struct {
	Category     EventCategory
	Timestamp    time.Time
	EvaluationID uuid.UUID
	ClientID     string
	Action       string
	// Decision records the outcome of the action, e.g. the strongest match
	// category of a completed evaluation.
	Decision string
	Reason   string
	// SubjectIDHash is the SHA-256 hash of the screened applicant's identity
	// fields. Used for compliance traceability without storing raw PII.
	SubjectIDHash string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
	// IP is the client address for security events.
	IP string
	// UserAgent is the raw User-Agent header, kept for security forensics.
	UserAgent string
	// ClientApp is the parsed user-agent summary from the metadata
	// middleware ("Chrome 120.0.0.0 on Windows 10", "bot (curl)").
	ClientApp string
}

type AuditEvent string

const (
	// Screening events
	EventEvaluationCompleted AuditEvent = "evaluation_completed"
	EventHighRelevanceHits   AuditEvent = "high_relevance_hits"
	EventEvaluationAccessed  AuditEvent = "evaluation_accessed"
	EventEvaluationsListed   AuditEvent = "evaluations_listed"
	EventEvaluationFailed    AuditEvent = "evaluation_failed"

	// Security events
	EventAuthFailed         AuditEvent = "auth_failed"
	EventAdminTokenRejected AuditEvent = "admin_token_rejected"
)

// eventCategories maps each audit event to its category.
// Compliance: legal/regulatory significance, long retention required.
// Security: security monitoring, SIEM integration, alerting.
// Operations: debugging, operational visibility, can be sampled.
var eventCategories = map[AuditEvent]EventCategory{
	EventEvaluationCompleted: CategoryCompliance,
	EventHighRelevanceHits:   CategoryCompliance,

	EventAuthFailed:         CategorySecurity,
	EventAdminTokenRejected: CategorySecurity,

	EventEvaluationAccessed: CategoryOperations,
	EventEvaluationsListed:  CategoryOperations,
	EventEvaluationFailed:   CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// SubjectHash derives the audit-trail identifier for an applicant identity.
// Parts are trimmed and lowercased so formatting differences in the request
// do not fragment the trail. A NUL separator keeps part boundaries
// unambiguous.
func SubjectHash(parts ...string) string {
	h := sha256.New()
	for i, part := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(strings.ToLower(strings.TrimSpace(part))))
	}
	return hex.EncodeToString(h.Sum(nil))
}

package models

import (
	"time"

	"github.com/google/uuid"

	"veriscreen/internal/screening/engine"
)

// Evaluation is one stored screening outcome.
//
// Invariants:
//   - ID is assigned once by the service and never changes
//   - Matches preserves the submitted candidate order
//   - MatchCounts always carries all four relevance categories
//   - CreatedAt is immutable after construction
//
// The full match payloads are retained so a past evaluation can be replayed
// to compliance exactly as it was returned to the caller.
type Evaluation struct {
	ID          uuid.UUID               `json:"id"`
	ClientID    string                  `json:"client_id,omitempty"`
	RequestID   string                  `json:"request_id,omitempty"`
	Applicant   engine.Record           `json:"applicant"`
	Matches     []engine.EvaluatedMatch `json:"matches"`
	MatchCounts map[engine.Category]int `json:"match_counts"`
	CreatedAt   time.Time               `json:"created_at"`
}

// HighRelevanceCount reports how many matches landed in the top tier.
func (e *Evaluation) HighRelevanceCount() int {
	return e.MatchCounts[engine.CategoryHighRelevance]
}

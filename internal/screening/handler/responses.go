package handler

import (
	"time"

	"veriscreen/internal/screening/engine"
	"veriscreen/internal/screening/models"
)

// EvaluateResponse is the HTTP response for POST /screening/evaluate and for
// GET /screening/evaluations/{id} replays.
type EvaluateResponse struct {
	EvaluationID     string                  `json:"evaluation_id"`
	EvaluatedMatches []engine.EvaluatedMatch `json:"evaluated_matches"`
	MatchCounts      map[engine.Category]int `json:"match_counts"`
}

// FromEvaluation converts a stored evaluation to its HTTP response. A replay
// returns exactly what the original evaluation returned.
func FromEvaluation(evaluation *models.Evaluation) *EvaluateResponse {
	matches := evaluation.Matches
	if matches == nil {
		matches = []engine.EvaluatedMatch{}
	}
	return &EvaluateResponse{
		EvaluationID:     evaluation.ID.String(),
		EvaluatedMatches: matches,
		MatchCounts:      evaluation.MatchCounts,
	}
}

// EvaluationSummary is one row of the admin listing. Summaries carry outcome
// counts only, so candidate identities stay off the admin surface.
type EvaluationSummary struct {
	EvaluationID string                  `json:"evaluation_id"`
	ClientID     string                  `json:"client_id,omitempty"`
	Matches      int                     `json:"matches"`
	MatchCounts  map[engine.Category]int `json:"match_counts"`
	CreatedAt    time.Time               `json:"created_at"`
}

// ListEvaluationsResponse is the HTTP response for the admin listing.
type ListEvaluationsResponse struct {
	Evaluations []EvaluationSummary `json:"evaluations"`
	Count       int                 `json:"count"`
}

// FromEvaluations converts stored evaluations to the admin listing.
func FromEvaluations(evaluations []*models.Evaluation) *ListEvaluationsResponse {
	summaries := make([]EvaluationSummary, 0, len(evaluations))
	for _, evaluation := range evaluations {
		summaries = append(summaries, EvaluationSummary{
			EvaluationID: evaluation.ID.String(),
			ClientID:     evaluation.ClientID,
			Matches:      len(evaluation.Matches),
			MatchCounts:  evaluation.MatchCounts,
			CreatedAt:    evaluation.CreatedAt,
		})
	}
	return &ListEvaluationsResponse{Evaluations: summaries, Count: len(summaries)}
}

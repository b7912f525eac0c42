package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the screening module.
type Metrics struct {
	// Full evaluation latency including extraction, scoring and persistence
	EvaluateLatency prometheus.Histogram

	// Scored candidates by relevance category
	MatchCategories *prometheus.CounterVec

	// Candidate records scored per evaluation request
	CandidatesPerEvaluation prometheus.Histogram

	// Result cache outcomes
	CacheOutcomes *prometheus.CounterVec
}

// New creates a new Metrics instance with all screening module metrics registered.
func New() *Metrics {
	return &Metrics{
		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veriscreen_screening_evaluate_duration_seconds",
			Help:    "Duration of full match evaluation including extraction, scoring and persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		MatchCategories: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veriscreen_screening_match_categories_total",
			Help: "Total scored candidates by relevance category",
		}, []string{"category"}),

		CandidatesPerEvaluation: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veriscreen_screening_candidates_per_evaluation",
			Help:    "Number of candidate records scored per evaluation request",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),

		CacheOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veriscreen_screening_cache_outcomes_total",
			Help: "Evaluation result cache outcomes",
		}, []string{"outcome"}), // outcome: "hit", "miss", "bypass"
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// AddMatchCategory records scored candidates for one relevance category.
func (m *Metrics) AddMatchCategory(category string, count int) {
	if m != nil && count >= 0 {
		m.MatchCategories.WithLabelValues(category).Add(float64(count))
	}
}

// ObserveCandidates records how many candidates one evaluation scored.
func (m *Metrics) ObserveCandidates(count int) {
	if m != nil {
		m.CandidatesPerEvaluation.Observe(float64(count))
	}
}

// IncrementCacheOutcome records a result cache hit, miss or bypass.
func (m *Metrics) IncrementCacheOutcome(outcome string) {
	if m != nil {
		m.CacheOutcomes.WithLabelValues(outcome).Inc()
	}
}

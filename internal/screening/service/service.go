// Package service orchestrates match evaluations: scoring, persistence,
// caching, and the audit trail.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"veriscreen/internal/screening/engine"
	"veriscreen/internal/screening/metrics"
	"veriscreen/internal/screening/models"
	dErrors "veriscreen/pkg/domain-errors"
	audit "veriscreen/pkg/platform/audit"
	"veriscreen/pkg/platform/sentinel"
	"veriscreen/pkg/requestcontext"
)

const (
	defaultMaxCandidates    = 100
	defaultScoreParallelism = 8
	defaultListLimit        = 20
	maxListLimit            = 100
)

// EvaluationStore persists completed evaluations.
type EvaluationStore interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Evaluation, error)
}

// CompliancePublisher is the fail-closed audit path. Emit must not return
// until the event is durably recorded.
type CompliancePublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// ResultCache serves previously computed evaluations by request digest.
type ResultCache interface {
	Get(ctx context.Context, digest string) (*models.Evaluation, error)
	Set(ctx context.Context, digest string, evaluation *models.Evaluation) error
}

// Service coordinates the screening evaluation flow.
type Service struct {
	store      EvaluationStore
	compliance CompliancePublisher
	cache      ResultCache
	events     chan<- audit.Event
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer

	maxCandidates    int
	scoreParallelism int
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCache enables the evaluation result cache.
func WithCache(cache ResultCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithAsyncEvents sets the channel operational and security audit events are
// emitted on. Sends never block; events are dropped when the channel is full.
func WithAsyncEvents(events chan<- audit.Event) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithMaxCandidates caps how many pipeline candidates one evaluation scores.
func WithMaxCandidates(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCandidates = n
		}
	}
}

// WithScoreParallelism bounds how many candidates are scored concurrently.
func WithScoreParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.scoreParallelism = n
		}
	}
}

// New creates a screening service. The store and the compliance publisher
// are required; everything else is optional.
func New(store EvaluationStore, compliance CompliancePublisher, opts ...Option) *Service {
	s := &Service{
		store:            store,
		compliance:       compliance,
		logger:           slog.Default(),
		tracer:           otel.Tracer("veriscreen/internal/screening/service"),
		maxCandidates:    defaultMaxCandidates,
		scoreParallelism: defaultScoreParallelism,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EvaluateRequest carries one screening evaluation's inputs.
type EvaluateRequest struct {
	// Reference is the applicant identity candidates are scored against.
	Reference engine.Record
	// PipelineData is the raw watchlist pipeline output. Malformed shapes
	// yield zero candidates rather than an error.
	PipelineData map[string]any
	// Digest identifies the raw request payload for result caching. Empty
	// bypasses the cache.
	Digest string
}

// Evaluate scores every blacklist candidate in the pipeline data against the
// reference identity, persists the evaluation, and records the compliance
// trail. The evaluation fails if the compliance event cannot be written.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*models.Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "screening.Evaluate")
	defer span.End()

	start := time.Now()

	if err := validateReference(req.Reference); err != nil {
		return nil, err
	}

	if cached, ok := s.cacheLookup(ctx, req.Digest); ok {
		return cached, nil
	}

	evaluator := engine.NewEvaluator(req.Reference, engine.WithClock(func() time.Time {
		return requestcontext.Now(ctx)
	}))

	candidates := engine.ExtractCandidates(req.PipelineData)
	if len(candidates) > s.maxCandidates {
		s.logger.WarnContext(ctx, "candidate list truncated",
			"candidates", len(candidates),
			"max", s.maxCandidates,
		)
		candidates = candidates[:s.maxCandidates]
	}
	span.SetAttributes(attribute.Int("screening.candidates", len(candidates)))

	matches := s.scoreAll(evaluator, candidates)
	counts := engine.CountByCategory(matches)

	evaluation := &models.Evaluation{
		ID:          uuid.New(),
		ClientID:    requestcontext.ClientID(ctx),
		RequestID:   requestcontext.RequestID(ctx),
		Applicant:   req.Reference,
		Matches:     matches,
		MatchCounts: counts,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Create(ctx, evaluation); err != nil {
		span.RecordError(err)
		s.emitAsync(ctx, audit.Event{
			Action: string(audit.EventEvaluationFailed),
			Reason: "persistence failed",
		})
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not persist evaluation")
	}

	if err := s.auditCompletion(ctx, evaluation); err != nil {
		span.RecordError(err)
		s.emitAsync(ctx, audit.Event{
			EvaluationID: evaluation.ID,
			Action:       string(audit.EventEvaluationFailed),
			Reason:       "compliance audit failed",
		})
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "audit trail unavailable")
	}

	s.recordMetrics(counts, len(candidates), time.Since(start))
	s.cacheStore(ctx, req.Digest, evaluation)

	s.logger.InfoContext(ctx, "evaluation completed",
		"evaluation_id", evaluation.ID,
		"candidates", len(candidates),
		"high_relevance", evaluation.HighRelevanceCount(),
	)
	return evaluation, nil
}

// Get returns a stored evaluation by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "screening.Get")
	defer span.End()

	evaluation, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "evaluation not found")
		}
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load evaluation")
	}

	s.emitAsync(ctx, audit.Event{
		EvaluationID: evaluation.ID,
		Action:       string(audit.EventEvaluationAccessed),
	})
	return evaluation, nil
}

// ListRecent returns the most recent evaluations, newest first. The limit is
// defaulted and capped so the admin surface cannot dump the full history.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*models.Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "screening.ListRecent")
	defer span.End()

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	evaluations, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list evaluations")
	}

	s.emitAsync(ctx, audit.Event{
		Action: string(audit.EventEvaluationsListed),
		Reason: fmt.Sprintf("%d evaluations returned", len(evaluations)),
	})
	return evaluations, nil
}

// scoreAll scores candidates with bounded parallelism, preserving candidate
// order in the result.
func (s *Service) scoreAll(evaluator *engine.Evaluator, candidates []engine.Record) []engine.EvaluatedMatch {
	matches := make([]engine.EvaluatedMatch, len(candidates))

	var g errgroup.Group
	g.SetLimit(s.scoreParallelism)
	for i, candidate := range candidates {
		g.Go(func() error {
			matches[i] = evaluator.Score(candidate)
			return nil
		})
	}
	_ = g.Wait()

	return matches
}

// auditCompletion writes the fail-closed compliance trail for a persisted
// evaluation: the completion event, plus a high-relevance event when any
// candidate landed in the top tier.
func (s *Service) auditCompletion(ctx context.Context, evaluation *models.Evaluation) error {
	subjectHash := subjectHash(evaluation.Applicant)
	base := audit.Event{
		EvaluationID:  evaluation.ID,
		ClientID:      evaluation.ClientID,
		RequestID:     evaluation.RequestID,
		SubjectIDHash: subjectHash,
	}

	completed := base
	completed.Action = string(audit.EventEvaluationCompleted)
	completed.Decision = strongestCategory(evaluation.MatchCounts)
	if err := s.compliance.Emit(ctx, completed); err != nil {
		return err
	}

	if hits := evaluation.HighRelevanceCount(); hits > 0 {
		flagged := base
		flagged.Action = string(audit.EventHighRelevanceHits)
		flagged.Decision = string(engine.CategoryHighRelevance)
		flagged.Reason = fmt.Sprintf("%d high relevance matches", hits)
		if err := s.compliance.Emit(ctx, flagged); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) cacheLookup(ctx context.Context, digest string) (*models.Evaluation, bool) {
	if s.cache == nil || digest == "" {
		s.cacheOutcome("bypass")
		return nil, false
	}

	evaluation, err := s.cache.Get(ctx, digest)
	switch {
	case err == nil:
		s.cacheOutcome("hit")
		s.logger.InfoContext(ctx, "evaluation served from cache",
			"evaluation_id", evaluation.ID,
		)
		return evaluation, true
	case errors.Is(err, sentinel.ErrNotFound):
		s.cacheOutcome("miss")
	default:
		// A corrupt or unreachable cache degrades to recompute.
		s.cacheOutcome("miss")
		s.logger.WarnContext(ctx, "cache read failed, recomputing", "error", err)
	}
	return nil, false
}

func (s *Service) cacheStore(ctx context.Context, digest string, evaluation *models.Evaluation) {
	if s.cache == nil || digest == "" {
		return
	}
	if err := s.cache.Set(ctx, digest, evaluation); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", "error", err)
	}
}

func (s *Service) cacheOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementCacheOutcome(outcome)
	}
}

func (s *Service) recordMetrics(counts map[engine.Category]int, candidates int, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	for category, count := range counts {
		s.metrics.AddMatchCategory(string(category), count)
	}
	s.metrics.ObserveCandidates(candidates)
	s.metrics.ObserveEvaluateLatency(elapsed)
}

// emitAsync sends an operational or security event without blocking. The
// event is enriched from the request context and dropped when the inbox is
// full.
func (s *Service) emitAsync(ctx context.Context, event audit.Event) {
	if s.events == nil {
		return
	}
	event.Category = audit.AuditEvent(event.Action).Category()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ClientID == "" {
		event.ClientID = requestcontext.ClientID(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.IP == "" {
		event.IP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	if event.ClientApp == "" {
		event.ClientApp = requestcontext.UserAgentDetails(ctx).String()
	}

	select {
	case s.events <- event:
	default:
		s.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", event.Action,
		)
	}
}

// validateReference enforces the reference identity contract also for
// callers that bypass the HTTP DTO validation.
func validateReference(reference engine.Record) error {
	hasSplitName := reference.FirstName != nil && reference.LastName != nil
	if !hasSplitName && reference.FullName == nil {
		return dErrors.New(dErrors.CodeValidation, "reference requires first_name and last_name, or full_name")
	}
	if reference.DOB == nil {
		return dErrors.New(dErrors.CodeValidation, "reference requires dob")
	}
	return nil
}

// strongestCategory names the best tier any candidate reached, for the
// compliance trail's decision field.
func strongestCategory(counts map[engine.Category]int) string {
	for _, category := range engine.Categories() {
		if counts[category] > 0 {
			return string(category)
		}
	}
	return "NO_CANDIDATES"
}

// subjectHash hashes the reference identity for the audit trail. Raw
// applicant attributes never leave the service.
func subjectHash(reference engine.Record) string {
	return audit.SubjectHash(
		deref(reference.FirstName),
		deref(reference.MiddleName),
		deref(reference.LastName),
		deref(reference.FullName),
		deref(reference.DOB),
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

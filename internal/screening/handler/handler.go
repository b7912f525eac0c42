package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"veriscreen/internal/screening/cache"
	"veriscreen/internal/screening/models"
	"veriscreen/internal/screening/service"
	dErrors "veriscreen/pkg/domain-errors"
	"veriscreen/pkg/platform/httputil"
	"veriscreen/pkg/requestcontext"
)

// Service defines the interface for screening operations.
type Service interface {
	Evaluate(ctx context.Context, req service.EvaluateRequest) (*models.Evaluation, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Evaluation, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Evaluation, error)
}

// Handler wires screening endpoints to the screening service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a screening handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the screening endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/screening/evaluate", h.HandleEvaluate)
	r.Get("/screening/evaluations/{id}", h.HandleGetEvaluation)
}

// RegisterAdmin mounts the admin read surface.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/screening/evaluations", h.HandleListEvaluations)
}

// HandleEvaluate handles POST /screening/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	// The result cache is keyed by the raw payload, so capture it before
	// decoding consumes the body.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "could not read request body"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	evaluation, err := h.service.Evaluate(ctx, service.EvaluateRequest{
		Reference:    req.ParsedReference(),
		PipelineData: req.PipelineData,
		Digest:       cache.RequestDigest(body),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "screening evaluation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "screening evaluation served",
		"request_id", requestID,
		"evaluation_id", evaluation.ID,
		"matches", len(evaluation.Matches),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromEvaluation(evaluation))
}

// HandleGetEvaluation handles GET /screening/evaluations/{id} requests.
func (h *Handler) HandleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "evaluation id must be a UUID"))
		return
	}

	evaluation, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvaluation(evaluation))
}

// HandleListEvaluations handles GET /admin/screening/evaluations requests.
func (h *Handler) HandleListEvaluations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	evaluations, err := h.service.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "evaluation listing failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvaluations(evaluations))
}

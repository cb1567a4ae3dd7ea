package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/campforge/campforge-api/internal/api/shared"
	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/service/evaluation"
	"github.com/google/uuid"
)

// EvaluationService is the service surface the evaluation handler depends on.
// *evaluation.Service is the production implementation.
type EvaluationService interface {
	RequestEvaluation(ctx context.Context, userID, activityID uuid.UUID) (*evaluation.EnqueueReceipt, error)
	ListEvaluations(ctx context.Context, userID, activityID uuid.UUID) ([]*domain.Evaluation, error)
	GetEvaluation(ctx context.Context, userID, evaluationID uuid.UUID) (*domain.Evaluation, error)
}

var _ EvaluationService = (*evaluation.Service)(nil)

// EvaluationHandler handles AI evaluation API requests.
type EvaluationHandler struct {
	service EvaluationService
}

// NewEvaluationHandler creates a new EvaluationHandler with the given service.
func NewEvaluationHandler(service EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: service}
}

// Request handles POST /activities/{id}/ai-evaluations. An accepted request
// returns 202 with a poll hint; the evaluation itself appears in the list
// endpoint once the worker finishes.
func (h *EvaluationHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID, activityID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	receipt, err := h.service.RequestEvaluation(r.Context(), userID, activityID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	slog.Debug("evaluation request accepted",
		"activity_id", activityID,
		"user_id", userID)

	shared.RespondWithJSON(w, r, http.StatusAccepted, EnqueueEvaluationResponse{
		Queued:           receipt.Queued,
		NextPollAfterSec: int(receipt.NextPollAfter.Seconds()),
	})
}

// List handles GET /activities/{id}/ai-evaluations, returning the activity's
// full evaluation history, newest version first.
func (h *EvaluationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, activityID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	evaluations, err := h.service.ListEvaluations(r.Context(), userID, activityID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	if evaluations == nil {
		evaluations = []*domain.Evaluation{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, EvaluationListResponse{
		Evaluations: evaluations,
	})
}

// Get handles GET /ai-evaluations/{id}.
func (h *EvaluationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, evaluationID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	eval, err := h.service.GetEvaluation(r.Context(), userID, evaluationID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, eval)
}

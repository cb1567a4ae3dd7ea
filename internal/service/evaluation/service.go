// Package evaluation implements the AI evaluation workflow: gating and
// enqueueing requests, building prompts, and persisting finished results.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/google/uuid"
)

// EnqueueReceipt is returned when an evaluation request has been accepted.
// The request itself is internal to the pipeline; callers are told to poll
// the activity's evaluation list after the hint interval.
type EnqueueReceipt struct {
	Queued        bool
	NextPollAfter time.Duration
}

// Service coordinates evaluation requests and reads. All methods authorize
// against group membership before touching evaluation data.
type Service struct {
	logger          *slog.Logger
	activityStore   store.ActivityStore
	groupStore      store.GroupStore
	requestStore    store.EvaluationRequestStore
	evaluationStore store.EvaluationStore
	cooldown        time.Duration
	pollHint        time.Duration
}

// NewService creates an evaluation Service.
func NewService(
	logger *slog.Logger,
	activityStore store.ActivityStore,
	groupStore store.GroupStore,
	requestStore store.EvaluationRequestStore,
	evaluationStore store.EvaluationStore,
	cooldown, pollHint time.Duration,
) (*Service, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if activityStore == nil || groupStore == nil || requestStore == nil || evaluationStore == nil {
		return nil, errors.New("stores cannot be nil")
	}
	if cooldown <= 0 {
		return nil, errors.New("cooldown must be positive")
	}

	return &Service{
		logger:          logger.With(slog.String("component", "evaluation_service")),
		activityStore:   activityStore,
		groupStore:      groupStore,
		requestStore:    requestStore,
		evaluationStore: evaluationStore,
		cooldown:        cooldown,
		pollHint:        pollHint,
	}, nil
}

// RequestEvaluation enqueues an AI evaluation for the activity on behalf of
// the user. Only group admins and the activity's assigned editor may request
// one. The cooldown check and the enqueue happen atomically in the store, so
// concurrent requests for the same activity admit at most one.
//
// Returns store.ErrActivityNotFound, domain.ErrUnauthorized (no membership),
// domain.ErrForbidden (insufficient role) or store.ErrCooldownActive on
// rejection.
func (s *Service) RequestEvaluation(
	ctx context.Context,
	userID, activityID uuid.UUID,
) (*EnqueueReceipt, error) {
	activity, err := s.activityStore.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}

	membership, err := s.getMembership(ctx, activity.GroupID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMembershipNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if membership.Role != domain.RoleAdmin && !activity.IsAssignedEditor(userID) {
		s.logger.InfoContext(ctx, "evaluation request refused",
			slog.String("activity_id", activityID.String()),
			slog.String("user_id", userID.String()),
			slog.String("role", string(membership.Role)))
		return nil, domain.ErrForbidden
	}

	req, err := s.requestStore.EnqueueWithCooldown(ctx, activityID, userID, s.cooldown)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "evaluation request queued",
		slog.String("request_id", req.ID.String()),
		slog.String("activity_id", activityID.String()))

	return &EnqueueReceipt{Queued: true, NextPollAfter: s.pollHint}, nil
}

// ListEvaluations returns all evaluations for the activity, newest version
// first. Any member of the activity's group may read them.
func (s *Service) ListEvaluations(
	ctx context.Context,
	userID, activityID uuid.UUID,
) ([]*domain.Evaluation, error) {
	activity, err := s.activityStore.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}

	if _, err := s.getMembership(ctx, activity.GroupID, userID); err != nil {
		if errors.Is(err, store.ErrMembershipNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}

	return s.evaluationStore.ListByActivity(ctx, activityID)
}

// GetEvaluation returns a single evaluation. Any member of the owning group
// may read it; a caller outside the group learns nothing, not even that the
// evaluation exists. An evaluation of a deleted activity is likewise not
// found.
func (s *Service) GetEvaluation(
	ctx context.Context,
	userID, evaluationID uuid.UUID,
) (*domain.Evaluation, error) {
	eval, err := s.evaluationStore.GetByID(ctx, evaluationID)
	if err != nil {
		return nil, err
	}

	activity, err := s.activityStore.GetByID(ctx, eval.ActivityID)
	if err != nil {
		if errors.Is(err, store.ErrActivityNotFound) {
			return nil, store.ErrEvaluationNotFound
		}
		return nil, err
	}

	if _, err := s.getMembership(ctx, activity.GroupID, userID); err != nil {
		if errors.Is(err, store.ErrMembershipNotFound) {
			return nil, store.ErrEvaluationNotFound
		}
		return nil, err
	}

	return eval, nil
}

// getMembership loads the user's membership in the group. Callers decide how
// a missing membership surfaces; the mapping differs between the enqueue and
// read paths.
func (s *Service) getMembership(
	ctx context.Context,
	groupID, userID uuid.UUID,
) (*domain.Membership, error) {
	membership, err := s.groupStore.GetMembership(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMembershipNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	return membership, nil
}

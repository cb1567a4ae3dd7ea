package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluationRequest(t *testing.T) {
	activityID := uuid.New()
	userID := uuid.New()

	t.Run("creates queued request", func(t *testing.T) {
		req, err := domain.NewEvaluationRequest(activityID, userID)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, req.ID)
		assert.Equal(t, activityID, req.ActivityID)
		assert.Equal(t, userID, req.RequestedBy)
		assert.Equal(t, domain.EvaluationRequestQueued, req.Status)
		assert.Nil(t, req.StartedAt)
		assert.Nil(t, req.FinishedAt)
		assert.False(t, req.IsTerminal())
	})

	t.Run("rejects nil activity", func(t *testing.T) {
		_, err := domain.NewEvaluationRequest(uuid.Nil, userID)
		assert.ErrorIs(t, err, domain.ErrEmptyRequestActivity)
	})

	t.Run("rejects nil user", func(t *testing.T) {
		_, err := domain.NewEvaluationRequest(activityID, uuid.Nil)
		assert.ErrorIs(t, err, domain.ErrEmptyRequestUser)
	})
}

func TestEvaluationRequestTransitions(t *testing.T) {
	now := time.Now().UTC()

	newRequest := func(t *testing.T) *domain.EvaluationRequest {
		t.Helper()
		req, err := domain.NewEvaluationRequest(uuid.New(), uuid.New())
		require.NoError(t, err)
		return req
	}

	t.Run("queued to processing", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.MarkProcessing(now))

		assert.Equal(t, domain.EvaluationRequestProcessing, req.Status)
		require.NotNil(t, req.StartedAt)
		assert.Nil(t, req.FinishedAt)
		assert.NoError(t, req.Validate())
	})

	t.Run("processing to completed", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.MarkProcessing(now))
		require.NoError(t, req.MarkCompleted(now))

		assert.Equal(t, domain.EvaluationRequestCompleted, req.Status)
		require.NotNil(t, req.FinishedAt)
		assert.True(t, req.IsTerminal())
		assert.NoError(t, req.Validate())
	})

	t.Run("processing to failed records code and message", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.MarkProcessing(now))
		require.NoError(t, req.MarkFailed(now, domain.CodeTimeout, "deadline exceeded"))

		assert.Equal(t, domain.EvaluationRequestFailed, req.Status)
		require.NotNil(t, req.ErrorCode)
		assert.Equal(t, domain.CodeTimeout, *req.ErrorCode)
		require.NotNil(t, req.ErrorMessage)
		assert.Equal(t, "deadline exceeded", *req.ErrorMessage)
		assert.True(t, req.IsTerminal())
	})

	t.Run("failure message is truncated", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.MarkProcessing(now))

		long := strings.Repeat("x", 2000)
		require.NoError(t, req.MarkFailed(now, domain.CodeUpstreamError, long))

		require.NotNil(t, req.ErrorMessage)
		assert.Len(t, *req.ErrorMessage, domain.MaxErrorMessageLen)
	})

	t.Run("cannot complete a queued request", func(t *testing.T) {
		req := newRequest(t)
		assert.ErrorIs(t, req.MarkCompleted(now), domain.ErrInvalidStatusTransition)
	})

	t.Run("cannot fail a queued request", func(t *testing.T) {
		req := newRequest(t)
		err := req.MarkFailed(now, domain.CodeInternalError, "boom")
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	})

	t.Run("terminal rows accept no further transitions", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.MarkProcessing(now))
		require.NoError(t, req.MarkCompleted(now))

		assert.ErrorIs(t, req.MarkProcessing(now), domain.ErrInvalidStatusTransition)
		assert.ErrorIs(t, req.MarkCompleted(now), domain.ErrInvalidStatusTransition)
		assert.ErrorIs(
			t,
			req.MarkFailed(now, domain.CodeInternalError, "boom"),
			domain.ErrInvalidStatusTransition,
		)
	})
}

func TestEvaluationRequestValidateTimestampInvariant(t *testing.T) {
	now := time.Now().UTC()

	req, err := domain.NewEvaluationRequest(uuid.New(), uuid.New())
	require.NoError(t, err)

	// A queued row must not carry a start timestamp.
	req.StartedAt = &now
	assert.ErrorIs(t, req.Validate(), domain.ErrInvalidRequestStatus)

	// A completed row must carry both timestamps.
	req.Status = domain.EvaluationRequestCompleted
	req.FinishedAt = nil
	assert.ErrorIs(t, req.Validate(), domain.ErrInvalidRequestStatus)
}

package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvaluation(t *testing.T, activityID uuid.UUID, loreScore int) *domain.Evaluation {
	t.Helper()
	eval, err := domain.NewEvaluation(
		activityID,
		loreScore, 7,
		"Strong forest-ranger framing throughout.",
		"Teaches navigation and teamwork.",
		[]string{
			"Add a map-reading checkpoint",
			"Pair newer scouts with experienced ones",
			"End with a reflection circle",
		},
		nil,
	)
	require.NoError(t, err, "Failed to build evaluation")
	return eval
}

// Integration tests for PostgresEvaluationStore
func TestPostgresEvaluationStore_Integration(t *testing.T) {
	if !isIntegrationTestEnvironment() {
		t.Skip("Skipping integration test - DATABASE_URL environment variable required")
	}

	db := openTestDB(t)
	ctx := context.Background()

	withTx := func(t *testing.T, fn func(t *testing.T, tx *sql.Tx, s *PostgresEvaluationStore)) {
		t.Helper()
		tx, err := db.Begin()
		require.NoError(t, err, "Failed to begin transaction")
		defer func() {
			if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
				t.Logf("Error rolling back transaction: %v", err)
			}
		}()
		fn(t, tx, NewPostgresEvaluationStore(tx, nil))
	}

	t.Run("CreateWithVersion assigns strictly increasing versions", func(t *testing.T) {
		withTx(t, func(t *testing.T, tx *sql.Tx, s *PostgresEvaluationStore) {
			_, activityID := seedActivity(t, ctx, tx)

			for want := 1; want <= 3; want++ {
				eval := newTestEvaluation(t, activityID, want+4)
				require.NoError(t, s.CreateWithVersion(ctx, eval))
				assert.Equal(t, want, eval.Version)
			}
		})
	})

	t.Run("versions are assigned per activity", func(t *testing.T) {
		withTx(t, func(t *testing.T, tx *sql.Tx, s *PostgresEvaluationStore) {
			_, firstActivity := seedActivity(t, ctx, tx)
			_, secondActivity := seedActivity(t, ctx, tx)

			first := newTestEvaluation(t, firstActivity, 5)
			require.NoError(t, s.CreateWithVersion(ctx, first))
			second := newTestEvaluation(t, firstActivity, 6)
			require.NoError(t, s.CreateWithVersion(ctx, second))

			other := newTestEvaluation(t, secondActivity, 5)
			require.NoError(t, s.CreateWithVersion(ctx, other))

			assert.Equal(t, 2, second.Version)
			assert.Equal(t, 1, other.Version, "A fresh activity starts at version 1")
		})
	})

	t.Run("CreateWithVersion rejects an unknown activity", func(t *testing.T) {
		withTx(t, func(t *testing.T, tx *sql.Tx, s *PostgresEvaluationStore) {
			eval := newTestEvaluation(t, uuid.New(), 5)
			err := s.CreateWithVersion(ctx, eval)
			assert.ErrorIs(t, err, store.ErrInvalidEntity)
		})
	})

	t.Run("ListByActivity returns newest version first", func(t *testing.T) {
		withTx(t, func(t *testing.T, tx *sql.Tx, s *PostgresEvaluationStore) {
			_, activityID := seedActivity(t, ctx, tx)

			for i := 0; i < 3; i++ {
				eval := newTestEvaluation(t, activityID, 5+i)
				require.NoError(t, s.CreateWithVersion(ctx, eval))
			}

			evals, err := s.ListByActivity(ctx, activityID)
			require.NoError(t, err)
			require.Len(t, evals, 3)
			assert.Equal(t, []int{3, 2, 1},
				[]int{evals[0].Version, evals[1].Version, evals[2].Version})
			assert.Equal(t, 7, evals[0].LoreScore, "Newest row carries the latest content")
		})
	})

	t.Run("GetByID round-trips suggestions and reports missing rows", func(t *testing.T) {
		withTx(t, func(t *testing.T, tx *sql.Tx, s *PostgresEvaluationStore) {
			_, activityID := seedActivity(t, ctx, tx)

			created := newTestEvaluation(t, activityID, 8)
			require.NoError(t, s.CreateWithVersion(ctx, created))

			got, err := s.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.Suggestions, got.Suggestions)
			assert.Equal(t, created.Version, got.Version)

			_, err = s.GetByID(ctx, uuid.New())
			assert.ErrorIs(t, err, store.ErrEvaluationNotFound)
		})
	})
}

package evaluation

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeActivityStore serves activities from a map.
type fakeActivityStore struct {
	activities map[uuid.UUID]*domain.Activity
}

func (f *fakeActivityStore) Create(ctx context.Context, a *domain.Activity) error {
	f.activities[a.ID] = a
	return nil
}

func (f *fakeActivityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	a, ok := f.activities[id]
	if !ok || a.IsDeleted() {
		return nil, store.ErrActivityNotFound
	}
	return a, nil
}

func (f *fakeActivityStore) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Activity, error) {
	var out []*domain.Activity
	for _, a := range f.activities {
		if a.GroupID == groupID && !a.IsDeleted() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeActivityStore) Update(ctx context.Context, a *domain.Activity) error {
	f.activities[a.ID] = a
	return nil
}

func (f *fakeActivityStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	a, ok := f.activities[id]
	if !ok {
		return store.ErrActivityNotFound
	}
	now := time.Now().UTC()
	a.DeletedAt = &now
	return nil
}

func (f *fakeActivityStore) WithTx(tx *sql.Tx) store.ActivityStore { return f }

// fakeGroupStore serves memberships from a map keyed by group and user.
type fakeGroupStore struct {
	groups      map[uuid.UUID]*domain.Group
	memberships map[uuid.UUID]map[uuid.UUID]*domain.Membership
}

func (f *fakeGroupStore) Create(ctx context.Context, g *domain.Group) error {
	f.groups[g.ID] = g
	return nil
}

func (f *fakeGroupStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, store.ErrGroupNotFound
	}
	return g, nil
}

func (f *fakeGroupStore) AddMembership(ctx context.Context, m *domain.Membership) error {
	if f.memberships[m.GroupID] == nil {
		f.memberships[m.GroupID] = make(map[uuid.UUID]*domain.Membership)
	}
	f.memberships[m.GroupID][m.UserID] = m
	return nil
}

func (f *fakeGroupStore) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*domain.Membership, error) {
	m, ok := f.memberships[groupID][userID]
	if !ok {
		return nil, store.ErrMembershipNotFound
	}
	return m, nil
}

func (f *fakeGroupStore) WithTx(tx *sql.Tx) store.GroupStore { return f }

// fakeRequestStore records enqueues and can be primed to fail.
type fakeRequestStore struct {
	enqueueErr error
	enqueued   []*domain.EvaluationRequest
}

func (f *fakeRequestStore) EnqueueWithCooldown(
	ctx context.Context,
	activityID, requestedBy uuid.UUID,
	cooldown time.Duration,
) (*domain.EvaluationRequest, error) {
	if f.enqueueErr != nil {
		return nil, f.enqueueErr
	}

	req, err := domain.NewEvaluationRequest(activityID, requestedBy)
	if err != nil {
		return nil, err
	}

	f.enqueued = append(f.enqueued, req)
	return req, nil
}

func (f *fakeRequestStore) ClaimBatch(ctx context.Context, limit int) ([]*domain.EvaluationRequest, error) {
	return nil, nil
}

func (f *fakeRequestStore) FinalizeSuccess(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeRequestStore) FinalizeFailure(ctx context.Context, id uuid.UUID, code domain.ErrorCode, message string) error {
	return nil
}

func (f *fakeRequestStore) FinalizeExpired(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, nil
}

func (f *fakeRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.EvaluationRequest, error) {
	return nil, store.ErrRequestNotFound
}

func (f *fakeRequestStore) WithTx(tx *sql.Tx) store.EvaluationRequestStore { return f }

// fakeEvaluationStore serves evaluations from a map.
type fakeEvaluationStore struct {
	evaluations map[uuid.UUID]*domain.Evaluation
}

func (f *fakeEvaluationStore) CreateWithVersion(ctx context.Context, e *domain.Evaluation) error {
	e.Version = len(f.evaluations) + 1
	f.evaluations[e.ID] = e
	return nil
}

func (f *fakeEvaluationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error) {
	e, ok := f.evaluations[id]
	if !ok {
		return nil, store.ErrEvaluationNotFound
	}
	return e, nil
}

func (f *fakeEvaluationStore) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]*domain.Evaluation, error) {
	var out []*domain.Evaluation
	for _, e := range f.evaluations {
		if e.ActivityID == activityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvaluationStore) WithTx(tx *sql.Tx) store.EvaluationStore { return f }

// serviceFixture wires a Service over fakes with one group, one activity and
// a set of users in different roles.
type serviceFixture struct {
	service     *Service
	activities  *fakeActivityStore
	groups      *fakeGroupStore
	requests    *fakeRequestStore
	evaluations *fakeEvaluationStore

	group    *domain.Group
	activity *domain.Activity
	admin    uuid.UUID
	editor   uuid.UUID
	member   uuid.UUID
	outsider uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		activities: &fakeActivityStore{activities: make(map[uuid.UUID]*domain.Activity)},
		groups: &fakeGroupStore{
			groups:      make(map[uuid.UUID]*domain.Group),
			memberships: make(map[uuid.UUID]map[uuid.UUID]*domain.Membership),
		},
		requests:    &fakeRequestStore{},
		evaluations: &fakeEvaluationStore{evaluations: make(map[uuid.UUID]*domain.Evaluation)},
		admin:       uuid.New(),
		editor:      uuid.New(),
		member:      uuid.New(),
		outsider:    uuid.New(),
	}

	group, err := domain.NewGroup("Eagle Patrol", "forest rangers")
	require.NoError(t, err)
	f.group = group
	require.NoError(t, f.groups.Create(context.Background(), group))

	activity, err := domain.NewActivity(group.ID, "Night hike", "A guided hike after dark")
	require.NoError(t, err)
	activity.AssignedEditorID = &f.editor
	f.activity = activity
	require.NoError(t, f.activities.Create(context.Background(), activity))

	for userID, role := range map[uuid.UUID]domain.MembershipRole{
		f.admin:  domain.RoleAdmin,
		f.editor: domain.RoleEditor,
		f.member: domain.RoleMember,
	} {
		m, err := domain.NewMembership(group.ID, userID, role)
		require.NoError(t, err)
		require.NoError(t, f.groups.AddMembership(context.Background(), m))
	}

	svc, err := NewService(
		slog.Default(),
		f.activities, f.groups, f.requests, f.evaluations,
		5*time.Minute, 5*time.Second,
	)
	require.NoError(t, err)
	f.service = svc

	return f
}

func TestRequestEvaluation_Authorization(t *testing.T) {
	ctx := context.Background()

	t.Run("group admin may request", func(t *testing.T) {
		f := newServiceFixture(t)

		receipt, err := f.service.RequestEvaluation(ctx, f.admin, f.activity.ID)
		require.NoError(t, err)
		assert.True(t, receipt.Queued)
		assert.Equal(t, 5*time.Second, receipt.NextPollAfter)
		require.Len(t, f.requests.enqueued, 1)
		assert.Equal(t, f.admin, f.requests.enqueued[0].RequestedBy)
	})

	t.Run("assigned editor may request", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.RequestEvaluation(ctx, f.editor, f.activity.ID)
		require.NoError(t, err)
		require.Len(t, f.requests.enqueued, 1)
	})

	t.Run("unassigned editor is forbidden", func(t *testing.T) {
		f := newServiceFixture(t)
		f.activity.AssignedEditorID = nil

		_, err := f.service.RequestEvaluation(ctx, f.editor, f.activity.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Empty(t, f.requests.enqueued)
	})

	t.Run("plain member is forbidden", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.RequestEvaluation(ctx, f.member, f.activity.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("non-member is unauthorized", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.RequestEvaluation(ctx, f.outsider, f.activity.ID)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("missing activity is not found", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.RequestEvaluation(ctx, f.admin, uuid.New())
		assert.ErrorIs(t, err, store.ErrActivityNotFound)
	})

	t.Run("deleted activity is not found", func(t *testing.T) {
		f := newServiceFixture(t)
		require.NoError(t, f.activities.SoftDelete(ctx, f.activity.ID))

		_, err := f.service.RequestEvaluation(ctx, f.admin, f.activity.ID)
		assert.ErrorIs(t, err, store.ErrActivityNotFound)
	})
}

func TestRequestEvaluation_CooldownPassthrough(t *testing.T) {
	f := newServiceFixture(t)
	f.requests.enqueueErr = store.ErrCooldownActive

	_, err := f.service.RequestEvaluation(context.Background(), f.admin, f.activity.ID)
	assert.ErrorIs(t, err, store.ErrCooldownActive)
}

func TestListEvaluations(t *testing.T) {
	ctx := context.Background()

	t.Run("members can list", func(t *testing.T) {
		f := newServiceFixture(t)

		eval, err := domain.NewEvaluation(f.activity.ID, 7, 8, "a", "b", []string{"x", "y", "z"}, nil)
		require.NoError(t, err)
		require.NoError(t, f.evaluations.CreateWithVersion(ctx, eval))

		got, err := f.service.ListEvaluations(ctx, f.member, f.activity.ID)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("non-members are forbidden", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.ListEvaluations(ctx, f.outsider, f.activity.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestGetEvaluation(t *testing.T) {
	ctx := context.Background()

	t.Run("members can read", func(t *testing.T) {
		f := newServiceFixture(t)

		eval, err := domain.NewEvaluation(f.activity.ID, 7, 8, "a", "b", []string{"x", "y", "z"}, nil)
		require.NoError(t, err)
		require.NoError(t, f.evaluations.CreateWithVersion(ctx, eval))

		got, err := f.service.GetEvaluation(ctx, f.member, eval.ID)
		require.NoError(t, err)
		assert.Equal(t, eval.ID, got.ID)
	})

	t.Run("evaluation of a deleted activity is not found", func(t *testing.T) {
		f := newServiceFixture(t)

		eval, err := domain.NewEvaluation(f.activity.ID, 7, 8, "a", "b", []string{"x", "y", "z"}, nil)
		require.NoError(t, err)
		require.NoError(t, f.evaluations.CreateWithVersion(ctx, eval))
		require.NoError(t, f.activities.SoftDelete(ctx, f.activity.ID))

		_, err = f.service.GetEvaluation(ctx, f.member, eval.ID)
		assert.ErrorIs(t, err, store.ErrEvaluationNotFound)
	})

	t.Run("non-member sees not found, not forbidden", func(t *testing.T) {
		f := newServiceFixture(t)

		eval, err := domain.NewEvaluation(f.activity.ID, 7, 8, "a", "b", []string{"x", "y", "z"}, nil)
		require.NoError(t, err)
		require.NoError(t, f.evaluations.CreateWithVersion(ctx, eval))

		_, err = f.service.GetEvaluation(ctx, f.outsider, eval.ID)
		assert.ErrorIs(t, err, store.ErrEvaluationNotFound)
	})

	t.Run("unknown evaluation is not found", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.GetEvaluation(ctx, f.member, uuid.New())
		assert.ErrorIs(t, err, store.ErrEvaluationNotFound)
	})
}

func TestBuildPrompt(t *testing.T) {
	f := newServiceFixture(t)
	f.activity.Materials = "rope, <script>alert(1)</script> compass"
	f.activity.Location = "north ridge"
	f.activity.DurationMinutes = 90

	prompt, err := BuildPrompt(f.activity, f.group)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Night hike")
	assert.Contains(t, prompt, "forest rangers")
	assert.Contains(t, prompt, "90 minutes")
	assert.Contains(t, prompt, "north ridge")
	assert.NotContains(t, prompt, "<script>")
	assert.NotContains(t, prompt, "alert(1)")
}

func TestBuildPrompt_OmitsEmptyOptionalFields(t *testing.T) {
	f := newServiceFixture(t)

	prompt, err := BuildPrompt(f.activity, f.group)
	require.NoError(t, err)

	assert.NotContains(t, prompt, "Materials:")
	assert.NotContains(t, prompt, "Location:")
	assert.NotContains(t, prompt, "Duration:")
}

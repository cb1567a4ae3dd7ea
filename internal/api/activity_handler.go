package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/campforge/campforge-api/internal/api/shared"
	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ActivityHandler handles activity API requests. Edit rights follow the same
// rule everywhere: group admins may edit any activity, editors only the
// activities assigned to them.
type ActivityHandler struct {
	activityStore store.ActivityStore
	groupStore    store.GroupStore
	validator     *validator.Validate
}

// NewActivityHandler creates a new ActivityHandler with the given dependencies.
func NewActivityHandler(
	activityStore store.ActivityStore,
	groupStore store.GroupStore,
) *ActivityHandler {
	return &ActivityHandler{
		activityStore: activityStore,
		groupStore:    groupStore,
		validator:     validator.New(),
	}
}

// Create handles POST /activities. Admins and editors may create activities
// in their group.
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			"Authentication required", domain.CodeUnauthorized)
		return
	}

	var req CreateActivityRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid request format", domain.CodeValidationError)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Validation error: "+err.Error(), domain.CodeValidationError)
		return
	}

	membership, err := h.requireMembership(r, req.GroupID, userID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	if membership.Role == domain.RoleMember {
		respondWithMappedError(w, r, domain.ErrForbidden)
		return
	}

	activity, err := domain.NewActivity(req.GroupID, req.Title, req.Description)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid activity data: "+err.Error(), domain.CodeValidationError)
		return
	}
	activity.Materials = req.Materials
	activity.Location = req.Location
	activity.DurationMinutes = req.DurationMinutes

	if err := h.activityStore.Create(r.Context(), activity); err != nil {
		slog.Error("failed to create activity", "error", err)
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, activity)
}

// Get handles GET /activities/{id}. Any group member may read.
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, activityID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	activity, err := h.activityStore.GetByID(r.Context(), activityID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	if _, err := h.requireMembership(r, activity.GroupID, userID); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, activity)
}

// ListByGroup handles GET /groups/{id}/activities. Any group member may list.
func (h *ActivityHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.requireMembership(r, groupID, userID); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	activities, err := h.activityStore.ListByGroup(r.Context(), groupID)
	if err != nil {
		slog.Error("failed to list activities", "error", err, "group_id", groupID)
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, activities)
}

// Update handles PUT /activities/{id}.
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, activityID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateActivityRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid request format", domain.CodeValidationError)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Validation error: "+err.Error(), domain.CodeValidationError)
		return
	}

	activity, err := h.requireEditRights(r, activityID, userID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	activity.Title = req.Title
	activity.Description = req.Description
	activity.Materials = req.Materials
	activity.Location = req.Location
	activity.DurationMinutes = req.DurationMinutes
	activity.UpdatedAt = time.Now().UTC()

	if err := h.activityStore.Update(r.Context(), activity); err != nil {
		slog.Error("failed to update activity", "error", err, "activity_id", activityID)
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, activity)
}

// Delete handles DELETE /activities/{id}. Only group admins may delete.
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, activityID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	activity, err := h.activityStore.GetByID(r.Context(), activityID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	membership, err := h.requireMembership(r, activity.GroupID, userID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	if membership.Role != domain.RoleAdmin {
		respondWithMappedError(w, r, domain.ErrForbidden)
		return
	}

	if err := h.activityStore.SoftDelete(r.Context(), activityID); err != nil {
		slog.Error("failed to delete activity", "error", err, "activity_id", activityID)
		respondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignEditor handles PUT /activities/{id}/editor. Only group admins may
// assign or clear an activity's editor; the assignee must be a group member.
func (h *ActivityHandler) AssignEditor(w http.ResponseWriter, r *http.Request) {
	userID, activityID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AssignEditorRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid request format", domain.CodeValidationError)
		return
	}

	activity, err := h.activityStore.GetByID(r.Context(), activityID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	membership, err := h.requireMembership(r, activity.GroupID, userID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	if membership.Role != domain.RoleAdmin {
		respondWithMappedError(w, r, domain.ErrForbidden)
		return
	}

	if req.UserID != nil {
		if _, err := h.groupStore.GetMembership(r.Context(), activity.GroupID, *req.UserID); err != nil {
			if errors.Is(err, store.ErrMembershipNotFound) {
				shared.RespondWithError(w, r, http.StatusBadRequest,
					"Assignee is not a group member", domain.CodeValidationError)
				return
			}
			respondWithMappedError(w, r, err)
			return
		}
	}

	activity.AssignedEditorID = req.UserID
	activity.UpdatedAt = time.Now().UTC()

	if err := h.activityStore.Update(r.Context(), activity); err != nil {
		slog.Error("failed to assign editor", "error", err, "activity_id", activityID)
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, activity)
}

// requireEditRights loads the activity and checks that the user may edit it.
func (h *ActivityHandler) requireEditRights(
	r *http.Request,
	activityID, userID uuid.UUID,
) (*domain.Activity, error) {
	activity, err := h.activityStore.GetByID(r.Context(), activityID)
	if err != nil {
		return nil, err
	}

	membership, err := h.requireMembership(r, activity.GroupID, userID)
	if err != nil {
		return nil, err
	}

	switch {
	case membership.Role == domain.RoleAdmin:
	case membership.Role == domain.RoleEditor && activity.IsAssignedEditor(userID):
	default:
		return nil, domain.ErrForbidden
	}

	return activity, nil
}

// requireMembership loads the caller's membership, translating a missing one
// into domain.ErrForbidden.
func (h *ActivityHandler) requireMembership(
	r *http.Request,
	groupID, userID uuid.UUID,
) (*domain.Membership, error) {
	membership, err := h.groupStore.GetMembership(r.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMembershipNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	return membership, nil
}

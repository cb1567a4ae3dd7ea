package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/campforge/campforge-api/internal/api/shared"
	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// GroupHandler handles group and membership API requests.
type GroupHandler struct {
	db         *sql.DB
	groupStore store.GroupStore
	validator  *validator.Validate
}

// NewGroupHandler creates a new GroupHandler with the given dependencies.
func NewGroupHandler(db *sql.DB, groupStore store.GroupStore) *GroupHandler {
	return &GroupHandler{
		db:         db,
		groupStore: groupStore,
		validator:  validator.New(),
	}
}

// Create handles POST /groups. The creator becomes the group's first admin;
// the group and the membership commit together.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			"Authentication required", domain.CodeUnauthorized)
		return
	}

	var req CreateGroupRequest
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

	group, err := domain.NewGroup(req.Name, req.Theme)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid group data: "+err.Error(), domain.CodeValidationError)
		return
	}

	membership, err := domain.NewMembership(group.ID, userID, domain.RoleAdmin)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid membership data: "+err.Error(), domain.CodeValidationError)
		return
	}

	err = store.RunInTransaction(r.Context(), h.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := h.groupStore.WithTx(tx)
		if err := txStore.Create(ctx, group); err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		if err := txStore.AddMembership(ctx, membership); err != nil {
			return fmt.Errorf("failed to add creator membership: %w", err)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to create group", "error", err)
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, group)
}

// Get handles GET /groups/{id}. Only members may read a group.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.requireMembership(r, groupID, userID); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	group, err := h.groupStore.GetByID(r.Context(), groupID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, group)
}

// AddMember handles POST /groups/{id}/members. Only group admins may add
// members or change roles.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	membership, err := h.requireMembership(r, groupID, userID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	if membership.Role != domain.RoleAdmin {
		respondWithMappedError(w, r, domain.ErrForbidden)
		return
	}

	var req AddMemberRequest
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

	newMember, err := domain.NewMembership(groupID, req.UserID, domain.MembershipRole(req.Role))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid membership data: "+err.Error(), domain.CodeValidationError)
		return
	}

	if err := h.groupStore.AddMembership(r.Context(), newMember); err != nil {
		slog.Error("failed to add membership", "error", err, "group_id", groupID)
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newMember)
}

// requireMembership loads the caller's membership, translating a missing one
// into domain.ErrForbidden.
func (h *GroupHandler) requireMembership(
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

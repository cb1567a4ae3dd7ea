package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Activity
var (
	ErrEmptyActivityID    = errors.New("activity ID cannot be empty")
	ErrEmptyActivityGroup = errors.New("activity group ID cannot be empty")
	ErrEmptyActivityTitle = errors.New("activity title cannot be empty")
)

// Activity represents a planned camp activity belonging to a group.
// LastEvaluationRequestedAt is the cooldown marker consulted by the
// evaluation request gate; it is stamped transactionally when a request
// is accepted, so gate decisions never scan request history.
type Activity struct {
	ID               uuid.UUID `json:"id"`
	GroupID          uuid.UUID `json:"group_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Materials        string    `json:"materials"`
	Location         string    `json:"location"`
	DurationMinutes  int       `json:"duration_minutes"`
	AssignedEditorID *uuid.UUID `json:"assigned_editor_id,omitempty"`

	LastEvaluationRequestedAt *time.Time `json:"last_evaluation_requested_at,omitempty"`

	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewActivity creates a new Activity in the given group.
// Returns an error if validation fails.
func NewActivity(groupID uuid.UUID, title, description string) (*Activity, error) {
	now := time.Now().UTC()
	activity := &Activity{
		ID:          uuid.New(),
		GroupID:     groupID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := activity.Validate(); err != nil {
		return nil, err
	}

	return activity, nil
}

// Validate checks if the Activity has valid data.
func (a *Activity) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyActivityID
	}

	if a.GroupID == uuid.Nil {
		return ErrEmptyActivityGroup
	}

	if a.Title == "" {
		return ErrEmptyActivityTitle
	}

	return nil
}

// IsDeleted reports whether the activity has been soft-deleted.
func (a *Activity) IsDeleted() bool {
	return a.DeletedAt != nil
}

// IsAssignedEditor reports whether the given user is the activity's
// explicitly assigned editor.
func (a *Activity) IsAssignedEditor(userID uuid.UUID) bool {
	return a.AssignedEditorID != nil && *a.AssignedEditorID == userID
}

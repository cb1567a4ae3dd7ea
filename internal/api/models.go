package api

import (
	"github.com/campforge/campforge-api/internal/domain"
	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// CreateGroupRequest defines the payload for creating a group.
type CreateGroupRequest struct {
	Name  string `json:"name"  validate:"required,max=200"`
	Theme string `json:"theme" validate:"max=2000"`
}

// AddMemberRequest defines the payload for adding or re-roling a group member.
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role"    validate:"required,oneof=admin editor member"`
}

// CreateActivityRequest defines the payload for creating an activity.
type CreateActivityRequest struct {
	GroupID         uuid.UUID `json:"group_id"         validate:"required"`
	Title           string    `json:"title"            validate:"required,max=200"`
	Description     string    `json:"description"      validate:"max=5000"`
	Materials       string    `json:"materials"        validate:"max=2000"`
	Location        string    `json:"location"         validate:"max=500"`
	DurationMinutes int       `json:"duration_minutes" validate:"gte=0"`
}

// UpdateActivityRequest defines the payload for updating an activity.
type UpdateActivityRequest struct {
	Title           string `json:"title"            validate:"required,max=200"`
	Description     string `json:"description"      validate:"max=5000"`
	Materials       string `json:"materials"        validate:"max=2000"`
	Location        string `json:"location"         validate:"max=500"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
}

// AssignEditorRequest defines the payload for assigning an activity's editor.
// A null user ID clears the assignment.
type AssignEditorRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}

// EnqueueEvaluationResponse acknowledges an accepted evaluation request.
// The request row itself is not exposed; clients poll the evaluation list.
type EnqueueEvaluationResponse struct {
	Queued           bool `json:"queued"`
	NextPollAfterSec int  `json:"next_poll_after_sec"`
}

// EvaluationListResponse wraps an activity's evaluation history.
type EvaluationListResponse struct {
	Evaluations []*domain.Evaluation `json:"evaluations"`
}

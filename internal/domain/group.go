package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MembershipRole represents a user's role within a group.
type MembershipRole string

// Possible membership roles
const (
	// RoleAdmin may manage the group and request evaluations for any of
	// its activities.
	RoleAdmin MembershipRole = "admin"

	// RoleEditor may edit activities and request evaluations for activities
	// explicitly assigned to them.
	RoleEditor MembershipRole = "editor"

	// RoleMember may view group content but not request evaluations.
	RoleMember MembershipRole = "member"
)

// Common validation errors for Group and Membership
var (
	ErrEmptyGroupID     = errors.New("group ID cannot be empty")
	ErrEmptyGroupName   = errors.New("group name cannot be empty")
	ErrInvalidRole      = errors.New("invalid membership role")
	ErrEmptyMemberUser  = errors.New("membership user ID cannot be empty")
	ErrEmptyMemberGroup = errors.New("membership group ID cannot be empty")
)

// Group represents a scouting group that owns activities. Theme carries the
// group's narrative framing and is woven into evaluation prompts.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGroup creates a new Group with the given name and theme.
// Returns an error if validation fails.
func NewGroup(name, theme string) (*Group, error) {
	now := time.Now().UTC()
	group := &Group{
		ID:        uuid.New(),
		Name:      name,
		Theme:     theme,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := group.Validate(); err != nil {
		return nil, err
	}

	return group, nil
}

// Validate checks if the Group has valid data.
func (g *Group) Validate() error {
	if g.ID == uuid.Nil {
		return ErrEmptyGroupID
	}

	if g.Name == "" {
		return ErrEmptyGroupName
	}

	return nil
}

// Membership links a user to a group with a role.
type Membership struct {
	GroupID   uuid.UUID      `json:"group_id"`
	UserID    uuid.UUID      `json:"user_id"`
	Role      MembershipRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewMembership creates a membership for the given group, user and role.
// Returns an error if validation fails.
func NewMembership(groupID, userID uuid.UUID, role MembershipRole) (*Membership, error) {
	m := &Membership{
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks if the Membership has valid data.
func (m *Membership) Validate() error {
	if m.GroupID == uuid.Nil {
		return ErrEmptyMemberGroup
	}

	if m.UserID == uuid.Nil {
		return ErrEmptyMemberUser
	}

	if !isValidRole(m.Role) {
		return ErrInvalidRole
	}

	return nil
}

// isValidRole checks if the given role is a valid MembershipRole.
func isValidRole(role MembershipRole) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleMember:
		return true
	default:
		return false
	}
}

package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyMember is returned when the target user already holds a membership in the team.
var ErrAlreadyMember = errors.New("already a team member")

// Role governs what a member may do within a team.
type Role string

// Membership roles, in decreasing order of privilege.
const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// IsValid reports whether r is one of the three known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManageTeam reports whether the role may invite members and list invitations.
func (r Role) CanManageTeam() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Membership is the durable record granting a user a role within a team.
// At most one membership exists per (team, user) pair; the store enforces this.
// swagger:model Membership
type Membership struct {
	TeamID    string    `json:"team_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamMember is a membership joined with the member's user profile, for listings.
// swagger:model TeamMember
type TeamMember struct {
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// MembershipRepository defines the interface for membership storage.
// Create returns ErrAlreadyMember when a record for (team, user) already exists.
type MembershipRepository interface {
	Create(ctx context.Context, m *Membership) error
	FindByTeamAndUser(ctx context.Context, teamID, userID string) (*Membership, error)
	FindByTeamAndEmail(ctx context.Context, teamID, email string) (*Membership, error)
	ListByTeamID(ctx context.Context, teamID string, params PaginationParams) ([]*TeamMember, int, error)
}

package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for the invitation lifecycle.
var (
	ErrExpired         = errors.New("invitation expired")
	ErrEmailMismatch   = errors.New("invitation was issued for a different email address")
	ErrDuplicateInvite = errors.New("a pending invitation already exists for this email")
)

// Invitation is a pending offer for a specific email address to join a team
// at a specific role. The token is the primary lookup key and is generated
// once; all other fields are immutable after creation. Expiry is lazy: the
// record stays in the store past ExpiresAt and every operation rejects it.
// swagger:model Invitation
type Invitation struct {
	Token     string    `json:"token"`
	TeamID    string    `json:"team_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// InviteURL is derived from the token at creation time and never stored.
	InviteURL string `json:"invite_url,omitempty"`
}

// IsExpired reports whether the invitation is past its expiry at the given time.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// InvitationRepository defines storage operations for pending invitations.
// Create returns ErrDuplicateInvite when a pending invitation for the same
// (team, email) pair already exists; lookups return ErrNotFound on no match.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	FindByTeamAndEmail(ctx context.Context, teamID, email string) (*Invitation, error)
	DeleteByToken(ctx context.Context, token string) error
	ListByTeamID(ctx context.Context, teamID string) ([]*Invitation, error)
}

// InviteService orchestrates the invitation lifecycle: creation, validation,
// acceptance, and lazy expiry. It is the only writer of memberships on the
// invitation path.
type InviteService interface {
	CreateInvitation(ctx context.Context, teamID, requesterID, email string, role Role) (*Invitation, error)
	GetInvitation(ctx context.Context, token, requesterEmail string) (*Invitation, *Team, error)
	AcceptInvitation(ctx context.Context, token, requesterID, requesterEmail string) (*Team, error)
	ListInvitations(ctx context.Context, teamID, requesterID string) ([]*Invitation, error)
}

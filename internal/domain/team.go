package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across team and invitation operations.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// ErrDuplicateSlug is returned when creating a team whose slug is already taken.
var ErrDuplicateSlug = errors.New("team slug already in use")

// Team represents a tenant that owns services and status pages.
// swagger:model Team
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTeam returns a new Team with the given fields. ID is typically set by the repository on create.
func NewTeam(name, slug string, createdAt, updatedAt time.Time) *Team {
	return &Team{
		Name:      name,
		Slug:      slug,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// TeamWithRole is a team together with the caller's role in it.
// swagger:model TeamWithRole
type TeamWithRole struct {
	Team
	Role Role `json:"role"`
}

// TeamRepository defines the interface for team storage.
type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, id string) (*Team, error)
	ListByUserID(ctx context.Context, userID string) ([]*TeamWithRole, error)
}

// TeamService defines the business logic for team management.
type TeamService interface {
	CreateTeam(ctx context.Context, name, ownerID string) (*Team, error)
	ListMyTeams(ctx context.Context, userID string) ([]*TeamWithRole, error)
	ListTeamMembers(ctx context.Context, teamID, requesterID string, params PaginationParams) ([]*TeamMember, int, error)
}

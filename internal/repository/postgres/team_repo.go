package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"statuspage/internal/domain"
)

type teamRepository struct {
	DB *sql.DB
}

// NewTeamRepository returns a domain.TeamRepository implemented with Postgres.
func NewTeamRepository(db *sql.DB) domain.TeamRepository {
	return &teamRepository{DB: db}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	query := `
		INSERT INTO teams (name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, team.Name, team.Slug, team.CreatedAt, team.UpdatedAt).
		Scan(&team.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM teams
		WHERE id = $1
	`
	team := &domain.Team{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&team.ID, &team.Name, &team.Slug, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *teamRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.TeamWithRole, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.created_at, t.updated_at, m.role
		FROM teams t
		JOIN memberships m ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*domain.TeamWithRole, 0)
	for rows.Next() {
		t := &domain.TeamWithRole{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt, &t.Role); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"statuspage/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

// NewInvitationRepository returns a domain.InvitationRepository implemented with Postgres.
func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (token, team_id, email, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, inv.Token, inv.TeamID, inv.Email, inv.Role, inv.CreatedAt, inv.ExpiresAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateInvite
		}
		return err
	}
	return nil
}

func (r *invitationRepository) FindByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `
		SELECT token, team_id, email, role, created_at, expires_at
		FROM invitations
		WHERE token = $1
	`
	inv := &domain.Invitation{}
	err := r.DB.QueryRowContext(ctx, query, token).
		Scan(&inv.Token, &inv.TeamID, &inv.Email, &inv.Role, &inv.CreatedAt, &inv.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) FindByTeamAndEmail(ctx context.Context, teamID, email string) (*domain.Invitation, error) {
	query := `
		SELECT token, team_id, email, role, created_at, expires_at
		FROM invitations
		WHERE team_id = $1 AND email = $2
	`
	inv := &domain.Invitation{}
	err := r.DB.QueryRowContext(ctx, query, teamID, email).
		Scan(&inv.Token, &inv.TeamID, &inv.Email, &inv.Role, &inv.CreatedAt, &inv.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM invitations WHERE token = $1`
	result, err := r.DB.ExecContext(ctx, query, token)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invitationRepository) ListByTeamID(ctx context.Context, teamID string) ([]*domain.Invitation, error) {
	query := `
		SELECT token, team_id, email, role, created_at, expires_at
		FROM invitations
		WHERE team_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv := &domain.Invitation{}
		if err := rows.Scan(&inv.Token, &inv.TeamID, &inv.Email, &inv.Role, &inv.CreatedAt, &inv.ExpiresAt); err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

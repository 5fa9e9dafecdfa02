package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"statuspage/internal/domain"
)

type membershipRepository struct {
	DB *sql.DB
}

// NewMembershipRepository returns a domain.MembershipRepository implemented with Postgres.
// The memberships table carries a unique constraint on (team_id, user_id), so a
// concurrent duplicate write surfaces here as domain.ErrAlreadyMember.
func NewMembershipRepository(db *sql.DB) domain.MembershipRepository {
	return &membershipRepository{DB: db}
}

func (r *membershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	query := `
		INSERT INTO memberships (team_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.DB.ExecContext(ctx, query, m.TeamID, m.UserID, m.Role, m.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (r *membershipRepository) FindByTeamAndUser(ctx context.Context, teamID, userID string) (*domain.Membership, error) {
	query := `
		SELECT team_id, user_id, role, created_at
		FROM memberships
		WHERE team_id = $1 AND user_id = $2
	`
	m := &domain.Membership{}
	err := r.DB.QueryRowContext(ctx, query, teamID, userID).
		Scan(&m.TeamID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *membershipRepository) FindByTeamAndEmail(ctx context.Context, teamID, email string) (*domain.Membership, error) {
	query := `
		SELECT m.team_id, m.user_id, m.role, m.created_at
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1 AND u.email = $2
	`
	m := &domain.Membership{}
	err := r.DB.QueryRowContext(ctx, query, teamID, email).
		Scan(&m.TeamID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *membershipRepository) ListByTeamID(ctx context.Context, teamID string, params domain.PaginationParams) ([]*domain.TeamMember, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM memberships WHERE team_id = $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, teamID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT m.team_id, m.user_id, u.name, u.email, m.role
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.created_at ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, teamID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	members := make([]*domain.TeamMember, 0)
	for rows.Next() {
		m := &domain.TeamMember{}
		var name sql.NullString
		if err := rows.Scan(&m.TeamID, &m.UserID, &name, &m.Email, &m.Role); err != nil {
			return nil, 0, err
		}
		m.Name = name.String
		members = append(members, m)
	}
	return members, total, rows.Err()
}

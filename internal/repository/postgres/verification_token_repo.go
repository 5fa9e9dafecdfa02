package postgres

import (
	"context"
	"database/sql"
	"time"

	"statuspage/internal/domain"
)

type verificationTokenRepository struct {
	DB *sql.DB
}

// NewVerificationTokenRepository returns a domain.VerificationTokenRepository implemented with Postgres.
func NewVerificationTokenRepository(db *sql.DB) domain.VerificationTokenRepository {
	return &verificationTokenRepository{DB: db}
}

func (r *verificationTokenRepository) Create(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO verification_tokens (email, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.DB.ExecContext(ctx, query, email, tokenHash, expiresAt)
	return err
}

func (r *verificationTokenRepository) Consume(ctx context.Context, email, tokenHash string) (consumed bool, err error) {
	var id string
	query := `
		SELECT id FROM verification_tokens
		WHERE email = $1 AND token_hash = $2 AND expires_at > NOW()
		LIMIT 1
	`
	err = r.DB.QueryRowContext(ctx, query, email, tokenHash).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	deleteQuery := `DELETE FROM verification_tokens WHERE id = $1`
	_, err = r.DB.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		return false, err
	}
	return true, nil
}

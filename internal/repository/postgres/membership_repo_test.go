package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"statuspage/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestMembershipRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := &domain.Membership{TeamID: "team-1", UserID: "user-1", Role: domain.RoleMember, CreatedAt: now}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO memberships`).
					WithArgs("team-1", "user-1", domain.RoleMember, now).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "unique violation returns ErrAlreadyMember",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO memberships`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrAlreadyMember,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO memberships`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewMembershipRepository(db)
			err = repo.Create(ctx, m)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMembershipRepository_FindByTeamAndUser(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"team_id", "user_id", "role", "created_at"}).
			AddRow("team-1", "user-1", "OWNER", now)
		mock.ExpectQuery(`FROM memberships\s+WHERE team_id = \$1 AND user_id = \$2`).
			WithArgs("team-1", "user-1").
			WillReturnRows(rows)

		repo := NewMembershipRepository(db)
		m, err := repo.FindByTeamAndUser(ctx, "team-1", "user-1")
		require.NoError(t, err)
		require.Equal(t, domain.RoleOwner, m.Role)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM memberships`).
			WithArgs("team-1", "stranger").
			WillReturnError(sql.ErrNoRows)

		repo := NewMembershipRepository(db)
		_, err = repo.FindByTeamAndUser(ctx, "team-1", "stranger")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMembershipRepository_FindByTeamAndEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("found via join on users", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"team_id", "user_id", "role", "created_at"}).
			AddRow("team-1", "user-1", "MEMBER", now)
		mock.ExpectQuery(`JOIN users u ON u.id = m.user_id\s+WHERE m.team_id = \$1 AND u.email = \$2`).
			WithArgs("team-1", "bob@example.com").
			WillReturnRows(rows)

		repo := NewMembershipRepository(db)
		m, err := repo.FindByTeamAndEmail(ctx, "team-1", "bob@example.com")
		require.NoError(t, err)
		require.Equal(t, "user-1", m.UserID)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`JOIN users u`).
			WithArgs("team-1", "nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		repo := NewMembershipRepository(db)
		_, err = repo.FindByTeamAndEmail(ctx, "team-1", "nobody@example.com")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMembershipRepository_ListByTeamID(t *testing.T) {
	ctx := context.Background()
	params := domain.PaginationParams{Page: 2, PageSize: 10}

	t.Run("paginated listing with total", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM memberships WHERE team_id = \$1`).
			WithArgs("team-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		rows := sqlmock.NewRows([]string{"team_id", "user_id", "name", "email", "role"}).
			AddRow("team-1", "user-11", "Kay", "kay@example.com", "MEMBER").
			AddRow("team-1", "user-12", nil, "lee@example.com", "ADMIN")
		mock.ExpectQuery(`JOIN users u ON u.id = m.user_id\s+WHERE m.team_id = \$1\s+ORDER BY m.created_at ASC\s+LIMIT \$2 OFFSET \$3`).
			WithArgs("team-1", 10, 10).
			WillReturnRows(rows)

		repo := NewMembershipRepository(db)
		members, total, err := repo.ListByTeamID(ctx, "team-1", params)
		require.NoError(t, err)
		require.Equal(t, 12, total)
		require.Len(t, members, 2)
		require.Equal(t, "Kay", members[0].Name)
		require.Equal(t, "", members[1].Name, "NULL name scans to empty string")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

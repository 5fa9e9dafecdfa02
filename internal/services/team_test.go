package services

import (
	"context"
	"testing"
	"time"

	"statuspage/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Acme", "acme"},
		{"spaces", "Acme Status Page", "acme-status-page"},
		{"punctuation collapses", "Acme -- Status!!", "acme-status"},
		{"leading and trailing", "  Acme  ", "acme"},
		{"digits kept", "Team 42", "team-42"},
		{"only punctuation", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}

func TestTeamService_CreateTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("creates team and owner membership", func(t *testing.T) {
		teams := newFakeTeamRepo()
		memberships := newFakeMembershipRepo()
		svc := NewTeamService(teams, memberships, 5*time.Second)

		team, err := svc.CreateTeam(ctx, "Acme Status", "alice-id")
		require.NoError(t, err)
		assert.Equal(t, "Acme Status", team.Name)
		assert.Equal(t, "acme-status", team.Slug)
		require.NotEmpty(t, team.ID)

		m, err := memberships.FindByTeamAndUser(ctx, team.ID, "alice-id")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleOwner, m.Role)
	})

	t.Run("slug collision retries with a suffix", func(t *testing.T) {
		teams := newFakeTeamRepo()
		memberships := newFakeMembershipRepo()
		svc := NewTeamService(teams, memberships, 5*time.Second)

		first, err := svc.CreateTeam(ctx, "Acme", "alice-id")
		require.NoError(t, err)
		second, err := svc.CreateTeam(ctx, "Acme", "bob-id")
		require.NoError(t, err)

		assert.Equal(t, "acme", first.Slug)
		assert.NotEqual(t, first.Slug, second.Slug)
		assert.Regexp(t, `^acme-[a-z0-9]{4}$`, second.Slug)
	})

	t.Run("invalid input", func(t *testing.T) {
		svc := NewTeamService(newFakeTeamRepo(), newFakeMembershipRepo(), 5*time.Second)

		_, err := svc.CreateTeam(ctx, "   ", "alice-id")
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.CreateTeam(ctx, "Acme", "")
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.CreateTeam(ctx, "!!!", "alice-id")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestTeamService_ListMyTeams(t *testing.T) {
	ctx := context.Background()

	teams := newFakeTeamRepo()
	teams.listByUID["alice-id"] = []*domain.TeamWithRole{
		{Team: domain.Team{ID: "team-1", Name: "One", Slug: "one"}, Role: domain.RoleOwner},
	}
	svc := NewTeamService(teams, newFakeMembershipRepo(), 5*time.Second)

	got, err := svc.ListMyTeams(ctx, "alice-id")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.RoleOwner, got[0].Role)

	empty, err := svc.ListMyTeams(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTeamService_ListTeamMembers(t *testing.T) {
	ctx := context.Background()
	params := domain.PaginationParams{Page: 1, PageSize: 20}

	t.Run("manager lists members", func(t *testing.T) {
		memberships := newFakeMembershipRepo()
		memberships.add("team-1", "alice-id", "alice@example.com", domain.RoleOwner)
		memberships.add("team-1", "bob-id", "bob@example.com", domain.RoleMember)
		svc := NewTeamService(newFakeTeamRepo(), memberships, 5*time.Second)

		members, total, err := svc.ListTeamMembers(ctx, "team-1", "alice-id", params)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, members, 2)
	})

	t.Run("MEMBER requester is forbidden", func(t *testing.T) {
		memberships := newFakeMembershipRepo()
		memberships.add("team-1", "bob-id", "bob@example.com", domain.RoleMember)
		svc := NewTeamService(newFakeTeamRepo(), memberships, 5*time.Second)

		_, _, err := svc.ListTeamMembers(ctx, "team-1", "bob-id", params)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("non-member requester is forbidden", func(t *testing.T) {
		svc := NewTeamService(newFakeTeamRepo(), newFakeMembershipRepo(), 5*time.Second)

		_, _, err := svc.ListTeamMembers(ctx, "team-1", "stranger", params)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

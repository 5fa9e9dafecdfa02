package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"statuspage/internal/domain"
)

const slugSuffixLength = 4

var slugSuffixAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

type teamService struct {
	teamRepo       domain.TeamRepository
	membershipRepo domain.MembershipRepository
	contextTimeout time.Duration
}

// NewTeamService creates a TeamService with the given stores.
func NewTeamService(teamRepo domain.TeamRepository, membershipRepo domain.MembershipRepository, timeout time.Duration) domain.TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		contextTimeout: timeout,
	}
}

// slugify lowercases the name and collapses runs of non-alphanumeric
// characters into single hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func generateSlugSuffix() (string, error) {
	b := make([]rune, slugSuffixLength)
	max := big.NewInt(int64(len(slugSuffixAlphabet)))
	for i := 0; i < slugSuffixLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = slugSuffixAlphabet[n.Int64()]
	}
	return string(b), nil
}

func (s *teamService) CreateTeam(ctx context.Context, name, ownerID string) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" || ownerID == "" {
		return nil, domain.ErrInvalidInput
	}
	slug := slugify(name)
	if slug == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	team := domain.NewTeam(name, slug, now, now)
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if !errors.Is(err, domain.ErrDuplicateSlug) {
			return nil, fmt.Errorf("create team: %w", err)
		}
		// Slug taken: retry once with a random suffix.
		suffix, serr := generateSlugSuffix()
		if serr != nil {
			return nil, fmt.Errorf("generate slug suffix: %w", serr)
		}
		team.Slug = slug + "-" + suffix
		if err := s.teamRepo.Create(ctx, team); err != nil {
			return nil, fmt.Errorf("create team: %w", err)
		}
	}

	m := &domain.Membership{
		TeamID:    team.ID,
		UserID:    ownerID,
		Role:      domain.RoleOwner,
		CreatedAt: now,
	}
	if err := s.membershipRepo.Create(ctx, m); err != nil && !errors.Is(err, domain.ErrAlreadyMember) {
		return nil, fmt.Errorf("create owner membership: %w", err)
	}
	return team, nil
}

func (s *teamService) ListMyTeams(ctx context.Context, userID string) ([]*domain.TeamWithRole, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	teams, err := s.teamRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if teams == nil {
		teams = []*domain.TeamWithRole{}
	}
	return teams, nil
}

func (s *teamService) ListTeamMembers(ctx context.Context, teamID, requesterID string, params domain.PaginationParams) ([]*domain.TeamMember, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	m, err := s.membershipRepo.FindByTeamAndUser(ctx, teamID, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrForbidden
		}
		return nil, 0, fmt.Errorf("find requester membership: %w", err)
	}
	if !m.Role.CanManageTeam() {
		return nil, 0, domain.ErrForbidden
	}
	members, total, err := s.membershipRepo.ListByTeamID(ctx, teamID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list team members: %w", err)
	}
	if members == nil {
		members = []*domain.TeamMember{}
	}
	return members, total, nil
}

package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"statuspage/internal/domain"
)

const (
	inviteTokenBytes  = 32
	inviteExpiryDays  = 7
	invitePathSegment = "/invite/"
)

type inviteService struct {
	invitationRepo domain.InvitationRepository
	membershipRepo domain.MembershipRepository
	teamRepo       domain.TeamRepository
	emailService   domain.EmailService
	appBaseURL     string
	contextTimeout time.Duration
}

// NewInviteService creates an InviteService with the given stores and collaborators.
// appBaseURL is the public base URL used to build invite links.
func NewInviteService(invitationRepo domain.InvitationRepository,
	membershipRepo domain.MembershipRepository,
	teamRepo domain.TeamRepository,
	emailService domain.EmailService,
	appBaseURL string,
	timeout time.Duration,
) domain.InviteService {
	return &inviteService{
		invitationRepo: invitationRepo,
		membershipRepo: membershipRepo,
		teamRepo:       teamRepo,
		emailService:   emailService,
		appBaseURL:     strings.TrimSuffix(appBaseURL, "/"),
		contextTimeout: timeout,
	}
}

// generateInviteToken returns a 256-bit random token as a 64-character hex
// string, safe for use in a URL path segment without escaping.
func generateInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *inviteService) inviteURL(token string) string {
	return s.appBaseURL + invitePathSegment + token
}

// requireManager returns the requester's membership when they hold OWNER or
// ADMIN on the team, and domain.ErrForbidden otherwise.
func (s *inviteService) requireManager(ctx context.Context, teamID, requesterID string) (*domain.Membership, error) {
	m, err := s.membershipRepo.FindByTeamAndUser(ctx, teamID, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("find requester membership: %w", err)
	}
	if !m.Role.CanManageTeam() {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

func (s *inviteService) CreateInvitation(ctx context.Context, teamID, requesterID, email string, role domain.Role) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(email)
	if !emailRegexp.MatchString(email) {
		return nil, domain.ErrInvalidInput
	}
	if !role.IsValid() {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.requireManager(ctx, teamID, requesterID); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}

	if _, err := s.membershipRepo.FindByTeamAndEmail(ctx, teamID, email); err == nil {
		return nil, domain.ErrAlreadyMember
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find membership by email: %w", err)
	}

	if _, err := s.invitationRepo.FindByTeamAndEmail(ctx, teamID, email); err == nil {
		return nil, domain.ErrDuplicateInvite
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find invitation by email: %w", err)
	}

	token, err := generateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}
	now := time.Now()
	inv := &domain.Invitation{
		Token:     token,
		TeamID:    teamID,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(inviteExpiryDays * 24 * time.Hour),
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrDuplicateInvite) {
			return nil, domain.ErrDuplicateInvite
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	inv.InviteURL = s.inviteURL(token)

	// Dispatch is best-effort: the invitation exists either way and the
	// link can be shared manually.
	data := &domain.TeamInviteEmailData{
		Email:         email,
		TeamName:      team.Name,
		Role:          string(role),
		InviteURL:     inv.InviteURL,
		ExpiresInDays: inviteExpiryDays,
	}
	if err := s.emailService.SendTeamInvite(ctx, data); err != nil {
		log.Printf("[INVITE] failed to send invitation email to %s: %v", email, err)
	}

	return inv, nil
}

// lookupValid fetches the invitation by token and applies the expiry and
// email-binding checks shared by GetInvitation and AcceptInvitation. Expired
// invitations are rejected but not deleted.
func (s *inviteService) lookupValid(ctx context.Context, token, requesterEmail string) (*domain.Invitation, error) {
	inv, err := s.invitationRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	if inv.IsExpired(time.Now()) {
		return nil, domain.ErrExpired
	}
	if inv.Email != requesterEmail {
		return nil, domain.ErrEmailMismatch
	}
	return inv, nil
}

func (s *inviteService) GetInvitation(ctx context.Context, token, requesterEmail string) (*domain.Invitation, *domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.lookupValid(ctx, token, requesterEmail)
	if err != nil {
		return nil, nil, err
	}
	team, err := s.teamRepo.GetByID(ctx, inv.TeamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get team: %w", err)
	}
	return inv, team, nil
}

func (s *inviteService) AcceptInvitation(ctx context.Context, token, requesterID, requesterEmail string) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.lookupValid(ctx, token, requesterEmail)
	if err != nil {
		return nil, err
	}

	if _, err := s.membershipRepo.FindByTeamAndUser(ctx, inv.TeamID, requesterID); err == nil {
		return nil, domain.ErrAlreadyMember
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find membership: %w", err)
	}

	team, err := s.teamRepo.GetByID(ctx, inv.TeamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}

	// Membership must be written before the invitation is deleted: a failure
	// between the two steps leaves the invitation intact for retry. The store
	// maps a concurrent duplicate write to ErrAlreadyMember.
	m := &domain.Membership{
		TeamID:    inv.TeamID,
		UserID:    requesterID,
		Role:      inv.Role,
		CreatedAt: time.Now(),
	}
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, fmt.Errorf("create membership: %w", err)
	}
	if err := s.invitationRepo.DeleteByToken(ctx, inv.Token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("delete invitation: %w", err)
	}

	return team, nil
}

func (s *inviteService) ListInvitations(ctx context.Context, teamID, requesterID string) ([]*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.requireManager(ctx, teamID, requesterID); err != nil {
		return nil, err
	}
	invs, err := s.invitationRepo.ListByTeamID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, nil
}

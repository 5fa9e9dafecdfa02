package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"statuspage/internal/domain"
)

const (
	magicLinkTokenBytes = 32
	magicLinkExpiryMins = 15
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ErrInvalidMagicLink is returned when a magic-link token is unknown, expired,
// or already consumed. The message is deliberately the same for all three.
var ErrInvalidMagicLink = errors.New("invalid or expired sign-in link")

type userService struct {
	userRepo         domain.UserRepository
	verificationRepo domain.VerificationTokenRepository
	tokenIssuer      domain.TokenIssuer
	tokenExpiry      time.Duration
	emailService     domain.EmailService
	appBaseURL       string
}

// NewUserService creates a UserService with the given repositories and auth ports.
func NewUserService(userRepo domain.UserRepository, verificationRepo domain.VerificationTokenRepository, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, emailService domain.EmailService, appBaseURL string) domain.UserService {
	return &userService{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		tokenIssuer:      tokenIssuer,
		tokenExpiry:      tokenExpiry,
		emailService:     emailService,
		appBaseURL:       strings.TrimSuffix(appBaseURL, "/"),
	}
}

func (s *userService) RequestMagicLink(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	token, err := generateMagicLinkToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	tokenHash := hashMagicLinkToken(token)
	expiresAt := time.Now().Add(magicLinkExpiryMins * time.Minute)
	if err := s.verificationRepo.Create(ctx, email, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}
	if s.emailService != nil {
		data := &domain.MagicLinkEmailData{
			Email:            email,
			LinkURL:          s.magicLinkURL(email, token),
			ExpiresInMinutes: magicLinkExpiryMins,
		}
		if err := s.emailService.SendMagicLink(ctx, data); err != nil {
			return fmt.Errorf("failed to send magic link email: %w", err)
		}
	}
	return nil
}

func (s *userService) VerifyMagicLink(ctx context.Context, email, token string) (string, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return "", nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil, domain.ErrInvalidInput
	}
	tokenHash := hashMagicLinkToken(token)
	consumed, err := s.verificationRepo.Consume(ctx, email, tokenHash)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if !consumed {
		return "", nil, ErrInvalidMagicLink
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return "", nil, fmt.Errorf("failed to get user: %w", err)
		}
		// First sign-in: create the user record.
		now := time.Now()
		user = domain.NewUser(email, "", now, now)
		if err := s.userRepo.Create(ctx, user); err != nil {
			return "", nil, fmt.Errorf("failed to create user: %w", err)
		}
	}
	sessionToken, err := s.tokenIssuer.Issue(user.ID, user.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return sessionToken, user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) magicLinkURL(email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return s.appBaseURL + "/auth/verify?" + q.Encode()
}

func generateMagicLinkToken() (string, error) {
	b := make([]byte, magicLinkTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashMagicLinkToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

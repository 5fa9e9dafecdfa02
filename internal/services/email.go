package services

import (
	"context"
	"fmt"
	"log"

	"statuspage/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendTeamInvite sends a team invitation email using the "team_invite" template.
func (s *emailService) SendTeamInvite(ctx context.Context, data *domain.TeamInviteEmailData) error {
	if data == nil {
		return fmt.Errorf("team invite data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("team_invite", data)
	if err != nil {
		return fmt.Errorf("failed to render team_invite template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send team invite email: %w", err)
	}
	log.Printf("[EMAIL] Team invite sent to %s", data.Email)
	return nil
}

// SendMagicLink sends the passwordless sign-in email using the "magic_link" template.
func (s *emailService) SendMagicLink(ctx context.Context, data *domain.MagicLinkEmailData) error {
	if data == nil {
		return fmt.Errorf("magic link data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("magic_link", data)
	if err != nil {
		return fmt.Errorf("failed to render magic_link template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send magic link email: %w", err)
	}
	log.Printf("[EMAIL] Magic link sent to %s", data.Email)
	return nil
}

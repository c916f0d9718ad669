package services

import (
	"context"
	"fmt"
	"log/slog"

	"churchadmin/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendPasswordReset mails the reset link to the member.
func (s *emailService) SendPasswordReset(ctx context.Context, data *domain.PasswordResetEmailData) error {
	if data == nil {
		return fmt.Errorf("password reset data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render(domain.EmailTemplatePasswordReset, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", domain.EmailTemplatePasswordReset, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	s.logger.InfoContext(ctx, "password reset email sent", "to", data.Email)
	return nil
}

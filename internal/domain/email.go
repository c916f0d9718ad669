package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplatePasswordReset names the mail carrying a password reset link.
const EmailTemplatePasswordReset = "password_reset"

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// PasswordResetEmailData holds data for the password reset email.
type PasswordResetEmailData struct {
	Email            string
	FirstName        string
	ResetURL         string
	ExpiresInMinutes int
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendPasswordReset(ctx context.Context, data *PasswordResetEmailData) error
}

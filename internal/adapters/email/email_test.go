package email

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"churchadmin/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_PasswordReset(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.PasswordResetEmailData{
		Email:            "ann@example.com",
		FirstName:        "Ann",
		ResetURL:         "https://church.example/reset?token=a&b=<x>",
		ExpiresInMinutes: 5,
	}

	subject, html, text, err := r.Render(domain.EmailTemplatePasswordReset, data)
	require.NoError(t, err)
	assert.Equal(t, "Reset your password", subject)
	assert.Contains(t, html, "Hi Ann,")
	assert.Contains(t, html, "expires in 5 minutes")
	assert.NotContains(t, html, "<x>")
	assert.Contains(t, text, "https://church.example/reset?token=a&b=<x>")
}

func TestTemplateRenderer_unknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("weekly_bulletin", nil)
	require.ErrorIs(t, err, ErrUnknownTemplate)
	assert.Contains(t, err.Error(), "weekly_bulletin")
}

func TestTemplateRenderer_subjectIsOneLine(t *testing.T) {
	subject, _, _, err := NewTemplateRenderer().Render(domain.EmailTemplatePasswordReset, &domain.PasswordResetEmailData{FirstName: "Ann"})
	require.NoError(t, err)
	assert.NotContains(t, subject, "\n")
	assert.Equal(t, strings.TrimSpace(subject), subject)
}

func TestBuildSendEmailInput(t *testing.T) {
	in := buildSendEmailInput("no-reply@church.example", "Church Admin", "ann@example.com", "Hi", "<p>x</p>", "")
	assert.Equal(t, "Church Admin <no-reply@church.example>", aws.ToString(in.Source))
	assert.Equal(t, []string{"ann@example.com"}, in.Destination.ToAddresses)
	require.NotNil(t, in.Message.Body.Html)
	assert.Nil(t, in.Message.Body.Text)

	in = buildSendEmailInput("no-reply@church.example", "", "ann@example.com", "Hi", "", "x")
	assert.Equal(t, "no-reply@church.example", aws.ToString(in.Source))
	assert.Nil(t, in.Message.Body.Html)
}

func TestNewMailer_fallsBackToNoop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewMailer(MailerConfig{Provider: "carrier-pigeon"}, logger)
	_, ok := m.(*noopMailer)
	require.True(t, ok)
	require.NoError(t, m.Send(context.Background(), "a@b.c", "s", "", "t"))
}

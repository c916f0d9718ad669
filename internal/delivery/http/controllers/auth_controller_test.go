package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthController_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "registered", body: map[string]any{"first_name": "Ann", "last_name": "Lee", "email": "ann@example.com", "password": "password123"}, wantStatus: http.StatusCreated, wantCode: "USER_REGISTERED"},
		{name: "short password", body: map[string]any{"first_name": "Ann", "email": "ann@example.com", "password": "short"}, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeValidation},
		{name: "bad email", body: map[string]any{"first_name": "Ann", "email": "ann", "password": "password123"}, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeValidation},
		{name: "duplicate", body: map[string]any{"first_name": "Ann", "email": "ann@example.com", "password": "password123"}, svcErr: domain.ErrDuplicateEmail, wantStatus: http.StatusConflict, wantCode: "EMAIL_ALREADY_EXISTS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{user: &domain.User{ID: "u-1", Email: "ann@example.com", PasswordHash: "secret-hash"}, err: tt.svcErr}
			c := NewAuthController(testLogger, svc)
			rec := serve("POST /auth/register", c.Register, newRequest(t, http.MethodPost, "/auth/register", tt.body, ""))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "secret-hash")
			assert.Equal(t, tt.wantCode, decodeEnvelope(t, rec).Code)
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeAuthService{result: &domain.AuthResult{Token: "jwt", User: &domain.User{ID: "u-1"}}}
		c := NewAuthController(testLogger, svc)
		body := map[string]any{"email": "ann@example.com", "password": "password123"}
		rec := serve("POST /auth/login", c.Login, newRequest(t, http.MethodPost, "/auth/login", body, ""))

		require.Equal(t, http.StatusOK, rec.Code)
		var data LoginResponse
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
		assert.Equal(t, "jwt", data.Token)
		assert.Equal(t, "Bearer", data.TokenType)
		assert.Equal(t, "ann@example.com", svc.lastEmail)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		c := NewAuthController(testLogger, &fakeAuthService{err: domain.ErrInvalidCredentials})
		body := map[string]any{"email": "ann@example.com", "password": "nope"}
		rec := serve("POST /auth/login", c.Login, newRequest(t, http.MethodPost, "/auth/login", body, ""))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, rec).Code)
	})

	t.Run("inactive", func(t *testing.T) {
		c := NewAuthController(testLogger, &fakeAuthService{err: domain.ErrAccountInactive})
		body := map[string]any{"email": "ann@example.com", "password": "password123"}
		rec := serve("POST /auth/login", c.Login, newRequest(t, http.MethodPost, "/auth/login", body, ""))

		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAuthController_Profile(t *testing.T) {
	svc := &fakeAuthService{user: &domain.User{ID: "u-1"}}
	c := NewAuthController(testLogger, svc)

	rec := serve("GET /auth/profile", c.Profile, newRequest(t, http.MethodGet, "/auth/profile", nil, "u-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", svc.lastUserID)

	rec = serve("GET /auth/profile", c.Profile, newRequest(t, http.MethodGet, "/auth/profile", nil, ""))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthController_passwordReset(t *testing.T) {
	t.Run("request link", func(t *testing.T) {
		svc := &fakeAuthService{}
		c := NewAuthController(testLogger, svc)
		rec := serve("POST /auth/requestResetPasswordLink", c.RequestResetPasswordLink,
			newRequest(t, http.MethodPost, "/auth/requestResetPasswordLink", map[string]any{"email": "ann@example.com"}, ""))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "RESET_LINK_SENT", decodeEnvelope(t, rec).Code)
		assert.Equal(t, "ann@example.com", svc.lastEmail)
	})

	t.Run("reset with bad token", func(t *testing.T) {
		c := NewAuthController(testLogger, &fakeAuthService{err: domain.ErrInvalidToken})
		body := map[string]any{"token": "expired", "password": "newpassword1"}
		rec := serve("POST /auth/resetPassword", c.ResetPassword, newRequest(t, http.MethodPost, "/auth/resetPassword", body, ""))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeEnvelope(t, rec).Code)
	})

	t.Run("reset", func(t *testing.T) {
		svc := &fakeAuthService{}
		c := NewAuthController(testLogger, svc)
		body := map[string]any{"token": "tok", "password": "newpassword1"}
		rec := serve("POST /auth/resetPassword", c.ResetPassword, newRequest(t, http.MethodPost, "/auth/resetPassword", body, ""))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tok", svc.lastToken)
	})
}

package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"churchadmin/internal/adapters/auth"
	"churchadmin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) Hash(password string) (string, error) { return "hash-" + password, nil }

func (fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokens implements domain.TokenIssuer and domain.TokenVerifier.
type fakeTokens struct {
	resetFor string
}

func (f *fakeTokens) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	return "access-" + userID, nil
}

func (f *fakeTokens) IssueReset(userID, email string, expiry time.Duration) (string, error) {
	f.resetFor = userID
	return "reset-" + userID, nil
}

func (f *fakeTokens) Verify(token string) (string, error) {
	return "", domain.ErrInvalidToken
}

func (f *fakeTokens) VerifyReset(token string) (string, error) {
	if token == "reset-u-1" {
		return "u-1", nil
	}
	return "", domain.ErrInvalidToken
}

type fakeEmailService struct {
	sent []*domain.PasswordResetEmailData
}

func (f *fakeEmailService) SendPasswordReset(ctx context.Context, data *domain.PasswordResetEmailData) error {
	f.sent = append(f.sent, data)
	return nil
}

var testRoles = &fakeRoleRepo{roles: []*domain.Role{{ID: "r-admin", Name: "admin"}, {ID: "r-member", Name: "member"}}}

func newTestAuthService(users *fakeUserRepo, mail *fakeEmailService, tokens *fakeTokens) domain.AuthService {
	cfg := AuthConfig{
		TokenExpiry:      time.Hour,
		ResetTokenExpiry: 5 * time.Minute,
		ResetPasswordURL: "https://church.example/reset-password",
	}
	return NewAuthService(users, testRoles, fakePasswordHasher{}, tokens, tokens, mail, cfg, discardLogger(), time.Second)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newTestAuthService(users, &fakeEmailService{}, &fakeTokens{})

		u, err := svc.Register(ctx, &domain.RegisterInput{FirstName: " Ann ", LastName: "Lee", Email: " Ann@Example.COM ", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", u.Email)
		assert.Equal(t, "Ann", u.FirstName)
		assert.Equal(t, "r-member", u.RoleID)
		assert.Equal(t, "hash-secret123", u.PasswordHash)
		assert.True(t, u.IsActive)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := newFakeUserRepo(&domain.User{ID: "u-1", Email: "ann@example.com"})
		svc := newTestAuthService(users, &fakeEmailService{}, &fakeTokens{})
		_, err := svc.Register(ctx, &domain.RegisterInput{Email: "ann@example.com", Password: "x"})
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		user     *domain.User
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "success",
			user:     &domain.User{ID: "u-1", Email: "ann@example.com", PasswordHash: "hash-pw", IsActive: true, RoleName: "member"},
			email:    "ANN@example.com",
			password: "pw",
		},
		{
			name:     "wrong password",
			user:     &domain.User{ID: "u-1", Email: "ann@example.com", PasswordHash: "hash-pw", IsActive: true},
			email:    "ann@example.com",
			password: "nope",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			user:     &domain.User{ID: "u-1", Email: "ann@example.com"},
			email:    "bob@example.com",
			password: "pw",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "inactive",
			user:     &domain.User{ID: "u-1", Email: "ann@example.com", PasswordHash: "hash-pw"},
			email:    "ann@example.com",
			password: "pw",
			wantErr:  domain.ErrAccountInactive,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserRepo(tt.user)
			svc := newTestAuthService(users, &fakeEmailService{}, &fakeTokens{})

			res, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "access-u-1", res.Token)
			require.NotNil(t, res.User.LastLogin)
			assert.Contains(t, users.lastLogin, "u-1")
		})
	}
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo(&domain.User{ID: "u-1", Email: "ann@example.com", FirstName: "Ann"})
	mail := &fakeEmailService{}
	tokens := &fakeTokens{}
	svc := newTestAuthService(users, mail, tokens)

	require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@example.com"))
	assert.Empty(t, mail.sent)

	require.NoError(t, svc.RequestPasswordReset(ctx, "Ann@example.com"))
	require.Len(t, mail.sent, 1)
	assert.Equal(t, 5, mail.sent[0].ExpiresInMinutes)
	link, err := url.Parse(mail.sent[0].ResetURL)
	require.NoError(t, err)
	assert.Equal(t, "reset-u-1", link.Query().Get("token"))

	require.NoError(t, svc.ResetPassword(ctx, "reset-u-1", "newpass"))
	assert.Equal(t, "hash-newpass", users.password["u-1"])

	require.ErrorIs(t, svc.ResetPassword(ctx, "forged", "newpass"), domain.ErrInvalidToken)
}

type capturingEmailService struct {
	sent []*domain.PasswordResetEmailData
}

func (c *capturingEmailService) SendPasswordReset(ctx context.Context, data *domain.PasswordResetEmailData) error {
	c.sent = append(c.sent, data)
	return nil
}

type authFixture struct {
	svc    domain.AuthService
	users  *fakeUserRepo
	emails *capturingEmailService
	jwt    *auth.JWT
	hasher domain.PasswordHasher
}

func newAuthFixture(t *testing.T, users ...*domain.User) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  newFakeUserRepo(users...),
		emails: &capturingEmailService{},
		jwt:    auth.NewJWT("test-secret"),
		hasher: auth.NewBcryptHasher(bcrypt.MinCost),
	}
	roles := &fakeRoleRepo{roles: []*domain.Role{{ID: "r-member", Name: domain.DefaultRoleName}, {ID: "r-admin", Name: "admin"}}}
	f.svc = NewAuthService(f.users, roles, f.hasher, f.jwt, f.jwt, f.emails, AuthConfig{
		TokenExpiry:      time.Hour,
		ResetTokenExpiry: 5 * time.Minute,
		ResetPasswordURL: "https://church.example.org/reset-password",
	}, discardLogger(), time.Second)
	return f
}

func (f *authFixture) userWithPassword(t *testing.T, id, email, password string, active bool) *domain.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	u := &domain.User{ID: id, Email: email, FirstName: "Ann", PasswordHash: hash, IsActive: active, RoleName: "admin"}
	f.users.byID[id] = u
	return u
}

func TestAuthService_resetTokenRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	f.userWithPassword(t, "u-1", "ann@example.com", "password123", true)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "who@example.com"))
	assert.Empty(t, f.emails.sent)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ann@example.com"))
	require.Len(t, f.emails.sent, 1)
	sent := f.emails.sent[0]
	assert.Equal(t, "ann@example.com", sent.Email)
	assert.Equal(t, 5, sent.ExpiresInMinutes)

	link, err := url.Parse(sent.ResetURL)
	require.NoError(t, err)
	assert.Equal(t, "church.example.org", link.Host)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	// an access token must not reset a password
	access, err := f.jwt.Issue("u-1", "ann@example.com", nil, time.Hour)
	require.NoError(t, err)
	require.ErrorIs(t, f.svc.ResetPassword(ctx, access, "newpassword1"), domain.ErrInvalidToken)

	require.NoError(t, f.svc.ResetPassword(ctx, token, "newpassword1"))
	require.NoError(t, f.hasher.Compare(f.users.password["u-1"], "newpassword1"))
}

func TestAuthService_Profile(t *testing.T) {
	f := newAuthFixture(t, &domain.User{ID: "u-1", Email: "ann@example.com"})

	u, err := f.svc.Profile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)

	_, err = f.svc.Profile(context.Background(), "u-9")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

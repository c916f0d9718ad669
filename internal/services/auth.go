package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"churchadmin/internal/domain"
)

// AuthConfig holds token lifetimes and the reset link base URL.
type AuthConfig struct {
	TokenExpiry      time.Duration
	ResetTokenExpiry time.Duration
	ResetPasswordURL string
}

type authService struct {
	userRepo       domain.UserRepository
	roleRepo       domain.RoleRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenVerifier  domain.TokenVerifier
	emailService   domain.EmailService
	cfg            AuthConfig
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAuthService creates an AuthService with the given repositories and auth ports.
func NewAuthService(
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenVerifier domain.TokenVerifier,
	emailService domain.EmailService,
	cfg AuthConfig,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenVerifier:  tokenVerifier,
		emailService:   emailService,
		cfg:            cfg,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *authService) Register(ctx context.Context, in *domain.RegisterInput) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email := normalizeEmail(in.Email)
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	role, err := s.roleRepo.GetByName(ctx, domain.DefaultRoleName)
	if err != nil {
		return nil, fmt.Errorf("get default role: %w", err)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		RoleID:       role.ID,
		RoleName:     role.Name,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Email, []string{user.RoleName}, s.cfg.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	now := time.Now().UTC()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now
	return &domain.AuthResult{Token: token, User: user}, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.userRepo.GetByID(ctx, userID)
}

// RequestPasswordReset mails a reset link to a known address. Unknown addresses
// succeed silently so the endpoint does not reveal which emails are registered.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.tokenIssuer.IssueReset(user.ID, user.Email, s.cfg.ResetTokenExpiry)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	link, err := resetLink(s.cfg.ResetPasswordURL, token)
	if err != nil {
		return err
	}
	return s.emailService.SendPasswordReset(ctx, &domain.PasswordResetEmailData{
		Email:            user.Email,
		FirstName:        user.FirstName,
		ResetURL:         link,
		ExpiresInMinutes: int(s.cfg.ResetTokenExpiry.Minutes()),
	})
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	userID, err := s.tokenVerifier.VerifyReset(token)
	if err != nil {
		return domain.ErrInvalidToken
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.SetPassword(ctx, userID, hash)
}

func resetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

package services

import (
	"context"
	"time"

	"churchadmin/internal/domain"
)

type userService struct {
	userRepo       domain.UserRepository
	roleRepo       domain.RoleRepository
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repositories.
func NewUserService(userRepo domain.UserRepository, roleRepo domain.RoleRepository, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		contextTimeout: timeout,
	}
}

func (s *userService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.userRepo.List(ctx)
}

func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, id string, p *domain.ProfileUpdate) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if p == nil || p.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	return s.userRepo.UpdateProfile(ctx, id, p)
}

// SetRole assigns the role with the given name to the user.
func (s *userService) SetRole(ctx context.Context, id, roleName string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return err
	}
	return s.userRepo.SetRole(ctx, id, role.ID)
}

func (s *userService) SetStatus(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.userRepo.SetActive(ctx, id, active)
}

func (s *userService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.roleRepo.List(ctx)
}

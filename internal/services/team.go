package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"churchadmin/internal/domain"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases s and joins its alphanumeric runs with dashes.
func slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

type teamService struct {
	teamRepo       domain.TeamRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

func NewTeamService(teamRepo domain.TeamRepository, userRepo domain.UserRepository, timeout time.Duration) domain.TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

// ListTeams lists the main (protected) teams or the other teams.
func (s *teamService) ListTeams(ctx context.Context, protected bool) ([]*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.teamRepo.List(ctx, protected)
}

func (s *teamService) CreateTeam(ctx context.Context, name string) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	slug := slugify(name)
	if slug == "" {
		return nil, domain.ErrInvalidInput.WithMessage("Team name is required")
	}
	t := &domain.Team{
		ID:       domain.TeamKeyPrefix + slug,
		Name:     name,
		IsActive: true,
	}
	if err := s.teamRepo.Create(ctx, t); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrTeamExists
		}
		return nil, fmt.Errorf("create team: %w", err)
	}
	return t, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.getTeam(ctx, id)
	if err != nil {
		return err
	}
	if t.IsProtected {
		return domain.ErrTeamProtected
	}
	return s.teamRepo.Delete(ctx, id)
}

func (s *teamService) getTeam(ctx context.Context, id string) (*domain.Team, error) {
	t, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *teamService) ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.teamRepo.ListMembers(ctx, teamID)
}

func (s *teamService) ListNonMembers(ctx context.Context, teamID string) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.teamRepo.ListNonMembers(ctx, teamID)
}

// AddMembers adds the existing users among userIDs and returns how many were added.
// Unknown users are skipped; ErrNoValidMembers is returned when none remain.
func (s *teamService) AddMembers(ctx context.Context, teamID string, userIDs []string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getTeam(ctx, teamID); err != nil {
		return 0, err
	}
	ids := dedupe(userIDs)
	if len(ids) == 0 {
		return 0, domain.ErrNoValidMembers
	}
	valid, err := s.userRepo.ExistingIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("check users: %w", err)
	}
	if len(valid) == 0 {
		return 0, domain.ErrNoValidMembers
	}
	return s.teamRepo.AddMembers(ctx, teamID, valid)
}

func (s *teamService) UpdateMember(ctx context.Context, teamID, userID string, u *domain.TeamMemberUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if u.Role == nil && u.IsActive == nil && u.Note == nil && u.PositionIDs == nil {
		return domain.ErrNoFieldsToUpdate
	}
	if err := s.teamRepo.UpdateMember(ctx, teamID, userID, u); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrMemberNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrMemberNotFound
		}
		return err
	}
	return nil
}

// ListPositions lists positions, optionally limited to one team type ("singer").
func (s *teamService) ListPositions(ctx context.Context, teamType string) ([]*domain.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.teamRepo.ListPositions(ctx, domain.TeamType(teamType))
}

func (s *teamService) CreatePosition(ctx context.Context, label, teamID string) (*domain.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	label = strings.TrimSpace(label)
	slug := slugify(label)
	if slug == "" {
		return nil, domain.ErrInvalidInput.WithMessage("Position label is required")
	}
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}
	p := &domain.Position{
		ID:       "pos-" + slug,
		Label:    label,
		TeamType: domain.TeamType(teamID),
	}
	if err := s.teamRepo.CreatePosition(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *teamService) DeletePosition(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inUse, err := s.teamRepo.PositionInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrPositionInUse
	}
	if err := s.teamRepo.DeletePosition(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrPositionNotFound
		}
		return err
	}
	return nil
}

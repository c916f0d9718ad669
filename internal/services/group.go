package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"churchadmin/internal/domain"

	"github.com/google/uuid"
)

type groupService struct {
	groupRepo      domain.GroupRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

func NewGroupService(groupRepo domain.GroupRepository, userRepo domain.UserRepository, timeout time.Duration) domain.GroupService {
	return &groupService{
		groupRepo:      groupRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

// newGroupID returns "Group-" followed by the first segment of a random UUID.
func newGroupID() string {
	id := uuid.NewString()
	return "Group-" + id[:strings.IndexByte(id, '-')]
}

func validCategory(c string) bool {
	return c == domain.CategoryAdult || c == domain.CategoryYouth
}

func (s *groupService) CreateGroup(ctx context.Context, g *domain.ComcellGroup) (*domain.ComcellGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !validCategory(g.Category) {
		return nil, domain.ErrInvalidCategory
	}
	if g.CoLeaderID != nil && *g.CoLeaderID == "" {
		g.CoLeaderID = nil
	}
	if err := s.checkLeaders(ctx, "", g.LeaderID, g.CoLeaderID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	g.ID = newGroupID()
	g.CreatedAt = now
	g.UpdatedAt = now
	if err := s.groupRepo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return s.loadGroup(ctx, g.ID)
}

// checkLeaders verifies that the leader and co-leader exist, differ, and do not
// belong to a group other than groupID.
func (s *groupService) checkLeaders(ctx context.Context, groupID, leaderID string, coLeaderID *string) error {
	ids := []string{leaderID}
	if coLeaderID != nil {
		if *coLeaderID == leaderID {
			return domain.ErrDuplicateLeader
		}
		ids = append(ids, *coLeaderID)
	}
	for _, id := range ids {
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.checkUnassigned(ctx, groupID, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *groupService) checkUnassigned(ctx context.Context, groupID, userID string) error {
	m, err := s.groupRepo.GetMembership(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if m.GroupID != groupID {
		return domain.ErrUserAlreadyAssigned.WithMessage("User %s already belongs to group %s", userID, m.GroupID)
	}
	return nil
}

func (s *groupService) loadGroup(ctx context.Context, id string) (*domain.ComcellGroup, error) {
	g, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	members, err := s.groupRepo.ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	g.Members = members
	return g, nil
}

func (s *groupService) GetGroup(ctx context.Context, id string) (*domain.ComcellGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.loadGroup(ctx, id)
}

func (s *groupService) GetGroupByUser(ctx context.Context, userID string) (*domain.ComcellGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	m, err := s.groupRepo.GetMembership(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotInGroup
		}
		return nil, err
	}
	return s.loadGroup(ctx, m.GroupID)
}

func (s *groupService) ListGroups(ctx context.Context, category string) ([]*domain.ComcellGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if category != "" && !validCategory(category) {
		return nil, domain.ErrInvalidCategory
	}
	return s.groupRepo.List(ctx, category)
}

func (s *groupService) UpdateGroup(ctx context.Context, id string, u *domain.GroupUpdate) (*domain.ComcellGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	g, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}

	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.Category != nil {
		if !validCategory(*u.Category) {
			return nil, domain.ErrInvalidCategory
		}
		g.Category = *u.Category
	}
	if u.Description != nil {
		g.Description = u.Description
	}
	if u.LeaderID != nil {
		g.LeaderID = *u.LeaderID
	}
	if u.CoLeaderID != nil {
		if *u.CoLeaderID == "" {
			g.CoLeaderID = nil
		} else {
			g.CoLeaderID = u.CoLeaderID
		}
	}
	if u.LeaderID != nil || u.CoLeaderID != nil {
		if err := s.checkLeaders(ctx, id, g.LeaderID, g.CoLeaderID); err != nil {
			return nil, err
		}
	}

	g.UpdatedAt = time.Now().UTC()
	if err := s.groupRepo.Update(ctx, g); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("update group: %w", err)
	}
	return s.loadGroup(ctx, id)
}

func (s *groupService) DeleteGroup(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireGroup(ctx, id); err != nil {
		return err
	}
	n, err := s.groupRepo.CountEvents(ctx, id)
	if err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if n > 0 {
		return domain.ErrGroupHasEvents.WithMessage("Group is linked to %d event(s)", n)
	}
	if err := s.groupRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrGroupNotFound
		}
		return err
	}
	return nil
}

func (s *groupService) requireGroup(ctx context.Context, id string) error {
	ok, err := s.groupRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrGroupNotFound
	}
	return nil
}

// AddMembers adds users as plain members. Every user must exist and must not belong to any group.
func (s *groupService) AddMembers(ctx context.Context, groupID string, userIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ids := dedupe(userIDs)
	if len(ids) == 0 {
		return domain.ErrInvalidInput.WithMessage("No user ids provided")
	}
	if err := s.requireGroup(ctx, groupID); err != nil {
		return err
	}

	found, err := s.userRepo.ExistingIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("check users: %w", err)
	}
	if len(found) != len(ids) {
		known := make(map[string]bool, len(found))
		for _, id := range found {
			known[id] = true
		}
		for _, id := range ids {
			if !known[id] {
				return domain.ErrUserNotFound.WithMessage("User %s not found", id)
			}
		}
	}
	for _, id := range ids {
		m, err := s.groupRepo.GetMembership(ctx, id)
		if err == nil {
			return domain.ErrUserAlreadyAssigned.WithMessage("User %s already belongs to group %s", id, m.GroupID)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return s.groupRepo.AddMembers(ctx, groupID, ids)
}

// SetMemberRole changes a member's role. Promoting to leader or co-leader
// replaces the group's current holder, who becomes a plain member.
func (s *groupService) SetMemberRole(ctx context.Context, groupID, userID, role string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.ValidGroupRole(role) {
		return domain.ErrInvalidRole
	}
	g, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrGroupNotFound
		}
		return err
	}
	m, err := s.groupRepo.GetMembership(ctx, userID)
	if err != nil || m.GroupID != groupID {
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			return domain.ErrMemberNotFound
		}
		return err
	}
	if m.Role == role {
		return nil
	}

	isCoLeader := g.CoLeaderID != nil && *g.CoLeaderID == userID
	switch role {
	case domain.GroupRoleLeader:
		g.LeaderID = userID
		if isCoLeader {
			g.CoLeaderID = nil
		}
	case domain.GroupRoleCoLeader:
		if g.LeaderID == userID {
			return domain.ErrCannotRemove.WithMessage("Assign a new leader before changing the leader's role")
		}
		g.CoLeaderID = &userID
	default:
		if g.LeaderID == userID {
			return domain.ErrCannotRemove.WithMessage("Assign a new leader before changing the leader's role")
		}
		if isCoLeader {
			g.CoLeaderID = nil
		}
	}

	if role == domain.GroupRoleMember && !isCoLeader {
		return s.groupRepo.SetMemberRole(ctx, groupID, userID, role)
	}
	g.UpdatedAt = time.Now().UTC()
	return s.groupRepo.Update(ctx, g)
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	m, err := s.groupRepo.GetMembership(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrMemberNotFound
		}
		return err
	}
	if m.GroupID != groupID {
		return domain.ErrMemberNotFound
	}
	if m.Role == domain.GroupRoleLeader || m.Role == domain.GroupRoleCoLeader {
		return domain.ErrCannotRemove
	}
	if err := s.groupRepo.RemoveMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrMemberNotFound
		}
		return err
	}
	return nil
}

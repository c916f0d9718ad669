package domain

import (
	"context"
	"time"
)

// Group member roles.
const (
	GroupRoleMember   = "member"
	GroupRoleLeader   = "leader"
	GroupRoleCoLeader = "co-leader"
)

// Group categories.
const (
	CategoryAdult = "adult"
	CategoryYouth = "youth"
)

// ValidGroupRole reports whether role can be assigned to a group member.
func ValidGroupRole(role string) bool {
	return role == GroupRoleMember || role == GroupRoleLeader || role == GroupRoleCoLeader
}

// ComcellGroup is a small fellowship group with a leader and an optional co-leader.
// swagger:model ComcellGroup
type ComcellGroup struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Description *string        `json:"description"`
	LeaderID    string         `json:"leader_id"`
	CoLeaderID  *string        `json:"co_leader_id"`
	MemberCount int            `json:"member_count"`
	Members     []*GroupMember `json:"members,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// GroupMember is a user's membership in a comcell group.
// swagger:model GroupMember
type GroupMember struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	JoinedAt  time.Time `json:"joined_at"`
}

// GroupUpdate holds optional group changes. A non-nil empty CoLeaderID clears the co-leader.
type GroupUpdate struct {
	Name        *string
	Category    *string
	Description *string
	LeaderID    *string
	CoLeaderID  *string
}

// GroupRepository defines comcell group storage.
type GroupRepository interface {
	Create(ctx context.Context, g *ComcellGroup) error
	GetByID(ctx context.Context, id string) (*ComcellGroup, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, category string) ([]*ComcellGroup, error)
	Update(ctx context.Context, g *ComcellGroup) error
	Delete(ctx context.Context, id string) error
	CountEvents(ctx context.Context, id string) (int, error)
	ListMembers(ctx context.Context, groupID string) ([]*GroupMember, error)
	GetMembership(ctx context.Context, userID string) (*GroupMember, error)
	AddMembers(ctx context.Context, groupID string, userIDs []string) error
	SetMemberRole(ctx context.Context, groupID, userID, role string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
}

// GroupService manages comcell groups and their members.
type GroupService interface {
	CreateGroup(ctx context.Context, g *ComcellGroup) (*ComcellGroup, error)
	GetGroup(ctx context.Context, id string) (*ComcellGroup, error)
	GetGroupByUser(ctx context.Context, userID string) (*ComcellGroup, error)
	ListGroups(ctx context.Context, category string) ([]*ComcellGroup, error)
	UpdateGroup(ctx context.Context, id string, u *GroupUpdate) (*ComcellGroup, error)
	DeleteGroup(ctx context.Context, id string) error
	AddMembers(ctx context.Context, groupID string, userIDs []string) error
	SetMemberRole(ctx context.Context, groupID, userID, role string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
}

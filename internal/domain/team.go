package domain

import (
	"context"
	"strings"
	"time"
)

// TeamKeyPrefix prefixes every team key and team id ("team-singer").
const TeamKeyPrefix = "team-"

// TeamType extracts the type part of a team id, e.g. "team-singer" -> "singer".
func TeamType(teamID string) string {
	return strings.TrimPrefix(teamID, TeamKeyPrefix)
}

// Team is a volunteer ministry team. Protected teams are the main ministry teams.
// swagger:model Team
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsProtected bool      `json:"is_protected"`
	IsActive    bool      `json:"is_active"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Position is a role a team member can fill (e.g. "Lead Vocal").
// swagger:model Position
type Position struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	TeamType string `json:"team_type"`
}

// TeamMember is a user's membership in a team.
// swagger:model TeamMember
type TeamMember struct {
	ID        string      `json:"id"`
	TeamID    string      `json:"team_id"`
	UserID    string      `json:"user_id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Role      *string     `json:"role"`
	IsActive  bool        `json:"is_active"`
	Note      *string     `json:"note"`
	Positions []*Position `json:"positions"`
	JoinedAt  time.Time   `json:"joined_at"`
}

// TeamMemberUpdate holds optional member changes. A non-nil PositionIDs replaces all positions.
type TeamMemberUpdate struct {
	Role        *string
	IsActive    *bool
	Note        *string
	PositionIDs *[]string
}

// TeamRepository defines team, member and position storage.
type TeamRepository interface {
	List(ctx context.Context, protected bool) ([]*Team, error)
	GetByID(ctx context.Context, id string) (*Team, error)
	Create(ctx context.Context, t *Team) error
	Delete(ctx context.Context, id string) error
	ListMembers(ctx context.Context, teamID string) ([]*TeamMember, error)
	ListNonMembers(ctx context.Context, teamID string) ([]*User, error)
	AddMembers(ctx context.Context, teamID string, userIDs []string) (int64, error)
	UpdateMember(ctx context.Context, teamID, userID string, u *TeamMemberUpdate) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	ListPositions(ctx context.Context, teamType string) ([]*Position, error)
	CreatePosition(ctx context.Context, p *Position) error
	PositionInUse(ctx context.Context, id string) (bool, error)
	DeletePosition(ctx context.Context, id string) error
}

// TeamService manages teams, their members and positions.
type TeamService interface {
	ListTeams(ctx context.Context, protected bool) ([]*Team, error)
	CreateTeam(ctx context.Context, name string) (*Team, error)
	DeleteTeam(ctx context.Context, id string) error
	ListMembers(ctx context.Context, teamID string) ([]*TeamMember, error)
	ListNonMembers(ctx context.Context, teamID string) ([]*User, error)
	AddMembers(ctx context.Context, teamID string, userIDs []string) (int64, error)
	UpdateMember(ctx context.Context, teamID, userID string, u *TeamMemberUpdate) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	ListPositions(ctx context.Context, teamType string) ([]*Position, error)
	CreatePosition(ctx context.Context, label, teamID string) (*Position, error)
	DeletePosition(ctx context.Context, id string) error
}

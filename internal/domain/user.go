package domain

import (
	"context"
	"time"
)

// DefaultRoleName is assigned to newly registered users.
const DefaultRoleName = "member"

// User represents a registered user
// swagger:model User
type User struct {
	ID           string     `json:"id"`
	RoleID       string     `json:"role_id"`
	RoleName     string     `json:"role_name"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	PhoneNumber  *string    `json:"phone_number"`
	Address      *string    `json:"address"`
	City         *string    `json:"city"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Gender       *string    `json:"gender"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DisplayName returns "First L." as shown in attendance summaries.
func (u *User) DisplayName() string {
	return ShortName(u.FirstName, u.LastName)
}

// ShortName formats a first name with the initial of the last name.
func ShortName(first, last string) string {
	if last == "" {
		return first
	}
	r := []rune(last)
	return first + " " + string(r[0]) + "."
}

// Role represents an application role (e.g. admin, member)
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProfileUpdate holds the user-editable profile fields; nil fields are unchanged.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Address     *string
	City        *string
	DateOfBirth *time.Time
	Gender      *string
}

// IsEmpty reports whether no field is set.
func (p *ProfileUpdate) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.PhoneNumber == nil && p.Address == nil &&
		p.City == nil && p.DateOfBirth == nil && p.Gender == nil
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
	IssueReset(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
	VerifyReset(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
	UpdateProfile(ctx context.Context, id string, p *ProfileUpdate) (*User, error)
	SetRole(ctx context.Context, id, roleID string) error
	SetActive(ctx context.Context, id string, active bool) error
	SetPassword(ctx context.Context, id, hash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// RoleRepository defines role lookups.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// AuthService handles registration, login and password reset.
type AuthService interface {
	Register(ctx context.Context, in *RegisterInput) (*User, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// UserService manages user accounts.
type UserService interface {
	ListUsers(ctx context.Context) ([]*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, p *ProfileUpdate) (*User, error)
	SetRole(ctx context.Context, id, roleName string) error
	SetStatus(ctx context.Context, id string, active bool) error
	ListRoles(ctx context.Context) ([]*Role, error)
}

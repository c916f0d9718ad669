package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"churchadmin/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const userColumns = `u.id, u.role_id, r.name, u.first_name, u.last_name, u.email, u.password_hash,
	u.phone_number, u.address, u.city, u.date_of_birth, u.gender, u.is_active, u.last_login, u.created_at, u.updated_at`

func scanUser(s rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var phone, address, city, gender sql.NullString
	var dob, lastLogin sql.NullTime
	if err := s.Scan(
		&u.ID, &u.RoleID, &u.RoleName, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&phone, &address, &city, &dob, &gender, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.PhoneNumber = stringPtr(phone)
	u.Address = stringPtr(address)
	u.City = stringPtr(city)
	u.Gender = stringPtr(gender)
	if dob.Valid {
		u.DateOfBirth = &dob.Time
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return u, nil
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (role_id, first_name, last_name, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.RoleID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.IsActive, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id WHERE ` + where
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "u.id = $1", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "LOWER(u.email) = LOWER($1)", email)
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id ORDER BY u.first_name, u.last_name`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ExistingIDs returns the subset of ids that belong to existing users.
// Ids that are not UUIDs cannot match and are dropped before the query.
func (r *userRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	candidates := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return []string{}, nil
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM users WHERE id = ANY($1::uuid[])`, pq.Array(candidates))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make([]string, 0, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, p *domain.ProfileUpdate) (*domain.User, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.FirstName != nil {
		set("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		set("last_name", *p.LastName)
	}
	if p.PhoneNumber != nil {
		set("phone_number", *p.PhoneNumber)
	}
	if p.Address != nil {
		set("address", *p.Address)
	}
	if p.City != nil {
		set("city", *p.City)
	}
	if p.DateOfBirth != nil {
		set("date_of_birth", *p.DateOfBirth)
	}
	if p.Gender != nil {
		set("gender", *p.Gender)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if err := r.execOne(ctx, query, args...); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) SetRole(ctx context.Context, id, roleID string) error {
	return r.execOne(ctx, `UPDATE users SET role_id = $1, updated_at = NOW() WHERE id = $2`, roleID, id)
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.execOne(ctx, `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
}

func (r *userRepository) SetPassword(ctx context.Context, id, hash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

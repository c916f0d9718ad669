package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"churchadmin/internal/domain"

	"github.com/lib/pq"
)

type teamRepository struct {
	DB *sql.DB
}

func NewTeamRepository(db *sql.DB) domain.TeamRepository {
	return &teamRepository{DB: db}
}

const teamColumns = `t.id, t.name, t.is_protected, t.is_active,
	(SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = t.id), t.created_at`

func scanTeam(s rowScanner) (*domain.Team, error) {
	t := &domain.Team{}
	err := s.Scan(&t.ID, &t.Name, &t.IsProtected, &t.IsActive, &t.MemberCount, &t.CreatedAt)
	return t, err
}

func (r *teamRepository) List(ctx context.Context, protected bool) ([]*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams t WHERE t.is_protected = $1 ORDER BY t.name`
	rows, err := r.DB.QueryContext(ctx, query, protected)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	teams := make([]*domain.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams t WHERE t.id = $1`
	t, err := scanTeam(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *teamRepository) Create(ctx context.Context, t *domain.Team) error {
	query := `
		INSERT INTO teams (id, name, is_protected, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query, t.ID, t.Name, t.IsProtected, t.IsActive).Scan(&t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM team_member_positions WHERE team_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = $1 AND NOT is_protected`, id)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// ListMembers returns the team's members with their positions attached.
func (r *teamRepository) ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error) {
	query := `
		SELECT tm.id, tm.team_id, tm.user_id, u.first_name, u.last_name, u.email, tm.role, tm.is_active, tm.note, tm.joined_at
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY u.first_name, u.last_name
	`
	rows, err := r.DB.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]*domain.TeamMember, 0)
	byUser := make(map[string]*domain.TeamMember)
	for rows.Next() {
		m := &domain.TeamMember{Positions: []*domain.Position{}}
		var role, note sql.NullString
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.FirstName, &m.LastName, &m.Email, &role, &m.IsActive, &note, &m.JoinedAt); err != nil {
			return nil, err
		}
		m.Role = stringPtr(role)
		m.Note = stringPtr(note)
		members = append(members, m)
		byUser[m.UserID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return members, nil
	}

	posRows, err := r.DB.QueryContext(ctx, `
		SELECT mp.user_id, p.id, p.label, p.team_type
		FROM team_member_positions mp
		JOIN team_positions p ON p.id = mp.position_id
		WHERE mp.team_id = $1
		ORDER BY p.label
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer posRows.Close()
	for posRows.Next() {
		var userID string
		p := &domain.Position{}
		if err := posRows.Scan(&userID, &p.ID, &p.Label, &p.TeamType); err != nil {
			return nil, err
		}
		if m, ok := byUser[userID]; ok {
			m.Positions = append(m.Positions, p)
		}
	}
	return members, posRows.Err()
}

func (r *teamRepository) ListNonMembers(ctx context.Context, teamID string) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.email
		FROM users u
		WHERE u.is_active AND NOT EXISTS (SELECT 1 FROM team_members tm WHERE tm.team_id = $1 AND tm.user_id = u.id)
		ORDER BY u.first_name, u.last_name
	`
	rows, err := r.DB.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.User, 0)
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *teamRepository) AddMembers(ctx context.Context, teamID string, userIDs []string) (int64, error) {
	query := `
		INSERT INTO team_members (team_id, user_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (team_id, user_id) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query, teamID, pq.Array(userIDs))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// UpdateMember changes the member fields and, when PositionIDs is set, replaces the member's positions.
func (r *teamRepository) UpdateMember(ctx context.Context, teamID, userID string, u *domain.TeamMemberUpdate) error {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Role != nil {
		set("role", *u.Role)
	}
	if u.IsActive != nil {
		set("is_active", *u.IsActive)
	}
	if u.Note != nil {
		set("note", *u.Note)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, teamID, userID)
	query := fmt.Sprintf("UPDATE team_members SET %s WHERE team_id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args))

	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		if u.PositionIDs == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM team_member_positions WHERE team_id = $1 AND user_id = $2`, teamID, userID); err != nil {
			return err
		}
		if len(*u.PositionIDs) == 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO team_member_positions (team_id, user_id, position_id)
			SELECT $1, $2, unnest($3::text[])
			ON CONFLICT DO NOTHING
		`, teamID, userID, pq.Array(*u.PositionIDs))
		return err
	})
}

func (r *teamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM team_member_positions WHERE team_id = $1 AND user_id = $2`, teamID, userID); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *teamRepository) ListPositions(ctx context.Context, teamType string) ([]*domain.Position, error) {
	query := `SELECT id, label, team_type FROM team_positions`
	var args []any
	if teamType != "" {
		query += ` WHERE team_type = $1`
		args = append(args, teamType)
	}
	query += ` ORDER BY team_type, label`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	positions := make([]*domain.Position, 0)
	for rows.Next() {
		p := &domain.Position{}
		if err := rows.Scan(&p.ID, &p.Label, &p.TeamType); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (r *teamRepository) CreatePosition(ctx context.Context, p *domain.Position) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO team_positions (id, label, team_type) VALUES ($1, $2, $3)`, p.ID, p.Label, p.TeamType)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPositionExists
		}
		return err
	}
	return nil
}

func (r *teamRepository) PositionInUse(ctx context.Context, id string) (bool, error) {
	var inUse bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM team_member_positions WHERE position_id = $1)`, id).Scan(&inUse)
	return inUse, err
}

func (r *teamRepository) DeletePosition(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM team_positions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

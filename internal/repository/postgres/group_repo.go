package postgres

import (
	"context"
	"database/sql"
	"errors"

	"churchadmin/internal/domain"

	"github.com/lib/pq"
)

const groupColumns = `g.id, g.name, g.category, g.description, g.leader_id, g.co_leader_id,
	(SELECT COUNT(*) FROM comcell_group_members m WHERE m.group_id = g.id), g.created_at, g.updated_at`

func scanGroup(s rowScanner) (*domain.ComcellGroup, error) {
	g := &domain.ComcellGroup{}
	var description, coLeader sql.NullString
	if err := s.Scan(&g.ID, &g.Name, &g.Category, &description, &g.LeaderID, &coLeader, &g.MemberCount, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.Description = stringPtr(description)
	g.CoLeaderID = stringPtr(coLeader)
	return g, nil
}

type groupRepository struct {
	DB *sql.DB
}

func NewGroupRepository(db *sql.DB) domain.GroupRepository {
	return &groupRepository{DB: db}
}

// Create inserts the group and the membership rows of its leader and co-leader.
func (r *groupRepository) Create(ctx context.Context, g *domain.ComcellGroup) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comcell_group (id, name, category, description, leader_id, co_leader_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, g.ID, g.Name, g.Category, nullString(g.Description), g.LeaderID, nullString(g.CoLeaderID), g.CreatedAt, g.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		return upsertLeaders(ctx, tx, g)
	})
}

func upsertLeaders(ctx context.Context, tx *sql.Tx, g *domain.ComcellGroup) error {
	query := `
		INSERT INTO comcell_group_members (group_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
		WHERE comcell_group_members.group_id = EXCLUDED.group_id
	`
	if _, err := tx.ExecContext(ctx, query, g.ID, g.LeaderID, domain.GroupRoleLeader); err != nil {
		return err
	}
	if g.CoLeaderID != nil {
		if _, err := tx.ExecContext(ctx, query, g.ID, *g.CoLeaderID, domain.GroupRoleCoLeader); err != nil {
			return err
		}
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.ComcellGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM comcell_group g WHERE g.id = $1`
	g, err := scanGroup(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *groupRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM comcell_group WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *groupRepository) List(ctx context.Context, category string) ([]*domain.ComcellGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM comcell_group g`
	var args []any
	if category != "" {
		query += ` WHERE g.category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY g.name`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	groups := make([]*domain.ComcellGroup, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Update stores the group fields and re-derives the leader and co-leader membership roles.
func (r *groupRepository) Update(ctx context.Context, g *domain.ComcellGroup) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE comcell_group
			SET name = $1, category = $2, description = $3, leader_id = $4, co_leader_id = $5, updated_at = $6
			WHERE id = $7
		`, g.Name, g.Category, nullString(g.Description), g.LeaderID, nullString(g.CoLeaderID), g.UpdatedAt, g.ID)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE comcell_group_members SET role = $1, updated_at = NOW()
			WHERE group_id = $2 AND role <> $1
		`, domain.GroupRoleMember, g.ID)
		if err != nil {
			return err
		}
		return upsertLeaders(ctx, tx, g)
	})
}

func (r *groupRepository) Delete(ctx context.Context, id string) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comcell_group_members WHERE group_id = $1`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM comcell_group WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *groupRepository) CountEvents(ctx context.Context, id string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_groups WHERE group_id = $1`, id).Scan(&n)
	return n, err
}

const memberColumns = `m.id, m.group_id, m.user_id, m.role, u.first_name, u.last_name, u.email, m.joined_at`

func scanMember(s rowScanner) (*domain.GroupMember, error) {
	m := &domain.GroupMember{}
	err := s.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.FirstName, &m.LastName, &m.Email, &m.JoinedAt)
	return m, err
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID string) ([]*domain.GroupMember, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM comcell_group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY CASE m.role WHEN 'leader' THEN 0 WHEN 'co-leader' THEN 1 ELSE 2 END, u.first_name, u.last_name
	`
	rows, err := r.DB.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]*domain.GroupMember, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *groupRepository) GetMembership(ctx context.Context, userID string) (*domain.GroupMember, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM comcell_group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.user_id = $1
	`
	m, err := scanMember(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *groupRepository) AddMembers(ctx context.Context, groupID string, userIDs []string) error {
	query := `
		INSERT INTO comcell_group_members (group_id, user_id, role)
		SELECT $1, unnest($2::uuid[]), $3
	`
	if _, err := r.DB.ExecContext(ctx, query, groupID, pq.Array(userIDs), domain.GroupRoleMember); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyAssigned
		}
		return err
	}
	return nil
}

func (r *groupRepository) SetMemberRole(ctx context.Context, groupID, userID, role string) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE comcell_group_members SET role = $1, updated_at = NOW()
		WHERE group_id = $2 AND user_id = $3
	`, role, groupID, userID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM comcell_group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

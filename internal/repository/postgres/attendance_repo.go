package postgres

import (
	"context"
	"database/sql"

	"churchadmin/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type attendanceRepository struct {
	DB *sqlx.DB
}

// NewAttendanceRepository returns a domain.AttendanceRepository backed by sqlx on Postgres.
func NewAttendanceRepository(db *sqlx.DB) domain.AttendanceRepository {
	return &attendanceRepository{DB: db}
}

func (r *attendanceRepository) ListByEventIDs(ctx context.Context, eventIDs []string) ([]*domain.AttendanceRecord, error) {
	query := `
		SELECT ea.id, ea.event_id, ea.user_id, ea.status, ea.notes,
			u.first_name || ' ' || u.last_name AS user_name, u.email, ea.created_at, ea.updated_at
		FROM event_attendance ea
		JOIN users u ON u.id = ea.user_id
		WHERE ea.event_id = ANY($1::uuid[])
		ORDER BY ea.event_id, u.first_name, u.last_name
	`
	records := make([]*domain.AttendanceRecord, 0)
	if err := r.DB.SelectContext(ctx, &records, query, pq.Array(eventIDs)); err != nil {
		return nil, err
	}
	return records, nil
}

// BulkUpdate updates all matching rows in one statement. Ids with no row are ignored.
func (r *attendanceRepository) BulkUpdate(ctx context.Context, updates []domain.AttendanceUpdate) (int64, error) {
	ids := make([]string, len(updates))
	statuses := make([]string, len(updates))
	notes := make([]sql.NullString, len(updates))
	for i, u := range updates {
		ids[i] = u.AttendanceID
		statuses[i] = u.Status
		notes[i] = nullString(u.Notes)
	}
	query := `
		UPDATE event_attendance AS ea
		SET status = u.status, notes = u.notes, updated_at = NOW()
		FROM unnest($1::uuid[], $2::text[], $3::text[]) AS u(id, status, notes)
		WHERE ea.id = u.id
	`
	result, err := r.DB.ExecContext(ctx, query, pq.Array(ids), pq.Array(statuses), pq.Array(notes))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *attendanceRepository) ListQualifyingEvents(ctx context.Context, groupID, scope string) ([]domain.EventRef, error) {
	query := `SELECT e.id, e.start_time FROM events e WHERE ` + groupScopeCondition(scope, 1) +
		` ORDER BY e.start_time DESC, e.id`
	events := make([]domain.EventRef, 0)
	if err := r.DB.SelectContext(ctx, &events, query, groupID); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *attendanceRepository) ListMemberStatuses(ctx context.Context, eventIDs, userIDs []string) ([]domain.MemberStatus, error) {
	statuses := make([]domain.MemberStatus, 0)
	if len(eventIDs) == 0 || len(userIDs) == 0 {
		return statuses, nil
	}
	query := `
		SELECT event_id, user_id, status
		FROM event_attendance
		WHERE event_id = ANY($1::uuid[]) AND user_id = ANY($2::uuid[])
	`
	if err := r.DB.SelectContext(ctx, &statuses, query, pq.Array(eventIDs), pq.Array(userIDs)); err != nil {
		return nil, err
	}
	return statuses, nil
}

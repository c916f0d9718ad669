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

const eventColumns = `e.id, e.name, e.type, e.start_time, e.end_time, e.location, e.is_public, e.description,
	e.status, e.created_by, e.created_at, e.updated_at,
	ARRAY(SELECT eg.group_id FROM event_groups eg WHERE eg.event_id = e.id ORDER BY eg.group_id)`

// groupScopeCondition returns the WHERE condition selecting the events of a group
// for scope; the group id is bound to placeholder $n.
func groupScopeCondition(scope string, n int) string {
	linked := fmt.Sprintf("EXISTS (SELECT 1 FROM event_groups g WHERE g.event_id = e.id AND g.group_id = $%d)", n)
	if scope == domain.ScopeCombined {
		return "(e.is_public OR " + linked + ")"
	}
	return linked
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var location, description sql.NullString
	var groupIDs pq.StringArray
	if err := s.Scan(
		&e.ID, &e.Name, &e.Type, &e.StartTime, &e.EndTime, &location, &e.IsPublic, &description,
		&e.Status, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt, &groupIDs,
	); err != nil {
		return nil, err
	}
	e.Location = stringPtr(location)
	e.Description = stringPtr(description)
	e.GroupIDs = []string(groupIDs)
	if e.GroupIDs == nil {
		e.GroupIDs = []string{}
	}
	return e, nil
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return getEvent(ctx, r.DB, id)
}

func getEvent(ctx context.Context, q DBTX, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	e, err := scanEvent(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	order := "ASC"
	if f.Period == domain.PeriodPast {
		add("e.end_time < $%d", f.Now)
		order = "DESC"
	} else {
		add("e.start_time >= $%d", f.Now)
	}
	if f.PublicOnly {
		conds = append(conds, "e.is_public")
		add("e.status = $%d", domain.EventStatusPublished)
	} else if f.Status != "" {
		add("e.status = $%d", f.Status)
	}
	if len(f.Types) > 0 {
		add("e.type = ANY($%d)", pq.Array(f.Types))
	}
	if f.Year > 0 {
		add("EXTRACT(YEAR FROM e.start_time) = $%d", f.Year)
	}
	if f.Month > 0 {
		add("EXTRACT(MONTH FROM e.start_time) = $%d", f.Month)
	}

	query := `SELECT ` + eventColumns + ` FROM events e WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY e.start_time ` + order
	return r.queryEvents(ctx, query, args...)
}

func (r *eventRepository) ListByGroup(ctx context.Context, groupID, scope string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE ` + groupScopeCondition(scope, 1) +
		` ORDER BY e.start_time DESC`
	return r.queryEvents(ctx, query, groupID)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) ListSpeakerSlots(ctx context.Context, eventID string) ([]*domain.EventSpeakerSlot, error) {
	query := `
		SELECT id, event_id, type, speaker_id, speaker_name, translator_id, translator_name
		FROM event_speaker
		WHERE event_id = $1
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]*domain.EventSpeakerSlot, 0)
	for rows.Next() {
		s := &domain.EventSpeakerSlot{}
		var typ, speakerID, speakerName, translatorID, translatorName sql.NullString
		if err := rows.Scan(&s.ID, &s.EventID, &typ, &speakerID, &speakerName, &translatorID, &translatorName); err != nil {
			return nil, err
		}
		s.Type = stringPtr(typ)
		s.SpeakerID = stringPtr(speakerID)
		s.SpeakerName = stringPtr(speakerName)
		s.TranslatorID = stringPtr(translatorID)
		s.TranslatorName = stringPtr(translatorName)
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *eventRepository) ListSongs(ctx context.Context, eventID string) ([]*domain.EventSong, error) {
	query := `
		SELECT id, event_id, title, song_order, song_key, bpm
		FROM event_songs
		WHERE event_id = $1
		ORDER BY song_order
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	songs := make([]*domain.EventSong, 0)
	for rows.Next() {
		s := &domain.EventSong{}
		var key sql.NullString
		var bpm sql.NullInt64
		if err := rows.Scan(&s.ID, &s.EventID, &s.Title, &s.SongOrder, &key, &bpm); err != nil {
			return nil, err
		}
		s.SongKey = stringPtr(key)
		if bpm.Valid {
			v := int(bpm.Int64)
			s.BPM = &v
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

func (r *eventRepository) ListPresentations(ctx context.Context, eventID string) ([]*domain.EventPresentation, error) {
	query := `
		SELECT id, event_id, file_name, file_size, file_type, file_url, uploaded_at
		FROM event_presentations
		WHERE event_id = $1
		ORDER BY uploaded_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	presentations := make([]*domain.EventPresentation, 0)
	for rows.Next() {
		p := &domain.EventPresentation{}
		if err := rows.Scan(&p.ID, &p.EventID, &p.FileName, &p.FileSize, &p.FileType, &p.FileURL, &p.UploadedAt); err != nil {
			return nil, err
		}
		presentations = append(presentations, p)
	}
	return presentations, rows.Err()
}

func (r *eventRepository) ListTeamMembers(ctx context.Context, eventID string) ([]*domain.EventTeamMember, error) {
	query := `
		SELECT m.id, m.event_team_id, et.team_id, t.name, m.user_id, u.first_name || ' ' || u.last_name, m.role_name, m.details
		FROM event_team_member m
		JOIN event_teams et ON et.id = m.event_team_id
		JOIN teams t ON t.id = et.team_id
		JOIN users u ON u.id = m.user_id
		WHERE et.event_id = $1
		ORDER BY t.name, u.first_name
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]*domain.EventTeamMember, 0)
	for rows.Next() {
		m := &domain.EventTeamMember{}
		var role, details sql.NullString
		if err := rows.Scan(&m.ID, &m.EventTeamID, &m.TeamID, &m.TeamName, &m.UserID, &m.UserName, &role, &details); err != nil {
			return nil, err
		}
		m.RoleName = stringPtr(role)
		m.Details = stringPtr(details)
		members = append(members, m)
	}
	return members, rows.Err()
}

// Update applies the non-nil fields of u and moves linked group slots along with the event times.
func (r *eventRepository) Update(ctx context.Context, id string, u *domain.EventUpdate) (*domain.Event, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.Type != nil {
		set("type", *u.Type)
	}
	if u.StartTime != nil {
		set("start_time", *u.StartTime)
	}
	if u.EndTime != nil {
		set("end_time", *u.EndTime)
	}
	if u.Location != nil {
		set("location", *u.Location)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.IsPublic != nil {
		set("is_public", *u.IsPublic)
	}
	if u.Status != nil {
		set("status", *u.Status)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE events SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	var updated *domain.Event
	err := WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		if u.StartTime != nil || u.EndTime != nil {
			_, err := tx.ExecContext(ctx, `
				UPDATE event_groups eg
				SET start_time = e.start_time, end_time = e.end_time
				FROM events e
				WHERE e.id = eg.event_id AND e.id = $1
			`, id)
			if err != nil {
				if isUniqueViolation(err) {
					return domain.ErrEventSlotTaken
				}
				return err
			}
		}
		updated, err = getEvent(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

var deleteEventStatements = []string{
	`DELETE FROM event_attendance WHERE event_id = $1`,
	`DELETE FROM event_groups WHERE event_id = $1`,
	`DELETE FROM event_team_member WHERE event_team_id IN (SELECT id FROM event_teams WHERE event_id = $1)`,
	`DELETE FROM event_teams WHERE event_id = $1`,
	`DELETE FROM event_speaker WHERE event_id = $1`,
	`DELETE FROM event_songs WHERE event_id = $1`,
	`DELETE FROM event_presentations WHERE event_id = $1`,
}

// Delete removes the event's dependent rows and then the event, in one transaction.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		for _, stmt := range deleteEventStatements {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return err
			}
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	"churchadmin/internal/domain"

	"github.com/lib/pq"
)

type eventStore struct {
	DB *sql.DB
}

// NewEventStore returns a domain.EventStore that writes event aggregates in one Postgres transaction.
func NewEventStore(db *sql.DB) domain.EventStore {
	return &eventStore{DB: db}
}

func (s *eventStore) WithinTx(ctx context.Context, fn func(w domain.EventWriter) error) error {
	return WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		return fn(&eventWriter{q: tx})
	})
}

type eventWriter struct {
	q DBTX
}

func (w *eventWriter) InsertEvent(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, type, start_time, end_time, location, is_public, description, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return w.q.QueryRowContext(ctx, query,
		e.Name, e.Type, e.StartTime, e.EndTime, nullString(e.Location), e.IsPublic,
		nullString(e.Description), e.Status, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (w *eventWriter) LinkGroup(ctx context.Context, eventID, groupID string, start, end time.Time) error {
	query := `INSERT INTO event_groups (event_id, group_id, start_time, end_time) VALUES ($1, $2, $3, $4)`
	if _, err := w.q.ExecContext(ctx, query, eventID, groupID, start, end); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEventSlotTaken
		}
		return err
	}
	return nil
}

// SeedAttendance inserts one absent row per distinct member of the given groups.
func (w *eventWriter) SeedAttendance(ctx context.Context, eventID string, groupIDs []string) (int64, error) {
	query := `
		INSERT INTO event_attendance (event_id, user_id, status)
		SELECT DISTINCT $1::uuid, m.user_id, $2
		FROM comcell_group_members m
		WHERE m.group_id = ANY($3)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`
	result, err := w.q.ExecContext(ctx, query, eventID, domain.AttendanceAbsent, pq.Array(groupIDs))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (w *eventWriter) InsertSpeakerSlot(ctx context.Context, s *domain.EventSpeakerSlot) error {
	query := `
		INSERT INTO event_speaker (event_id, type, speaker_id, speaker_name, translator_id, translator_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return w.q.QueryRowContext(ctx, query,
		s.EventID, nullString(s.Type), nullString(s.SpeakerID), nullString(s.SpeakerName),
		nullString(s.TranslatorID), nullString(s.TranslatorName),
	).Scan(&s.ID)
}

// AttachTranslator sets the translator on the registered speaker's row. It reports whether a row matched.
func (w *eventWriter) AttachTranslator(ctx context.Context, eventID, speakerUserID string, translatorID, translatorName *string) (bool, error) {
	query := `
		UPDATE event_speaker
		SET translator_id = $1, translator_name = $2
		WHERE event_id = $3 AND speaker_id = $4 AND type = 'user'
	`
	result, err := w.q.ExecContext(ctx, query, nullString(translatorID), nullString(translatorName), eventID, speakerUserID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (w *eventWriter) InsertSong(ctx context.Context, s *domain.EventSong) error {
	query := `
		INSERT INTO event_songs (event_id, title, song_order, song_key, bpm)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var bpm sql.NullInt64
	if s.BPM != nil {
		bpm = sql.NullInt64{Int64: int64(*s.BPM), Valid: true}
	}
	return w.q.QueryRowContext(ctx, query, s.EventID, s.Title, s.SongOrder, nullString(s.SongKey), bpm).Scan(&s.ID)
}

func (w *eventWriter) InsertPresentation(ctx context.Context, p *domain.EventPresentation) error {
	query := `
		INSERT INTO event_presentations (event_id, file_name, file_size, file_type, file_url, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return w.q.QueryRowContext(ctx, query, p.EventID, p.FileName, p.FileSize, p.FileType, p.FileURL, p.UploadedAt).Scan(&p.ID)
}

func (w *eventWriter) ActiveTeamExists(ctx context.Context, teamID string) (bool, error) {
	var exists bool
	err := w.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1 AND is_active)`, teamID).Scan(&exists)
	return exists, err
}

func (w *eventWriter) InsertEventTeam(ctx context.Context, eventID, teamID string) (string, error) {
	var id string
	err := w.q.QueryRowContext(ctx, `INSERT INTO event_teams (event_id, team_id) VALUES ($1, $2) RETURNING id`, eventID, teamID).Scan(&id)
	return id, err
}

func (w *eventWriter) InsertEventTeamMember(ctx context.Context, m *domain.EventTeamMember) error {
	query := `
		INSERT INTO event_team_member (event_team_id, user_id, role_name, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return w.q.QueryRowContext(ctx, query, m.EventTeamID, m.UserID, nullString(m.RoleName), nullString(m.Details)).Scan(&m.ID)
}

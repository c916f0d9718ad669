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

const videoColumns = `v.id, v.title, v.description, v.youtube_url, v.thumbnail_url, v.is_active, v.created_by, v.created_at, v.updated_at,
	ARRAY(SELECT t.name FROM video_tags vt JOIN tags t ON t.id = vt.tag_id WHERE vt.video_id = v.id ORDER BY t.name)`

func scanVideo(s rowScanner) (*domain.Video, error) {
	v := &domain.Video{}
	var description, thumbnail sql.NullString
	var tags pq.StringArray
	if err := s.Scan(&v.ID, &v.Title, &description, &v.YoutubeURL, &thumbnail, &v.IsActive, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt, &tags); err != nil {
		return nil, err
	}
	v.Description = stringPtr(description)
	v.ThumbnailURL = stringPtr(thumbnail)
	v.Tags = []string(tags)
	if v.Tags == nil {
		v.Tags = []string{}
	}
	return v, nil
}

type videoRepository struct {
	DB *sql.DB
}

// NewVideoRepository returns a domain.VideoRepository implemented with Postgres.
func NewVideoRepository(db *sql.DB) domain.VideoRepository {
	return &videoRepository{DB: db}
}

func (r *videoRepository) Create(ctx context.Context, v *domain.Video) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		query := `
			INSERT INTO videos (title, description, youtube_url, thumbnail_url, is_active, created_by)
			VALUES ($1, $2, $3, $4, TRUE, $5)
			RETURNING id, is_active, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, query, v.Title, nullString(v.Description), v.YoutubeURL, nullString(v.ThumbnailURL), v.CreatedBy).
			Scan(&v.ID, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return err
		}
		return setVideoTags(ctx, tx, v.ID, v.Tags)
	})
}

// setVideoTags replaces the video's tags, creating missing tags by name.
func setVideoTags(ctx context.Context, tx *sql.Tx, videoID string, names []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM video_tags WHERE video_id = $1`, videoID); err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO tags (name) SELECT unnest($1::text[]) ON CONFLICT (name) DO NOTHING`, pq.Array(names)); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO video_tags (video_id, tag_id)
		SELECT $1, t.id FROM tags t WHERE t.name = ANY($2::text[])
	`, videoID, pq.Array(names))
	return err
}

func (r *videoRepository) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos v WHERE v.id = $1 AND v.is_active`
	v, err := scanVideo(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// List returns one page of active videos and the total number of matches.
func (r *videoRepository) List(ctx context.Context, f domain.VideoFilter) ([]*domain.Video, int, error) {
	where := `v.is_active`
	args := []any{}
	if f.Tag != "" {
		args = append(args, f.Tag)
		where += ` AND EXISTS (SELECT 1 FROM video_tags vt JOIN tags t ON t.id = vt.tag_id WHERE vt.video_id = v.id AND t.name = $1)`
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos v WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM videos v WHERE %s ORDER BY v.created_at DESC LIMIT $%d OFFSET $%d`,
		videoColumns, where, n+1, n+2)
	args = append(args, f.Page.Size, f.Page.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	videos := make([]*domain.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, 0, err
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func (r *videoRepository) Update(ctx context.Context, id string, u *domain.VideoUpdate) (*domain.Video, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.YoutubeURL != nil {
		set("youtube_url", *u.YoutubeURL)
	}
	if u.ThumbnailURL != nil {
		set("thumbnail_url", *u.ThumbnailURL)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE videos SET %s WHERE id = $%d AND is_active", strings.Join(sets, ", "), len(args))

	err := WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		if u.Tags != nil {
			return setVideoTags(ctx, tx, id, *u.Tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *videoRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE videos SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *videoRepository) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.name, COUNT(v.id)
		FROM tags t
		LEFT JOIN video_tags vt ON vt.tag_id = t.id
		LEFT JOIN videos v ON v.id = vt.video_id AND v.is_active
		GROUP BY t.id, t.name
		ORDER BY t.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]*domain.Tag, 0)
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.VideoCount); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}

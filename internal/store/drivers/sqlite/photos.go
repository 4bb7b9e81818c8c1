package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nostella/nostella/internal/domain"
)

type photosRepo struct {
	q dbtx
}

const photoColumns = `id, user_id, url, object_key, caption, description,
	taken_at, is_favorite, story, has_story, created_at, updated_at`

type photoScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row photoScanner) (domain.Photo, error) {
	var (
		p           domain.Photo
		description sql.NullString
		story       sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.URL, &p.Key, &p.Caption, &description,
		&p.TakenAt, &p.IsFavorite, &story, &p.HasStory,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Photo{}, mapNotFound(err)
	}

	p.Description = mapNullStringPtr(description)
	p.Story = mapNullStringPtr(story)
	return p, nil
}

func (r *photosRepo) CreatePhoto(ctx context.Context, p domain.Photo) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO photos (
			id, user_id, url, object_key, caption, description,
			taken_at, is_favorite, story, has_story, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.URL, p.Key, p.Caption, mapOptionalString(p.Description),
		p.TakenAt, p.IsFavorite, mapOptionalString(p.Story), p.HasStory,
		p.CreatedAt, p.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *photosRepo) GetPhotoByID(ctx context.Context, id string) (domain.Photo, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = ?`, id)
	return scanPhoto(row)
}

func (r *photosRepo) ListPhotosByUser(ctx context.Context, userID string) ([]domain.Photo, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE user_id = ? ORDER BY taken_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *photosRepo) UpdatePhoto(ctx context.Context, id string, upd domain.PhotoUpdate) error {
	// COALESCE keeps the stored value for any field the caller left nil.
	res, err := r.q.ExecContext(ctx, `
		UPDATE photos
		SET caption     = COALESCE(?, caption),
		    description = COALESCE(?, description),
		    taken_at    = COALESCE(?, taken_at),
		    updated_at  = ?
		WHERE id = ?`,
		mapOptionalString(upd.Caption),
		mapOptionalString(upd.Description),
		mapOptionalTime(upd.TakenAt),
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *photosRepo) SetFavorite(ctx context.Context, id string, favorite bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE photos SET is_favorite = ?, updated_at = ? WHERE id = ?`,
		favorite, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *photosRepo) SetStory(ctx context.Context, id string, story string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE photos SET story = ?, has_story = 1, updated_at = ? WHERE id = ?`,
		story, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *photosRepo) DeletePhoto(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

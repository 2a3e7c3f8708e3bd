package store

import (
	"context"
	"fmt"
	"spotfinder/db"
	"spotfinder/models"
)

type MediaStore struct {
	db db.DBTX
}

func NewMediaStore(conn db.DBTX) *MediaStore {
	return &MediaStore{db: conn}
}

func (s *MediaStore) Create(ctx context.Context, m models.Media) (models.Media, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO media (spot_id, image_url, storage_key, uploaded_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, m.SpotID, m.ImageURL, m.StorageKey, m.UploadedBy).Scan(&id)
	if err != nil {
		return models.Media{}, fmt.Errorf("create media: %w", db.MapError(err))
	}
	return s.Get(ctx, id)
}

func (s *MediaStore) Get(ctx context.Context, id int64) (models.Media, error) {
	var m models.Media
	err := s.db.QueryRowContext(ctx, `
		SELECT id, spot_id, image_url, storage_key, uploaded_by, uploaded_at
		FROM media WHERE id = $1
	`, id).Scan(&m.ID, &m.SpotID, &m.ImageURL, &m.StorageKey, &m.UploadedBy, &m.UploadedAt)
	if err != nil {
		return models.Media{}, fmt.Errorf("get media: %w", db.MapError(err))
	}
	return m, nil
}

func (s *MediaStore) ListBySpot(ctx context.Context, spotID int64) ([]models.Media, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, spot_id, image_url, storage_key, uploaded_by, uploaded_at
		FROM media
		WHERE spot_id = $1
		ORDER BY uploaded_at DESC, id DESC
	`, spotID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", db.MapError(err))
	}
	defer rows.Close()

	media := []models.Media{}
	for rows.Next() {
		var m models.Media
		if err := rows.Scan(&m.ID, &m.SpotID, &m.ImageURL, &m.StorageKey, &m.UploadedBy, &m.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		media = append(media, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return media, nil
}

func (s *MediaStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", db.MapError(err))
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("delete media: %w", db.ErrNotFound)
	}
	return nil
}

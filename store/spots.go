package store

import (
	"context"
	"errors"
	"fmt"
	"spotfinder/db"
	"spotfinder/models"
)

const spotColumns = `id, name, description, latitude, longitude, spot_type, tips, image_url, created_by, creator_name, created_at`

type SpotStore struct {
	db db.DBTX
}

func NewSpotStore(conn db.DBTX) *SpotStore {
	return &SpotStore{db: conn}
}

func (s *SpotStore) List(ctx context.Context) ([]models.SpotSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, latitude, longitude, spot_type, image_url
		FROM spots
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list spots: %w", db.MapError(err))
	}
	defer rows.Close()

	spots := []models.SpotSummary{}
	for rows.Next() {
		var sp models.SpotSummary
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Latitude, &sp.Longitude, &sp.SpotType, &sp.ImageURL); err != nil {
			return nil, fmt.Errorf("scan spot: %w", err)
		}
		spots = append(spots, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list spots: %w", err)
	}
	return spots, nil
}

func (s *SpotStore) Get(ctx context.Context, id int64) (models.Spot, error) {
	var sp models.Spot
	err := s.db.QueryRowContext(ctx, `SELECT `+spotColumns+` FROM spots WHERE id = $1`, id).Scan(
		&sp.ID, &sp.Name, &sp.Description, &sp.Latitude, &sp.Longitude, &sp.SpotType,
		&sp.Tips, &sp.ImageURL, &sp.CreatedBy, &sp.CreatorName, &sp.CreatedAt,
	)
	if err != nil {
		return models.Spot{}, fmt.Errorf("get spot: %w", db.MapError(err))
	}
	return sp, nil
}

func (s *SpotStore) Create(ctx context.Context, sp models.Spot) (models.Spot, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO spots (name, description, latitude, longitude, spot_type, tips, image_url, created_by, creator_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, sp.Name, sp.Description, sp.Latitude, sp.Longitude, sp.SpotType, sp.Tips, sp.ImageURL, sp.CreatedBy, sp.CreatorName).Scan(&id)
	if err != nil {
		return models.Spot{}, fmt.Errorf("create spot: %w", db.MapError(err))
	}
	return s.Get(ctx, id)
}

// Update applies the non-nil fields of patch when ownerID created the spot.
// An empty tips or image_url clears the column.
func (s *SpotStore) Update(ctx context.Context, id, ownerID int64, patch models.SpotPatch) (models.Spot, error) {
	setTips, tips := clearable(patch.Tips)
	setImage, imageURL := clearable(patch.ImageURL)
	res, err := s.db.ExecContext(ctx, `
		UPDATE spots SET
			name        = COALESCE($1, name),
			description = COALESCE($2, description),
			latitude    = COALESCE($3, latitude),
			longitude   = COALESCE($4, longitude),
			spot_type   = COALESCE($5, spot_type),
			tips        = CASE WHEN $6 THEN $7 ELSE tips END,
			image_url   = CASE WHEN $8 THEN $9 ELSE image_url END
		WHERE id = $10 AND created_by = $11
	`, patch.Name, patch.Description, patch.Latitude, patch.Longitude, patch.SpotType, setTips, tips, setImage, imageURL, id, ownerID)
	if err != nil {
		return models.Spot{}, fmt.Errorf("update spot: %w", db.MapError(err))
	}
	if err := s.checkOwned(ctx, res, id); err != nil {
		return models.Spot{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the spot when ownerID created it.
func (s *SpotStore) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM spots WHERE id = $1 AND created_by = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete spot: %w", db.MapError(err))
	}
	return s.checkOwned(ctx, res, id)
}

// clearable reports whether an optional column is being written and the
// value to store, with "" meaning NULL.
func clearable(v *string) (bool, *string) {
	if v == nil {
		return false, nil
	}
	if *v == "" {
		return true, nil
	}
	return true, v
}

// checkOwned turns a zero-row owner-scoped mutation into ErrNotOwner or
// db.ErrNotFound.
func (s *SpotStore) checkOwned(ctx context.Context, res interface{ RowsAffected() (int64, error) }, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM spots WHERE id = $1`, id).Scan(&exists)
	if err == nil {
		return ErrNotOwner
	}
	err = db.MapError(err)
	if errors.Is(err, db.ErrNotFound) {
		return err
	}
	return fmt.Errorf("check spot: %w", err)
}

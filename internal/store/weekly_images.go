package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"happythings/internal/models"
)

const weeklyImageColumns = `week_start, storage_id, image_url, prompt, thing_count, created_at, updated_at`

type WeeklyImageStore struct {
	db *sqlx.DB
}

func NewWeeklyImageStore(db *sqlx.DB) *WeeklyImageStore {
	return &WeeklyImageStore{db: db}
}

// SaveWeeklyImage inserts or replaces the image for img.WeekStart.
func (s *WeeklyImageStore) SaveWeeklyImage(ctx context.Context, img models.WeeklyImage) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO weekly_images (week_start, storage_id, image_url, prompt, thing_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (week_start) DO UPDATE SET
			storage_id = EXCLUDED.storage_id,
			image_url = EXCLUDED.image_url,
			prompt = EXCLUDED.prompt,
			thing_count = EXCLUDED.thing_count,
			updated_at = NOW()`,
		img.WeekStart, img.StorageID, img.ImageURL, img.Prompt, img.ThingCount)
	if err != nil {
		return fmt.Errorf("save weekly image: %w", err)
	}
	return nil
}

func (s *WeeklyImageStore) GetWeeklyImage(ctx context.Context, weekStart string) (*models.WeeklyImage, error) {
	var img models.WeeklyImage
	err := s.db.GetContext(ctx, &img,
		`SELECT `+weeklyImageColumns+` FROM weekly_images WHERE week_start = $1`, weekStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get weekly image: %w", err)
	}
	return &img, nil
}

func (s *WeeklyImageStore) ListWeeklyImages(ctx context.Context) ([]models.WeeklyImage, error) {
	out := []models.WeeklyImage{}
	if err := s.db.SelectContext(ctx, &out,
		`SELECT `+weeklyImageColumns+` FROM weekly_images ORDER BY week_start DESC`); err != nil {
		return nil, fmt.Errorf("list weekly images: %w", err)
	}
	return out, nil
}

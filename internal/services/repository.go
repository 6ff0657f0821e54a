// Package services holds the journal's business rules: pagination, the bonus
// edit window, admin sessions and weekly images. Persistence is reached only
// through the interfaces below, which both the Postgres and the in-memory
// stores satisfy.
package services

import (
	"context"
	"time"

	"happythings/internal/models"
)

type EntryRepository interface {
	ListEntries(ctx context.Context, before string, limit int) ([]models.Entry, error)
	GetEntryByDate(ctx context.Context, date string) (*models.Entry, error)
	UpsertEntry(ctx context.Context, date string, things []string, bonus *string) (string, error)
	EnsureEntry(ctx context.Context, date string) (string, error)
	SetBonus(ctx context.Context, date string, bonus *string) (string, error)
	SoftDeleteEntry(ctx context.Context, id string, at time.Time) error
	WeekEntries(ctx context.Context, start, end string) ([]models.Entry, error)
	ImportEntries(ctx context.Context, entries []models.EntryInput) (int, error)
	Overview(ctx context.Context, now time.Time) (models.Overview, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, digest string, expiresAt time.Time) error
	FindSession(ctx context.Context, digest string) (*models.Session, error)
	DeleteSession(ctx context.Context, digest string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type WeeklyImageRepository interface {
	SaveWeeklyImage(ctx context.Context, img models.WeeklyImage) error
	GetWeeklyImage(ctx context.Context, weekStart string) (*models.WeeklyImage, error)
	ListWeeklyImages(ctx context.Context) ([]models.WeeklyImage, error)
}

// BlobStore stores image bytes and returns a public URL for them.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// AdminChecker reports whether token belongs to a live admin session.
type AdminChecker interface {
	IsAdmin(ctx context.Context, token string) bool
}

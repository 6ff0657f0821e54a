package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"happythings/internal/db"
	"happythings/internal/models"
)

const entryColumns = `id, date, things, bonus, deleted_at, created_at, updated_at`

// upsertEntrySQL relies on the partial unique index over live dates, so two
// concurrent writers for the same new date end up on one row.
const upsertEntrySQL = `INSERT INTO entries (id, date, things, bonus)
VALUES ($1, $2, $3::jsonb, $4)
ON CONFLICT (date) WHERE deleted_at IS NULL
DO UPDATE SET
	things = EXCLUDED.things,
	bonus = COALESCE(EXCLUDED.bonus, entries.bonus),
	updated_at = NOW()
RETURNING id`

type EntryStore struct {
	db *sqlx.DB
}

func NewEntryStore(db *sqlx.DB) *EntryStore {
	return &EntryStore{db: db}
}

// ListEntries returns up to limit live entries, newest first, strictly older
// than before when before is set.
func (s *EntryStore) ListEntries(ctx context.Context, before string, limit int) ([]models.Entry, error) {
	out := []models.Entry{}
	var err error
	if before == "" {
		err = s.db.SelectContext(ctx, &out,
			`SELECT `+entryColumns+` FROM entries WHERE deleted_at IS NULL ORDER BY date DESC LIMIT $1`, limit)
	} else {
		err = s.db.SelectContext(ctx, &out,
			`SELECT `+entryColumns+` FROM entries WHERE deleted_at IS NULL AND date < $1 ORDER BY date DESC LIMIT $2`, before, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

// GetEntryByDate returns the live entry for date. Soft-deleted rows are never returned.
func (s *EntryStore) GetEntryByDate(ctx context.Context, date string) (*models.Entry, error) {
	var e models.Entry
	err := s.db.GetContext(ctx, &e,
		`SELECT `+entryColumns+` FROM entries WHERE date = $1 AND deleted_at IS NULL`, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &e, nil
}

// UpsertEntry writes things for date. bonus is only overwritten when non-nil.
func (s *EntryStore) UpsertEntry(ctx context.Context, date string, things []string, bonus *string) (string, error) {
	return upsertEntry(ctx, s.db, date, things, bonus)
}

func upsertEntry(ctx context.Context, q sqlx.QueryerContext, date string, things []string, bonus *string) (string, error) {
	var id string
	if err := sqlx.GetContext(ctx, q, &id, upsertEntrySQL, uuid.NewString(), date, models.Things(things), bonus); err != nil {
		return "", fmt.Errorf("upsert entry %s: %w", date, err)
	}
	return id, nil
}

// EnsureEntry creates an empty entry for date unless a live one exists.
func (s *EntryStore) EnsureEntry(ctx context.Context, date string) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, `
		WITH inserted AS (
			INSERT INTO entries (id, date) VALUES ($1, $2)
			ON CONFLICT (date) WHERE deleted_at IS NULL DO NOTHING
			RETURNING id
		)
		SELECT id FROM inserted
		UNION ALL
		SELECT id FROM entries WHERE date = $2 AND deleted_at IS NULL
		LIMIT 1`, uuid.NewString(), date)
	if errors.Is(err, sql.ErrNoRows) {
		// A concurrent insert committed after this statement's snapshot, so
		// neither branch saw it. It is visible to a fresh statement.
		err = s.db.GetContext(ctx, &id,
			`SELECT id FROM entries WHERE date = $1 AND deleted_at IS NULL`, date)
	}
	if err != nil {
		return "", fmt.Errorf("ensure entry %s: %w", date, err)
	}
	return id, nil
}

// SetBonus sets or clears the bonus of the live entry for date, creating an
// entry without things if needed. things is never modified.
func (s *EntryStore) SetBonus(ctx context.Context, date string, bonus *string) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, `INSERT INTO entries (id, date, things, bonus)
		VALUES ($1, $2, '[]'::jsonb, $3)
		ON CONFLICT (date) WHERE deleted_at IS NULL
		DO UPDATE SET bonus = EXCLUDED.bonus, updated_at = NOW()
		RETURNING id`, uuid.NewString(), date, bonus)
	if err != nil {
		return "", fmt.Errorf("set bonus %s: %w", date, err)
	}
	return id, nil
}

// SoftDeleteEntry stamps deleted_at. Unknown ids are ignored.
func (s *EntryStore) SoftDeleteEntry(ctx context.Context, id string, at time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE entries SET deleted_at = $2, updated_at = NOW() WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// WeekEntries returns live entries with start <= date <= end, oldest first.
func (s *EntryStore) WeekEntries(ctx context.Context, start, end string) ([]models.Entry, error) {
	out := []models.Entry{}
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+entryColumns+` FROM entries WHERE deleted_at IS NULL AND date >= $1 AND date <= $2 ORDER BY date ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("week entries: %w", err)
	}
	return out, nil
}

// ImportEntries upserts all entries in one transaction.
func (s *EntryStore) ImportEntries(ctx context.Context, entries []models.EntryInput) (int, error) {
	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, e := range entries {
			if _, err := upsertEntry(ctx, tx, e.Date, e.Things, e.Bonus); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import entries: %w", err)
	}
	return len(entries), nil
}

func (s *EntryStore) Overview(ctx context.Context, now time.Time) (models.Overview, error) {
	var o models.Overview
	err := s.db.GetContext(ctx, &o, `
		SELECT
			(SELECT COUNT(*) FROM entries WHERE deleted_at IS NULL) AS live_entries,
			(SELECT COUNT(*) FROM entries WHERE deleted_at IS NOT NULL) AS deleted_entries,
			(SELECT COUNT(*) FROM sessions WHERE expires_at >= $1) AS active_sessions,
			(SELECT COUNT(*) FROM weekly_images) AS weekly_images`, now)
	if err != nil {
		return o, fmt.Errorf("overview: %w", err)
	}
	return o, nil
}

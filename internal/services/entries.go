package services

import (
	"context"
	"errors"
	"fmt"

	"happythings/internal/clock"
	"happythings/internal/models"
)

// EntryPage is one page of entries, newest first.
type EntryPage struct {
	Page           []models.Entry `json:"page"`
	ContinueCursor string         `json:"continueCursor"`
	IsDone         bool           `json:"isDone"`
}

type EntryService struct {
	entries EntryRepository
	admin   AdminChecker
	cal     *clock.Calendar
}

func NewEntryService(entries EntryRepository, admin AdminChecker, cal *clock.Calendar) *EntryService {
	return &EntryService{entries: entries, admin: admin, cal: cal}
}

// List returns up to numItems live entries after cursor.
func (s *EntryService) List(ctx context.Context, cursor string, numItems int) (EntryPage, error) {
	before, err := decodeCursor(cursor)
	if err != nil {
		return EntryPage{}, err
	}
	limit := clampPageSize(numItems)
	rows, err := s.entries.ListEntries(ctx, before, limit+1)
	if err != nil {
		return EntryPage{}, err
	}
	page := EntryPage{Page: rows, IsDone: true}
	if len(rows) > limit {
		page.Page = rows[:limit]
		page.IsDone = false
		page.ContinueCursor = encodeCursor(page.Page[limit-1].Date)
	}
	return page, nil
}

func (s *EntryService) GetByDate(ctx context.Context, date string) (*models.Entry, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	return s.entries.GetEntryByDate(ctx, date)
}

// Upsert replaces the things of date. A blank bonus leaves the stored bonus alone.
func (s *EntryService) Upsert(ctx context.Context, date string, things []string, bonus *string) (string, error) {
	if err := ValidateDate(date); err != nil {
		return "", err
	}
	var b *string
	if bonus != nil {
		var err error
		if b, err = normalizeBonus(*bonus); err != nil {
			return "", err
		}
	}
	return s.entries.UpsertEntry(ctx, date, normalizeThings(things), b)
}

// Ensure creates an empty entry for date, or for today when date is empty.
func (s *EntryService) Ensure(ctx context.Context, date string) (string, error) {
	if date == "" {
		date = s.cal.Today()
	}
	if err := ValidateDate(date); err != nil {
		return "", err
	}
	return s.entries.EnsureEntry(ctx, date)
}

func (s *EntryService) SoftDelete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	return s.entries.SoftDeleteEntry(ctx, id, s.cal.Now())
}

// UpdateBonus sets the bonus for date. Without an admin session only today's
// entry may be edited.
func (s *EntryService) UpdateBonus(ctx context.Context, date, text, adminToken string) (string, error) {
	if err := ValidateDate(date); err != nil {
		return "", err
	}
	isAdmin := adminToken != "" && s.admin.IsAdmin(ctx, adminToken)
	if !isAdmin && date != s.cal.Today() {
		return "", ErrEditWindowClosed
	}
	bonus, err := normalizeBonus(text)
	if err != nil {
		return "", err
	}
	return s.entries.SetBonus(ctx, date, bonus)
}

// WeekEntries returns live entries in [start, end], oldest first.
func (s *EntryService) WeekEntries(ctx context.Context, start, end string) ([]models.Entry, error) {
	if err := errors.Join(ValidateDate(start), ValidateDate(end)); err != nil {
		return nil, err
	}
	if start > end {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrValidation, start, end)
	}
	return s.entries.WeekEntries(ctx, start, end)
}

// Import validates every entry before writing any of them.
func (s *EntryService) Import(ctx context.Context, entries []models.EntryInput) (int, error) {
	if len(entries) == 0 {
		return 0, fmt.Errorf("%w: no entries provided", ErrValidation)
	}
	clean := make([]models.EntryInput, 0, len(entries))
	for i, e := range entries {
		if err := ValidateDate(e.Date); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
		in := models.EntryInput{Date: e.Date, Things: normalizeThings(e.Things)}
		if e.Bonus != nil {
			b, err := normalizeBonus(*e.Bonus)
			if err != nil {
				return 0, fmt.Errorf("entry %d: %w", i, err)
			}
			in.Bonus = b
		}
		clean = append(clean, in)
	}
	return s.entries.ImportEntries(ctx, clean)
}

func (s *EntryService) Overview(ctx context.Context) (models.Overview, error) {
	return s.entries.Overview(ctx, s.cal.Now())
}

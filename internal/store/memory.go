package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"happythings/internal/models"
)

// Memory keeps entries, sessions and weekly images in process memory. It is
// used when no database is configured; data is lost on restart.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*models.Entry
	sessions map[string]models.Session
	images   map[string]models.WeeklyImage
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries:  map[string]*models.Entry{},
		sessions: map[string]models.Session{},
		images:   map[string]models.WeeklyImage{},
		now:      time.Now,
	}
}

func copyEntry(e *models.Entry) models.Entry {
	out := *e
	out.Things = append(models.Things{}, e.Things...)
	out.Bonus = cloneString(e.Bonus)
	if e.DeletedAt != nil {
		d := *e.DeletedAt
		out.DeletedAt = &d
	}
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// liveByDate must be called with mu held.
func (m *Memory) liveByDate(date string) *models.Entry {
	for _, e := range m.entries {
		if e.Date == date && e.DeletedAt == nil {
			return e
		}
	}
	return nil
}

// insert must be called with mu held.
func (m *Memory) insert(date string, things []string, bonus *string) *models.Entry {
	now := m.now()
	e := &models.Entry{
		ID:        uuid.NewString(),
		Date:      date,
		Things:    append(models.Things{}, things...),
		Bonus:     cloneString(bonus),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.entries[e.ID] = e
	return e
}

func (m *Memory) ListEntries(_ context.Context, before string, limit int) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Entry{}
	for _, e := range m.entries {
		if e.DeletedAt != nil || (before != "" && e.Date >= before) {
			continue
		}
		out = append(out, copyEntry(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetEntryByDate(_ context.Context, date string) (*models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.liveByDate(date)
	if e == nil {
		return nil, ErrNotFound
	}
	out := copyEntry(e)
	return &out, nil
}

func (m *Memory) UpsertEntry(_ context.Context, date string, things []string, bonus *string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsert(date, things, bonus), nil
}

// upsert must be called with mu held.
func (m *Memory) upsert(date string, things []string, bonus *string) string {
	if e := m.liveByDate(date); e != nil {
		e.Things = append(models.Things{}, things...)
		if bonus != nil {
			e.Bonus = cloneString(bonus)
		}
		e.UpdatedAt = m.now()
		return e.ID
	}
	return m.insert(date, things, bonus).ID
}

func (m *Memory) EnsureEntry(_ context.Context, date string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.liveByDate(date); e != nil {
		return e.ID, nil
	}
	return m.insert(date, nil, nil).ID, nil
}

func (m *Memory) SetBonus(_ context.Context, date string, bonus *string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.liveByDate(date); e != nil {
		e.Bonus = cloneString(bonus)
		e.UpdatedAt = m.now()
		return e.ID, nil
	}
	return m.insert(date, nil, bonus).ID, nil
}

func (m *Memory) SoftDeleteEntry(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		e.DeletedAt = &at
		e.UpdatedAt = m.now()
	}
	return nil
}

func (m *Memory) WeekEntries(_ context.Context, start, end string) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Entry{}
	for _, e := range m.entries {
		if e.DeletedAt == nil && e.Date >= start && e.Date <= end {
			out = append(out, copyEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *Memory) ImportEntries(_ context.Context, entries []models.EntryInput) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.upsert(e.Date, e.Things, e.Bonus)
	}
	return len(entries), nil
}

func (m *Memory) Overview(_ context.Context, now time.Time) (models.Overview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var o models.Overview
	for _, e := range m.entries {
		if e.DeletedAt == nil {
			o.LiveEntries++
		} else {
			o.DeletedEntries++
		}
	}
	for _, s := range m.sessions {
		if !s.ExpiresAt.Before(now) {
			o.ActiveSessions++
		}
	}
	o.WeeklyImages = len(m.images)
	return o, nil
}

func (m *Memory) CreateSession(_ context.Context, digest string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[digest] = models.Session{TokenDigest: digest, ExpiresAt: expiresAt, CreatedAt: m.now()}
	return nil
}

func (m *Memory) FindSession(_ context.Context, digest string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[digest]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *Memory) DeleteSession(_ context.Context, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, digest)
	return nil
}

func (m *Memory) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, s := range m.sessions {
		if s.ExpiresAt.Before(now) {
			delete(m.sessions, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) SaveWeeklyImage(_ context.Context, img models.WeeklyImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if prev, ok := m.images[img.WeekStart]; ok {
		img.CreatedAt = prev.CreatedAt
	} else {
		img.CreatedAt = now
	}
	img.UpdatedAt = now
	m.images[img.WeekStart] = img
	return nil
}

func (m *Memory) GetWeeklyImage(_ context.Context, weekStart string) (*models.WeeklyImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[weekStart]
	if !ok {
		return nil, ErrNotFound
	}
	return &img, nil
}

func (m *Memory) ListWeeklyImages(_ context.Context) ([]models.WeeklyImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.WeeklyImage, 0, len(m.images))
	for _, img := range m.images {
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart > out[j].WeekStart })
	return out, nil
}

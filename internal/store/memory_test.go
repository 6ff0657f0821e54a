package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happythings/internal/models"
)

func TestMemory_UpsertKeepsOneRowPerDate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id1, err := m.UpsertEntry(ctx, "2024-01-01", []string{"a"}, nil)
	require.NoError(t, err)
	id2, err := m.UpsertEntry(ctx, "2024-01-01", []string{"b", "c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	e, err := m.GetEntryByDate(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, models.Things{"b", "c"}, e.Things)
}

func TestMemory_ConcurrentUpsertsSameDate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = m.UpsertEntry(ctx, "2024-01-01", []string{fmt.Sprint(i)}, nil)
		}(i)
	}
	wg.Wait()

	o, err := m.Overview(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, o.LiveEntries)
}

func TestMemory_UpsertBonusOnlyWhenSupplied(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	bonus := "yay"

	_, err := m.UpsertEntry(ctx, "2024-01-01", []string{"a"}, &bonus)
	require.NoError(t, err)
	_, err = m.UpsertEntry(ctx, "2024-01-01", []string{"b"}, nil)
	require.NoError(t, err)

	e, err := m.GetEntryByDate(ctx, "2024-01-01")
	require.NoError(t, err)
	require.NotNil(t, e.Bonus)
	assert.Equal(t, "yay", *e.Bonus)
}

func TestMemory_SoftDeleteHidesEntry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.UpsertEntry(ctx, "2024-01-01", []string{"a"}, nil)
	require.NoError(t, err)
	require.NoError(t, m.SoftDeleteEntry(ctx, id, time.Now()))
	require.NoError(t, m.SoftDeleteEntry(ctx, id, time.Now()))
	require.NoError(t, m.SoftDeleteEntry(ctx, "unknown", time.Now()))

	_, err = m.GetEntryByDate(ctx, "2024-01-01")
	assert.ErrorIs(t, err, ErrNotFound)
	list, err := m.ListEntries(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	newID, err := m.UpsertEntry(ctx, "2024-01-01", []string{"again"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, id, newID)
}

func TestMemory_SetBonusLeavesThings(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	bonus := "note"

	_, err := m.UpsertEntry(ctx, "2024-01-01", []string{"a", "b"}, nil)
	require.NoError(t, err)
	_, err = m.SetBonus(ctx, "2024-01-01", &bonus)
	require.NoError(t, err)

	e, err := m.GetEntryByDate(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, models.Things{"a", "b"}, e.Things)
	assert.Equal(t, "note", *e.Bonus)

	_, err = m.SetBonus(ctx, "2024-01-01", nil)
	require.NoError(t, err)
	e, err = m.GetEntryByDate(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Nil(t, e.Bonus)
}

func TestMemory_EnsureEntryDoesNotOverwrite(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.UpsertEntry(ctx, "2024-01-01", []string{"a"}, nil)
	require.NoError(t, err)
	got, err := m.EnsureEntry(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	e, err := m.GetEntryByDate(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, models.Things{"a"}, e.Things)
}

func TestMemory_ListAndWeek(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, d := range []string{"2024-01-03", "2024-01-01", "2024-01-09", "2024-01-05"} {
		_, err := m.UpsertEntry(ctx, d, []string{d}, nil)
		require.NoError(t, err)
	}

	page, err := m.ListEntries(ctx, "2024-01-09", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "2024-01-05", page[0].Date)
	assert.Equal(t, "2024-01-03", page[1].Date)

	week, err := m.WeekEntries(ctx, "2024-01-01", "2024-01-07")
	require.NoError(t, err)
	require.Len(t, week, 3)
	assert.Equal(t, "2024-01-01", week[0].Date)
	assert.Equal(t, "2024-01-05", week[2].Date)
}

func TestMemory_Sessions(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, m.CreateSession(ctx, "old", now.Add(-time.Minute)))
	require.NoError(t, m.CreateSession(ctx, "new", now.Add(time.Hour)))

	n, err := m.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = m.FindSession(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	s, err := m.FindSession(ctx, "new")
	require.NoError(t, err)
	assert.True(t, s.ExpiresAt.Equal(now.Add(time.Hour)))

	require.NoError(t, m.DeleteSession(ctx, "new"))
	require.NoError(t, m.DeleteSession(ctx, "new"))
}

func TestMemory_WeeklyImages(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveWeeklyImage(ctx, models.WeeklyImage{WeekStart: "2024-01-01", ImageURL: "a"}))
	require.NoError(t, m.SaveWeeklyImage(ctx, models.WeeklyImage{WeekStart: "2024-01-08", ImageURL: "b"}))
	require.NoError(t, m.SaveWeeklyImage(ctx, models.WeeklyImage{WeekStart: "2024-01-01", ImageURL: "c"}))

	img, err := m.GetWeeklyImage(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "c", img.ImageURL)

	list, err := m.ListWeeklyImages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-01-08", list[0].WeekStart)
}

package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"happythings/internal/clock"
	"happythings/internal/crypto"
)

// testClock is a settable clock shared by a service and its collaborators.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{now: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newCalendar(t *testing.T, c clock.Clock) *clock.Calendar {
	t.Helper()
	cal, err := clock.NewCalendar(c, clock.DefaultTimezone)
	require.NoError(t, err)
	return cal
}

func newTokens(t *testing.T) *crypto.TokenService {
	t.Helper()
	ts, err := crypto.NewTokenService([]byte(strings.Repeat("k", 32)))
	require.NoError(t, err)
	return ts
}

type adminFunc func(ctx context.Context, token string) bool

func (f adminFunc) IsAdmin(ctx context.Context, token string) bool { return f(ctx, token) }

var noAdmin = adminFunc(func(context.Context, string) bool { return false })

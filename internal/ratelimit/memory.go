package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type attempts struct {
	count int
	last  time.Time
}

// Memory is a process-local limiter. It holds at most capacity clients and
// drops a client's record once the window has passed without new failures.
type Memory struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, attempts]
	policy Policy
	now    func() time.Time
}

func NewMemory(capacity int, policy Policy, now func() time.Time) *Memory {
	if capacity <= 0 {
		capacity = 10000
	}
	if now == nil {
		now = time.Now
	}
	policy = policy.withDefaults()
	return &Memory{
		cache:  expirable.NewLRU[string, attempts](capacity, nil, policy.Window),
		policy: policy,
		now:    now,
	}
}

func (m *Memory) Allow(_ context.Context, clientID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.cache.Get(clientID)
	if !ok {
		return true, nil
	}
	if m.now().Sub(a.last) >= m.policy.Window {
		m.cache.Remove(clientID)
		return true, nil
	}
	return a.count < m.policy.MaxFailures, nil
}

func (m *Memory) RecordFailure(_ context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	a, ok := m.cache.Get(clientID)
	if !ok || now.Sub(a.last) >= m.policy.Window {
		a = attempts{}
	}
	a.count++
	a.last = now
	m.cache.Add(clientID, a)
	return nil
}

func (m *Memory) Reset(_ context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Remove(clientID)
	return nil
}

// Len reports how many clients are currently tracked.
func (m *Memory) Len() int {
	return m.cache.Len()
}

// Package ratelimit tracks failed login attempts per client and decides when a
// client is locked out.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultMaxFailures = 5
	DefaultWindow      = 15 * time.Minute
)

// Limiter is consulted before every login attempt.
type Limiter interface {
	// Allow reports whether clientID may attempt a login now.
	Allow(ctx context.Context, clientID string) (bool, error)
	// RecordFailure counts one failed attempt and restarts the inactivity window.
	RecordFailure(ctx context.Context, clientID string) error
	// Reset clears the failure count, e.g. after a successful login.
	Reset(ctx context.Context, clientID string) error
}

type Policy struct {
	MaxFailures int
	Window      time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.MaxFailures <= 0 {
		p.MaxFailures = DefaultMaxFailures
	}
	if p.Window <= 0 {
		p.Window = DefaultWindow
	}
	return p
}

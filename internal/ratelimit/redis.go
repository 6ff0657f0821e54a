package ratelimit

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "login_attempts:"

// Redis keeps failure counters in Redis so lockouts survive restarts and are
// shared between instances. Key expiry implements the inactivity window.
type Redis struct {
	client *redis.Client
	policy Policy
}

func NewRedis(client *redis.Client, policy Policy) *Redis {
	return &Redis{client: client, policy: policy.withDefaults()}
}

func (r *Redis) key(clientID string) string { return redisKeyPrefix + clientID }

func (r *Redis) Allow(ctx context.Context, clientID string) (bool, error) {
	n, err := r.client.Get(ctx, r.key(clientID)).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read login attempts: %w", err)
	}
	return n < r.policy.MaxFailures, nil
}

func (r *Redis) RecordFailure(ctx context.Context, clientID string) error {
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, r.key(clientID))
	pipe.PExpire(ctx, r.key(clientID), r.policy.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	return nil
}

func (r *Redis) Reset(ctx context.Context, clientID string) error {
	if err := r.client.Del(ctx, r.key(clientID)).Err(); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

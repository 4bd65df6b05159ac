package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptWindow = 15 * time.Minute
	maxAttempts   = 10
)

// LoginLimiter throttles repeated failed password attempts per user name,
// backed by Redis. Key format: login_attempts:<name>
type LoginLimiter struct {
	client *redis.Client
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client) *LoginLimiter {
	return &LoginLimiter{client: client}
}

// TooManyAttempts reports whether the name has reached maxAttempts failures
// within the current window.
func (l *LoginLimiter) TooManyAttempts(ctx context.Context, name string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(name)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("attempt check: %w", err)
	}
	return n >= maxAttempts, nil
}

// RecordFailure counts one failed attempt. The window starts at the first
// failure and is not extended by later ones.
func (l *LoginLimiter) RecordFailure(ctx context.Context, name string) error {
	key := l.key(name)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, attemptWindow).Err(); err != nil {
			return fmt.Errorf("set attempt window: %w", err)
		}
	}
	return nil
}

// Clear resets the counter after a successful login.
func (l *LoginLimiter) Clear(ctx context.Context, name string) error {
	if err := l.client.Del(ctx, l.key(name)).Err(); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}
	return nil
}

func (l *LoginLimiter) key(name string) string {
	return "login_attempts:" + name
}

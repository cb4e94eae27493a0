package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	failureWindow = 15 * time.Minute
	maxFailures   = 5
)

// LoginLimiter throttles repeated failed logins per email, backed by a Redis
// counter that expires with the window.
// Key format: login_failures:<normalized_email>
type LoginLimiter struct {
	client *redis.Client
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client) *LoginLimiter {
	return &LoginLimiter{client: client}
}

// TooManyFailures reports whether the address has used up its failure budget
// for the current window.
func (l *LoginLimiter) TooManyFailures(ctx context.Context, email string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(email)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("limiter check: %w", err)
	}
	return n >= maxFailures, nil
}

// RecordFailure counts one failed attempt. The first failure in a window
// starts the expiry clock.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, l.key(email))
	pipe.Expire(ctx, l.key(email), failureWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("limiter record: %w", err)
	}
	return nil
}

// Reset clears the failure count after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if err := l.client.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("limiter reset: %w", err)
	}
	return nil
}

func (l *LoginLimiter) key(email string) string {
	return fmt.Sprintf("login_failures:%s", email)
}

// AngelaMos | 2026
// limiter.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter enforces a fixed-window counter per client IP on the login
// endpoint. The increment and the window expiry are pipelined so the first
// attempt in a window both creates the counter and arms its expiration in a
// single round trip.
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(
	client *redis.Client,
	maxAttempts int,
	window time.Duration,
) *LoginLimiter {
	return &LoginLimiter{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow increments the caller's attempt counter and reports whether this
// attempt is within the limit. retryAfter is the remaining window when the
// limit is exceeded, zero otherwise. A Redis failure is returned to the
// caller rather than silently letting the attempt through.
func (l *LoginLimiter) Allow(
	ctx context.Context,
	clientIP string,
) (allowed bool, retryAfter time.Duration, err error) {
	key := fmt.Sprintf("login_attempts:%s", clientIP)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)

	if _, pipeErr := pipe.Exec(ctx); pipeErr != nil {
		return false, 0, fmt.Errorf("rate limit check: %w", pipeErr)
	}

	count := incr.Val()
	if count <= int64(l.maxAttempts) {
		return true, 0, nil
	}

	ttl, ttlErr := l.client.TTL(ctx, key).Result()
	if ttlErr != nil || ttl < 0 {
		ttl = l.window
	}

	return false, ttl, nil
}

// Reset clears the attempt counter, used after a successful login so a
// user who eventually remembers their password is not penalized into the
// next window.
func (l *LoginLimiter) Reset(ctx context.Context, clientIP string) error {
	key := fmt.Sprintf("login_attempts:%s", clientIP)
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("rate limit reset: %w", err)
	}
	return nil
}

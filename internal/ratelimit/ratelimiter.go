package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter guards the log ingestion endpoint against noisy clients.
type Limiter interface {
	// Allow reports whether the keyed caller may proceed
	Allow(ctx context.Context, key string) bool
}

// RateLimiter implements fixed-window rate limiting on Redis. Each key gets
// a per-minute counter; the first increment in a window sets the expiry.
type RateLimiter struct {
	client *redis.Client
	window time.Duration
}

// NewRateLimiter creates a rate limiter with a one-minute window.
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{
		client: client,
		window: time.Minute,
	}
}

func (r *RateLimiter) redisKey(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}

// AllowWithDetails checks the keyed counter against limit and returns the
// remaining budget and window reset time. A limit of 0 means unlimited;
// remaining is then -1 and resetAt is the zero time. On Redis errors the
// request is allowed; rate limiting degrades open.
func (r *RateLimiter) AllowWithDetails(ctx context.Context, key string, limit int) (bool, int, time.Time, error) {
	if limit <= 0 {
		return true, -1, time.Time{}, nil
	}

	redisKey := r.redisKey(key)

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, 0, time.Time{}, fmt.Errorf("failed to increment counter: %w", err)
	}

	// First request in the window starts the clock
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return true, 0, time.Time{}, fmt.Errorf("failed to set window expiry: %w", err)
		}
	}

	ttl, err := r.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		ttl = r.window
	}
	resetAt := time.Now().Add(ttl)

	if count > int64(limit) {
		return false, 0, resetAt, nil
	}

	remaining := limit - int(count)
	return true, remaining, resetAt, nil
}

// Allow is the boolean form used by middleware; errors degrade open.
func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	allowed, _, _, _ := r.AllowWithDetails(ctx, key, 0)
	return allowed
}

// AllowN checks against an explicit limit, degrading open on errors.
func (r *RateLimiter) AllowN(ctx context.Context, key string, limit int) bool {
	allowed, _, _, err := r.AllowWithDetails(ctx, key, limit)
	if err != nil {
		return true
	}
	return allowed
}

// GetCurrentUsage returns the number of requests in the current window.
func (r *RateLimiter) GetCurrentUsage(ctx context.Context, key string) (int64, error) {
	count, err := r.client.Get(ctx, r.redisKey(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	return count, nil
}

// Reset clears the counter for a key.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.redisKey(key)).Err()
}

// WithLimit binds a fixed per-window limit to a RateLimiter so it can be
// used where only the Limiter interface is expected.
func WithLimit(r *RateLimiter, limit int) Limiter {
	return &fixedLimiter{limiter: r, limit: limit}
}

type fixedLimiter struct {
	limiter *RateLimiter
	limit   int
}

func (l *fixedLimiter) Allow(ctx context.Context, key string) bool {
	return l.limiter.AllowN(ctx, key, l.limit)
}

// NoopLimiter allows everything. Used when rate limiting is disabled or no
// Redis is configured.
type NoopLimiter struct{}

func NewNoopLimiter() *NoopLimiter {
	return &NoopLimiter{}
}

func (l *NoopLimiter) Allow(ctx context.Context, key string) bool {
	return true
}

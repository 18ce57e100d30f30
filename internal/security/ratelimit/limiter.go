package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/orgvault/internal/infrastructure/redis"
)

const keyPrefix = "login_attempts:"

// Limiter throttles login attempts per email with a Redis fixed-window
// counter. Tokens are not revocable, so slowing credential guessing is the
// only brake on the login surface.
type Limiter struct {
	redis  *redis.Client
	max    int64
	window time.Duration
	logger *slog.Logger
}

func NewLimiter(client *redis.Client, maxAttempts int, window time.Duration, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{redis: client, max: int64(maxAttempts), window: window, logger: logger}
}

// Allow reports whether another attempt for email is permitted. Redis
// failures fail open: an unreachable limiter must not lock every admin out.
func (l *Limiter) Allow(ctx context.Context, email string) bool {
	if l == nil || l.redis == nil || email == "" {
		return true
	}

	key := keyPrefix + email
	count, err := l.redis.Incr(ctx, key)
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing attempt", slog.String("error", err.Error()))
		return true
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window); err != nil {
			l.logger.Warn("failed to set attempt window", slog.String("error", err.Error()))
		}
	}
	if count > l.max {
		l.logger.Warn("login attempts throttled", slog.String("email", email), slog.Int64("count", count))
		return false
	}
	return true
}

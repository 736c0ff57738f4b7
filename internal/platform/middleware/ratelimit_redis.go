package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// fixed-window counter; INCR and PEXPIRE must be atomic so concurrent
// first-requests don't leave an unexpiring key.
var redisFixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisRateLimiter is a fixed-window rate limiter backed by Redis, for
// deployments where several server instances run behind one address.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisRateLimiter creates a limiter allowing limit requests per window.
func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window, prefix: "rl"}
}

func (rl *RedisRateLimiter) incr(ctx context.Context, key string) (int64, error) {
	return redisFixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Int64()
}

// Middleware returns the echo middleware. When Redis is unreachable the
// limiter fails open and logs, so a cache outage does not take the API down.
func (rl *RedisRateLimiter) Middleware(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rl.prefix + ":" + c.RealIP()
			count, err := rl.incr(c.Request().Context(), key)
			if err != nil {
				logger.Warn().Err(err).Msg("redis rate limiter unavailable, failing open")
				return next(c)
			}

			remaining := rl.limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if int(count) > rl.limit {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

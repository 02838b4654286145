package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CheckRateLimit counts one hit against a fixed window and reports whether
// the caller is still within limit.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	// INCR and set EXPIRE if new
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

// RateLimit limits requests per client IP on the named resource. A nil client
// or a non-positive limit disables it, and Redis failures let requests through.
func RateLimit(rdb *redis.Client, log logrus.FieldLogger, resource string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rdb == nil || limit <= 0 {
			return next
		}
		return func(c echo.Context) error {
			allowed, err := CheckRateLimit(c.Request().Context(), rdb, resource, "ip:"+c.RealIP(), limit, window)
			if err != nil {
				log.WithError(err).WithField("resource", resource).Warn("rate limit check failed, allowing request")
				return next(c)
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

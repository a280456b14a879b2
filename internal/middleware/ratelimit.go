package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tbrintet/zik.eirb.fr/internal/config"
	"github.com/tbrintet/zik.eirb.fr/internal/utils"
)

// RateLimit returns a fixed-window limiter backed by Redis. Each
// client gets at most cfg.Limit requests per cfg.Window on a route;
// windows are keyed by the authenticated user id when present and by
// the client IP otherwise. Redis failures let the request through:
// limiting is protection, not a dependency.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			who := c.RealIP()
			if ident, ok := IdentityFrom(c); ok {
				who = fmt.Sprintf("u%d", ident.ID)
			}
			key := fmt.Sprintf("%s:%s:%s:%s", cfg.Prefix, c.Request().Method, c.Path(), who)
			ctx := c.Request().Context()
			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if n == 1 {
				// A counter without an expiry would limit the client
				// forever; when the EXPIRE is lost, drop the key and
				// fall open instead.
				if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
					rdb.Del(ctx, key)
					return next(c)
				}
			}
			if n > int64(cfg.Limit) {
				retry := cfg.Window
				if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
					retry = ttl
				}
				c.Response().Header().Set("Retry-After",
					strconv.Itoa(int(retry/time.Second)+1))
				return utils.Fail(c, "Trop de requêtes, veuillez réessayer plus tard",
					"RATE_LIMIT/EXCEEDED", http.StatusTooManyRequests)
			}
			return next(c)
		}
	}
}

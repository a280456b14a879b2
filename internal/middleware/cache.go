package middleware

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tbrintet/zik.eirb.fr/internal/config"
)

// captureWriter duplicates the response body while forwarding it to
// the client so a successful payload can be stored afterwards.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

// cacheKey builds the Redis key for a request. The concrete request
// path is used, not the route template: parameterized routes must get
// one entry per id or every id would share the same body.
func cacheKey(prefix string, r *http.Request) string {
	return fmt.Sprintf("%s:%s:%s", prefix, r.URL.Path, r.URL.RawQuery)
}

// CacheResponses returns a middleware that serves successful GET
// responses from Redis for cfg.TTL. Entries are keyed by the concrete
// request path and query string; every endpoint under this middleware
// answers JSON, so only the body and a 200 status are stored. Writes
// go through InvalidateOnWrite, which clears the prefix, so a stale
// entry can only outlive its resource for at most cfg.TTL when an
// invalidation is lost. Cache trouble is never a request failure: on
// any Redis error the handler runs normally.
func CacheResponses(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cacheKey(cfg.Prefix, c.Request())
			ctx := c.Request().Context()
			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
				c.Response().Header().Set("X-Cache", "HIT")
				return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
			}
			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				return err
			}
			if cw.status == http.StatusOK && cw.buf.Len() > 0 {
				rdb.Set(ctx, key, cw.buf.Bytes(), cfg.TTL)
			}
			return nil
		}
	}
}

// InvalidateOnWrite returns a middleware for mutating routes that
// drops every cached entry under cfg.Prefix after a successful write,
// so reads never serve a deleted or outdated resource for the full
// TTL. The entry count under one prefix is tiny, a KEYS scan is fine
// here. Redis errors are ignored: entries then simply age out.
func InvalidateOnWrite(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status >= http.StatusBadRequest {
				return nil
			}
			ctx := c.Request().Context()
			if keys, err := rdb.Keys(ctx, cfg.Prefix+":*").Result(); err == nil && len(keys) > 0 {
				rdb.Del(ctx, keys...)
			}
			return nil
		}
	}
}

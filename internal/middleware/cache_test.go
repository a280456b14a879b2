package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tbrintet/zik.eirb.fr/internal/config"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache"}
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// serveCached builds an echo app with the reservation read route
// behind the cache, answering with a body derived from the id so
// responses for distinct ids are distinguishable.
func serveCached(rdb *redis.Client, hits *int) *echo.Echo {
	e := echo.New()
	e.GET("/v1/reservations/:id", func(c echo.Context) error {
		*hits++
		return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
	}, CacheResponses(testCacheConfig(), rdb))
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCacheResponsesKeysByConcretePath(t *testing.T) {
	rdb := newTestRedis(t)
	var hits int
	e := serveCached(rdb, &hits)

	first := get(e, "/v1/reservations/1")
	if e, g := `{"id":"1"}`, strings.TrimSpace(first.Body.String()); e != g {
		t.Fatalf("first fetch: expected %s, got %s", e, g)
	}

	// A different id must never be served the previous id's body.
	second := get(e, "/v1/reservations/2")
	if got := second.Body.String(); got == first.Body.String() {
		t.Fatalf("second fetch returned the first reservation's cached body: %s", got)
	}
	if e, g := 2, hits; e != g {
		t.Errorf("handler hits: expected %d, got %d", e, g)
	}
}

func TestCacheResponsesServesHit(t *testing.T) {
	rdb := newTestRedis(t)
	var hits int
	e := serveCached(rdb, &hits)

	get(e, "/v1/reservations/1")
	rec := get(e, "/v1/reservations/1")
	if e, g := "HIT", rec.Header().Get("X-Cache"); e != g {
		t.Errorf("X-Cache: expected '%s', got '%s'", e, g)
	}
	if e, g := 1, hits; e != g {
		t.Errorf("handler hits: expected %d, got %d", e, g)
	}
}

func TestCacheResponsesSkipsNon200(t *testing.T) {
	rdb := newTestRedis(t)
	var hits int
	e := echo.New()
	e.GET("/v1/reservations/:id", func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusNotFound, map[string]string{"code": "RESERVATION/NOT_FOUND"})
	}, CacheResponses(testCacheConfig(), rdb))

	get(e, "/v1/reservations/999")
	rec := get(e, "/v1/reservations/999")
	if e, g := http.StatusNotFound, rec.Code; e != g {
		t.Errorf("status: expected %d, got %d", e, g)
	}
	if e, g := 2, hits; e != g {
		t.Errorf("handler hits: expected %d, got %d (404 was cached)", e, g)
	}
}

func TestInvalidateOnWriteDropsEntries(t *testing.T) {
	rdb := newTestRedis(t)
	var hits int
	e := serveCached(rdb, &hits)
	e.DELETE("/v1/reservations/:id", func(c echo.Context) error {
		return c.JSON(http.StatusOK, c.Param("id"))
	}, InvalidateOnWrite(testCacheConfig(), rdb))

	get(e, "/v1/reservations/1")

	req := httptest.NewRequest(http.MethodDelete, "/v1/reservations/1", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	// The cached entry is gone, the handler answers again.
	get(e, "/v1/reservations/1")
	if e, g := 2, hits; e != g {
		t.Errorf("handler hits: expected %d, got %d (stale entry survived the write)", e, g)
	}
}

func TestInvalidateOnWriteKeepsEntriesOnFailure(t *testing.T) {
	rdb := newTestRedis(t)
	var hits int
	e := serveCached(rdb, &hits)
	e.DELETE("/v1/reservations/:id", func(c echo.Context) error {
		return c.JSON(http.StatusForbidden, "nope")
	}, InvalidateOnWrite(testCacheConfig(), rdb))

	get(e, "/v1/reservations/1")

	req := httptest.NewRequest(http.MethodDelete, "/v1/reservations/1", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	get(e, "/v1/reservations/1")
	if e, g := 1, hits; e != g {
		t.Errorf("handler hits: expected %d, got %d (rejected write invalidated the cache)", e, g)
	}
}

func TestCacheResponsesDisabledWithoutRedis(t *testing.T) {
	var hits int
	e := serveCached(nil, &hits)
	get(e, "/v1/reservations/1")
	get(e, "/v1/reservations/1")
	if e, g := 2, hits; e != g {
		t.Errorf("handler hits: expected %d, got %d", e, g)
	}
}

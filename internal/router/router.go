package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tbrintet/zik.eirb.fr/internal/config"
	"github.com/tbrintet/zik.eirb.fr/internal/handler"
	"github.com/tbrintet/zik.eirb.fr/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers and
// monitoring to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints under /v1/auth.
// None of them require an existing session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterReservations registers the reservation operations under
// /v1/reservations. The Identify middleware attaches the caller
// identity when a Bearer token is present but never rejects on its
// own: each operation decides whether an anonymous caller is an error
// and answers with its own code. Read endpoints additionally go
// through the Redis response cache and write endpoints invalidate it;
// the whole group is rate limited.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, cfg config.Config, rdb *redis.Client) {
	g := e.Group("/v1/reservations")
	g.Use(middleware.Identify(cfg.JWTSecret))
	g.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	cacheCfg := config.LoadCacheConfig()
	cache := middleware.CacheResponses(cacheCfg, rdb)
	invalidate := middleware.InvalidateOnWrite(cacheCfg, rdb)
	g.GET("", h.List, cache)
	g.GET("/:id", h.Get, cache)
	g.POST("", h.Create, invalidate)
	g.DELETE("/:id", h.Delete, invalidate)
	g.GET("/:id/users", h.ListUsers, cache)
	g.POST("/:id/users", h.AddUser, invalidate)
	g.DELETE("/:id/users", h.RemoveUser, invalidate)
}

// Package router wires the handlers and middleware onto echo.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
)

// Deps is everything Register needs.  Redis may be nil, which disables
// the rate limiter and the response cache.  An empty JWTSecret leaves the
// API unauthenticated.
type Deps struct {
	Reservations *handler.ReservationHandler
	Rooms        *handler.RoomHandler
	Guests       *handler.GuestHandler
	Billing      *handler.BillingHandler

	DB        handler.Pinger
	Log       *zap.Logger
	Redis     *redis.Client
	JWTSecret string
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// Register mounts /healthz and the /v1 API.
func Register(e *echo.Echo, d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	e.GET("/healthz", handler.Health(d.DB))

	g := e.Group("/v1", middleware.RequestID(), middleware.RequestLogger(d.Log))
	if d.JWTSecret != "" {
		g.Use(middleware.JWTAuth(d.JWTSecret), middleware.RequireRole(middleware.RoleAdmin, middleware.RoleReceptionist))
	} else {
		d.Log.Warn("JWT_SECRET is empty, the API is not authenticated")
	}
	// After auth so per-user keys see the staff id.
	g.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))

	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	registerReservations(g, d.Reservations)
	registerCatalogue(g, d.Rooms, d.Guests, d.Billing, cache)
	registerBilling(g, d.Billing)
}

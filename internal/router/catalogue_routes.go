package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
)

// registerCatalogue mounts rooms, guests and the service catalogue.  Only
// the room and service listings go through the response cache.
func registerCatalogue(g *echo.Group, rooms *handler.RoomHandler, guests *handler.GuestHandler, b *handler.BillingHandler, cache echo.MiddlewareFunc) {
	// ---- Rooms ----
	g.GET("/rooms", rooms.List, cache)
	g.GET("/rooms/:number", rooms.Get)
	g.POST("/rooms", rooms.Create)
	g.PUT("/rooms/:number", rooms.Update)

	// ---- Guests ----
	g.GET("/guests", guests.List)
	g.GET("/guests/:id", guests.Get)
	g.POST("/guests", guests.Create)
	g.PUT("/guests/:id", guests.Update)

	// ---- Services ----
	g.GET("/services", b.ListServices, cache)
	g.POST("/services", b.CreateService)
	g.PUT("/services/:id", b.UpdateService)
}

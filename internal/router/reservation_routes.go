package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
)

// registerReservations mounts the reservation lifecycle and the
// availability and quote lookups.  None of these are cached.
func registerReservations(g *echo.Group, h *handler.ReservationHandler) {
	g.POST("/reservations", h.Create)
	g.GET("/reservations", h.List)
	g.GET("/reservations/:id", h.Get)
	g.PUT("/reservations/:id", h.Update)

	g.POST("/reservations/:id/confirm", h.Confirm)
	g.POST("/reservations/:id/check-in", h.CheckIn)
	g.POST("/reservations/:id/check-out", h.CheckOut)
	g.POST("/reservations/:id/cancel", h.Cancel)

	g.GET("/rooms/:number/availability", h.Availability)
	g.GET("/rooms/:number/quote", h.Quote)
}

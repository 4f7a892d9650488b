package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
)

// registerBilling mounts payments, service charges, folios and the
// dashboard.
func registerBilling(g *echo.Group, h *handler.BillingHandler) {
	g.POST("/payments", h.RecordPayment)
	g.POST("/payments/:id/refund", h.Refund)
	g.GET("/reservations/:id/payments", h.Payments)

	g.POST("/reservations/:id/services", h.AddCharge)
	g.GET("/reservations/:id/services", h.Charges)
	g.GET("/reservations/:id/folio", h.Folio)

	g.GET("/dashboard", h.Dashboard)
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/billing"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// Ledger is the part of *billing.Ledger the handlers call.
type Ledger interface {
	RecordPayment(ctx context.Context, in billing.PaymentInput) (*model.Payment, error)
	Refund(ctx context.Context, paymentID uint64) (*model.Payment, error)
	PaymentsFor(ctx context.Context, reservationID uint64) ([]model.Payment, error)
	AddCharge(ctx context.Context, in billing.ChargeInput) (*model.ReservationService, error)
	ChargesFor(ctx context.Context, reservationID uint64) ([]model.ReservationService, error)
	Folio(ctx context.Context, reservationID uint64) (*billing.Folio, error)
	Dashboard(ctx context.Context) (*billing.Stats, error)
}

// ServiceStore is the ancillary service catalogue.
type ServiceStore interface {
	Create(ctx context.Context, s *model.Service) error
	Update(ctx context.Context, s *model.Service) error
	List(ctx context.Context, f repository.ServiceFilter) ([]model.Service, error)
}

// BillingHandler serves payments, the service catalogue, service charges,
// folios and the dashboard.
type BillingHandler struct {
	Ledger   Ledger
	Services ServiceStore
	Log      *zap.Logger
}

// NewBillingHandler panics if a dependency is missing.
func NewBillingHandler(l Ledger, services ServiceStore, log *zap.Logger) *BillingHandler {
	if l == nil || services == nil {
		panic("nil dependency passed to NewBillingHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BillingHandler{Ledger: l, Services: services, Log: log}
}

type paymentBody struct {
	ReservationID uint64  `json:"reservation_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	Method        string  `json:"payment_method" validate:"required,oneof=CASH CREDIT_CARD DEBIT_CARD ONLINE"`
	Status        string  `json:"status" validate:"omitempty,oneof=PENDING COMPLETED"`
	TransactionID string  `json:"transaction_id" validate:"max=100"`
	Notes         string  `json:"notes" validate:"max=2000"`
}

func (b *paymentBody) normalize() {
	b.Method = strings.ToUpper(strings.TrimSpace(b.Method))
	b.Status = strings.ToUpper(strings.TrimSpace(b.Status))
	b.TransactionID = strings.TrimSpace(b.TransactionID)
	b.Notes = strings.TrimSpace(b.Notes)
}

// RecordPayment handles POST /v1/payments.
func (h *BillingHandler) RecordPayment(c echo.Context) error {
	var body paymentBody
	if msg := bind(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	p, err := h.Ledger.RecordPayment(c.Request().Context(), billing.PaymentInput{
		ReservationID: body.ReservationID,
		Amount:        body.Amount,
		Method:        model.PaymentMethod(body.Method),
		Status:        model.PaymentStatus(body.Status),
		TransactionID: body.TransactionID,
		Notes:         body.Notes,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Refund handles POST /v1/payments/:id/refund.
func (h *BillingHandler) Refund(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid payment id")
	}
	p, err := h.Ledger.Refund(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Payments handles GET /v1/reservations/:id/payments.
func (h *BillingHandler) Payments(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	list, err := h.Ledger.PaymentsFor(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "count": len(list)})
}

type chargeBody struct {
	ServiceID uint64 `json:"service_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// normalize defaults a missing quantity to one.
func (b *chargeBody) normalize() {
	if b.Quantity == 0 {
		b.Quantity = 1
	}
	b.Notes = strings.TrimSpace(b.Notes)
}

// AddCharge handles POST /v1/reservations/:id/services.
func (h *BillingHandler) AddCharge(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	var body chargeBody
	if msg := bind(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	ch, err := h.Ledger.AddCharge(c.Request().Context(), billing.ChargeInput{
		ReservationID: id,
		ServiceID:     body.ServiceID,
		Quantity:      body.Quantity,
		Notes:         body.Notes,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, ch)
}

// Charges handles GET /v1/reservations/:id/services.
func (h *BillingHandler) Charges(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	list, err := h.Ledger.ChargesFor(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "count": len(list)})
}

// Folio handles GET /v1/reservations/:id/folio.
func (h *BillingHandler) Folio(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	f, err := h.Ledger.Folio(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, f)
}

// Dashboard handles GET /v1/dashboard.
func (h *BillingHandler) Dashboard(c echo.Context) error {
	s, err := h.Ledger.Dashboard(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}

type serviceBody struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Price       float64 `json:"price" validate:"gt=0"`
	Category    string  `json:"category" validate:"oneof=ROOM_SERVICE LAUNDRY SPA TRANSPORT MINIBAR HOUSEKEEPING OTHER"`
	IsActive    *bool   `json:"is_active"`
}

// normalize files a service without a category under OTHER.
func (b *serviceBody) normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Description = strings.TrimSpace(b.Description)
	b.Category = strings.ToUpper(strings.TrimSpace(b.Category))
	if b.Category == "" {
		b.Category = string(model.CategoryOther)
	}
}

func (b serviceBody) service() *model.Service {
	return &model.Service{
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		Category:    model.ServiceCategory(b.Category),
		IsActive:    b.IsActive == nil || *b.IsActive,
	}
}

// ListServices handles GET /v1/services[?active=&category=].
func (h *BillingHandler) ListServices(c echo.Context) error {
	var f repository.ServiceFilter
	if a := c.QueryParam("active"); a != "" {
		v, err := strconv.ParseBool(a)
		if err != nil {
			return badRequest(c, "active must be true or false")
		}
		f.Active = &v
	}
	if cat := c.QueryParam("category"); cat != "" {
		f.Category = model.ServiceCategory(strings.ToUpper(cat))
		if !f.Category.Valid() {
			return badRequest(c, "unknown category "+strconv.Quote(cat))
		}
	}
	list, err := h.Services.List(c.Request().Context(), f)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "count": len(list)})
}

// CreateService handles POST /v1/services.  Services are active unless
// is_active is false.
func (h *BillingHandler) CreateService(c echo.Context) error {
	var body serviceBody
	if msg := bind(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	s := body.service()
	if err := h.Services.Create(c.Request().Context(), s); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// UpdateService handles PUT /v1/services/:id.
func (h *BillingHandler) UpdateService(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid service id")
	}
	var body serviceBody
	if msg := bind(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	s := body.service()
	s.ID = id
	if err := h.Services.Update(c.Request().Context(), s); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}

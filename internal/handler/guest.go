package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// GuestStore is the guest register.
type GuestStore interface {
	Create(ctx context.Context, g *model.Guest) error
	Update(ctx context.Context, g *model.Guest) error
	GetByID(ctx context.Context, id uint64) (*model.Guest, error)
	Search(ctx context.Context, term string) ([]model.Guest, error)
}

// GuestHandler manages guest records.
type GuestHandler struct {
	Guests GuestStore
	Log    *zap.Logger
}

// NewGuestHandler panics if guests is nil.
func NewGuestHandler(guests GuestStore, log *zap.Logger) *GuestHandler {
	if guests == nil {
		panic("nil repository passed to NewGuestHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GuestHandler{Guests: guests, Log: log}
}

type guestBody struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"required,phone"`
	IDNumber  string `json:"id_number" validate:"max=100"`
	Address   string `json:"address" validate:"max=500"`
}

func (b *guestBody) normalize() {
	for _, f := range []*string{&b.FirstName, &b.LastName, &b.Email, &b.Phone, &b.IDNumber, &b.Address} {
		*f = strings.TrimSpace(*f)
	}
}

func (b guestBody) guest() *model.Guest {
	return &model.Guest{
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Email:     b.Email,
		Phone:     b.Phone,
		IDNumber:  b.IDNumber,
		Address:   b.Address,
	}
}

// List handles GET /v1/guests[?q=], matching name, email or phone.
func (h *GuestHandler) List(c echo.Context) error {
	guests, err := h.Guests.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": guests, "count": len(guests)})
}

// Get handles GET /v1/guests/:id.
func (h *GuestHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid guest id")
	}
	g, err := h.Guests.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, g)
}

// Create handles POST /v1/guests.  A duplicate email is a 409.
func (h *GuestHandler) Create(c echo.Context) error {
	var body guestBody
	if msg := bind(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	g := body.guest()
	if err := h.Guests.Create(c.Request().Context(), g); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, g)
}

// Update handles PUT /v1/guests/:id.
func (h *GuestHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid guest id")
	}
	var body guestBody
	if msg := bind(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	g := body.guest()
	g.ID = id
	if err := h.Guests.Update(c.Request().Context(), g); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, g)
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// Bookings is the part of *booking.Orchestrator the handlers call.
type Bookings interface {
	CreateReservation(ctx context.Context, in booking.CreateInput) (*model.Reservation, error)
	UpdateReservation(ctx context.Context, id uint64, in booking.UpdateInput) (*model.Reservation, error)
	Confirm(ctx context.Context, id uint64) (*model.Reservation, error)
	CheckIn(ctx context.Context, id uint64) (*model.Reservation, error)
	CheckOut(ctx context.Context, id uint64) (*model.Reservation, error)
	Cancel(ctx context.Context, id uint64) (*model.Reservation, error)
	ViewDetails(ctx context.Context, id uint64) (*booking.Details, error)
	IsAvailable(ctx context.Context, roomNumber string, checkIn, checkOut time.Time, excludeID uint64) (bool, error)
	ComputeTotal(ctx context.Context, roomNumber string, checkIn, checkOut time.Time) (booking.Quote, error)
}

// ReservationLister lists reservations for the search screen.
type ReservationLister interface {
	List(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, error)
}

// ReservationHandler serves the reservation lifecycle and the availability
// and quote endpoints of rooms.
type ReservationHandler struct {
	Bookings     Bookings
	Reservations ReservationLister
	Log          *zap.Logger
}

// NewReservationHandler panics if a dependency is missing.
func NewReservationHandler(b Bookings, list ReservationLister, log *zap.Logger) *ReservationHandler {
	if b == nil || list == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationHandler{Bookings: b, Reservations: list, Log: log}
}

type reservationBody struct {
	GuestID    uint64 `json:"guest_id" validate:"required"`
	RoomNumber string `json:"room_number" validate:"required,max=20"`
	CheckIn    string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Status     string `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED CHECKED_IN CHECKED_OUT CANCELLED"`
	Notes      string `json:"notes" validate:"max=2000"`
}

func (b *reservationBody) normalize() {
	b.RoomNumber = strings.TrimSpace(b.RoomNumber)
	b.CheckIn = strings.TrimSpace(b.CheckIn)
	b.CheckOut = strings.TrimSpace(b.CheckOut)
	b.Status = strings.ToUpper(strings.TrimSpace(b.Status))
	b.Notes = strings.TrimSpace(b.Notes)
}

// dates converts the validated calendar dates into the hotel location.
func (b reservationBody) dates() (in, out time.Time, msg string) {
	in, out, err := parseDates(b.CheckIn, b.CheckOut)
	if err != nil {
		return in, out, err.Error()
	}
	return in, out, ""
}

// Create handles POST /v1/reservations.  Status defaults to PENDING; a
// CONFIRMED or CHECKED_IN reservation marks the room OCCUPIED at once.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body reservationBody
	if msg := bind(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	in, out, msg := body.dates()
	if msg != "" {
		return badRequest(c, msg)
	}
	res, err := h.Bookings.CreateReservation(c.Request().Context(), booking.CreateInput{
		GuestID:    body.GuestID,
		RoomNumber: body.RoomNumber,
		CheckIn:    in,
		CheckOut:   out,
		Status:     model.ReservationStatus(body.Status),
		Notes:      body.Notes,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, viewOf(res))
}

// Update handles PUT /v1/reservations/:id with the full edited state.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	var body reservationBody
	if msg := bind(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	in, out, msg := body.dates()
	if msg != "" {
		return badRequest(c, msg)
	}
	res, err := h.Bookings.UpdateReservation(c.Request().Context(), id, booking.UpdateInput{
		GuestID:    body.GuestID,
		RoomNumber: body.RoomNumber,
		CheckIn:    in,
		CheckOut:   out,
		Status:     model.ReservationStatus(body.Status),
		Notes:      body.Notes,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, viewOf(res))
}

// Get handles GET /v1/reservations/:id and returns the details view.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	d, err := h.Bookings.ViewDetails(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}

// List handles GET /v1/reservations?status=&room=&guest_id=.
func (h *ReservationHandler) List(c echo.Context) error {
	var f repository.ReservationFilter
	if s := strings.TrimSpace(c.QueryParam("status")); s != "" {
		f.Status = model.ReservationStatus(strings.ToUpper(s))
		if !f.Status.Valid() {
			return badRequest(c, "unknown status "+strconv.Quote(s))
		}
	}
	f.RoomNumber = strings.TrimSpace(c.QueryParam("room"))
	if g := c.QueryParam("guest_id"); g != "" {
		id, err := strconv.ParseUint(g, 10, 64)
		if err != nil || id == 0 {
			return badRequest(c, "invalid guest_id")
		}
		f.GuestID = id
	}
	list, err := h.Reservations.List(c.Request().Context(), f)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]reservationView, 0, len(list))
	for i := range list {
		out = append(out, viewOf(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "count": len(out)})
}

// Confirm handles POST /v1/reservations/:id/confirm.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	return h.transition(c, h.Bookings.Confirm)
}

// CheckIn handles POST /v1/reservations/:id/check-in.
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	return h.transition(c, h.Bookings.CheckIn)
}

// CheckOut handles POST /v1/reservations/:id/check-out.
func (h *ReservationHandler) CheckOut(c echo.Context) error {
	return h.transition(c, h.Bookings.CheckOut)
}

// Cancel handles POST /v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.Bookings.Cancel)
}

func (h *ReservationHandler) transition(c echo.Context, fn func(context.Context, uint64) (*model.Reservation, error)) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	res, err := fn(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, viewOf(res))
}

// Availability handles GET /v1/rooms/:number/availability?check_in=&check_out=[&exclude=].
// A non-positive range is reported as unavailable.
func (h *ReservationHandler) Availability(c echo.Context) error {
	room := c.Param("number")
	in, out, err := parseDates(c.QueryParam("check_in"), c.QueryParam("check_out"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	var exclude uint64
	if s := c.QueryParam("exclude"); s != "" {
		if exclude, err = strconv.ParseUint(s, 10, 64); err != nil {
			return badRequest(c, "invalid exclude")
		}
	}
	ok, err := h.Bookings.IsAvailable(c.Request().Context(), room, in, out, exclude)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room_number": room,
		"check_in":    in.Format(model.DateLayout),
		"check_out":   out.Format(model.DateLayout),
		"available":   ok,
	})
}

// Quote handles GET /v1/rooms/:number/quote?check_in=&check_out=.
func (h *ReservationHandler) Quote(c echo.Context) error {
	in, out, err := parseDates(c.QueryParam("check_in"), c.QueryParam("check_out"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	q, err := h.Bookings.ComputeTotal(c.Request().Context(), c.Param("number"), in, out)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, q)
}

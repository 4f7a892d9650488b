// Package handler holds the echo handlers of the front desk API.  Handlers
// parse and validate the request, call the booking orchestrator, the billing
// ledger or a repository, and translate errors into JSON responses of the
// form {"error": kind, "message": text}.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/billing"
	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// errorKinds is checked in order; the first sentinel matching the error
// decides the status code.
var errorKinds = []struct {
	target error
	status int
	kind   string
}{
	{booking.ErrInvalidDateRange, http.StatusBadRequest, "invalid_date_range"},
	{booking.ErrPastCheckIn, http.StatusBadRequest, "past_check_in"},
	{billing.ErrInvalid, http.StatusBadRequest, "invalid_input"},
	{booking.ErrNotFound, http.StatusNotFound, "not_found"},
	{booking.ErrRoomConflict, http.StatusConflict, "room_conflict"},
	{booking.ErrIllegalTransition, http.StatusConflict, "illegal_transition"},
	{billing.ErrNotRefundable, http.StatusConflict, "not_refundable"},
	{billing.ErrServiceInactive, http.StatusConflict, "service_inactive"},
	{repository.ErrConflict, http.StatusConflict, "conflict"},
	{booking.ErrBusy, http.StatusServiceUnavailable, "busy"},
}

// fail writes the JSON error for err.  Unclassified errors are logged and
// reported as a 500 without their text.
func fail(c echo.Context, log *zap.Logger, err error) error {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			body := echo.Map{"error": k.kind, "message": err.Error()}
			var ce *booking.ConflictError
			if errors.As(err, &ce) {
				body["conflicting_reservation_id"] = ce.ReservationID
			}
			return c.JSON(k.status, body)
		}
	}
	if log != nil {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "internal server error"})
}

// badRequest is the 400 for malformed input caught before any lookup.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "message": msg})
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// parseDates parses a check-in/check-out pair in YYYY-MM-DD form.
func parseDates(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := model.ParseDate(strings.TrimSpace(checkIn))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("check_in must be a YYYY-MM-DD date")
	}
	out, err := model.ParseDate(strings.TrimSpace(checkOut))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("check_out must be a YYYY-MM-DD date")
	}
	return in, out, nil
}

// reservationView is the wire form of a reservation, with calendar dates.
type reservationView struct {
	ID         uint64                  `json:"id"`
	GuestID    uint64                  `json:"guest_id"`
	RoomNumber string                  `json:"room_number"`
	CheckIn    string                  `json:"check_in"`
	CheckOut   string                  `json:"check_out"`
	Nights     int                     `json:"nights"`
	Status     model.ReservationStatus `json:"status"`
	TotalPrice float64                 `json:"total_price"`
	Notes      string                  `json:"notes"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

func viewOf(r *model.Reservation) reservationView {
	return reservationView{
		ID:         r.ID,
		GuestID:    r.GuestID,
		RoomNumber: r.RoomNumber,
		CheckIn:    r.CheckIn.Format(model.DateLayout),
		CheckOut:   r.CheckOut.Format(model.DateLayout),
		Nights:     booking.Nights(r.CheckIn, r.CheckOut),
		Status:     r.Status,
		TotalPrice: r.TotalPrice,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// Package booking implements the reservation lifecycle: room availability,
// nightly pricing, the reservation status state machine and the
// orchestrator that applies them atomically against a Store.
package booking

import (
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Sentinel errors returned by the booking core.  Callers compare with
// errors.Is; the concrete error usually carries more context.
var (
	// ErrInvalidDateRange is returned when check-out is not after check-in.
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrPastCheckIn is returned when a new reservation starts before today.
	ErrPastCheckIn = errors.New("check-in date is in the past")
	// ErrRoomConflict is returned when the range overlaps an active reservation.
	ErrRoomConflict = errors.New("room already booked for the selected dates")
	// ErrIllegalTransition is returned when a status change is not permitted.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrNotFound is returned for unknown reservations, rooms or guests.
	ErrNotFound = errors.New("not found")
)

// TransitionError describes a rejected status change.  From is empty for a
// rejected initial status.
type TransitionError struct {
	From   model.ReservationStatus
	To     model.ReservationStatus
	Reason string
}

func (e *TransitionError) Error() string {
	from := string(e.From)
	if from == "" {
		from = "<new>"
	}
	msg := fmt.Sprintf("illegal status transition %s -> %s", from, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is makes errors.Is(err, ErrIllegalTransition) true.
func (e *TransitionError) Is(target error) bool { return target == ErrIllegalTransition }

// ConflictError names the reservation that blocks a booking.
type ConflictError struct {
	RoomNumber    string
	ReservationID uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %s already booked for the selected dates (reservation %d)", e.RoomNumber, e.ReservationID)
}

// Is makes errors.Is(err, ErrRoomConflict) true.
func (e *ConflictError) Is(target error) bool { return target == ErrRoomConflict }

func notFound(kind string, key any) error {
	return fmt.Errorf("%s %v: %w", kind, key, ErrNotFound)
}

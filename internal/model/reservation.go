package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "PENDING"
	StatusConfirmed  ReservationStatus = "CONFIRMED"
	StatusCheckedIn  ReservationStatus = "CHECKED_IN"
	StatusCheckedOut ReservationStatus = "CHECKED_OUT"
	StatusCancelled  ReservationStatus = "CANCELLED"
)

// Valid reports whether s is a known reservation status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled
}

// Reservation records a guest's stay in one room over a half-open date
// range [CheckIn, CheckOut).  Dates are calendar dates stored as midnight
// UTC.  TotalPrice is derived from the room's nightly rate and the number
// of nights; it is recomputed whenever the room or the dates change.
//
// Fields:
//	ID         – primary key identifier.
//	GuestID    – guest staying in the room.
//	RoomNumber – booked room.
//	CheckIn    – first night of the stay.
//	CheckOut   – departure day (not a night of the stay).
//	Status     – lifecycle state.
//	TotalPrice – nights × nightly rate.
//	Notes      – free text.
type Reservation struct {
	ID         uint64            `json:"id"`          // reservations.id
	GuestID    uint64            `json:"guest_id"`    // reservations.guest_id
	RoomNumber string            `json:"room_number"` // reservations.room_number
	CheckIn    time.Time         `json:"check_in"`    // reservations.check_in_date
	CheckOut   time.Time         `json:"check_out"`   // reservations.check_out_date
	Status     ReservationStatus `json:"status"`      // reservations.status
	TotalPrice float64           `json:"total_price"` // reservations.total_price
	Notes      string            `json:"notes"`       // reservations.notes
	CreatedAt  time.Time         `json:"created_at"`  // reservations.created_at
	UpdatedAt  time.Time         `json:"updated_at"`  // reservations.updated_at
}

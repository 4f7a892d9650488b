package booking

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Overlaps reports whether the half-open ranges [aIn, aOut) and [bIn, bOut)
// share at least one night.  A check-out on the other's check-in day does
// not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// blocking reports whether a reservation in status s still holds its dates.
// Cancelled and checked-out reservations have released the room.
func blocking(s model.ReservationStatus) bool {
	return s != model.StatusCancelled && s != model.StatusCheckedOut
}

// Checker answers availability questions from a Store's reservations.
type Checker struct {
	Store Store
}

// IsAvailable reports whether roomNumber is free for [checkIn, checkOut).
// excludeID (0 for none) is skipped so an edited reservation does not
// conflict with itself.  A non-positive range is never available.
func (c Checker) IsAvailable(ctx context.Context, roomNumber string, checkIn, checkOut time.Time, excludeID uint64) (bool, error) {
	if !model.DateOf(checkIn).Before(model.DateOf(checkOut)) {
		return false, nil
	}
	conflict, err := c.Conflict(ctx, roomNumber, checkIn, checkOut, excludeID)
	if err != nil {
		return false, err
	}
	return conflict == nil, nil
}

// Conflict returns the first reservation that blocks the range, or nil.
func (c Checker) Conflict(ctx context.Context, roomNumber string, checkIn, checkOut time.Time, excludeID uint64) (*model.Reservation, error) {
	in, out := model.DateOf(checkIn), model.DateOf(checkOut)
	if !in.Before(out) {
		return nil, nil
	}
	existing, err := c.Store.GetReservationsByRoom(ctx, roomNumber)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		r := &existing[i]
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if !blocking(r.Status) {
			continue
		}
		if Overlaps(in, out, model.DateOf(r.CheckIn), model.DateOf(r.CheckOut)) {
			return r, nil
		}
	}
	return nil, nil
}

package booking

import (
	"fmt"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

const secondsPerDay = 24 * 60 * 60

// Nights returns the number of nights in [checkIn, checkOut), counting
// calendar days.  It is zero or negative for an invalid range.  Days are
// counted on Unix seconds since a time.Duration caps out near 292 years.
func Nights(checkIn, checkOut time.Time) int {
	in, out := model.DateOf(checkIn), model.DateOf(checkOut)
	return int((out.Unix() - in.Unix()) / secondsPerDay)
}

// ComputeTotal returns nights × pricePerNight for the stay.
func ComputeTotal(pricePerNight float64, checkIn, checkOut time.Time) (float64, error) {
	nights := Nights(checkIn, checkOut)
	if nights <= 0 {
		return 0, fmt.Errorf("%w: check-out %s must be after check-in %s",
			ErrInvalidDateRange, checkOut.Format(model.DateLayout), checkIn.Format(model.DateLayout))
	}
	return float64(nights) * pricePerNight, nil
}

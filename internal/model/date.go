package model

import "time"

// DateLayout is the wire format for calendar dates (check-in/check-out).
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date in t's own location and returns it
// as midnight UTC.  Reservation dates are always stored in this form so that
// day arithmetic never crosses a DST boundary.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a midnight UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

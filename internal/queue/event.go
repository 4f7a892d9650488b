// Package queue defines the reservation event payload carried over
// RabbitMQ and the consumer that records it.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationEvent is published after every committed reservation change.
// It carries enough for consumers to log or notify without reading the
// database.
type ReservationEvent struct {
	EventID        string            `json:"event_id"`
	Type           string            `json:"type"`
	ReservationID  uint64            `json:"reservation_id"`
	GuestID        uint64            `json:"guest_id"`
	RoomNumber     string            `json:"room_number"`
	CheckIn        string            `json:"check_in"`
	CheckOut       string            `json:"check_out"`
	Status         string            `json:"status"`
	PreviousStatus string            `json:"previous_status,omitempty"`
	TotalPrice     float64           `json:"total_price"`
	RoomStatuses   map[string]string `json:"room_statuses,omitempty"`
	OccurredAt     string            `json:"occurred_at"`
}

// FromBooking converts a core event into its wire form with a fresh id.
func FromBooking(ev booking.Event) ReservationEvent {
	r := ev.Reservation
	out := ReservationEvent{
		EventID:        uuid.NewString(),
		Type:           string(ev.Type),
		ReservationID:  r.ID,
		GuestID:        r.GuestID,
		RoomNumber:     r.RoomNumber,
		CheckIn:        r.CheckIn.Format(model.DateLayout),
		CheckOut:       r.CheckOut.Format(model.DateLayout),
		Status:         string(r.Status),
		PreviousStatus: string(ev.PreviousStatus),
		TotalPrice:     r.TotalPrice,
		OccurredAt:     ev.OccurredAt.UTC().Format(time.RFC3339),
	}
	if len(ev.RoomStatuses) > 0 {
		out.RoomStatuses = make(map[string]string, len(ev.RoomStatuses))
		for room, st := range ev.RoomStatuses {
			out.RoomStatuses[room] = string(st)
		}
	}
	return out
}

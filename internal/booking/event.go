package booking

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// EventType names a committed reservation change.
type EventType string

const (
	EventCreated    EventType = "reservation.created"
	EventUpdated    EventType = "reservation.updated"
	EventConfirmed  EventType = "reservation.confirmed"
	EventCheckedIn  EventType = "reservation.checked_in"
	EventCheckedOut EventType = "reservation.checked_out"
	EventCancelled  EventType = "reservation.cancelled"
)

// Event is emitted after a reservation change has been committed.
// RoomStatuses holds the room statuses written by the change.
type Event struct {
	Type           EventType
	Reservation    model.Reservation
	PreviousStatus model.ReservationStatus
	RoomStatuses   map[string]model.RoomStatus
	OccurredAt     time.Time
}

// EventPublisher delivers events to downstream consumers.  Publishing is
// best effort; a failure never undoes the committed change.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

package booking

import (
	"context"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Store is the record store the orchestrator reads and writes.  Lookups of
// unknown keys return an error wrapping ErrNotFound.
type Store interface {
	// GetReservationsByRoom returns every reservation for the room,
	// whatever its status.
	GetReservationsByRoom(ctx context.Context, roomNumber string) ([]model.Reservation, error)
	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)
	// SaveReservation inserts the reservation when r.ID is zero and updates
	// it otherwise.  It returns the reservation id.
	SaveReservation(ctx context.Context, r *model.Reservation) (uint64, error)
	SaveRoomStatus(ctx context.Context, roomNumber string, status model.RoomStatus) error
	GetRoom(ctx context.Context, roomNumber string) (*model.Room, error)
	GetGuest(ctx context.Context, id uint64) (*model.Guest, error)
}

// TxStore is a Store that can group writes into one atomic unit.  InTx runs
// fn against a transactional view; fn's writes are committed when it
// returns nil and discarded otherwise.  lockRooms lists the rooms whose
// rows the implementation should lock for the duration of the unit.
type TxStore interface {
	Store
	InTx(ctx context.Context, lockRooms []string, fn func(ctx context.Context, s Store) error) error
}

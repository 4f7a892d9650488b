package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// BookingStore is the MySQL booking.TxStore.  InTx runs inside one database
// transaction and takes a FOR UPDATE lock on each listed room row before fn
// reads that room's reservations.
type BookingStore struct {
	db *sql.DB
	bookingView
}

var _ booking.TxStore = (*BookingStore)(nil)

// NewBookingStore returns a BookingStore over db.
func NewBookingStore(db *sql.DB) *BookingStore {
	return &BookingStore{db: db, bookingView: newBookingView(db)}
}

// InTx implements booking.TxStore.
func (s *BookingStore) InTx(ctx context.Context, lockRooms []string, fn func(ctx context.Context, st booking.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	view := newBookingView(tx)
	rooms := append([]string(nil), lockRooms...)
	sort.Strings(rooms)
	for i, number := range rooms {
		if number == "" || (i > 0 && rooms[i-1] == number) {
			continue
		}
		if err := view.rooms.LockTx(ctx, number); err != nil {
			return err
		}
	}

	if err := fn(ctx, view); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// bookingView adapts the repositories to booking.Store over a DB or Tx.
type bookingView struct {
	guests       *GuestRepo
	rooms        *RoomRepo
	reservations *ReservationRepo
}

func newBookingView(db DBTX) bookingView {
	return bookingView{
		guests:       NewGuestRepo(db),
		rooms:        NewRoomRepo(db),
		reservations: NewReservationRepo(db),
	}
}

func (v bookingView) GetReservationsByRoom(ctx context.Context, number string) ([]model.Reservation, error) {
	return v.reservations.ListByRoom(ctx, number)
}

func (v bookingView) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return v.reservations.GetByID(ctx, id)
}

func (v bookingView) SaveReservation(ctx context.Context, r *model.Reservation) (uint64, error) {
	if r.ID == 0 {
		return v.reservations.Insert(ctx, r)
	}
	return r.ID, v.reservations.Update(ctx, r)
}

func (v bookingView) SaveRoomStatus(ctx context.Context, number string, status model.RoomStatus) error {
	return v.rooms.SetStatus(ctx, number, status)
}

func (v bookingView) GetRoom(ctx context.Context, number string) (*model.Room, error) {
	return v.rooms.GetByNumber(ctx, number)
}

func (v bookingView) GetGuest(ctx context.Context, id uint64) (*model.Guest, error) {
	return v.guests.GetByID(ctx, id)
}

package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomRepo stores the room catalogue.  Rooms are keyed by their number.
type RoomRepo struct {
	db DBTX
}

// NewRoomRepo returns a RoomRepo bound to db.
func NewRoomRepo(db DBTX) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `room_number, room_type, status, price_per_night, description, max_occupancy`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	var rm model.Room
	if err := row.Scan(&rm.Number, &rm.Type, &rm.Status, &rm.PricePerNight, &rm.Description, &rm.MaxOccupancy); err != nil {
		return nil, err
	}
	return &rm, nil
}

// Create inserts a room.  A duplicate number yields ErrConflict.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const q = `INSERT INTO rooms (` + roomColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rm.Number, rm.Type, rm.Status, rm.PricePerNight, rm.Description, rm.MaxOccupancy)
	return mapErr(err, "room", rm.Number)
}

// Update overwrites the catalogue fields and status of a room, provided its
// status is still expect.  A concurrent status change yields ErrConflict.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room, expect model.RoomStatus) error {
	const q = `UPDATE rooms SET room_type = ?, status = ?, price_per_night = ?, description = ?, max_occupancy = ? WHERE room_number = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, rm.Type, rm.Status, rm.PricePerNight, rm.Description, rm.MaxOccupancy, rm.Number, expect)
	if err != nil {
		return mapErr(err, "room", rm.Number)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("room %s changed status concurrently: %w", rm.Number, ErrConflict)
	}
	return nil
}

// SetStatus changes only the room status.
func (r *RoomRepo) SetStatus(ctx context.Context, number string, status model.RoomStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE rooms SET status = ? WHERE room_number = ?`, status, number)
	if err != nil {
		return err
	}
	return affectedOne(res, "room", number)
}

// GetByNumber returns the room or an error wrapping booking.ErrNotFound.
func (r *RoomRepo) GetByNumber(ctx context.Context, number string) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE room_number = ?`
	rm, err := scanRoom(r.db.QueryRowContext(ctx, q, number))
	if err != nil {
		return nil, mapErr(err, "room", number)
	}
	return rm, nil
}

// LockTx takes a row lock on the room for the rest of the transaction.
// It must be called with a *sql.Tx.
func (r *RoomRepo) LockTx(ctx context.Context, number string) error {
	var got string
	err := r.db.QueryRowContext(ctx, `SELECT room_number FROM rooms WHERE room_number = ? FOR UPDATE`, number).Scan(&got)
	return mapErr(err, "room", number)
}

// RoomFilter narrows List; zero fields match everything.
type RoomFilter struct {
	Status model.RoomStatus
	Type   model.RoomType
}

// List returns rooms ordered by number.
func (r *RoomRepo) List(ctx context.Context, f RoomFilter) ([]model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE 1 = 1`
	var args []any
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Type != "" {
		q += ` AND room_type = ?`
		args = append(args, f.Type)
	}
	q += ` ORDER BY room_number`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of rooms in status.
func (r *RoomRepo) CountByStatus(ctx context.Context, status model.RoomStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms WHERE status = ?`, status).Scan(&n)
	return n, err
}

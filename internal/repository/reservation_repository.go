package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationRepo stores reservations.  Rows are never deleted; cancelled
// and checked-out reservations stay for history.
type ReservationRepo struct {
	db DBTX
}

// NewReservationRepo returns a ReservationRepo bound to db.
func NewReservationRepo(db DBTX) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, guest_id, room_number, check_in_date, check_out_date, status, total_price, notes, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		res   model.Reservation
		notes sql.NullString
	)
	err := row.Scan(&res.ID, &res.GuestID, &res.RoomNumber, &res.CheckIn, &res.CheckOut,
		&res.Status, &res.TotalPrice, &notes, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	res.CheckIn = model.DateOf(res.CheckIn)
	res.CheckOut = model.DateOf(res.CheckOut)
	res.Notes = nullString(notes)
	return &res, nil
}

// Insert adds res and returns the generated id.
func (r *ReservationRepo) Insert(ctx context.Context, res *model.Reservation) (uint64, error) {
	const q = `INSERT INTO reservations (guest_id, room_number, check_in_date, check_out_date, status, total_price, notes, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	out, err := r.db.ExecContext(ctx, q, res.GuestID, res.RoomNumber,
		res.CheckIn.Format(model.DateLayout), res.CheckOut.Format(model.DateLayout),
		res.Status, res.TotalPrice, res.Notes, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return 0, mapErr(err, "reservation", res.RoomNumber)
	}
	id, err := out.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites the mutable fields of res.  created_at is left alone.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
	           SET guest_id = ?, room_number = ?, check_in_date = ?, check_out_date = ?, status = ?, total_price = ?, notes = ?, updated_at = ?
	           WHERE id = ?`
	out, err := r.db.ExecContext(ctx, q, res.GuestID, res.RoomNumber,
		res.CheckIn.Format(model.DateLayout), res.CheckOut.Format(model.DateLayout),
		res.Status, res.TotalPrice, res.Notes, res.UpdatedAt, res.ID)
	if err != nil {
		return mapErr(err, "reservation", res.ID)
	}
	return affectedOne(out, "reservation", res.ID)
}

// GetByID returns the reservation or an error wrapping booking.ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err, "reservation", id)
	}
	return res, nil
}

// ReservationFilter narrows List; zero fields match everything.
type ReservationFilter struct {
	Status     model.ReservationStatus
	RoomNumber string
	GuestID    uint64
}

// ListByRoom returns every reservation of the room regardless of status.
func (r *ReservationRepo) ListByRoom(ctx context.Context, number string) ([]model.Reservation, error) {
	return r.List(ctx, ReservationFilter{RoomNumber: number})
}

// List returns reservations ordered by check-in date.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE 1 = 1`
	var args []any
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.RoomNumber != "" {
		q += ` AND room_number = ?`
		args = append(args, f.RoomNumber)
	}
	if f.GuestID != 0 {
		q += ` AND guest_id = ?`
		args = append(args, f.GuestID)
	}
	q += ` ORDER BY check_in_date, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of reservations in status.
func (r *ReservationRepo) CountByStatus(ctx context.Context, status model.ReservationStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE status = ?`, status).Scan(&n)
	return n, err
}

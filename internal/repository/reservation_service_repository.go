package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationServiceRepo stores service charges posted to reservations.
type ReservationServiceRepo struct {
	db DBTX
}

// NewReservationServiceRepo returns a ReservationServiceRepo bound to db.
func NewReservationServiceRepo(db DBTX) *ReservationServiceRepo {
	return &ReservationServiceRepo{db: db}
}

const chargeColumns = `id, reservation_id, service_id, quantity, requested_at, status, total_price, notes`

func scanCharge(row interface{ Scan(...any) error }) (*model.ReservationService, error) {
	var (
		c     model.ReservationService
		notes sql.NullString
	)
	if err := row.Scan(&c.ID, &c.ReservationID, &c.ServiceID, &c.Quantity, &c.RequestedAt, &c.Status, &c.TotalPrice, &notes); err != nil {
		return nil, err
	}
	c.Notes = nullString(notes)
	return &c, nil
}

// Create inserts c and sets its ID.
func (r *ReservationServiceRepo) Create(ctx context.Context, c *model.ReservationService) error {
	const q = `INSERT INTO reservation_services (reservation_id, service_id, quantity, requested_at, status, total_price, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.ReservationID, c.ServiceID, c.Quantity, c.RequestedAt, c.Status, c.TotalPrice, c.Notes)
	if err != nil {
		return mapErr(err, "reservation service", c.ReservationID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// ListByReservation returns the charges of a reservation, oldest first.
func (r *ReservationServiceRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationService, error) {
	const q = `SELECT ` + chargeColumns + ` FROM reservation_services WHERE reservation_id = ? ORDER BY requested_at, id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ReservationService{}
	for rows.Next() {
		c, err := scanCharge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// SumBillable returns the total of the reservation's charges that are not
// cancelled.
func (r *ReservationServiceRepo) SumBillable(ctx context.Context, reservationID uint64) (float64, error) {
	const q = `SELECT COALESCE(SUM(total_price), 0) FROM reservation_services WHERE reservation_id = ? AND status <> ?`
	var total float64
	err := r.db.QueryRowContext(ctx, q, reservationID, model.ChargeCancelled).Scan(&total)
	return total, err
}

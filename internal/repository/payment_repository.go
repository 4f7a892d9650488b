package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// PaymentRepo stores payments taken against reservations.
type PaymentRepo struct {
	db DBTX
}

// NewPaymentRepo returns a PaymentRepo bound to db.
func NewPaymentRepo(db DBTX) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, reservation_id, amount, payment_method, payment_date, status, transaction_id, notes`

func scanPayment(row interface{ Scan(...any) error }) (*model.Payment, error) {
	var (
		p     model.Payment
		notes sql.NullString
	)
	if err := row.Scan(&p.ID, &p.ReservationID, &p.Amount, &p.Method, &p.PaidAt, &p.Status, &p.TransactionID, &notes); err != nil {
		return nil, err
	}
	p.Notes = nullString(notes)
	return &p, nil
}

// Create inserts p and sets its ID.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (reservation_id, amount, payment_method, payment_date, status, transaction_id, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.ReservationID, p.Amount, p.Method, p.PaidAt, p.Status, p.TransactionID, p.Notes)
	if err != nil {
		return mapErr(err, "payment", p.TransactionID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID returns the payment or an error wrapping booking.ErrNotFound.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`
	p, err := scanPayment(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err, "payment", id)
	}
	return p, nil
}

// ListByReservation returns the payments of a reservation, oldest first.
func (r *PaymentRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE reservation_id = ? ORDER BY payment_date, id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// TransitionStatus moves a payment from one status to another.  It reports
// false when the payment was not in status from.
func (r *PaymentRepo) TransitionStatus(ctx context.Context, id uint64, from, to model.PaymentStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE payments SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SumCompleted returns the total of COMPLETED payments, for one reservation
// or, with reservationID 0, for the whole hotel.
func (r *PaymentRepo) SumCompleted(ctx context.Context, reservationID uint64) (float64, error) {
	q := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = ?`
	args := []any{model.PaymentCompleted}
	if reservationID != 0 {
		q += ` AND reservation_id = ?`
		args = append(args, reservationID)
	}
	var total float64
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&total)
	return total, err
}

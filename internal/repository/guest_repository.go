package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// GuestRepo stores hotel guests.
type GuestRepo struct {
	db DBTX
}

// NewGuestRepo returns a GuestRepo bound to db.
func NewGuestRepo(db DBTX) *GuestRepo { return &GuestRepo{db: db} }

const guestColumns = `id, first_name, last_name, email, phone, id_number, address`

func scanGuest(row interface{ Scan(...any) error }) (*model.Guest, error) {
	var g model.Guest
	if err := row.Scan(&g.ID, &g.FirstName, &g.LastName, &g.Email, &g.Phone, &g.IDNumber, &g.Address); err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts g and sets its ID.  A duplicate email yields ErrConflict.
func (r *GuestRepo) Create(ctx context.Context, g *model.Guest) error {
	const q = `INSERT INTO guests (first_name, last_name, email, phone, id_number, address) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, g.FirstName, g.LastName, g.Email, g.Phone, g.IDNumber, g.Address)
	if err != nil {
		return mapErr(err, "guest", g.Email)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// Update overwrites every field of the guest with id g.ID.
func (r *GuestRepo) Update(ctx context.Context, g *model.Guest) error {
	const q = `UPDATE guests SET first_name = ?, last_name = ?, email = ?, phone = ?, id_number = ?, address = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, g.FirstName, g.LastName, g.Email, g.Phone, g.IDNumber, g.Address, g.ID)
	if err != nil {
		return mapErr(err, "guest", g.ID)
	}
	return affectedOne(res, "guest", g.ID)
}

// GetByID returns the guest or an error wrapping booking.ErrNotFound.
func (r *GuestRepo) GetByID(ctx context.Context, id uint64) (*model.Guest, error) {
	const q = `SELECT ` + guestColumns + ` FROM guests WHERE id = ?`
	g, err := scanGuest(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err, "guest", id)
	}
	return g, nil
}

// Search lists guests whose name, email or phone contains term.  An empty
// term lists everybody.
func (r *GuestRepo) Search(ctx context.Context, term string) ([]model.Guest, error) {
	q := `SELECT ` + guestColumns + ` FROM guests`
	var args []any
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + term + "%"
		q += ` WHERE first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ?`
		args = append(args, like, like, like, like)
	}
	q += ` ORDER BY last_name, first_name, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Guest{}
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// Count returns the number of guests.
func (r *GuestRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests`).Scan(&n)
	return n, err
}

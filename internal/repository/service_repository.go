package repository

import (
	"context"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ServiceRepo stores the catalogue of chargeable hotel services.
type ServiceRepo struct {
	db DBTX
}

// NewServiceRepo returns a ServiceRepo bound to db.
func NewServiceRepo(db DBTX) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceColumns = `id, name, description, price, category, is_active`

func scanService(row interface{ Scan(...any) error }) (*model.Service, error) {
	var s model.Service
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.Category, &s.IsActive); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts s and sets its ID.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	const q = `INSERT INTO services (name, description, price, category, is_active) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Description, s.Price, s.Category, s.IsActive)
	if err != nil {
		return mapErr(err, "service", s.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Update overwrites every field of the service with id s.ID.
func (r *ServiceRepo) Update(ctx context.Context, s *model.Service) error {
	const q = `UPDATE services SET name = ?, description = ?, price = ?, category = ?, is_active = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Description, s.Price, s.Category, s.IsActive, s.ID)
	if err != nil {
		return mapErr(err, "service", s.ID)
	}
	return affectedOne(res, "service", s.ID)
}

// GetByID returns the service or an error wrapping booking.ErrNotFound.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (*model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services WHERE id = ?`
	s, err := scanService(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err, "service", id)
	}
	return s, nil
}

// ServiceFilter narrows List.  A nil Active matches both states.
type ServiceFilter struct {
	Active   *bool
	Category model.ServiceCategory
}

// List returns services ordered by category and name.
func (r *ServiceRepo) List(ctx context.Context, f ServiceFilter) ([]model.Service, error) {
	q := `SELECT ` + serviceColumns + ` FROM services WHERE 1 = 1`
	var args []any
	if f.Active != nil {
		q += ` AND is_active = ?`
		args = append(args, *f.Active)
	}
	if f.Category != "" {
		q += ` AND category = ?`
		args = append(args, f.Category)
	}
	q += ` ORDER BY category, name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Package billing records payments and service charges against
// reservations and derives folios and hotel statistics from them.
package billing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

var (
	// ErrInvalid is returned for malformed payment or charge input.
	ErrInvalid = errors.New("invalid billing input")
	// ErrNotRefundable is returned when refunding a payment that is not COMPLETED.
	ErrNotRefundable = errors.New("only completed payments can be refunded")
	// ErrServiceInactive is returned when charging a deactivated service.
	ErrServiceInactive = errors.New("service is not active")
)

// Reservations is the read side of reservations billing needs.
type Reservations interface {
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	CountByStatus(ctx context.Context, status model.ReservationStatus) (int, error)
}

// Payments stores payments.
type Payments interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id uint64) (*model.Payment, error)
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.Payment, error)
	TransitionStatus(ctx context.Context, id uint64, from, to model.PaymentStatus) (bool, error)
	SumCompleted(ctx context.Context, reservationID uint64) (float64, error)
}

// Services reads the service catalogue.
type Services interface {
	GetByID(ctx context.Context, id uint64) (*model.Service, error)
}

// Charges stores service charges.
type Charges interface {
	Create(ctx context.Context, c *model.ReservationService) error
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationService, error)
	SumBillable(ctx context.Context, reservationID uint64) (float64, error)
}

// Guests counts guests.
type Guests interface {
	Count(ctx context.Context) (int, error)
}

// Rooms counts rooms by status.
type Rooms interface {
	CountByStatus(ctx context.Context, status model.RoomStatus) (int, error)
}

// Ledger ties the billing stores together.
type Ledger struct {
	Reservations Reservations
	Payments     Payments
	Services     Services
	Charges      Charges
	Guests       Guests
	Rooms        Rooms
	Log          *zap.Logger
	Now          func() time.Time
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

func (l *Ledger) log() *zap.Logger {
	if l.Log != nil {
		return l.Log
	}
	return zap.NewNop()
}

// PaymentInput is a payment to record.  Status defaults to COMPLETED and an
// empty TransactionID is generated.
type PaymentInput struct {
	ReservationID uint64
	Amount        float64
	Method        model.PaymentMethod
	Status        model.PaymentStatus
	TransactionID string
	Notes         string
}

// RecordPayment validates in and stores it against an existing reservation.
func (l *Ledger) RecordPayment(ctx context.Context, in PaymentInput) (*model.Payment, error) {
	if in.Amount <= 0 || math.IsInf(in.Amount, 0) || math.IsNaN(in.Amount) {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrInvalid)
	}
	if !in.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalid, in.Method)
	}
	if in.Status == "" {
		in.Status = model.PaymentCompleted
	}
	if in.Status != model.PaymentPending && in.Status != model.PaymentCompleted {
		return nil, fmt.Errorf("%w: payment cannot be recorded as %s", ErrInvalid, in.Status)
	}
	if _, err := l.Reservations.GetByID(ctx, in.ReservationID); err != nil {
		return nil, err
	}
	p := &model.Payment{
		ReservationID: in.ReservationID,
		Amount:        round2(in.Amount),
		Method:        in.Method,
		PaidAt:        l.now(),
		Status:        in.Status,
		TransactionID: strings.TrimSpace(in.TransactionID),
		Notes:         strings.TrimSpace(in.Notes),
	}
	if p.TransactionID == "" {
		p.TransactionID = "TXN-" + strings.ToUpper(uuid.NewString()[:8])
	}
	if err := l.Payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	l.log().Info("payment recorded",
		zap.Uint64("payment_id", p.ID),
		zap.Uint64("reservation_id", p.ReservationID),
		zap.Float64("amount", p.Amount),
		zap.String("status", string(p.Status)))
	return p, nil
}

// Refund marks a COMPLETED payment REFUNDED.
func (l *Ledger) Refund(ctx context.Context, paymentID uint64) (*model.Payment, error) {
	p, err := l.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentCompleted {
		return nil, fmt.Errorf("payment %d is %s: %w", p.ID, p.Status, ErrNotRefundable)
	}
	ok, err := l.Payments.TransitionStatus(ctx, p.ID, model.PaymentCompleted, model.PaymentRefunded)
	if err != nil {
		return nil, fmt.Errorf("refund payment: %w", err)
	}
	if !ok {
		// Refunded concurrently.
		return nil, fmt.Errorf("payment %d: %w", p.ID, ErrNotRefundable)
	}
	p.Status = model.PaymentRefunded
	l.log().Info("payment refunded", zap.Uint64("payment_id", p.ID), zap.Float64("amount", p.Amount))
	return p, nil
}

// PaymentsFor lists a reservation's payments.
func (l *Ledger) PaymentsFor(ctx context.Context, reservationID uint64) ([]model.Payment, error) {
	if _, err := l.Reservations.GetByID(ctx, reservationID); err != nil {
		return nil, err
	}
	return l.Payments.ListByReservation(ctx, reservationID)
}

// ChargeInput is a service charge to post.
type ChargeInput struct {
	ReservationID uint64
	ServiceID     uint64
	Quantity      int
	Notes         string
}

// AddCharge posts quantity × price of an active service to a reservation
// that is not closed.
func (l *Ledger) AddCharge(ctx context.Context, in ChargeInput) (*model.ReservationService, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", ErrInvalid)
	}
	res, err := l.Reservations.GetByID(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	if res.Status.Terminal() {
		return nil, fmt.Errorf("%w: reservation %d is %s", ErrInvalid, res.ID, res.Status)
	}
	svc, err := l.Services.GetByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, fmt.Errorf("service %q: %w", svc.Name, ErrServiceInactive)
	}
	c := &model.ReservationService{
		ReservationID: res.ID,
		ServiceID:     svc.ID,
		Quantity:      in.Quantity,
		RequestedAt:   l.now(),
		Status:        model.ChargePending,
		TotalPrice:    round2(float64(in.Quantity) * svc.Price),
		Notes:         strings.TrimSpace(in.Notes),
	}
	if err := l.Charges.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}
	return c, nil
}

// ChargesFor lists a reservation's service charges.
func (l *Ledger) ChargesFor(ctx context.Context, reservationID uint64) ([]model.ReservationService, error) {
	if _, err := l.Reservations.GetByID(ctx, reservationID); err != nil {
		return nil, err
	}
	return l.Charges.ListByReservation(ctx, reservationID)
}

// Folio is the running account of a reservation.
type Folio struct {
	ReservationID uint64                  `json:"reservation_id"`
	Status        model.ReservationStatus `json:"status"`
	RoomTotal     float64                 `json:"room_total"`
	ServicesTotal float64                 `json:"services_total"`
	Paid          float64                 `json:"paid"`
	BalanceDue    float64                 `json:"balance_due"`
}

// Folio sums the room total and billable charges and subtracts completed
// payments.
func (l *Ledger) Folio(ctx context.Context, reservationID uint64) (*Folio, error) {
	res, err := l.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	services, err := l.Charges.SumBillable(ctx, res.ID)
	if err != nil {
		return nil, fmt.Errorf("sum charges: %w", err)
	}
	paid, err := l.Payments.SumCompleted(ctx, res.ID)
	if err != nil {
		return nil, fmt.Errorf("sum payments: %w", err)
	}
	return &Folio{
		ReservationID: res.ID,
		Status:        res.Status,
		RoomTotal:     res.TotalPrice,
		ServicesTotal: services,
		Paid:          paid,
		BalanceDue:    round2(res.TotalPrice + services - paid),
	}, nil
}

// Stats are the headline numbers of the front desk dashboard.
type Stats struct {
	TotalGuests           int     `json:"total_guests"`
	AvailableRooms        int     `json:"available_rooms"`
	ConfirmedReservations int     `json:"confirmed_reservations"`
	CheckedInReservations int     `json:"checked_in_reservations"`
	ActiveReservations    int     `json:"active_reservations"`
	TotalRevenue          float64 `json:"total_revenue"`
}

// Dashboard collects Stats.
func (l *Ledger) Dashboard(ctx context.Context) (*Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.TotalGuests, err = l.Guests.Count(ctx); err != nil {
		return nil, fmt.Errorf("count guests: %w", err)
	}
	if s.AvailableRooms, err = l.Rooms.CountByStatus(ctx, model.RoomAvailable); err != nil {
		return nil, fmt.Errorf("count rooms: %w", err)
	}
	if s.ConfirmedReservations, err = l.Reservations.CountByStatus(ctx, model.StatusConfirmed); err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}
	if s.CheckedInReservations, err = l.Reservations.CountByStatus(ctx, model.StatusCheckedIn); err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}
	s.ActiveReservations = s.ConfirmedReservations + s.CheckedInReservations
	if s.TotalRevenue, err = l.Payments.SumCompleted(ctx, 0); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	return &s, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

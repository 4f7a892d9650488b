package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

type fakeStore struct {
	reservations map[uint64]model.Reservation
	payments     map[uint64]*model.Payment
	services     map[uint64]model.Service
	charges      []model.ReservationService
	guests       int
	rooms        map[model.RoomStatus]int
}

func newFake() *fakeStore {
	return &fakeStore{
		reservations: map[uint64]model.Reservation{
			1: {ID: 1, RoomNumber: "101", Status: model.StatusCheckedIn, TotalPrice: 300},
			2: {ID: 2, RoomNumber: "102", Status: model.StatusConfirmed, TotalPrice: 160},
			3: {ID: 3, RoomNumber: "103", Status: model.StatusCheckedOut, TotalPrice: 90},
		},
		payments: map[uint64]*model.Payment{},
		services: map[uint64]model.Service{
			1: {ID: 1, Name: "Breakfast", Price: 12.5, Category: model.CategoryRoomService, IsActive: true},
			2: {ID: 2, Name: "Old spa", Price: 40, Category: model.CategorySpa, IsActive: false},
		},
		guests: 7,
		rooms:  map[model.RoomStatus]int{model.RoomAvailable: 4},
	}
}

func notFound(kind string, id uint64) error {
	return fmt.Errorf("%s %d: %w", kind, id, booking.ErrNotFound)
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, notFound("reservation", id)
	}
	return &r, nil
}

func (f *fakeStore) CountByStatus(_ context.Context, st model.ReservationStatus) (int, error) {
	n := 0
	for _, r := range f.reservations {
		if r.Status == st {
			n++
		}
	}
	return n, nil
}

type fakePayments struct{ f *fakeStore }

func (p fakePayments) Create(_ context.Context, pay *model.Payment) error {
	pay.ID = uint64(len(p.f.payments) + 1)
	cp := *pay
	p.f.payments[pay.ID] = &cp
	return nil
}

func (p fakePayments) GetByID(_ context.Context, id uint64) (*model.Payment, error) {
	pay, ok := p.f.payments[id]
	if !ok {
		return nil, notFound("payment", id)
	}
	cp := *pay
	return &cp, nil
}

func (p fakePayments) ListByReservation(_ context.Context, id uint64) ([]model.Payment, error) {
	var out []model.Payment
	for i := uint64(1); i <= uint64(len(p.f.payments)); i++ {
		if pay := p.f.payments[i]; pay.ReservationID == id {
			out = append(out, *pay)
		}
	}
	return out, nil
}

func (p fakePayments) TransitionStatus(_ context.Context, id uint64, from, to model.PaymentStatus) (bool, error) {
	pay, ok := p.f.payments[id]
	if !ok || pay.Status != from {
		return false, nil
	}
	pay.Status = to
	return true, nil
}

func (p fakePayments) SumCompleted(_ context.Context, id uint64) (float64, error) {
	var sum float64
	for _, pay := range p.f.payments {
		if pay.Status == model.PaymentCompleted && (id == 0 || pay.ReservationID == id) {
			sum += pay.Amount
		}
	}
	return sum, nil
}

type fakeServices struct{ f *fakeStore }

func (s fakeServices) GetByID(_ context.Context, id uint64) (*model.Service, error) {
	svc, ok := s.f.services[id]
	if !ok {
		return nil, notFound("service", id)
	}
	return &svc, nil
}

type fakeCharges struct{ f *fakeStore }

func (c fakeCharges) Create(_ context.Context, ch *model.ReservationService) error {
	ch.ID = uint64(len(c.f.charges) + 1)
	c.f.charges = append(c.f.charges, *ch)
	return nil
}

func (c fakeCharges) ListByReservation(_ context.Context, id uint64) ([]model.ReservationService, error) {
	var out []model.ReservationService
	for _, ch := range c.f.charges {
		if ch.ReservationID == id {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (c fakeCharges) SumBillable(_ context.Context, id uint64) (float64, error) {
	var sum float64
	for _, ch := range c.f.charges {
		if ch.ReservationID == id && ch.Status != model.ChargeCancelled {
			sum += ch.TotalPrice
		}
	}
	return sum, nil
}

type fakeCounts struct{ f *fakeStore }

func (c fakeCounts) Count(context.Context) (int, error) { return c.f.guests, nil }
func (c fakeCounts) CountByStatus(_ context.Context, st model.RoomStatus) (int, error) {
	return c.f.rooms[st], nil
}

func newLedger(f *fakeStore) *Ledger {
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	return &Ledger{
		Reservations: f,
		Payments:     fakePayments{f},
		Services:     fakeServices{f},
		Charges:      fakeCharges{f},
		Guests:       fakeCounts{f},
		Rooms:        fakeCounts{f},
		Now:          func() time.Time { return now },
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	l := newLedger(newFake())
	ctx := context.Background()
	cases := []struct {
		name string
		in   PaymentInput
		want error
	}{
		{"zero amount", PaymentInput{ReservationID: 1, Amount: 0, Method: model.MethodCash}, ErrInvalid},
		{"bad method", PaymentInput{ReservationID: 1, Amount: 10, Method: "BARTER"}, ErrInvalid},
		{"recorded refunded", PaymentInput{ReservationID: 1, Amount: 10, Method: model.MethodCash, Status: model.PaymentRefunded}, ErrInvalid},
		{"unknown reservation", PaymentInput{ReservationID: 99, Amount: 10, Method: model.MethodCash}, booking.ErrNotFound},
	}
	for _, c := range cases {
		if _, err := l.RecordPayment(ctx, c.in); !errors.Is(err, c.want) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

func TestRecordPaymentDefaults(t *testing.T) {
	l := newLedger(newFake())
	p, err := l.RecordPayment(context.Background(), PaymentInput{ReservationID: 1, Amount: 100.004, Method: model.MethodCreditCard})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if p.Status != model.PaymentCompleted || p.Amount != 100 || !strings.HasPrefix(p.TransactionID, "TXN-") {
		t.Fatalf("payment = %+v", p)
	}
}

func TestRefundOnlyCompleted(t *testing.T) {
	l := newLedger(newFake())
	ctx := context.Background()
	done, _ := l.RecordPayment(ctx, PaymentInput{ReservationID: 1, Amount: 50, Method: model.MethodCash})
	pending, _ := l.RecordPayment(ctx, PaymentInput{ReservationID: 1, Amount: 20, Method: model.MethodOnline, Status: model.PaymentPending})

	r, err := l.Refund(ctx, done.ID)
	if err != nil || r.Status != model.PaymentRefunded {
		t.Fatalf("refund: %+v %v", r, err)
	}
	if _, err := l.Refund(ctx, done.ID); !errors.Is(err, ErrNotRefundable) {
		t.Fatalf("second refund: err = %v, want ErrNotRefundable", err)
	}
	if _, err := l.Refund(ctx, pending.ID); !errors.Is(err, ErrNotRefundable) {
		t.Fatalf("pending refund: err = %v, want ErrNotRefundable", err)
	}
	if _, err := l.Refund(ctx, 404); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("unknown refund: err = %v, want ErrNotFound", err)
	}
}

func TestAddCharge(t *testing.T) {
	l := newLedger(newFake())
	ctx := context.Background()
	c, err := l.AddCharge(ctx, ChargeInput{ReservationID: 1, ServiceID: 1, Quantity: 3})
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	if c.TotalPrice != 37.5 || c.Status != model.ChargePending {
		t.Fatalf("charge = %+v", c)
	}
	if _, err := l.AddCharge(ctx, ChargeInput{ReservationID: 1, ServiceID: 2, Quantity: 1}); !errors.Is(err, ErrServiceInactive) {
		t.Fatalf("inactive: err = %v", err)
	}
	if _, err := l.AddCharge(ctx, ChargeInput{ReservationID: 3, ServiceID: 1, Quantity: 1}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("closed reservation: err = %v", err)
	}
	if _, err := l.AddCharge(ctx, ChargeInput{ReservationID: 1, ServiceID: 1, Quantity: 0}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("zero quantity: err = %v", err)
	}
}

func TestFolio(t *testing.T) {
	f := newFake()
	l := newLedger(f)
	ctx := context.Background()
	if _, err := l.AddCharge(ctx, ChargeInput{ReservationID: 1, ServiceID: 1, Quantity: 2}); err != nil {
		t.Fatalf("charge: %v", err)
	}
	f.charges = append(f.charges, model.ReservationService{ReservationID: 1, Status: model.ChargeCancelled, TotalPrice: 99})
	if _, err := l.RecordPayment(ctx, PaymentInput{ReservationID: 1, Amount: 200, Method: model.MethodCash}); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if _, err := l.RecordPayment(ctx, PaymentInput{ReservationID: 1, Amount: 80, Method: model.MethodCash, Status: model.PaymentPending}); err != nil {
		t.Fatalf("pay: %v", err)
	}

	folio, err := l.Folio(ctx, 1)
	if err != nil {
		t.Fatalf("folio: %v", err)
	}
	want := Folio{ReservationID: 1, Status: model.StatusCheckedIn, RoomTotal: 300, ServicesTotal: 25, Paid: 200, BalanceDue: 125}
	if *folio != want {
		t.Fatalf("folio = %+v, want %+v", *folio, want)
	}
}

func TestDashboard(t *testing.T) {
	f := newFake()
	l := newLedger(f)
	ctx := context.Background()
	l.RecordPayment(ctx, PaymentInput{ReservationID: 1, Amount: 100, Method: model.MethodCash})
	l.RecordPayment(ctx, PaymentInput{ReservationID: 2, Amount: 60, Method: model.MethodCash})
	p, _ := l.RecordPayment(ctx, PaymentInput{ReservationID: 2, Amount: 10, Method: model.MethodCash})
	l.Refund(ctx, p.ID)

	s, err := l.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	want := Stats{TotalGuests: 7, AvailableRooms: 4, ConfirmedReservations: 1, CheckedInReservations: 1, ActiveReservations: 2, TotalRevenue: 160}
	if *s != want {
		t.Fatalf("stats = %+v, want %+v", *s, want)
	}
}

package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type busyLocker struct{}

func (busyLocker) Lock(ctx context.Context, _ string) (func(), error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func fixture(t *testing.T, opts ...Option) (*Orchestrator, *memStore) {
	t.Helper()
	s := newMemStore()
	s.addGuest(model.Guest{ID: 1, FirstName: "Ada", LastName: "Lovelace"})
	s.addGuest(model.Guest{ID: 2, FirstName: "Alan", LastName: "Turing"})
	s.addRoom(model.Room{Number: "101", Type: model.RoomDouble, Status: model.RoomAvailable, PricePerNight: 100})
	s.addRoom(model.Room{Number: "102", Type: model.RoomSingle, Status: model.RoomAvailable, PricePerNight: 80})
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return NewOrchestrator(s, opts...), s
}

func create(t *testing.T, o *Orchestrator, guest uint64, room, in, out string, st model.ReservationStatus) (*model.Reservation, error) {
	t.Helper()
	return o.CreateReservation(context.Background(), CreateInput{
		GuestID:    guest,
		RoomNumber: room,
		CheckIn:    day(t, in),
		CheckOut:   day(t, out),
		Status:     st,
	})
}

func mustCreate(t *testing.T, o *Orchestrator, room, in, out string, st model.ReservationStatus) *model.Reservation {
	t.Helper()
	r, err := create(t, o, 1, room, in, out, st)
	if err != nil {
		t.Fatalf("create %s %s..%s: %v", room, in, out, err)
	}
	return r
}

func TestCreateConflictScenario(t *testing.T) {
	o, s := fixture(t)

	a := mustCreate(t, o, "101", "2024-01-10", "2024-01-15", model.StatusConfirmed)
	if a.TotalPrice != 500 {
		t.Fatalf("A total = %v, want 500", a.TotalPrice)
	}
	if got := s.room("101").Status; got != model.RoomOccupied {
		t.Fatalf("room 101 = %s, want OCCUPIED", got)
	}

	_, err := create(t, o, 2, "101", "2024-01-12", "2024-01-18", model.StatusPending)
	if !errors.Is(err, ErrRoomConflict) {
		t.Fatalf("B overlapping: err = %v, want ErrRoomConflict", err)
	}
	var ce *ConflictError
	if !errors.As(err, &ce) || ce.ReservationID != a.ID {
		t.Fatalf("conflict error = %v, want one naming reservation %d", err, a.ID)
	}

	if _, err := create(t, o, 2, "101", "2024-01-15", "2024-01-18", model.StatusPending); err != nil {
		t.Fatalf("B back to back: %v", err)
	}
	if n := s.count(); n != 2 {
		t.Fatalf("reservations = %d, want 2", n)
	}
}

func TestCreateValidation(t *testing.T) {
	o, s := fixture(t)
	cases := []struct {
		name    string
		guest   uint64
		room    string
		in, out string
		status  model.ReservationStatus
		want    error
	}{
		{"past check-in", 1, "101", "2023-12-31", "2024-01-02", "", ErrPastCheckIn},
		{"empty range", 1, "101", "2024-01-05", "2024-01-05", "", ErrInvalidDateRange},
		{"reversed range", 1, "101", "2024-01-06", "2024-01-05", "", ErrInvalidDateRange},
		{"unknown guest", 99, "101", "2024-01-05", "2024-01-06", "", ErrNotFound},
		{"unknown room", 1, "999", "2024-01-05", "2024-01-06", "", ErrNotFound},
		{"terminal initial status", 1, "101", "2024-01-05", "2024-01-06", model.StatusCheckedOut, ErrIllegalTransition},
	}
	for _, c := range cases {
		_, err := create(t, o, c.guest, c.room, c.in, c.out, c.status)
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
	if n := s.count(); n != 0 {
		t.Fatalf("reservations persisted on failure: %d", n)
	}
	if got := s.room("101").Status; got != model.RoomAvailable {
		t.Fatalf("room 101 = %s, want AVAILABLE", got)
	}
}

func TestCreateTodayAllowedInHotelZone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 2024-01-01 20:00 UTC is already 2024-01-02 in the hotel's zone.
	now := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	o, _ := fixture(t, WithClock(func() time.Time { return now }), WithLocation(loc))
	if _, err := create(t, o, 1, "101", "2024-01-01", "2024-01-03", ""); !errors.Is(err, ErrPastCheckIn) {
		t.Fatalf("yesterday: err = %v, want ErrPastCheckIn", err)
	}
	mustCreate(t, o, "101", "2024-01-02", "2024-01-03", "")
}

func TestCreatePendingLeavesRoomAvailable(t *testing.T) {
	o, s := fixture(t)
	r := mustCreate(t, o, "101", "2024-01-02", "2024-01-04", "")
	if r.Status != model.StatusPending {
		t.Fatalf("status = %s, want PENDING", r.Status)
	}
	if got := s.room("101").Status; got != model.RoomAvailable {
		t.Fatalf("room = %s, want AVAILABLE", got)
	}
}

func TestCreateRollsBackOnStoreFailure(t *testing.T) {
	o, s := fixture(t)
	s.failSaveRoom = errBoom
	_, err := create(t, o, 1, "101", "2024-01-02", "2024-01-04", model.StatusConfirmed)
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want store error", err)
	}
	if n := s.count(); n != 0 {
		t.Fatalf("reservation persisted despite failed room update")
	}
}

func TestCheckInOnPendingIsIllegal(t *testing.T) {
	o, s := fixture(t)
	r := mustCreate(t, o, "101", "2024-01-02", "2024-01-04", model.StatusPending)
	if _, err := o.CheckIn(context.Background(), r.ID); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("err = %v, want ErrIllegalTransition", err)
	}
	if got := s.reservation(r.ID).Status; got != model.StatusPending {
		t.Fatalf("status = %s, want PENDING", got)
	}
	if got := s.room("101").Status; got != model.RoomAvailable {
		t.Fatalf("room = %s, want AVAILABLE", got)
	}
}

func TestLifecycle(t *testing.T) {
	pub := &recordingPublisher{}
	o, s := fixture(t, WithPublisher(pub))
	ctx := context.Background()

	r := mustCreate(t, o, "101", "2024-01-02", "2024-01-04", model.StatusPending)
	if _, err := o.Confirm(ctx, r.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got := s.room("101").Status; got != model.RoomOccupied {
		t.Fatalf("after confirm room = %s, want OCCUPIED", got)
	}
	if _, err := o.CheckIn(ctx, r.ID); err != nil {
		t.Fatalf("check in: %v", err)
	}
	out, err := o.CheckOut(ctx, r.ID)
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if out.Status != model.StatusCheckedOut {
		t.Fatalf("status = %s, want CHECKED_OUT", out.Status)
	}
	if got := s.room("101").Status; got != model.RoomAvailable {
		t.Fatalf("after check out room = %s, want AVAILABLE", got)
	}

	if _, err := o.Cancel(ctx, r.ID); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("cancel checked out: err = %v, want ErrIllegalTransition", err)
	}
	if _, err := o.CheckOut(ctx, r.ID); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("second check out: err = %v, want ErrIllegalTransition", err)
	}

	want := []EventType{EventCreated, EventConfirmed, EventCheckedIn, EventCheckedOut}
	if len(pub.events) != len(want) {
		t.Fatalf("events = %d, want %d", len(pub.events), len(want))
	}
	for i, typ := range want {
		if pub.events[i].Type != typ {
			t.Fatalf("event %d = %s, want %s", i, pub.events[i].Type, typ)
		}
	}
	last := pub.events[3]
	if last.PreviousStatus != model.StatusCheckedIn || last.RoomStatuses["101"] != model.RoomAvailable {
		t.Fatalf("check-out event = %+v", last)
	}
}

func TestCancelReleasesRoom(t *testing.T) {
	o, s := fixture(t)
	r := mustCreate(t, o, "101", "2024-01-02", "2024-01-04", model.StatusConfirmed)
	if _, err := o.Cancel(context.Background(), r.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := s.room("101").Status; got != model.RoomAvailable {
		t.Fatalf("room = %s, want AVAILABLE", got)
	}
	if _, err := o.Cancel(context.Background(), r.ID); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("cancel twice: err = %v, want ErrIllegalTransition", err)
	}
}

func TestCancelKeepsRoomOfCheckedInGuest(t *testing.T) {
	o, s := fixture(t)
	ctx := context.Background()
	stay := mustCreate(t, o, "101", "2024-01-02", "2024-01-04", model.StatusConfirmed)
	if _, err := o.CheckIn(ctx, stay.ID); err != nil {
		t.Fatalf("check in: %v", err)
	}
	later := mustCreate(t, o, "101", "2024-01-10", "2024-01-12", model.StatusConfirmed)
	if _, err := o.Cancel(ctx, later.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := s.room("101").Status; got != model.RoomOccupied {
		t.Fatalf("room = %s, want OCCUPIED while guest is checked in", got)
	}
}

func TestCancelKeepsRoomOfOtherConfirmedStay(t *testing.T) {
	o, s := fixture(t)
	ctx := context.Background()
	first := mustCreate(t, o, "101", "2024-01-02", "2024-01-04", model.StatusConfirmed)
	mustCreate(t, o, "101", "2024-01-10", "2024-01-12", model.StatusConfirmed)
	if _, err := o.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := s.room("101").Status; got != model.RoomOccupied {
		t.Fatalf("room = %s, want OCCUPIED while another stay is confirmed", got)
	}
}

func TestCancelPendingLeavesMaintenance(t *testing.T) {
	o, s := fixture(t)
	r := mustCreate(t, o, "101", "2024-01-02", "2024-01-04", model.StatusPending)
	s.mu.Lock()
	rm := s.rooms["101"]
	rm.Status = model.RoomMaintenance
	s.rooms["101"] = rm
	s.mu.Unlock()
	if _, err := o.Cancel(context.Background(), r.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := s.room("101").Status; got != model.RoomMaintenance {
		t.Fatalf("room = %s, want MAINTENANCE", got)
	}
}

func TestTransitionUnknownReservation(t *testing.T) {
	o, _ := fixture(t)
	if _, err := o.CheckIn(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateReservation(t *testing.T) {
	o, s := fixture(t)
	ctx := context.Background()
	a := mustCreate(t, o, "101", "2024-01-10", "2024-01-15", model.StatusConfirmed)
	mustCreate(t, o, "102", "2024-01-20", "2024-01-22", model.StatusPending)

	// Shrinking a stay must not conflict with itself.
	up, err := o.UpdateReservation(ctx, a.ID, UpdateInput{
		GuestID: 1, RoomNumber: "101", CheckIn: day(t, "2024-01-11"), CheckOut: day(t, "2024-01-14"), Notes: "late arrival",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if up.TotalPrice != 300 || up.Notes != "late arrival" || up.Status != model.StatusConfirmed {
		t.Fatalf("updated = %+v", up)
	}

	_, err = o.UpdateReservation(ctx, a.ID, UpdateInput{
		GuestID: 1, RoomNumber: "102", CheckIn: day(t, "2024-01-19"), CheckOut: day(t, "2024-01-21"),
	})
	if !errors.Is(err, ErrRoomConflict) {
		t.Fatalf("move into booked range: err = %v, want ErrRoomConflict", err)
	}
	if got := s.reservation(a.ID).RoomNumber; got != "101" {
		t.Fatalf("room after failed move = %s, want 101", got)
	}

	moved, err := o.UpdateReservation(ctx, a.ID, UpdateInput{
		GuestID: 2, RoomNumber: "102", CheckIn: day(t, "2024-01-11"), CheckOut: day(t, "2024-01-14"),
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.TotalPrice != 240 || moved.GuestID != 2 {
		t.Fatalf("moved = %+v", moved)
	}
	if got := s.room("101").Status; got != model.RoomAvailable {
		t.Fatalf("old room = %s, want AVAILABLE", got)
	}
	if got := s.room("102").Status; got != model.RoomOccupied {
		t.Fatalf("new room = %s, want OCCUPIED", got)
	}
}

func TestUpdateValidation(t *testing.T) {
	o, s := fixture(t)
	ctx := context.Background()
	r := mustCreate(t, o, "101", "2024-01-10", "2024-01-15", model.StatusPending)

	cases := []struct {
		name string
		in   UpdateInput
		want error
	}{
		{"reversed", UpdateInput{GuestID: 1, RoomNumber: "101", CheckIn: day(t, "2024-01-15"), CheckOut: day(t, "2024-01-10")}, ErrInvalidDateRange},
		{"unknown guest", UpdateInput{GuestID: 9, RoomNumber: "101", CheckIn: day(t, "2024-01-10"), CheckOut: day(t, "2024-01-15")}, ErrNotFound},
		{"unknown room", UpdateInput{GuestID: 1, RoomNumber: "404", CheckIn: day(t, "2024-01-10"), CheckOut: day(t, "2024-01-15")}, ErrNotFound},
		{"skip to checked in", UpdateInput{GuestID: 1, RoomNumber: "101", CheckIn: day(t, "2024-01-10"), CheckOut: day(t, "2024-01-15"), Status: model.StatusCheckedIn}, ErrIllegalTransition},
	}
	for _, c := range cases {
		if _, err := o.UpdateReservation(ctx, r.ID, c.in); !errors.Is(err, c.want) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
	if got := s.reservation(r.ID); got.TotalPrice != 500 || got.Status != model.StatusPending {
		t.Fatalf("reservation changed by failed updates: %+v", got)
	}
	if _, err := o.UpdateReservation(ctx, 77, cases[2].in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown reservation: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatusThroughStateMachine(t *testing.T) {
	o, s := fixture(t)
	r := mustCreate(t, o, "101", "2024-01-10", "2024-01-15", model.StatusPending)
	up, err := o.UpdateReservation(context.Background(), r.ID, UpdateInput{
		GuestID: 1, RoomNumber: "101", CheckIn: r.CheckIn, CheckOut: r.CheckOut, Status: model.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if up.Status != model.StatusConfirmed || s.room("101").Status != model.RoomOccupied {
		t.Fatalf("status = %s room = %s", up.Status, s.room("101").Status)
	}
}

func TestUpdateClosedReservationDates(t *testing.T) {
	o, _ := fixture(t)
	ctx := context.Background()
	r := mustCreate(t, o, "101", "2024-01-10", "2024-01-15", model.StatusPending)
	if _, err := o.Cancel(ctx, r.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := o.UpdateReservation(ctx, r.ID, UpdateInput{
		GuestID: 1, RoomNumber: "101", CheckIn: day(t, "2024-01-11"), CheckOut: day(t, "2024-01-15"),
	})
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("err = %v, want ErrIllegalTransition", err)
	}
	if _, err := o.UpdateReservation(ctx, r.ID, UpdateInput{
		GuestID: 1, RoomNumber: "101", CheckIn: r.CheckIn, CheckOut: r.CheckOut, Notes: "refund issued",
	}); err != nil {
		t.Fatalf("notes on closed reservation: %v", err)
	}
}

func TestViewDetails(t *testing.T) {
	o, _ := fixture(t)
	r := mustCreate(t, o, "101", "2024-01-02", "2024-01-05", model.StatusConfirmed)
	d, err := o.ViewDetails(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if d.GuestName != "Ada Lovelace" || d.Nights != 3 || d.TotalPrice != 300 || d.CheckIn != "2024-01-02" {
		t.Fatalf("details = %+v", d)
	}
	if _, err := o.ViewDetails(context.Background(), 500); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestQuote(t *testing.T) {
	o, _ := fixture(t)
	mustCreate(t, o, "101", "2024-01-02", "2024-01-05", model.StatusPending)
	q, err := o.ComputeTotal(context.Background(), "101", day(t, "2024-01-04"), day(t, "2024-01-06"))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.Total != 200 || q.Nights != 2 || q.Available {
		t.Fatalf("quote = %+v", q)
	}
	if _, err := o.IsAvailable(context.Background(), "nope", day(t, "2024-01-04"), day(t, "2024-01-06"), 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown room: err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentCreatesNeverOverlap(t *testing.T) {
	o, s := fixture(t)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)
	starts := []string{"2024-02-01", "2024-02-02", "2024-02-03", "2024-02-04"}
	for i := 0; i < 16; i++ {
		in := starts[i%len(starts)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := day(t, in)
			_, err := o.CreateReservation(context.Background(), CreateInput{
				GuestID: 1, RoomNumber: "101", CheckIn: start, CheckOut: start.AddDate(0, 0, 3),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrRoomConflict):
				conflict++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if ok+conflict != 16 || ok == 0 {
		t.Fatalf("ok = %d conflict = %d", ok, conflict)
	}

	rs, _ := s.GetReservationsByRoom(context.Background(), "101")
	for i := range rs {
		for j := i + 1; j < len(rs); j++ {
			if Overlaps(rs[i].CheckIn, rs[i].CheckOut, rs[j].CheckIn, rs[j].CheckOut) {
				t.Fatalf("reservations %d and %d overlap", rs[i].ID, rs[j].ID)
			}
		}
	}
}

func TestLockTimeoutReturnsBusy(t *testing.T) {
	o, s := fixture(t, WithLocker(busyLocker{}), WithLockWait(10*time.Millisecond))
	_, err := create(t, o, 1, "101", "2024-01-02", "2024-01-04", "")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
	if s.count() != 0 {
		t.Fatalf("reservation persisted without lock")
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	pub := &recordingPublisher{err: errBoom}
	o, s := fixture(t, WithPublisher(pub))
	if _, err := create(t, o, 1, "101", "2024-01-02", "2024-01-04", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.count() != 1 || len(pub.events) != 1 {
		t.Fatalf("count = %d events = %d", s.count(), len(pub.events))
	}
}

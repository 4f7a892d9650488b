package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ErrBusy is returned when a room lock could not be obtained in time.
var ErrBusy = errors.New("room is busy, try again")

// errRoomMoved signals that a reservation changed rooms between the
// unlocked lookup and the locked re-read.
var errRoomMoved = errors.New("reservation moved to another room")

const (
	defaultLockWait = 5 * time.Second
	maxRelockTries  = 3
)

// CreateInput carries the caller's proposal for a new reservation.  An empty
// Status means PENDING.
type CreateInput struct {
	GuestID    uint64
	RoomNumber string
	CheckIn    time.Time
	CheckOut   time.Time
	Status     model.ReservationStatus
	Notes      string
}

// UpdateInput carries the full edited state of a reservation.  An empty
// Status keeps the current one.
type UpdateInput struct {
	GuestID    uint64
	RoomNumber string
	CheckIn    time.Time
	CheckOut   time.Time
	Status     model.ReservationStatus
	Notes      string
}

// Details is the read-only projection shown to staff.
type Details struct {
	ReservationID uint64                  `json:"reservation_id"`
	GuestID       uint64                  `json:"guest_id"`
	GuestName     string                  `json:"guest_name"`
	RoomNumber    string                  `json:"room_number"`
	CheckIn       string                  `json:"check_in"`
	CheckOut      string                  `json:"check_out"`
	Nights        int                     `json:"nights"`
	TotalPrice    float64                 `json:"total_price"`
	Status        model.ReservationStatus `json:"status"`
	Notes         string                  `json:"notes"`
}

// Quote is the price and availability of a room for a date range.
type Quote struct {
	RoomNumber    string  `json:"room_number"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	Nights        int     `json:"nights"`
	PricePerNight float64 `json:"price_per_night"`
	Total         float64 `json:"total"`
	Available     bool    `json:"available"`
}

// Orchestrator validates and commits reservation changes.  Every mutating
// operation holds the lock of each room it touches across the availability
// check and the writes, and runs inside one store transaction.
type Orchestrator struct {
	store    TxStore
	locker   Locker
	events   EventPublisher
	log      *zap.Logger
	now      func() time.Time
	loc      *time.Location
	lockWait time.Duration
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithLocker replaces the default in-process room locker.
func WithLocker(l Locker) Option { return func(o *Orchestrator) { o.locker = l } }

// WithPublisher sets the destination of lifecycle events.
func WithPublisher(p EventPublisher) Option { return func(o *Orchestrator) { o.events = p } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(o *Orchestrator) { o.log = l } }

// WithClock overrides time.Now, used to decide what "today" is.
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// WithLocation sets the hotel's time zone for the "today" check.
func WithLocation(loc *time.Location) Option { return func(o *Orchestrator) { o.loc = loc } }

// WithLockWait bounds how long an operation waits for a room lock.
func WithLockWait(d time.Duration) Option { return func(o *Orchestrator) { o.lockWait = d } }

// NewOrchestrator builds an Orchestrator over store.  It panics when store
// is nil.
func NewOrchestrator(store TxStore, opts ...Option) *Orchestrator {
	if store == nil {
		panic("nil store passed to NewOrchestrator")
	}
	o := &Orchestrator{
		store:    store,
		locker:   NewKeyedMutex(),
		events:   nopPublisher{},
		log:      zap.NewNop(),
		now:      time.Now,
		loc:      time.UTC,
		lockWait: defaultLockWait,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) today() time.Time {
	return model.DateOf(o.now().In(o.loc))
}

// IsAvailable reports whether the room is free for [checkIn, checkOut),
// ignoring excludeID.  Unknown rooms yield ErrNotFound.
func (o *Orchestrator) IsAvailable(ctx context.Context, roomNumber string, checkIn, checkOut time.Time, excludeID uint64) (bool, error) {
	if _, err := o.store.GetRoom(ctx, roomNumber); err != nil {
		return false, err
	}
	return Checker{Store: o.store}.IsAvailable(ctx, roomNumber, checkIn, checkOut, excludeID)
}

// ComputeTotal prices a stay in the given room.
func (o *Orchestrator) ComputeTotal(ctx context.Context, roomNumber string, checkIn, checkOut time.Time) (Quote, error) {
	room, err := o.store.GetRoom(ctx, roomNumber)
	if err != nil {
		return Quote{}, err
	}
	total, err := ComputeTotal(room.PricePerNight, checkIn, checkOut)
	if err != nil {
		return Quote{}, err
	}
	ok, err := Checker{Store: o.store}.IsAvailable(ctx, roomNumber, checkIn, checkOut, 0)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		RoomNumber:    room.Number,
		CheckIn:       model.DateOf(checkIn).Format(model.DateLayout),
		CheckOut:      model.DateOf(checkOut).Format(model.DateLayout),
		Nights:        Nights(checkIn, checkOut),
		PricePerNight: room.PricePerNight,
		Total:         total,
		Available:     ok,
	}, nil
}

// CreateReservation books a room.  It fails with ErrPastCheckIn,
// ErrInvalidDateRange, ErrNotFound, ErrRoomConflict or ErrIllegalTransition
// and persists nothing on failure.
func (o *Orchestrator) CreateReservation(ctx context.Context, in CreateInput) (*model.Reservation, error) {
	in.CheckIn, in.CheckOut = model.DateOf(in.CheckIn), model.DateOf(in.CheckOut)
	if in.Status == "" {
		in.Status = model.StatusPending
	}
	effect, err := InitialEffect(in.Status)
	if err != nil {
		return nil, err
	}
	if today := o.today(); in.CheckIn.Before(today) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrPastCheckIn,
			in.CheckIn.Format(model.DateLayout), today.Format(model.DateLayout))
	}
	if Nights(in.CheckIn, in.CheckOut) <= 0 {
		return nil, invalidRange(in.CheckIn, in.CheckOut)
	}

	unlock, err := o.lockRooms(ctx, in.RoomNumber)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		created model.Reservation
		rooms   map[string]model.RoomStatus
	)
	err = o.store.InTx(ctx, []string{in.RoomNumber}, func(ctx context.Context, s Store) error {
		if _, err := s.GetGuest(ctx, in.GuestID); err != nil {
			return err
		}
		room, err := s.GetRoom(ctx, in.RoomNumber)
		if err != nil {
			return err
		}
		if err := checkConflict(ctx, s, in.RoomNumber, in.CheckIn, in.CheckOut, 0); err != nil {
			return err
		}
		total, err := ComputeTotal(room.PricePerNight, in.CheckIn, in.CheckOut)
		if err != nil {
			return err
		}
		now := o.now().UTC()
		r := model.Reservation{
			GuestID:    in.GuestID,
			RoomNumber: room.Number,
			CheckIn:    in.CheckIn,
			CheckOut:   in.CheckOut,
			Status:     in.Status,
			TotalPrice: total,
			Notes:      in.Notes,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		id, err := s.SaveReservation(ctx, &r)
		if err != nil {
			return fmt.Errorf("save reservation: %w", err)
		}
		r.ID = id
		rooms, err = syncRooms(ctx, s, nil, &r, effect)
		if err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.log.Info("reservation created",
		zap.Uint64("reservation_id", created.ID),
		zap.String("room", created.RoomNumber),
		zap.String("status", string(created.Status)),
		zap.Float64("total", created.TotalPrice))
	o.publish(ctx, Event{Type: EventCreated, Reservation: created, RoomStatuses: rooms})
	return &created, nil
}

// UpdateReservation replaces the editable fields of a reservation.  The
// availability check is repeated (excluding the reservation itself) when the
// room or dates change, the total is recomputed, and a status change goes
// through the state machine.
func (o *Orchestrator) UpdateReservation(ctx context.Context, id uint64, in UpdateInput) (*model.Reservation, error) {
	in.CheckIn, in.CheckOut = model.DateOf(in.CheckIn), model.DateOf(in.CheckOut)
	if Nights(in.CheckIn, in.CheckOut) <= 0 {
		return nil, invalidRange(in.CheckIn, in.CheckOut)
	}

	var (
		updated model.Reservation
		prev    model.ReservationStatus
		rooms   map[string]model.RoomStatus
	)
	err := o.withReservation(ctx, id, []string{in.RoomNumber}, func(ctx context.Context, s Store, cur *model.Reservation) error {
		prev = cur.Status
		next := *cur
		next.GuestID = in.GuestID
		next.RoomNumber = in.RoomNumber
		next.CheckIn = in.CheckIn
		next.CheckOut = in.CheckOut
		next.Notes = in.Notes
		if in.Status != "" {
			next.Status = in.Status
		}

		roomChanged := cur.RoomNumber != next.RoomNumber
		datesChanged := !cur.CheckIn.Equal(next.CheckIn) || !cur.CheckOut.Equal(next.CheckOut)

		effect := EffectNone
		if next.Status != cur.Status {
			eff, err := Transition(cur.Status, next.Status)
			if err != nil {
				return err
			}
			effect = eff
		} else if cur.Status.Terminal() && (roomChanged || datesChanged) {
			return &TransitionError{From: cur.Status, To: next.Status, Reason: "reservation is closed"}
		}

		if _, err := s.GetGuest(ctx, next.GuestID); err != nil {
			return err
		}
		room, err := s.GetRoom(ctx, next.RoomNumber)
		if err != nil {
			return err
		}
		if (roomChanged || datesChanged) && blocking(next.Status) {
			if err := checkConflict(ctx, s, next.RoomNumber, next.CheckIn, next.CheckOut, cur.ID); err != nil {
				return err
			}
		}
		total, err := ComputeTotal(room.PricePerNight, next.CheckIn, next.CheckOut)
		if err != nil {
			return err
		}
		next.TotalPrice = total
		next.UpdatedAt = o.now().UTC()

		if _, err := s.SaveReservation(ctx, &next); err != nil {
			return fmt.Errorf("save reservation: %w", err)
		}
		rooms, err = syncRooms(ctx, s, cur, &next, effect)
		if err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.log.Info("reservation updated",
		zap.Uint64("reservation_id", updated.ID),
		zap.String("room", updated.RoomNumber),
		zap.String("from", string(prev)),
		zap.String("to", string(updated.Status)))
	o.publish(ctx, Event{Type: EventUpdated, Reservation: updated, PreviousStatus: prev, RoomStatuses: rooms})
	return &updated, nil
}

// Confirm moves a PENDING reservation to CONFIRMED.
func (o *Orchestrator) Confirm(ctx context.Context, id uint64) (*model.Reservation, error) {
	return o.transition(ctx, id, model.StatusConfirmed, EventConfirmed)
}

// CheckIn moves a CONFIRMED reservation to CHECKED_IN and occupies the room.
func (o *Orchestrator) CheckIn(ctx context.Context, id uint64) (*model.Reservation, error) {
	return o.transition(ctx, id, model.StatusCheckedIn, EventCheckedIn)
}

// CheckOut moves a CHECKED_IN reservation to CHECKED_OUT and frees the room.
func (o *Orchestrator) CheckOut(ctx context.Context, id uint64) (*model.Reservation, error) {
	return o.transition(ctx, id, model.StatusCheckedOut, EventCheckedOut)
}

// Cancel cancels a PENDING or CONFIRMED reservation.
func (o *Orchestrator) Cancel(ctx context.Context, id uint64) (*model.Reservation, error) {
	return o.transition(ctx, id, model.StatusCancelled, EventCancelled)
}

func (o *Orchestrator) transition(ctx context.Context, id uint64, to model.ReservationStatus, typ EventType) (*model.Reservation, error) {
	var (
		updated model.Reservation
		prev    model.ReservationStatus
		rooms   map[string]model.RoomStatus
	)
	err := o.withReservation(ctx, id, nil, func(ctx context.Context, s Store, cur *model.Reservation) error {
		effect, err := Transition(cur.Status, to)
		if err != nil {
			return err
		}
		prev = cur.Status
		next := *cur
		next.Status = to
		next.UpdatedAt = o.now().UTC()
		if _, err := s.SaveReservation(ctx, &next); err != nil {
			return fmt.Errorf("save reservation: %w", err)
		}
		rooms, err = syncRooms(ctx, s, cur, &next, effect)
		if err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.log.Info("reservation status changed",
		zap.Uint64("reservation_id", updated.ID),
		zap.String("room", updated.RoomNumber),
		zap.String("from", string(prev)),
		zap.String("to", string(to)))
	o.publish(ctx, Event{Type: typ, Reservation: updated, PreviousStatus: prev, RoomStatuses: rooms})
	return &updated, nil
}

// ViewDetails returns the staff projection of a reservation.
func (o *Orchestrator) ViewDetails(ctx context.Context, id uint64) (*Details, error) {
	r, err := o.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := o.store.GetGuest(ctx, r.GuestID)
	if err != nil {
		return nil, err
	}
	return &Details{
		ReservationID: r.ID,
		GuestID:       g.ID,
		GuestName:     g.Name(),
		RoomNumber:    r.RoomNumber,
		CheckIn:       r.CheckIn.Format(model.DateLayout),
		CheckOut:      r.CheckOut.Format(model.DateLayout),
		Nights:        Nights(r.CheckIn, r.CheckOut),
		TotalPrice:    r.TotalPrice,
		Status:        r.Status,
		Notes:         r.Notes,
	}, nil
}

// withReservation locks the reservation's room (plus extraRooms) and runs fn
// in a transaction with a fresh copy of the reservation.  If the
// reservation moved rooms before the lock was taken it starts over.
func (o *Orchestrator) withReservation(ctx context.Context, id uint64, extraRooms []string,
	fn func(ctx context.Context, s Store, cur *model.Reservation) error) error {
	for attempt := 0; attempt < maxRelockTries; attempt++ {
		cur, err := o.store.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		rooms := append([]string{cur.RoomNumber}, extraRooms...)
		unlock, err := o.lockRooms(ctx, rooms...)
		if err != nil {
			return err
		}
		err = o.store.InTx(ctx, rooms, func(ctx context.Context, s Store) error {
			fresh, err := s.GetReservation(ctx, id)
			if err != nil {
				return err
			}
			if fresh.RoomNumber != cur.RoomNumber {
				return errRoomMoved
			}
			return fn(ctx, s, fresh)
		})
		unlock()
		if errors.Is(err, errRoomMoved) {
			continue
		}
		return err
	}
	return fmt.Errorf("reservation %d: %w", id, ErrBusy)
}

// lockRooms acquires the lock of every distinct room in sorted order and
// returns a func releasing them all.
func (o *Orchestrator) lockRooms(ctx context.Context, rooms ...string) (func(), error) {
	keys := make([]string, 0, len(rooms))
	seen := make(map[string]struct{}, len(rooms))
	for _, r := range rooms {
		if _, ok := seen[r]; ok || r == "" {
			continue
		}
		seen[r] = struct{}{}
		keys = append(keys, r)
	}
	sort.Strings(keys)

	ctx, cancel := context.WithTimeout(ctx, o.lockWait)
	defer cancel()

	held := make([]func(), 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}
	for _, k := range keys {
		unlock, err := o.locker.Lock(ctx, "room:"+k)
		if err != nil {
			release()
			o.log.Warn("room lock not acquired", zap.String("room", k), zap.Error(err))
			return nil, fmt.Errorf("lock room %s: %w", k, ErrBusy)
		}
		held = append(held, unlock)
	}
	return release, nil
}

func (o *Orchestrator) publish(ctx context.Context, ev Event) {
	ev.OccurredAt = o.now().UTC()
	if err := o.events.Publish(ctx, ev); err != nil {
		o.log.Warn("publish reservation event failed",
			zap.String("type", string(ev.Type)),
			zap.Uint64("reservation_id", ev.Reservation.ID),
			zap.Error(err))
	}
}

func checkConflict(ctx context.Context, s Store, roomNumber string, checkIn, checkOut time.Time, excludeID uint64) error {
	conflict, err := Checker{Store: s}.Conflict(ctx, roomNumber, checkIn, checkOut, excludeID)
	if err != nil {
		return fmt.Errorf("load reservations for room %s: %w", roomNumber, err)
	}
	if conflict != nil {
		return &ConflictError{RoomNumber: roomNumber, ReservationID: conflict.ID}
	}
	return nil
}

// syncRooms writes the room statuses implied by moving a reservation from
// before (nil on creation) to after under effect.  It returns the statuses
// it wrote, keyed by room number.
func syncRooms(ctx context.Context, s Store, before, after *model.Reservation, effect Effect) (map[string]model.RoomStatus, error) {
	written := make(map[string]model.RoomStatus)
	roomChanged := before != nil && before.RoomNumber != after.RoomNumber

	if before != nil && Occupies(before.Status) && (!Occupies(after.Status) || roomChanged) {
		var (
			freed bool
			err   error
		)
		if effect == EffectVacate {
			err = s.SaveRoomStatus(ctx, before.RoomNumber, model.RoomAvailable)
			freed = err == nil
		} else {
			freed, err = releaseRoom(ctx, s, before.RoomNumber, before.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("update room %s: %w", before.RoomNumber, err)
		}
		if freed {
			written[before.RoomNumber] = model.RoomAvailable
		}
	}

	if Occupies(after.Status) && (effect == EffectOccupy || roomChanged) {
		if err := s.SaveRoomStatus(ctx, after.RoomNumber, model.RoomOccupied); err != nil {
			return nil, fmt.Errorf("update room %s: %w", after.RoomNumber, err)
		}
		written[after.RoomNumber] = model.RoomOccupied
	}
	return written, nil
}

// releaseRoom marks the room AVAILABLE when it is OCCUPIED and no other
// reservation of the room still occupies it.
func releaseRoom(ctx context.Context, s Store, roomNumber string, reservationID uint64) (bool, error) {
	room, err := s.GetRoom(ctx, roomNumber)
	if err != nil {
		return false, err
	}
	if room.Status != model.RoomOccupied {
		return false, nil
	}
	others, err := s.GetReservationsByRoom(ctx, roomNumber)
	if err != nil {
		return false, err
	}
	for _, r := range others {
		if r.ID != reservationID && Occupies(r.Status) {
			return false, nil
		}
	}
	if err := s.SaveRoomStatus(ctx, roomNumber, model.RoomAvailable); err != nil {
		return false, err
	}
	return true, nil
}

func invalidRange(checkIn, checkOut time.Time) error {
	return fmt.Errorf("%w: check-out %s must be after check-in %s", ErrInvalidDateRange,
		checkOut.Format(model.DateLayout), checkIn.Format(model.DateLayout))
}

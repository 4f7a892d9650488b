package booking

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// memStore is an in-memory TxStore.  InTx works on a copy of the data and
// swaps it in only when fn succeeds.
type memStore struct {
	mu           sync.Mutex
	guests       map[uint64]model.Guest
	rooms        map[string]model.Room
	reservations map[uint64]model.Reservation
	nextID       uint64

	failSaveRoom error
}

func newMemStore() *memStore {
	return &memStore{
		guests:       make(map[uint64]model.Guest),
		rooms:        make(map[string]model.Room),
		reservations: make(map[uint64]model.Reservation),
	}
}

func (m *memStore) addGuest(g model.Guest) { m.guests[g.ID] = g }
func (m *memStore) addRoom(r model.Room)   { m.rooms[r.Number] = r }

func (m *memStore) addReservation(r model.Reservation) uint64 {
	m.nextID++
	r.ID = m.nextID
	m.reservations[r.ID] = r
	return r.ID
}

func (m *memStore) room(number string) model.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[number]
}

func (m *memStore) reservation(id uint64) model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reservations[id]
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reservations)
}

func (m *memStore) GetReservationsByRoom(ctx context.Context, room string) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memView{m}.GetReservationsByRoom(ctx, room)
}

func (m *memStore) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memView{m}.GetReservation(ctx, id)
}

func (m *memStore) SaveReservation(ctx context.Context, r *model.Reservation) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memView{m}.SaveReservation(ctx, r)
}

func (m *memStore) SaveRoomStatus(ctx context.Context, room string, st model.RoomStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memView{m}.SaveRoomStatus(ctx, room, st)
}

func (m *memStore) GetRoom(ctx context.Context, room string) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memView{m}.GetRoom(ctx, room)
}

func (m *memStore) GetGuest(ctx context.Context, id uint64) (*model.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memView{m}.GetGuest(ctx, id)
}

func (m *memStore) InTx(ctx context.Context, _ []string, fn func(ctx context.Context, s Store) error) error {
	m.mu.Lock()
	tx := &memStore{
		guests:       m.guests,
		rooms:        make(map[string]model.Room, len(m.rooms)),
		reservations: make(map[uint64]model.Reservation, len(m.reservations)),
		nextID:       m.nextID,
		failSaveRoom: m.failSaveRoom,
	}
	for k, v := range m.rooms {
		tx.rooms[k] = v
	}
	for k, v := range m.reservations {
		tx.reservations[k] = v
	}
	m.mu.Unlock()

	if err := fn(ctx, memView{tx}); err != nil {
		return err
	}

	m.mu.Lock()
	m.rooms, m.reservations, m.nextID = tx.rooms, tx.reservations, tx.nextID
	m.mu.Unlock()
	return nil
}

// memView is the unlocked Store over a memStore's maps.
type memView struct{ m *memStore }

func (v memView) GetReservationsByRoom(_ context.Context, room string) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range v.m.reservations {
		if r.RoomNumber == room {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v memView) GetReservation(_ context.Context, id uint64) (*model.Reservation, error) {
	r, ok := v.m.reservations[id]
	if !ok {
		return nil, notFound("reservation", id)
	}
	return &r, nil
}

func (v memView) SaveReservation(_ context.Context, r *model.Reservation) (uint64, error) {
	if r.ID == 0 {
		v.m.nextID++
		cp := *r
		cp.ID = v.m.nextID
		v.m.reservations[cp.ID] = cp
		return cp.ID, nil
	}
	if _, ok := v.m.reservations[r.ID]; !ok {
		return 0, notFound("reservation", r.ID)
	}
	v.m.reservations[r.ID] = *r
	return r.ID, nil
}

func (v memView) SaveRoomStatus(_ context.Context, room string, st model.RoomStatus) error {
	if v.m.failSaveRoom != nil {
		return v.m.failSaveRoom
	}
	rm, ok := v.m.rooms[room]
	if !ok {
		return notFound("room", room)
	}
	rm.Status = st
	v.m.rooms[room] = rm
	return nil
}

func (v memView) GetRoom(_ context.Context, room string) (*model.Room, error) {
	rm, ok := v.m.rooms[room]
	if !ok {
		return nil, notFound("room", room)
	}
	return &rm, nil
}

func (v memView) GetGuest(_ context.Context, id uint64) (*model.Guest, error) {
	g, ok := v.m.guests[id]
	if !ok {
		return nil, notFound("guest", id)
	}
	return &g, nil
}

var errBoom = errors.New("boom")

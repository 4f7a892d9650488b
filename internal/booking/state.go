package booking

import "github.com/iliyamo/hotel-reservation/internal/model"

// Effect is the room status side effect of a reservation transition.
type Effect int

const (
	// EffectNone leaves the room untouched.
	EffectNone Effect = iota
	// EffectOccupy marks the room OCCUPIED.
	EffectOccupy
	// EffectVacate marks the room AVAILABLE.
	EffectVacate
	// EffectRelease marks the room AVAILABLE only when it is OCCUPIED on
	// account of the reservation being changed.
	EffectRelease
)

func (e Effect) String() string {
	switch e {
	case EffectOccupy:
		return "occupy"
	case EffectVacate:
		return "vacate"
	case EffectRelease:
		return "release"
	}
	return "none"
}

// transitions lists every legal status change.  Statuses without an entry
// are terminal.
var transitions = map[model.ReservationStatus]map[model.ReservationStatus]Effect{
	model.StatusPending: {
		model.StatusConfirmed: EffectOccupy,
		model.StatusCancelled: EffectRelease,
	},
	model.StatusConfirmed: {
		model.StatusCheckedIn: EffectOccupy,
		model.StatusCancelled: EffectRelease,
	},
	model.StatusCheckedIn: {
		model.StatusCheckedOut: EffectVacate,
	},
}

// Transition validates from -> to and returns the room side effect.
func Transition(from, to model.ReservationStatus) (Effect, error) {
	if !to.Valid() {
		return EffectNone, &TransitionError{From: from, To: to, Reason: "unknown status"}
	}
	if from.Terminal() {
		return EffectNone, &TransitionError{From: from, To: to, Reason: "reservation is closed"}
	}
	eff, ok := transitions[from][to]
	if !ok {
		return EffectNone, &TransitionError{From: from, To: to}
	}
	return eff, nil
}

// InitialEffect validates the status a reservation is created in and
// returns the room side effect.  Walk-ins may be created CHECKED_IN.
func InitialEffect(status model.ReservationStatus) (Effect, error) {
	switch status {
	case model.StatusPending:
		return EffectNone, nil
	case model.StatusConfirmed, model.StatusCheckedIn:
		return EffectOccupy, nil
	}
	return EffectNone, &TransitionError{To: status, Reason: "not a valid initial status"}
}

// Occupies reports whether a reservation in status s keeps its room marked
// OCCUPIED.
func Occupies(s model.ReservationStatus) bool {
	return s == model.StatusConfirmed || s == model.StatusCheckedIn
}

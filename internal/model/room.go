package model

// RoomType classifies rooms for pricing and search.
type RoomType string

const (
	RoomSingle RoomType = "SINGLE"
	RoomDouble RoomType = "DOUBLE"
	RoomSuite  RoomType = "SUITE"
	RoomDeluxe RoomType = "DELUXE"
)

// Valid reports whether t is a known room type.
func (t RoomType) Valid() bool {
	switch t {
	case RoomSingle, RoomDouble, RoomSuite, RoomDeluxe:
		return true
	}
	return false
}

// RoomStatus is the occupancy status of a room.  Only the booking
// orchestrator moves a room between AVAILABLE and OCCUPIED; MAINTENANCE is
// set by staff.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
)

// Valid reports whether s is a known room status.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance:
		return true
	}
	return false
}

// Room represents a bookable hotel room.  The room number is the unique
// key and is shared by reference across every reservation for the room.
// This struct corresponds to a row in the `rooms` table.
type Room struct {
	Number        string     `json:"room_number"`     // rooms.room_number
	Type          RoomType   `json:"type"`            // rooms.type
	Status        RoomStatus `json:"status"`          // rooms.status
	PricePerNight float64    `json:"price_per_night"` // rooms.price_per_night
	Description   string     `json:"description"`     // rooms.description
	MaxOccupancy  int        `json:"max_occupancy"`   // rooms.max_occupancy
}

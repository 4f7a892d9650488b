package model

import "time"

// ServiceCategory groups ancillary services in the catalogue.
type ServiceCategory string

const (
	CategoryRoomService  ServiceCategory = "ROOM_SERVICE"
	CategoryLaundry      ServiceCategory = "LAUNDRY"
	CategorySpa          ServiceCategory = "SPA"
	CategoryTransport    ServiceCategory = "TRANSPORT"
	CategoryMinibar      ServiceCategory = "MINIBAR"
	CategoryHousekeeping ServiceCategory = "HOUSEKEEPING"
	CategoryOther        ServiceCategory = "OTHER"
)

// Valid reports whether c is a known category.
func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryRoomService, CategoryLaundry, CategorySpa, CategoryTransport,
		CategoryMinibar, CategoryHousekeeping, CategoryOther:
		return true
	}
	return false
}

// Service is an entry of the ancillary service catalogue (spa, laundry...).
type Service struct {
	ID          uint64          `json:"id"`          // services.id
	Name        string          `json:"name"`        // services.name
	Description string          `json:"description"` // services.description
	Price       float64         `json:"price"`       // services.price
	Category    ServiceCategory `json:"category"`    // services.category
	IsActive    bool            `json:"is_active"`   // services.is_active
}

// Charge line statuses for ReservationService.Status.
const (
	ChargePending    = "PENDING"
	ChargeInProgress = "IN_PROGRESS"
	ChargeCompleted  = "COMPLETED"
	ChargeCancelled  = "CANCELLED"
)

// ReservationService is a service charge posted to a reservation.  The
// line total is Quantity × the service price at the time of the request.
type ReservationService struct {
	ID            uint64    `json:"id"`             // reservation_services.id
	ReservationID uint64    `json:"reservation_id"` // reservation_services.reservation_id
	ServiceID     uint64    `json:"service_id"`     // reservation_services.service_id
	Quantity      int       `json:"quantity"`       // reservation_services.quantity
	RequestedAt   time.Time `json:"requested_at"`   // reservation_services.date_requested
	Status        string    `json:"status"`         // reservation_services.status
	TotalPrice    float64   `json:"total_price"`    // reservation_services.total_price
	Notes         string    `json:"notes"`          // reservation_services.notes
}

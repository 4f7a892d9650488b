package model

import "strings"

// Guest is a person who stays at the hotel.  A guest row corresponds to the
// `guests` table.  Once referenced by a reservation only the contact fields
// are expected to change.
//
// Fields:
//	ID        – primary key identifier.
//	FirstName – given name.
//	LastName  – family name.
//	Email     – contact email.
//	Phone     – contact phone number.
//	IDNumber  – passport or national id shown at check-in.
//	Address   – postal address (free text).
type Guest struct {
	ID        uint64 `json:"id"`         // guests.id
	FirstName string `json:"first_name"` // guests.first_name
	LastName  string `json:"last_name"`  // guests.last_name
	Email     string `json:"email"`      // guests.email
	Phone     string `json:"phone"`      // guests.phone
	IDNumber  string `json:"id_number"`  // guests.id_number
	Address   string `json:"address"`    // guests.address
}

// Name returns the guest's display name.
func (g Guest) Name() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

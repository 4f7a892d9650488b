package model

import "time"

// PaymentMethod is how a payment was tendered.
type PaymentMethod string

const (
	MethodCash       PaymentMethod = "CASH"
	MethodCreditCard PaymentMethod = "CREDIT_CARD"
	MethodDebitCard  PaymentMethod = "DEBIT_CARD"
	MethodOnline     PaymentMethod = "ONLINE"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDebitCard, MethodOnline:
		return true
	}
	return false
}

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment is money received against a reservation.  It only references the
// reservation by id.
type Payment struct {
	ID            uint64        `json:"id"`             // payments.id
	ReservationID uint64        `json:"reservation_id"` // payments.reservation_id
	Amount        float64       `json:"amount"`         // payments.amount
	Method        PaymentMethod `json:"method"`         // payments.payment_method
	PaidAt        time.Time     `json:"paid_at"`        // payments.payment_date
	Status        PaymentStatus `json:"status"`         // payments.status
	TransactionID string        `json:"transaction_id"` // payments.transaction_id
	Notes         string        `json:"notes"`          // payments.notes
}

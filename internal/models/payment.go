package models

import "github.com/shopspring/decimal"

// Payment status values.
const (
	PaymentStatusCompleted = "completed"
)

// Payment is an immutable record appended when a participant settles their
// share of a bill.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// UserID is the payer.
	UserID string

	// BillID is the bill the payment settles a share of.
	BillID string

	// AmountPaid is the charged amount (the participant's AmountOwed).
	AmountPaid decimal.Decimal

	// Status is the terminal state of the charge.
	Status string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}

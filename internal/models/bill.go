package models

import "github.com/shopspring/decimal"

// Bill status values.
const (
	BillStatusUnpaid = "unpaid"
	BillStatusPaid   = "paid"
)

// Bill represents a shared expense split among participants.
// Status transitions to paid once every participant row has HasPaid set.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// CreatorID is the user who created the bill. The creator always has a
	// participant row of their own, pre-marked paid at creation time.
	CreatorID string

	// Title is the human-readable name for the bill (e.g. "Friday dinner").
	Title string

	// Amount is the total bill amount.
	Amount decimal.Decimal

	// DueDate is the Unix timestamp of the payment deadline. Only the
	// calendar day matters; time-of-day is ignored by the reward computation.
	DueDate int64

	// Status is either BillStatusUnpaid or BillStatusPaid.
	Status string

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64

	// Participants holds the per-user shares when the bill is loaded in full.
	Participants []Participant
}

// Participant is one user's share of one bill. There is exactly one row per
// user per bill, and it is mutated exactly once: when that user pays.
type Participant struct {
	// BillID is the bill this share belongs to.
	BillID string

	// UserID is the user who owes this share.
	UserID string

	// AmountOwed is this user's share of the bill.
	AmountOwed decimal.Decimal

	// HasPaid reports whether this share has been settled.
	HasPaid bool

	// PaidAt is the Unix timestamp of payment, zero while unpaid.
	PaidAt int64
}

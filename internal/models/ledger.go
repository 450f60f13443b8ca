package models

import "github.com/shopspring/decimal"

// Credit ledger source types.
const (
	CreditSourcePayment     = "payment"
	CreditSourceLatePenalty = "late_penalty"
	CreditSourceRedemption  = "redemption"
)

// CreditEntry is one append-only record in a user's credit ledger.
//
// The running balance is reconstructed by replaying entries in order;
// BalanceAfter is a checkpoint written at append time, not recomputed on read.
type CreditEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// UserID is the owner of the ledger this entry belongs to.
	UserID string

	// SourceType is one of the CreditSource* constants.
	SourceType string

	// SourceID references the originating record (payment ID, gift card ID).
	SourceID string

	// ChangeAmount is the signed credit delta: positive for rewards,
	// negative for penalties and redemptions.
	ChangeAmount decimal.Decimal

	// BalanceAfter is the ledger balance immediately after this entry.
	BalanceAfter decimal.Decimal

	// CreatedAt is the Unix timestamp when the entry was appended.
	CreatedAt int64
}

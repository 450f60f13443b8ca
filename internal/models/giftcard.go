package models

import "github.com/shopspring/decimal"

// GiftCard is issued when a user redeems credits. The matching ledger entry
// (SourceType redemption) references the card through its SourceID.
type GiftCard struct {
	// ID is the unique identifier for the gift card (UUID format).
	ID string

	// UserID is the redeeming user.
	UserID string

	// Brand is the gift card brand (e.g. "Amazon").
	Brand string

	// Cost is the credit amount spent on the card.
	Cost decimal.Decimal

	// Code is the generated redemption code.
	Code string

	// CreatedAt is the Unix timestamp when the card was issued.
	CreatedAt int64
}

package service

import "errors"

// Sentinel errors the handlers map onto HTTP statuses.
var (
	// ErrUnauthenticated means no user identity was found in the context.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrValidation wraps a rejected input: unbalanced shares, past due
	// dates, malformed fields. Nothing was persisted.
	ErrValidation = errors.New("validation failed")

	// ErrNotParticipant means the caller has no share on the bill.
	ErrNotParticipant = errors.New("you are not a participant on this bill")

	// ErrShareAlreadyPaid means the caller's share was already settled,
	// possibly by a concurrent payment on the same row.
	ErrShareAlreadyPaid = errors.New("share already paid")

	// ErrCardRejected means the gateway refused the card or the charge.
	// No write happened.
	ErrCardRejected = errors.New("card rejected")
)

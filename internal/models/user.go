package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login and for
	// inviting the user onto bills.
	Email string

	// DisplayName is the name shown to other participants.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Credits is the cached credit balance. It must always equal the
	// BalanceAfter of the user's most recent CreditEntry; the ledger is the
	// source of truth and this field is a checkpoint maintained alongside
	// every ledger append.
	Credits decimal.Decimal

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile update.
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID, a zero credit balance and
// creation timestamps set to now.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Credits:      decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

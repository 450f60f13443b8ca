// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/models"
)

// ErrInsufficientCredits is returned by AppendCreditEntry when a redemption
// would drive the balance negative.
var ErrInsufficientCredits = errors.New("insufficient credits")

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// DueShare pairs an unpaid participant row with its bill and the owing user's
// contact details. Used by the due-date reminder job.
type DueShare struct {
	Bill        models.Bill
	Participant models.Participant
	Email       string
	DisplayName string
}

// Store defines the interface for all persistence operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when no
	// such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns (nil, nil) when no such
	// user exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByEmails retrieves multiple users keyed by email. Emails with
	// no matching account are omitted from the result.
	GetUsersByEmails(ctx context.Context, emails []string) (map[string]*models.User, error)

	// CreateBill persists a bill and its participant rows in a single
	// transaction; nothing is written if any row fails. The bill.ID and
	// bill.CreatedAt fields are populated by the store.
	CreateBill(ctx context.Context, bill *models.Bill, participants []models.Participant) error

	// GetBill retrieves a bill with its participant rows.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// ListBillsForUser returns bills the user created or participates in,
	// newest first, each with its participant rows.
	ListBillsForUser(ctx context.Context, userID string) ([]models.Bill, error)

	// MarkParticipantPaid flips the participant's has_paid flag, guarded on
	// the row still being unpaid. Returns false when the row was already
	// paid (or missing), in which case nothing was written.
	MarkParticipantPaid(ctx context.Context, billID, userID string, paidAt int64) (bool, error)

	// CountUnpaidParticipants returns the number of participant rows on the
	// bill with has_paid still unset.
	CountUnpaidParticipants(ctx context.Context, billID string) (int, error)

	// UpdateBillStatus sets the bill's status.
	UpdateBillStatus(ctx context.Context, billID, status string) error

	// ListDueShares returns unpaid shares on unpaid bills whose due date
	// falls in [from, to), with the owing user's contact details.
	ListDueShares(ctx context.Context, from, to int64) ([]DueShare, error)

	// CreatePayment appends an immutable payment record.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// ListPaymentsForUser returns the user's payments, newest first.
	ListPaymentsForUser(ctx context.Context, userID string) ([]models.Payment, error)

	// AppendCreditEntry appends a ledger entry and updates the user's cached
	// credit balance in one transaction. The entry's BalanceAfter, ID and
	// CreatedAt are populated by the store. allowNegative permits the
	// resulting balance to drop below zero (late penalties); redemptions
	// pass false and get ErrInsufficientCredits instead.
	AppendCreditEntry(ctx context.Context, entry *models.CreditEntry, allowNegative bool) error

	// ListCreditEntries returns the user's ledger, newest first.
	ListCreditEntries(ctx context.Context, userID string) ([]models.CreditEntry, error)

	// CreateGiftCard persists a redeemed gift card.
	CreateGiftCard(ctx context.Context, card *models.GiftCard) error

	// ListGiftCards returns the user's gift cards, newest first.
	ListGiftCards(ctx context.Context, userID string) ([]models.GiftCard, error)

	// GetCreditBalance returns the user's cached credit balance.
	GetCreditBalance(ctx context.Context, userID string) (decimal.Decimal, error)

	// Close releases any resources held by the store.
	Close() error
}

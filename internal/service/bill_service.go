package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/calculator"
	"github.com/divvyapp/divvy/internal/middleware"
	"github.com/divvyapp/divvy/internal/models"
	"github.com/divvyapp/divvy/internal/notify"
	"github.com/divvyapp/divvy/internal/storage"
)

// InvitationMailer is the slice of the email sender the bill service needs.
type InvitationMailer interface {
	SendBillInvitation(to, displayName, creatorName, billTitle string, share decimal.Decimal, dueDate time.Time) error
}

// BillService handles bill creation and retrieval.
type BillService struct {
	store  storage.Store
	mailer InvitationMailer
	hub    *notify.Hub
}

// NewBillService creates a new BillService. mailer may be nil when email is
// not configured; invitations are then skipped.
func NewBillService(store storage.Store, mailer InvitationMailer, hub *notify.Hub) *BillService {
	return &BillService{store: store, mailer: mailer, hub: hub}
}

// ParticipantShare names one invited friend and their share.
type ParticipantShare struct {
	Email string
	Share decimal.Decimal
}

// CreateBillInput is everything the creator specifies for a new bill.
type CreateBillInput struct {
	Title        string
	Amount       decimal.Decimal
	DueDate      time.Time
	CreatorShare decimal.Decimal
	Participants []ParticipantShare
}

// CreateBill validates the split, persists the bill with all participant
// rows in one transaction, and invites the friends by email.
//
// The creator's own participant row is pre-marked paid: their share is the
// part of the total they covered up front.
func (s *BillService) CreateBill(ctx context.Context, input CreateBillInput) (*models.Bill, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	creator, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	if creator == nil {
		return nil, ErrUnauthenticated
	}

	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	today := time.Now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if input.DueDate.Before(today) {
		return nil, fmt.Errorf("%w: due date %s is in the past", ErrValidation, input.DueDate.Format("2006-01-02"))
	}

	shares := make([]decimal.Decimal, len(input.Participants))
	emails := make([]string, len(input.Participants))
	seen := map[string]bool{creator.Email: true}
	for i, p := range input.Participants {
		if seen[p.Email] {
			return nil, fmt.Errorf("%w: duplicate participant %s", ErrValidation, p.Email)
		}
		seen[p.Email] = true
		shares[i] = p.Share
		emails[i] = p.Email
	}

	if err := calculator.ValidateShares(input.Amount, input.CreatorShare, shares); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	users, err := s.store.GetUsersByEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participants: %w", err)
	}
	for _, email := range emails {
		if _, ok := users[email]; !ok {
			return nil, fmt.Errorf("%w: no account for %s", ErrValidation, email)
		}
	}

	now := time.Now().Unix()
	participants := make([]models.Participant, 0, len(input.Participants)+1)
	participants = append(participants, models.Participant{
		UserID:     creator.ID,
		AmountOwed: input.CreatorShare,
		HasPaid:    true,
		PaidAt:     now,
	})
	for _, p := range input.Participants {
		participants = append(participants, models.Participant{
			UserID:     users[p.Email].ID,
			AmountOwed: p.Share,
		})
	}

	bill := &models.Bill{
		CreatorID: creator.ID,
		Title:     input.Title,
		Amount:    input.Amount,
		DueDate:   input.DueDate.Unix(),
	}
	if err := s.store.CreateBill(ctx, bill, participants); err != nil {
		slog.Error("CreateBill failed", "error", err)
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}

	slog.Info("Bill created",
		"bill_id", bill.ID,
		"creator_id", creator.ID,
		"amount", bill.Amount,
		"participants", len(participants),
	)

	// Invitations are best effort: a dead SMTP server must not undo a
	// persisted bill.
	if s.mailer != nil {
		for _, p := range input.Participants {
			invitee := users[p.Email]
			if err := s.mailer.SendBillInvitation(
				invitee.Email, invitee.DisplayName, creator.DisplayName,
				bill.Title, p.Share, input.DueDate,
			); err != nil {
				slog.Warn("Failed to send invitation", "email", invitee.Email, "bill_id", bill.ID, "error", err)
			}
		}
	}

	if s.hub != nil {
		s.hub.Publish(notify.Event{Topic: notify.TopicBillCreated, BillID: bill.ID, UserID: creator.ID})
	}

	return bill, nil
}

// GetBill retrieves a bill. Only participants may view it.
func (s *BillService) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	if findParticipant(bill, userID) == nil {
		return nil, ErrNotParticipant
	}

	return bill, nil
}

// ListBills returns the caller's bills, newest first.
func (s *BillService) ListBills(ctx context.Context) ([]models.Bill, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	return s.store.ListBillsForUser(ctx, userID)
}

// findParticipant returns the user's participant row on the bill, or nil.
func findParticipant(bill *models.Bill, userID string) *models.Participant {
	for i := range bill.Participants {
		if bill.Participants[i].UserID == userID {
			return &bill.Participants[i]
		}
	}
	return nil
}

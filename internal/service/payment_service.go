package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/bank"
	"github.com/divvyapp/divvy/internal/calculator"
	"github.com/divvyapp/divvy/internal/metrics"
	"github.com/divvyapp/divvy/internal/middleware"
	"github.com/divvyapp/divvy/internal/models"
	"github.com/divvyapp/divvy/internal/notify"
	"github.com/divvyapp/divvy/internal/storage"
)

// PaymentService runs the share-payment flow: charge the card, settle the
// participant row, record the payment, and post the credit reward (and any
// late penalty) to the ledger.
type PaymentService struct {
	store   storage.Store
	gateway bank.Gateway
	hub     *notify.Hub
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(store storage.Store, gateway bank.Gateway, hub *notify.Hub) *PaymentService {
	return &PaymentService{store: store, gateway: gateway, hub: hub}
}

// PayShareResult reports the outcome of a settled share.
type PayShareResult struct {
	Payment    *models.Payment
	Reward     *calculator.Reward
	Entries    []models.CreditEntry
	NewBalance decimal.Decimal
	BillPaid   bool

	// Warnings lists persistence steps that failed after the charge
	// succeeded. The share stays settled; nothing is rolled back.
	Warnings []string
}

// PayShare settles the caller's share of the bill.
//
// The bank charge is the point of no return: every failure before it aborts
// the flow with nothing written, while failures after it are logged, surfaced
// as warnings, and do not undo the settled share.
func (s *PaymentService) PayShare(ctx context.Context, billID string, card bank.Card) (*PayShareResult, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	participant := findParticipant(bill, userID)
	if participant == nil {
		return nil, ErrNotParticipant
	}
	if participant.HasPaid {
		return nil, ErrShareAlreadyPaid
	}

	validation, err := s.gateway.Validate(ctx, card)
	if err != nil {
		return nil, fmt.Errorf("card validation failed: %w", err)
	}
	if !validation.Valid {
		return nil, fmt.Errorf("%w: %s", ErrCardRejected, validation.Message)
	}

	if _, err := s.gateway.Pay(ctx, card, participant.AmountOwed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCardRejected, err)
	}

	// The card is charged; from here on the flow only moves forward.
	now := time.Now()
	result := &PayShareResult{}

	ok, err := s.store.MarkParticipantPaid(ctx, billID, userID, now.Unix())
	if err != nil {
		// The participant row is the anchor of the whole flow; without it
		// the payment would be invisible.
		return nil, fmt.Errorf("charge succeeded but settling the share failed: %w", err)
	}
	if !ok {
		// Lost a race with a concurrent payment on the same row.
		return nil, ErrShareAlreadyPaid
	}

	payment := &models.Payment{
		UserID:     userID,
		BillID:     billID,
		AmountPaid: participant.AmountOwed,
		Status:     models.PaymentStatusCompleted,
		CreatedAt:  now.Unix(),
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.Error("Failed to record payment", "bill_id", billID, "user_id", userID, "error", err)
		result.Warnings = append(result.Warnings, "payment record not persisted")
	}
	result.Payment = payment

	reward, err := calculator.ComputeReward(
		time.Unix(bill.CreatedAt, 0),
		time.Unix(bill.DueDate, 0),
		now,
		participant.AmountOwed,
	)
	if err != nil {
		// Only possible with a corrupt share amount; the charge already
		// happened, so report and stop posting credits.
		slog.Error("Reward computation failed", "bill_id", billID, "user_id", userID, "error", err)
		result.Warnings = append(result.Warnings, "reward computation failed")
		s.finishBill(ctx, billID, userID, result)
		return result, nil
	}
	result.Reward = reward

	s.postReward(ctx, userID, payment.ID, reward, result)
	s.finishBill(ctx, billID, userID, result)

	timing := "on_time"
	if reward.DaysLate > 0 {
		timing = "late"
	}
	metrics.PaymentsTotal.WithLabelValues(timing).Inc()

	slog.Info("Share paid",
		"bill_id", billID,
		"user_id", userID,
		"amount", participant.AmountOwed,
		"multiplier", reward.Multiplier,
		"reward", reward.CreditReward,
		"days_late", reward.DaysLate,
		"penalty", reward.Penalty,
	)

	return result, nil
}

// postReward appends the reward entry and, for late payments, the penalty
// entry, in that order. Each append is attempted independently: a failed
// reward write does not suppress the penalty write.
func (s *PaymentService) postReward(ctx context.Context, userID, paymentID string, reward *calculator.Reward, result *PayShareResult) {
	rewardEntry := &models.CreditEntry{
		UserID:       userID,
		SourceType:   models.CreditSourcePayment,
		SourceID:     paymentID,
		ChangeAmount: reward.CreditReward,
	}
	if err := s.store.AppendCreditEntry(ctx, rewardEntry, true); err != nil {
		slog.Error("Failed to post credit reward", "user_id", userID, "payment_id", paymentID, "error", err)
		result.Warnings = append(result.Warnings, "credit reward not posted")
	} else {
		result.Entries = append(result.Entries, *rewardEntry)
		result.NewBalance = rewardEntry.BalanceAfter
		rewardFloat, _ := reward.CreditReward.Float64()
		metrics.CreditsAwarded.Add(rewardFloat)
	}

	if reward.DaysLate <= 0 {
		return
	}

	penaltyEntry := &models.CreditEntry{
		UserID:       userID,
		SourceType:   models.CreditSourceLatePenalty,
		SourceID:     paymentID,
		ChangeAmount: reward.Penalty.Neg(),
	}
	if err := s.store.AppendCreditEntry(ctx, penaltyEntry, true); err != nil {
		slog.Error("Failed to post late penalty", "user_id", userID, "payment_id", paymentID, "error", err)
		result.Warnings = append(result.Warnings, "late penalty not posted")
	} else {
		result.Entries = append(result.Entries, *penaltyEntry)
		result.NewBalance = penaltyEntry.BalanceAfter
		penaltyFloat, _ := reward.Penalty.Float64()
		metrics.PenaltiesApplied.Add(penaltyFloat)
	}
}

// finishBill transitions the bill to paid when no unpaid shares remain, and
// publishes the payment events.
func (s *PaymentService) finishBill(ctx context.Context, billID, userID string, result *PayShareResult) {
	unpaid, err := s.store.CountUnpaidParticipants(ctx, billID)
	if err != nil {
		slog.Error("Failed to count unpaid participants", "bill_id", billID, "error", err)
		result.Warnings = append(result.Warnings, "bill completion check failed")
	} else if unpaid == 0 {
		if err := s.store.UpdateBillStatus(ctx, billID, models.BillStatusPaid); err != nil {
			slog.Error("Failed to mark bill paid", "bill_id", billID, "error", err)
			result.Warnings = append(result.Warnings, "bill status not updated")
		} else {
			result.BillPaid = true
			if s.hub != nil {
				s.hub.Publish(notify.Event{Topic: notify.TopicBillPaid, BillID: billID, UserID: userID})
			}
		}
	}

	if s.hub != nil {
		s.hub.Publish(notify.Event{Topic: notify.TopicPaymentReceived, BillID: billID, UserID: userID})
	}
}

// WarningSummary joins the warnings for the response payload.
func (r *PayShareResult) WarningSummary() string {
	return strings.Join(r.Warnings, "; ")
}

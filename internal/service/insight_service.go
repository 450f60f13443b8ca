package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/divvyapp/divvy/internal/insights"
	"github.com/divvyapp/divvy/internal/middleware"
	"github.com/divvyapp/divvy/internal/models"
)

// InsightService assembles a user's transaction history and hands it to the
// summarization service.
type InsightService struct {
	store      insightStore
	summarizer insights.Summarizer
}

// insightStore is the slice of the store the insight service needs.
type insightStore interface {
	ListPaymentsForUser(ctx context.Context, userID string) ([]models.Payment, error)
	ListCreditEntries(ctx context.Context, userID string) ([]models.CreditEntry, error)
}

// NewInsightService creates a new InsightService.
func NewInsightService(store insightStore, summarizer insights.Summarizer) *InsightService {
	return &InsightService{store: store, summarizer: summarizer}
}

// Spending summarizes the caller's payments and credit activity.
func (s *InsightService) Spending(ctx context.Context) (*insights.Insight, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	payments, err := s.store.ListPaymentsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	entries, err := s.store.ListCreditEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	transactions := make([]insights.Transaction, 0, len(payments)+len(entries))
	for _, p := range payments {
		transactions = append(transactions, insights.Transaction{
			Description: "Bill share payment",
			Amount:      p.AmountPaid,
			Kind:        "payment",
			CreatedAt:   p.CreatedAt,
		})
	}
	for _, e := range entries {
		transactions = append(transactions, insights.Transaction{
			Description: "Credit " + e.SourceType,
			Amount:      e.ChangeAmount,
			Kind:        creditKind(e.SourceType),
			CreatedAt:   e.CreatedAt,
		})
	}

	insight, err := s.summarizer.Summarize(ctx, transactions)
	if err != nil {
		slog.Error("Summarization failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to summarize spending: %w", err)
	}

	return insight, nil
}

func creditKind(sourceType string) string {
	switch sourceType {
	case models.CreditSourcePayment:
		return "reward"
	case models.CreditSourceLatePenalty:
		return "penalty"
	case models.CreditSourceRedemption:
		return "redemption"
	default:
		return sourceType
	}
}

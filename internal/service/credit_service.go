package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/metrics"
	"github.com/divvyapp/divvy/internal/middleware"
	"github.com/divvyapp/divvy/internal/models"
	"github.com/divvyapp/divvy/internal/storage"
)

// CreditService exposes the credit ledger and gift card redemption.
type CreditService struct {
	store storage.Store
}

// NewCreditService creates a new CreditService.
func NewCreditService(store storage.Store) *CreditService {
	return &CreditService{store: store}
}

// Balance returns the caller's cached credit balance.
func (s *CreditService) Balance(ctx context.Context) (decimal.Decimal, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return decimal.Zero, ErrUnauthenticated
	}
	return s.store.GetCreditBalance(ctx, userID)
}

// History returns the caller's ledger entries, newest first.
func (s *CreditService) History(ctx context.Context) ([]models.CreditEntry, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.ListCreditEntries(ctx, userID)
}

// Redeem exchanges credits for a gift card. The redemption ledger entry is
// posted first with an overdraw guard, so a failed card insert can at worst
// leave the user with deducted credits and a logged card payload to replay,
// never a free card.
func (s *CreditService) Redeem(ctx context.Context, brand string, cost decimal.Decimal) (*models.GiftCard, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	if brand == "" {
		return nil, fmt.Errorf("%w: brand is required", ErrValidation)
	}
	if !cost.IsPositive() {
		return nil, fmt.Errorf("%w: cost must be positive, got %s", ErrValidation, cost)
	}

	code, err := generateGiftCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate gift code: %w", err)
	}

	card := &models.GiftCard{
		ID:     uuid.New().String(),
		UserID: userID,
		Brand:  brand,
		Cost:   cost,
		Code:   code,
	}

	entry := &models.CreditEntry{
		UserID:       userID,
		SourceType:   models.CreditSourceRedemption,
		SourceID:     card.ID,
		ChangeAmount: cost.Neg(),
	}
	if err := s.store.AppendCreditEntry(ctx, entry, false); err != nil {
		if err == storage.ErrInsufficientCredits {
			return nil, fmt.Errorf("%w: balance does not cover %s", ErrValidation, cost)
		}
		return nil, fmt.Errorf("failed to post redemption: %w", err)
	}

	if err := s.store.CreateGiftCard(ctx, card); err != nil {
		slog.Error("Redemption posted but gift card insert failed",
			"user_id", userID, "brand", brand, "code", code, "error", err)
		return nil, fmt.Errorf("failed to issue gift card: %w", err)
	}

	metrics.GiftCardsRedeemed.WithLabelValues(brand).Inc()
	slog.Info("Gift card redeemed", "user_id", userID, "brand", brand, "cost", cost)

	return card, nil
}

// GiftCards returns the caller's redeemed cards, newest first.
func (s *CreditService) GiftCards(ctx context.Context) ([]models.GiftCard, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.ListGiftCards(ctx, userID)
}

// generateGiftCode produces a code like "GC-4921-0384-1177".
func generateGiftCode() (string, error) {
	raw := make([]byte, 12)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("GC")
	for i, digit := range raw {
		if i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(digit%10 + '0')
	}
	return b.String(), nil
}

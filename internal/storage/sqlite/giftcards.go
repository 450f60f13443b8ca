package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/models"
)

// CreateGiftCard persists a redeemed gift card.
func (s *SQLiteStore) CreateGiftCard(ctx context.Context, card *models.GiftCard) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if card.CreatedAt == 0 {
		card.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO gift_cards (id, user_id, brand, cost, code, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		card.ID, card.UserID, card.Brand, card.Cost.String(), card.Code, card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert gift card: %w", err)
	}

	return nil
}

// ListGiftCards returns the user's gift cards, newest first.
func (s *SQLiteStore) ListGiftCards(ctx context.Context, userID string) ([]models.GiftCard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, brand, cost, code, created_at
		 FROM gift_cards WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list gift cards: %w", err)
	}
	defer rows.Close()

	var cards []models.GiftCard
	for rows.Next() {
		var c models.GiftCard
		var cost string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Brand, &cost, &c.Code, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gift card: %w", err)
		}
		c.Cost, err = decimal.NewFromString(cost)
		if err != nil {
			return nil, fmt.Errorf("failed to parse gift card cost: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gift cards: %w", err)
	}

	return cards, nil
}

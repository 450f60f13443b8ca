package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/models"
	"github.com/divvyapp/divvy/internal/storage"
)

// AppendCreditEntry appends a ledger entry and updates the user's cached
// credit balance in a single transaction. The balance is read inside the
// transaction, so two concurrent appends for the same user cannot both
// compute their BalanceAfter from the same starting point.
func (s *SQLiteStore) AppendCreditEntry(ctx context.Context, entry *models.CreditEntry, allowNegative bool) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var creditsStr string
	err = tx.QueryRowContext(ctx,
		"SELECT credits FROM users WHERE id = ?", entry.UserID,
	).Scan(&creditsStr)
	if err != nil {
		return fmt.Errorf("failed to read credit balance: %w", err)
	}
	credits, err := decimal.NewFromString(creditsStr)
	if err != nil {
		return fmt.Errorf("failed to parse credit balance: %w", err)
	}

	entry.BalanceAfter = credits.Add(entry.ChangeAmount)
	if !allowNegative && entry.BalanceAfter.IsNegative() {
		return storage.ErrInsufficientCredits
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO credit_entries (id, user_id, source_type, source_id, change_amount, balance_after, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.SourceType, entry.SourceID,
		entry.ChangeAmount.String(), entry.BalanceAfter.String(), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert credit entry: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET credits = ?, updated_at = ? WHERE id = ?",
		entry.BalanceAfter.String(), time.Now().Unix(), entry.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cached balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListCreditEntries returns the user's ledger, newest first. Entries appended
// within the same second keep their insert order via rowid.
func (s *SQLiteStore) ListCreditEntries(ctx context.Context, userID string) ([]models.CreditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, source_type, source_id, change_amount, balance_after, created_at
		 FROM credit_entries WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.CreditEntry
	for rows.Next() {
		var e models.CreditEntry
		var change, balance string
		if err := rows.Scan(&e.ID, &e.UserID, &e.SourceType, &e.SourceID, &change, &balance, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credit entry: %w", err)
		}
		e.ChangeAmount, err = decimal.NewFromString(change)
		if err != nil {
			return nil, fmt.Errorf("failed to parse change amount: %w", err)
		}
		e.BalanceAfter, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance after: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credit entries: %w", err)
	}

	return entries, nil
}

// GetCreditBalance returns the user's cached credit balance.
func (s *SQLiteStore) GetCreditBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var creditsStr string
	err := s.db.QueryRowContext(ctx,
		"SELECT credits FROM users WHERE id = ?", userID,
	).Scan(&creditsStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get credit balance: %w", err)
	}
	credits, err := decimal.NewFromString(creditsStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse credit balance: %w", err)
	}
	return credits, nil
}

package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/models"
)

// CreatePayment appends an immutable payment record.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO payments (id, user_id, bill_id, amount_paid, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		payment.ID, payment.UserID, payment.BillID, payment.AmountPaid.String(), payment.Status, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// ListPaymentsForUser returns the user's payments, newest first.
func (s *SQLiteStore) ListPaymentsForUser(ctx context.Context, userID string) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, bill_id, amount_paid, status, created_at
		 FROM payments WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var amount string
		if err := rows.Scan(&p.ID, &p.UserID, &p.BillID, &amount, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.AmountPaid, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount paid: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

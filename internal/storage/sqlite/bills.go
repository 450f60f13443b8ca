package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/models"
	"github.com/divvyapp/divvy/internal/storage"
)

// CreateBill persists a bill and its participant rows atomically.
// Either everything is written or nothing is.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill, participants []models.Participant) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Status == "" {
		bill.Status = models.BillStatusUnpaid
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills (id, creator_id, title, amount, due_date, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		bill.ID, bill.CreatorID, bill.Title, bill.Amount.String(), bill.DueDate, bill.Status, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i := range participants {
		p := &participants[i]
		p.BillID = bill.ID
		paid := 0
		if p.HasPaid {
			paid = 1
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO participants (bill_id, user_id, amount_owed, has_paid, paid_at) VALUES (?, ?, ?, ?, ?)",
			p.BillID, p.UserID, p.AmountOwed.String(), paid, p.PaidAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	bill.Participants = participants
	return nil
}

// GetBill retrieves a bill by ID, including its participant rows.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var amount string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, creator_id, title, amount, due_date, status, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.CreatorID, &bill.Title, &amount, &bill.DueDate, &bill.Status, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	bill.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bill amount: %w", err)
	}

	bill.Participants, err = s.listParticipants(ctx, billID)
	if err != nil {
		return nil, err
	}

	return bill, nil
}

func (s *SQLiteStore) listParticipants(ctx context.Context, billID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT bill_id, user_id, amount_owed, has_paid, paid_at FROM participants WHERE bill_id = ? ORDER BY user_id",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		var owed string
		var paid int
		if err := rows.Scan(&p.BillID, &p.UserID, &owed, &paid, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.AmountOwed, err = decimal.NewFromString(owed)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount owed: %w", err)
		}
		p.HasPaid = paid != 0
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// ListBillsForUser returns bills the user created or participates in,
// newest first, each with its participant rows.
func (s *SQLiteStore) ListBillsForUser(ctx context.Context, userID string) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT b.id
		 FROM bills b
		 LEFT JOIN participants p ON p.bill_id = b.id
		 WHERE b.creator_id = ? OR p.user_id = ?
		 ORDER BY b.created_at DESC, b.id`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan bill id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	bills := make([]models.Bill, 0, len(ids))
	for _, id := range ids {
		bill, err := s.GetBill(ctx, id)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *bill)
	}

	return bills, nil
}

// MarkParticipantPaid flips the participant's has_paid flag.
// The update is conditional on the row still being unpaid, so a second
// concurrent payment on the same share finds zero rows to update.
func (s *SQLiteStore) MarkParticipantPaid(ctx context.Context, billID, userID string, paidAt int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET has_paid = 1, paid_at = ? WHERE bill_id = ? AND user_id = ? AND has_paid = 0",
		paidAt, billID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark participant paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// CountUnpaidParticipants returns the number of unpaid shares on the bill.
func (s *SQLiteStore) CountUnpaidParticipants(ctx context.Context, billID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM participants WHERE bill_id = ? AND has_paid = 0",
		billID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unpaid participants: %w", err)
	}
	return count, nil
}

// UpdateBillStatus sets the bill's status.
func (s *SQLiteStore) UpdateBillStatus(ctx context.Context, billID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bills SET status = ? WHERE id = ?",
		status, billID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return nil
}

// ListDueShares returns unpaid shares on unpaid bills due in [from, to),
// joined with the owing user's contact details.
func (s *SQLiteStore) ListDueShares(ctx context.Context, from, to int64) ([]storage.DueShare, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.creator_id, b.title, b.amount, b.due_date, b.status, b.created_at,
		        p.user_id, p.amount_owed, u.email, u.display_name
		 FROM participants p
		 JOIN bills b ON b.id = p.bill_id
		 JOIN users u ON u.id = p.user_id
		 WHERE p.has_paid = 0 AND b.status = ? AND b.due_date >= ? AND b.due_date < ?
		 ORDER BY b.due_date, b.id`,
		models.BillStatusUnpaid, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due shares: %w", err)
	}
	defer rows.Close()

	var shares []storage.DueShare
	for rows.Next() {
		var ds storage.DueShare
		var amount, owed string
		if err := rows.Scan(
			&ds.Bill.ID, &ds.Bill.CreatorID, &ds.Bill.Title, &amount, &ds.Bill.DueDate,
			&ds.Bill.Status, &ds.Bill.CreatedAt,
			&ds.Participant.UserID, &owed, &ds.Email, &ds.DisplayName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan due share: %w", err)
		}
		ds.Bill.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bill amount: %w", err)
		}
		ds.Participant.AmountOwed, err = decimal.NewFromString(owed)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount owed: %w", err)
		}
		ds.Participant.BillID = ds.Bill.ID
		shares = append(shares, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due shares: %w", err)
	}

	return shares, nil
}

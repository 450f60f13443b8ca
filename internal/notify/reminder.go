package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/storage"
)

// DueShareLister is the slice of the store the reminder job needs.
type DueShareLister interface {
	ListDueShares(ctx context.Context, from, to int64) ([]storage.DueShare, error)
}

// Mailer is the slice of the email sender the reminder job needs.
type Mailer interface {
	SendPaymentReminder(to, displayName, billTitle string, share decimal.Decimal, dueDate time.Time, overdue bool) error
}

// overdueLookback bounds how far back the job nags about unpaid shares.
const overdueLookback = 30 * 24 * time.Hour

// Reminder is the scheduled job that emails participants about shares due
// within the next two days or already overdue. It is registered with the
// cron scheduler in main.
type Reminder struct {
	store  DueShareLister
	mailer Mailer
}

// NewReminder creates the reminder job.
func NewReminder(store DueShareLister, mailer Mailer) *Reminder {
	return &Reminder{store: store, mailer: mailer}
}

// Run sends one batch of reminders. Send failures are logged per recipient
// and do not stop the batch.
func (r *Reminder) Run(ctx context.Context) {
	now := time.Now()

	upcoming, err := r.store.ListDueShares(ctx, now.Unix(), now.Add(48*time.Hour).Unix())
	if err != nil {
		slog.Error("Reminder: failed to list upcoming shares", "error", err)
	} else {
		r.sendAll(upcoming, false)
	}

	overdue, err := r.store.ListDueShares(ctx, now.Add(-overdueLookback).Unix(), now.Unix())
	if err != nil {
		slog.Error("Reminder: failed to list overdue shares", "error", err)
	} else {
		r.sendAll(overdue, true)
	}
}

func (r *Reminder) sendAll(shares []storage.DueShare, overdue bool) {
	for _, ds := range shares {
		err := r.mailer.SendPaymentReminder(
			ds.Email,
			ds.DisplayName,
			ds.Bill.Title,
			ds.Participant.AmountOwed,
			time.Unix(ds.Bill.DueDate, 0),
			overdue,
		)
		if err != nil {
			slog.Warn("Reminder: failed to send",
				"email", ds.Email,
				"bill_id", ds.Bill.ID,
				"overdue", overdue,
				"error", err,
			)
			continue
		}
		slog.Debug("Reminder sent", "email", ds.Email, "bill_id", ds.Bill.ID, "overdue", overdue)
	}
}

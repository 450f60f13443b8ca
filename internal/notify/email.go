// Package notify covers outbound notifications: invitation and reminder
// emails over SMTP, and an in-process publish/subscribe hub for bill events.
package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/config"
)

// Sender handles sending emails via SMTP.
type Sender struct {
	cfg *config.Config
}

// NewSender creates a new email sender.
func NewSender(cfg *config.Config) *Sender {
	return &Sender{cfg: cfg}
}

// SendBillInvitation tells a participant they were added to a bill.
func (s *Sender) SendBillInvitation(to, displayName, creatorName, billTitle string, share decimal.Decimal, dueDate time.Time) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("%s added you to \"%s\"", creatorName, billTitle)

	body := fmt.Sprintf(
		"Hi %s,\n\n%s split a bill with you: \"%s\".\n"+
			"Your share is %s, due %s.\n\n"+
			"Pay on the due date to earn the maximum credit reward.\n",
		displayName, creatorName, billTitle, share.StringFixed(2), dueDate.Format("2006-01-02"),
	)
	e.Text = []byte(body)

	return s.send(e)
}

// SendPaymentReminder nudges a participant about an upcoming or overdue share.
func (s *Sender) SendPaymentReminder(to, displayName, billTitle string, share decimal.Decimal, dueDate time.Time, overdue bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if overdue {
		e.Subject = fmt.Sprintf("Overdue: your share of \"%s\"", billTitle)
	} else {
		e.Subject = fmt.Sprintf("Reminder: \"%s\" is due soon", billTitle)
	}

	body := fmt.Sprintf("Hi %s,\n\n", displayName)
	if overdue {
		body += fmt.Sprintf(
			"Your share of %s for \"%s\" was due on %s.\n"+
				"Late payments lose 2 credits per day, so the sooner the better.\n",
			share.StringFixed(2), billTitle, dueDate.Format("2006-01-02"),
		)
	} else {
		body += fmt.Sprintf(
			"Your share of %s for \"%s\" is due on %s.\n"+
				"Paying exactly on the due date earns the maximum credit reward.\n",
			share.StringFixed(2), billTitle, dueDate.Format("2006-01-02"),
		)
	}
	e.Text = []byte(body)

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("failed to send email to %v: %w", e.To, err)
	}
	slog.Debug("Email sent", "to", e.To, "subject", e.Subject)
	return nil
}

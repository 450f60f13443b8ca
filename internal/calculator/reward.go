// Package calculator holds the pure business arithmetic: the payment reward
// computation and the bill share validation. Nothing in here touches storage
// or the network, which keeps it trivially testable.
package calculator

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// cashbackRate is the flat cashback applied to every settled share.
	cashbackRate = decimal.New(5, -2) // 0.05

	// penaltyPerDay is the flat credit penalty per day late, independent of
	// the amount owed.
	penaltyPerDay = decimal.NewFromInt(2)
)

// Reward is the outcome of the payment reward computation for one settled
// share. CreditReward is always posted; Penalty is posted as a second,
// negative ledger entry only when DaysLate > 0.
type Reward struct {
	// Multiplier is the timing multiplier applied to the base cashback,
	// in [1.0, 1.5].
	Multiplier float64

	// CreditReward is round(amountOwed * 0.05 * Multiplier, 2).
	CreditReward decimal.Decimal

	// DaysLate is the whole days between due date and payment date on
	// midnight-normalized dates. Zero or negative for on-time payments.
	DaysLate int

	// Penalty is DaysLate * 2 credits when late, zero otherwise. Stored as
	// a positive magnitude; the ledger entry carries the negative sign.
	Penalty decimal.Decimal
}

// Net returns the overall balance change: CreditReward - Penalty.
// Can be negative when the penalty exceeds the reward.
func (r *Reward) Net() decimal.Decimal {
	return r.CreditReward.Sub(r.Penalty)
}

// ComputeReward computes the credit reward and late penalty for a share of
// amountOwed on a bill created at createdAt and due at dueDate, paid at paidAt.
//
// Timing multiplier, on midnight-normalized dates:
//   - paid on the due date: 1.5. This takes precedence over the
//     degenerate-window rule below, so a bill created and due today still
//     earns 1.5 when paid today.
//   - paid early: 1.0 when the bill was created and due on the same day
//     (no window to interpolate over); otherwise a linear ramp
//     1.0 + (elapsed/window) * 0.5 from creation day toward due day.
//   - paid late: 1.0 flat. Lateness is charged through the penalty, not the
//     multiplier.
func ComputeReward(createdAt, dueDate, paidAt time.Time, amountOwed decimal.Decimal) (*Reward, error) {
	if !amountOwed.IsPositive() {
		return nil, fmt.Errorf("amount owed must be positive, got %s", amountOwed)
	}

	createdDay := midnight(createdAt)
	dueDay := midnight(dueDate)
	paidDay := midnight(paidAt)

	multiplier := timingMultiplier(createdDay, dueDay, paidDay)

	reward := amountOwed.Mul(cashbackRate).Mul(decimal.NewFromFloat(multiplier)).Round(2)

	daysLate := int(math.Round(paidDay.Sub(dueDay).Hours() / 24))
	penalty := decimal.Zero
	if daysLate > 0 {
		penalty = penaltyPerDay.Mul(decimal.NewFromInt(int64(daysLate)))
	}

	return &Reward{
		Multiplier:   multiplier,
		CreditReward: reward,
		DaysLate:     daysLate,
		Penalty:      penalty,
	}, nil
}

func timingMultiplier(createdDay, dueDay, paidDay time.Time) float64 {
	switch {
	case paidDay.Equal(dueDay):
		return 1.5
	case paidDay.Before(dueDay):
		if createdDay.Equal(dueDay) {
			return 1.0
		}
		window := dueDay.Sub(createdDay).Hours() / 24
		elapsed := paidDay.Sub(createdDay).Hours() / 24
		ratio := elapsed / window
		// Payments recorded before the bill existed clamp to the start of
		// the ramp rather than discounting below 1.0.
		if ratio < 0 {
			ratio = 0
		}
		return 1.0 + ratio*0.5
	default:
		return 1.0
	}
}

// midnight strips the time-of-day component, keeping the location.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

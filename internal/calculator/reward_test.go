package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(offset int) time.Time {
	base := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestComputeReward_Multiplier(t *testing.T) {
	tests := []struct {
		name           string
		createdAt      time.Time
		dueDate        time.Time
		paidAt         time.Time
		wantMultiplier float64
	}{
		{
			name:           "paid exactly on due date",
			createdAt:      day(0),
			dueDate:        day(10),
			paidAt:         day(10),
			wantMultiplier: 1.5,
		},
		{
			name: "due-date payment ignores time of day",
			// 11pm on the due date still counts as the due day.
			createdAt:      day(0),
			dueDate:        day(10),
			paidAt:         day(10).Add(23 * time.Hour),
			wantMultiplier: 1.5,
		},
		{
			name: "created and due same day, paid same day",
			// Due-day equality wins over the degenerate-window rule.
			createdAt:      day(0),
			dueDate:        day(0),
			paidAt:         day(0),
			wantMultiplier: 1.5,
		},
		{
			name: "degenerate window, paid before due day",
			// A payment stamped before the due day on a same-day bill gets
			// the flat early rate.
			createdAt:      day(0),
			dueDate:        day(0),
			paidAt:         day(-1),
			wantMultiplier: 1.0,
		},
		{
			name:           "paid on creation day",
			createdAt:      day(0),
			dueDate:        day(10),
			paidAt:         day(0),
			wantMultiplier: 1.0,
		},
		{
			name:           "paid at midpoint of window",
			createdAt:      day(0),
			dueDate:        day(10),
			paidAt:         day(5),
			wantMultiplier: 1.25,
		},
		{
			name:           "paid one day before due",
			createdAt:      day(0),
			dueDate:        day(10),
			paidAt:         day(9),
			wantMultiplier: 1.45,
		},
		{
			name:           "paid late",
			createdAt:      day(0),
			dueDate:        day(10),
			paidAt:         day(15),
			wantMultiplier: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reward, err := ComputeReward(tt.createdAt, tt.dueDate, tt.paidAt, decimal.NewFromInt(100))
			if err != nil {
				t.Fatalf("ComputeReward failed: %v", err)
			}
			if math.Abs(reward.Multiplier-tt.wantMultiplier) > 1e-9 {
				t.Errorf("multiplier = %v, want %v", reward.Multiplier, tt.wantMultiplier)
			}
		})
	}
}

func TestComputeReward_RewardAndPenalty(t *testing.T) {
	tests := []struct {
		name         string
		createdAt    time.Time
		dueDate      time.Time
		paidAt       time.Time
		amountOwed   string
		wantReward   string
		wantDaysLate int
		wantPenalty  string
		wantNet      string
	}{
		{
			name:         "one day late, owed 100",
			createdAt:    day(0),
			dueDate:      day(10),
			paidAt:       day(11),
			amountOwed:   "100",
			wantReward:   "5",
			wantDaysLate: 1,
			wantPenalty:  "2",
			wantNet:      "3",
		},
		{
			name:         "ten days late, owed 10",
			createdAt:    day(0),
			dueDate:      day(10),
			paidAt:       day(20),
			amountOwed:   "10",
			wantReward:   "0.5",
			wantDaysLate: 10,
			wantPenalty:  "20",
			wantNet:      "-19.5",
		},
		{
			name:         "on due date, owed 100",
			createdAt:    day(0),
			dueDate:      day(10),
			paidAt:       day(10),
			amountOwed:   "100",
			wantReward:   "7.5",
			wantDaysLate: 0,
			wantPenalty:  "0",
			wantNet:      "7.5",
		},
		{
			name:         "early payment has negative days late and no penalty",
			createdAt:    day(0),
			dueDate:      day(10),
			paidAt:       day(5),
			amountOwed:   "100",
			wantReward:   "6.25",
			wantDaysLate: -5,
			wantPenalty:  "0",
			wantNet:      "6.25",
		},
		{
			name:         "reward rounds at the hundredths place",
			createdAt:    day(0),
			dueDate:      day(10),
			paidAt:       day(10),
			amountOwed:   "33.33",
			wantReward:   "2.5", // 33.33 * 0.05 * 1.5 = 2.49975 -> 2.50
			wantDaysLate: 0,
			wantPenalty:  "0",
			wantNet:      "2.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owed := decimal.RequireFromString(tt.amountOwed)
			reward, err := ComputeReward(tt.createdAt, tt.dueDate, tt.paidAt, owed)
			if err != nil {
				t.Fatalf("ComputeReward failed: %v", err)
			}
			if !reward.CreditReward.Equal(decimal.RequireFromString(tt.wantReward)) {
				t.Errorf("credit reward = %s, want %s", reward.CreditReward, tt.wantReward)
			}
			if reward.DaysLate != tt.wantDaysLate {
				t.Errorf("days late = %d, want %d", reward.DaysLate, tt.wantDaysLate)
			}
			if !reward.Penalty.Equal(decimal.RequireFromString(tt.wantPenalty)) {
				t.Errorf("penalty = %s, want %s", reward.Penalty, tt.wantPenalty)
			}
			if !reward.Net().Equal(decimal.RequireFromString(tt.wantNet)) {
				t.Errorf("net = %s, want %s", reward.Net(), tt.wantNet)
			}
		})
	}
}

func TestComputeReward_RejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-5"} {
		if _, err := ComputeReward(day(0), day(10), day(5), decimal.RequireFromString(amount)); err == nil {
			t.Errorf("expected error for amount %s, got nil", amount)
		}
	}
}

package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// shareTolerance is the allowed slack between the bill total and the sum of
// assigned shares. Exactly at the tolerance still passes.
var shareTolerance = decimal.New(1, -2) // 0.01

// ValidateShares checks that a proposed split covers the bill total.
//
// Rules:
//   - the total and every share (creator's included) must be strictly positive
//   - |creatorShare + sum(participantShares) - total| <= 0.01
//
// A violation returns a descriptive error and the bill must not be persisted.
func ValidateShares(total, creatorShare decimal.Decimal, participantShares []decimal.Decimal) error {
	if !total.IsPositive() {
		return fmt.Errorf("bill total must be positive, got %s", total)
	}
	if !creatorShare.IsPositive() {
		return fmt.Errorf("creator share must be positive, got %s", creatorShare)
	}

	assigned := creatorShare
	for i, share := range participantShares {
		if !share.IsPositive() {
			return fmt.Errorf("participant share %d must be positive, got %s", i+1, share)
		}
		assigned = assigned.Add(share)
	}

	if delta := total.Sub(assigned).Abs(); delta.GreaterThan(shareTolerance) {
		return fmt.Errorf("shares add up to %s but the bill total is %s (off by %s)",
			assigned, total, delta)
	}

	return nil
}

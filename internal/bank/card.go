package bank

import (
	"fmt"
	"time"
)

// ValidateCardFields checks card field syntax: 16-digit account number,
// non-empty holder name, 3-digit CVV, and an MM/YY expiry that has not
// passed. It does not talk to the gateway.
func ValidateCardFields(card Card) error {
	if !isDigits(card.AccountNumber) || len(card.AccountNumber) != 16 {
		return fmt.Errorf("account number must be 16 digits")
	}
	if card.CardHolderName == "" {
		return fmt.Errorf("card holder name is required")
	}
	if !isDigits(card.CVV) || len(card.CVV) != 3 {
		return fmt.Errorf("cvv must be 3 digits")
	}
	if err := validateExpiry(card.ExpiryDate); err != nil {
		return err
	}
	return nil
}

func validateExpiry(expiry string) error {
	parsed, err := time.Parse("01/06", expiry)
	if err != nil {
		return fmt.Errorf("expiry date must be in MM/YY format")
	}
	// A card is valid through the end of its expiry month.
	now := time.Now()
	endOfMonth := time.Date(parsed.Year(), parsed.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(endOfMonth) {
		return fmt.Errorf("card expired %s", expiry)
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MaskCardNumber hides all but the last four digits.
func MaskCardNumber(number string) string {
	if len(number) < 4 {
		return "****"
	}
	return "**** **** **** " + number[len(number)-4:]
}

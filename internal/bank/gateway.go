// Package bank integrates with the simulated bank gateway that validates
// cards and debits balances. The gateway is a plain JSON request/response
// service; this client adds local syntactic validation so malformed cards
// are rejected before anything leaves the process.
package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ErrDeclined is returned by Pay when the gateway refuses the charge.
var ErrDeclined = errors.New("payment declined")

// Card holds the card fields collected from the payer.
type Card struct {
	AccountNumber  string `json:"account_number"`
	CardHolderName string `json:"card_holder_name"`
	CVV            string `json:"cvv"`
	ExpiryDate     string `json:"expiry_date"` // MM/YY
}

// ValidationResult is the gateway's answer to a validate call.
type ValidationResult struct {
	Valid            bool            `json:"valid"`
	Message          string          `json:"message"`
	CardHolderName   string          `json:"card_holder_name,omitempty"`
	BankName         string          `json:"bank_name,omitempty"`
	Balance          decimal.Decimal `json:"balance,omitempty"`
	MaskedCardNumber string          `json:"masked_card_number,omitempty"`
}

// PaymentResult is the gateway's answer to a pay call.
type PaymentResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Gateway is the bank gateway contract. The HTTP implementation below talks
// to the mock bank; tests substitute their own.
type Gateway interface {
	// Validate checks the card with the gateway. Field syntax is checked
	// locally first; a syntactically invalid card never reaches the wire.
	Validate(ctx context.Context, card Card) (*ValidationResult, error)

	// Pay debits amount from the card's simulated balance.
	Pay(ctx context.Context, card Card, amount decimal.Decimal) (*PaymentResult, error)
}

// HTTPGateway implements Gateway against the mock bank's JSON API.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

var _ Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway creates a gateway client for the given base URL.
func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Validate checks card syntax locally, then asks the gateway.
func (g *HTTPGateway) Validate(ctx context.Context, card Card) (*ValidationResult, error) {
	if err := ValidateCardFields(card); err != nil {
		return &ValidationResult{Valid: false, Message: err.Error()}, nil
	}

	var result ValidationResult
	if err := g.post(ctx, "/validate", card, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Pay debits the card. A reachable gateway that refuses the charge returns
// ErrDeclined wrapped with the gateway's message.
func (g *HTTPGateway) Pay(ctx context.Context, card Card, amount decimal.Decimal) (*PaymentResult, error) {
	payload := struct {
		Card
		Amount decimal.Decimal `json:"amount"`
	}{Card: card, Amount: amount}

	var result PaymentResult
	if err := g.post(ctx, "/pay", payload, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return &result, fmt.Errorf("%w: %s", ErrDeclined, result.Message)
	}
	return &result, nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

// Package insights calls the generative summarization service: it sends a
// user's transaction history and gets back a natural-language spending
// summary plus a gamified mission. The model wraps its JSON answer in a
// fenced code block, so the client extracts the block before parsing.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoJSONBlock is returned when the model response carries no fenced JSON.
var ErrNoJSONBlock = errors.New("no fenced json block in model response")

// Transaction is one record sent to the summarizer.
type Transaction struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"` // payment, reward, penalty, redemption
	CreatedAt   int64           `json:"created_at"`
}

// Mission is the gamified challenge attached to an insight.
type Mission struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Reward      decimal.Decimal `json:"reward"`
}

// Insight is the parsed summarizer output.
type Insight struct {
	Summary       string   `json:"summary"`
	TopCategories []string `json:"topCategories"`
	Tip           string   `json:"tip"`
	Mission       Mission  `json:"mission"`
}

// instruction is the fixed prompt sent alongside the transactions. Prompt
// tuning is out of scope; the contract is only that the model answers with
// a fenced JSON object in this shape.
const instruction = `Summarize this user's spending in 2-3 sentences, list their top 3 ` +
	`spending categories, give one practical saving tip, and invent one fun payment ` +
	`mission with a small credit reward. Respond with a json object {"summary", ` +
	`"topCategories", "tip", "mission": {"title", "description", "reward"}} in a fenced code block.`

// Summarizer produces an Insight from a transaction history.
type Summarizer interface {
	Summarize(ctx context.Context, transactions []Transaction) (*Insight, error)
}

// Client implements Summarizer against an HTTP generation endpoint.
type Client struct {
	url    string
	apiKey string
	client *http.Client
}

var _ Summarizer = (*Client)(nil)

// NewClient creates a summarization client for the given endpoint.
func NewClient(url, apiKey string) *Client {
	return &Client{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Summarize sends the transactions and parses the model's fenced answer.
func (c *Client) Summarize(ctx context.Context, transactions []Transaction) (*Insight, error) {
	payload := struct {
		Instruction  string        `json:"instruction"`
		Transactions []Transaction `json:"transactions"`
	}{
		Instruction:  instruction,
		Transactions: transactions,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("summarizer request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read summarizer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summarizer returned status %d: %s", resp.StatusCode, data)
	}

	var wrapper struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode summarizer response: %w", err)
	}

	return ParseInsight(wrapper.Text)
}

// ParseInsight extracts the fenced JSON block from a model answer and
// unmarshals it.
func ParseInsight(text string) (*Insight, error) {
	block, err := extractFencedBlock(text)
	if err != nil {
		return nil, err
	}

	var insight Insight
	if err := json.Unmarshal([]byte(block), &insight); err != nil {
		return nil, fmt.Errorf("failed to parse insight json: %w", err)
	}
	return &insight, nil
}

// extractFencedBlock returns the contents of the first ``` fence, skipping
// an optional language tag on the opening line.
func extractFencedBlock(text string) (string, error) {
	start := strings.Index(text, "```")
	if start == -1 {
		return "", ErrNoJSONBlock
	}
	rest := text[start+3:]

	// Drop the language tag ("json") up to the first newline.
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine == "json" || firstLine == "" {
			rest = rest[nl+1:]
		}
	}

	end := strings.Index(rest, "```")
	if end == -1 {
		return "", ErrNoJSONBlock
	}
	return strings.TrimSpace(rest[:end]), nil
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divvyapp/divvy/internal/auth"
	"github.com/divvyapp/divvy/internal/bank"
	"github.com/divvyapp/divvy/internal/insights"
	"github.com/divvyapp/divvy/internal/notify"
	"github.com/divvyapp/divvy/internal/service"
	"github.com/divvyapp/divvy/internal/storage/sqlite"
)

type approveAllGateway struct{}

func (approveAllGateway) Validate(ctx context.Context, card bank.Card) (*bank.ValidationResult, error) {
	return &bank.ValidationResult{Valid: true, Message: "ok"}, nil
}

func (approveAllGateway) Pay(ctx context.Context, card bank.Card, amount decimal.Decimal) (*bank.PaymentResult, error) {
	return &bank.PaymentResult{Success: true, Message: "charged"}, nil
}

type cannedSummarizer struct{}

func (cannedSummarizer) Summarize(ctx context.Context, transactions []insights.Transaction) (*insights.Insight, error) {
	return &insights.Insight{Summary: fmt.Sprintf("%d transactions", len(transactions))}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "divvy-handler-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	hub := notify.NewHub()

	h := New(
		service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager),
		service.NewBillService(store, nil, hub),
		service.NewPaymentService(store, approveAllGateway{}, hub),
		service.NewCreditService(store),
		service.NewInsightService(store, cannedSummarizer{}),
	)

	server := httptest.NewServer(h.Routes(jwtManager))
	t.Cleanup(server.Close)
	return server
}

// doJSON issues a request and decodes the JSON response into out (when non-nil).
func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body, out any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func registerUser(t *testing.T, server *httptest.Server, email, name string) (string, authResponse) {
	t.Helper()
	var resp authResponse
	httpResp := doJSON(t, server, http.MethodPost, "/register", "", map[string]string{
		"email":        email,
		"display_name": name,
		"password":     "hunter2secret",
	}, &resp)
	require.Equal(t, http.StatusCreated, httpResp.StatusCode)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp
}

func TestAPIFlow(t *testing.T) {
	server := newTestServer(t)

	aliceToken, _ := registerUser(t, server, "alice@example.com", "Alice")
	bobToken, _ := registerUser(t, server, "bob@example.com", "Bob")

	// Duplicate registration conflicts.
	resp := doJSON(t, server, http.MethodPost, "/register", "", map[string]string{
		"email": "alice@example.com", "display_name": "Alice", "password": "hunter2secret",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Login round trip.
	var login authResponse
	resp = doJSON(t, server, http.MethodPost, "/login", "", map[string]string{
		"email": "alice@example.com", "password": "hunter2secret",
	}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, server, http.MethodPost, "/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Unauthenticated API access is rejected.
	resp = doJSON(t, server, http.MethodGet, "/bills", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Alice splits a bill with Bob, due today so Bob lands the 1.5x multiplier.
	var bill billResponse
	resp = doJSON(t, server, http.MethodPost, "/bills", aliceToken, map[string]any{
		"title":         "Team lunch",
		"amount":        "100",
		"due_date":      time.Now().Format("2006-01-02"),
		"creator_share": "40",
		"participants":  []map[string]string{{"email": "bob@example.com", "share": "60"}},
	}, &bill)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, bill.Participants, 2)

	// A lopsided split is rejected.
	resp = doJSON(t, server, http.MethodPost, "/bills", aliceToken, map[string]any{
		"title":         "Bad math",
		"amount":        "100",
		"due_date":      time.Now().Format("2006-01-02"),
		"creator_share": "40",
		"participants":  []map[string]string{{"email": "bob@example.com", "share": "50"}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Bob pays his share.
	card := map[string]string{
		"account_number":   "4000123412341234",
		"card_holder_name": "Bob Example",
		"cvv":              "123",
		"expiry_date":      time.Now().AddDate(3, 0, 0).Format("01/06"),
	}
	var payResp payShareResponse
	resp = doJSON(t, server, http.MethodPost, "/bills/"+bill.ID+"/pay", bobToken,
		map[string]any{"card": card}, &payResp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, payResp.BillPaid)
	require.NotNil(t, payResp.Reward)
	assert.Equal(t, 1.5, payResp.Reward.Multiplier)
	assert.True(t, payResp.NewBalance.Equal(decimal.RequireFromString("4.5")),
		"balance = %s", payResp.NewBalance)

	// Paying twice conflicts.
	resp = doJSON(t, server, http.MethodPost, "/bills/"+bill.ID+"/pay", bobToken,
		map[string]any{"card": card}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Bob's credits reflect the reward.
	var balance map[string]decimal.Decimal
	resp = doJSON(t, server, http.MethodGet, "/credits", bobToken, nil, &balance)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, balance["balance"].Equal(decimal.RequireFromString("4.5")))

	var history []creditEntryResponse
	resp = doJSON(t, server, http.MethodGet, "/credits/history", bobToken, nil, &history)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, history, 1)

	// Redeeming beyond the balance is rejected; within it succeeds.
	resp = doJSON(t, server, http.MethodPost, "/credits/redeem", bobToken,
		map[string]any{"brand": "Amazon", "cost": "100"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var card2 giftCardResponse
	resp = doJSON(t, server, http.MethodPost, "/credits/redeem", bobToken,
		map[string]any{"brand": "Amazon", "cost": "4"}, &card2)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, card2.Code)

	var cards []giftCardResponse
	resp = doJSON(t, server, http.MethodGet, "/credits/giftcards", bobToken, nil, &cards)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, cards, 1)

	// Insights come back from the summarizer.
	var insight insights.Insight
	resp = doJSON(t, server, http.MethodGet, "/insights", bobToken, nil, &insight)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, insight.Summary)
}

func TestAPIAccessControl(t *testing.T) {
	server := newTestServer(t)

	aliceToken, _ := registerUser(t, server, "alice@example.com", "Alice")
	bobToken, _ := registerUser(t, server, "bob@example.com", "Bob")
	malloryToken, _ := registerUser(t, server, "mallory@example.com", "Mallory")

	var bill billResponse
	resp := doJSON(t, server, http.MethodPost, "/bills", aliceToken, map[string]any{
		"title":         "Rent",
		"amount":        "100",
		"due_date":      time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		"creator_share": "50",
		"participants":  []map[string]string{{"email": "bob@example.com", "share": "50"}},
	}, &bill)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Participants can read the bill, outsiders cannot.
	resp = doJSON(t, server, http.MethodGet, "/bills/"+bill.ID, bobToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, server, http.MethodGet, "/bills/"+bill.ID, malloryToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Unknown bills are a 404.
	resp = doJSON(t, server, http.MethodGet, "/bills/no-such-bill", aliceToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A garbage token is rejected.
	resp = doJSON(t, server, http.MethodGet, "/bills", "not-a-jwt", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type redeemRequest struct {
	Brand string          `json:"brand"`
	Cost  decimal.Decimal `json:"cost"`
}

type giftCardResponse struct {
	ID        string          `json:"id"`
	Brand     string          `json:"brand"`
	Cost      decimal.Decimal `json:"cost"`
	Code      string          `json:"code"`
	CreatedAt int64           `json:"created_at"`
}

// CreditBalance returns the caller's current credit balance.
func (h *Handler) CreditBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.credits.Balance(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

// CreditHistory returns the caller's ledger entries, newest first.
func (h *Handler) CreditHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.credits.History(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]creditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, creditEntryResponse{
			ID:           entry.ID,
			SourceType:   entry.SourceType,
			SourceID:     entry.SourceID,
			ChangeAmount: entry.ChangeAmount,
			BalanceAfter: entry.BalanceAfter,
			CreatedAt:    entry.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// Redeem exchanges credits for a gift card.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	card, err := h.credits.Redeem(r.Context(), req.Brand, req.Cost)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, giftCardResponse{
		ID:        card.ID,
		Brand:     card.Brand,
		Cost:      card.Cost,
		Code:      card.Code,
		CreatedAt: card.CreatedAt,
	})
}

// GiftCards returns the caller's redeemed gift cards, newest first.
func (h *Handler) GiftCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.credits.GiftCards(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]giftCardResponse, 0, len(cards))
	for _, card := range cards {
		resp = append(resp, giftCardResponse{
			ID:        card.ID,
			Brand:     card.Brand,
			Cost:      card.Cost,
			Code:      card.Code,
			CreatedAt: card.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

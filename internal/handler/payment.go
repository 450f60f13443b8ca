package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/bank"
	"github.com/divvyapp/divvy/internal/service"
)

type payShareRequest struct {
	Card bank.Card `json:"card"`
}

type rewardResponse struct {
	Multiplier   float64         `json:"multiplier"`
	CreditReward decimal.Decimal `json:"credit_reward"`
	DaysLate     int             `json:"days_late"`
	Penalty      decimal.Decimal `json:"penalty"`
}

type creditEntryResponse struct {
	ID           string          `json:"id"`
	SourceType   string          `json:"source_type"`
	SourceID     string          `json:"source_id"`
	ChangeAmount decimal.Decimal `json:"change_amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    int64           `json:"created_at"`
}

type payShareResponse struct {
	PaymentID  string                `json:"payment_id"`
	AmountPaid decimal.Decimal       `json:"amount_paid"`
	Reward     *rewardResponse       `json:"reward,omitempty"`
	Entries    []creditEntryResponse `json:"credit_entries,omitempty"`
	NewBalance decimal.Decimal       `json:"new_balance"`
	BillPaid   bool                  `json:"bill_paid"`
	Warning    string                `json:"warning,omitempty"`
}

// PayShare settles the caller's share of the bill with a card payment.
func (h *Handler) PayShare(w http.ResponseWriter, r *http.Request) {
	var req payShareRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	result, err := h.payments.PayShare(r.Context(), mux.Vars(r)["id"], req.Card)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPayShareResponse(result))
}

func toPayShareResponse(result *service.PayShareResult) payShareResponse {
	resp := payShareResponse{
		NewBalance: result.NewBalance,
		BillPaid:   result.BillPaid,
		Warning:    result.WarningSummary(),
	}
	if result.Payment != nil {
		resp.PaymentID = result.Payment.ID
		resp.AmountPaid = result.Payment.AmountPaid
	}
	if result.Reward != nil {
		resp.Reward = &rewardResponse{
			Multiplier:   result.Reward.Multiplier,
			CreditReward: result.Reward.CreditReward,
			DaysLate:     result.Reward.DaysLate,
			Penalty:      result.Reward.Penalty,
		}
	}
	for _, entry := range result.Entries {
		resp.Entries = append(resp.Entries, creditEntryResponse{
			ID:           entry.ID,
			SourceType:   entry.SourceType,
			SourceID:     entry.SourceID,
			ChangeAmount: entry.ChangeAmount,
			BalanceAfter: entry.BalanceAfter,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return resp
}

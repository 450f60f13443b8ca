package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/models"
	"github.com/divvyapp/divvy/internal/service"
)

type participantShareRequest struct {
	Email string          `json:"email"`
	Share decimal.Decimal `json:"share"`
}

type createBillRequest struct {
	Title        string                    `json:"title"`
	Amount       decimal.Decimal           `json:"amount"`
	DueDate      string                    `json:"due_date"` // YYYY-MM-DD
	CreatorShare decimal.Decimal           `json:"creator_share"`
	Participants []participantShareRequest `json:"participants"`
}

type participantResponse struct {
	UserID     string          `json:"user_id"`
	AmountOwed decimal.Decimal `json:"amount_owed"`
	HasPaid    bool            `json:"has_paid"`
	PaidAt     int64           `json:"paid_at,omitempty"`
}

type billResponse struct {
	ID           string                `json:"id"`
	CreatorID    string                `json:"creator_id"`
	Title        string                `json:"title"`
	Amount       decimal.Decimal       `json:"amount"`
	DueDate      int64                 `json:"due_date"`
	Status       string                `json:"status"`
	CreatedAt    int64                 `json:"created_at"`
	Participants []participantResponse `json:"participants,omitempty"`
}

func toBillResponse(bill *models.Bill) billResponse {
	resp := billResponse{
		ID:        bill.ID,
		CreatorID: bill.CreatorID,
		Title:     bill.Title,
		Amount:    bill.Amount,
		DueDate:   bill.DueDate,
		Status:    bill.Status,
		CreatedAt: bill.CreatedAt,
	}
	for _, p := range bill.Participants {
		resp.Participants = append(resp.Participants, participantResponse{
			UserID:     p.UserID,
			AmountOwed: p.AmountOwed,
			HasPaid:    p.HasPaid,
			PaidAt:     p.PaidAt,
		})
	}
	return resp
}

// CreateBill creates a bill split among the caller and the invited friends.
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	dueDate, err := time.ParseInLocation("2006-01-02", req.DueDate, time.Local)
	if err != nil {
		badRequest(w, "due_date must be YYYY-MM-DD")
		return
	}

	input := service.CreateBillInput{
		Title:        req.Title,
		Amount:       req.Amount,
		DueDate:      dueDate,
		CreatorShare: req.CreatorShare,
	}
	for _, p := range req.Participants {
		input.Participants = append(input.Participants, service.ParticipantShare{
			Email: p.Email,
			Share: p.Share,
		})
	}

	bill, err := h.bills.CreateBill(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toBillResponse(bill))
}

// GetBill returns one bill with its participant rows.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.bills.GetBill(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toBillResponse(bill))
}

// ListBills returns the caller's bills, newest first.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.bills.ListBills(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]billResponse, 0, len(bills))
	for i := range bills {
		resp = append(resp, toBillResponse(&bills[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

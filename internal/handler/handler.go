// Package handler exposes the HTTP API: JSON request decoding, response
// shaping, and the mapping from service errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/divvyapp/divvy/internal/auth"
	"github.com/divvyapp/divvy/internal/metrics"
	"github.com/divvyapp/divvy/internal/middleware"
	"github.com/divvyapp/divvy/internal/service"
	"github.com/divvyapp/divvy/internal/storage"
)

// Handler holds the services behind the HTTP API.
type Handler struct {
	auth     *service.AuthService
	bills    *service.BillService
	payments *service.PaymentService
	credits  *service.CreditService
	insights *service.InsightService
}

// New creates a new Handler.
func New(
	authSvc *service.AuthService,
	bills *service.BillService,
	payments *service.PaymentService,
	credits *service.CreditService,
	insights *service.InsightService,
) *Handler {
	return &Handler{
		auth:     authSvc,
		bills:    bills,
		payments: payments,
		credits:  credits,
		insights: insights,
	}
}

// Routes builds the full router: public auth endpoints, the authenticated
// API behind the JWT middleware, and the Prometheus scrape endpoint.
func (h *Handler) Routes(jwtManager *auth.JWTManager) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/").Subrouter()
	api.Use(middleware.RequireAuth(jwtManager))
	api.HandleFunc("/bills", h.CreateBill).Methods(http.MethodPost)
	api.HandleFunc("/bills", h.ListBills).Methods(http.MethodGet)
	api.HandleFunc("/bills/{id}", h.GetBill).Methods(http.MethodGet)
	api.HandleFunc("/bills/{id}/pay", h.PayShare).Methods(http.MethodPost)
	api.HandleFunc("/credits", h.CreditBalance).Methods(http.MethodGet)
	api.HandleFunc("/credits/history", h.CreditHistory).Methods(http.MethodGet)
	api.HandleFunc("/credits/redeem", h.Redeem).Methods(http.MethodPost)
	api.HandleFunc("/credits/giftcards", h.GiftCards).Methods(http.MethodGet)
	api.HandleFunc("/insights", h.Insights).Methods(http.MethodGet)

	return r
}

// respondJSON writes payload with the given status.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError translates service errors into HTTP statuses. Unrecognized
// errors become an opaque 500 so internals never leak to clients.
func respondError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrCardRejected):
		status = http.StatusPaymentRequired
	case errors.Is(err, service.ErrNotParticipant):
		status = http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrShareAlreadyPaid), errors.Is(err, auth.ErrEmailExists):
		status = http.StatusConflict
	default:
		slog.Error("Request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func badRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/models"
)

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name"`
	Credits     decimal.Decimal `json:"credits"`
	CreatedAt   int64           `json:"created_at"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Credits:     user.Credits,
		CreatedAt:   user.CreatedAt,
	}
}

// Register creates an account and returns a session token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(user)})
}

// Login authenticates credentials and returns a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

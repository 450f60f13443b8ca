package handler

import (
	"net/http"
)

// Insights returns an AI-generated summary of the caller's spending.
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	insight, err := h.insights.Spending(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, insight)
}

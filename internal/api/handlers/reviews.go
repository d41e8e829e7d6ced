package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/roamr-backend/internal/api/httpx"
	"github.com/baharkarakas/roamr-backend/internal/middleware"
	"github.com/baharkarakas/roamr-backend/internal/models"
	"github.com/baharkarakas/roamr-backend/internal/services"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Review *services.ReviewInput `json:"review"`
	}
	if err := httpx.DecodeJSON(http.MaxBytesReader(w, r.Body, maxJSONBytes), &req); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if req.Review == nil {
		httpx.WriteDomainError(w, models.NewValidationError("review", "review", "send valid data for review"))
		return
	}
	rv, err := h.Reviews.Create(r.Context(), middleware.PrincipalFrom(r.Context()), chi.URLParam(r, "id"), *req.Review)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"review": rv, "message": "New review created"})
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Reviews.Delete(r.Context(), middleware.PrincipalFrom(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "reviewID"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Review deleted"})
}

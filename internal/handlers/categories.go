package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ledgerchat-backend/internal/middleware"
	"ledgerchat-backend/pkg/api"
)

// CreateCategory handles POST /api/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req api.CreateCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	category, err := h.ledger.CreateCategory(r.Context(), middleware.UserID(r.Context()), req.Name)
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusCreated, toCategoryResponse(category))
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.ledger.ListCategories(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toCategoryResponses(categories))
}

// RenameCategory handles PUT /api/categories/{categoryId}.
func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var req api.RenameCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	category, err := h.ledger.RenameCategory(
		r.Context(),
		middleware.UserID(r.Context()),
		chi.URLParam(r, "categoryId"),
		req.Name,
	)
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles DELETE /api/categories/{categoryId}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteCategory(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "categoryId")); err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

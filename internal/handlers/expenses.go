package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ledgerchat-backend/internal/middleware"
	"ledgerchat-backend/internal/service/ledger"
	"ledgerchat-backend/pkg/api"
)

// CreateExpense handles POST /api/expenses.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req api.CreateExpenseRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	expense, err := h.ledger.CreateExpense(r.Context(), middleware.UserID(r.Context()), ledger.CreateExpenseInput{
		Name:       req.Name,
		Amount:     req.Amount,
		Category:   req.Category,
		JobID:      req.JobID,
		Date:       date,
		Vendor:     req.Vendor,
		Notes:      req.Notes,
		ReceiptRef: req.ReceiptRef,
	})
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusCreated, toExpenseResponse(expense))
}

// GetExpense handles GET /api/expenses/{expenseId}.
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.ledger.GetExpense(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "expenseId"))
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toExpenseResponse(expense))
}

// ListExpenses handles GET /api/expenses.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.ledger.ListExpenses(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toExpenseResponses(expenses))
}

// UpdateExpense handles PUT /api/expenses/{expenseId}.
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateExpenseRequest
	if !h.decode(w, r, &req) {
		return
	}

	input := ledger.UpdateExpenseInput{
		Name:       req.Name,
		Amount:     req.Amount,
		Category:   req.Category,
		JobID:      req.JobID,
		Vendor:     req.Vendor,
		Notes:      req.Notes,
		ReceiptRef: req.ReceiptRef,
	}
	if req.Date != nil {
		t, err := parseDate(*req.Date)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		input.Date = t
	}

	expense, err := h.ledger.UpdateExpense(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "expenseId"), input)
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toExpenseResponse(expense))
}

// DeleteExpense handles DELETE /api/expenses/{expenseId}.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteExpense(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "expenseId")); err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// AttachExpense handles POST /api/expenses/{expenseId}/attach/{jobId}.
func (h *Handler) AttachExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.ledger.AttachExpense(
		r.Context(),
		middleware.UserID(r.Context()),
		chi.URLParam(r, "expenseId"),
		chi.URLParam(r, "jobId"),
	)
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toExpenseResponse(expense))
}

// DetachExpense handles POST /api/expenses/{expenseId}/detach.
func (h *Handler) DetachExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.ledger.DetachExpense(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "expenseId"))
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toExpenseResponse(expense))
}

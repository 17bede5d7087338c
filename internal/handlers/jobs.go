package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ledgerchat-backend/internal/middleware"
	"ledgerchat-backend/internal/service/ledger"
	"ledgerchat-backend/pkg/api"
)

// CreateJob handles POST /api/jobs.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req api.CreateJobRequest
	if !h.decode(w, r, &req) {
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid startDate, expected YYYY-MM-DD")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid endDate, expected YYYY-MM-DD")
		return
	}

	job, err := h.ledger.CreateJob(r.Context(), middleware.UserID(r.Context()), ledger.CreateJobInput{
		Name:        req.Name,
		Client:      req.Client,
		Address:     req.Address,
		Description: req.Description,
		Revenue:     req.Revenue,
		Status:      req.Status,
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusCreated, toJobResponse(job))
}

// GetJob handles GET /api/jobs/{jobId}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.ledger.GetJob(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "jobId"))
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toJobResponse(job))
}

// ListJobs handles GET /api/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.ledger.ListJobs(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toJobResponses(jobs))
}

// UpdateJob handles PUT /api/jobs/{jobId}.
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateJobRequest
	if !h.decode(w, r, &req) {
		return
	}

	input := ledger.UpdateJobInput{
		Name:        req.Name,
		Client:      req.Client,
		Address:     req.Address,
		Description: req.Description,
		Revenue:     req.Revenue,
		Status:      req.Status,
	}
	if req.StartDate != nil {
		t, err := parseDate(*req.StartDate)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid startDate, expected YYYY-MM-DD")
			return
		}
		input.StartDate = t
	}
	if req.EndDate != nil {
		t, err := parseDate(*req.EndDate)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid endDate, expected YYYY-MM-DD")
			return
		}
		input.EndDate = t
	}

	job, err := h.ledger.UpdateJob(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "jobId"), input)
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toJobResponse(job))
}

// DeleteJob handles DELETE /api/jobs/{jobId}.
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteJob(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "jobId")); err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

package handlers

import (
	"net/http"

	"ledgerchat-backend/internal/chat"
	"ledgerchat-backend/internal/middleware"
	"ledgerchat-backend/pkg/api"
)

// ExecuteActions handles POST /api/actions/execute: direct execution of an
// action list without a model turn. Used by clients that already hold a
// confirmed action list from a previous chat response.
func (h *Handler) ExecuteActions(w http.ResponseWriter, r *http.Request) {
	var req api.ExecuteActionsRequest
	if !h.decode(w, r, &req) {
		return
	}

	actions, err := chat.ValidateWireActions(req.Actions)
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}

	result := h.orchestrator.Executor().Execute(r.Context(), middleware.UserID(r.Context()), actions)
	api.Success(w, http.StatusOK, api.ExecuteActionsResponse{
		Success: result.Success,
		Mutated: result.AnyMutationApplied,
		Log:     result.Log,
		Error:   result.ErrorMessage,
	})
}

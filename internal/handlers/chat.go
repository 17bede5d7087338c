package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"ledgerchat-backend/internal/chat"
	"ledgerchat-backend/internal/middleware"
	"ledgerchat-backend/pkg/api"
)

// Chat handles POST /api/chat: one full orchestration turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.orchestrator.RunTurn(r.Context(), chat.TurnInput{
		UserID:  middleware.UserID(r.Context()),
		Prompt:  req.Prompt,
		History: req.History,
		Context: req.Context,
	})
	if err != nil {
		h.logger.Error("chat turn failed", zap.Error(err))
		api.ErrorFromApp(w, err)
		return
	}

	api.Success(w, http.StatusOK, api.ChatResponse{
		Text:          out.Text,
		Actions:       out.Actions,
		CorrelationID: out.CorrelationID,
	})
}

// Package handlers wires the HTTP surface to the ledger service and the
// chat orchestrator.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/chat"
	"ledgerchat-backend/internal/service/ledger"
	"ledgerchat-backend/pkg/api"
)

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	ledger       *ledger.Service
	orchestrator *chat.Orchestrator
	validate     *validator.Validate
	logger       *zap.Logger
}

func New(svc *ledger.Service, orchestrator *chat.Orchestrator, logger *zap.Logger) *Handler {
	return &Handler{
		ledger:       svc,
		orchestrator: orchestrator,
		validate:     validator.New(),
		logger:       logger,
	}
}

// decode parses and validates a JSON request body.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

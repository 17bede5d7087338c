package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ledgerchat-backend/internal/middleware"
	"ledgerchat-backend/pkg/api"
)

// ListNotifications handles GET /api/notifications.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.ledger.ListNotifications(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toNotificationResponses(notifications))
}

// MarkNotificationRead handles POST /api/notifications/{notificationId}/read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notification, err := h.ledger.MarkNotificationRead(
		r.Context(),
		middleware.UserID(r.Context()),
		chi.URLParam(r, "notificationId"),
	)
	if err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusOK, toNotificationResponse(notification))
}

// DeleteNotification handles DELETE /api/notifications/{notificationId}.
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteNotification(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "notificationId")); err != nil {
		api.ErrorFromApp(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/middleware"
	"ledgerchat-backend/internal/observability"
	"ledgerchat-backend/internal/resilience"
	"ledgerchat-backend/pkg/api"
)

// requestTimeout bounds a whole request, chat turns included. A turn runs to
// completion or timeout; there is no partial cancellation.
const requestTimeout = 60 * time.Second

// NewRouter assembles the full HTTP surface.
func NewRouter(
	h *Handler,
	limiter *resilience.RateLimiter,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Instrument(metrics))
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Identity)
		r.Use(middleware.RateLimit(limiter, metrics, logger))

		r.Post("/chat", h.Chat)
		r.Post("/actions/execute", h.ExecuteActions)

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", h.CreateJob)
			r.Get("/", h.ListJobs)
			r.Get("/{jobId}", h.GetJob)
			r.Put("/{jobId}", h.UpdateJob)
			r.Delete("/{jobId}", h.DeleteJob)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", h.CreateExpense)
			r.Get("/", h.ListExpenses)
			r.Get("/{expenseId}", h.GetExpense)
			r.Put("/{expenseId}", h.UpdateExpense)
			r.Delete("/{expenseId}", h.DeleteExpense)
			r.Post("/{expenseId}/attach/{jobId}", h.AttachExpense)
			r.Post("/{expenseId}/detach", h.DetachExpense)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.CreateCategory)
			r.Get("/", h.ListCategories)
			r.Put("/{categoryId}", h.RenameCategory)
			r.Delete("/{categoryId}", h.DeleteCategory)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Post("/{notificationId}/read", h.MarkNotificationRead)
			r.Delete("/{notificationId}", h.DeleteNotification)
		})
	})

	return r
}

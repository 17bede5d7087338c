// Package middleware provides the HTTP middleware chain: identity, panic
// recovery, per-route rate limiting, and request instrumentation.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/observability"
	"ledgerchat-backend/internal/resilience"
	"ledgerchat-backend/pkg/api"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserID returns the authenticated user id placed in the request context by
// Identity, or "" when absent.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Identity extracts the caller identity from the X-User-ID header set by the
// upstream gateway. Authentication itself happens at the gateway boundary;
// requests without an identity are rejected here.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			api.Error(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// Recovery converts panics into 500 responses with a structured log entry.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"),
					)
					api.Error(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies the fixed-window limiter keyed by (user, endpoint) and
// sets Retry-After on rejection.
func RateLimit(limiter *resilience.RateLimiter, metrics *observability.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := UserID(r.Context()) + ":" + r.URL.Path
			retryAfter, err := limiter.Allow(key)
			if err != nil {
				if metrics != nil {
					metrics.RateLimited.Inc()
				}
				logger.Warn("request rate limited", zap.String("key", key))
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				api.ErrorFromApp(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Instrument records request latency by route, method, and status class.
func Instrument(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}
			started := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// The route pattern is only resolved once the handler ran,
			// so it is read after ServeHTTP. Unmatched paths keep the
			// raw path, which is fine for 404 cardinality.
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			metrics.RequestDuration.With(prometheus.Labels{
				"route":  route,
				"method": r.Method,
				"status": strconv.Itoa(ww.Status()),
			}).Observe(time.Since(started).Seconds())
		})
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.Duration("elapsed", time.Since(started)),
			)
		})
	}
}

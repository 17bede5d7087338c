// Package observability holds the Prometheus instrumentation shared by the
// HTTP layer and the orchestration pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the service exports.
type Metrics struct {
	RequestDuration  *prometheus.HistogramVec
	TurnDuration     prometheus.Histogram
	ModelCalls       *prometheus.CounterVec
	RepairedReplies  prometheus.Counter
	QualityScore     prometheus.Histogram
	ActionsExecuted  *prometheus.CounterVec
	CompensationRuns prometheus.Counter
	RateLimited      prometheus.Counter
}

// New registers all collectors on reg. Pass prometheus.DefaultRegisterer in
// production; tests use a fresh registry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledgerchat",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status class.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledgerchat",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end latency of one orchestration turn.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}),
		ModelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledgerchat",
			Name:      "model_calls_total",
			Help:      "Model backend calls by outcome.",
		}, []string{"outcome"}),
		RepairedReplies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchat",
			Name:      "repaired_replies_total",
			Help:      "Model replies that needed repair before acceptance.",
		}),
		QualityScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledgerchat",
			Name:      "reply_quality_score",
			Help:      "Quality score of interpreted model replies.",
			Buckets:   []float64{0, 20, 40, 60, 70, 80, 90, 100},
		}),
		ActionsExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledgerchat",
			Name:      "actions_executed_total",
			Help:      "Executed actions by type and status.",
		}, []string{"action", "status"}),
		CompensationRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchat",
			Name:      "compensation_runs_total",
			Help:      "Turns that triggered compensation after a failure.",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchat",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}
}

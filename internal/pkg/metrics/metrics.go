// Package metrics defines the custom Prometheus metrics of the adoption API.
// All metrics register with the default registry on import.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adoption"

// ── Account metrics ───────────────────────────────────────────────────────────

// UsersRegisteredTotal counts successful registrations.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of user accounts registered.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "unknown_email", "bad_password" or "invalid"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Workflow metrics ──────────────────────────────────────────────────────────

var PetsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pets_created_total",
		Help:      "Total number of pet listings created.",
	},
)

var PetsRemovedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pets_removed_total",
		Help:      "Total number of pet listings removed by their owner.",
	},
)

var VisitsScheduledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "visits_scheduled_total",
		Help:      "Total number of adoption visits scheduled.",
	},
)

var AdoptionsConcludedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "adoptions_concluded_total",
		Help:      "Total number of adoptions concluded.",
	},
)

// WorkflowRejectionsTotal counts workflow operations refused by a rule.
// Labels:
//   - operation: e.g. "update", "schedule_visit", "conclude_adoption"
//   - reason: e.g. "not_owner", "self_adoption", "already_adopted"
var WorkflowRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workflow_rejections_total",
		Help:      "Total number of pet workflow operations rejected by a business rule.",
	},
	[]string{"operation", "reason"},
)

// ── Image cleanup metrics ─────────────────────────────────────────────────────

// ImageCleanupTotal counts image deletions attempted by the cleanup workers.
// Label:
//   - result: "deleted", "failed" or "dropped" (queue full)
var ImageCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_cleanup_total",
		Help:      "Total number of orphaned images handled by the cleanup workers.",
	},
	[]string{"result"},
)

// ImageCleanupQueueDepth tracks pending jobs per cleanup worker.
var ImageCleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "image_cleanup_queue_depth",
		Help:      "Current number of cleanup jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// Middleware records HTTPRequestDuration for every request. The route label
// is the registered path pattern, not the raw URL, to keep cardinality bounded.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			if err != nil {
				// Render now so the committed status is the one observed.
				c.Error(err)
			}
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			HTTPRequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

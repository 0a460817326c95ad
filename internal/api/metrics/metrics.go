// Package metrics defines and registers the custom Prometheus metrics of the
// MarketingCRM portal. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// through promauto; the HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state changes.
// Label:
//   - kind: "login", "register", "logout", "restore", "restore_failed", "expired", "refresh"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session transitions, by kind.",
	},
	[]string{"kind"},
)

// AuthFailuresTotal counts rejected login, register and refresh attempts.
// Labels:
//   - operation: "login", "register" or "refresh"
//   - reason: "invalid_credentials", "user_exists", "malformed_token", "unknown_role", "backend", "store"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of failed authentication operations.",
	},
	[]string{"operation", "reason"},
)

// OpenSessions tracks how many session managers are held in memory.
var OpenSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_sessions",
		Help:      "Number of session managers currently held in memory.",
	},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the CRM backend.
// Labels:
//   - endpoint: route template (e.g. "/orders/{id}/invoice")
//   - code: HTTP status code, or "error" when no response arrived
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the CRM backend.",
	},
	[]string{"endpoint", "code"},
)

// BackendRequestDuration measures round-trip time to the CRM backend.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of CRM backend requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the events waiting in each audit worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of auth events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsDroppedTotal counts auth events dropped because a worker channel was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of auth events dropped on a full audit queue.",
	},
)

// AuditWriteErrorsTotal counts auth events the audit sink failed to persist.
var AuditWriteErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_errors_total",
		Help:      "Total number of auth events that failed to persist.",
	},
)

// ── Upload metrics ────────────────────────────────────────────────────────────

// UploadsRejectedTotal counts payment proofs refused before reaching the backend.
// Label:
//   - reason: "missing", "invalid", "too_large"
var UploadsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_rejected_total",
		Help:      "Total number of payment proof uploads rejected by the portal.",
	},
	[]string{"reason"},
)

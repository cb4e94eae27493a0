// Package metrics defines and registers all custom Prometheus metrics for the
// accounts API. It is the single source of truth for metric names, labels,
// and help strings. Metrics are registered with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Registration metrics ──────────────────────────────────────────────────────

// SignupsTotal counts signup attempts by outcome.
// Labels:
//   - role: the requested role (after the client default is applied)
//   - result: "approved", "pending", or "rejected"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by role and outcome.",
	},
	[]string{"role", "result"},
)

// QuotaRejectionsTotal counts signups rejected because a role quota was full.
var QuotaRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_rejections_total",
		Help:      "Total number of signups rejected by a full role quota.",
	},
	[]string{"role"},
)

// ── Login metrics ─────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "pending_approval", "rate_limited"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// TokenVerificationsTotal counts bearer token checks on protected routes.
// Label:
//   - result: "valid", "expired", or "invalid"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of session token verifications, by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of auth events waiting in each audit
// worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of auth events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsTotal counts audit events by kind and persistence outcome.
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of auth audit events processed, by kind and result.",
	},
	[]string{"kind", "result"},
)

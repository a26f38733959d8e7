// Package metrics defines and registers all custom Prometheus metrics of the
// tracking portal. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Remote store metrics ──────────────────────────────────────────────────────

// StoreRequestsTotal counts calls to the remote spreadsheet store.
// Labels:
//   - action: LIST, SAVE, DELETE, CHAT_GET, CHAT_SAVE, UPLOAD or GROUP_CREATE
//   - outcome: "ok" or "error" (after retries)
var StoreRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_requests_total",
		Help:      "Total number of remote store calls, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// StoreRetriesTotal counts write attempts repeated after a transport failure.
var StoreRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_retries_total",
		Help:      "Total number of remote store write retries.",
	},
	[]string{"action"},
)

// StoreRequestDuration measures a remote store call including its retries.
var StoreRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_request_duration_seconds",
		Help:      "Duration of remote store calls, retries included.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	},
	[]string{"action"},
)

// ── Chat metrics ──────────────────────────────────────────────────────────────

// ChatPollTicksTotal counts poll loop fetches.
// Label:
//   - result: "applied" or "stale" (a newer activation superseded the fetch)
var ChatPollTicksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_poll_ticks_total",
		Help:      "Total number of chat poll fetches, by result.",
	},
	[]string{"result"},
)

// ChatActiveStreams tracks the open chat websocket streams.
var ChatActiveStreams = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chat_active_streams",
		Help:      "Current number of open chat streams.",
	},
)

// ChatMessagesSentTotal counts messages posted through the portal.
var ChatMessagesSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_messages_sent_total",
		Help:      "Total number of chat messages sent, by message type.",
	},
	[]string{"type"},
)

// ── Auth and record metrics ───────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "bootstrap", "inactive" or "invalid"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RecordMutationsTotal counts shipment record writes.
// Labels:
//   - kind: "awb" or "pre"
//   - op: "create", "update" or "delete"
var RecordMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_mutations_total",
		Help:      "Total number of shipment record writes, by kind and operation.",
	},
	[]string{"kind", "op"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the events waiting in each audit worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsTotal counts audit events by outcome.
// Label:
//   - result: "stored", "failed" or "dropped" (queue full)
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, by result.",
	},
	[]string{"result"},
)

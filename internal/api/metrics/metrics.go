// Package metrics defines and registers the custom Prometheus metrics for the
// auth API. It is the single source of truth for metric names, labels, and
// help strings.
//
// All metrics are registered with the default registry on import via promauto;
// the HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthOperationsTotal counts auth operations by outcome.
// Labels:
//   - operation: "register", "login", "refresh", "logout", "request_verification", "verify"
//   - result: "success" or the error kind (e.g. "unauthorized", "token_expired")
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of auth operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ErrorsTotal counts error responses written by the HTTP error handler.
// Label:
//   - kind: stable error code returned to clients (e.g. "validation_error")
var ErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Total number of error responses, by error kind.",
	},
	[]string{"kind"},
)

// TokensIssuedTotal counts tokens handed out to clients.
// Label:
//   - purpose: "session" or "email_verification"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of tokens issued, by purpose.",
	},
	[]string{"purpose"},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// MailsTotal counts verification mail outcomes in the dispatcher.
// Label:
//   - result: "queued", "dropped", "sent", or "failed"
var MailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_mails_total",
		Help:      "Total number of verification mails, by dispatcher outcome.",
	},
	[]string{"result"},
)

// MailQueueDepth tracks mails waiting in the dispatcher buffer.
var MailQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "verification_mail_queue_depth",
		Help:      "Current number of verification mails pending delivery.",
	},
)

// MailDeliveryDuration measures how long one transport send takes.
var MailDeliveryDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "verification_mail_delivery_duration_seconds",
		Help:      "Duration of a single verification mail hand-off to the transport.",
		Buckets:   prometheus.DefBuckets,
	},
)

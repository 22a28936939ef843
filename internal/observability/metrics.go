// Package observability owns the prometheus collectors of the bot.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fitlog_bot"

var (
	actionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "actions_total",
		Help:      "User actions dispatched to the session controller, by kind.",
	}, []string{"kind"})
	parseRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "parser",
		Name:      "rejections_total",
		Help:      "Measurement inputs rejected by the parser, by grammar and reason.",
	}, []string{"grammar", "reason"})
	setRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "set_records_total",
		Help:      "Set records persisted, by exercise kind.",
	}, []string{"kind"})
	sessionsClosedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "closed_total",
		Help:      "Sessions marked complete, by reason.",
	}, []string{"reason"})
	anchorFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "anchor",
		Name:      "fallbacks_total",
		Help:      "In-place edits that fell back to send-and-replace, by screen.",
	}, []string{"screen"})
	anchorCleanupFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "anchor",
		Name:      "cleanup_failures_total",
		Help:      "Best-effort deletes or keyboard strips that failed, by screen.",
	}, []string{"screen"})
)

func init() {
	prometheus.MustRegister(
		actionsTotal,
		parseRejectionsTotal,
		setRecordsTotal,
		sessionsClosedTotal,
		anchorFallbacksTotal,
		anchorCleanupFailuresTotal,
	)
}

func RecordAction(kind string) {
	actionsTotal.WithLabelValues(kind).Inc()
}

func RecordParseRejection(grammar, reason string) {
	parseRejectionsTotal.WithLabelValues(grammar, reason).Inc()
}

func RecordSetRecord(kind string) {
	setRecordsTotal.WithLabelValues(kind).Inc()
}

func RecordSessionClosed(reason string) {
	sessionsClosedTotal.WithLabelValues(reason).Inc()
}

func RecordAnchorFallback(screen string) {
	anchorFallbacksTotal.WithLabelValues(screen).Inc()
}

func RecordAnchorCleanupFailure(screen string) {
	anchorCleanupFailuresTotal.WithLabelValues(screen).Inc()
}

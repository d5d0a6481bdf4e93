// Package metrics provides Prometheus metrics for sportcheck.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sportcheck"

var (
	// StageTotal counts pipeline stage outcomes.
	StageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_total",
			Help:      "Total number of pipeline stage runs by outcome",
		},
		[]string{"stage", "outcome"},
	)

	// StageDuration measures pipeline stage duration.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// PageFetchTotal counts evidence page fetches by outcome.
	PageFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetch_total",
			Help:      "Total number of evidence page fetches",
		},
		[]string{"outcome"},
	)

	// SummarySourceTotal counts which fallback produced each evidence summary.
	SummarySourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_source_total",
			Help:      "Total number of evidence summaries by source",
		},
		[]string{"source"},
	)

	// VerdictTotal counts synthesized verdicts.
	VerdictTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdict_total",
			Help:      "Total number of verdicts by value and whether synthesis degraded",
		},
		[]string{"verdict", "degraded"},
	)

	// HTTPRequestsTotal counts inbound API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)
)

// RecordStage records one stage run.
func RecordStage(stage, outcome string, d time.Duration) {
	StageTotal.WithLabelValues(stage, outcome).Inc()
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordPageFetch records a page fetch outcome.
func RecordPageFetch(outcome string) {
	PageFetchTotal.WithLabelValues(outcome).Inc()
}

// RecordSummarySource records where an evidence summary came from.
func RecordSummarySource(source string) {
	SummarySourceTotal.WithLabelValues(source).Inc()
}

// RecordVerdict records a synthesized verdict.
func RecordVerdict(verdict string, degraded bool) {
	VerdictTotal.WithLabelValues(verdict, strconv.FormatBool(degraded)).Inc()
}

// RecordHTTPRequest records an inbound request.
func RecordHTTPRequest(route string, status int) {
	HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

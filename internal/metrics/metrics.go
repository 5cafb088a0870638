// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloadzone_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "downloadzone_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// SubmissionsTotal counts accepted submissions by path (single, bulk).
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloadzone_submissions_total",
			Help: "Submissions accepted, by submission path.",
		},
		[]string{"path"},
	)

	RateLimitRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downloadzone_rate_limit_rejections_total",
		Help: "Submission requests rejected by the daily per-IP limit.",
	})

	ChallengesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloadzone_challenges_total",
			Help: "Challenge verifications by kind (math, recaptcha) and result.",
		},
		[]string{"kind", "result"},
	)

	ModerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloadzone_moderation_total",
			Help: "Moderation decisions by action.",
		},
		[]string{"action"},
	)

	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloadzone_emails_total",
			Help: "Email delivery attempts by result (sent, failed, dropped, skipped).",
		},
		[]string{"result"},
	)

	SettingsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloadzone_settings_cache_total",
			Help: "Settings cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)
)

// Result turns a boolean outcome into a label value.
func Result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

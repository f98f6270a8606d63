package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"scope"},
	)

	// Sessions
	TokensIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_token_pairs_issued_total",
			Help: "Access/refresh token pairs issued",
		},
		[]string{"reason"},
	)

	TokenRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_token_rejections_total",
			Help: "Tokens rejected during verification or rotation",
		},
		[]string{"kind", "reason"},
	)

	SessionsRevokedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidtube_sessions_revoked_total",
			Help: "Refresh tokens cleared on logout",
		},
	)

	// Social graph
	TogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_social_toggles_total",
			Help: "Subscription and like toggles by resulting state",
		},
		[]string{"target", "state"},
	)

	// Media
	MediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_media_uploads_total",
			Help: "Files written to object storage",
		},
		[]string{"kind"},
	)

	MediaDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_media_deletions_total",
			Help: "Background object deletions by outcome",
		},
		[]string{"status"},
	)

	MediaDeletionQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidtube_media_deletion_queue_depth",
			Help: "Objects waiting to be deleted",
		},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// State renders a toggle result as a label value.
func State(active bool) string {
	if active {
		return "on"
	}
	return "off"
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func RecordRateLimited(scope string) {
	RateLimitedTotal.WithLabelValues(scope).Inc()
}

func RecordTokensIssued(reason string) {
	TokensIssuedTotal.WithLabelValues(reason).Inc()
}

func RecordTokenRejected(kind, reason string) {
	TokenRejectionsTotal.WithLabelValues(kind, reason).Inc()
}

// RecordToggle records the state a subscription or like ended up in.
func RecordToggle(target string, active bool) {
	TogglesTotal.WithLabelValues(target, State(active)).Inc()
}

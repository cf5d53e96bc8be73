package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "restobot", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "restobot", Name: "handler_errors_total", Help: "Handler errors",
	})
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restobot", Name: "api_requests_total", Help: "EmiGResto API requests by path and status class",
	}, []string{"path", "status"})
	APIRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "restobot", Name: "api_request_seconds", Help: "EmiGResto API request latency",
		Buckets: prometheus.DefBuckets,
	})
	TokenRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restobot", Name: "token_refreshes_total", Help: "Access token refreshes by outcome",
	}, []string{"outcome"})
	ReservationToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restobot", Name: "reservation_toggles_total", Help: "Grid cell toggles by action (create|cancel)",
	}, []string{"action"})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "restobot", Name: "db_ping_seconds", Help: "Session DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		BotUpdates, HandlerErrors,
		APIRequests, APIRequestDuration, TokenRefreshes, ReservationToggles,
		DBPing,
	)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveAPIRequest(path, status string, d time.Duration) {
	APIRequests.WithLabelValues(path, status).Inc()
	APIRequestDuration.Observe(d.Seconds())
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estately_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "estately_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	billTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estately_bill_transitions_total",
		Help: "Count of utility bill status transitions by result",
	}, []string{"from", "to", "result"})

	overdueSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "estately_overdue_swept_total",
		Help: "Count of bills flipped to overdue by the sweeper",
	})

	leasesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "estately_leases_expired_total",
		Help: "Count of leases flipped to expired by the sweeper",
	})

	activeLeases = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "estately_active_leases",
		Help: "Number of leases in active status",
	})

	emailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estately_email_send_total",
		Help: "Count of outbound email attempts by result",
	}, []string{"kind", "result"})

	favoriteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estately_favorite_toggles_total",
		Help: "Count of favorite toggles by target kind and direction",
	}, []string{"kind", "direction"})

	searchIndexOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estately_search_index_operations_total",
		Help: "Count of search index writes by result",
	}, []string{"operation", "result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveBillTransition records a bill status transition attempt
func ObserveBillTransition(from, to, result string) {
	billTransitions.WithLabelValues(from, to, result).Inc()
}

// ObserveSweep records a sweeper pass
func ObserveSweep(billsFlipped, leasesFlipped int64) {
	overdueSwept.Add(float64(billsFlipped))
	leasesExpired.Add(float64(leasesFlipped))
}

// SetActiveLeases sets the active lease gauge
func SetActiveLeases(count int) {
	if count < 0 {
		count = 0
	}
	activeLeases.Set(float64(count))
}

// ObserveEmail records an outbound email attempt
func ObserveEmail(kind, result string) {
	emailsSent.WithLabelValues(kind, result).Inc()
}

// ObserveFavoriteToggle records a favorite toggle
func ObserveFavoriteToggle(kind string, favored bool) {
	direction := "removed"
	if favored {
		direction = "added"
	}
	favoriteToggles.WithLabelValues(kind, direction).Inc()
}

// ObserveSearchIndex records a search index write
func ObserveSearchIndex(operation, result string) {
	searchIndexOps.WithLabelValues(operation, result).Inc()
}

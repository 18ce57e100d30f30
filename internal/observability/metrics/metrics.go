package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orgvault_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orgvault_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	lifecycleOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orgvault_lifecycle_operations_total",
		Help: "Count of organization lifecycle operations by result",
	}, []string{"operation", "result"})

	lifecycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orgvault_lifecycle_operation_duration_seconds",
		Help:    "Duration of organization lifecycle operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orgvault_login_attempts_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	migratedDocuments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orgvault_partition_documents_migrated_total",
		Help: "Documents copied between partitions during renames",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLifecycleOperation records one create/get/update/delete outcome.
func ObserveLifecycleOperation(operation, result string, duration time.Duration) {
	lifecycleOperations.WithLabelValues(operation, result).Inc()
	lifecycleDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveLogin records a login attempt outcome.
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// AddMigratedDocuments counts documents copied during a partition migration.
func AddMigratedDocuments(n int64) {
	migratedDocuments.Add(float64(n))
}

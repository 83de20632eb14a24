package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, endpoint and status",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request handling time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	registryOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_operations_total",
			Help: "Registry operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	registryConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_write_conflicts_total",
			Help: "Registry writes rejected by a version mismatch",
		},
	)

	listCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "list_cache_lookups_total",
			Help: "List cache lookups by result (hit or miss)",
		},
		[]string{"result"},
	)

	snapshotSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_saves_total",
			Help: "Snapshot synchronizer ticks by result (saved, skipped, failed)",
		},
		[]string{"result"},
	)

	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Active WebSocket session connections",
		},
	)
)

func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func RecordRegistryOp(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	registryOpsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordRegistryConflict() {
	registryConflictsTotal.Inc()
}

func RecordListCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	listCacheLookupsTotal.WithLabelValues(result).Inc()
}

func RecordSnapshotSave(result string) {
	snapshotSavesTotal.WithLabelValues(result).Inc()
}

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

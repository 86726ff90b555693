package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "larder_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "larder_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ImageUploadLatency records image upload duration by kind (cover or step).
	ImageUploadLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "larder_image_upload_latency_seconds",
		Help:    "Image upload duration in seconds by image kind",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// ImageUploadFailures counts failed image uploads by kind.
	ImageUploadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "larder_image_upload_failures_total",
		Help: "Total number of failed image uploads by image kind",
	}, []string{"kind"})

	// OrphanedUploads counts uploads left behind by aborted recipe submissions.
	OrphanedUploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "larder_orphaned_uploads_total",
		Help: "Total number of uploaded objects orphaned by failed submissions",
	})

	// RecipeEvents counts recipe lifecycle events by type.
	RecipeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "larder_recipe_events_total",
		Help: "Total recipe lifecycle events by event type",
	}, []string{"event_type"})

	// PDFExports counts generated PDF exports.
	PDFExports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "larder_pdf_exports_total",
		Help: "Total number of recipe PDF exports generated",
	})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "larder_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "larder_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}

// TrackUpload returns a function that records upload latency when called.
func TrackUpload(kind string) func() {
	start := time.Now()
	return func() {
		ImageUploadLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
}

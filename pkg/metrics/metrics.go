package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Histogram buckets for API response times ranging from milliseconds to 30+ seconds
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method", "http_route"},
	)

	// Database Client Metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DBOperationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_invalidations_total",
			Help: "Total number of explicit cache invalidations",
		},
		[]string{"cache_name"},
	)

	// Storage Client Metrics (S3-compatible object storage)
	StorageRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Business Metrics
	DirectoryLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_directory_lookup_total",
			Help: "Mentor profile lookups by outcome (found, absent, unavailable)",
		},
		[]string{"result"},
	)

	MentorProfileChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_profile_changes_total",
			Help: "Mentor profile create/update/delete attempts",
		},
		[]string{"operation", "status"},
	)

	MentorshipRequestsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_requests_created_total",
			Help: "Total number of mentorship request creation attempts",
		},
		[]string{"status"},
	)

	MentorshipResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_responses_total",
			Help: "Mentor responses to requests by decision and result",
		},
		[]string{"decision", "result"},
	)

	ResumeReviewTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_review_transitions_total",
			Help: "Resume review lifecycle transitions by result",
		},
		[]string{"transition", "result"},
	)

	ResumeReviewFileUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_review_file_uploads_total",
			Help: "Total number of resume file uploads",
		},
		[]string{"status"},
	)

	EngagementLookupMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engagement_lookup_misses_total",
			Help: "Accepted requests whose review could not be located after retries",
		},
	)

	NotificationTriggers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorship_notification_triggers_total",
			Help: "Outbound notification webhook calls",
		},
		[]string{"event", "status"},
	)

	OutboundRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentorship_outbound_http_request_duration_seconds",
			Help:    "Duration of outbound HTTP calls by target",
			Buckets: CustomAPIBuckets,
		},
		[]string{"target", "method", "status"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics samples runtime gauges every interval until ctx is done
func RecordInfrastructureMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			sampleRuntime()
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func sampleRuntime() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	GoRoutines.Set(float64(runtime.NumGoroutine()))
	HeapAlloc.Set(float64(m.HeapAlloc))
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}

// ObserveDB records a database operation outcome
func ObserveDB(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DBOperationDuration.WithLabelValues(operation, status).Observe(MeasureDuration(start))
	DBOperationTotal.WithLabelValues(operation, status).Inc()
}

// Package metrics provides Prometheus metrics for feattrack.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "feattrack"
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks concurrent HTTP requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// Domain metrics
var (
	// FeaturesCreatedTotal counts created features.
	FeaturesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "created_total",
			Help:      "Total features created",
		},
	)

	// FeaturesDeletedTotal counts deleted features, cascade deletions included.
	FeaturesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "deleted_total",
			Help:      "Total features deleted, including cascaded descendants",
		},
	)

	// CascadeDepth tracks how many features each subtree deletion removed.
	CascadeDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "cascade_delete_size",
			Help:      "Features removed per cascading delete",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// CycleRejectionsTotal counts re-parenting attempts rejected by the cycle check.
	CycleRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "cycle_rejections_total",
			Help:      "Re-parenting updates rejected because they would create a cycle",
		},
	)

	// ReordersTotal counts reorder batches applied.
	ReordersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "reorders_total",
			Help:      "Reorder batches applied",
		},
	)

	// ProjectsCreatedTotal counts created projects.
	ProjectsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projects",
			Name:      "created_total",
			Help:      "Total projects created",
		},
	)

	// ProjectsDeletedTotal counts deleted projects.
	ProjectsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projects",
			Name:      "deleted_total",
			Help:      "Total projects deleted",
		},
	)
)

// Upload metrics
var (
	// UploadsTotal counts accepted image uploads.
	UploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "accepted_total",
			Help:      "Total accepted image uploads",
		},
	)

	// UploadsRejectedTotal counts uploads rejected by validation.
	UploadsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "rejected_total",
			Help:      "Total uploads rejected by type, extension, or size checks",
		},
	)

	// UploadBytesTotal counts stored upload bytes.
	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "bytes_total",
			Help:      "Total bytes written to blob storage",
		},
	)
)

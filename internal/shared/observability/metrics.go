// # internal/shared/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	DocumentParseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docxref_document_parse_seconds",
		Help:    "Time spent loading a documentation dump.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	ElementsRegisteredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docxref_elements_registered_total",
		Help: "Total number of documented elements added to the registry.",
	}, []string{"language", "kind"})

	UnresolvedQueuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docxref_unresolved_queued_total",
		Help: "Total number of type references queued for cross-document resolution.",
	}, []string{"language"})

	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docxref_resolutions_total",
		Help: "Reference resolution attempts by outcome (exact, partial, ambiguous, unresolved).",
	}, []string{"outcome"})

	ResolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docxref_resolution_seconds",
		Help:    "Time spent on one reference resolution pass.",
		Buckets: prometheus.DefBuckets,
	})

	ResolutionProgress = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "docxref_resolution_progress",
		Help: "Processed and total reference counts of the current resolution pass.",
	}, []string{"counter"})

	TranscodedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docxref_transcoded_total",
		Help: "Total number of elements transcoded into another language.",
	}, []string{"source", "target"})

	StoreWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docxref_store_write_seconds",
		Help:    "Latency for persisting a run snapshot.",
		Buckets: prometheus.DefBuckets,
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docxref_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	PipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docxref_pipeline_runs_total",
		Help: "Total number of pipeline runs by outcome.",
	}, []string{"outcome"})
)

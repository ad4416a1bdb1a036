package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FilesProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "doc_pipeline_files_processed_total",
			Help: "Total files downloaded, extracted, and loaded",
		},
	)

	ExtractionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "doc_pipeline_extraction_failures_total",
			Help: "Total extraction service failures, empty results included",
		},
	)

	LoadFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "doc_pipeline_load_fallbacks_total",
			Help: "Total upserts that fell back to the unqualified table name",
		},
	)

	ProvisionWarnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "doc_pipeline_provision_warnings_total",
			Help: "Total provisioning steps that failed and were skipped",
		},
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "doc_pipeline_run_duration_seconds",
			Help:    "End-to-end pipeline run duration in seconds",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
		},
	)
)

func Init() {
	prometheus.MustRegister(FilesProcessed)
	prometheus.MustRegister(ExtractionFailures)
	prometheus.MustRegister(LoadFallbacks)
	prometheus.MustRegister(ProvisionWarnings)
	prometheus.MustRegister(RunDuration)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Package metrics registers the service's Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	AnalysesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "visibility_analyses_started_total",
			Help: "Total number of analyses accepted for processing.",
		},
	)
	AnalysesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_analyses_finished_total",
			Help: "Total number of analyses that reached a terminal status, labeled by outcome.",
		},
		[]string{"status"},
	)
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "visibility_analysis_duration_seconds",
			Help:    "End-to-end duration of one analysis run in seconds.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
	SuggestionsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_suggestions_generated_total",
			Help: "Total number of suggestions produced, labeled by category.",
		},
		[]string{"category"},
	)
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_provider_requests_total",
			Help: "Total number of inference provider invocations, labeled by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	PagesCrawled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "visibility_pages_crawled_total",
			Help: "Total number of pages returned by the crawl collaborator.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		AnalysesStarted,
		AnalysesFinished,
		AnalysisDuration,
		SuggestionsGenerated,
		ProviderRequests,
		PagesCrawled,
	)
}

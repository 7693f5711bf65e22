// Package metrics provides the centralized Prometheus registry for the
// wagering engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	CardsProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "apex",
		Name:      "cards_processed_total",
		Help:      "Total number of race cards processed",
	})
	RacesSimulatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "apex",
		Name:      "races_simulated_total",
		Help:      "Total number of races run through Monte Carlo simulation",
	})
	EmptyRacesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "apex",
		Name:      "empty_races_skipped_total",
		Help:      "Total number of empty races skipped",
	})
	TicketsBuiltTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apex",
		Name:      "tickets_built_total",
		Help:      "Total number of vertical tickets built",
	}, []string{"type"})
	SequencesBuiltTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apex",
		Name:      "sequences_built_total",
		Help:      "Total number of horizontal sequences built",
	}, []string{"sequence"})
	SequencesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "apex",
		Name:      "sequences_skipped_total",
		Help:      "Total number of sequences skipped for short cards or empty legs",
	})
	SequencesTrimmedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "apex",
		Name:      "sequences_trimmed_total",
		Help:      "Total number of sequences trimmed to fit their cost cap",
	})
	SequencesOverCapTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "apex",
		Name:      "sequences_over_cap_total",
		Help:      "Total number of sequences emitted above cap after leg floors were reached",
	})
	SchemaErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "apex",
		Name:      "schema_errors_total",
		Help:      "Total number of snapshots rejected by schema resolution",
	})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "apex",
		Name:      "simulation_duration_seconds",
		Help:      "Duration of card-level Monte Carlo simulation in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "apex",
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of full card pipeline runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// Registry returns the shared registry, registering all metrics once.
func Registry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			CardsProcessedTotal,
			RacesSimulatedTotal,
			EmptyRacesSkippedTotal,
			TicketsBuiltTotal,
			SequencesBuiltTotal,
			SequencesSkippedTotal,
			SequencesTrimmedTotal,
			SequencesOverCapTotal,
			SchemaErrorsTotal,
			SimulationDuration,
			PipelineDuration,
		)
	})
	return registry
}

// Handler returns an HTTP handler serving the shared registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}

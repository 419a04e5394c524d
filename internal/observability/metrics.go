package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_samples"

// Metrics holds the Prometheus counters, histograms, and gauges for the sample pipeline.
type Metrics struct {
	CatalogEvents      prometheus.Gauge
	AftershocksRemoved prometheus.Counter
	TargetsSelected    prometheus.Counter
	SamplesBuilt       prometheus.Counter
	SamplesSkipped     *prometheus.CounterVec // labels: reason
	SamplesLoaded      prometheus.Counter
	LoadErrors         prometheus.Counter
	PipelineRunning    prometheus.Gauge

	BatchSize         prometheus.Histogram
	BuildDuration     prometheus.Histogram
	BatchLoadDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CatalogEvents,
		m.AftershocksRemoved,
		m.TargetsSelected,
		m.SamplesBuilt,
		m.SamplesSkipped,
		m.SamplesLoaded,
		m.LoadErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BuildDuration,
		m.BatchLoadDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they need without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CatalogEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_events",
			Help:      "Events in the catalog used for sampling, after aftershock removal.",
		}),
		AftershocksRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aftershocks_removed_total",
			Help:      "Events removed from the catalog as aftershocks.",
		}),
		TargetsSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "targets_selected_total",
			Help:      "Target events submitted for sample extraction.",
		}),
		SamplesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_built_total",
			Help:      "Samples successfully extracted.",
		}),
		SamplesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_skipped_total",
			Help:      "Targets skipped, by reason.",
		}, []string{"reason"}),
		SamplesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_loaded_total",
			Help:      "Samples written to the sink.",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Failed sink writes, including retried ones.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of samples per sink batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sample_build_duration_seconds",
			Help:      "Duration of a single target's sample extraction.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		BatchLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_load_duration_seconds",
			Help:      "Duration of one sink batch write.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

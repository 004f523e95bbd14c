package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// evaluation service.
type Metrics struct {
	MeasurementsConsumed prometheus.Counter
	ParseErrors          prometheus.Counter
	EventsExtracted      prometheus.Counter
	EventsPublished      prometheus.Counter
	PipelineRunning      prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Evaluation metrics.
	BacktestsRun      prometheus.Counter
	BacktestDuration  prometheus.Histogram
	SweepsRun         prometheus.Counter
	SweepDuration     prometheus.Histogram
	EvaluationSamples prometheus.Histogram

	// SWPC feed metrics.
	SWPCRequests *prometheus.CounterVec // labels: feed={kp,solar_wind}, outcome={success,error}
	SWPCCache    *prometheus.CounterVec // labels: feed, result={hit,miss}
	SWPCEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.MeasurementsConsumed,
		m.ParseErrors,
		m.EventsExtracted,
		m.EventsPublished,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.BacktestsRun,
		m.BacktestDuration,
		m.SweepsRun,
		m.SweepDuration,
		m.EvaluationSamples,
		m.SWPCRequests,
		m.SWPCCache,
		m.SWPCEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so
// parallel tests avoid "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MeasurementsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_eval",
			Name:      "measurements_consumed_total",
			Help:      "Total measurements read from the source topic.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_eval",
			Name:      "parse_errors_total",
			Help:      "Total raw messages that failed validation or parsing.",
		}),
		EventsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_eval",
			Name:      "events_extracted_total",
			Help:      "Total storm events closed by the extractor.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_eval",
			Name:      "events_published_total",
			Help:      "Total storm events written to the sink topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_eval",
			Name:      "pipeline_running",
			Help:      "1 when the ingestion pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_eval",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_eval",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete ingest-extract-publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		BacktestsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_eval",
			Name:      "backtests_run_total",
			Help:      "Total backtest evaluations served.",
		}),
		BacktestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_eval",
			Name:      "backtest_duration_seconds",
			Help:      "Duration of a single backtest evaluation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		SweepsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_eval",
			Name:      "threshold_sweeps_total",
			Help:      "Total threshold optimization sweeps served.",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_eval",
			Name:      "threshold_sweep_duration_seconds",
			Help:      "Duration of a full threshold sweep.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		EvaluationSamples: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_eval",
			Name:      "evaluation_samples",
			Help:      "Number of prediction samples per evaluation.",
			Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
		}),
		SWPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_eval",
			Name:      "swpc_requests_total",
			Help:      "NOAA SWPC feed requests by feed and outcome.",
		}, []string{"feed", "outcome"}),
		SWPCCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_eval",
			Name:      "swpc_cache_total",
			Help:      "SWPC response cache lookups by feed and result.",
		}, []string{"feed", "result"}),
		SWPCEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_eval",
			Name:      "swpc_enabled",
			Help:      "1 when the SWPC feed client is enabled, 0 otherwise.",
		}),
	}
}

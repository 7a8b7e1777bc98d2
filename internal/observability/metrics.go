package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "upkeep_planner"

// Metrics holds the Prometheus counters, histograms, and gauges for the planner.
type Metrics struct {
	// Planning metrics.
	PlansGenerated  *prometheus.CounterVec // labels: trigger={http,kafka}
	PlanTasks       prometheus.Histogram
	Predictions     *prometheus.CounterVec // labels: outcome={success,no_location,upstream_error,error}
	ZoneResolutions *prometheus.CounterVec // labels: tier={explicit,cache,coordinate,state,default}
	ChatReplies     *prometheus.CounterVec // labels: mode={generated,template}

	// Upstream lookups.
	UpstreamRequests *prometheus.CounterVec   // labels: provider, method, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: provider, method
	CacheLookups     *prometheus.CounterVec   // labels: cache={geocode,climate,zone}, result={hit,miss}

	// HTTP API.
	HTTPRequests *prometheus.CounterVec // labels: route, code

	// Plan refresh pipeline.
	MessagesConsumed        prometheus.Counter
	MessagesProduced        prometheus.Counter
	RefreshErrors           prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		PlansGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_generated_total",
			Help:      "Maintenance plans generated, by trigger.",
		}, []string{"trigger"}),
		PlanTasks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_tasks",
			Help:      "Number of tasks per generated plan.",
			Buckets:   []float64{0, 5, 10, 20, 40, 80, 160},
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Precise lifespan predictions by outcome.",
		}, []string{"outcome"}),
		ZoneResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zone_resolutions_total",
			Help:      "Climate zone resolutions by the fallback tier that answered.",
		}, []string{"tier"}),
		ChatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_replies_total",
			Help:      "Assistant replies by how the answer was produced.",
		}, []string{"mode"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Geocoding, weather, and text-generation API requests by outcome.",
		}, []string{"provider", "method", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider", "method"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route pattern and status code.",
		}, []string{"route", "code"}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total home-change messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total plans written to the sink topic.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Total home-change messages that could not be turned into a plan.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the plan refresh pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-plan-publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.PlansGenerated,
		m.PlanTasks,
		m.Predictions,
		m.ZoneResolutions,
		m.ChatReplies,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.HTTPRequests,
		m.MessagesConsumed,
		m.MessagesProduced,
		m.RefreshErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	}
}

// NewMetrics creates and registers all planner metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

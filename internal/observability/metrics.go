package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_report"

// Metrics holds the Prometheus counters, histograms, and gauges for feed loads.
type Metrics struct {
	FetchRequests *prometheus.CounterVec // labels: outcome={success,http_error,transport_error,invalid_url}
	FetchDuration prometheus.Histogram

	EarthquakesParsed prometheus.Counter
	FeaturesDropped   prometheus.Counter
	DecodeFailures    prometheus.Counter

	LoadsInFlight  prometheus.Gauge
	LastLoadUnixMs prometheus.Gauge

	// Kafka publishing metrics.
	MessagesPublished prometheus.Counter
	PublishErrors     prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.EarthquakesParsed,
		m.FeaturesDropped,
		m.DecodeFailures,
		m.LoadsInFlight,
		m.LastLoadUnixMs,
		m.MessagesPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Feed requests by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a feed request including the body read.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
		EarthquakesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "earthquakes_parsed_total",
			Help:      "Total earthquake records decoded from the feed.",
		}),
		FeaturesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "features_dropped_total",
			Help:      "Features skipped because they were not decodable objects.",
		}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Feed bodies whose top-level structure could not be decoded.",
		}),
		LoadsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loads_in_flight",
			Help:      "1 while a background load is running, 0 otherwise.",
		}),
		LastLoadUnixMs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_load_timestamp_ms",
			Help:      "Unix time in milliseconds of the last completed load.",
		}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "Earthquake messages written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publish batches.",
		}),
	}
}

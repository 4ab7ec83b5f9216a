package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// crop advisor.
type Metrics struct {
	Recommendations  *prometheus.CounterVec // labels: source={manual,live,live-fallback}, outcome={success,error}
	PredictionErrors prometheus.Counter

	// Training metrics.
	TrainingRuns     prometheus.Counter
	TrainingDuration prometheus.Histogram
	ModelLoaded      prometheus.Gauge

	// Dataset metrics.
	DatasetRecords prometheus.Gauge

	// Weather metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,error}
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration prometheus.Histogram
	WeatherEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_advisor",
			Name:      "recommendations_total",
			Help:      "Recommendation requests by input source and outcome.",
		}, []string{"source", "outcome"}),
		PredictionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_advisor",
			Name:      "prediction_errors_total",
			Help:      "Total inference failures.",
		}),
		TrainingRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_advisor",
			Name:      "training_runs_total",
			Help:      "Total model training passes.",
		}),
		TrainingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crop_advisor",
			Name:      "training_duration_seconds",
			Help:      "Duration of a model training pass.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crop_advisor",
			Name:      "model_loaded",
			Help:      "1 when a fitted model is available, 0 before the first training pass.",
		}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crop_advisor",
			Name:      "dataset_records",
			Help:      "Number of rows in the loaded reference dataset.",
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_advisor",
			Name:      "weather_requests_total",
			Help:      "OpenWeatherMap requests by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_advisor",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crop_advisor",
			Name:      "weather_api_duration_seconds",
			Help:      "OpenWeatherMap request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crop_advisor",
			Name:      "weather_enabled",
			Help:      "1 when live weather lookups are enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.Recommendations,
		m.PredictionErrors,
		m.TrainingRuns,
		m.TrainingDuration,
		m.ModelLoaded,
		m.DatasetRecords,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.WeatherEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// construct components repeatedly without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Recommendations:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "crop_advisor", Name: "recommendations_total"}, []string{"source", "outcome"}),
		PredictionErrors:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crop_advisor", Name: "prediction_errors_total"}),
		TrainingRuns:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crop_advisor", Name: "training_runs_total"}),
		TrainingDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "crop_advisor", Name: "training_duration_seconds"}),
		ModelLoaded:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "crop_advisor", Name: "model_loaded"}),
		DatasetRecords:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "crop_advisor", Name: "dataset_records"}),
		WeatherRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "crop_advisor", Name: "weather_requests_total"}, []string{"outcome"}),
		WeatherCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "crop_advisor", Name: "weather_cache_total"}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "crop_advisor", Name: "weather_api_duration_seconds"}),
		WeatherEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "crop_advisor", Name: "weather_enabled"}),
	}
}

package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"toolscout/internal/domain"
)

type PrometheusMetrics struct {
	recommendationDuration *prometheus.HistogramVec
	recommendationTokens   *prometheus.CounterVec
	catalogFetchDuration   *prometheus.HistogramVec
	droppedRecommendations *prometheus.CounterVec
	catalogTools           prometheus.Gauge
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		recommendationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolscout_recommendation_duration_seconds",
				Help:    "Duration of recommendation model calls in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider", "model", "status"},
		),
		recommendationTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolscout_recommendation_tokens_total",
				Help: "Total number of tokens consumed by recommendation model calls",
			},
			[]string{"provider", "model"},
		),
		catalogFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolscout_catalog_fetch_duration_seconds",
				Help:    "Duration of catalog fetches in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"status"},
		),
		droppedRecommendations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolscout_dropped_recommendations_total",
				Help: "Total number of model recommendations dropped during validation",
			},
			[]string{"reason"},
		),
		catalogTools: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "toolscout_catalog_tools",
				Help: "Number of usable tools in the most recently fetched catalog",
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveRecommendation(provider string, model string, duration time.Duration, err error) {
	p.recommendationDuration.WithLabelValues(provider, model, statusLabel(err)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveRecommendationTokens(provider string, model string, tokens int) {
	p.recommendationTokens.WithLabelValues(provider, model).Add(float64(tokens))
}

func (p *PrometheusMetrics) ObserveCatalogFetch(duration time.Duration, err error) {
	p.catalogFetchDuration.WithLabelValues(statusLabel(err)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) AddDroppedRecommendations(reason domain.DropReason, count int) {
	p.droppedRecommendations.WithLabelValues(string(reason)).Add(float64(count))
}

func (p *PrometheusMetrics) SetCatalogToolCount(count int) {
	p.catalogTools.Set(float64(count))
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)

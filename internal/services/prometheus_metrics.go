package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	catalogSearchTotal       *prometheus.CounterVec
	providerResolutionTotal  *prometheus.CounterVec
	billingAdvancesTotal     prometheus.Counter
	billingAdvanceCapsTotal  prometheus.Counter
	authenticationEvents     *prometheus.CounterVec
	requestDurationHistogram *prometheus.HistogramVec
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		catalogSearchTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_search_requests_total",
				Help: "Total number of catalog search requests",
			},
			[]string{"result"},
		),
		providerResolutionTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_resolution_total",
				Help: "Total number of provider resolutions by outcome",
			},
			[]string{"outcome"},
		),
		billingAdvancesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_date_advances_total",
				Help: "Total number of billing dates rolled forward",
			},
		),
		billingAdvanceCapsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_date_advance_caps_total",
				Help: "Total number of roll-forward runs that hit the iteration cap",
			},
		),
		authenticationEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
		requestDurationHistogram: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "operation_duration_seconds",
				Help:    "Service operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (m *PrometheusMetrics) RecordCatalogSearch(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.catalogSearchTotal.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) RecordProviderResolution(outcome string) {
	m.providerResolutionTotal.WithLabelValues(outcome).Inc()
}

func (m *PrometheusMetrics) RecordBillingAdvance(changed int, capped int) {
	if changed > 0 {
		m.billingAdvancesTotal.Add(float64(changed))
	}
	if capped > 0 {
		m.billingAdvanceCapsTotal.Add(float64(capped))
	}
}

func (m *PrometheusMetrics) RecordAuthEvent(event string) {
	m.authenticationEvents.WithLabelValues(event).Inc()
}

func (m *PrometheusMetrics) RecordRequestDuration(operation string, duration time.Duration) {
	m.requestDurationHistogram.WithLabelValues(operation).Observe(duration.Seconds())
}

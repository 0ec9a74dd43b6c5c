package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the registrar. Every
// recording method is safe on a nil registry.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Business Metrics
	RegistrationsTotal      *prometheus.CounterVec
	OTPEventsTotal          *prometheus.CounterVec
	PaymentTransitionsTotal *prometheus.CounterVec
	WriteConflictsTotal     *prometheus.CounterVec
	EmailFailuresTotal      *prometheus.CounterVec
}

// NewMetricsRegistry initializes all metrics on reg. Pass
// prometheus.DefaultRegisterer in the server and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "registrar_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "registrar_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		RegistrationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_registrations_total",
				Help: "Registration attempts by category and outcome",
			},
			[]string{"category", "outcome"},
		),
		OTPEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_otp_events_total",
				Help: "OTP challenges issued, verified and rejected by category and result",
			},
			[]string{"category", "result"},
		),
		PaymentTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_payment_transitions_total",
				Help: "Payment request actions by action and resulting status",
			},
			[]string{"action", "status"},
		),
		WriteConflictsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_write_conflicts_total",
				Help: "Optimistic concurrency retries and duplicate identifier retries",
			},
			[]string{"operation"},
		),
		EmailFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_email_failures_total",
				Help: "Best-effort emails that failed to send, by template",
			},
			[]string{"template"},
		),
	}
}

func (m *MetricsRegistry) Registration(category, outcome string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(category, outcome).Inc()
}

func (m *MetricsRegistry) OTPEvent(category, result string) {
	if m == nil {
		return
	}
	m.OTPEventsTotal.WithLabelValues(category, result).Inc()
}

func (m *MetricsRegistry) PaymentTransition(action, status string) {
	if m == nil {
		return
	}
	m.PaymentTransitionsTotal.WithLabelValues(action, status).Inc()
}

func (m *MetricsRegistry) WriteConflict(operation string) {
	if m == nil {
		return
	}
	m.WriteConflictsTotal.WithLabelValues(operation).Inc()
}

func (m *MetricsRegistry) EmailFailure(template string) {
	if m == nil {
		return
	}
	m.EmailFailuresTotal.WithLabelValues(template).Inc()
}

func (m *MetricsRegistry) CacheLookup(pattern string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(pattern).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(pattern).Inc()
}

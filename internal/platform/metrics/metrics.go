package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes recorded by LookupsTotal.
const (
	OutcomeFound            = "found"
	OutcomeNotFound         = "not_found"
	OutcomeMissingParameter = "missing_parameter"
)

// Metrics holds all Prometheus metrics for the application. They are served on
// the separate metrics listener, never on the public API.
type Metrics struct {
	IdentitiesLoaded    prometheus.Gauge
	FieldsDropped       *prometheus.CounterVec
	LookupsTotal        *prometheus.CounterVec
	RateLimitRejections prometheus.Counter
}

// New creates and registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		IdentitiesLoaded: f.NewGauge(prometheus.GaugeOpts{
			Name: "webfinger_identities_loaded",
			Help: "Number of identities in the registry built at startup",
		}),
		FieldsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webfinger_identity_fields_dropped_total",
			Help: "Configuration entries dropped during registry construction, by field",
		}, []string{"field"}),
		LookupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webfinger_lookups_total",
			Help: "WebFinger lookups by outcome",
		}, []string{"outcome"}),
		RateLimitRejections: f.NewCounter(prometheus.CounterOpts{
			Name: "webfinger_ratelimit_rejections_total",
			Help: "Requests rejected by the per-IP rate limiter",
		}),
	}
}

// SetIdentitiesLoaded records the registry size.
func (m *Metrics) SetIdentitiesLoaded(count int) {
	m.IdentitiesLoaded.Set(float64(count))
}

// IncrementFieldsDropped counts one dropped email, alias or link.
func (m *Metrics) IncrementFieldsDropped(field string) {
	m.FieldsDropped.WithLabelValues(field).Inc()
}

// IncrementLookups counts one lookup with its outcome.
func (m *Metrics) IncrementLookups(outcome string) {
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

// IncrementRateLimitRejections counts one 429 response.
func (m *Metrics) IncrementRateLimitRejections() {
	m.RateLimitRejections.Inc()
}

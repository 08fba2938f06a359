package infra

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors shared by the service.
type Metrics struct {
	Requests       *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
	ProviderCalls  *prometheus.CounterVec
	ProviderTime   *prometheus.HistogramVec
	CacheLookups   *prometheus.CounterVec
	Unavailable    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finlookup",
			Name:      "lookups_total",
			Help:      "Lookups served, by outcome.",
		}, []string{"outcome"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "finlookup",
			Name:      "lookup_duration_seconds",
			Help:      "End-to-end lookup latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		ProviderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finlookup",
			Name:      "provider_fetches_total",
			Help:      "Provider fetches, by provider, model and result.",
		}, []string{"provider", "model", "result"}),
		ProviderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "finlookup",
			Name:      "provider_fetch_duration_seconds",
			Help:      "Provider fetch latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"provider", "model"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finlookup",
			Name:      "cache_lookups_total",
			Help:      "Payload cache lookups, by backend and result.",
		}, []string{"backend", "result"}),
		Unavailable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finlookup",
			Name:      "metric_unavailable_total",
			Help:      "Metrics resolved to N/A, by metric name.",
		}, []string{"metric"}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.RequestLatency, m.ProviderCalls, m.ProviderTime, m.CacheLookups, m.Unavailable)
	}
	return m
}

// ObserveCache records a cache hit or miss. Safe on a nil receiver.
func (m *Metrics) ObserveCache(backend string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(backend, result).Inc()
}

// ObserveProvider records one provider fetch. Safe on a nil receiver.
func (m *Metrics) ObserveProvider(provider, model string, seconds float64, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ProviderCalls.WithLabelValues(provider, model, result).Inc()
	m.ProviderTime.WithLabelValues(provider, model).Observe(seconds)
}

// ObserveLookup records a finished lookup. Safe on a nil receiver.
func (m *Metrics) ObserveLookup(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
	m.RequestLatency.WithLabelValues(outcome).Observe(seconds)
}

// ObserveUnavailable counts a metric that resolved to N/A. Safe on a nil receiver.
func (m *Metrics) ObserveUnavailable(metric string) {
	if m == nil {
		return
	}
	m.Unavailable.WithLabelValues(metric).Inc()
}

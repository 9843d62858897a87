package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "xflow"

// Metrics holds the collectors for the quote pipeline
type Metrics struct {
	Requests       *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	RoutesSeen     *prometheus.CounterVec
	RoutesDropped  *prometheus.CounterVec
	ProviderErrors *prometheus.CounterVec
	UpstreamErrors prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_requests_total",
			Help:      "Quote pipeline runs by terminal stage.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_stage_duration_seconds",
			Help:      "Time spent in each quote pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"stage"}),
		RoutesSeen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_seen_total",
			Help:      "Routes returned by the aggregator per provider.",
		}, []string{"provider"}),
		RoutesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_dropped_total",
			Help:      "Routes removed by the filter per provider.",
		}, []string{"provider"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Per-provider errors reported by the aggregator.",
		}, []string{"provider"}),
		UpstreamErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Aggregator calls that returned nothing usable.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Requests, m.StageDuration, m.RoutesSeen, m.RoutesDropped, m.ProviderErrors, m.UpstreamErrors)
	}
	return m
}

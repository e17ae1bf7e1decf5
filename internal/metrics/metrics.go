package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ethanchor"

// Metrics groups the Prometheus collectors for one process. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	AnchorMethod     *prometheus.CounterVec
	Discrepancy      *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Outbound venue requests by venue, operation and outcome",
			},
			[]string{"venue", "op", "outcome"},
		),

		UpstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Outbound venue request latency in seconds",
				Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"venue", "op"},
		),

		AnchorMethod: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "anchor_resolutions_total",
				Help:      "Resolved anchors by pricing method",
			},
			[]string{"endpoint", "method"},
		),

		Discrepancy: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cross_check_level_total",
				Help:      "Cross-venue discrepancy classifications by tier",
			},
			[]string{"level"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Served HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Served HTTP request latency in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 2.5, 3, 5, 10, 30},
			},
			[]string{"route"},
		),
	}

	m.registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamLatency,
		m.AnchorMethod,
		m.Discrepancy,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the private registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// ObserveUpstream records one outbound call. code is zero for transport errors.
func (m *Metrics) ObserveUpstream(venue, op string, code int, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(venue, op, outcome(code, err)).Inc()
	m.UpstreamLatency.WithLabelValues(venue, op).Observe(elapsed.Seconds())
}

// ObserveAnchor counts the method an endpoint resolved with.
func (m *Metrics) ObserveAnchor(endpoint, method string) {
	if m == nil {
		return
	}
	m.AnchorMethod.WithLabelValues(endpoint, method).Inc()
}

// ObserveDiscrepancy counts a cross-check tier.
func (m *Metrics) ObserveDiscrepancy(level string) {
	if m == nil {
		return
	}
	m.Discrepancy.WithLabelValues(level).Inc()
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func outcome(code int, err error) string {
	switch {
	case code == 0 && err != nil:
		return "transport_error"
	case code >= 200 && code < 300 && err == nil:
		return "ok"
	case code >= 200 && code < 300:
		return "decode_error"
	default:
		return strconv.Itoa(code)
	}
}

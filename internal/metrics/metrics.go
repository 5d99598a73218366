package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "billing"

// Sweep names used as label values
const (
	SweepPaymentDateRefresh   = "payment_date_refresh"
	SweepProportionalBackfill = "proportional_backfill"
)

// Sweep results used as label values
const (
	ResultSuccess = "success"
	ResultPartial = "partial"
	ResultFailed  = "failed"
)

// Ticket kinds used as label values
const (
	TicketKindProportional = "proportional"
	TicketKindFullPeriod   = "full_period"
	TicketKindAnniversary  = "anniversary"
)

// Metrics holds every collector the billing engine exports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	TicketsGenerated        *prometheus.CounterVec
	TicketDecisions         *prometheus.CounterVec
	SweepRuns               *prometheus.CounterVec
	SweepSubscriptionErrors *prometheus.CounterVec
	SweepDuration           *prometheus.HistogramVec
	EventsConsumed          *prometheus.CounterVec
	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a registry of their own
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newMetrics(reg)
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,

		TicketsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_generated_total",
			Help:      "Tickets persisted by the proportional ticket calculator",
		}, []string{"kind"}),

		TicketDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_decisions_total",
			Help:      "Outcomes of proportional ticket evaluations",
		}, []string{"decision"}),

		SweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Completed batch sweeps",
		}, []string{"sweep", "result"}),

		SweepSubscriptionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_subscription_failures_total",
			Help:      "Subscriptions a sweep failed to process",
		}, []string{"sweep"}),

		SweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of batch sweeps",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		}, []string{"sweep"}),

		EventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Domain events handled by in-process consumers",
		}, []string{"topic"}),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.TicketsGenerated,
		m.TicketDecisions,
		m.SweepRuns,
		m.SweepSubscriptionErrors,
		m.SweepDuration,
		m.EventsConsumed,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler returns an HTTP handler that serves the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordTicketGenerated(kind string) {
	if m == nil {
		return
	}
	m.TicketsGenerated.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordTicketDecision(decision string) {
	if m == nil {
		return
	}
	m.TicketDecisions.WithLabelValues(decision).Inc()
}

// RecordSweep records one finished sweep, its duration and the subscriptions it failed on
func (m *Metrics) RecordSweep(sweep string, started time.Time, processed, failed int) {
	if m == nil {
		return
	}

	result := ResultSuccess
	switch {
	case failed > 0 && failed >= processed:
		result = ResultFailed
	case failed > 0:
		result = ResultPartial
	}

	m.SweepRuns.WithLabelValues(sweep, result).Inc()
	m.SweepDuration.WithLabelValues(sweep).Observe(time.Since(started).Seconds())
	if failed > 0 {
		m.SweepSubscriptionErrors.WithLabelValues(sweep).Add(float64(failed))
	}
}

func (m *Metrics) RecordEventConsumed(topic string) {
	if m == nil {
		return
	}
	m.EventsConsumed.WithLabelValues(topic).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, path string, statusCode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ronda"

// Metrics holds Prometheus metrics for the ledger and its transports. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	OperationCounter  *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CreditsMoved      *prometheus.CounterVec
	FeedSubscribers   prometheus.Gauge
	RequestCounter    *prometheus.CounterVec
}

// New creates the metrics on their own registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		OperationCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "operations_total",
				Help:      "Total number of ledger operations",
			},
			[]string{"operation", "status"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "operation_duration_seconds",
				Help:      "Ledger operation duration in seconds, retries included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CreditsMoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "credits_moved_total",
				Help:      "Credits deducted from or credited to members",
			},
			[]string{"direction"},
		),
		FeedSubscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "subscribers",
				Help:      "Number of open room feed subscriptions",
			},
		),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
	}

	registry.MustRegister(
		m.OperationCounter,
		m.OperationDuration,
		m.CreditsMoved,
		m.FeedSubscribers,
		m.RequestCounter,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveOperation records one ledger operation
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	m.OperationCounter.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// AddDebited records credits removed from balances
func (m *Metrics) AddDebited(amount int) {
	if m == nil || amount <= 0 {
		return
	}
	m.CreditsMoved.WithLabelValues("debit").Add(float64(amount))
}

// AddCredited records credits added to balances
func (m *Metrics) AddCredited(amount int) {
	if m == nil || amount <= 0 {
		return
	}
	m.CreditsMoved.WithLabelValues("credit").Add(float64(amount))
}

// SubscriberOpened tracks a new feed subscription
func (m *Metrics) SubscriberOpened() {
	if m == nil {
		return
	}
	m.FeedSubscribers.Inc()
}

// SubscriberClosed tracks a finished feed subscription
func (m *Metrics) SubscriberClosed() {
	if m == nil {
		return
	}
	m.FeedSubscribers.Dec()
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.RequestCounter.WithLabelValues(method, route, http.StatusText(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	ExpensesCreated    *prometheus.CounterVec
	ExpenseAmount      prometheus.Histogram
	SettlementsCreated prometheus.Counter
	SettlementAmount   prometheus.Histogram
	LedgerErrors       *prometheus.CounterVec
	LedgerDuration     *prometheus.HistogramVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates metrics registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ExpensesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expenses_created_total",
				Help:      "Total number of expenses recorded",
			},
			[]string{"split_type"},
		),
		ExpenseAmount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "expense_amount",
				Help:      "Expense amounts",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 8),
			},
		),
		SettlementsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settlements_created_total",
				Help:      "Total number of settlements recorded",
			},
		),
		SettlementAmount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "settlement_amount",
				Help:      "Settlement amounts",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 8),
			},
		),
		LedgerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_errors_total",
				Help:      "Total number of failed ledger operations",
			},
			[]string{"operation", "error_type"},
		),
		LedgerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_duration_seconds",
				Help:      "Duration of ledger operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),

		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Total number of authentication attempts",
			},
			[]string{"result"},
		),

		RateLimitHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Total number of rejected rate-limited requests",
			},
		),

		OutboxPublished: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_events_published_total",
				Help:      "Total number of outbox events published",
			},
		),
		OutboxErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_publish_errors_total",
				Help:      "Total number of outbox publish failures",
			},
		),
	}
}

// RecordExpense counts a committed expense.
func (m *Metrics) RecordExpense(splitType string, amount float64) {
	m.ExpensesCreated.WithLabelValues(splitType).Inc()
	m.ExpenseAmount.Observe(amount)
}

// RecordSettlement counts a committed settlement.
func (m *Metrics) RecordSettlement(amount float64) {
	m.SettlementsCreated.Inc()
	m.SettlementAmount.Observe(amount)
}

// RecordLedgerError counts a failed ledger operation.
func (m *Metrics) RecordLedgerError(operation, errorType string) {
	m.LedgerErrors.WithLabelValues(operation, errorType).Inc()
}

// ObserveLedgerDuration records how long a ledger operation took.
func (m *Metrics) ObserveLedgerDuration(operation string, d time.Duration) {
	m.LedgerDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordAuth counts a login attempt by result ("success" or "failure").
func (m *Metrics) RecordAuth(result string) {
	m.AuthAttempts.WithLabelValues(result).Inc()
}

// RecordOutboxPublished counts a delivered outbox event.
func (m *Metrics) RecordOutboxPublished() {
	m.OutboxPublished.Inc()
}

// RecordOutboxError counts a failed outbox delivery.
func (m *Metrics) RecordOutboxError() {
	m.OutboxErrors.Inc()
}

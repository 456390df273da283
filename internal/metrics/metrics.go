// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transaction outcomes, one per TxErrorKind plus success.
const (
	OutcomeCommitted    = "committed"
	OutcomeSourceError  = "source_error"
	OutcomeBeginFailed  = "begin_failed"
	OutcomeCommitFailed = "commit_failed"
	OutcomeUnknown      = "unknown"
)

// Metrics - application collectors.
type Metrics struct {
	// HTTP requests by method, route and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP latency by method and route.
	HTTPRequestDuration *prometheus.HistogramVec

	// Transactions run through WithTransaction by operation and outcome.
	TransactionsTotal *prometheus.CounterVec

	gatherer   prometheus.Gatherer
	registerer prometheus.Registerer
}

// New registers the collectors on a fresh registry that also carries the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	return NewWithRegistry(reg)
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		TransactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_transactions_total",
				Help: "Total number of database transactions by outcome",
			},
			[]string{"operation", "outcome"},
		),
		gatherer:   reg,
		registerer: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TransactionsTotal,
	)

	return m
}

// ObserveTransaction counts the result of a WithTransaction call.
func (m *Metrics) ObserveTransaction(operation string, err error) {
	m.TransactionsTotal.WithLabelValues(operation, TransactionOutcome(err)).Inc()
}

// TransactionOutcome maps a WithTransaction error to its outcome label.
func TransactionOutcome(err error) string {
	if err == nil {
		return OutcomeCommitted
	}

	kind, ok := extconn.KindOf(err)
	if !ok {
		return OutcomeUnknown
	}

	switch kind {
	case extconn.TxErrorSource:
		return OutcomeSourceError
	case extconn.TxErrorBegin:
		return OutcomeBeginFailed
	case extconn.TxErrorCommit:
		return OutcomeCommitFailed
	default:
		return OutcomeUnknown
	}
}

// PoolSnapshot - connection pool occupancy at one point in time.
type PoolSnapshot struct {
	Acquired int32
	Idle     int32
	Total    int32
	Max      int32
}

// PgxPoolStats reads the snapshot from a pgx pool.
func PgxPoolStats(pool *pgxpool.Pool) func() PoolSnapshot {
	return func() PoolSnapshot {
		stat := pool.Stat()
		return PoolSnapshot{
			Acquired: stat.AcquiredConns(),
			Idle:     stat.IdleConns(),
			Total:    stat.TotalConns(),
			Max:      stat.MaxConns(),
		}
	}
}

// RegisterPool exposes the pool occupancy as gauges evaluated on every scrape.
func (m *Metrics) RegisterPool(stats func() PoolSnapshot) {
	gauge := func(name, help string, value func(PoolSnapshot) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: name, Help: help},
			func() float64 { return float64(value(stats())) },
		)
	}

	m.registerer.MustRegister(
		gauge("db_pool_acquired_connections", "Connections currently borrowed from the pool",
			func(s PoolSnapshot) int32 { return s.Acquired }),
		gauge("db_pool_idle_connections", "Idle connections in the pool",
			func(s PoolSnapshot) int32 { return s.Idle }),
		gauge("db_pool_total_connections", "Open connections in the pool",
			func(s PoolSnapshot) int32 { return s.Total }),
		gauge("db_pool_max_connections", "Configured maximum size of the pool",
			func(s PoolSnapshot) int32 { return s.Max }),
	)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}

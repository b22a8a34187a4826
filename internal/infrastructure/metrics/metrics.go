package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Account metrics
	AccountsOpened    prometheus.Counter
	AccountsActivated prometheus.Counter
	AccountsClosed    *prometheus.CounterVec
	AccountOperations *prometheus.CounterVec

	// Ledger metrics
	TransactionsPosted   *prometheus.CounterVec
	TransactionsReversed *prometheus.CounterVec
	TransactionAmount    prometheus.Histogram

	// Interest metrics
	InterestPostings     prometheus.Counter
	InterestPostedAmount prometheus.Histogram
	RecomputeReplays     prometheus.Counter

	// Charge metrics
	ChargesApplied   prometheus.Counter
	ChargesWaived    prometheus.Counter
	ChargesCollected prometheus.Histogram

	// Transfer metrics
	TransfersInitiated prometheus.Counter
	TransfersAccepted  prometheus.Counter
	TransfersReverted  *prometheus.CounterVec

	// Batch job metrics
	BatchRuns     *prometheus.CounterVec
	BatchDuration *prometheus.HistogramVec
	BatchFailures *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Account metrics
		AccountsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "godeposit_accounts_opened_total",
			Help: "Total number of account applications submitted",
		}),
		AccountsActivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "godeposit_accounts_activated_total",
			Help: "Total number of accounts activated",
		}),
		AccountsClosed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_accounts_closed_total",
				Help: "Total number of accounts closed by closure type",
			},
			[]string{"closure"},
		),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		// Ledger metrics
		TransactionsPosted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_transactions_posted_total",
				Help: "Total ledger transactions posted by type",
			},
			[]string{"type"},
		),
		TransactionsReversed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_transactions_reversed_total",
				Help: "Total ledger transactions reversed by type",
			},
			[]string{"type"},
		),
		TransactionAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "godeposit_transaction_amount",
			Help:    "Transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		// Interest metrics
		InterestPostings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "godeposit_interest_postings_total",
			Help: "Total interest posting transactions materialized",
		}),
		InterestPostedAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "godeposit_interest_posted_amount",
			Help:    "Interest amounts posted per period",
			Buckets: []float64{0.01, 0.1, 1, 10, 100, 1000, 10000},
		}),
		RecomputeReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "godeposit_recompute_replays_total",
			Help: "Total ledger replays triggered by back-dated changes",
		}),

		// Charge metrics
		ChargesApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "godeposit_charges_applied_total",
			Help: "Total charges attached to accounts",
		}),
		ChargesWaived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "godeposit_charges_waived_total",
			Help: "Total charges waived",
		}),
		ChargesCollected: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "godeposit_charges_collected_amount",
			Help:    "Charge amounts collected",
			Buckets: []float64{0.1, 1, 5, 10, 50, 100, 1000},
		}),

		// Transfer metrics
		TransfersInitiated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "godeposit_transfers_initiated_total",
			Help: "Total account transfers initiated",
		}),
		TransfersAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "godeposit_transfers_accepted_total",
			Help: "Total account transfers accepted",
		}),
		TransfersReverted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_transfers_reverted_total",
				Help: "Total account transfers rejected or withdrawn",
			},
			[]string{"outcome"},
		),

		// Batch job metrics
		BatchRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_batch_runs_total",
				Help: "Total batch job runs by job and result",
			},
			[]string{"job", "result"},
		),
		BatchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "godeposit_batch_duration_seconds",
				Help:    "Batch job run duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job"},
		),
		BatchFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_batch_failures_total",
				Help: "Total per-account failures inside batch runs",
			},
			[]string{"job"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "godeposit_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "godeposit_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "godeposit_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godeposit_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),
	}
}

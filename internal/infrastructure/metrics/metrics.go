package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsSubmitted prometheus.Counter
	TransactionsCompleted prometheus.Counter
	TransactionsFailed    prometheus.Counter
	TransactionsReplayed  prometheus.Counter
	TransactionErrors     *prometheus.CounterVec
	TransactionDuration   prometheus.Histogram
	TransactionAmount     prometheus.Histogram
	PostingRetries        prometheus.Counter

	// Ledger metrics
	BalanceQueries     prometheus.Counter
	BalanceCacheHits   prometheus.Counter
	BalanceCacheMisses prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	EventsPublished  prometheus.Counter
	EventPublishErrs prometheus.Counter

	// Notification metrics
	NotificationsSent    prometheus.Counter
	NotificationsDropped prometheus.Counter

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		TransactionsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_transactions_submitted_total",
			Help: "Total number of transactions submitted",
		}),
		TransactionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_transactions_completed_total",
			Help: "Total number of transactions completed",
		}),
		TransactionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_transactions_failed_total",
			Help: "Total number of transactions that failed during posting",
		}),
		TransactionsReplayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_transactions_replayed_total",
			Help: "Total number of idempotent replays served",
		}),
		TransactionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneyledger_transaction_errors_total",
				Help: "Total number of rejected transactions by reason",
			},
			[]string{"reason"},
		),
		TransactionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "moneyledger_transaction_duration_seconds",
			Help:    "Duration of transaction submissions",
			Buckets: prometheus.DefBuckets,
		}),
		TransactionAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "moneyledger_transaction_amount",
			Help:    "Transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		PostingRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_posting_retries_total",
			Help: "Total number of posting group retries on lock conflicts",
		}),

		BalanceQueries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_balance_queries_total",
			Help: "Total number of balance queries",
		}),
		BalanceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_balance_cache_hits_total",
			Help: "Total number of balance cache hits",
		}),
		BalanceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_balance_cache_misses_total",
			Help: "Total number of balance cache misses",
		}),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneyledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moneyledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_events_published_total",
			Help: "Total number of outbox events published",
		}),
		EventPublishErrs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_event_publish_errors_total",
			Help: "Total number of outbox publish failures",
		}),

		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_notifications_sent_total",
			Help: "Total number of notification emails sent",
		}),
		NotificationsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moneyledger_notifications_dropped_total",
			Help: "Total number of notifications dropped on a full queue",
		}),

		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneyledger_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
	}
}

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accounts_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Transfer metrics
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_transfers_total",
			Help: "Total number of transfer attempts",
		},
		[]string{"outcome"}, // completed, overdraft, not_found, same_account, invalid_amount
	)

	TransferAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accounts_transfer_amount",
			Help:    "Transfer amount distribution",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"outcome"},
	)

	TransferProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "accounts_transfer_processing_duration_seconds",
			Help:    "Time to process a transfer end to end",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	LockWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "accounts_transfer_lock_wait_seconds",
			Help:    "Time spent waiting to acquire both account locks",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// Journal metrics
	JournalWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "accounts_journal_write_duration_seconds",
			Help:    "Time to append a record to the transfer journal",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// Notification metrics
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_notifications_published_total",
			Help: "Total number of transfer notifications published",
		},
		[]string{"subject"},
	)

	NotificationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_notifications_failed_total",
			Help: "Total number of notification publish failures",
		},
	)

	// Account metrics
	AccountsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_created_total",
			Help: "Total number of account creation attempts",
		},
		[]string{"outcome"}, // created, duplicate, invalid
	)

	AccountBalanceGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "accounts_account_balance",
			Help: "Current account balance",
		},
		[]string{"account"},
	)

	TotalBalanceGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "accounts_total_balance",
			Help: "Total balance across all accounts",
		},
	)

	AccountCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "accounts_account_count",
			Help: "Total number of accounts",
		},
	)
)

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation status labels
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// OperationsTotal counts gateway operations by name and status
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_operations_total",
			Help: "Total number of gateway operations",
		},
		[]string{"operation", "status"},
	)

	// OperationDuration tracks gateway operation processing time
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_operation_duration_seconds",
			Help:    "Gateway operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// DepositsTotal counts deposits by token class and status
	DepositsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_deposits_total",
			Help: "Total number of deposits",
		},
		[]string{"token_type", "status"},
	)

	// DepositAmount tracks the amount of tokens deposited
	DepositAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_deposit_amount",
			Help:    "Amount of tokens deposited in base units",
			Buckets: prometheus.ExponentialBuckets(1, 10, 19),
		},
		[]string{"token_type"},
	)

	// ErrorsTotal counts failed operations by error category
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_errors_total",
			Help: "Total number of errors",
		},
		[]string{"operation", "category"},
	)

	// TransactionsSent counts settlement transactions sent to a chain
	TransactionsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_transactions_sent_total",
			Help: "Total number of settlement transactions sent",
		},
		[]string{"instruction", "status"},
	)
)

// ObserveOperation records the outcome and duration of one operation.
func ObserveOperation(operation string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

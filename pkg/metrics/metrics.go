// Package metrics provides Prometheus metrics for the compliance service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "varuna"

var (
	// Settlement operation metrics.
	calculationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compliance_calculations_total",
		Help:      "Compliance balance calculations performed.",
	})
	bankOperationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bank_operations_total",
		Help:      "Successful surplus banking operations.",
	})
	applyOperationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "apply_operations_total",
		Help:      "Successful applications of banked surplus.",
	})
	poolAllocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pool_allocations_total",
		Help:      "Successful pool allocations.",
	})
	poolMembersAllocated = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pool_members_allocated",
		Help:      "Member count per successful pool allocation.",
		Buckets:   []float64{2, 3, 5, 10, 20, 50},
	})
	operationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_failures_total",
		Help:      "Rejected settlement operations by operation name.",
	}, []string{"operation"})
	penaltyEUR = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "penalty_eur",
		Help:      "Computed penalties in EUR.",
		Buckets:   prometheus.ExponentialBuckets(1_000, 10, 8),
	})

	// HTTP metrics.
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"endpoint", "method"})
)

// RecordCalculation counts one compliance calculation.
func RecordCalculation() { calculationsTotal.Inc() }

// RecordBankOperation counts one successful banking operation.
func RecordBankOperation() { bankOperationsTotal.Inc() }

// RecordApplyOperation counts one successful banked-surplus application.
func RecordApplyOperation() { applyOperationsTotal.Inc() }

// RecordPoolAllocation counts one successful pool allocation of n members.
func RecordPoolAllocation(members int) {
	poolAllocationsTotal.Inc()
	poolMembersAllocated.Observe(float64(members))
}

// RecordOperationFailure counts one rejected operation.
func RecordOperationFailure(operation string) {
	operationFailuresTotal.WithLabelValues(operation).Inc()
}

// RecordPenalty observes a computed penalty in EUR.
func RecordPenalty(eur float64) { penaltyEUR.Observe(eur) }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	httpRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request latency.
func RecordHTTPRequestDuration(endpoint, method string, durationMs float64) {
	httpRequestDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}

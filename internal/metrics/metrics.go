package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeeCalculationsTotal counts fee calculations by fee type and outcome
	FeeCalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisor_crm",
			Subsystem: "fees",
			Name:      "calculations_total",
			Help:      "Total number of fee calculations",
		},
		[]string{"fee_type", "status"},
	)

	// BilledAmount observes invoice amounts per fee type
	BilledAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "advisor_crm",
			Subsystem: "billing",
			Name:      "invoice_amount",
			Help:      "Invoice amounts produced by billing runs",
			Buckets:   []float64{100, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
		},
		[]string{"fee_type"},
	)

	// BillingRunsTotal counts billing runs by outcome
	BillingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisor_crm",
			Subsystem: "billing",
			Name:      "runs_total",
			Help:      "Total number of billing runs",
		},
		[]string{"status"},
	)

	// CustodianBalancesImported counts balances recorded from custodian files
	CustodianBalancesImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisor_crm",
			Subsystem: "custodian",
			Name:      "balances_imported_total",
			Help:      "Total number of balances imported from custodian position files",
		},
		[]string{"custodian"},
	)

	// HTTPRequestDuration observes API latency by route template
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "advisor_crm",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)
)

// Status returns the label value for an operation outcome
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"uppf-claims/internal/platform/logger"
)

const (
	metricPrefix = "uppf_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	unitTotal   *prometheus.CounterVec
	unitLatency *prometheus.HistogramVec

	batchTotal   *prometheus.CounterVec
	batchLatency prometheus.Histogram

	reconciliationStatus *prometheus.CounterVec
	claimDisposition     *prometheus.CounterVec
	claimTransitions     *prometheus.CounterVec
	liveViolations       *prometheus.CounterVec

	settlementTotal     *prometheus.CounterVec
	settlementNetAmount prometheus.Counter
	paymentReconciled   *prometheus.CounterVec

	configReloads *prometheus.CounterVec
)

// Init registers the engine metrics and DB-backed gauges.
func Init(db *sql.DB, log *logger.Logger) {
	registerOnce.Do(func() {
		unitTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "claim_units_total",
				Help: "Consignments processed into claims by result",
			},
			[]string{"result"},
		)
		unitLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "claim_unit_latency_seconds",
				Help:    "Latency of one consignment through trace, validation, reconciliation and calculation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		batchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "claim_batch_items_total",
				Help: "Batch items by result",
			},
			[]string{"result"},
		)
		batchLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "claim_batch_latency_seconds",
				Help:    "Batch run latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		)

		reconciliationStatus = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconciliation_results_total",
				Help: "Three-way reconciliation results by status",
			},
			[]string{"status"},
		)
		claimDisposition = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "claim_dispositions_total",
				Help: "Claims created by disposition",
			},
			[]string{"disposition"},
		)
		claimTransitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "claim_transitions_total",
				Help: "Claim status transitions by target status and result",
			},
			[]string{"to", "result"},
		)
		liveViolations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "live_violations_total",
				Help: "Live trace violations by kind",
			},
			[]string{"kind"},
		)

		settlementTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlements_total",
				Help: "Settlement runs by result",
			},
			[]string{"result"},
		)
		settlementNetAmount = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_net_amount_total",
				Help: "Sum of net payable across created settlements",
			},
		)
		paymentReconciled = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_reconciliations_total",
				Help: "Payment reconciliations by resulting status",
			},
			[]string{"status"},
		)

		configReloads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "config_reloads_total",
				Help: "Policy file reloads by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			unitTotal,
			unitLatency,
			batchTotal,
			batchLatency,
			reconciliationStatus,
			claimDisposition,
			claimTransitions,
			liveViolations,
			settlementTotal,
			settlementNetAmount,
			paymentReconciled,
			configReloads,
		)

		if db != nil {
			registerDBMetrics(db, log)
		}
	})
}

// ObserveUnit records one pipeline unit.
func ObserveUnit(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if unitTotal != nil {
		unitTotal.WithLabelValues(result).Inc()
	}
	if unitLatency != nil {
		unitLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveBatch records a finished batch run.
func ObserveBatch(succeeded, failed int, duration time.Duration) {
	if batchTotal != nil {
		batchTotal.WithLabelValues(resultSuccess).Add(float64(succeeded))
		batchTotal.WithLabelValues(resultError).Add(float64(failed))
	}
	if batchLatency != nil {
		batchLatency.Observe(duration.Seconds())
	}
}

// IncReconciliation counts a reconciliation result.
func IncReconciliation(status string) {
	if status == "" {
		status = "unknown"
	}
	if reconciliationStatus != nil {
		reconciliationStatus.WithLabelValues(status).Inc()
	}
}

// IncClaimDisposition counts a newly created claim.
func IncClaimDisposition(disposition string) {
	if disposition == "" {
		disposition = "unknown"
	}
	if claimDisposition != nil {
		claimDisposition.WithLabelValues(disposition).Inc()
	}
}

// IncClaimTransition counts an attempted status transition.
func IncClaimTransition(to, result string) {
	if result == "" {
		result = resultSuccess
	}
	if claimTransitions != nil {
		claimTransitions.WithLabelValues(to, result).Inc()
	}
}

// IncLiveViolation counts a live trace violation.
func IncLiveViolation(kind string) {
	if liveViolations != nil {
		liveViolations.WithLabelValues(kind).Inc()
	}
}

// ObserveSettlement records a settlement run and its net payable.
func ObserveSettlement(result string, net float64) {
	if result == "" {
		result = resultSuccess
	}
	if settlementTotal != nil {
		settlementTotal.WithLabelValues(result).Inc()
	}
	if settlementNetAmount != nil && result == resultSuccess && net > 0 {
		settlementNetAmount.Add(net)
	}
}

// IncPaymentReconciliation counts a payment reconciliation outcome.
func IncPaymentReconciliation(status string) {
	if paymentReconciled != nil {
		paymentReconciled.WithLabelValues(status).Inc()
	}
}

// IncConfigReload counts a policy reload attempt.
func IncConfigReload(result string) {
	if configReloads != nil {
		configReloads.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)

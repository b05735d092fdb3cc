package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"

	"uppf-claims/internal/platform/logger"
)

func registerDBMetrics(db *sql.DB, log *logger.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "event_outbox_pending",
			Help: "Pending outbox records",
		},
		func() float64 {
			return queryCount(db, log, "SELECT COUNT(*) FROM event_outbox WHERE status = 'pending'")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "claims_awaiting_review",
			Help: "Claims submitted or under review",
		},
		func() float64 {
			return queryCount(db, log, "SELECT COUNT(*) FROM uppf_claims WHERE status IN ('submitted', 'under_review')")
		},
	))
}

func queryCount(db *sql.DB, log *logger.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		logger.OrNop(log).Warn("metrics query failed", "error", err)
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}

package claims

import (
	"fmt"
	"time"
)

// FormatClaimNumber renders UPPF-YYYYMMDD-NNNNNN.
func FormatClaimNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("UPPF-%s-%06d", day.UTC().Format("20060102"), seq)
}

// FormatSubmissionRef renders the reference stamped on a submitted window.
func FormatSubmissionRef(windowID string, at time.Time) string {
	return fmt.Sprintf("SUB-%s-%s", windowID, at.UTC().Format("20060102150405"))
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var delivered = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func run(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	t.Setenv("UPPF_CONFIG", "")
	t.Setenv("DATABASE_URL", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return nil, err
	}
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded), out.String())
	return decoded, nil
}

func writeFile(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func samples(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{
			"latitude":  5.60 + float64(i)*0.009,
			"longitude": -0.19,
			"timestamp": delivered.Add(time.Duration(i-n) * time.Minute).Format(time.RFC3339),
		}
	}
	return out
}

func volumes() map[string]any {
	return map[string]any{
		"depot":       map[string]any{"party": "depot", "litres": 5000, "temperature_c": 25, "document_ref": "DLR-001"},
		"transporter": map[string]any{"party": "transporter", "litres": 4985, "temperature_c": 27, "document_ref": "WB-001"},
		"station":     map[string]any{"party": "station", "litres": 4980, "temperature_c": 28, "document_ref": "SRR-001"},
	}
}

func TestAnalyzeTrace(t *testing.T) {
	path := writeFile(t, map[string]any{"samples": samples(12)})

	got, err := run(t, "analyze-trace", "--input", path)
	require.NoError(t, err)
	assert.Equal(t, true, got["quality_passed"])
	metrics := got["metrics"].(map[string]any)
	assert.InDelta(t, 11.0, metrics["total_km"], 0.1)
}

func TestAnalyzeTraceValidatesWithPoint(t *testing.T) {
	s := samples(12)
	path := writeFile(t, map[string]any{
		"samples":       s,
		"planned_route": []map[string]any{{"latitude": 5.60, "longitude": -0.19}, {"latitude": 5.699, "longitude": -0.19}},
		"point":         map[string]any{"threshold_km": 5, "active": true},
	})

	got, err := run(t, "analyze-trace", "--input", path)
	require.NoError(t, err)
	assert.Equal(t, true, got["is_valid"])
	assert.InDelta(t, 6.0, got["km_beyond_equalisation"], 0.1)
}

func TestReconcile(t *testing.T) {
	in := volumes()
	in["consignment_id"] = "CONS-001"
	got, err := run(t, "reconcile", "--input", writeFile(t, in))
	require.NoError(t, err)
	assert.Equal(t, "matched", got["status"])
}

func TestCalculate(t *testing.T) {
	path := writeFile(t, map[string]any{
		"consignment": map[string]any{
			"id":           "CONS-001",
			"vehicle_id":   "GT-1234-20",
			"route_id":     "ACC-KSI",
			"window_id":    "2026-03-A",
			"product":      "PMS",
			"delivered_at": delivered.Format(time.RFC3339),
			"planned_route": []map[string]any{
				{"latitude": 5.60, "longitude": -0.19},
				{"latitude": 5.699, "longitude": -0.19},
			},
		},
		"volumes": volumes(),
		"evidence": map[string]any{
			"waybill": true, "gps_trace": true, "goods_received_note": true,
			"tank_dips": true, "weighbridge": true, "seal_verification": true,
		},
		"samples": samples(12),
		"point": map[string]any{
			"threshold_km":   5,
			"active":         true,
			"effective_from": delivered.Add(-30 * 24 * time.Hour).Format(time.RFC3339),
		},
	})

	got, err := run(t, "calculate", "--input", path)
	require.NoError(t, err)
	claim := got["claim"].(map[string]any)
	assert.Equal(t, "UPPF-20260302-000001", claim["claim_number"])
	assert.Equal(t, "CONS-001", claim["consignment_id"])
	assert.Equal(t, "matched", got["reconciliation"].(map[string]any)["status"])
}

func TestCalculateUnknownRouteFails(t *testing.T) {
	path := writeFile(t, map[string]any{
		"consignment": map[string]any{"id": "CONS-9", "vehicle_id": "V", "route_id": "R", "product": "PMS"},
		"volumes":     volumes(),
	})
	_, err := run(t, "calculate", "--input", path)
	assert.Error(t, err)
}

func TestTrack(t *testing.T) {
	s := samples(4)
	s = append(s, s[1])
	path := writeFile(t, map[string]any{"consignment_id": "CONS-1", "vehicle_id": "V-1", "samples": s})

	got, err := run(t, "track", "--input", path)
	require.NoError(t, err)
	rejected := got["rejected"].([]any)
	require.Len(t, rejected, 1)
	assert.EqualValues(t, 4, rejected[0].(map[string]any)["index"])
	tr := got["trace"].(map[string]any)
	assert.Equal(t, true, tr["completed"])
	assert.Len(t, tr["samples"], 4)
}

func TestSettle(t *testing.T) {
	deadline := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	claim := func(id, amount string) map[string]any {
		return map[string]any{
			"id":                   id,
			"consignment_id":       "CONS-" + id,
			"window_id":            "2026-03",
			"status":               "approved",
			"total_amount":         amount,
			"evidence_score":       90,
			"three_way_reconciled": true,
			"submitted_at":         deadline.Add(-24 * time.Hour).Format(time.RFC3339),
		}
	}
	path := writeFile(t, map[string]any{
		"window": map[string]any{"id": "2026-03", "submission_deadline": deadline.Format(time.RFC3339)},
		"claims": []map[string]any{claim("a", "1000"), claim("b", "2000")},
	})

	got, err := run(t, "settle", "--input", path, "--at", deadline.Add(48*time.Hour).Format(time.RFC3339))
	require.NoError(t, err)
	st := got["settlement"].(map[string]any)
	assert.Equal(t, "UPPF-SETTLEMENT-202604-0001", st["reference"])
	assert.Equal(t, "pending", st["status"])
	assert.Empty(t, got["rejections"])

	got, err = run(t, "settle", "--input", path, "--paid", "0", "--payment-ref", "PAY-1")
	require.NoError(t, err)
	st = got["settlement"].(map[string]any)
	assert.Equal(t, "variance_detected", st["status"])
	assert.Equal(t, "PAY-1", st["payment_ref"])
}

func TestDatabaseCommandsNeedURL(t *testing.T) {
	_, err := run(t, "submit-window", "--window", "2026-03")
	assert.ErrorContains(t, err, "DATABASE_URL not set")
	_, err = run(t, "settle-window", "--window", "2026-03", "--deadline", "2026-04-10T00:00:00Z")
	assert.ErrorContains(t, err, "DATABASE_URL not set")
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claims "uppf-claims/internal/claims/domain"
	"uppf-claims/internal/config"
	route "uppf-claims/internal/route/domain"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uppf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "02:00", cfg.Schedule.DailyAt)
	assert.Equal(t, 2000.0, cfg.Policy.Route.CorridorMeters)
	assert.Equal(t, 0.02, cfg.Policy.Settlement.ProcessingFeeRate)
	assert.Len(t, cfg.Policy.Tariffs.BaseRates, 4)
}

func TestLoadFileOverridesPolicy(t *testing.T) {
	path := writeFile(t, `
schedule:
  daily_at: "03:30"
  workers: 4
  interval: 15m
policy:
  reconciliation:
    base_tolerance_pct: 3
  claims:
    disposition:
      min_evidence: 50
  tariffs:
    base_rates:
      PMS: "0.0015"
  tolerance:
    route_complexity:
      R-ACC-TAM: 1.5
    product_volatility:
      LPG: 1.2
  routes:
    R-ACC-TAM:
      corridor_meters: 3000
`)
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "03:30", cfg.Schedule.DailyAt)
	assert.Equal(t, 4, cfg.Schedule.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Schedule.Interval)
	assert.Equal(t, 3.0, cfg.Policy.Reconciliation.BaseTolerancePct)
	assert.Equal(t, 0.00065, cfg.Policy.Reconciliation.ExpansionCoefficient)
	assert.Equal(t, 50.0, cfg.Policy.Claims.Disposition.MinEvidence)
	assert.Equal(t, 95.0, cfg.Policy.Claims.Disposition.AutoSubmitGPS)

	rate, err := cfg.Policy.Tariffs.Rate(claims.ProductPMS, route.RoadHighway)
	require.NoError(t, err)
	assert.Equal(t, "0.0015", rate.String())

	assert.Equal(t, 3000.0, cfg.Policy.RoutePolicy("R-ACC-TAM").CorridorMeters)
	assert.Equal(t, 2000.0, cfg.Policy.RoutePolicy("R-OTHER").CorridorMeters)

	f := cfg.Policy.ToleranceFactors("R-ACC-TAM", claims.ProductLPG)
	assert.InDelta(t, 3.6, f.Tolerance(2), 1e-9)
	assert.InDelta(t, 2.0, cfg.Policy.ToleranceFactors("R-OTHER", claims.ProductPMS).Tolerance(2), 1e-9)
}

func TestLoadFileEnvFallbacks(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://uppf@localhost/uppf")
	t.Setenv("UPPF_WORKERS", "3")
	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://uppf@localhost/uppf", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.Schedule.Workers)
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	_, err := config.LoadFile(writeFile(t, "schedule:\n  daily_at: \"25:99\"\n"))
	assert.Error(t, err)

	_, err = config.LoadFile(writeFile(t, "policy: [\n"))
	assert.Error(t, err)

	_, err = config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWatcherReloadKeepsPreviousOnError(t *testing.T) {
	path := writeFile(t, "policy:\n  settlement:\n    processing_fee_rate: 0.03\n")
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	store := config.NewStore(cfg)

	w, err := config.NewWatcher(path, store, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("policy:\n  settlement:\n    processing_fee_rate: 0.025\n"), 0o600))
	w.Reload()
	assert.Equal(t, 0.025, store.Policy().Settlement.ProcessingFeeRate)

	require.NoError(t, os.WriteFile(path, []byte("policy: [\n"), 0o600))
	w.Reload()
	assert.Equal(t, 0.025, store.Policy().Settlement.ProcessingFeeRate)
}

func TestNewWatcherValidates(t *testing.T) {
	_, err := config.NewWatcher("", config.NewStore(config.Default()), nil)
	assert.Error(t, err)
	_, err = config.NewWatcher("x.yaml", nil, nil)
	assert.Error(t, err)
}

package integration_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claims "uppf-claims/internal/claims/domain"
	claimspg "uppf-claims/internal/claims/infrastructure/postgres"
	settlement "uppf-claims/internal/settlement/domain"
	settlementpg "uppf-claims/internal/settlement/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, applyMigrations(db))
	return db
}

func TestPostgresClaimAndSettlementStores(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	_, _ = db.ExecContext(ctx, "DELETE FROM uppf_claims WHERE window_id = 'pg-window'")
	_, _ = db.ExecContext(ctx, "DELETE FROM uppf_settlements WHERE window_id = 'pg-window'")

	claimRepo := claimspg.NewClaimRepository(db)
	now := time.Now().UTC().Truncate(time.Second)
	c := approvedClaim("pg-1", "1234.56", now)
	c.WindowID = "pg-window"
	c.CreatedAt, c.UpdatedAt = now, now
	require.NoError(t, claimRepo.Create(ctx, c))
	assert.ErrorIs(t, claimRepo.Create(ctx, c), claims.ErrClaimExists)

	got, err := claimRepo.FindByConsignment(ctx, c.ConsignmentID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(c.TotalAmount))

	require.NoError(t, got.Transition(claims.StatusSettled, now, "PG"))
	require.NoError(t, claimRepo.Update(ctx, got, claims.StatusApproved))
	assert.ErrorIs(t, claimRepo.Update(ctx, got, claims.StatusApproved), claims.ErrStaleClaim)

	repo := settlementpg.NewSettlementRepository(db)
	st := &settlement.Settlement{
		ID:        "pg-settlement-" + now.Format("150405"),
		Reference: "UPPF-SETTLEMENT-PG-" + now.Format("150405"),
		WindowID:  "pg-window",
		Status:    settlement.StatusPending,
		NetAmount: decimal.RequireFromString("1200.00"),
		CreatedAt: now,
	}
	require.NoError(t, repo.Save(ctx, st))
	assert.ErrorIs(t, repo.Save(ctx, st), settlement.ErrSettlementExists)

	require.NoError(t, st.ReconcilePayment(decimal.RequireFromString("1200.00"), now, settlement.DefaultPolicy()))
	require.NoError(t, repo.Update(ctx, st))
	assert.ErrorIs(t, repo.Update(ctx, st), settlement.ErrAlreadyReconciled)

	loaded, err := repo.FindByWindow(ctx, "pg-window")
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusReconciled, loaded.Status)
	assert.True(t, loaded.Reconciled())
}

func applyMigrations(db *sql.DB) error {
	paths, err := filepath.Glob(filepath.Join(projectRoot(), "migrations", "*.sql"))
	if err != nil {
		return err
	}
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(content)); err != nil {
			return err
		}
	}
	return nil
}

func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Clean(filepath.Join(dir, "..", "..", ".."))
}

package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestRecordClick_InsertsOrIncrements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO affiliate_metrics_daily").
		WithArgs("capital-trust", "2026-08-30").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db)
	err = store.RecordClick(context.Background(), "capital-trust", day("2026-08-30"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordConversion_AddsPayout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO affiliate_metrics_daily").
		WithArgs("capital-trust", "2026-08-30", "42.50").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db)
	err = store.RecordConversion(context.Background(), "capital-trust", day("2026-08-30"),
		decimal.RequireFromString("42.50"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAffiliateMetrics_NoRowIsZeroed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT clicks, conversions, revenue").
		WithArgs("capital-trust", "2026-08-30").
		WillReturnRows(sqlmock.NewRows([]string{"clicks", "conversions", "revenue"}))

	store := NewStore(db)
	snap, err := store.GetAffiliateMetrics(context.Background(), "capital-trust", day("2026-08-30"))
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Clicks)
	assert.True(t, snap.Revenue.IsZero())
}

func TestGetAffiliateMetrics_StoreErrorIsUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT clicks, conversions, revenue").
		WillReturnError(errors.New("connection refused"))

	store := NewStore(db)
	_, err = store.GetAffiliateMetrics(context.Background(), "capital-trust", day("2026-08-30"))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetRollingMetrics_DerivesEPCAndApprovalRate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"clicks", "conversions", "revenue"}).
		AddRow(100, 50, "2000.00")
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("capital-trust", "2026-08-24", "2026-08-30").
		WillReturnRows(rows)

	store := NewStore(db)
	w, err := store.GetRollingMetrics(context.Background(), "capital-trust",
		day("2026-08-24"), day("2026-08-30"))
	require.NoError(t, err)

	assert.Equal(t, 100, w.Clicks)
	assert.InDelta(t, 20.0, w.EPC, 1e-9)
	assert.InDelta(t, 0.5, w.ApprovalRate, 1e-9)
	assert.True(t, w.HasData())
}

func TestGetDailyClicksSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"issuer_id", "clicks"}).
		AddRow("capital-trust", 120).
		AddRow("meridian-bank", 80)
	mock.ExpectQuery("SELECT issuer_id, clicks").
		WithArgs("2026-08-30").
		WillReturnRows(rows)

	store := NewStore(db)
	sum, err := store.GetDailyClicksSummary(context.Background(), day("2026-08-30"))
	require.NoError(t, err)

	assert.Equal(t, 200, sum.Total)
	assert.Equal(t, 120, sum.ByIssuer["capital-trust"])
}

func TestPerformanceStore_GetUnknownIssuerDefaultsToTierB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT tier, avg_epc").
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows([]string{"tier", "avg_epc", "avg_approval_rate", "total_clicks", "last_evaluated"}))

	store := NewPerformanceStore(db)
	p, err := store.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, "B", string(p.Tier))
}

func TestPageHealthStore_GetMissingRowIsDemoted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT issuer_id, baseline_epc").
		WithArgs("visa-platinum-vs-gold").
		WillReturnRows(sqlmock.NewRows([]string{"issuer_id", "baseline_epc", "last_epc", "status", "recovery_days", "updated_at"}))

	store := NewPageHealthStore(db)
	h, err := store.Get(context.Background(), "visa-platinum-vs-gold")
	require.NoError(t, err)
	assert.Equal(t, "demoted", string(h.Status))
	assert.Nil(t, h.BaselineEPC)
}

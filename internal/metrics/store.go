// Package metrics is the store adapter for daily affiliate aggregates.
// Click and conversion boundaries write per-(issuer, day) rows; the tier
// and page-health engines read rolling windows. Reads that hit a store
// error return ErrUnavailable so callers can fail closed.
package metrics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brightlane/cardrank/internal/domain"
)

// ErrUnavailable is returned when the metrics store cannot serve a read.
// Callers treat it as "no data" and fail closed.
var ErrUnavailable = errors.New("metrics store unavailable")

// Store persists daily affiliate aggregates in Postgres.
type Store struct{ db *sql.DB }

// NewStore creates a Postgres-backed metrics store.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// RecordClick increments the click counter for (issuer, day), creating the
// row if needed. Idempotence is per-call, not per-click: re-running a
// whole evaluation cycle never touches these rows.
func (s *Store) RecordClick(ctx context.Context, issuerID string, day time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO affiliate_metrics_daily (issuer_id, day, clicks, conversions, revenue)
		VALUES ($1, $2, 1, 0, 0)
		ON CONFLICT (issuer_id, day) DO UPDATE SET clicks = affiliate_metrics_daily.clicks + 1
	`, issuerID, day.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("record click: %w", err)
	}
	return nil
}

// RecordConversion increments conversions and adds the payout for
// (issuer, day).
func (s *Store) RecordConversion(ctx context.Context, issuerID string, day time.Time, payout decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO affiliate_metrics_daily (issuer_id, day, clicks, conversions, revenue)
		VALUES ($1, $2, 0, 1, $3)
		ON CONFLICT (issuer_id, day) DO UPDATE SET
			conversions = affiliate_metrics_daily.conversions + 1,
			revenue = affiliate_metrics_daily.revenue + EXCLUDED.revenue
	`, issuerID, day.Format("2006-01-02"), payout.String())
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	return nil
}

// GetAffiliateMetrics returns the single-day snapshot for an issuer.
// A missing row is not an error: it returns a zeroed snapshot.
func (s *Store) GetAffiliateMetrics(ctx context.Context, issuerID string, day time.Time) (domain.MetricsSnapshot, error) {
	snap := domain.MetricsSnapshot{IssuerID: issuerID, Day: day, Revenue: decimal.Zero}

	var revenue string
	err := s.db.QueryRowContext(ctx, `
		SELECT clicks, conversions, revenue::text
		FROM affiliate_metrics_daily
		WHERE issuer_id = $1 AND day = $2
	`, issuerID, day.Format("2006-01-02")).Scan(&snap.Clicks, &snap.Conversions, &revenue)
	if err == sql.ErrNoRows {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("get affiliate metrics: %w", ErrUnavailable)
	}
	snap.Revenue, err = decimal.NewFromString(revenue)
	if err != nil {
		return snap, fmt.Errorf("parse revenue %q: %w", revenue, ErrUnavailable)
	}
	return snap, nil
}

// GetRollingMetrics aggregates the issuer's snapshots over [since, until].
func (s *Store) GetRollingMetrics(ctx context.Context, issuerID string, since, until time.Time) (domain.WindowMetrics, error) {
	w := domain.WindowMetrics{IssuerID: issuerID, Revenue: decimal.Zero}

	var revenue string
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(clicks), 0), COALESCE(SUM(conversions), 0), COALESCE(SUM(revenue), 0)::text
		FROM affiliate_metrics_daily
		WHERE issuer_id = $1 AND day >= $2 AND day <= $3
	`, issuerID, since.Format("2006-01-02"), until.Format("2006-01-02")).
		Scan(&w.Clicks, &w.Conversions, &revenue)
	if err != nil {
		return w, fmt.Errorf("get rolling metrics: %w", ErrUnavailable)
	}
	w.Revenue, err = decimal.NewFromString(revenue)
	if err != nil {
		return w, fmt.Errorf("parse revenue %q: %w", revenue, ErrUnavailable)
	}

	rev, _ := w.Revenue.Float64()
	if w.Clicks > 0 {
		w.EPC = rev / float64(w.Clicks)
		w.ApprovalRate = float64(w.Conversions) / float64(w.Clicks)
	} else {
		w.EPC = rev
	}
	return w, nil
}

// GetDailyClicksSummary returns the per-issuer click breakdown for one day.
func (s *Store) GetDailyClicksSummary(ctx context.Context, day time.Time) (domain.DailyClicksSummary, error) {
	out := domain.DailyClicksSummary{Day: day, ByIssuer: map[string]int{}}

	rows, err := s.db.QueryContext(ctx, `
		SELECT issuer_id, clicks
		FROM affiliate_metrics_daily
		WHERE day = $1
		ORDER BY clicks DESC
	`, day.Format("2006-01-02"))
	if err != nil {
		return out, fmt.Errorf("daily clicks summary: %w", ErrUnavailable)
	}
	defer rows.Close()

	for rows.Next() {
		var issuerID string
		var clicks int
		if err := rows.Scan(&issuerID, &clicks); err != nil {
			return out, fmt.Errorf("scan clicks summary: %w", ErrUnavailable)
		}
		out.ByIssuer[issuerID] = clicks
		out.Total += clicks
	}
	return out, nil
}

// ListIssuersWithClicks returns issuer ids with any clicks in the window,
// the input set for a tier evaluation cycle.
func (s *Store) ListIssuersWithClicks(ctx context.Context, since, until time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT issuer_id
		FROM affiliate_metrics_daily
		WHERE day >= $1 AND day <= $2
		GROUP BY issuer_id
		HAVING SUM(clicks) > 0
		ORDER BY issuer_id
	`, since.Format("2006-01-02"), until.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list issuers: %w", ErrUnavailable)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan issuer id: %w", ErrUnavailable)
		}
		out = append(out, id)
	}
	return out, nil
}

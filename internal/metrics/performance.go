package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brightlane/cardrank/internal/domain"
)

// PerformanceStore persists per-issuer tier evaluation results.
type PerformanceStore struct{ db *sql.DB }

// NewPerformanceStore creates a Postgres-backed issuer performance store.
func NewPerformanceStore(db *sql.DB) *PerformanceStore { return &PerformanceStore{db: db} }

// Upsert writes one issuer's evaluation result, keyed by issuer id.
func (s *PerformanceStore) Upsert(ctx context.Context, p domain.IssuerPerformance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO issuer_performance
			(issuer_id, tier, avg_epc, avg_approval_rate, total_clicks, last_evaluated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (issuer_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			avg_epc = EXCLUDED.avg_epc,
			avg_approval_rate = EXCLUDED.avg_approval_rate,
			total_clicks = EXCLUDED.total_clicks,
			last_evaluated = EXCLUDED.last_evaluated
	`, p.IssuerID, string(p.Tier), p.AvgEPC, p.AvgApprovalRate, p.TotalClicks,
		p.LastEvaluated.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("upsert issuer performance: %w", err)
	}
	return nil
}

// Get returns the stored performance row for an issuer, or ErrUnavailable.
// Unknown issuers default to Tier B so render-time ordering stays safe.
func (s *PerformanceStore) Get(ctx context.Context, issuerID string) (domain.IssuerPerformance, error) {
	p := domain.IssuerPerformance{IssuerID: issuerID, Tier: domain.TierB}

	var tier string
	var lastEvaluated time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT tier, avg_epc, avg_approval_rate, total_clicks, last_evaluated
		FROM issuer_performance
		WHERE issuer_id = $1
	`, issuerID).Scan(&tier, &p.AvgEPC, &p.AvgApprovalRate, &p.TotalClicks, &lastEvaluated)
	if err == sql.ErrNoRows {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("get issuer performance: %w", ErrUnavailable)
	}
	p.Tier = domain.Tier(tier)
	p.LastEvaluated = lastEvaluated
	return p, nil
}

// TierByIssuer returns the current tier map for all evaluated issuers.
func (s *PerformanceStore) TierByIssuer(ctx context.Context) (map[string]domain.Tier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT issuer_id, tier FROM issuer_performance`)
	if err != nil {
		return nil, fmt.Errorf("tier map: %w", ErrUnavailable)
	}
	defer rows.Close()

	out := map[string]domain.Tier{}
	for rows.Next() {
		var id, tier string
		if err := rows.Scan(&id, &tier); err != nil {
			return nil, fmt.Errorf("scan tier: %w", ErrUnavailable)
		}
		out[id] = domain.Tier(tier)
	}
	return out, nil
}

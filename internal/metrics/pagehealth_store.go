package metrics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brightlane/cardrank/internal/domain"
)

// PageHealthStore persists per-page health state.
type PageHealthStore struct{ db *sql.DB }

// NewPageHealthStore creates a Postgres-backed page health store.
func NewPageHealthStore(db *sql.DB) *PageHealthStore { return &PageHealthStore{db: db} }

// Upsert writes one page's health row, keyed by slug.
func (s *PageHealthStore) Upsert(ctx context.Context, h domain.PageHealth) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_health
			(page_slug, issuer_id, baseline_epc, last_epc, status, recovery_days, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (page_slug) DO UPDATE SET
			issuer_id = EXCLUDED.issuer_id,
			baseline_epc = EXCLUDED.baseline_epc,
			last_epc = EXCLUDED.last_epc,
			status = EXCLUDED.status,
			recovery_days = EXCLUDED.recovery_days,
			updated_at = NOW()
	`, h.PageSlug, h.IssuerID, h.BaselineEPC, h.LastEPC, string(h.Status), h.RecoveryDays)
	if err != nil {
		return fmt.Errorf("upsert page health: %w", err)
	}
	return nil
}

// Get returns the stored health row for a page. Pages never evaluated have
// no row and report demoted: health is never assumed without evidence.
func (s *PageHealthStore) Get(ctx context.Context, pageSlug string) (domain.PageHealth, error) {
	h := domain.PageHealth{PageSlug: pageSlug, Status: domain.StatusDemoted}

	var status string
	var baseline sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT issuer_id, baseline_epc, last_epc, status, recovery_days, updated_at
		FROM page_health
		WHERE page_slug = $1
	`, pageSlug).Scan(&h.IssuerID, &baseline, &h.LastEPC, &status, &h.RecoveryDays, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return h, nil
	}
	if err != nil {
		return h, fmt.Errorf("get page health: %w", ErrUnavailable)
	}
	if baseline.Valid {
		v := baseline.Float64
		h.BaselineEPC = &v
	}
	h.Status = domain.HealthStatus(status)
	return h, nil
}

// List returns all tracked page health rows.
func (s *PageHealthStore) List(ctx context.Context) ([]domain.PageHealth, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT page_slug, issuer_id, baseline_epc, last_epc, status, recovery_days, updated_at
		FROM page_health
		ORDER BY page_slug
	`)
	if err != nil {
		return nil, fmt.Errorf("list page health: %w", ErrUnavailable)
	}
	defer rows.Close()

	var out []domain.PageHealth
	for rows.Next() {
		var h domain.PageHealth
		var status string
		var baseline sql.NullFloat64
		if err := rows.Scan(&h.PageSlug, &h.IssuerID, &baseline, &h.LastEPC, &status, &h.RecoveryDays, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan page health: %w", ErrUnavailable)
		}
		if baseline.Valid {
			v := baseline.Float64
			h.BaselineEPC = &v
		}
		h.Status = domain.HealthStatus(status)
		out = append(out, h)
	}
	return out, nil
}

// DemotedSlugs returns the set of currently demoted page slugs, consumed by
// the rollout registry's link gate.
func (s *PageHealthStore) DemotedSlugs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT page_slug FROM page_health WHERE status = 'demoted'
	`)
	if err != nil {
		return nil, fmt.Errorf("demoted slugs: %w", ErrUnavailable)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan demoted slug: %w", ErrUnavailable)
		}
		out[slug] = true
	}
	return out, nil
}

package pagehealth

import (
	"context"
	"time"

	"github.com/brightlane/cardrank/internal/domain"
	"github.com/brightlane/cardrank/internal/pkg/logger"
)

// PageRef identifies one tracked page and the issuer whose offer it carries.
type PageRef struct {
	Slug     string
	IssuerID string
}

// MetricsSource supplies rolling issuer metrics for the evaluation window.
type MetricsSource interface {
	GetRollingMetrics(ctx context.Context, issuerID string, since, until time.Time) (domain.WindowMetrics, error)
}

// Store persists page health rows.
type Store interface {
	Upsert(ctx context.Context, h domain.PageHealth) error
	List(ctx context.Context) ([]domain.PageHealth, error)
}

// Summary reports the outcome of one page health cycle.
type Summary struct {
	Evaluated int `json:"evaluated"`
	Healthy   int `json:"healthy"`
	Demoted   int `json:"demoted"`
	Failures  int `json:"failures"`
}

// Evaluator runs the daily page health cycle.
type Evaluator struct {
	cfg     Config
	metrics MetricsSource
	store   Store
	now     func() time.Time
}

// NewEvaluator creates a page health evaluator. now is replaceable in tests.
func NewEvaluator(cfg Config, metrics MetricsSource, store Store) *Evaluator {
	return &Evaluator{cfg: cfg, metrics: metrics, store: store, now: time.Now}
}

// Run advances every referenced page's health state by one evaluation.
// Pages without an existing row start from the zero state. One page's
// failure is logged and skipped; writes already committed stand.
func (e *Evaluator) Run(ctx context.Context, refs []PageRef) (Summary, error) {
	var sum Summary
	until := e.now().UTC().Truncate(24 * time.Hour)
	since := until.AddDate(0, 0, -e.cfg.WindowDays)

	existing := map[string]domain.PageHealth{}
	rows, err := e.store.List(ctx)
	if err != nil {
		// A failed read means prior state is unknown. Proceeding would
		// wipe baselines and recovery progress, so the cycle stops here.
		return sum, err
	}
	for _, h := range rows {
		existing[h.PageSlug] = h
	}

	for _, ref := range refs {
		w, err := e.metrics.GetRollingMetrics(ctx, ref.IssuerID, since, until)
		if err != nil {
			// Fail closed: unreachable metrics read as "no data", which
			// Evaluate turns into a demotion.
			logger.Warn("pagehealth: metrics unavailable, treating as no data",
				"page", ref.Slug, "issuer", ref.IssuerID, "error", err)
			w = domain.WindowMetrics{IssuerID: ref.IssuerID}
		}

		prev, ok := existing[ref.Slug]
		if !ok {
			prev = domain.PageHealth{PageSlug: ref.Slug, IssuerID: ref.IssuerID}
		}

		next := Advance(prev, w, e.cfg)
		next.IssuerID = ref.IssuerID

		if err := e.store.Upsert(ctx, next); err != nil {
			logger.Error("pagehealth: upsert failed", "page", ref.Slug, "error", err)
			sum.Failures++
			continue
		}

		sum.Evaluated++
		if next.Status == domain.StatusHealthy {
			sum.Healthy++
		} else {
			sum.Demoted++
		}
	}

	logger.Info("page health evaluation complete",
		"evaluated", sum.Evaluated,
		"healthy", sum.Healthy,
		"demoted", sum.Demoted,
		"failures", sum.Failures)
	return sum, nil
}

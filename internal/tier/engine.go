// Package tier classifies issuers into promotion tiers from rolling EPC.
// Tier A is a hard-capped set: qualifying is necessary but not sufficient,
// only the top earners by EPC get promoted each cycle.
package tier

import (
	"context"
	"sort"
	"time"

	"github.com/brightlane/cardrank/internal/domain"
	"github.com/brightlane/cardrank/internal/pkg/logger"
)

// Config holds the qualification thresholds for a tier evaluation cycle.
type Config struct {
	WindowDays             int
	MinClicks              int
	MinApprovalRate        float64
	PromotionEPCMultiplier float64
	MaxTierAIssuers        int
}

// MetricsSource supplies rolling issuer metrics for the evaluation window.
type MetricsSource interface {
	GetRollingMetrics(ctx context.Context, issuerID string, since, until time.Time) (domain.WindowMetrics, error)
}

// PerformanceStore persists per-issuer evaluation results.
type PerformanceStore interface {
	Upsert(ctx context.Context, p domain.IssuerPerformance) error
	Get(ctx context.Context, issuerID string) (domain.IssuerPerformance, error)
}

// Summary reports the outcome of one evaluation cycle.
type Summary struct {
	Evaluated   int     `json:"evaluated"`
	Promoted    int     `json:"promoted"`
	Demoted     int     `json:"demoted"`
	TierChanges int     `json:"tier_changes"`
	Failures    int     `json:"failures"`
	BaselineEPC float64 `json:"baseline_epc"`
}

// Engine runs the daily tier evaluation.
type Engine struct {
	cfg     Config
	metrics MetricsSource
	store   PerformanceStore
	now     func() time.Time
}

// NewEngine creates a tier engine. now is replaceable for tests.
func NewEngine(cfg Config, metrics MetricsSource, store PerformanceStore) *Engine {
	return &Engine{cfg: cfg, metrics: metrics, store: store, now: time.Now}
}

// EvaluateAll classifies every issuer in the set and upserts one
// performance row per issuer. A metrics fetch failure for one issuer is
// logged and skipped; writes already committed when a later item fails
// stand. The cycle errors only if every issuer failed.
func (e *Engine) EvaluateAll(ctx context.Context, issuerIDs []string) (Summary, error) {
	var sum Summary
	until := e.now().UTC().Truncate(24 * time.Hour)
	since := until.AddDate(0, 0, -e.cfg.WindowDays)

	// First pass: fetch windows. Per-issuer failures must not abort the
	// rest of the cycle.
	windows := make([]domain.WindowMetrics, 0, len(issuerIDs))
	for _, id := range issuerIDs {
		w, err := e.metrics.GetRollingMetrics(ctx, id, since, until)
		if err != nil {
			logger.Warn("tier: metrics fetch failed, skipping issuer", "issuer", id, "error", err)
			sum.Failures++
			continue
		}
		if !w.HasData() {
			continue
		}
		windows = append(windows, w)
	}

	if len(issuerIDs) > 0 && sum.Failures == len(issuerIDs) {
		return sum, ErrAllFailed
	}

	baseline := meanEPC(windows)
	sum.BaselineEPC = baseline

	promoted := promotionSet(windows, baseline, e.cfg)

	for _, w := range windows {
		t := domain.TierB
		if promoted[w.IssuerID] {
			t = domain.TierA
		}

		prev, err := e.store.Get(ctx, w.IssuerID)
		if err != nil {
			// Unknown prior state still gets an upsert; only the change
			// count loses precision.
			logger.Warn("tier: prior state unavailable", "issuer", w.IssuerID, "error", err)
		} else if prev.Tier != t {
			sum.TierChanges++
		}

		perf := domain.IssuerPerformance{
			IssuerID:        w.IssuerID,
			Tier:            t,
			AvgEPC:          w.EPC,
			AvgApprovalRate: w.ApprovalRate,
			TotalClicks:     w.Clicks,
			LastEvaluated:   until,
		}
		if err := e.store.Upsert(ctx, perf); err != nil {
			logger.Error("tier: upsert failed", "issuer", w.IssuerID, "error", err)
			sum.Failures++
			continue
		}

		sum.Evaluated++
		if t == domain.TierA {
			sum.Promoted++
		} else {
			sum.Demoted++
		}
	}

	logger.Info("tier evaluation complete",
		"evaluated", sum.Evaluated,
		"promoted", sum.Promoted,
		"tier_changes", sum.TierChanges,
		"baseline_epc", sum.BaselineEPC)
	return sum, nil
}

// promotionSet applies the qualification predicate, then the hard cap:
// qualifiers are ranked by EPC descending and only the top
// MaxTierAIssuers survive. A non-positive baseline suppresses all
// promotions for the cycle.
func promotionSet(windows []domain.WindowMetrics, baseline float64, cfg Config) map[string]bool {
	out := map[string]bool{}
	if baseline <= 0 {
		return out
	}

	var qualifiers []domain.WindowMetrics
	for _, w := range windows {
		if w.Clicks >= cfg.MinClicks &&
			w.ApprovalRate >= cfg.MinApprovalRate &&
			w.EPC >= baseline*cfg.PromotionEPCMultiplier {
			qualifiers = append(qualifiers, w)
		}
	}

	sort.Slice(qualifiers, func(i, j int) bool {
		if qualifiers[i].EPC != qualifiers[j].EPC {
			return qualifiers[i].EPC > qualifiers[j].EPC
		}
		return qualifiers[i].IssuerID < qualifiers[j].IssuerID
	})

	for i, q := range qualifiers {
		if i >= cfg.MaxTierAIssuers {
			break
		}
		out[q.IssuerID] = true
	}
	return out
}

func meanEPC(windows []domain.WindowMetrics) float64 {
	if len(windows) == 0 {
		return 0
	}
	var total float64
	for _, w := range windows {
		total += w.EPC
	}
	return total / float64(len(windows))
}

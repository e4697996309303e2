// Package api exposes the decision core over HTTP: the outbound click
// redirect, the conversion webhook, the scheduled evaluation endpoints,
// the sitemap, and the variant assignment endpoint the render layer calls.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/brightlane/cardrank/internal/abtest"
	"github.com/brightlane/cardrank/internal/domain"
	"github.com/brightlane/cardrank/internal/metrics"
	"github.com/brightlane/cardrank/internal/pagehealth"
	"github.com/brightlane/cardrank/internal/pkg/logger"
	"github.com/brightlane/cardrank/internal/rollout"
	"github.com/brightlane/cardrank/internal/tier"
)

// Deps carries everything the handlers need. Counters is optional: a nil
// value means Redis is disabled and hot counters are skipped.
type Deps struct {
	Store        *metrics.Store
	Counters     *metrics.Counters
	Performance  *metrics.PerformanceStore
	Health       *metrics.PageHealthStore
	TierEngine   *tier.Engine
	HealthEval   *pagehealth.Evaluator
	Registry     *rollout.Registry
	Assigner     *abtest.Assigner
	Offers       []domain.Offer
	PageRefs     []pagehealth.PageRef
	IssuerBySlug map[string]string
	CronSecret   string
	WebhookToken string
	TierWindow   int
}

// Handlers is the HTTP handler set of the decision core.
type Handlers struct {
	store        *metrics.Store
	counters     *metrics.Counters
	performance  *metrics.PerformanceStore
	health       *metrics.PageHealthStore
	tierEngine   *tier.Engine
	healthEval   *pagehealth.Evaluator
	registry     *rollout.Registry
	assigner     *abtest.Assigner
	offers       []domain.Offer
	pageRefs     []pagehealth.PageRef
	issuerBySlug map[string]string
	cronSecret   string
	webhookToken string
	tierWindow   int
	now          func() time.Time
}

// NewHandlers wires the handler set.
func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		store:        d.Store,
		counters:     d.Counters,
		performance:  d.Performance,
		health:       d.Health,
		tierEngine:   d.TierEngine,
		healthEval:   d.HealthEval,
		registry:     d.Registry,
		assigner:     d.Assigner,
		offers:       d.Offers,
		pageRefs:     d.PageRefs,
		issuerBySlug: d.IssuerBySlug,
		cronSecret:   d.CronSecret,
		webhookToken: d.WebhookToken,
		tierWindow:   d.TierWindow,
		now:          time.Now,
	}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "cardrank",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("api: encode response failed", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

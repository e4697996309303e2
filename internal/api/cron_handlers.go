package api

import (
	"net/http"
	"time"

	"github.com/brightlane/cardrank/internal/pkg/logger"
)

// TierEvaluation handles POST /api/cron/tier-evaluation: one full issuer
// tier cycle over the rolling window. Authentication happens in the route
// middleware before this runs.
func (h *Handlers) TierEvaluation(w http.ResponseWriter, r *http.Request) {
	until := h.now().UTC().Truncate(24 * time.Hour)
	since := until.AddDate(0, 0, -h.tierWindow)

	issuers, err := h.store.ListIssuersWithClicks(r.Context(), since, until)
	if err != nil {
		evaluationRuns.WithLabelValues("tier", "error").Inc()
		logger.Error("cron: issuer listing failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "metrics unavailable")
		return
	}

	sum, err := h.tierEngine.EvaluateAll(r.Context(), issuers)
	if err != nil {
		evaluationRuns.WithLabelValues("tier", "error").Inc()
		logger.Error("cron: tier evaluation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	evaluationRuns.WithLabelValues("tier", "ok").Inc()
	respondJSON(w, http.StatusOK, sum)
}

// PageHealthEvaluation handles POST /api/cron/page-health: advances every
// tracked page's health state by one day.
func (h *Handlers) PageHealthEvaluation(w http.ResponseWriter, r *http.Request) {
	sum, err := h.healthEval.Run(r.Context(), h.pageRefs)
	if err != nil {
		evaluationRuns.WithLabelValues("page_health", "error").Inc()
		logger.Error("cron: page health cycle failed", "error", err)
		respondError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	evaluationRuns.WithLabelValues("page_health", "ok").Inc()
	respondJSON(w, http.StatusOK, sum)
}

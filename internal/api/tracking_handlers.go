package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/brightlane/cardrank/internal/pkg/logger"
)

// OutboundClick handles GET /r/{issuer}?to=<url>. The redirect must fire
// even when metrics writes fail: losing a click record is cheaper than
// losing the visitor.
func (h *Handlers) OutboundClick(w http.ResponseWriter, r *http.Request) {
	issuerID := chi.URLParam(r, "issuer")
	if issuerID == "" {
		respondError(w, http.StatusBadRequest, "missing issuer")
		return
	}

	dest := r.URL.Query().Get("to")
	target, err := url.Parse(dest)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		respondError(w, http.StatusBadRequest, "invalid destination url")
		return
	}

	day := h.now().UTC()
	if err := h.store.RecordClick(r.Context(), issuerID, day); err != nil {
		logger.Error("click: record failed", "issuer", issuerID, "error", err)
	}
	if h.counters != nil {
		if err := h.counters.IncrClick(r.Context(), issuerID, day); err != nil {
			logger.Warn("click: hot counter failed", "issuer", issuerID, "error", err)
		}
	}
	clicksTotal.WithLabelValues(issuerID).Inc()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

// conversionEvent is the network payload posted by the affiliate platform.
type conversionEvent struct {
	Event         string          `json:"event"`
	IssuerID      string          `json:"issuer_id"`
	Status        string          `json:"status"`
	Payout        decimal.Decimal `json:"payout"`
	TransactionID string          `json:"transaction_id"`
}

// ConversionWebhook handles POST /webhooks/conversion. Only approved
// action.conversion events touch the revenue aggregates; everything else
// is acknowledged and dropped so the sender stops retrying.
func (h *Handlers) ConversionWebhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookToken != "" {
		got := r.Header.Get("X-Webhook-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookToken)) != 1 {
			unauthorized(w)
			return
		}
	}

	var ev conversionEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if ev.IssuerID == "" {
		respondError(w, http.StatusBadRequest, "missing issuer_id")
		return
	}

	conversionsTotal.WithLabelValues(ev.IssuerID, ev.Status).Inc()

	if ev.Event != "action.conversion" || ev.Status != "approved" {
		respondJSON(w, http.StatusOK, map[string]interface{}{"recorded": false})
		return
	}

	if err := h.store.RecordConversion(r.Context(), ev.IssuerID, h.now().UTC(), ev.Payout); err != nil {
		// 5xx so the affiliate platform retries the delivery.
		logger.Error("conversion: record failed",
			"issuer", ev.IssuerID, "transaction", ev.TransactionID, "error", err)
		respondError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	logger.Info("conversion recorded",
		"issuer", ev.IssuerID, "payout", ev.Payout.String(), "transaction", ev.TransactionID)
	respondJSON(w, http.StatusOK, map[string]interface{}{"recorded": true})
}

// ClicksSummary handles GET /api/clicks/summary?day=YYYY-MM-DD, an ops
// endpoint backing the daily click dashboard.
func (h *Handlers) ClicksSummary(w http.ResponseWriter, r *http.Request) {
	day := h.now().UTC()
	if q := r.URL.Query().Get("day"); q != "" {
		parsed, err := parseDay(q)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid day, want YYYY-MM-DD")
			return
		}
		day = parsed
	}

	sum, err := h.store.GetDailyClicksSummary(r.Context(), day)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "metrics unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"day":       day.Format("2006-01-02"),
		"total":     sum.Total,
		"by_issuer": sum.ByIssuer,
	})
}

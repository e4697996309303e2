package api

import (
	"net/http"

	"github.com/brightlane/cardrank/internal/abtest"
	"github.com/brightlane/cardrank/internal/domain"
	"github.com/brightlane/cardrank/internal/rollout"
)

// Variant handles GET /api/variant?page=<path>. It resolves the visitor's
// display variant (setting cookies on first contact) and the primary offer
// for the page. Offers are narrowed to the page's issuer when the page maps
// to one; hub and category pages rotate across the whole catalog.
func (h *Handlers) Variant(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if page == "" {
		page = "/"
	}

	asg := h.assigner.GetVariant(w, r)
	if !asg.Bot {
		variantAssignments.WithLabelValues(string(asg.Variant)).Inc()
	}

	offers := h.offers
	if _, slug, ok := rollout.ClassifyPath(page); ok {
		if issuer, mapped := h.issuerBySlug[slug]; mapped {
			offers = offersForIssuer(h.offers, issuer)
		}
	}

	resp := map[string]interface{}{
		"variant":     asg.Variant,
		"session_id":  asg.SessionID,
		"new_session": asg.NewSession,
		"bot":         asg.Bot,
	}
	if offer, ok := abtest.GetPrimaryOffer(page, asg.SessionID, asg.Bot, offers); ok {
		resp["offer"] = offer
	}
	respondJSON(w, http.StatusOK, resp)
}

func offersForIssuer(offers []domain.Offer, issuerID string) []domain.Offer {
	var out []domain.Offer
	for _, o := range offers {
		if o.IssuerID == issuerID {
			out = append(out, o)
		}
	}
	return out
}

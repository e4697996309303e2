package abtest

import (
	"sort"

	"github.com/brightlane/cardrank/internal/domain"
)

// GetPrimaryOffer picks which affiliate offer leads a page. Bots see the
// highest-priority active offer so crawlers index the canonical CTA.
// Humans get a deterministic rotation keyed on (pageID, sessionID): the
// same visitor sees the same offer on every view of a page, keeping
// affiliate attribution consistent across repeated visits.
func GetPrimaryOffer(pageID, sessionID string, isBot bool, offers []domain.Offer) (domain.Offer, bool) {
	active := domain.ActiveOffers(offers)
	if len(active) == 0 {
		return domain.Offer{}, false
	}

	if isBot || sessionID == "" {
		top := active[0]
		for _, o := range active[1:] {
			if o.Priority > top.Priority {
				top = o
			}
		}
		return top, true
	}

	// Stable order before bucketing so the input slice's order is
	// irrelevant to the selection.
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	idx := int(Hash32(pageID+"|"+sessionID) % uint32(len(active)))
	return active[idx], true
}

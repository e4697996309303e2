package domain

// Offer is an affiliate offer eligible to appear as a page CTA.
type Offer struct {
	ID       string `json:"id" yaml:"id"`
	IssuerID string `json:"issuer_id" yaml:"issuer_id"`
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Priority int    `json:"priority" yaml:"priority"`
	Active   bool   `json:"active" yaml:"active"`
}

// ActiveOffers filters to active offers, preserving input order.
func ActiveOffers(offers []Offer) []Offer {
	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if o.Active {
			out = append(out, o)
		}
	}
	return out
}

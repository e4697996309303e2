package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier classifies an issuer for offer ordering.
type Tier string

const (
	// TierA marks a promoted issuer whose offers are shown first.
	TierA Tier = "A"
	// TierB is the default classification.
	TierB Tier = "B"
)

// MetricsSnapshot is one day of click/conversion/revenue aggregates for an
// issuer. Rows are created and incremented by the click and conversion
// boundaries and are read-only to the engines.
type MetricsSnapshot struct {
	IssuerID    string
	Day         time.Time
	Clicks      int
	Conversions int
	Revenue     decimal.Decimal
}

// EPC returns earnings per click for the snapshot. A zero-click day yields
// revenue over one click so a conversion-only day still registers value.
func (m MetricsSnapshot) EPC() float64 {
	clicks := m.Clicks
	if clicks < 1 {
		clicks = 1
	}
	f, _ := m.Revenue.Float64()
	return f / float64(clicks)
}

// ApprovalRate returns conversions/clicks, or 0 when there are no clicks.
func (m MetricsSnapshot) ApprovalRate() float64 {
	if m.Clicks == 0 {
		return 0
	}
	return float64(m.Conversions) / float64(m.Clicks)
}

// WindowMetrics is a rolling aggregate over one or more snapshot days.
type WindowMetrics struct {
	IssuerID     string
	Clicks       int
	Conversions  int
	Revenue      decimal.Decimal
	EPC          float64
	ApprovalRate float64
}

// HasData reports whether the window saw any traffic at all.
func (w WindowMetrics) HasData() bool { return w.Clicks > 0 }

// IssuerPerformance is the persisted per-issuer evaluation result, mutated
// once per day by the tier engine and read-only at render time.
type IssuerPerformance struct {
	IssuerID        string
	Tier            Tier
	AvgEPC          float64
	AvgApprovalRate float64
	TotalClicks     int
	LastEvaluated   time.Time
}

// DailyClicksSummary is the per-day click rollup across all issuers.
type DailyClicksSummary struct {
	Day      time.Time
	Total    int
	ByIssuer map[string]int
}

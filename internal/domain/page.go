package domain

import "time"

// HealthStatus is the persisted health state of an indexable page.
type HealthStatus string

const (
	StatusHealthy HealthStatus = "healthy"
	StatusDemoted HealthStatus = "demoted"
)

// PageHealth is one row per indexable page. BaselineEPC is nil until the
// first healthy observation and is only re-anchored when a demoted page
// completes its recovery window.
type PageHealth struct {
	PageSlug     string
	IssuerID     string
	BaselineEPC  *float64
	LastEPC      float64
	Status       HealthStatus
	RecoveryDays int
	UpdatedAt    time.Time
}

// PageType identifies a programmatic page family. Paths that match no type
// are static pages and sit outside all rollout gating.
type PageType string

const (
	PageComparison PageType = "comparison"
	PageHub        PageType = "hub"
	PageCategory   PageType = "category"
	PageReview     PageType = "review"
	PageResults    PageType = "results"
	PageEducation  PageType = "education"
)

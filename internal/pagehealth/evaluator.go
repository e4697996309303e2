// Package pagehealth demotes pages whose affiliate performance collapses
// against their baseline and promotes them back only after a sustained
// recovery window. Demotion is immediate; recovery is slow. A page with no
// traffic evidence is never assumed healthy.
package pagehealth

import (
	"github.com/brightlane/cardrank/internal/domain"
)

// Config holds the demotion and recovery thresholds.
type Config struct {
	WindowDays         int
	ApprovalRateFloor  float64
	EPCDropThreshold   float64
	RecoveryWindowDays int
}

// Evaluate is the single-shot health rule for one observation window.
// It carries no state: the persisted status transition lives in Advance.
func Evaluate(w domain.WindowMetrics, baselineEPC *float64, cfg Config) domain.HealthStatus {
	// No data or zero clicks: never assume health without evidence.
	if !w.HasData() {
		return domain.StatusDemoted
	}
	if w.ApprovalRate < cfg.ApprovalRateFloor {
		return domain.StatusDemoted
	}
	if baselineEPC != nil && *baselineEPC > 0 {
		drop := (*baselineEPC - w.EPC) / *baselineEPC
		if drop >= cfg.EPCDropThreshold {
			return domain.StatusDemoted
		}
	}
	return domain.StatusHealthy
}

// Advance applies one evaluation to the persisted state and returns the
// next state. Transitions:
//
//	healthy -> demoted   immediate on any unhealthy evaluation, recovery
//	                     counter reset to 0
//	demoted -> demoted   each consecutive healthy evaluation increments
//	                     recoveryDays; an unhealthy one resets it
//	demoted -> healthy   only when recoveryDays reaches the recovery
//	                     window; baseline re-anchors to the latest EPC
//
// Outside the recovery transition and its initial assignment the baseline
// is sticky: ordinary healthy observations never overwrite it.
func Advance(prev domain.PageHealth, w domain.WindowMetrics, cfg Config) domain.PageHealth {
	next := prev
	next.LastEPC = w.EPC

	eval := Evaluate(w, prev.BaselineEPC, cfg)

	if eval == domain.StatusDemoted {
		next.Status = domain.StatusDemoted
		next.RecoveryDays = 0
		return next
	}

	switch prev.Status {
	case domain.StatusDemoted:
		next.RecoveryDays = prev.RecoveryDays + 1
		if next.RecoveryDays >= cfg.RecoveryWindowDays {
			next.Status = domain.StatusHealthy
			next.RecoveryDays = 0
			epc := w.EPC
			next.BaselineEPC = &epc
		}
	default:
		// Healthy, or a page seen for the first time: the initial healthy
		// observation sets the baseline, later ones leave it alone.
		next.Status = domain.StatusHealthy
		if next.BaselineEPC == nil {
			epc := w.EPC
			next.BaselineEPC = &epc
		}
	}
	return next
}

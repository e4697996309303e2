package pagehealth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightlane/cardrank/internal/domain"
)

func testConfig() Config {
	return Config{
		WindowDays:         3,
		ApprovalRateFloor:  0.10,
		EPCDropThreshold:   0.30,
		RecoveryWindowDays: 3,
	}
}

func obs(clicks int, epc, approvalRate float64) domain.WindowMetrics {
	return domain.WindowMetrics{
		Clicks:       clicks,
		EPC:          epc,
		ApprovalRate: approvalRate,
	}
}

func ptr(f float64) *float64 { return &f }

func TestEvaluate(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		w        domain.WindowMetrics
		baseline *float64
		want     domain.HealthStatus
	}{
		{"no data", obs(0, 0, 0), nil, domain.StatusDemoted},
		{"approval below floor", obs(100, 2.0, 0.05), nil, domain.StatusDemoted},
		{"healthy without baseline", obs(100, 2.0, 0.5), nil, domain.StatusHealthy},
		{"drop at 35 percent demotes", obs(100, 1.3, 0.5), ptr(2.0), domain.StatusDemoted},
		{"drop at 25 percent stays healthy", obs(100, 1.5, 0.5), ptr(2.0), domain.StatusHealthy},
		{"drop exactly at threshold demotes", obs(100, 1.4, 0.5), ptr(2.0), domain.StatusDemoted},
		{"zero baseline skips drop check", obs(100, 0.5, 0.5), ptr(0), domain.StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.w, tt.baseline, cfg))
		})
	}
}

func TestAdvance_FirstHealthyObservationSetsBaseline(t *testing.T) {
	cfg := testConfig()
	prev := domain.PageHealth{PageSlug: "visa-platinum-vs-gold"}

	next := Advance(prev, obs(100, 2.5, 0.5), cfg)

	assert.Equal(t, domain.StatusHealthy, next.Status)
	if assert.NotNil(t, next.BaselineEPC) {
		assert.Equal(t, 2.5, *next.BaselineEPC)
	}
}

func TestAdvance_BaselineStickyOnOrdinaryHealthyDays(t *testing.T) {
	cfg := testConfig()
	prev := domain.PageHealth{
		Status:      domain.StatusHealthy,
		BaselineEPC: ptr(2.0),
	}

	next := Advance(prev, obs(100, 2.4, 0.5), cfg)

	assert.Equal(t, domain.StatusHealthy, next.Status)
	assert.Equal(t, 2.0, *next.BaselineEPC)
	assert.Equal(t, 2.4, next.LastEPC)
}

func TestAdvance_UnhealthyDemotesImmediately(t *testing.T) {
	cfg := testConfig()
	prev := domain.PageHealth{
		Status:       domain.StatusDemoted,
		BaselineEPC:  ptr(2.0),
		RecoveryDays: 2, // one day from recovery
	}

	next := Advance(prev, obs(100, 1.0, 0.5), cfg) // 50% drop

	assert.Equal(t, domain.StatusDemoted, next.Status)
	assert.Equal(t, 0, next.RecoveryDays, "recovery progress resets on any unhealthy day")
}

func TestAdvance_HealthyToDemotedResetsRecovery(t *testing.T) {
	cfg := testConfig()
	prev := domain.PageHealth{
		Status:      domain.StatusHealthy,
		BaselineEPC: ptr(2.0),
	}

	next := Advance(prev, obs(0, 0, 0), cfg)

	assert.Equal(t, domain.StatusDemoted, next.Status)
	assert.Equal(t, 0, next.RecoveryDays)
	assert.Equal(t, 2.0, *next.BaselineEPC, "baseline survives demotion")
}

func TestAdvance_RecoveryWindow(t *testing.T) {
	cfg := testConfig()
	state := domain.PageHealth{
		Status:      domain.StatusDemoted,
		BaselineEPC: ptr(2.0),
	}

	// Two consecutive healthy days: still demoted, one short of the window.
	state = Advance(state, obs(100, 1.9, 0.5), cfg)
	assert.Equal(t, domain.StatusDemoted, state.Status)
	assert.Equal(t, 1, state.RecoveryDays)

	state = Advance(state, obs(100, 1.8, 0.5), cfg)
	assert.Equal(t, domain.StatusDemoted, state.Status)
	assert.Equal(t, 2, state.RecoveryDays)

	// Third consecutive healthy day completes the window: the page flips
	// healthy and the baseline re-anchors to the latest observed EPC.
	state = Advance(state, obs(100, 1.7, 0.5), cfg)
	assert.Equal(t, domain.StatusHealthy, state.Status)
	assert.Equal(t, 0, state.RecoveryDays)
	assert.Equal(t, 1.7, *state.BaselineEPC)
}

func TestAdvance_BadDayMidRecoveryStartsOver(t *testing.T) {
	cfg := testConfig()
	state := domain.PageHealth{
		Status:      domain.StatusDemoted,
		BaselineEPC: ptr(2.0),
	}

	state = Advance(state, obs(100, 1.9, 0.5), cfg)
	state = Advance(state, obs(100, 1.9, 0.5), cfg)
	assert.Equal(t, 2, state.RecoveryDays)

	state = Advance(state, obs(100, 0.5, 0.5), cfg) // collapse
	assert.Equal(t, domain.StatusDemoted, state.Status)
	assert.Equal(t, 0, state.RecoveryDays)

	// Needs the full window again.
	state = Advance(state, obs(100, 1.9, 0.5), cfg)
	state = Advance(state, obs(100, 1.9, 0.5), cfg)
	assert.Equal(t, domain.StatusDemoted, state.Status)
	state = Advance(state, obs(100, 1.9, 0.5), cfg)
	assert.Equal(t, domain.StatusHealthy, state.Status)
}

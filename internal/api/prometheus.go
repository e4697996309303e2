package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardrank_outbound_clicks_total",
		Help: "Outbound affiliate clicks by issuer.",
	}, []string{"issuer"})

	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardrank_conversions_total",
		Help: "Conversion webhook events by issuer and status.",
	}, []string{"issuer", "status"})

	evaluationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardrank_evaluation_runs_total",
		Help: "Scheduled evaluation cycles by job and outcome.",
	}, []string{"job", "outcome"})

	variantAssignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardrank_variant_assignments_total",
		Help: "Variant assignments by variant, bots excluded.",
	}, []string{"variant"})
)

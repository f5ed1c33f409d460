/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Solver outcome labels.
const (
	OutcomeSolved     = "solved"
	OutcomeInfeasible = "infeasible"
	OutcomeInvalid    = "invalid"
	OutcomeBudget     = "budget_exceeded"
	OutcomeCancelled  = "cancelled"
	OutcomeDegraded   = "degraded"
	OutcomeCached     = "cached"
)

var (
	// SolverRunsTotal counts planner requests by mode and outcome.
	SolverRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewrota_solver_runs_total",
		Help: "Schedule generation requests by mode and outcome.",
	}, []string{"mode", "outcome"})

	SolverDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crewrota_solver_duration_seconds",
		Help:    "Wall time spent in the coverage solver.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}, []string{"mode"})

	SolverNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crewrota_solver_nodes",
		Help:    "Search nodes expanded per solve.",
		Buckets: prometheus.ExponentialBuckets(16, 4, 12),
	})

	SolverMemoEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewrota_solver_memo_evictions_total",
		Help: "Failure memo entries evicted because the memo was full.",
	})

	SolverCeiling = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crewrota_solver_duty_ceiling",
		Help:    "Duty ceiling the solver settled on.",
		Buckets: prometheus.LinearBuckets(2, 4, 16),
	})

	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewrota_cache_lookups_total",
		Help: "Result cache lookups by result.",
	}, []string{"result"})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewrota_api_requests_total",
		Help: "HTTP API requests by method, route and status.",
	}, []string{"method", "endpoint", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crewrota_api_request_duration_seconds",
		Help:    "HTTP API request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crewrota_api_active_connections",
		Help: "HTTP API requests currently in flight.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

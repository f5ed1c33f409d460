/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package planner wraps the rotation engine with logging, tracing, metrics,
// result caching and the degraded-baseline fallback.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/crewrota/internal/cache"
	"github.com/friendsincode/crewrota/internal/rota"
	"github.com/friendsincode/crewrota/internal/telemetry"
)

// Planning modes, also used as metric and cache-key labels.
const (
	ModeHorizon  = "horizon"
	ModeRequired = "required"
)

// Plan is a schedule plus everything a caller needs to present it.
type Plan struct {
	ID               string          `json:"id"`
	Params           rota.Params     `json:"params"`
	Schedule         rota.Schedule   `json:"schedule"`
	CoverageStartDay int             `json:"coverage_start_day"`
	HorizonDays      int             `json:"horizon_days"`
	Findings         []rota.Finding  `json:"findings"`
	DutyCeiling      int             `json:"duty_ceiling"`
	Degraded         bool            `json:"degraded"`
	Cached           bool            `json:"cached"`
	Stats            rota.SolveStats `json:"-"`
}

// Service turns parameters into plans.
type Service struct {
	generator *rota.Generator
	solverCfg rota.Config
	cache     *cache.Cache
	timeout   time.Duration
	logger    zerolog.Logger
}

// New constructs the planner service. A zero timeout disables the per-solve
// deadline.
func New(solverCfg rota.Config, timeout time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		generator: rota.NewGenerator(solverCfg),
		solverCfg: solverCfg,
		timeout:   timeout,
		logger:    logger.With().Str("component", "planner").Logger(),
	}
}

// SetCache sets the result cache. A nil cache disables caching.
func (s *Service) SetCache(c *cache.Cache) {
	s.cache = c
}

// Plan solves p over p.HorizonDays. With fallback set, an unsolvable request
// yields the validated periodic baseline marked degraded instead of an error.
func (s *Service) Plan(ctx context.Context, p rota.Params, fallback bool) (*Plan, error) {
	p.RequiredDutyDays = 0
	return s.run(ctx, ModeHorizon, p, fallback)
}

// PlanRequiredDutyDays grows the horizon until p.RequiredDutyDays covered
// days are reached.
func (s *Service) PlanRequiredDutyDays(ctx context.Context, p rota.Params, fallback bool) (*Plan, error) {
	p.HorizonDays = 0
	return s.run(ctx, ModeRequired, p, fallback)
}

func (s *Service) run(ctx context.Context, mode string, p rota.Params, fallback bool) (*Plan, error) {
	ctx, span := telemetry.StartSpan(ctx, "planner", "plan."+mode)
	defer span.End()
	telemetry.AddSpanAttributes(span, map[string]any{
		"rota.n":                  p.DutyCycleLength,
		"rota.m":                  p.RestCycleLength,
		"rota.induction":          p.InductionLength,
		"rota.horizon_days":       p.HorizonDays,
		"rota.required_duty_days": p.RequiredDutyDays,
		"rota.fallback":           fallback,
	})

	logger := s.logger.With().
		Str("mode", mode).
		Int("n", p.DutyCycleLength).
		Int("m", p.RestCycleLength).
		Int("induction", p.InductionLength).
		Logger()

	key := cache.Key(mode, p, s.solverCfg)
	if entry, ok := s.cache.Get(ctx, key); ok {
		telemetry.CacheLookupsTotal.WithLabelValues("hit").Inc()
		telemetry.SolverRunsTotal.WithLabelValues(mode, telemetry.OutcomeCached).Inc()
		plan := s.newPlan(p, entry.Schedule, entry.CoverageStartDay, entry.HorizonDays)
		plan.Cached = true
		logger.Debug().Str("plan_id", plan.ID).Msg("served plan from cache")
		return plan, nil
	}
	if s.cache.IsAvailable() {
		telemetry.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	solveCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		sched   rota.Schedule
		start   = rota.CoverageStartDay(p)
		horizon int
		stats   rota.SolveStats
		err     error
	)
	if mode == ModeRequired {
		var ext rota.ExtendedSchedule
		ext, err = s.generator.GenerateForRequiredDutyDays(solveCtx, p)
		sched, horizon, stats = ext.Schedule, ext.HorizonDays, ext.Stats
	} else {
		var res rota.Result
		res, err = s.generator.Run(solveCtx, p)
		sched, horizon, stats = res.Schedule, p.HorizonDays, res.Stats
	}
	s.observe(mode, stats, err)

	if err != nil {
		telemetry.RecordError(span, err)
		logger.Info().Err(err).
			Int64("nodes", stats.Nodes).
			Int("ceilings_tried", stats.CeilingsTried).
			Dur("duration", stats.Duration).
			Msg("planning failed")
		if fallback && Degradable(err) {
			return s.degrade(mode, p, err, logger)
		}
		return nil, fmt.Errorf("plan %s: %w", mode, err)
	}

	plan := s.newPlan(p, sched, start, horizon)
	plan.Stats = stats
	logger.Info().
		Str("plan_id", plan.ID).
		Int("horizon_days", horizon).
		Int("duty_ceiling", sched.DutyCeiling()).
		Int64("nodes", stats.Nodes).
		Int64("memo_evictions", stats.MemoEvictions).
		Dur("duration", stats.Duration).
		Msg("schedule solved")

	if err := s.cache.Set(ctx, key, &cache.Entry{
		Schedule:         sched,
		CoverageStartDay: start,
		HorizonDays:      horizon,
		Nodes:            stats.Nodes,
		CeilingsTried:    stats.CeilingsTried,
	}); err != nil {
		logger.Debug().Err(err).Msg("failed to cache plan")
	}
	return plan, nil
}

func (s *Service) newPlan(p rota.Params, sched rota.Schedule, start, horizon int) *Plan {
	return &Plan{
		ID:               uuid.NewString(),
		Params:           p,
		Schedule:         sched,
		CoverageStartDay: start,
		HorizonDays:      horizon,
		Findings:         rota.Validate(sched, horizon, start),
		DutyCeiling:      sched.DutyCeiling(),
	}
}

// degrade builds the baseline plan returned in place of a failed solve.
func (s *Service) degrade(mode string, p rota.Params, cause error, logger zerolog.Logger) (*Plan, error) {
	start := rota.CoverageStartDay(p)
	if mode == ModeRequired {
		p.HorizonDays = start + p.RequiredDutyDays
	}

	base, err := rota.Baseline(p)
	if err != nil {
		return nil, fmt.Errorf("build baseline: %w", err)
	}

	plan := s.newPlan(p, base, start, p.HorizonDays)
	plan.Degraded = true
	warning := rota.Finding{Day: 1, Kind: rota.FindingWarning, Message: "warning: " + cause.Error()}
	plan.Findings = append([]rota.Finding{warning}, plan.Findings...)

	telemetry.SolverRunsTotal.WithLabelValues(mode, telemetry.OutcomeDegraded).Inc()
	logger.Warn().
		Str("plan_id", plan.ID).
		Int("findings", len(plan.Findings)).
		Msg("returning degraded baseline")
	return plan, nil
}

// Degradable reports whether a planning error may be answered with the
// baseline. Configuration errors never are: there is no baseline for them.
func Degradable(err error) bool {
	return errors.Is(err, rota.ErrInfeasibleSchedule) ||
		errors.Is(err, rota.ErrSearchBudgetExceeded) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (s *Service) observe(mode string, stats rota.SolveStats, err error) {
	outcome := telemetry.OutcomeSolved
	switch {
	case err == nil:
	case errors.Is(err, rota.ErrInvalidConfiguration):
		outcome = telemetry.OutcomeInvalid
	case errors.Is(err, rota.ErrInfeasibleSchedule):
		outcome = telemetry.OutcomeInfeasible
	case errors.Is(err, rota.ErrSearchBudgetExceeded):
		outcome = telemetry.OutcomeBudget
	default:
		outcome = telemetry.OutcomeCancelled
	}
	telemetry.SolverRunsTotal.WithLabelValues(mode, outcome).Inc()

	if stats.CeilingsTried == 0 {
		return
	}
	telemetry.SolverDuration.WithLabelValues(mode).Observe(stats.Duration.Seconds())
	telemetry.SolverNodes.Observe(float64(stats.Nodes))
	telemetry.SolverMemoEvictionsTotal.Add(float64(stats.MemoEvictions))
	if err == nil {
		telemetry.SolverCeiling.Observe(float64(stats.Ceiling))
	}
}

// Validate checks an externally supplied schedule. A zero horizon means the
// whole schedule.
func (s *Service) Validate(ctx context.Context, sched rota.Schedule, horizonDays, graceDays int) []rota.Finding {
	_, span := telemetry.StartSpan(ctx, "planner", "validate")
	defer span.End()

	if horizonDays <= 0 {
		horizonDays = sched.Days()
	}
	findings := rota.Validate(sched, horizonDays, graceDays)
	telemetry.AddSpanAttributes(span, map[string]any{
		"rota.days":     sched.Days(),
		"rota.findings": len(findings),
	})
	return findings
}

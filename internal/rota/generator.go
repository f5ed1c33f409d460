/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rota

import (
	"context"
	"errors"
	"fmt"
)

// Result is a solved schedule plus the work it took to find it.
type Result struct {
	Schedule Schedule
	Stats    SolveStats
}

// ExtendedSchedule is the outcome of a required-duty-days run.
type ExtendedSchedule struct {
	Schedule         Schedule
	CoverageStartDay int
	HorizonDays      int
	Attempts         int
	Stats            SolveStats
}

// Generator is the entry point of the engine.
type Generator struct {
	solver *Solver
	cfg    Config
}

// NewGenerator constructs a generator with the given search configuration.
func NewGenerator(cfg Config) *Generator {
	cfg = cfg.normalized()
	return &Generator{solver: NewSolver(cfg), cfg: cfg}
}

// Generate validates p and solves it over p.HorizonDays.
func (g *Generator) Generate(ctx context.Context, p Params) (Schedule, error) {
	res, err := g.Run(ctx, p)
	return res.Schedule, err
}

// Run is Generate that also reports solve statistics.
func (g *Generator) Run(ctx context.Context, p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	sched, stats, err := g.solver.Solve(ctx, p)
	if err != nil {
		return Result{Stats: stats}, err
	}
	return Result{Schedule: sched, Stats: stats}, nil
}

// extensionBuffer is the slack added on top of the target when sizing the
// first horizon of a required-duty-days run.
func extensionBuffer(p Params) int {
	return 6*p.CycleLength() + 30
}

// GenerateForRequiredDutyDays grows the horizon until the schedule contains
// p.RequiredDutyDays fully covered days counted from the coverage-start day,
// then truncates it at the day the target is reached.
func (g *Generator) GenerateForRequiredDutyDays(ctx context.Context, p Params) (ExtendedSchedule, error) {
	if err := p.ValidateRequired(); err != nil {
		return ExtendedSchedule{}, err
	}

	start := CoverageStartDay(p)
	horizon := p.RequiredDutyDays + start + extensionBuffer(p)
	var lastErr error
	var lastStats SolveStats

	for attempt := 1; attempt <= g.cfg.ExtenderAttempts; attempt++ {
		run := p
		run.HorizonDays = horizon
		run.RequiredDutyDays = 0

		res, err := g.Run(ctx, run)
		lastStats = res.Stats
		switch {
		case err == nil:
			if day, ok := dayReachingTarget(res.Schedule, start, p.RequiredDutyDays); ok {
				return ExtendedSchedule{
					Schedule:         res.Schedule.Truncate(day + 1),
					CoverageStartDay: start,
					HorizonDays:      day + 1,
					Attempts:         attempt,
					Stats:            res.Stats,
				}, nil
			}
			lastErr = fmt.Errorf("only reached %d of %d covered days within %d days",
				coveredDays(res.Schedule, start), p.RequiredDutyDays, horizon)
		case errors.Is(err, ErrInfeasibleSchedule):
			lastErr = err
		default:
			return ExtendedSchedule{Stats: res.Stats}, err
		}
		horizon = horizon * 3 / 2
	}

	return ExtendedSchedule{Stats: lastStats}, fmt.Errorf("%w: required %d covered duty days not reached after %d attempts: %v",
		ErrInfeasibleSchedule, p.RequiredDutyDays, g.cfg.ExtenderAttempts, lastErr)
}

// dayReachingTarget returns the first day on which the cumulative count of
// exactly-two-on-duty days, counted from start, reaches target.
func dayReachingTarget(s Schedule, start, target int) (int, bool) {
	covered := 0
	for day := start; day < s.Days(); day++ {
		if s.DutyCount(day) == 2 {
			covered++
			if covered >= target {
				return day, true
			}
		}
	}
	return 0, false
}

func coveredDays(s Schedule, start int) int {
	n := 0
	for day := start; day < s.Days(); day++ {
		if s.DutyCount(day) == 2 {
			n++
		}
	}
	return n
}

// Baseline builds the unsolved periodic rotation: the anchor at offset 0, the
// seeded worker at its analytic offset, and the remaining worker one more seed
// offset later. It exists so a caller can show what goes wrong when the solver
// reports infeasibility; run it through Validate before presenting it.
func Baseline(p Params) (Schedule, error) {
	if err := p.Validate(); err != nil {
		return Schedule{}, err
	}
	seed := SeedOffset(p)
	third := (2 * seed) % p.CycleLength()
	return NewSchedule(
		AnchorPattern(0, p, p.HorizonDays),
		AnchorPattern(third, p, p.HorizonDays),
		AnchorPattern(seed, p, p.HorizonDays),
		0,
	)
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rota

import (
	"context"
	"time"
)

const (
	DefaultCeilingSlack     = 120
	DefaultMemoCapacity     = 1_000_000
	DefaultCheckInterval    = 4096
	DefaultExtenderAttempts = 3
)

// Config tunes the search. None of these values affect which schedules are
// legal, only how hard the solver looks for one.
type Config struct {
	// CeilingSlack bounds iterative deepening: ceilings from max(N,2) up to
	// max(N,2)+CeilingSlack are tried (never beyond the horizon).
	CeilingSlack int
	// MemoCapacity caps the failure memo per ceiling attempt.
	MemoCapacity int
	// NodeBudget caps search-node expansions per solve. Zero means unlimited.
	NodeBudget int64
	// CheckInterval is how many expansions pass between context checks.
	CheckInterval int
	// ExtenderAttempts bounds horizon growth in GenerateForRequiredDutyDays.
	ExtenderAttempts int
}

// DefaultConfig returns the default search configuration.
func DefaultConfig() Config {
	return Config{
		CeilingSlack:     DefaultCeilingSlack,
		MemoCapacity:     DefaultMemoCapacity,
		CheckInterval:    DefaultCheckInterval,
		ExtenderAttempts: DefaultExtenderAttempts,
	}
}

func (c Config) normalized() Config {
	if c.CeilingSlack < 0 {
		c.CeilingSlack = 0
	}
	if c.MemoCapacity <= 0 {
		c.MemoCapacity = DefaultMemoCapacity
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultCheckInterval
	}
	if c.ExtenderAttempts <= 0 {
		c.ExtenderAttempts = DefaultExtenderAttempts
	}
	if c.NodeBudget < 0 {
		c.NodeBudget = 0
	}
	return c
}

// SolveStats describes the work done by one solve.
type SolveStats struct {
	CeilingsTried int
	Ceiling       int
	MaxCeiling    int
	Nodes         int64
	MemoHits      int64
	MemoEvictions int64
	MemoPeak      int
	Duration      time.Duration
}

// Solver assigns the two flexible workers day by day against the fixed anchor.
// A Solver holds only configuration and is safe for concurrent use.
type Solver struct {
	cfg Config
}

// NewSolver constructs a solver.
func NewSolver(cfg Config) *Solver {
	return &Solver{cfg: cfg.normalized()}
}

// frame is one choice point of the depth-first search: the joint state at the
// start of day, the options of both workers and the next pair to try.
type frame struct {
	day    int
	a, b   WorkerState
	optsA  Options
	optsB  Options
	cursor int
}

// ceilingBounds returns the first and last duty ceilings to try.
func (s *Solver) ceilingBounds(p Params) (int, int) {
	lo := max(p.DutyCycleLength, MinDutyBlock)
	hi := lo + s.cfg.CeilingSlack
	if p.HorizonDays < hi {
		hi = max(lo, p.HorizonDays)
	}
	return lo, hi
}

// Solve runs the ceiling-deepening search for p. Params must already be valid.
func (s *Solver) Solve(ctx context.Context, p Params) (Schedule, SolveStats, error) {
	started := time.Now()
	horizon := p.HorizonDays
	anchor := AnchorPattern(0, p, horizon)
	anchorDuty := make([]int8, horizon)
	for d, st := range anchor {
		if st == Duty {
			anchorDuty[d] = 1
		}
	}

	run := &search{
		ctx:         ctx,
		cfg:         s.cfg,
		params:      p,
		horizon:     horizon,
		coverage:    CoverageStartDay(p),
		anchorDuty:  anchorDuty,
		initA:       InitialWorkerState(p, 0),
		initB:       InitialWorkerState(p, SeedOffset(p)),
		emitA:       make(Sequence, horizon),
		emitB:       make(Sequence, horizon),
		memo:        newFailureMemo(s.cfg.MemoCapacity),
		stack:       make([]frame, 0, horizon),
		nextCheckAt: int64(s.cfg.CheckInterval),
	}

	lo, hi := s.ceilingBounds(p)
	stats := SolveStats{MaxCeiling: hi}
	finish := func() {
		stats.Nodes = run.nodes
		stats.MemoHits += run.memo.hits
		stats.MemoEvictions += run.memo.evictions
		stats.Duration = time.Since(started)
	}

	for ceiling := lo; ceiling <= hi; ceiling++ {
		stats.CeilingsTried++
		stats.Ceiling = ceiling

		ok, err := run.solve(ceiling)
		stats.MemoPeak = max(stats.MemoPeak, run.memo.len())
		if err != nil {
			finish()
			return Schedule{}, stats, err
		}
		if ok {
			finish()
			sched, err := NewSchedule(anchor, run.emitA, run.emitB, ceiling)
			return sched, stats, err
		}

		// Memo entries are only valid for the ceiling they were found under.
		stats.MemoHits += run.memo.hits
		stats.MemoEvictions += run.memo.evictions
		run.memo.hits, run.memo.evictions = 0, 0
		run.memo.reset()
	}

	finish()
	return Schedule{}, stats, &InfeasibleError{Params: p, MaxCeiling: hi}
}

type search struct {
	ctx        context.Context
	cfg        Config
	params     Params
	horizon    int
	coverage   int
	anchorDuty []int8
	initA      WorkerState
	initB      WorkerState

	emitA Sequence
	emitB Sequence
	memo  *failureMemo
	stack []frame

	nodes       int64
	nextCheckAt int64
}

func (r *search) push(day int, a, b WorkerState, ceiling int) {
	r.stack = append(r.stack, frame{
		day:   day,
		a:     a,
		b:     b,
		optsA: Transitions(a, r.params, ceiling),
		optsB: Transitions(b, r.params, ceiling),
	})
}

// expand accounts for one node and enforces the budget and cancellation.
func (r *search) expand() error {
	r.nodes++
	if r.cfg.NodeBudget > 0 && r.nodes > r.cfg.NodeBudget {
		return ErrSearchBudgetExceeded
	}
	if r.nodes >= r.nextCheckAt {
		r.nextCheckAt = r.nodes + int64(r.cfg.CheckInterval)
		if err := r.ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// solve runs one depth-first search under a fixed ceiling. On success the
// emitted sequences hold a full assignment.
func (r *search) solve(ceiling int) (bool, error) {
	if r.horizon == 0 {
		return true, nil
	}
	if err := r.ctx.Err(); err != nil {
		return false, err
	}

	r.stack = r.stack[:0]
	r.push(0, r.initA, r.initB, ceiling)

	for len(r.stack) > 0 {
		top := &r.stack[len(r.stack)-1]
		day := top.day
		nb := top.optsB.Len()
		total := top.optsA.Len() * nb

		descended := false
		for top.cursor < total {
			ta := top.optsA.At(top.cursor / nb)
			tb := top.optsB.At(top.cursor % nb)
			top.cursor++

			count := int(r.anchorDuty[day])
			if ta.Emit == Duty {
				count++
			}
			if tb.Emit == Duty {
				count++
			}
			if count > 2 || (day >= r.coverage && count != 2) {
				continue
			}

			r.emitA[day] = ta.Emit
			r.emitB[day] = tb.Emit
			next := day + 1
			if next == r.horizon {
				return true, nil
			}
			if r.memo.contains(memoKey{day: next, ceiling: ceiling, a: ta.Next, b: tb.Next}) {
				continue
			}
			if err := r.expand(); err != nil {
				return false, err
			}
			r.push(next, ta.Next, tb.Next, ceiling)
			descended = true
			break
		}

		if !descended {
			r.memo.add(memoKey{day: day, ceiling: ceiling, a: top.a, b: top.b})
			r.stack = r.stack[:len(r.stack)-1]
		}
	}
	return false, nil
}

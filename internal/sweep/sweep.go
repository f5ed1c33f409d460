/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package sweep runs many independent generations in parallel, either over a
// brute-force parameter grid looking for failures or over a fixed case list.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/friendsincode/crewrota/internal/rota"
)

// DefaultTotals are the horizons tried by a sweep.
var DefaultTotals = []int{60, 90, 120, 180, 240}

// DefaultCases is the fixed regression list run by `crewrota cases`.
var DefaultCases = []rota.Params{
	{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 5, HorizonDays: 90},
	{DutyCycleLength: 21, RestCycleLength: 7, InductionLength: 3, HorizonDays: 90},
	{DutyCycleLength: 10, RestCycleLength: 5, InductionLength: 2, HorizonDays: 90},
	{DutyCycleLength: 14, RestCycleLength: 6, InductionLength: 4, HorizonDays: 950},
}

// Generator produces a schedule for one parameter set. *rota.Generator
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, p rota.Params) (rota.Schedule, error)
}

// Range is an inclusive integer interval.
type Range struct {
	Min, Max int
}

// Options bound a sweep.
type Options struct {
	Totals    []int
	Duty      Range
	Rest      Range
	Induction Range
	// All keeps sweeping after the first failure.
	All bool
	// Concurrency caps parallel solves. Zero means GOMAXPROCS.
	Concurrency int
}

// DefaultOptions returns the full grid: N in [3,25], M in [3,10] and
// induction in [1,5] over DefaultTotals.
func DefaultOptions() Options {
	return Options{
		Totals:    DefaultTotals,
		Duty:      Range{Min: 3, Max: 25},
		Rest:      Range{Min: 3, Max: 10},
		Induction: Range{Min: 1, Max: 5},
	}
}

// Grid lists the parameter sets of a sweep in scan order. Inputs with
// N <= induction+1 cannot hold a duty block and are skipped.
func (o Options) Grid() []rota.Params {
	var grid []rota.Params
	for _, total := range o.Totals {
		for n := o.Duty.Min; n <= o.Duty.Max; n++ {
			for m := o.Rest.Min; m <= o.Rest.Max; m++ {
				for i := o.Induction.Min; i <= o.Induction.Max; i++ {
					if n <= i+1 {
						continue
					}
					grid = append(grid, rota.Params{
						DutyCycleLength: n,
						RestCycleLength: m,
						InductionLength: i,
						HorizonDays:     total,
					})
				}
			}
		}
	}
	return grid
}

// Failure is one parameter set the generator could not serve.
type Failure struct {
	Params rota.Params
	Err    error
}

func (f Failure) String() string {
	return fmt.Sprintf("FAIL found: %s: %v", Label(f.Params), f.Err)
}

// Report summarizes a sweep.
type Report struct {
	Checked  int
	Failures []Failure
}

// Sweeper runs sweeps and case lists.
type Sweeper struct {
	gen    Generator
	logger zerolog.Logger
}

// New constructs a sweeper.
func New(gen Generator, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		gen:    gen,
		logger: logger.With().Str("component", "sweep").Logger(),
	}
}

func concurrency(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Run checks every grid point. Unless opts.All is set it stops at the first
// failure in scan order: points after a known failure are not started, and
// every point before it is still checked, so the reported failure does not
// depend on scheduling.
func (s *Sweeper) Run(ctx context.Context, opts Options) (Report, error) {
	grid := opts.Grid()
	s.logger.Info().Int("points", len(grid)).Bool("all", opts.All).Msg("sweep started")

	var (
		mu       sync.Mutex
		failures = make(map[int]Failure)
		firstBad atomic.Int64
		checked  atomic.Int64
	)
	firstBad.Store(int64(len(grid)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency(opts.Concurrency))

	for idx, p := range grid {
		if !opts.All && int64(idx) > firstBad.Load() {
			break
		}
		idx, p := idx, p
		g.Go(func() error {
			if !opts.All && int64(idx) > firstBad.Load() {
				return nil
			}
			err := s.check(gctx, p)
			if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return err
			}
			checked.Add(1)
			if err == nil {
				return nil
			}

			mu.Lock()
			failures[idx] = Failure{Params: p, Err: err}
			mu.Unlock()
			for {
				cur := firstBad.Load()
				if int64(idx) >= cur || firstBad.CompareAndSwap(cur, int64(idx)) {
					break
				}
			}
			s.logger.Debug().Str("case", Label(p)).Err(err).Msg("sweep failure")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("sweep: %w", err)
	}

	report := Report{Checked: int(checked.Load())}
	indexes := make([]int, 0, len(failures))
	for idx := range failures {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	for _, idx := range indexes {
		report.Failures = append(report.Failures, failures[idx])
		if !opts.All {
			break
		}
	}

	s.logger.Info().Int("checked", report.Checked).Int("failures", len(report.Failures)).Msg("sweep finished")
	return report, nil
}

// check generates p and treats coverage findings as a failure too.
func (s *Sweeper) check(ctx context.Context, p rota.Params) error {
	sched, err := s.gen.Generate(ctx, p)
	if err != nil {
		return err
	}
	if bad := rota.CoverageFindings(rota.Validate(sched, p.HorizonDays, rota.CoverageStartDay(p))); len(bad) > 0 {
		return fmt.Errorf("generated schedule has %d coverage findings, first %s", len(bad), bad[0])
	}
	return nil
}

// CaseResult is the outcome of one fixed case.
type CaseResult struct {
	Params    rota.Params
	Findings  int
	FlexARest int
	FlexBRest int
	Err       error
}

func (r CaseResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: FAIL: %v", Label(r.Params), r.Err)
	}
	return fmt.Sprintf("%s: findings=%d | flex-a rest=%d | flex-b rest=%d",
		Label(r.Params), r.Findings, r.FlexARest, r.FlexBRest)
}

// RunCases generates and validates each case. Failures are reported per
// case; only cancellation aborts the run. Results keep the input order.
func (s *Sweeper) RunCases(ctx context.Context, cases []rota.Params, parallel int) ([]CaseResult, error) {
	results := make([]CaseResult, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency(parallel))
	for i, p := range cases {
		i, p := i, p
		g.Go(func() error {
			res := CaseResult{Params: p}
			sched, err := s.gen.Generate(gctx, p)
			switch {
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return err
			case err != nil:
				res.Err = err
			default:
				res.Findings = len(rota.Validate(sched, p.HorizonDays, rota.CoverageStartDay(p)))
				res.FlexARest = sched.Worker(rota.WorkerFlexA).Count(rota.Rest)
				res.FlexBRest = sched.Worker(rota.WorkerFlexB).Count(rota.Rest)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run cases: %w", err)
	}
	return results, nil
}

// Label is the short case name, e.g. "14x7 I5 T90".
func Label(p rota.Params) string {
	return fmt.Sprintf("%dx%d I%d T%d", p.DutyCycleLength, p.RestCycleLength, p.InductionLength, p.HorizonDays)
}

type caseFile struct {
	Cases []rota.Params `yaml:"cases"`
}

// LoadCases reads a YAML case list:
//
//	cases:
//	  - {n: 14, m: 7, induction: 5, days: 90}
func LoadCases(r io.Reader) ([]rota.Params, error) {
	var f caseFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode cases: %w", err)
	}
	if len(f.Cases) == 0 {
		return nil, errors.New("decode cases: no cases listed")
	}
	return f.Cases, nil
}

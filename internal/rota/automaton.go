/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rota

import "fmt"

// Phase is the internal phase of a flexible worker's automaton.
type Phase uint8

const (
	PhasePre Phase = iota
	PhaseAscent
	PhaseInduction
	PhaseDuty
	PhaseDescent
	PhaseRest
)

func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhaseAscent:
		return "ascent"
	case PhaseInduction:
		return "induction"
	case PhaseDuty:
		return "duty"
	case PhaseDescent:
		return "descent"
	case PhaseRest:
		return "rest"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// WorkerState is the automaton state of one flexible worker at the start of a
// day. It is comparable and used directly inside memo keys.
type WorkerState struct {
	Phase              Phase
	DaysUntilStart     int
	FirstCycle         bool
	InductionRemaining int
	ConsecutiveDuty    int
	RestTaken          int
}

// InitialWorkerState returns the state of a worker that emits Wait for
// startDelay days and then ascends into its first (inducted) cycle.
func InitialWorkerState(p Params, startDelay int) WorkerState {
	st := WorkerState{
		Phase:              PhaseAscent,
		FirstCycle:         true,
		InductionRemaining: p.InductionLength,
	}
	if startDelay > 0 {
		st.Phase = PhasePre
		st.DaysUntilStart = startDelay
	}
	return st
}

// Transition is one legal way to spend the current day.
type Transition struct {
	Emit DayState
	Next WorkerState
}

// Options holds at most two alternatives for the current day.
type Options struct {
	items [2]Transition
	n     int
}

func (o *Options) add(t Transition) {
	o.items[o.n] = t
	o.n++
}

// Len returns the number of alternatives.
func (o Options) Len() int { return o.n }

// At returns the i-th alternative.
func (o Options) At(i int) Transition { return o.items[i] }

// Transitions enumerates the legal (emission, next state) pairs for a worker
// in state st, given the consecutive-duty ceiling currently searched. Where two
// continuations exist, staying in the current phase is listed first.
func Transitions(st WorkerState, p Params, ceiling int) Options {
	var opts Options

	switch st.Phase {
	case PhasePre:
		next := st
		next.DaysUntilStart--
		if next.DaysUntilStart <= 0 {
			next.DaysUntilStart = 0
			next.Phase = PhaseAscent
		}
		opts.add(Transition{Emit: Wait, Next: next})

	case PhaseAscent:
		next := st
		if st.FirstCycle && st.InductionRemaining > 0 {
			next.Phase = PhaseInduction
		} else {
			next.Phase = PhaseDuty
			next.ConsecutiveDuty = 0
		}
		opts.add(Transition{Emit: Ascent, Next: next})

	case PhaseInduction:
		next := st
		next.InductionRemaining--
		if next.InductionRemaining <= 0 {
			next.InductionRemaining = 0
			next.Phase = PhaseDuty
			next.ConsecutiveDuty = 0
		}
		opts.add(Transition{Emit: Induction, Next: next})

	case PhaseDuty:
		run := st.ConsecutiveDuty + 1
		if run < ceiling {
			next := st
			next.ConsecutiveDuty = run
			opts.add(Transition{Emit: Duty, Next: next})
		}
		if run >= MinDutyBlock {
			next := st
			next.Phase = PhaseDescent
			next.ConsecutiveDuty = 0
			opts.add(Transition{Emit: Duty, Next: next})
		}

	case PhaseDescent:
		next := st
		next.Phase = PhaseRest
		next.RestTaken = 0
		next.FirstCycle = false
		next.InductionRemaining = 0
		opts.add(Transition{Emit: Descent, Next: next})

	case PhaseRest:
		minRest := p.MinRestDays()
		// Saturate so that every rest state past the minimum shares one key.
		taken := min(st.RestTaken+1, minRest)

		stay := st
		stay.RestTaken = taken
		opts.add(Transition{Emit: Rest, Next: stay})

		if taken >= minRest {
			next := st
			next.Phase = PhaseAscent
			next.RestTaken = 0
			opts.add(Transition{Emit: Rest, Next: next})
		}
	}

	return opts
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rota

import "testing"

func TestTransitions(t *testing.T) {
	p := Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 2}

	tests := []struct {
		name      string
		state     WorkerState
		ceiling   int
		wantEmits []DayState
		wantNext  []Phase
	}{
		{
			name:      "pre counts down",
			state:     WorkerState{Phase: PhasePre, DaysUntilStart: 3},
			ceiling:   14,
			wantEmits: []DayState{Wait},
			wantNext:  []Phase{PhasePre},
		},
		{
			name:      "pre hands over to ascent",
			state:     WorkerState{Phase: PhasePre, DaysUntilStart: 1},
			ceiling:   14,
			wantEmits: []DayState{Wait},
			wantNext:  []Phase{PhaseAscent},
		},
		{
			name:      "first ascent leads to induction",
			state:     WorkerState{Phase: PhaseAscent, FirstCycle: true, InductionRemaining: 2},
			ceiling:   14,
			wantEmits: []DayState{Ascent},
			wantNext:  []Phase{PhaseInduction},
		},
		{
			name:      "later ascent skips induction",
			state:     WorkerState{Phase: PhaseAscent},
			ceiling:   14,
			wantEmits: []DayState{Ascent},
			wantNext:  []Phase{PhaseDuty},
		},
		{
			name:      "last induction day leads to duty",
			state:     WorkerState{Phase: PhaseInduction, FirstCycle: true, InductionRemaining: 1},
			ceiling:   14,
			wantEmits: []DayState{Induction},
			wantNext:  []Phase{PhaseDuty},
		},
		{
			name:      "first duty day must continue",
			state:     WorkerState{Phase: PhaseDuty},
			ceiling:   14,
			wantEmits: []DayState{Duty},
			wantNext:  []Phase{PhaseDuty},
		},
		{
			name:      "mid duty may continue or end",
			state:     WorkerState{Phase: PhaseDuty, ConsecutiveDuty: 4},
			ceiling:   14,
			wantEmits: []DayState{Duty, Duty},
			wantNext:  []Phase{PhaseDuty, PhaseDescent},
		},
		{
			name:      "duty at ceiling must end",
			state:     WorkerState{Phase: PhaseDuty, ConsecutiveDuty: 13},
			ceiling:   14,
			wantEmits: []DayState{Duty},
			wantNext:  []Phase{PhaseDescent},
		},
		{
			name:      "descent leads to rest",
			state:     WorkerState{Phase: PhaseDescent, FirstCycle: true},
			ceiling:   14,
			wantEmits: []DayState{Descent},
			wantNext:  []Phase{PhaseRest},
		},
		{
			name:      "short rest must continue",
			state:     WorkerState{Phase: PhaseRest, RestTaken: 1},
			ceiling:   14,
			wantEmits: []DayState{Rest},
			wantNext:  []Phase{PhaseRest},
		},
		{
			name:      "rest at minimum may continue or ascend",
			state:     WorkerState{Phase: PhaseRest, RestTaken: 4},
			ceiling:   14,
			wantEmits: []DayState{Rest, Rest},
			wantNext:  []Phase{PhaseRest, PhaseAscent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Transitions(tt.state, p, tt.ceiling)
			if opts.Len() != len(tt.wantEmits) {
				t.Fatalf("Transitions() len = %d, want %d", opts.Len(), len(tt.wantEmits))
			}
			for i := 0; i < opts.Len(); i++ {
				got := opts.At(i)
				if got.Emit != tt.wantEmits[i] {
					t.Errorf("option %d emit = %s, want %s", i, got.Emit, tt.wantEmits[i])
				}
				if got.Next.Phase != tt.wantNext[i] {
					t.Errorf("option %d next phase = %s, want %s", i, got.Next.Phase, tt.wantNext[i])
				}
			}
		})
	}
}

func TestTransitionsDescentClearsFirstCycle(t *testing.T) {
	p := Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 2}

	opts := Transitions(WorkerState{Phase: PhaseDescent, FirstCycle: true, InductionRemaining: 1}, p, 14)
	next := opts.At(0).Next
	if next.FirstCycle || next.InductionRemaining != 0 || next.RestTaken != 0 {
		t.Fatalf("descent left state %+v", next)
	}
}

func TestTransitionsRestSaturates(t *testing.T) {
	p := Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 2}
	minRest := p.MinRestDays()

	st := WorkerState{Phase: PhaseRest, RestTaken: minRest}
	stay := Transitions(st, p, 14).At(0).Next
	if stay != st {
		t.Fatalf("rest beyond minimum changed state: %+v -> %+v", st, stay)
	}
}

func TestInitialWorkerState(t *testing.T) {
	p := Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 5}

	if st := InitialWorkerState(p, 0); st.Phase != PhaseAscent || !st.FirstCycle || st.InductionRemaining != 5 {
		t.Fatalf("InitialWorkerState(0) = %+v", st)
	}
	if st := InitialWorkerState(p, 9); st.Phase != PhasePre || st.DaysUntilStart != 9 {
		t.Fatalf("InitialWorkerState(9) = %+v", st)
	}
}

func TestMinRestDays(t *testing.T) {
	tests := []struct {
		m    int
		want int
	}{
		{3, 1},
		{4, 2},
		{7, 5},
	}
	for _, tt := range tests {
		p := Params{RestCycleLength: tt.m}
		if got := p.MinRestDays(); got != tt.want {
			t.Errorf("MinRestDays(M=%d) = %d, want %d", tt.m, got, tt.want)
		}
	}
}

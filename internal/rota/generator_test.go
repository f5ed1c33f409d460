/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rota

import (
	"context"
	"errors"
	"testing"
)

func TestGenerateRejectsInvalidConfiguration(t *testing.T) {
	gen := NewGenerator(DefaultConfig())

	tests := []struct {
		name  string
		p     Params
		field string
	}{
		{"induction too long for cycle", Params{DutyCycleLength: 5, RestCycleLength: 4, InductionLength: 5, HorizonDays: 30}, "duty_cycle_length"},
		{"induction zero", Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 0, HorizonDays: 30}, "induction_length"},
		{"induction above max", Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 6, HorizonDays: 30}, "induction_length"},
		{"rest too short", Params{DutyCycleLength: 14, RestCycleLength: 2, InductionLength: 3, HorizonDays: 30}, "rest_cycle_length"},
		{"no horizon", Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 3}, "horizon_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.Generate(context.Background(), tt.p)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.field {
				t.Fatalf("err = %#v, want field %q", err, tt.field)
			}
		})
	}
}

func TestGenerateForRequiredDutyDays(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	base := Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 5}

	prev := 0
	for _, required := range []int{10, 20, 40} {
		p := base
		p.RequiredDutyDays = required

		res, err := gen.GenerateForRequiredDutyDays(context.Background(), p)
		if err != nil {
			t.Fatalf("required %d: %v", required, err)
		}
		if res.CoverageStartDay != 6 {
			t.Fatalf("CoverageStartDay = %d, want 6", res.CoverageStartDay)
		}
		if res.HorizonDays != res.CoverageStartDay+required {
			t.Fatalf("required %d: HorizonDays = %d, want %d", required, res.HorizonDays, res.CoverageStartDay+required)
		}
		if res.Schedule.Days() != res.HorizonDays {
			t.Fatalf("schedule has %d days, horizon %d", res.Schedule.Days(), res.HorizonDays)
		}
		if res.HorizonDays < prev {
			t.Fatalf("horizon shrank from %d to %d as required grew", prev, res.HorizonDays)
		}
		prev = res.HorizonDays

		covered := 0
		for day := res.CoverageStartDay; day < res.Schedule.Days(); day++ {
			if res.Schedule.DutyCount(day) == 2 {
				covered++
			}
		}
		if covered != required {
			t.Fatalf("required %d: covered %d days", required, covered)
		}
		// The last day is the one that reaches the target.
		if res.Schedule.DutyCount(res.HorizonDays-1) != 2 {
			t.Fatal("truncated schedule should end on a covered day")
		}
	}
}

func TestGenerateForRequiredDutyDaysExhaustsAttempts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CeilingSlack = 0
	cfg.ExtenderAttempts = 2
	p := Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 5, RequiredDutyDays: 20}

	_, err := NewGenerator(cfg).GenerateForRequiredDutyDays(context.Background(), p)
	if !errors.Is(err, ErrInfeasibleSchedule) {
		t.Fatalf("err = %v, want ErrInfeasibleSchedule", err)
	}
}

func TestGenerateForRequiredDutyDaysValidatesTarget(t *testing.T) {
	p := Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 5}

	_, err := NewGenerator(DefaultConfig()).GenerateForRequiredDutyDays(context.Background(), p)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestGenerateForRequiredDutyDaysPropagatesBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NodeBudget = 10
	p := Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 5, RequiredDutyDays: 20}

	_, err := NewGenerator(cfg).GenerateForRequiredDutyDays(context.Background(), p)
	if !errors.Is(err, ErrSearchBudgetExceeded) {
		t.Fatalf("err = %v, want ErrSearchBudgetExceeded", err)
	}
}

func TestCoverageStartDay(t *testing.T) {
	for i := MinInduction; i <= MaxInduction; i++ {
		p := Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: i}
		if got := CoverageStartDay(p); got != i+1 {
			t.Errorf("CoverageStartDay(I=%d) = %d, want %d", i, got, i+1)
		}
	}
}

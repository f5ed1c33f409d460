package planner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/crewrota/internal/rota"
)

var scenario = rota.Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 5, HorizonDays: 45}

func newTestService(mutate func(*rota.Config)) *Service {
	cfg := rota.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, 10*time.Second, zerolog.Nop())
}

func TestPlanSolves(t *testing.T) {
	svc := newTestService(nil)

	plan, err := svc.Plan(context.Background(), scenario, false)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.ID == "" || plan.Degraded || plan.Cached {
		t.Fatalf("unexpected plan flags: %+v", plan)
	}
	if plan.HorizonDays != 45 || plan.CoverageStartDay != 6 || plan.DutyCeiling != 16 {
		t.Fatalf("unexpected plan shape: horizon=%d start=%d ceiling=%d", plan.HorizonDays, plan.CoverageStartDay, plan.DutyCeiling)
	}
	if len(rota.CoverageFindings(plan.Findings)) != 0 {
		t.Fatalf("solved plan has coverage findings: %v", plan.Findings)
	}
}

func TestPlanInfeasibleWithoutFallback(t *testing.T) {
	svc := newTestService(func(c *rota.Config) { c.CeilingSlack = 0 })

	_, err := svc.Plan(context.Background(), scenario, false)
	if !errors.Is(err, rota.ErrInfeasibleSchedule) {
		t.Fatalf("err = %v, want ErrInfeasibleSchedule", err)
	}
}

func TestPlanFallsBackToBaseline(t *testing.T) {
	svc := newTestService(func(c *rota.Config) { c.CeilingSlack = 0 })

	plan, err := svc.Plan(context.Background(), scenario, true)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !plan.Degraded || plan.DutyCeiling != 0 {
		t.Fatalf("expected degraded baseline, got degraded=%v ceiling=%d", plan.Degraded, plan.DutyCeiling)
	}
	if len(plan.Findings) < 2 {
		t.Fatalf("expected warning plus baseline findings, got %v", plan.Findings)
	}
	first := plan.Findings[0]
	if first.Day != 1 || first.Kind != rota.FindingWarning || !strings.HasPrefix(first.Message, "warning: ") {
		t.Fatalf("unexpected leading finding: %+v", first)
	}
	if plan.Schedule.Days() != 45 {
		t.Fatalf("baseline has %d days, want 45", plan.Schedule.Days())
	}
}

func TestPlanRequiredFallbackUsesTargetHorizon(t *testing.T) {
	svc := newTestService(func(c *rota.Config) {
		c.CeilingSlack = 0
		c.ExtenderAttempts = 1
	})
	p := rota.Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 5, RequiredDutyDays: 30}

	plan, err := svc.PlanRequiredDutyDays(context.Background(), p, true)
	if err != nil {
		t.Fatalf("PlanRequiredDutyDays: %v", err)
	}
	if !plan.Degraded || plan.HorizonDays != 36 {
		t.Fatalf("degraded=%v horizon=%d, want degraded horizon 36", plan.Degraded, plan.HorizonDays)
	}
}

func TestPlanConfigurationErrorNeverDegrades(t *testing.T) {
	svc := newTestService(nil)
	p := rota.Params{DutyCycleLength: 5, RestCycleLength: 4, InductionLength: 5, HorizonDays: 30}

	_, err := svc.Plan(context.Background(), p, true)
	if !errors.Is(err, rota.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestPlanRequiredDutyDays(t *testing.T) {
	svc := newTestService(nil)
	p := rota.Params{DutyCycleLength: 14, RestCycleLength: 7, InductionLength: 5, RequiredDutyDays: 20}

	plan, err := svc.PlanRequiredDutyDays(context.Background(), p, false)
	if err != nil {
		t.Fatalf("PlanRequiredDutyDays: %v", err)
	}
	if plan.HorizonDays != 26 || plan.Schedule.Days() != 26 {
		t.Fatalf("horizon = %d (schedule %d), want 26", plan.HorizonDays, plan.Schedule.Days())
	}
}

func TestDegradable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&rota.InfeasibleError{}, true},
		{rota.ErrSearchBudgetExceeded, true},
		{context.DeadlineExceeded, true},
		{context.Canceled, false},
		{&rota.ConfigurationError{Field: "n"}, false},
	}
	for _, tt := range tests {
		if got := Degradable(tt.err); got != tt.want {
			t.Errorf("Degradable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestValidateDefaultsHorizonToScheduleLength(t *testing.T) {
	svc := newTestService(nil)
	plan, err := svc.Plan(context.Background(), scenario, false)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	got := svc.Validate(context.Background(), plan.Schedule, 0, plan.CoverageStartDay)
	if len(got) != len(plan.Findings) {
		t.Fatalf("Validate returned %d findings, plan had %d", len(got), len(plan.Findings))
	}
}

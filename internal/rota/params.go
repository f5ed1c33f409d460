/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rota

import (
	"errors"
	"fmt"
)

const (
	// MinDutyBlock is the shortest duty run a flexible worker may work.
	MinDutyBlock = 2

	MinRestCycleLength = 3
	MinInduction       = 1
	MaxInduction       = 5
)

var (
	// ErrInvalidConfiguration marks parameters that cannot yield a schedule.
	ErrInvalidConfiguration = errors.New("invalid rotation configuration")

	// ErrInfeasibleSchedule marks valid parameters for which no duty ceiling
	// or horizon produces a schedule meeting the coverage invariant.
	ErrInfeasibleSchedule = errors.New("no feasible schedule")

	// ErrSearchBudgetExceeded is returned when the solver hits its node budget.
	ErrSearchBudgetExceeded = errors.New("search budget exceeded")
)

// ConfigurationError describes which parameter was rejected and why.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// InfeasibleError reports the parameters and the last ceiling searched.
type InfeasibleError struct {
	Params     Params
	MaxCeiling int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("no feasible schedule for N=%d M=%d induction=%d over %d days (duty ceiling searched up to %d)",
		e.Params.DutyCycleLength, e.Params.RestCycleLength, e.Params.InductionLength, e.Params.HorizonDays, e.MaxCeiling)
}

func (e *InfeasibleError) Is(target error) bool {
	return target == ErrInfeasibleSchedule
}

// Params is the parameter record accepted by the generator.
//
// HorizonDays drives Generate; RequiredDutyDays drives
// GenerateForRequiredDutyDays, which derives its own horizon.
type Params struct {
	DutyCycleLength  int `json:"duty_cycle_length" yaml:"n"`
	RestCycleLength  int `json:"rest_cycle_length" yaml:"m"`
	InductionLength  int `json:"induction_length" yaml:"induction"`
	HorizonDays      int `json:"horizon_days,omitempty" yaml:"days,omitempty"`
	RequiredDutyDays int `json:"required_duty_days,omitempty" yaml:"required_duty_days,omitempty"`
}

// validateCycle checks everything except the horizon.
func (p Params) validateCycle() error {
	if p.InductionLength < MinInduction || p.InductionLength > MaxInduction {
		return &ConfigurationError{Field: "induction_length", Reason: fmt.Sprintf("must be in [%d,%d], got %d", MinInduction, MaxInduction, p.InductionLength)}
	}
	if p.DutyCycleLength < 1 {
		return &ConfigurationError{Field: "duty_cycle_length", Reason: fmt.Sprintf("must be at least 1, got %d", p.DutyCycleLength)}
	}
	if p.DutyCycleLength-p.InductionLength < MinDutyBlock {
		return &ConfigurationError{
			Field:  "duty_cycle_length",
			Reason: fmt.Sprintf("(%d) must be at least induction (%d) + %d to leave a real duty block", p.DutyCycleLength, p.InductionLength, MinDutyBlock),
		}
	}
	if p.RestCycleLength < MinRestCycleLength {
		return &ConfigurationError{Field: "rest_cycle_length", Reason: fmt.Sprintf("must be at least %d to fit descent, rest and ascent, got %d", MinRestCycleLength, p.RestCycleLength)}
	}
	return nil
}

// Validate rejects structurally invalid inputs for a fixed-horizon run.
func (p Params) Validate() error {
	if err := p.validateCycle(); err != nil {
		return err
	}
	if p.HorizonDays < 1 {
		return &ConfigurationError{Field: "horizon_days", Reason: fmt.Sprintf("must be at least 1, got %d", p.HorizonDays)}
	}
	return nil
}

// ValidateRequired rejects invalid inputs for a required-duty-days run.
func (p Params) ValidateRequired() error {
	if err := p.validateCycle(); err != nil {
		return err
	}
	if p.RequiredDutyDays < 1 {
		return &ConfigurationError{Field: "required_duty_days", Reason: fmt.Sprintf("must be at least 1, got %d", p.RequiredDutyDays)}
	}
	return nil
}

// CycleLength is N+M.
func (p Params) CycleLength() int { return p.DutyCycleLength + p.RestCycleLength }

// MinRestDays is the shortest rest block a flexible worker may take.
func (p Params) MinRestDays() int {
	return max(1, p.RestCycleLength-2)
}

// CoverageStartDay is the first day two workers can be on duty together.
func CoverageStartDay(p Params) int {
	return 1 + p.InductionLength
}

// SeedOffset is the start delay of the seeded flexible worker, chosen so that
// its first duty day lands on the anchor's first descent day.
func SeedOffset(p Params) int {
	return max(0, p.DutyCycleLength-p.InductionLength)
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rota

import (
	"fmt"
	"sort"
)

// FindingKind separates per-worker pattern problems from coverage problems.
type FindingKind string

const (
	FindingPattern  FindingKind = "pattern"
	FindingCoverage FindingKind = "coverage"
	FindingWarning  FindingKind = "warning"
)

// Finding is one validation problem on one day.
type Finding struct {
	Day     int         `json:"day" yaml:"day"`
	Kind    FindingKind `json:"kind" yaml:"kind"`
	Worker  WorkerID    `json:"worker,omitempty" yaml:"worker,omitempty"`
	Message string      `json:"message" yaml:"message"`
}

func (f Finding) String() string {
	if f.Worker != "" {
		return fmt.Sprintf("day %d: %s: %s", f.Day, f.Worker, f.Message)
	}
	return fmt.Sprintf("day %d: %s", f.Day, f.Message)
}

// forbiddenPairs are adjacent transitions no worker may make.
var forbiddenPairs = []struct {
	first, second DayState
	message       string
}{
	{Ascent, Ascent, "ascent on two consecutive days"},
	{Ascent, Descent, "descent immediately after ascent"},
	{Descent, Ascent, "ascent immediately after descent with no rest"},
}

// Validate scans a schedule for pattern and coverage violations over the first
// horizonDays days. Under-coverage before graceDays is expected ramp-up and is
// not reported; three workers on duty is reported on any day.
func Validate(s Schedule, horizonDays, graceDays int) []Finding {
	days := min(horizonDays, s.Days())
	if days <= 0 {
		return []Finding{}
	}

	findings := make([]Finding, 0)
	order := make(map[WorkerID]int, len(Workers))
	for i, id := range Workers {
		order[id] = i
		findings = append(findings, patternFindings(id, s.seq(id)[:days])...)
	}

	for day := 0; day < days; day++ {
		switch n := s.DutyCount(day); {
		case n == 3:
			findings = append(findings, Finding{Day: day, Kind: FindingCoverage, Message: "3 workers on duty"})
		case day < graceDays:
		case n == 1:
			findings = append(findings, Finding{Day: day, Kind: FindingCoverage, Message: "only 1 worker on duty"})
		case n == 0:
			findings = append(findings, Finding{Day: day, Kind: FindingCoverage, Message: "no worker on duty"})
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Kind != b.Kind {
			return a.Kind == FindingPattern
		}
		return order[a.Worker] < order[b.Worker]
	})
	return findings
}

func patternFindings(id WorkerID, seq Sequence) []Finding {
	var out []Finding
	for day := 1; day < len(seq); day++ {
		for _, pair := range forbiddenPairs {
			if seq[day-1] == pair.first && seq[day] == pair.second {
				out = append(out, Finding{Day: day, Kind: FindingPattern, Worker: id, Message: pair.message})
			}
		}
	}
	for day := 1; day+1 < len(seq); day++ {
		if seq[day] == Duty && seq[day-1] != Duty && seq[day+1] != Duty {
			out = append(out, Finding{Day: day, Kind: FindingPattern, Worker: id, Message: "isolated single duty day"})
		}
	}
	return out
}

// CoverageFindings filters findings down to coverage problems.
func CoverageFindings(findings []Finding) []Finding {
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if f.Kind == FindingCoverage {
			out = append(out, f)
		}
	}
	return out
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package rota synthesizes and validates three-worker rotation timetables.
//
// One anchor worker follows a fixed periodic pattern. The two flexible workers
// are assigned day by day by a backtracking coverage solver so that exactly two
// workers are on duty on every day from the coverage-start day onward.
package rota

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DayState is the phase a single worker occupies on a single day.
type DayState uint8

const (
	Wait DayState = iota
	Ascent
	Induction
	Duty
	Descent
	Rest
)

var dayStateNames = [...]string{
	Wait:      "wait",
	Ascent:    "ascent",
	Induction: "induction",
	Duty:      "duty",
	Descent:   "descent",
	Rest:      "rest",
}

var dayStateCodes = [...]byte{
	Wait:      '-',
	Ascent:    'A',
	Induction: 'I',
	Duty:      'D',
	Descent:   'E',
	Rest:      'R',
}

// String returns the lowercase name of the state.
func (s DayState) String() string {
	if int(s) < len(dayStateNames) {
		return dayStateNames[s]
	}
	return fmt.Sprintf("daystate(%d)", uint8(s))
}

// Code returns the one-letter grid code of the state.
func (s DayState) Code() byte {
	if int(s) < len(dayStateCodes) {
		return dayStateCodes[s]
	}
	return '?'
}

// Valid reports whether s is one of the defined states.
func (s DayState) Valid() bool {
	return int(s) < len(dayStateNames)
}

// ParseDayState accepts either the lowercase name or the one-letter code.
func ParseDayState(v string) (DayState, error) {
	v = strings.TrimSpace(v)
	if len(v) == 1 {
		for i, c := range dayStateCodes {
			if c == v[0] {
				return DayState(i), nil
			}
		}
	}
	lower := strings.ToLower(v)
	for i, name := range dayStateNames {
		if name == lower {
			return DayState(i), nil
		}
	}
	return Wait, fmt.Errorf("unknown day state %q", v)
}

func (s DayState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid day state %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *DayState) UnmarshalText(text []byte) error {
	parsed, err := ParseDayState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Sequence is one worker's DayState per day.
type Sequence []DayState

// Codes renders the sequence as a string of one-letter codes.
func (q Sequence) Codes() string {
	b := make([]byte, len(q))
	for i, s := range q {
		b[i] = s.Code()
	}
	return string(b)
}

// ParseSequence decodes a string of one-letter codes.
func ParseSequence(codes string) (Sequence, error) {
	out := make(Sequence, 0, len(codes))
	for i := 0; i < len(codes); i++ {
		s, err := ParseDayState(codes[i : i+1])
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Count returns how many days of the sequence are in state s.
func (q Sequence) Count(s DayState) int {
	n := 0
	for _, v := range q {
		if v == s {
			n++
		}
	}
	return n
}

// WorkerID names one of the three workers of a rotation.
type WorkerID string

const (
	WorkerAnchor WorkerID = "anchor"
	WorkerFlexA  WorkerID = "flex-a"
	WorkerFlexB  WorkerID = "flex-b"
)

// Workers lists the worker ids in presentation order.
var Workers = [3]WorkerID{WorkerAnchor, WorkerFlexA, WorkerFlexB}

// Schedule is the three-worker timetable produced by one generation call.
// Sequences are owned by the schedule; accessors hand out copies.
type Schedule struct {
	anchor Sequence
	flexA  Sequence
	flexB  Sequence

	dutyCeiling int
}

// NewSchedule assembles a schedule from three equal-length sequences.
func NewSchedule(anchor, flexA, flexB Sequence, dutyCeiling int) (Schedule, error) {
	if len(anchor) != len(flexA) || len(anchor) != len(flexB) {
		return Schedule{}, fmt.Errorf("sequence lengths differ: %d/%d/%d", len(anchor), len(flexA), len(flexB))
	}
	return Schedule{
		anchor:      append(Sequence(nil), anchor...),
		flexA:       append(Sequence(nil), flexA...),
		flexB:       append(Sequence(nil), flexB...),
		dutyCeiling: dutyCeiling,
	}, nil
}

// Days returns the horizon length.
func (s Schedule) Days() int { return len(s.anchor) }

// DutyCeiling is the consecutive-duty ceiling the solver settled on, or 0 for
// schedules that were not produced by the solver.
func (s Schedule) DutyCeiling() int { return s.dutyCeiling }

func (s Schedule) seq(id WorkerID) Sequence {
	switch id {
	case WorkerAnchor:
		return s.anchor
	case WorkerFlexA:
		return s.flexA
	case WorkerFlexB:
		return s.flexB
	}
	return nil
}

// Worker returns a copy of one worker's sequence.
func (s Schedule) Worker(id WorkerID) Sequence {
	return append(Sequence(nil), s.seq(id)...)
}

// At returns the state of a worker on a day.
func (s Schedule) At(id WorkerID, day int) DayState {
	return s.seq(id)[day]
}

// DutyCount returns how many workers are on duty on day.
func (s Schedule) DutyCount(day int) int {
	n := 0
	for _, id := range Workers {
		if s.seq(id)[day] == Duty {
			n++
		}
	}
	return n
}

// Truncate returns the first days of the schedule.
func (s Schedule) Truncate(days int) Schedule {
	if days >= s.Days() {
		return s
	}
	if days < 0 {
		days = 0
	}
	out, _ := NewSchedule(s.anchor[:days], s.flexA[:days], s.flexB[:days], s.dutyCeiling)
	return out
}

type scheduleJSON struct {
	Workers     map[WorkerID]Sequence `json:"workers" yaml:"workers"`
	DutyCeiling int                   `json:"duty_ceiling,omitempty" yaml:"duty_ceiling,omitempty"`
}

func (s Schedule) wire() scheduleJSON {
	return scheduleJSON{
		Workers: map[WorkerID]Sequence{
			WorkerAnchor: s.anchor,
			WorkerFlexA:  s.flexA,
			WorkerFlexB:  s.flexB,
		},
		DutyCeiling: s.dutyCeiling,
	}
}

func (s *Schedule) fromWire(w scheduleJSON) error {
	for _, id := range Workers {
		if _, ok := w.Workers[id]; !ok {
			return fmt.Errorf("schedule is missing worker %q", id)
		}
	}
	built, err := NewSchedule(w.Workers[WorkerAnchor], w.Workers[WorkerFlexA], w.Workers[WorkerFlexB], w.DutyCeiling)
	if err != nil {
		return err
	}
	*s = built
	return nil
}

func (s Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

func (s *Schedule) UnmarshalJSON(data []byte) error {
	var w scheduleJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return s.fromWire(w)
}

// MarshalYAML implements yaml.Marshaler.
func (s Schedule) MarshalYAML() (any, error) {
	return s.wire(), nil
}

// UnmarshalYAML uses the function-style unmarshaler that yaml.v3 still honors,
// which keeps this package free of a yaml import.
func (s *Schedule) UnmarshalYAML(unmarshal func(any) error) error {
	var w scheduleJSON
	if err := unmarshal(&w); err != nil {
		return err
	}
	return s.fromWire(w)
}

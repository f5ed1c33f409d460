/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rota

// AnchorPattern expands the fixed periodic rotation over horizonDays, starting
// offsetDays into the horizon. Each cycle is one ascent day, N work days
// (the first InductionLength of them onboarding in the first cycle only),
// one descent day and M-2 rest days.
func AnchorPattern(offsetDays int, p Params, horizonDays int) Sequence {
	if horizonDays <= 0 {
		return Sequence{}
	}
	out := make(Sequence, horizonDays)
	cycle := p.CycleLength()
	if cycle <= 0 {
		return out
	}

	for day := range out {
		if day < offsetDays {
			out[day] = Wait
			continue
		}
		t := day - offsetDays
		cycleIndex := t / cycle
		dayInCycle := t % cycle

		switch {
		case dayInCycle == 0:
			out[day] = Ascent
		case dayInCycle <= p.DutyCycleLength:
			if cycleIndex == 0 && dayInCycle <= p.InductionLength {
				out[day] = Induction
			} else {
				out[day] = Duty
			}
		case dayInCycle == p.DutyCycleLength+1:
			out[day] = Descent
		default:
			out[day] = Rest
		}
	}
	return out
}

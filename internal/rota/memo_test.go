/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rota

import "testing"

func TestFailureMemoEvictsLeastRecentlyUsed(t *testing.T) {
	m := newFailureMemo(2)
	k1 := memoKey{day: 1, ceiling: 14}
	k2 := memoKey{day: 2, ceiling: 14}
	k3 := memoKey{day: 3, ceiling: 14}

	m.add(k1)
	m.add(k2)
	if !m.contains(k1) {
		t.Fatal("expected k1 to be present")
	}
	m.add(k3)

	if m.len() != 2 {
		t.Fatalf("len = %d, want 2", m.len())
	}
	if m.contains(k2) {
		t.Fatal("k2 should have been evicted as least recently used")
	}
	if !m.contains(k1) || !m.contains(k3) {
		t.Fatal("k1 and k3 should survive")
	}
	if m.evictions != 1 {
		t.Fatalf("evictions = %d, want 1", m.evictions)
	}
}

func TestFailureMemoKeyDistinguishesWorkerState(t *testing.T) {
	m := newFailureMemo(8)
	a := WorkerState{Phase: PhaseDuty, ConsecutiveDuty: 3}
	b := WorkerState{Phase: PhaseRest, RestTaken: 1}

	m.add(memoKey{day: 5, ceiling: 14, a: a, b: b})
	if m.contains(memoKey{day: 5, ceiling: 14, a: b, b: a}) {
		t.Fatal("swapped worker states must not collide")
	}
	if m.contains(memoKey{day: 5, ceiling: 15, a: a, b: b}) {
		t.Fatal("different ceilings must not collide")
	}
	if !m.contains(memoKey{day: 5, ceiling: 14, a: a, b: b}) {
		t.Fatal("identical key should hit")
	}
}

func TestFailureMemoReset(t *testing.T) {
	m := newFailureMemo(4)
	m.add(memoKey{day: 1})
	m.reset()
	if m.len() != 0 || m.contains(memoKey{day: 1}) {
		t.Fatal("reset should empty the memo")
	}
}

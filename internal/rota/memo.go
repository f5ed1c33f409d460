/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rota

import "container/list"

// memoKey identifies a composite search state that is known to be a dead end.
type memoKey struct {
	day     int
	ceiling int
	a       WorkerState
	b       WorkerState
}

// failureMemo is a bounded LRU set of dead-end search states. It is valid for
// a single ceiling only and is reset between deepening steps.
type failureMemo struct {
	capacity  int
	order     *list.List
	index     map[memoKey]*list.Element
	hits      int64
	evictions int64
}

func newFailureMemo(capacity int) *failureMemo {
	if capacity <= 0 {
		capacity = DefaultMemoCapacity
	}
	return &failureMemo{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[memoKey]*list.Element),
	}
}

func (m *failureMemo) contains(k memoKey) bool {
	el, ok := m.index[k]
	if !ok {
		return false
	}
	m.order.MoveToFront(el)
	m.hits++
	return true
}

func (m *failureMemo) add(k memoKey) {
	if el, ok := m.index[k]; ok {
		m.order.MoveToFront(el)
		return
	}
	m.index[k] = m.order.PushFront(k)
	for m.order.Len() > m.capacity {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.index, oldest.Value.(memoKey))
		m.evictions++
	}
}

func (m *failureMemo) len() int { return m.order.Len() }

func (m *failureMemo) reset() {
	m.order.Init()
	m.index = make(map[memoKey]*list.Element)
}

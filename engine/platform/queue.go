package platform

import "github.com/hubastard/canopy/engine/core"

// EventQueue is a FIFO of native events owned by the pump thread.
type EventQueue struct {
	items []core.Event
	head  int
}

func (q *EventQueue) Push(ev core.Event) { q.items = append(q.items, ev) }

func (q *EventQueue) Pop() (core.Event, bool) {
	if q.head >= len(q.items) {
		return nil, false
	}
	ev := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return ev, true
}

func (q *EventQueue) Len() int { return len(q.items) - q.head }

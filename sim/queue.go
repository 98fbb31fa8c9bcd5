// Implements the RequestQueue, which holds all requests waiting to be
// dispatched. Requests are enqueued on arrival and handed to dispatcher
// workers in strict FIFO order.

package sim

import (
	"fmt"
	"strings"
)

// RequestQueue is a bounded FIFO queue with cooperative blocking semantics:
// a Get on an empty queue parks the caller's continuation, and the next
// TryPut hands the request straight to the oldest parked getter. Parked
// getters are woken in FIFO order.
type RequestQueue struct {
	eng      *Engine
	capacity int // 0 means unbounded
	items    []*Request
	waiters  []func(*Request)
}

// NewRequestQueue creates a queue. capacity 0 means unbounded.
func NewRequestQueue(eng *Engine, capacity int) *RequestQueue {
	return &RequestQueue{eng: eng, capacity: capacity}
}

// Len returns the number of requests currently queued.
func (q *RequestQueue) Len() int {
	return len(q.items)
}

// Capacity returns the configured bound, 0 if unbounded.
func (q *RequestQueue) Capacity() int {
	return q.capacity
}

// TryPut appends a request, or delivers it directly to the oldest parked
// getter. It returns false when the queue is at capacity; the caller decides
// what a failed enqueue means (the generator rejects with queue_full).
func (q *RequestQueue) TryPut(r *Request) bool {
	if len(q.waiters) > 0 {
		fn := q.waiters[0]
		q.waiters = q.waiters[1:]
		// Resume the getter as a fresh event at the current tick so it runs
		// after the putter's event completes.
		q.eng.Schedule(0, func() { fn(r) })
		return true
	}
	if q.capacity > 0 && len(q.items) >= q.capacity {
		return false
	}
	q.items = append(q.items, r)
	return true
}

// Get delivers the front request to fn, or parks fn until one arrives.
// Delivery always happens as a scheduled event, never synchronously, so a
// getter that immediately calls Get again cannot grow the stack.
func (q *RequestQueue) Get(fn func(*Request)) {
	if len(q.items) > 0 {
		r := q.items[0]
		q.items = q.items[1:]
		q.eng.Schedule(0, func() { fn(r) })
		return
	}
	q.waiters = append(q.waiters, fn)
}

// Items returns the queued requests in order, oldest first. The slice
// aliases the queue's backing store and must not be mutated.
func (q *RequestQueue) Items() []*Request {
	return q.items
}

// Waiters returns the number of parked getters, for introspection in tests.
func (q *RequestQueue) Waiters() int {
	return len(q.waiters)
}

func (q *RequestQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, r := range q.items {
		sb.WriteString(fmt.Sprint(r.ID))
		if i < len(q.items)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// sim/engine.go
package sim

import (
	"container/heap"
	"fmt"

	"github.com/sirupsen/logrus"
)

// TicksPerSecond is the virtual-clock resolution: one tick is a microsecond.
// Configuration is expressed in seconds and converted at the boundary.
const TicksPerSecond = 1_000_000

// DurationToTicks converts a duration in seconds to virtual-clock ticks.
func DurationToTicks(seconds float64) int64 {
	return int64(seconds * TicksPerSecond)
}

// TicksToSeconds converts virtual-clock ticks back to seconds.
func TicksToSeconds(ticks int64) float64 {
	return float64(ticks) / TicksPerSecond
}

// timerEvent is a scheduled callback. Events due at the same tick resolve
// in scheduling order (seq is assigned when the event enters the heap).
type timerEvent struct {
	time int64
	seq  int64
	fn   func()
}

// eventHeap implements heap.Interface and orders events by (timestamp, seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []*timerEvent

func (eh eventHeap) Len() int { return len(eh) }
func (eh eventHeap) Less(i, j int) bool {
	if eh[i].time != eh[j].time {
		return eh[i].time < eh[j].time
	}
	return eh[i].seq < eh[j].seq
}
func (eh eventHeap) Swap(i, j int) { eh[i], eh[j] = eh[j], eh[i] }

func (eh *eventHeap) Push(x any) {
	*eh = append(*eh, x.(*timerEvent))
}

func (eh *eventHeap) Pop() any {
	old := *eh
	n := len(old)
	item := old[n-1]
	*eh = old[0 : n-1]
	return item
}

// Engine is the virtual clock and event loop. All simulated activities are
// cooperative: each runs as a callback scheduled at a tick, and suspends only
// by scheduling its continuation (a timeout, a queue wait, a slot wait).
// The engine is strictly single-threaded; callers drive it in bounded chunks
// with RunUntil so observers can sample state between chunks.
type Engine struct {
	clock   int64
	events  eventHeap
	nextSeq int64
}

// NewEngine creates an engine with the clock at tick zero.
func NewEngine() *Engine {
	return &Engine{events: make(eventHeap, 0)}
}

// Now returns the current simulated time in ticks.
func (e *Engine) Now() int64 {
	return e.clock
}

// Schedule runs fn after delay ticks of virtual time.
// A negative delay is treated as zero.
func (e *Engine) Schedule(delay int64, fn func()) {
	if delay < 0 {
		delay = 0
	}
	e.ScheduleAt(e.clock+delay, fn)
}

// ScheduleAt runs fn at absolute tick t. Ties at the same tick are broken
// by scheduling order (FIFO).
func (e *Engine) ScheduleAt(t int64, fn func()) {
	if t < e.clock {
		t = e.clock
	}
	e.nextSeq++
	heap.Push(&e.events, &timerEvent{time: t, seq: e.nextSeq, fn: fn})
}

// Pending returns the number of events waiting in the heap.
func (e *Engine) Pending() int {
	return len(e.events)
}

// RunUntil executes every event due at or before tick t, then advances the
// clock to t. Events scheduled past t stay in the heap, so a later RunUntil
// resumes exactly where this one left off.
func (e *Engine) RunUntil(t int64) {
	for len(e.events) > 0 && e.events[0].time <= t {
		ev := heap.Pop(&e.events).(*timerEvent)
		if ev.time < e.clock {
			panic(fmt.Sprintf("virtual clock went backwards: %d < %d", ev.time, e.clock))
		}
		e.clock = ev.time
		logrus.Debugf("[tick %07d] executing event #%d", e.clock, ev.seq)
		ev.fn()
	}
	if t > e.clock {
		e.clock = t
	}
}

// Run executes events until the heap drains or the clock passes horizon.
func (e *Engine) Run(horizon int64) {
	e.RunUntil(horizon)
	logrus.Debugf("[tick %07d] event loop drained", e.clock)
}

// Defines the Request struct that models an individual request's passage
// through the system: arrival, queueing, processing, and either completion
// or rejection.

package sim

import "fmt"

// RejectReason classifies why a request was turned away. Rejections are
// expected outcomes under load, recorded and counted, never raised as faults.
type RejectReason string

const (
	// RejectQueueFull covers both the in-flight cap fast path and a full queue.
	RejectQueueFull RejectReason = "queue_full"
	// RejectWaitTimeout means the request sat in the queue past the max wait time.
	RejectWaitTimeout RejectReason = "wait_timeout"
	// RejectNoNodes means the balancer had no active node to offer.
	RejectNoNodes RejectReason = "no_nodes"
)

// unsetTime marks a lifecycle timestamp that has not been stamped yet.
const unsetTime int64 = -1

// Request models a single request's lifecycle. Timestamps are in ticks and
// stamped exactly once: arrival by the generator, queue entry by the
// generator on enqueue, start by the node when processing begins, finish by
// the node when it ends. A request is terminal once either FinishTime is set
// or Rejected is true, never both.
type Request struct {
	ID             int64
	ArrivalTime    int64
	QueueEntryTime int64
	StartTime      int64
	FinishTime     int64
	NodeID         int   // pool index of the node that processed it, -1 if none
	ServiceTime    int64 // pre-generated processing duration in ticks
	Rejected       bool
	RejectedReason RejectReason
}

// NewRequest creates a request arriving at the given tick with a
// pre-generated service time. All later timestamps start unset.
func NewRequest(id int64, arrivalTime int64, serviceTime int64) *Request {
	return &Request{
		ID:             id,
		ArrivalTime:    arrivalTime,
		QueueEntryTime: unsetTime,
		StartTime:      unsetTime,
		FinishTime:     unsetTime,
		NodeID:         -1,
		ServiceTime:    serviceTime,
	}
}

// ResponseTime returns finish - arrival in seconds. The second return is
// false while the request is unfinished.
func (r *Request) ResponseTime() (float64, bool) {
	if r.FinishTime == unsetTime {
		return 0, false
	}
	return TicksToSeconds(r.FinishTime - r.ArrivalTime), true
}

// WaitTime returns start - queue entry in seconds. The second return is
// false until processing has started.
func (r *Request) WaitTime() (float64, bool) {
	if r.StartTime == unsetTime || r.QueueEntryTime == unsetTime {
		return 0, false
	}
	return TicksToSeconds(r.StartTime - r.QueueEntryTime), true
}

// Terminal reports whether the request reached one of the two end states.
func (r *Request) Terminal() bool {
	return r.Rejected || r.FinishTime != unsetTime
}

func (r Request) String() string {
	switch {
	case r.Rejected:
		return fmt.Sprintf("Request(#%d rejected: %s)", r.ID, r.RejectedReason)
	case r.FinishTime != unsetTime:
		return fmt.Sprintf("Request(#%d done on node %d at %d)", r.ID, r.NodeID, r.FinishTime)
	default:
		return fmt.Sprintf("Request(#%d arrived at %d)", r.ID, r.ArrivalTime)
	}
}

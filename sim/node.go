// Implements the processing node: a capacity-limited resource that
// serializes concurrent occupants with a FIFO slot wait-list, separate from
// the system-level request queue.

package sim

// Node is a processing node with a fixed number of concurrent slots.
// Slot grants are strict FIFO: a caller that finds all slots occupied parks
// its continuation and is woken when a slot frees, in arrival order.
// A node deactivates exactly once on removal and is never reused.
type Node struct {
	eng      *Engine
	id       int
	capacity int
	active   bool
	inUse    int
	waiters  []func()
}

// NewNode creates an active node. The id is the pool index at creation time.
func NewNode(eng *Engine, id int, capacity int) *Node {
	return &Node{eng: eng, id: id, capacity: capacity, active: true}
}

// ID returns the pool-assigned identifier.
func (n *Node) ID() int { return n.id }

// Capacity returns the maximum number of concurrent occupants.
func (n *Node) Capacity() int { return n.capacity }

// Active reports whether the node is still part of the serving set.
func (n *Node) Active() bool { return n.active }

// InUse returns the number of currently occupied slots.
func (n *Node) InUse() int { return n.inUse }

// Deactivate marks the node removed. In-flight occupants run to completion;
// the balancer simply stops selecting it.
func (n *Node) Deactivate() {
	n.active = false
}

// AcquireSlot grants a slot to fn, parking it behind earlier waiters when
// the node is at capacity. The slot is counted as occupied from the moment
// of the grant, before fn runs.
func (n *Node) AcquireSlot(fn func()) {
	if n.inUse < n.capacity {
		n.inUse++
		n.eng.Schedule(0, fn)
		return
	}
	n.waiters = append(n.waiters, fn)
}

// ReleaseSlot frees a slot and wakes the oldest waiter, if any.
func (n *Node) ReleaseSlot() {
	if len(n.waiters) > 0 {
		fn := n.waiters[0]
		n.waiters = n.waiters[1:]
		n.eng.Schedule(0, fn)
		return
	}
	n.inUse--
}

// Process runs a request on this node: it stamps the node id and start time,
// waits for a slot, holds it for the request's service time, stamps the
// finish time, releases the slot, and invokes done.
func (n *Node) Process(r *Request, done func()) {
	r.NodeID = n.id
	r.StartTime = n.eng.Now()
	n.AcquireSlot(func() {
		n.eng.Schedule(r.ServiceTime, func() {
			r.FinishTime = n.eng.Now()
			n.ReleaseSlot()
			done()
		})
	})
}

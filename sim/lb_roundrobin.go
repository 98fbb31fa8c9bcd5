package sim

// RoundRobinBalancer rotates a single cursor over the active subset of the
// pool. The cursor is modulo the active-set size at call time, so its
// mapping to node identity is not stable across a pool resize: consecutive
// calls may skip or repeat a node right after a scaling action. That skew is
// a known, accepted property of the rotation, not something to correct.
type RoundRobinBalancer struct {
	cursor int
}

// NewRoundRobinBalancer creates a balancer with the cursor at zero.
func NewRoundRobinBalancer() *RoundRobinBalancer {
	return &RoundRobinBalancer{}
}

// Select returns the active node under the cursor and advances it by one,
// wrapping at the active-set size. Returns nil when no node is active.
func (lb *RoundRobinBalancer) Select(nodes []*Node) *Node {
	active := activeSubset(nodes)
	if len(active) == 0 {
		return nil
	}
	selected := active[lb.cursor%len(active)]
	lb.cursor = (lb.cursor + 1) % len(active)
	return selected
}

// Reset rewinds the cursor, used when a run restarts.
func (lb *RoundRobinBalancer) Reset() {
	lb.cursor = 0
}

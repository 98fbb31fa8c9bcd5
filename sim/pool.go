// Implements the NodePool: the ordered, dynamically resizable collection of
// processing nodes the balancer selects from.

package sim

// NodePool holds nodes in creation order. Growth is append-only and shrink
// pops from the tail, so the most recently added node leaves first. The pool
// itself accepts any add or remove; the min/max bounds are the autoscaler's
// job to enforce.
type NodePool struct {
	eng          *Engine
	nodeCapacity int
	nodes        []*Node
}

// NewNodePool creates an empty pool whose new nodes get the given capacity.
func NewNodePool(eng *Engine, nodeCapacity int) *NodePool {
	return &NodePool{eng: eng, nodeCapacity: nodeCapacity}
}

// AddNode appends a new active node. Its id is the pool index at creation,
// so ids repeat across a shrink/grow cycle.
func (p *NodePool) AddNode() *Node {
	n := NewNode(p.eng, len(p.nodes), p.nodeCapacity)
	p.nodes = append(p.nodes, n)
	return n
}

// RemoveNode pops the tail node, deactivates it, and returns it.
// Returns nil when the pool is empty.
func (p *NodePool) RemoveNode() *Node {
	if len(p.nodes) == 0 {
		return nil
	}
	n := p.nodes[len(p.nodes)-1]
	p.nodes = p.nodes[:len(p.nodes)-1]
	n.Deactivate()
	return n
}

// Nodes returns the pool contents in order. Callers must not mutate it.
func (p *NodePool) Nodes() []*Node {
	return p.nodes
}

// ActiveNodes returns the currently active subset, in pool order.
func (p *NodePool) ActiveNodes() []*Node {
	active := make([]*Node, 0, len(p.nodes))
	for _, n := range p.nodes {
		if n.Active() {
			active = append(active, n)
		}
	}
	return active
}

// Len returns the total pool size including any not-yet-drained inactive nodes.
func (p *NodePool) Len() int {
	return len(p.nodes)
}

// NumActive returns the number of active nodes.
func (p *NodePool) NumActive() int {
	count := 0
	for _, n := range p.nodes {
		if n.Active() {
			count++
		}
	}
	return count
}

// BusySlots returns the number of occupied slots across the pool. Together
// with the queue length this is the in-flight estimate the generator's
// admission fast path checks against the global cap.
func (p *NodePool) BusySlots() int {
	busy := 0
	for _, n := range p.nodes {
		busy += n.InUse()
	}
	return busy
}

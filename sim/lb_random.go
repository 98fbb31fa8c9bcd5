package sim

import "math/rand"

// RandomBalancer routes requests to a uniformly random active node.
type RandomBalancer struct {
	rand *rand.Rand
}

// NewRandomBalancer creates a random load balancer using the given source.
func NewRandomBalancer(rng *rand.Rand) *RandomBalancer {
	return &RandomBalancer{rand: rng}
}

// Select picks a random active node, nil if none are active.
func (lb *RandomBalancer) Select(nodes []*Node) *Node {
	active := activeSubset(nodes)
	if len(active) == 0 {
		return nil
	}
	return active[lb.rand.Intn(len(active))]
}

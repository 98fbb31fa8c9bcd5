package sim

import (
	"fmt"
	"math/rand"
)

// LoadBalancer defines the interface for choosing a node for a request.
type LoadBalancer interface {
	// Select picks a node from the given pool contents. Implementations
	// consider only active nodes and return nil when none are available.
	Select(nodes []*Node) *Node
}

// NewLoadBalancer creates a load balancer of the specified type.
func NewLoadBalancer(lbType string, rng *rand.Rand) (LoadBalancer, error) {
	switch lbType {
	case "round-robin":
		return NewRoundRobinBalancer(), nil
	case "random":
		return NewRandomBalancer(rng), nil
	default:
		return nil, fmt.Errorf("unknown load balancer type: %s", lbType)
	}
}

// AvailableLoadBalancers returns the list of supported balancer types.
func AvailableLoadBalancers() []string {
	return []string{"round-robin", "random"}
}

func activeSubset(nodes []*Node) []*Node {
	active := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Active() {
			active = append(active, n)
		}
	}
	return active
}

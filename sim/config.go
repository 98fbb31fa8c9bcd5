package sim

import "fmt"

// Config is the immutable configuration record for one simulation run.
// Durations and rates are in simulated seconds; zero means "unset" for the
// optional fields (in-flight cap, queue capacity, SLA threshold, max wait).
type Config struct {
	Seed int64 `yaml:"seed"`

	// Workload.
	ArrivalRate    float64 `yaml:"arrival_rate"`     // requests per second (lambda)
	ServiceTimeMin float64 `yaml:"service_time_min"` // uniform service-time range
	ServiceTimeMax float64 `yaml:"service_time_max"`
	NetDelayMin    float64 `yaml:"net_delay_min"` // uniform network-delay range
	NetDelayMax    float64 `yaml:"net_delay_max"`

	// Admission control.
	MaxInFlight   int     `yaml:"max_in_flight"`  // global in-flight cap, 0 = uncapped
	QueueCapacity int     `yaml:"queue_capacity"` // 0 = derived (10x cap, or unbounded)
	MaxWaitTime   float64 `yaml:"max_wait_time"`  // queue wait before rejection, 0 = unset

	// Node pool.
	InitialNodes int `yaml:"initial_nodes"`
	MinNodes     int `yaml:"min_nodes"`
	MaxNodes     int `yaml:"max_nodes"`
	NodeCapacity int `yaml:"node_capacity"` // concurrent slots per node

	// Autoscaler.
	Autoscale       bool    `yaml:"autoscale"`
	LowThreshold    float64 `yaml:"low_threshold"`
	HighThreshold   float64 `yaml:"high_threshold"`
	ControlInterval float64 `yaml:"control_interval"`
	ScaleCooldown   float64 `yaml:"scale_cooldown"`

	// Run.
	Duration     float64 `yaml:"duration"`
	SLAThreshold float64 `yaml:"sla_threshold"` // response-time SLA, 0 = unset

	// Tuning knobs with sane defaults.
	Workers      int    `yaml:"workers"`       // dispatcher workers, 0 = derived
	Balancer     string `yaml:"balancer"`      // "round-robin" or "random"
	HistorySize  int    `yaml:"history_size"`  // metrics time-series capacity
	SamplePeriod float64 `yaml:"sample_period"` // autoscaler queue sampler period
}

// DefaultConfig returns a config with the stock parameter set. Callers
// override the fields they care about and call Validate.
func DefaultConfig() Config {
	return Config{
		Seed:            42,
		ArrivalRate:     1.0,
		ServiceTimeMin:  0.5,
		ServiceTimeMax:  2.0,
		NetDelayMin:     0.0,
		NetDelayMax:     0.1,
		InitialNodes:    2,
		MinNodes:        1,
		MaxNodes:        10,
		NodeCapacity:    1,
		LowThreshold:    2.0,
		HighThreshold:   10.0,
		ControlInterval: 5.0,
		ScaleCooldown:   10.0,
		Duration:        100.0,
		Balancer:        "round-robin",
		HistorySize:     10000,
		SamplePeriod:    0.1,
	}
}

// Validate rejects a malformed configuration before the run starts.
// Configuration errors are construction-time failures, distinct from the
// run-time admission rejections.
func (c *Config) Validate() error {
	if c.ArrivalRate < 0 {
		return fmt.Errorf("arrival rate must be non-negative, got %v", c.ArrivalRate)
	}
	if c.ServiceTimeMin < 0 || c.ServiceTimeMax < c.ServiceTimeMin {
		return fmt.Errorf("invalid service time range [%v, %v]", c.ServiceTimeMin, c.ServiceTimeMax)
	}
	if c.NetDelayMin < 0 || c.NetDelayMax < c.NetDelayMin {
		return fmt.Errorf("invalid network delay range [%v, %v]", c.NetDelayMin, c.NetDelayMax)
	}
	if c.MaxInFlight < 0 {
		return fmt.Errorf("max in-flight cap must be non-negative, got %d", c.MaxInFlight)
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("queue capacity must be non-negative, got %d", c.QueueCapacity)
	}
	if c.MaxWaitTime < 0 {
		return fmt.Errorf("max wait time must be non-negative, got %v", c.MaxWaitTime)
	}
	if c.InitialNodes < 1 {
		return fmt.Errorf("initial node count must be at least 1, got %d", c.InitialNodes)
	}
	if c.NodeCapacity < 1 {
		return fmt.Errorf("node capacity must be at least 1, got %d", c.NodeCapacity)
	}
	if c.Autoscale {
		if c.MinNodes < 1 {
			return fmt.Errorf("min node count must be at least 1, got %d", c.MinNodes)
		}
		if c.MinNodes > c.MaxNodes {
			return fmt.Errorf("min node count %d exceeds max %d", c.MinNodes, c.MaxNodes)
		}
		if c.InitialNodes < c.MinNodes || c.InitialNodes > c.MaxNodes {
			return fmt.Errorf("initial node count %d outside [%d, %d]", c.InitialNodes, c.MinNodes, c.MaxNodes)
		}
		if c.LowThreshold < 0 || c.HighThreshold < c.LowThreshold {
			return fmt.Errorf("invalid thresholds low=%v high=%v", c.LowThreshold, c.HighThreshold)
		}
		if c.ControlInterval <= 0 {
			return fmt.Errorf("control interval must be positive, got %v", c.ControlInterval)
		}
		if c.ScaleCooldown < 0 {
			return fmt.Errorf("scale cooldown must be non-negative, got %v", c.ScaleCooldown)
		}
		if c.SamplePeriod <= 0 {
			return fmt.Errorf("sample period must be positive, got %v", c.SamplePeriod)
		}
	}
	if c.Duration <= 0 {
		return fmt.Errorf("simulation duration must be positive, got %v", c.Duration)
	}
	if c.SLAThreshold < 0 {
		return fmt.Errorf("SLA threshold must be non-negative, got %v", c.SLAThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("worker count must be non-negative, got %d", c.Workers)
	}
	if c.Balancer != "" {
		found := false
		for _, kind := range AvailableLoadBalancers() {
			if c.Balancer == kind {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown load balancer type: %s", c.Balancer)
		}
	}
	if c.HistorySize < 0 {
		return fmt.Errorf("history size must be non-negative, got %d", c.HistorySize)
	}
	return nil
}

// queueCapacity derives the system queue bound: an explicit capacity wins,
// otherwise 10x the in-flight cap when one is set, otherwise unbounded.
// The cap fast path and the queue bound stay distinct guards on purpose:
// setting them independently lets them disagree, and both checks are kept.
func (c *Config) queueCapacity() int {
	if c.QueueCapacity > 0 {
		return c.QueueCapacity
	}
	if c.MaxInFlight > 0 {
		return c.MaxInFlight * 10
	}
	return 0
}

// workerCount sizes the dispatcher pool. Undersizing it silently caps
// throughput below what node capacities allow, so when uncapped it is sized
// to cover the largest plausible concurrency.
func (c *Config) workerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	if c.MaxInFlight > 0 {
		return c.MaxInFlight
	}
	maxNodes := c.MaxNodes
	if !c.Autoscale || maxNodes < c.InitialNodes {
		maxNodes = c.InitialNodes
	}
	return max(defaultWorkers, maxNodes*c.NodeCapacity)
}

// defaultWorkers is the floor for the dispatcher pool when no in-flight cap
// bounds concurrency.
const defaultWorkers = 100

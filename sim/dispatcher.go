// The request dispatcher: a pool of cooperative workers that drain the
// queue, enforce the wait-time admission check, pick a node through the
// balancer, and drive requests through processing.

package sim

import "math/rand"

// Dispatcher runs a fixed number of independent worker tasks. Each worker
// loops: dequeue (parking FIFO when the queue is empty), check the max wait
// time, select a node, incur a network delay, process, and go again.
//
// The worker count must cover the maximum plausible concurrency; it is
// derived from the in-flight cap, or from the pool's total slot count with a
// generous floor when uncapped (see Config.workerCount).
type Dispatcher struct {
	eng      *Engine
	model    *SystemModel
	state    *runState
	balancer LoadBalancer

	workers int
	maxWait int64 // ticks, 0 means no wait-time check
	netMin  float64
	netMax  float64

	network *rand.Rand
}

// NewDispatcher wires a dispatcher from the validated config.
func NewDispatcher(eng *Engine, model *SystemModel, state *runState, balancer LoadBalancer, cfg *Config, rng *PartitionedRNG) *Dispatcher {
	return &Dispatcher{
		eng:      eng,
		model:    model,
		state:    state,
		balancer: balancer,
		workers:  cfg.workerCount(),
		maxWait:  DurationToTicks(cfg.MaxWaitTime),
		netMin:   cfg.NetDelayMin,
		netMax:   cfg.NetDelayMax,
		network:  rng.ForSubsystem(SubsystemNetwork),
	}
}

// Workers returns the size of the worker pool.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Start launches every worker. Workers with nothing to do park on the queue
// in FIFO order.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.awaitNext()
	}
}

func (d *Dispatcher) awaitNext() {
	d.model.Queue.Get(d.handle)
}

// drawNetDelay samples the uniform network-delay range in ticks.
func (d *Dispatcher) drawNetDelay() int64 {
	if d.netMax > d.netMin {
		return DurationToTicks(d.netMin + d.network.Float64()*(d.netMax-d.netMin))
	}
	return DurationToTicks(d.netMin)
}

// handle drives one dequeued request to a terminal state, then loops the
// worker back onto the queue.
func (d *Dispatcher) handle(r *Request) {
	if !d.state.Running() {
		return
	}

	if d.maxWait > 0 && d.eng.Now()-r.QueueEntryTime > d.maxWait {
		d.model.Reject(r, RejectWaitTimeout)
		d.awaitNext()
		return
	}

	node := d.balancer.Select(d.model.Pool().Nodes())
	if node == nil {
		d.model.Reject(r, RejectNoNodes)
		d.awaitNext()
		return
	}

	d.eng.Schedule(d.drawNetDelay(), func() {
		node.Process(r, func() {
			d.model.Complete(r)
			d.awaitNext()
		})
	})
}

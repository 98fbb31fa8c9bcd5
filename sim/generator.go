// The request generator: Poisson arrivals, uniform service times, and the
// two-stage admission control in front of the queue.

package sim

import (
	"fmt"
	"math/rand"
)

// generationLogEvery throttles arrival progress notifications.
const generationLogEvery = 50

// Generator produces requests on an exponential interarrival schedule and
// enqueues them, subject to admission control. It runs as a cooperative
// task: each arrival schedules the next one.
type Generator struct {
	eng   *Engine
	model *SystemModel
	state *runState

	rate        float64 // lambda, requests per second
	serviceMin  float64
	serviceMax  float64
	maxInFlight int

	arrivals *rand.Rand
	service  *rand.Rand
}

// NewGenerator wires a generator from the validated config and the
// partitioned RNG.
func NewGenerator(eng *Engine, model *SystemModel, state *runState, cfg *Config, rng *PartitionedRNG) *Generator {
	return &Generator{
		eng:         eng,
		model:       model,
		state:       state,
		rate:        cfg.ArrivalRate,
		serviceMin:  cfg.ServiceTimeMin,
		serviceMax:  cfg.ServiceTimeMax,
		maxInFlight: cfg.MaxInFlight,
		arrivals:    rng.ForSubsystem(SubsystemArrivals),
		service:     rng.ForSubsystem(SubsystemService),
	}
}

// Start schedules the first arrival. A zero rate generates nothing.
func (g *Generator) Start() {
	g.scheduleNext()
}

func (g *Generator) scheduleNext() {
	if !g.state.Running() || g.rate <= 0 {
		return
	}
	// Exponential interarrival with mean 1/lambda.
	delay := DurationToTicks(g.arrivals.ExpFloat64() / g.rate)
	g.eng.Schedule(delay, g.arrive)
}

// drawServiceTime samples the uniform service-time range in ticks.
func (g *Generator) drawServiceTime() int64 {
	if g.serviceMax > g.serviceMin {
		return DurationToTicks(g.serviceMin + g.service.Float64()*(g.serviceMax-g.serviceMin))
	}
	return DurationToTicks(g.serviceMin)
}

// arrive creates one request, runs admission control, and schedules the
// next arrival.
//
// Admission order: the global in-flight cap is a fast path checked before
// the queue is touched at all; only then is the enqueue attempted, and a
// full queue also rejects. Both rejections use the queue_full reason. The
// two guards can disagree when the queue capacity is configured
// independently of the cap; they are deliberately kept separate.
func (g *Generator) arrive() {
	if !g.state.Running() {
		return
	}
	defer g.scheduleNext()

	r := g.model.NewRequest(g.drawServiceTime())
	if r.ID%generationLogEvery == 0 {
		g.model.Notify(fmt.Sprintf("generated %d requests", r.ID), LevelInfo)
	}

	if g.maxInFlight > 0 && g.model.InFlightEstimate() >= g.maxInFlight {
		g.model.Reject(r, RejectQueueFull)
		return
	}

	r.QueueEntryTime = g.eng.Now()
	if !g.model.Queue.TryPut(r) {
		g.model.Reject(r, RejectQueueFull)
	}
}

// Wires the whole simulation together and drives it in bounded chunks so an
// observer can sample state between advances without racing the simulated
// world.

package sim

// runState carries the shared run-lifecycle flags. Every cooperative loop
// observes it at its next suspension point, so stopping is graceful: an
// in-flight operation completes before its task exits. It is a field of the
// simulation, not ambient package state.
type runState struct {
	running bool
	paused  bool
}

func (s *runState) Running() bool { return s.running }
func (s *runState) Paused() bool  { return s.paused }

// snapshotInterval is the default cadence, in simulated seconds, at which
// the headless driver records collector snapshots between chunks.
const snapshotInterval = 0.5

// Simulation owns one run: the engine, the system model, the workload tasks,
// the collector, and (optionally) the autoscaler. Construction validates the
// configuration eagerly; a malformed config never starts a run.
type Simulation struct {
	cfg   Config
	eng   *Engine
	rng   *PartitionedRNG
	model *SystemModel
	state *runState

	generator  *Generator
	dispatcher *Dispatcher
	balancer   LoadBalancer
	collector  *Collector
	autoscaler *Autoscaler // nil when autoscaling is off

	horizon int64
	started bool
}

// NewSimulation builds a fully wired simulation from the config.
func NewSimulation(cfg Config) (*Simulation, error) {
	if cfg.Balancer == "" {
		cfg.Balancer = "round-robin"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eng := NewEngine()
	rng := NewPartitionedRNG(cfg.Seed)
	state := &runState{}
	model := NewSystemModel(eng, &cfg)

	balancer, err := NewLoadBalancer(cfg.Balancer, rng.ForSubsystem(SubsystemBalancer))
	if err != nil {
		return nil, err
	}

	collector := NewCollector(cfg.HistorySize)
	if cfg.SLAThreshold > 0 {
		collector.SetSLAThreshold(cfg.SLAThreshold)
	}

	s := &Simulation{
		cfg:        cfg,
		eng:        eng,
		rng:        rng,
		model:      model,
		state:      state,
		balancer:   balancer,
		collector:  collector,
		generator:  NewGenerator(eng, model, state, &cfg, rng),
		dispatcher: NewDispatcher(eng, model, state, balancer, &cfg, rng),
		horizon:    DurationToTicks(cfg.Duration),
	}
	if cfg.Autoscale {
		s.autoscaler = NewAutoscaler(eng, model, state, &cfg)
	}
	return s, nil
}

// Config returns the run's immutable configuration.
func (s *Simulation) Config() Config { return s.cfg }

// Engine exposes the virtual clock, mainly for tests and custom drivers.
func (s *Simulation) Engine() *Engine { return s.eng }

// Model exposes the system model for snapshot queries.
func (s *Simulation) Model() *SystemModel { return s.model }

// Collector exposes the metrics collector.
func (s *Simulation) Collector() *Collector { return s.collector }

// Autoscaler returns the controller, nil when autoscaling is off.
func (s *Simulation) Autoscaler() *Autoscaler { return s.autoscaler }

// SetNotifyFunc forwards a notification subscriber to the model.
func (s *Simulation) SetNotifyFunc(fn NotifyFunc) {
	s.model.SetNotifyFunc(fn)
}

// Start registers the initial cooperative tasks. It is idempotent.
func (s *Simulation) Start() {
	if s.started {
		return
	}
	s.started = true
	s.state.running = true
	s.generator.Start()
	s.dispatcher.Start()
	if s.autoscaler != nil {
		s.autoscaler.Start()
	}
}

// Horizon returns the configured end of the run, in ticks.
func (s *Simulation) Horizon() int64 { return s.horizon }

// AdvanceTo runs the simulation up to the given simulated time in seconds,
// clamped to the horizon. It is the seam an external observer drives: state
// read between calls is consistent, because nothing inside the simulated
// world runs while we are here. Paused simulations do not advance virtual
// time.
func (s *Simulation) AdvanceTo(seconds float64) {
	if !s.started || s.state.paused || !s.state.running {
		return
	}
	target := DurationToTicks(seconds)
	if target > s.horizon {
		target = s.horizon
	}
	s.eng.RunUntil(target)
}

// observe refreshes the collector from the live model and records one
// snapshot point.
func (s *Simulation) observe() {
	s.collector.UpdateRequests(s.model.Processed, s.model.Rejected)
	cm := s.collector.Current(s.model)
	s.collector.RecordSnapshot(cm.SimTime, cm.QueueLength, cm.ActiveNodes, cm.AvgResponseTime)
}

// Run drives the simulation to the horizon in snapshotInterval chunks,
// recording collector snapshots between chunks, and returns the final
// aggregate. This is the headless counterpart of the front end's polling
// loop.
func (s *Simulation) Run() AggregateMetrics {
	s.Start()
	chunk := DurationToTicks(snapshotInterval)
	for t := chunk; t < s.horizon; t += chunk {
		if !s.state.running {
			break
		}
		s.eng.RunUntil(t)
		s.observe()
	}
	if s.state.running {
		s.eng.RunUntil(s.horizon)
	}
	s.observe()
	return s.collector.Aggregate()
}

// Snapshot returns the current system state.
func (s *Simulation) Snapshot() SystemState {
	return s.model.State()
}

// Results returns the aggregate over everything recorded so far.
func (s *Simulation) Results() AggregateMetrics {
	s.observe()
	return s.collector.Aggregate()
}

// Pause freezes virtual time: AdvanceTo becomes a no-op until Resume.
func (s *Simulation) Pause() { s.state.paused = true }

// Resume lifts a pause.
func (s *Simulation) Resume() { s.state.paused = false }

// Stop ends the run gracefully: every loop exits at its next suspension
// point, and already-recorded results stay valid and queryable.
func (s *Simulation) Stop() { s.state.running = false }

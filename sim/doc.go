// Package sim provides the discrete-event simulation core of scalesim: a
// request-serving cluster under a reactive autoscaling policy, running in
// virtual time.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - engine.go: the virtual clock and the priority-ordered event loop
//   - request.go: the request lifecycle and its terminal states
//   - simulation.go: wiring, the run-state context, and the chunked driver
//
// # Architecture
//
// All activity is cooperative and single-threaded. The generator, the
// dispatcher workers, the autoscaler's control tick, and its queue sampler
// are logical tasks that suspend only at explicit points: a timeout
// (Engine.Schedule), an empty queue (RequestQueue.Get), or a saturated node
// (Node.AcquireSlot). Events due at the same tick resolve in scheduling
// order, and every wait-list is strict FIFO, so runs are deterministic for a
// given seed (see rng.go for the per-subsystem RNG partitioning).
//
// The flow of a request: Generator -> RequestQueue -> Dispatcher ->
// LoadBalancer -> Node -> completion -> Collector -> Autoscaler -> NodePool,
// which feeds back into the balancer's candidate set.
//
// An external observer drives the run in bounded chunks with
// Simulation.AdvanceTo and reads Snapshot/TimeSeries/Aggregate between
// chunks; it must never mutate simulation state directly.
package sim

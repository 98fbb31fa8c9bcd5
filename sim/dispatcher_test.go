package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dispFixture wires a model plus dispatcher with deterministic timing: no
// network delay unless the test configures one, round-robin balancing.
func dispFixture(t *testing.T, mutate func(*Config)) (*Engine, *SystemModel, *Dispatcher) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.NetDelayMin = 0
	cfg.NetDelayMax = 0
	cfg.Workers = 4
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())

	eng := NewEngine()
	model := NewSystemModel(eng, &cfg)
	model.SetNotifyFunc(func(string, LogLevel) {})
	lb := NewRoundRobinBalancer()
	d := NewDispatcher(eng, model, &runState{running: true}, lb, &cfg, NewPartitionedRNG(cfg.Seed))
	return eng, model, d
}

// enqueueAt stamps a request's queue entry at the current tick and enqueues it.
func enqueueAt(t *testing.T, eng *Engine, model *SystemModel, serviceSeconds float64) *Request {
	t.Helper()
	r := model.NewRequest(DurationToTicks(serviceSeconds))
	r.QueueEntryTime = eng.Now()
	require.True(t, model.Queue.TryPut(r))
	return r
}

func TestDispatcher_DrivesRequestToCompletion(t *testing.T) {
	eng, model, d := dispFixture(t, nil)
	r := enqueueAt(t, eng, model, 1.0)

	d.Start()
	eng.RunUntil(DurationToTicks(5))

	require.Len(t, model.Processed, 1)
	assert.Same(t, r, model.Processed[0])
	assert.Equal(t, 0, r.NodeID)
	assert.Equal(t, int64(0), r.StartTime)
	assert.Equal(t, DurationToTicks(1.0), r.FinishTime)
	assert.True(t, r.Terminal())
}

func TestDispatcher_NetworkDelay_DefersStart(t *testing.T) {
	eng, model, d := dispFixture(t, func(c *Config) {
		c.NetDelayMin = 0.25
		c.NetDelayMax = 0.25
	})
	r := enqueueAt(t, eng, model, 1.0)

	d.Start()
	eng.RunUntil(DurationToTicks(5))

	require.Len(t, model.Processed, 1)
	assert.Equal(t, DurationToTicks(0.25), r.StartTime)
	assert.Equal(t, DurationToTicks(1.25), r.FinishTime)
}

func TestDispatcher_WaitTimeout_RejectsStaleRequest(t *testing.T) {
	// GIVEN a request that sat in the queue past the max wait time
	eng, model, d := dispFixture(t, func(c *Config) { c.MaxWaitTime = 20 })
	r := enqueueAt(t, eng, model, 1.0)
	eng.RunUntil(DurationToTicks(30))

	// WHEN a worker finally dequeues it
	d.Start()
	eng.RunUntil(DurationToTicks(30))

	// THEN it is rejected, never processed
	assert.Empty(t, model.Processed)
	require.Len(t, model.Rejected, 1)
	assert.Equal(t, RejectWaitTimeout, r.RejectedReason)
	assert.Equal(t, unsetTime, r.StartTime)
}

func TestDispatcher_WaitExactlyAtLimit_IsAdmitted(t *testing.T) {
	// The check is strictly greater-than: a wait equal to the limit passes.
	eng, model, d := dispFixture(t, func(c *Config) { c.MaxWaitTime = 20 })
	enqueueAt(t, eng, model, 1.0)
	eng.RunUntil(DurationToTicks(20))

	d.Start()
	eng.RunUntil(DurationToTicks(25))

	assert.Len(t, model.Processed, 1)
	assert.Empty(t, model.Rejected)
}

func TestDispatcher_NoActiveNodes_RejectsWithNoNodes(t *testing.T) {
	eng, model, d := dispFixture(t, func(c *Config) { c.InitialNodes = 1 })
	require.True(t, model.RemoveNode())
	r := enqueueAt(t, eng, model, 1.0)

	d.Start()
	eng.RunUntil(DurationToTicks(5))

	require.Len(t, model.Rejected, 1)
	assert.Equal(t, RejectNoNodes, r.RejectedReason)
}

func TestDispatcher_RoundRobin_SpreadsAcrossNodes(t *testing.T) {
	eng, model, d := dispFixture(t, func(c *Config) { c.InitialNodes = 2 })
	for i := 0; i < 4; i++ {
		enqueueAt(t, eng, model, 1.0)
	}

	d.Start()
	eng.RunUntil(DurationToTicks(10))

	require.Len(t, model.Processed, 4)
	var ids []int
	for _, r := range model.Processed {
		ids = append(ids, r.NodeID)
	}
	assert.ElementsMatch(t, []int{0, 1, 0, 1}, ids)
}

func TestDispatcher_WorkerLoops_BackOntoQueue(t *testing.T) {
	// More requests than workers: each worker must return for another one
	// after finishing.
	eng, model, d := dispFixture(t, func(c *Config) {
		c.Workers = 1
		c.InitialNodes = 1
	})
	for i := 0; i < 3; i++ {
		enqueueAt(t, eng, model, 1.0)
	}

	d.Start()
	eng.RunUntil(DurationToTicks(10))

	require.Len(t, model.Processed, 3)
	// Sequential on one worker and one single-slot node: finishes at 1, 2, 3.
	assert.Equal(t, DurationToTicks(1.0), model.Processed[0].FinishTime)
	assert.Equal(t, DurationToTicks(2.0), model.Processed[1].FinishTime)
	assert.Equal(t, DurationToTicks(3.0), model.Processed[2].FinishTime)
	assert.Equal(t, 1, model.Queue.Waiters())
}

func TestDispatcher_IdleWorkers_ParkOnQueue(t *testing.T) {
	eng, model, d := dispFixture(t, func(c *Config) { c.Workers = 4 })

	d.Start()
	eng.RunUntil(0)

	assert.Equal(t, 4, model.Queue.Waiters())
}

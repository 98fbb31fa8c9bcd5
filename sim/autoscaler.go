// The autoscaling controller: a periodic threshold controller with
// hysteresis and cooldown that grows or shrinks the node pool one node per
// decision, fed by a fine-grained queue-length sampler.

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// requiredConsecutiveLow is how many consecutive qualifying intervals a
// scale-down needs before acting. A single quiet interval never shrinks the
// pool; this is the hysteresis that damps oscillation.
const requiredConsecutiveLow = 2

// maxIntervalHistory bounds the controller's per-interval metric history.
const maxIntervalHistory = 1000

// IntervalMetrics is one control interval's aggregated view of the system.
type IntervalMetrics struct {
	Time            float64 // interval end, seconds
	QueueLength     float64 // time-weighted average over the interval
	AvgResponseTime float64 // mean over requests finishing in the interval
	ActiveNodes     int
}

type queueSample struct {
	time  int64
	value float64
}

// Autoscaler polls interval metrics on a fixed control interval and applies
// threshold-with-hysteresis-and-cooldown logic to the pool. Scaling moves
// exactly one node per decision.
//
// Scale-up fires when the interval queue length or response time exceeds the
// high threshold. Scale-down requires both below the low threshold for
// requiredConsecutiveLow intervals in a row. Both respect the cooldown and
// the [minNodes, maxNodes] bounds.
type Autoscaler struct {
	eng   *Engine
	model *SystemModel
	state *runState

	minNodes      int
	maxNodes      int
	lowThreshold  float64
	highThreshold float64
	interval      int64 // control interval, ticks
	cooldown      int64 // min ticks between scaling actions
	samplePeriod  int64 // queue sampler sub-period, ticks

	lastScaleTime  int64
	consecutiveLow int

	intervalStart   int64
	intervalSamples []queueSample

	history []IntervalMetrics
}

// NewAutoscaler wires the controller from the validated config.
func NewAutoscaler(eng *Engine, model *SystemModel, state *runState, cfg *Config) *Autoscaler {
	return &Autoscaler{
		eng:           eng,
		model:         model,
		state:         state,
		minNodes:      cfg.MinNodes,
		maxNodes:      cfg.MaxNodes,
		lowThreshold:  cfg.LowThreshold,
		highThreshold: cfg.HighThreshold,
		interval:      DurationToTicks(cfg.ControlInterval),
		cooldown:      DurationToTicks(cfg.ScaleCooldown),
		samplePeriod:  DurationToTicks(cfg.SamplePeriod),
	}
}

// History returns the recorded per-interval metrics, oldest first.
func (a *Autoscaler) History() []IntervalMetrics {
	return a.history
}

// ConsecutiveLowIntervals exposes the hysteresis counter for tests.
func (a *Autoscaler) ConsecutiveLowIntervals() int {
	return a.consecutiveLow
}

// LastScaleTime returns the tick of the most recent scaling action.
func (a *Autoscaler) LastScaleTime() int64 {
	return a.lastScaleTime
}

// Start launches the control tick and the queue sampler as independent
// cooperative tasks. The sampler's fine sub-period keeps the interval
// average honest even when the control interval is long.
func (a *Autoscaler) Start() {
	a.intervalStart = a.eng.Now()
	a.scheduleSample()
	a.scheduleTick()
}

func (a *Autoscaler) scheduleSample() {
	if !a.state.Running() {
		return
	}
	a.eng.Schedule(a.samplePeriod, a.sample)
}

func (a *Autoscaler) sample() {
	if !a.state.Running() {
		return
	}
	a.intervalSamples = append(a.intervalSamples, queueSample{
		time:  a.eng.Now(),
		value: float64(a.model.Queue.Len()),
	})
	a.scheduleSample()
}

func (a *Autoscaler) scheduleTick() {
	if !a.state.Running() {
		return
	}
	a.eng.Schedule(a.interval, a.tick)
}

func (a *Autoscaler) tick() {
	if !a.state.Running() {
		return
	}
	metrics := a.intervalMetrics()

	a.history = append(a.history, metrics)
	if len(a.history) > maxIntervalHistory {
		a.history = a.history[1:]
	}

	a.model.Notify(fmt.Sprintf("control interval (t=%.1f): queue=%.1f, response time=%.2f, nodes=%d",
		metrics.Time, metrics.QueueLength, metrics.AvgResponseTime, metrics.ActiveNodes), LevelInfo)

	switch {
	case a.shouldScaleUp(metrics):
		a.scaleUp()
	case a.shouldScaleDown(metrics):
		a.scaleDown()
	default:
		// High demand blocked only by the cooldown deserves a diagnostic.
		sinceLast := a.eng.Now() - a.lastScaleTime
		if metrics.QueueLength > a.highThreshold &&
			a.model.Pool().NumActive() < a.maxNodes && sinceLast < a.cooldown {
			a.model.Notify(fmt.Sprintf("scaling blocked by cooldown (%.1f < %.1f)",
				TicksToSeconds(sinceLast), TicksToSeconds(a.cooldown)), LevelInfo)
		}
	}

	a.intervalStart = a.eng.Now()
	a.intervalSamples = a.intervalSamples[:0]
	a.scheduleTick()
}

// intervalMetrics aggregates the closing interval: the time-weighted
// (trapezoidal) queue-length average over the sampler's points, and the mean
// response time over requests whose finish fell inside the interval, falling
// back to the whole-run mean when none finished in-interval.
func (a *Autoscaler) intervalMetrics() IntervalMetrics {
	now := a.eng.Now()
	currentQueue := float64(a.model.Queue.Len())

	samples := a.intervalSamples
	if len(samples) == 0 || samples[len(samples)-1].time < now {
		samples = append(samples, queueSample{time: now, value: currentQueue})
	}

	times := make([]float64, len(samples))
	values := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = TicksToSeconds(s.time)
		values[i] = s.value
	}
	avgQueue, ok := timeWeightedAverage(times, values)
	if !ok {
		if len(values) > 0 {
			avgQueue = values[len(values)-1]
		} else {
			avgQueue = currentQueue
		}
	}

	var inInterval []float64
	for _, r := range a.model.Processed {
		if r.FinishTime >= a.intervalStart && r.FinishTime <= now {
			if rt, found := r.ResponseTime(); found {
				inInterval = append(inInterval, rt)
			}
		}
	}
	avgRT := 0.0
	if len(inInterval) > 0 {
		avgRT = stat.Mean(inInterval, nil)
	} else if rts := responseTimes(a.model.Processed); len(rts) > 0 {
		avgRT = stat.Mean(rts, nil)
	}

	return IntervalMetrics{
		Time:            TicksToSeconds(now),
		QueueLength:     avgQueue,
		AvgResponseTime: avgRT,
		ActiveNodes:     a.model.Pool().NumActive(),
	}
}

func (a *Autoscaler) cooldownElapsed() bool {
	return a.eng.Now()-a.lastScaleTime >= a.cooldown
}

func (a *Autoscaler) shouldScaleUp(m IntervalMetrics) bool {
	condition := m.QueueLength > a.highThreshold || m.AvgResponseTime > a.highThreshold
	return condition && a.model.Pool().NumActive() < a.maxNodes && a.cooldownElapsed()
}

// shouldScaleDown increments the consecutive-low counter while the quiet
// condition holds and only reports true once the required streak is reached.
// Any interval that fails the condition resets the counter unconditionally.
func (a *Autoscaler) shouldScaleDown(m IntervalMetrics) bool {
	condition := m.QueueLength < a.lowThreshold && m.AvgResponseTime < a.lowThreshold
	if condition && a.model.Pool().NumActive() > a.minNodes && a.cooldownElapsed() {
		a.consecutiveLow++
		return a.consecutiveLow >= requiredConsecutiveLow
	}
	a.consecutiveLow = 0
	return false
}

func (a *Autoscaler) scaleUp() {
	before := a.model.Pool().NumActive()
	if before >= a.maxNodes {
		return
	}
	a.model.AddNode()
	a.lastScaleTime = a.eng.Now()
	a.consecutiveLow = 0
	a.model.Notify(fmt.Sprintf("scaled up: %d -> %d nodes", before, a.model.Pool().NumActive()), LevelInfo)
}

func (a *Autoscaler) scaleDown() {
	before := a.model.Pool().NumActive()
	if before <= a.minNodes {
		return
	}
	a.model.RemoveNode()
	a.lastScaleTime = a.eng.Now()
	a.consecutiveLow = 0
	a.model.Notify(fmt.Sprintf("scaled down: %d -> %d nodes", before, a.model.Pool().NumActive()), LevelInfo)
}

package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngine_Schedule_ExecutesInTimestampOrder(t *testing.T) {
	// GIVEN events scheduled out of order
	eng := NewEngine()
	var order []string
	eng.Schedule(30, func() { order = append(order, "c") })
	eng.Schedule(10, func() { order = append(order, "a") })
	eng.Schedule(20, func() { order = append(order, "b") })

	// WHEN the engine runs past all of them
	eng.RunUntil(100)

	// THEN they execute by timestamp
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestEngine_SameTickEvents_ResolveInSchedulingOrder(t *testing.T) {
	// GIVEN several events due at the same tick
	eng := NewEngine()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		eng.Schedule(10, func() { order = append(order, i) })
	}

	// WHEN the engine runs
	eng.RunUntil(10)

	// THEN ties break FIFO by scheduling order
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestEngine_RunUntil_LeavesLaterEventsPending(t *testing.T) {
	// GIVEN one event inside the bound and one past it
	eng := NewEngine()
	ran := map[string]bool{}
	eng.Schedule(5, func() { ran["early"] = true })
	eng.Schedule(50, func() { ran["late"] = true })

	// WHEN advancing only to tick 10
	eng.RunUntil(10)

	// THEN the early event ran, the late one is still pending
	assert.True(t, ran["early"])
	assert.False(t, ran["late"])
	assert.Equal(t, 1, eng.Pending())
	assert.Equal(t, int64(10), eng.Now())

	// AND a later advance resumes where this one left off
	eng.RunUntil(50)
	assert.True(t, ran["late"])
	assert.Equal(t, int64(50), eng.Now())
}

func TestEngine_RunUntil_AdvancesClockWithoutEvents(t *testing.T) {
	eng := NewEngine()
	eng.RunUntil(1000)
	assert.Equal(t, int64(1000), eng.Now())
}

func TestEngine_Schedule_FromWithinEvent_SeesCurrentClock(t *testing.T) {
	// GIVEN an event that schedules a follow-up relative to its own time
	eng := NewEngine()
	var followUpAt int64
	eng.Schedule(10, func() {
		eng.Schedule(5, func() { followUpAt = eng.Now() })
	})

	// WHEN the engine runs
	eng.RunUntil(100)

	// THEN the follow-up fired at parent time + delay
	assert.Equal(t, int64(15), followUpAt)
}

func TestEngine_Schedule_NegativeDelay_ClampsToNow(t *testing.T) {
	eng := NewEngine()
	fired := false
	eng.Schedule(10, func() {
		eng.Schedule(-5, func() { fired = true })
	})
	eng.RunUntil(10)
	assert.True(t, fired)
	assert.Equal(t, int64(10), eng.Now())
}

func TestTickConversions_RoundTrip(t *testing.T) {
	assert.Equal(t, int64(1_500_000), DurationToTicks(1.5))
	assert.InDelta(t, 1.5, TicksToSeconds(1_500_000), 1e-12)
}

package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedRequest(id int64, arrival, finish float64) *Request {
	r := NewRequest(id, DurationToTicks(arrival), 0)
	r.FinishTime = DurationToTicks(finish)
	return r
}

func rejectedRequest(id int64, reason RejectReason) *Request {
	r := NewRequest(id, 0, 0)
	r.Rejected = true
	r.RejectedReason = reason
	return r
}

func TestSeries_EvictsOldestPastCapacity(t *testing.T) {
	s := newSeries(3)
	for i := 1; i <= 5; i++ {
		s.Append(float64(i))
	}
	assert.Equal(t, []float64{3, 4, 5}, s.Values())
	assert.Equal(t, 3, s.Len())
}

func TestSeries_ZeroCapacity_Unbounded(t *testing.T) {
	s := newSeries(0)
	for i := 0; i < 100; i++ {
		s.Append(float64(i))
	}
	assert.Equal(t, 100, s.Len())
}

func TestTimeWeightedAverage_WeightsByDwellTime(t *testing.T) {
	// Value 0 for 1s ramping to 4, then 4 held for 9s: the long dwell at 4
	// dominates. Trapezoids: (0+4)/2*1 + (4+4)/2*9 = 38 over 10s.
	times := []float64{0, 1, 10}
	values := []float64{0, 4, 4}
	avg, ok := timeWeightedAverage(times, values)
	require.True(t, ok)
	assert.InDelta(t, 3.8, avg, 1e-9)
}

func TestTimeWeightedAverage_ConstantSeries_IsExact(t *testing.T) {
	times := []float64{0, 2, 3, 7}
	values := []float64{5, 5, 5, 5}
	avg, ok := timeWeightedAverage(times, values)
	require.True(t, ok)
	assert.InDelta(t, 5.0, avg, 1e-9)
}

func TestTimeWeightedAverage_TooFewSamples_NotOK(t *testing.T) {
	_, ok := timeWeightedAverage([]float64{1}, []float64{3})
	assert.False(t, ok)

	// Identical timestamps integrate over zero elapsed time.
	_, ok = timeWeightedAverage([]float64{2, 2}, []float64{1, 9})
	assert.False(t, ok)
}

func TestCollector_Aggregate_CountsAndRates(t *testing.T) {
	c := NewCollector(100)
	c.UpdateRequests(
		[]*Request{
			finishedRequest(0, 0, 2),
			finishedRequest(1, 1, 2),
			finishedRequest(2, 2, 6),
		},
		[]*Request{
			rejectedRequest(3, RejectQueueFull),
			rejectedRequest(4, RejectQueueFull),
			rejectedRequest(5, RejectWaitTimeout),
			rejectedRequest(6, RejectNoNodes),
		},
	)

	m := c.Aggregate()
	assert.Equal(t, 7, m.TotalRequests)
	assert.Equal(t, 3, m.ProcessedRequests)
	assert.Equal(t, 4, m.RejectedRequests)
	assert.Equal(t, 2, m.RejectedQueueFull)
	assert.Equal(t, 1, m.RejectedWaitTimeout)
	assert.Equal(t, 1, m.RejectedNoNodes)
	assert.InDelta(t, 4.0/7.0*100, m.RejectionRate, 1e-9)
	assert.InDelta(t, (2.0+1.0+4.0)/3.0, m.AvgResponseTime, 1e-9)
	assert.InDelta(t, 4.0, m.MaxResponseTime, 1e-9)
	assert.InDelta(t, 1.0, m.MinResponseTime, 1e-9)
}

func TestCollector_Aggregate_EmptyRun_AllZero(t *testing.T) {
	m := NewCollector(100).Aggregate()
	assert.Zero(t, m.TotalRequests)
	assert.Zero(t, m.RejectionRate)
	assert.Zero(t, m.AvgResponseTime)
	assert.Zero(t, m.AvgQueueLength)
}

func TestCollector_Aggregate_QueueLengthIsTimeWeighted(t *testing.T) {
	// GIVEN unevenly spaced queue samples
	c := NewCollector(100)
	c.RecordSnapshot(0, 0, 1, 0)
	c.RecordSnapshot(1, 4, 1, 0)
	c.RecordSnapshot(10, 4, 1, 0)

	// THEN the average is the trapezoidal mean, not the sample mean
	m := c.Aggregate()
	assert.InDelta(t, 3.8, m.AvgQueueLength, 1e-9)
	assert.InDelta(t, 4.0, m.MaxQueueLength, 1e-9)
}

func TestCollector_Aggregate_SingleSample_FallsBackToPlainMean(t *testing.T) {
	c := NewCollector(100)
	c.RecordSnapshot(0, 6, 1, 0)

	m := c.Aggregate()
	assert.InDelta(t, 6.0, m.AvgQueueLength, 1e-9)
}

func TestCollector_SLACompliance_OnlyWhenThresholdSet(t *testing.T) {
	processed := []*Request{
		finishedRequest(0, 0, 1), // rt 1
		finishedRequest(1, 0, 3), // rt 3
		finishedRequest(2, 0, 5), // rt 5, exactly at the bound: compliant
		finishedRequest(3, 0, 9), // rt 9
	}

	c := NewCollector(100)
	c.UpdateRequests(processed, nil)
	assert.Zero(t, c.Aggregate().SLAComplianceRate)

	c.SetSLAThreshold(5)
	assert.InDelta(t, 75.0, c.Aggregate().SLAComplianceRate, 1e-9)
}

func TestCollector_TimeSeries_BoundedByHistorySize(t *testing.T) {
	c := NewCollector(5)
	for i := 0; i < 8; i++ {
		c.RecordSnapshot(float64(i), i, 1, 0)
	}

	ts := c.TimeSeries()
	assert.Len(t, ts.Time, 5)
	assert.Equal(t, []float64{3, 4, 5, 6, 7}, ts.Time)
	assert.Equal(t, []float64{3, 4, 5, 6, 7}, ts.QueueLength)
}

func TestCollector_UpdateRequests_CopiesSlices(t *testing.T) {
	src := []*Request{finishedRequest(0, 0, 1)}
	c := NewCollector(10)
	c.UpdateRequests(src, nil)

	src[0] = nil // the collector's copy must be unaffected
	assert.Equal(t, 1, c.Aggregate().ProcessedRequests)
	assert.InDelta(t, 1.0, c.Aggregate().AvgResponseTime, 1e-9)
}

func TestCollector_Current_ReflectsLiveModel(t *testing.T) {
	cfg := DefaultConfig()
	eng := NewEngine()
	model := NewSystemModel(eng, &cfg)
	model.SetNotifyFunc(func(string, LogLevel) {})
	model.Processed = append(model.Processed, finishedRequest(0, 0, 2))

	r := model.NewRequest(DurationToTicks(1))
	r.QueueEntryTime = eng.Now()
	require.True(t, model.Queue.TryPut(r))

	cur := NewCollector(10).Current(model)
	assert.Equal(t, 1, cur.QueueLength)
	assert.Equal(t, cfg.InitialNodes, cur.ActiveNodes)
	assert.InDelta(t, 2.0, cur.AvgResponseTime, 1e-9)
}

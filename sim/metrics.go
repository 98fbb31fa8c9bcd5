// Tracks simulation-wide metrics: bounded time series sampled by the
// external driver, plus point and windowed aggregates over the processed
// and rejected request collections.

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// series is a bounded time series: appends past the capacity evict the
// oldest entry. Capacity 0 means unbounded.
type series struct {
	data     []float64
	capacity int
}

func newSeries(capacity int) *series {
	return &series{capacity: capacity}
}

func (s *series) Append(v float64) {
	if s.capacity > 0 && len(s.data) >= s.capacity {
		s.data = s.data[1:]
	}
	s.data = append(s.data, v)
}

func (s *series) Len() int { return len(s.data) }

// Values returns a copy of the series contents.
func (s *series) Values() []float64 {
	out := make([]float64, len(s.data))
	copy(out, s.data)
	return out
}

// timeWeightedAverage integrates a (time, value) series with the trapezoidal
// rule and divides by the elapsed time. With fewer than two samples there is
// nothing to integrate and the caller falls back to a plain value.
func timeWeightedAverage(times, values []float64) (float64, bool) {
	if len(times) < 2 || len(values) < len(times) {
		return 0, false
	}
	totalArea := 0.0
	totalTime := 0.0
	for i := 0; i < len(times)-1; i++ {
		dt := times[i+1] - times[i]
		if dt > 0 {
			totalArea += (values[i] + values[i+1]) / 2.0 * dt
			totalTime += dt
		}
	}
	if totalTime <= 0 {
		return 0, false
	}
	return totalArea / totalTime, true
}

// TimeSeries is the parallel-array view the front end plots.
type TimeSeries struct {
	Time            []float64
	QueueLength     []float64
	NodesCount      []float64
	AvgResponseTime []float64
}

// AggregateMetrics is the full metric set over a run (or a run so far).
type AggregateMetrics struct {
	TotalRequests       int
	ProcessedRequests   int
	RejectedRequests    int
	RejectedQueueFull   int
	RejectedWaitTimeout int
	RejectedNoNodes     int
	RejectionRate       float64 // percent
	AvgResponseTime     float64
	MaxResponseTime     float64
	MinResponseTime     float64
	AvgQueueLength      float64 // time-weighted
	MaxQueueLength      float64
	SLAComplianceRate   float64 // percent, meaningful only when an SLA threshold is set
}

// CurrentMetrics is the cheap, un-windowed snapshot used as the autoscaler's
// default metrics source.
type CurrentMetrics struct {
	SimTime         float64
	QueueLength     int
	ActiveNodes     int
	AvgResponseTime float64
}

// Collector records bounded time series and produces aggregates. It holds
// its own copies of the terminal collections, replaced wholesale on each
// update by the external driver.
type Collector struct {
	timeSeries      *series
	queueLengths    *series
	nodeCounts      *series
	avgResponseTime *series

	processed []*Request
	rejected  []*Request

	slaThreshold float64 // 0 = unset
}

// NewCollector creates a collector whose series hold at most historySize
// points each.
func NewCollector(historySize int) *Collector {
	return &Collector{
		timeSeries:      newSeries(historySize),
		queueLengths:    newSeries(historySize),
		nodeCounts:      newSeries(historySize),
		avgResponseTime: newSeries(historySize),
	}
}

// SetSLAThreshold sets the response-time bound used for the compliance rate.
func (c *Collector) SetSLAThreshold(threshold float64) {
	c.slaThreshold = threshold
}

// RecordSnapshot appends one point to each series, evicting the oldest past
// the capacity.
func (c *Collector) RecordSnapshot(simTime float64, queueLength int, nodeCount int, avgResponseTime float64) {
	c.timeSeries.Append(simTime)
	c.queueLengths.Append(float64(queueLength))
	c.nodeCounts.Append(float64(nodeCount))
	c.avgResponseTime.Append(avgResponseTime)
}

// UpdateRequests replaces the collector's request collections wholesale.
func (c *Collector) UpdateRequests(processed, rejected []*Request) {
	c.processed = make([]*Request, len(processed))
	copy(c.processed, processed)
	c.rejected = make([]*Request, len(rejected))
	copy(c.rejected, rejected)
}

// TimeSeries returns the bounded series as parallel arrays.
func (c *Collector) TimeSeries() TimeSeries {
	return TimeSeries{
		Time:            c.timeSeries.Values(),
		QueueLength:     c.queueLengths.Values(),
		NodesCount:      c.nodeCounts.Values(),
		AvgResponseTime: c.avgResponseTime.Values(),
	}
}

// responseTimes collects finished response times in seconds.
func responseTimes(requests []*Request) []float64 {
	out := make([]float64, 0, len(requests))
	for _, r := range requests {
		if rt, ok := r.ResponseTime(); ok {
			out = append(out, rt)
		}
	}
	return out
}

// Aggregate computes the full metric set over the collections currently
// held. The average queue length is the trapezoidal time-weighted mean of
// the recorded series, not an arithmetic mean of samples; with fewer than
// two samples it falls back to the plain mean.
func (c *Collector) Aggregate() AggregateMetrics {
	m := AggregateMetrics{
		TotalRequests:     len(c.processed) + len(c.rejected),
		ProcessedRequests: len(c.processed),
		RejectedRequests:  len(c.rejected),
	}

	for _, r := range c.rejected {
		switch r.RejectedReason {
		case RejectQueueFull:
			m.RejectedQueueFull++
		case RejectWaitTimeout:
			m.RejectedWaitTimeout++
		case RejectNoNodes:
			m.RejectedNoNodes++
		}
	}
	if m.TotalRequests > 0 {
		m.RejectionRate = float64(m.RejectedRequests) / float64(m.TotalRequests) * 100.0
	}

	if rts := responseTimes(c.processed); len(rts) > 0 {
		m.AvgResponseTime = stat.Mean(rts, nil)
		m.MaxResponseTime = floats.Max(rts)
		m.MinResponseTime = floats.Min(rts)
		if c.slaThreshold > 0 {
			compliant := 0
			for _, rt := range rts {
				if rt <= c.slaThreshold {
					compliant++
				}
			}
			m.SLAComplianceRate = float64(compliant) / float64(len(rts)) * 100.0
		}
	}

	times := c.timeSeries.Values()
	queues := c.queueLengths.Values()
	if avg, ok := timeWeightedAverage(times, queues); ok {
		m.AvgQueueLength = avg
	} else if len(queues) > 0 {
		m.AvgQueueLength = stat.Mean(queues, nil)
	}
	if len(queues) > 0 {
		m.MaxQueueLength = floats.Max(queues)
	}

	return m
}

// Current computes the cheap un-windowed snapshot from the live model: the
// queue length and active node count right now, and the arithmetic mean
// response time over everything processed so far.
func (c *Collector) Current(model *SystemModel) CurrentMetrics {
	avgRT := 0.0
	if rts := responseTimes(model.Processed); len(rts) > 0 {
		avgRT = stat.Mean(rts, nil)
	}
	state := model.State()
	return CurrentMetrics{
		SimTime:         state.SimTime,
		QueueLength:     state.QueueLength,
		ActiveNodes:     state.ActiveNodes,
		AvgResponseTime: avgRT,
	}
}

// Print writes a human-readable end-of-run summary.
func (m AggregateMetrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Total Requests       : %d\n", m.TotalRequests)
	fmt.Printf("Processed            : %d\n", m.ProcessedRequests)
	fmt.Printf("Rejected             : %d (queue_full=%d wait_timeout=%d no_nodes=%d)\n",
		m.RejectedRequests, m.RejectedQueueFull, m.RejectedWaitTimeout, m.RejectedNoNodes)
	fmt.Printf("Rejection Rate       : %.2f%%\n", m.RejectionRate)
	if m.ProcessedRequests > 0 {
		fmt.Printf("Avg Response Time    : %.3f\n", m.AvgResponseTime)
		fmt.Printf("Min/Max Response Time: %.3f / %.3f\n", m.MinResponseTime, m.MaxResponseTime)
	}
	fmt.Printf("Avg Queue Length     : %.2f\n", m.AvgQueueLength)
	fmt.Printf("Max Queue Length     : %.0f\n", m.MaxQueueLength)
	if m.SLAComplianceRate > 0 {
		fmt.Printf("SLA Compliance       : %.1f%%\n", m.SLAComplianceRate)
	}
}

// The SystemModel owns the shared simulation state: the bounded queue, the
// node pool, the terminal request collections, and the event notification
// channel the front end subscribes to.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LogLevel labels a notification for subscribers.
type LogLevel string

const (
	LevelInfo    LogLevel = "INFO"
	LevelWarning LogLevel = "WARNING"
)

// NotifyFunc receives log-like event notifications: node changes, scaling
// actions, throttled rejection warnings, interval summaries.
type NotifyFunc func(message string, level LogLevel)

// rejectionLogEvery throttles rejection warnings to bound notification
// volume under sustained overload.
const rejectionLogEvery = 10

// completionLogEvery throttles completion progress notifications.
const completionLogEvery = 50

// SystemModel is the request-serving system under simulation. All mutation
// happens between the engine's suspension points, so no locking is needed.
type SystemModel struct {
	eng  *Engine
	cfg  *Config
	pool *NodePool

	Queue *RequestQueue

	Processed []*Request
	Rejected  []*Request

	generated int64

	notify NotifyFunc
}

// NewSystemModel builds the queue and the initial node pool from a validated
// config.
func NewSystemModel(eng *Engine, cfg *Config) *SystemModel {
	m := &SystemModel{
		eng:   eng,
		cfg:   cfg,
		pool:  NewNodePool(eng, cfg.NodeCapacity),
		Queue: NewRequestQueue(eng, cfg.queueCapacity()),
	}
	for i := 0; i < cfg.InitialNodes; i++ {
		m.AddNode()
	}
	return m
}

// SetNotifyFunc subscribes a sink for event notifications. When none is set,
// notifications go to the default logger.
func (m *SystemModel) SetNotifyFunc(fn NotifyFunc) {
	m.notify = fn
}

// Notify emits an event notification to the subscriber, or to logrus when
// nobody subscribed.
func (m *SystemModel) Notify(message string, level LogLevel) {
	if m.notify != nil {
		m.notify(message, level)
		return
	}
	if level == LevelWarning {
		logrus.Warn(message)
	} else {
		logrus.Info(message)
	}
}

// Pool returns the node pool.
func (m *SystemModel) Pool() *NodePool {
	return m.pool
}

// AddNode grows the pool by one and announces it.
func (m *SystemModel) AddNode() *Node {
	n := m.pool.AddNode()
	m.Notify(fmt.Sprintf("node #%d added, total nodes: %d", n.ID(), m.pool.Len()), LevelInfo)
	return n
}

// RemoveNode shrinks the pool from the tail and announces it. Returns false
// when the pool is already empty.
func (m *SystemModel) RemoveNode() bool {
	n := m.pool.RemoveNode()
	if n == nil {
		return false
	}
	m.Notify(fmt.Sprintf("node #%d removed, total nodes: %d", n.ID(), m.pool.Len()), LevelInfo)
	return true
}

// NewRequest mints the next request at the current tick with the given
// pre-generated service time. IDs increase monotonically for the run.
func (m *SystemModel) NewRequest(serviceTime int64) *Request {
	r := NewRequest(m.generated, m.eng.Now(), serviceTime)
	m.generated++
	return r
}

// Generated returns how many requests have been created so far.
func (m *SystemModel) Generated() int64 {
	return m.generated
}

// InFlightEstimate is the admission fast path's view of system occupancy:
// queued requests plus occupied node slots. Requests in a network delay or
// parked on a node's internal wait-list are not counted; the queue-capacity
// guard exists separately to backstop that gap.
func (m *SystemModel) InFlightEstimate() int {
	return m.Queue.Len() + m.pool.BusySlots()
}

// Reject moves a request to the rejected collection with the given reason.
// A rejected request never regresses: its start and finish stay unset and it
// is never retried.
func (m *SystemModel) Reject(r *Request, reason RejectReason) {
	r.Rejected = true
	r.RejectedReason = reason
	m.Rejected = append(m.Rejected, r)
	if len(m.Rejected)%rejectionLogEvery == 0 {
		m.Notify(fmt.Sprintf("request #%d rejected (%s), total rejected: %d",
			r.ID, reason, len(m.Rejected)), LevelWarning)
	}
}

// Complete moves a finished request to the processed collection.
func (m *SystemModel) Complete(r *Request) {
	m.Processed = append(m.Processed, r)
	if len(m.Processed)%completionLogEvery == 0 {
		rt, _ := r.ResponseTime()
		m.Notify(fmt.Sprintf("processed %d requests, last: #%d on node #%d, response time %.2f",
			len(m.Processed), r.ID, r.NodeID, rt), LevelInfo)
	}
}

// SystemState is the cheap snapshot the external driver polls between
// bounded advances of the engine.
type SystemState struct {
	SimTime        float64
	QueueLength    int
	ActiveNodes    int
	TotalNodes     int
	ProcessedCount int
	RejectedCount  int
}

// State captures the current system state.
func (m *SystemModel) State() SystemState {
	return SystemState{
		SimTime:        TicksToSeconds(m.eng.Now()),
		QueueLength:    m.Queue.Len(),
		ActiveNodes:    m.pool.NumActive(),
		TotalNodes:     m.pool.Len(),
		ProcessedCount: len(m.Processed),
		RejectedCount:  len(m.Rejected),
	}
}

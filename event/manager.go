package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/ircbot/metric"
	"github.com/c360/ircbot/pkg/worker"
)

// Manager fans an event out to every registered listener. Listener errors and
// panics are isolated per listener: one misbehaving handler never stops
// delivery to the others, and never reaches the connection.
type Manager interface {
	AddListener(l Listener)
	RemoveListener(l Listener)
	Dispatch(e Event)
	Shutdown()
}

// ManagerOption configures a manager
type ManagerOption func(*managerBase)

// WithLogger sets the manager logger
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *managerBase) { m.logger = logger }
}

// WithMetrics wires dispatch counters for the named bot instance
func WithMetrics(core *metric.CoreMetrics, botName string) ManagerOption {
	return func(m *managerBase) {
		m.metrics = core
		m.botName = botName
	}
}

type managerBase struct {
	mu        sync.RWMutex
	listeners []Listener
	logger    *slog.Logger
	metrics   *metric.CoreMetrics
	botName   string
}

func (m *managerBase) init(opts ...ManagerOption) {
	m.logger = slog.Default().With("component", "listener-manager")
	for _, opt := range opts {
		opt(m)
	}
}

// AddListener registers a listener for future dispatches
func (m *managerBase) AddListener(l Listener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// RemoveListener unregisters a listener by identity
func (m *managerBase) RemoveListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.listeners {
		if cur == l {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}

func (m *managerBase) snapshotListeners() []Listener {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Listener, len(m.listeners))
	copy(out, m.listeners)
	return out
}

// dispatchTo runs one listener with panic recovery
func (m *managerBase) dispatchTo(l Listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			m.recordFailure(e, fmt.Errorf("listener panicked: %v", r))
		}
	}()
	if err := Dispatch(l, e); err != nil {
		m.recordFailure(e, err)
	}
}

func (m *managerBase) recordFailure(e Event, err error) {
	m.logger.Error("Listener failed", "event_type", e.Type(), "event_id", e.ID(), "error", err)
	if m.metrics != nil {
		m.metrics.RecordHandlerError(m.botName)
	}
}

func (m *managerBase) recordDispatch(e Event, start time.Time) {
	if m.metrics != nil {
		m.metrics.RecordEventDispatched(m.botName, e.Type())
		m.metrics.RecordDispatchDuration(m.botName, time.Since(start))
	}
}

// SequentialManager dispatches synchronously on the producing goroutine,
// preserving event order across listeners.
type SequentialManager struct {
	managerBase
}

// NewSequentialManager creates a synchronous manager
func NewSequentialManager(opts ...ManagerOption) *SequentialManager {
	m := &SequentialManager{}
	m.init(opts...)
	return m
}

// Dispatch delivers e to every listener in registration order
func (m *SequentialManager) Dispatch(e Event) {
	if e == nil {
		return
	}
	start := time.Now()
	for _, l := range m.snapshotListeners() {
		m.dispatchTo(l, e)
	}
	m.recordDispatch(e, start)
}

// Shutdown drops all listeners
func (m *SequentialManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = nil
}

// PooledManager offloads listener execution to a worker pool. Ordering
// between handlers for the same event is not guaranteed; lines are still
// read and parsed strictly in arrival order upstream.
type PooledManager struct {
	managerBase
	pool *worker.Pool[dispatchJob]
}

type dispatchJob struct {
	listener Listener
	event    Event
}

// NewPooledManager creates a manager backed by workers goroutines
func NewPooledManager(workers, queueSize int, opts ...ManagerOption) *PooledManager {
	m := &PooledManager{}
	m.init(opts...)
	m.pool = worker.NewPool(workers, queueSize, func(_ context.Context, job dispatchJob) error {
		m.dispatchTo(job.listener, job.event)
		return nil
	}, worker.WithLogger[dispatchJob](m.logger))
	// Pool start only fails on reuse, which cannot happen for a fresh pool
	_ = m.pool.Start(context.Background())
	return m
}

// Dispatch submits one job per listener to the pool
func (m *PooledManager) Dispatch(e Event) {
	if e == nil {
		return
	}
	start := time.Now()
	for _, l := range m.snapshotListeners() {
		if err := m.pool.Submit(dispatchJob{listener: l, event: e}); err != nil {
			m.logger.Warn("Dropped event for listener", "event_type", e.Type(), "error", err)
		}
	}
	m.recordDispatch(e, start)
}

// Shutdown drains the pool and drops all listeners
func (m *PooledManager) Shutdown() {
	if err := m.pool.Stop(5 * time.Second); err != nil {
		m.logger.Warn("Pool stop incomplete", "error", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = nil
}

// Package worker provides a generic worker pool for concurrent task processing
package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/ircbot/metric"
)

// Pool represents a generic worker pool that can process any work type T
type Pool[T any] struct {
	workers   int
	queueSize int
	processor func(context.Context, T) error
	logger    *slog.Logger

	workChan chan T
	wg       sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool
	cancel      context.CancelFunc

	// Statistics (atomic)
	submitted atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64

	// Optional metrics
	queueDepth prometheus.Gauge
}

// Option represents a configuration option for the worker pool
type Option[T any] func(*Pool[T])

// WithLogger sets the pool logger
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(p *Pool[T]) {
		p.logger = logger
	}
}

// WithMetricsRegistry registers a queue depth gauge with the framework registry
func WithMetricsRegistry[T any](registry *metric.Registry, prefix string) Option[T] {
	return func(p *Pool[T]) {
		if registry == nil {
			return
		}
		p.queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ircbot",
			Subsystem: "worker",
			Name:      prefix + "_queue_depth",
			Help:      "Number of queued work items waiting for a worker",
		})
		_ = registry.Register(prefix, "queue_depth", p.queueDepth)
	}
}

// NewPool creates a worker pool with the given concurrency and queue size.
// Work submitted when the queue is full is dropped rather than blocking the
// producer.
func NewPool[T any](workers, queueSize int, processor func(context.Context, T) error, opts ...Option[T]) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	p := &Pool[T]{
		workers:   workers,
		queueSize: queueSize,
		processor: processor,
		workChan:  make(chan T, queueSize),
		logger:    slog.Default().With("component", "worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the worker goroutines. It is an error to start twice or to
// start a stopped pool.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}
	if p.stopped {
		return ErrAlreadyStopped
	}
	p.started = true

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(workerCtx)
	}
	return nil
}

// Submit queues work for processing. Returns ErrQueueFull when the queue is
// at capacity and ErrNotStarted / ErrAlreadyStopped for lifecycle misuse.
func (p *Pool[T]) Submit(work T) error {
	// The lock is held across the send so Stop cannot close workChan
	// between the lifecycle check and the send.
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started {
		return ErrNotStarted
	}
	if p.stopped {
		return ErrAlreadyStopped
	}

	select {
	case p.workChan <- work:
		p.submitted.Add(1)
		if p.queueDepth != nil {
			p.queueDepth.Set(float64(len(p.workChan)))
		}
		return nil
	default:
		p.dropped.Add(1)
		return ErrQueueFull
	}
}

// Stop drains the queue and waits for in-flight work up to timeout.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	if !p.started || p.stopped {
		p.lifecycleMu.Unlock()
		return ErrNotStarted
	}
	p.stopped = true
	close(p.workChan)
	p.lifecycleMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		// Abandon in-flight work after the deadline
		p.cancel()
		return ErrStopTimeout
	}
	p.cancel()
	return nil
}

// Stats returns a snapshot of pool counters
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
		Dropped:   p.dropped.Load(),
		Queued:    len(p.workChan),
	}
}

// Stats holds point-in-time pool counters
type Stats struct {
	Submitted int64
	Processed int64
	Failed    int64
	Dropped   int64
	Queued    int
}

func (p *Pool[T]) worker(ctx context.Context) {
	defer p.wg.Done()

	for work := range p.workChan {
		if p.queueDepth != nil {
			p.queueDepth.Set(float64(len(p.workChan)))
		}

		if err := p.safeProcess(ctx, work); err != nil {
			p.failed.Add(1)
			p.logger.Error("Work item failed", "error", err)
		} else {
			p.processed.Add(1)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// safeProcess runs the processor with panic recovery so a handler bug never
// kills a worker goroutine.
func (p *Pool[T]) safeProcess(ctx context.Context, work T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return p.processor(ctx, work)
}

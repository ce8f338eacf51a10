// Package activity delivers lead timeline activities to the activity service
// in the background so that request handling never waits on it.
package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/config"
	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/metrics"
)

// Options tunes the dispatcher
type Options struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

// Dispatcher queues activities in a bounded channel drained by a fixed pool
// of workers. Delivery failures are logged and counted, never returned.
type Dispatcher struct {
	sink    Sink
	queue   chan domain.Activity
	opts    Options
	metrics *metrics.Metrics
	logger  *zap.Logger

	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
}

// NewDispatcher creates a dispatcher. Call Start before logging activities.
func NewDispatcher(sink Sink, opts Options, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Dispatcher{
		sink:    sink,
		queue:   make(chan domain.Activity, opts.QueueSize),
		opts:    opts,
		metrics: m,
		logger:  logger,
	}
}

// Start launches the workers
func (d *Dispatcher) Start() {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
	d.logger.Info("Activity dispatcher started",
		zap.Int("workers", d.opts.Workers),
		zap.Int("queue_size", d.opts.QueueSize),
	)
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	for a := range d.queue {
		d.deliver(id, a)
	}
}

func (d *Dispatcher) deliver(worker int, a domain.Activity) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
	defer cancel()

	if err := d.sink.Send(ctx, a); err != nil {
		d.metrics.RecordActivity("failed")
		d.logger.Error("Failed to log activity",
			zap.Int("worker", worker),
			zap.String("activity_type", string(a.ActivityType)),
			zap.String("lead_id", a.LeadID),
			zap.Error(err),
		)
		return
	}
	d.metrics.RecordActivity("delivered")
}

// Enqueue hands an activity to the workers without blocking. It reports false
// when the queue is full or the dispatcher has been closed; the activity is
// dropped in that case.
func (d *Dispatcher) Enqueue(a domain.Activity) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.metrics.RecordActivity("dropped")
		return false
	}

	select {
	case d.queue <- a:
		return true
	default:
		d.metrics.RecordActivity("dropped")
		d.logger.Warn("Activity queue full, dropping activity",
			zap.String("activity_type", string(a.ActivityType)),
			zap.String("lead_id", a.LeadID),
		)
		return false
	}
}

// Log implements the service activity logger
func (d *Dispatcher) Log(ctx context.Context, a domain.Activity) {
	d.Enqueue(a)
}

// Close stops accepting activities and waits for queued ones to be delivered
// or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("activity dispatcher did not drain: %w", ctx.Err())
	}
}

// NewSink builds the sink selected by cfg.Transport. The returned close
// function releases transport resources.
func NewSink(cfg *config.ActivityConfig, apiKey string, logger *zap.Logger) (Sink, func() error, error) {
	switch cfg.Transport {
	case "http":
		if cfg.URL == "" {
			logger.Warn("Activity service URL not configured, activities will be discarded")
			return NopSink{}, func() error { return nil }, nil
		}
		return NewHTTPSink(cfg.URL, apiKey, cfg.TimeoutDuration()), func() error { return nil }, nil
	case "amqp":
		sink, err := DialAMQPSink(cfg.AMQPURL, cfg.Exchange, cfg.RoutingKey)
		if err != nil {
			return nil, nil, err
		}
		return sink, sink.Close, nil
	case "disabled", "":
		return NopSink{}, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported activity transport: %s", cfg.Transport)
	}
}

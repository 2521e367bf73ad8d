package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"signup/internal/platform/metrics"
	"signup/pkg/email"
	"signup/pkg/requestcontext"
)

const (
	defaultWorkers   = 2
	defaultQueueSize = 256
	defaultTimeout   = 10 * time.Second
)

// Delivery is the outcome of one enqueued message. The registration flow
// does not wait on it; tests and operators may.
type Delivery struct {
	done chan struct{}
	err  error
}

func newDelivery() *Delivery {
	return &Delivery{done: make(chan struct{})}
}

func (d *Delivery) resolve(err error) {
	d.err = err
	close(d.done)
}

// Done is closed once the message was sent, failed or dropped.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the delivery resolves or ctx ends.
func (d *Delivery) Wait(ctx context.Context) error {
	select {
	case <-d.done:
		return d.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type job struct {
	ctx      context.Context
	msg      Message
	delivery *Delivery
}

// Dispatcher sends messages on a fixed pool of workers fed by a bounded queue.
type Dispatcher struct {
	sender       Sender
	logger       *slog.Logger
	metrics      *metrics.Metrics
	workers      int
	timeout      time.Duration
	drainTimeout time.Duration
	jobs         chan job

	mu      sync.RWMutex
	stopped bool
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithWorkers sets the number of concurrent sends.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithQueueSize bounds the number of messages waiting for a worker.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.jobs = make(chan job, n)
		}
	}
}

// WithSendTimeout bounds each send attempt.
func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithDrainTimeout bounds how long Run keeps sending queued messages after
// its context ends.
func WithDrainTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.drainTimeout = timeout
		}
	}
}

func NewDispatcher(sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:       sender,
		logger:       slog.Default(),
		workers:      defaultWorkers,
		timeout:      defaultTimeout,
		drainTimeout: defaultTimeout,
		jobs:         make(chan job, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue schedules msg without blocking. The send runs detached from ctx's
// cancellation but keeps its values (request id) for logging.
func (d *Dispatcher) Enqueue(ctx context.Context, msg Message) *Delivery {
	delivery := newDelivery()
	if len(msg.To) == 0 {
		delivery.resolve(ErrNoRecipients)
		return delivery
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.drop(ctx, msg, delivery, ErrStopped)
		return delivery
	}

	select {
	case d.jobs <- job{ctx: context.WithoutCancel(ctx), msg: msg, delivery: delivery}:
	default:
		d.drop(ctx, msg, delivery, ErrQueueFull)
	}
	return delivery
}

// Run processes the queue until ctx ends, then stops accepting messages and
// sends what is still queued until the drain timeout passes. Messages left
// after that are resolved with ErrStopped. Run returns nil on a clean
// shutdown.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for range d.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}
	wg.Wait()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	deadline := time.Now().Add(d.drainTimeout)
	for {
		select {
		case j := <-d.jobs:
			if !time.Now().Before(deadline) {
				d.drop(j.ctx, j.msg, j.delivery, ErrStopped)
				continue
			}
			d.send(j, deadline)
		default:
			return nil
		}
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case j := <-d.jobs:
			d.send(j, time.Time{})
		}
	}
}

// send delivers one job. A non-zero deadline further bounds the attempt.
func (d *Dispatcher) send(j job, deadline time.Time) {
	sendCtx, cancel := context.WithTimeout(j.ctx, d.timeout)
	defer cancel()
	if !deadline.IsZero() {
		var cancelDrain context.CancelFunc
		sendCtx, cancelDrain = context.WithDeadline(sendCtx, deadline)
		defer cancelDrain()
	}

	err := d.sender.Send(sendCtx, j.msg)
	if err != nil {
		d.logger.WarnContext(j.ctx, "notification send failed",
			"request_id", requestcontext.RequestID(j.ctx),
			"recipient", maskRecipients(j.msg.To),
			"error", err,
		)
		if d.metrics != nil {
			d.metrics.IncrementNotificationFailures()
		}
	} else if d.metrics != nil {
		d.metrics.IncrementNotificationsSent()
	}
	j.delivery.resolve(err)
}

func (d *Dispatcher) drop(ctx context.Context, msg Message, delivery *Delivery, reason error) {
	d.logger.WarnContext(ctx, "notification dropped",
		"request_id", requestcontext.RequestID(ctx),
		"recipient", maskRecipients(msg.To),
		"reason", reason.Error(),
	)
	if d.metrics != nil {
		d.metrics.IncrementNotificationsDropped()
	}
	delivery.resolve(reason)
}

func maskRecipients(to []string) []string {
	masked := make([]string, len(to))
	for i, addr := range to {
		masked[i] = email.Mask(addr)
	}
	return masked
}

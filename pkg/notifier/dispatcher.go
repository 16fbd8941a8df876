package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"account-service/pkg/utils"
)

var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
)

type DispatcherOptions struct {
	Workers    int
	QueueSize  int
	MaxRetries uint64
	// Timeout bounds a single delivery attempt.
	Timeout   time.Duration
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func (o DispatcherOptions) withDefaults() DispatcherOptions {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 500 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 10 * time.Second
	}
	return o
}

// Stats are running delivery counters.
type Stats struct {
	Enqueued int64
	Sent     int64
	Failed   int64
	Dropped  int64
}

// Dispatcher queues messages and delivers them from a fixed worker pool.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
	opts   DispatcherOptions

	queue  chan Message
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	cancel context.CancelFunc

	enqueued *atomic.Int64
	sent     *atomic.Int64
	failed   *atomic.Int64
	dropped  *atomic.Int64
}

func NewDispatcher(sender Sender, log *zap.Logger, opts DispatcherOptions) *Dispatcher {
	opts = opts.withDefaults()
	return &Dispatcher{
		sender:   sender,
		log:      log.With(zap.String("component", "notifier")),
		opts:     opts,
		queue:    make(chan Message, opts.QueueSize),
		enqueued: atomic.NewInt64(0),
		sent:     atomic.NewInt64(0),
		failed:   atomic.NewInt64(0),
		dropped:  atomic.NewInt64(0),
	}
}

// Start launches the workers. They run until Close drains the queue.
func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for msg := range d.queue {
				d.deliver(ctx, msg)
			}
		}()
	}
}

// Enqueue schedules msg without blocking.
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Inc()
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- msg:
		d.enqueued.Inc()
		return nil
	default:
		d.dropped.Inc()
		d.log.Warn("Notification dropped, queue full",
			zap.String("message_id", msg.ID),
			zap.String("kind", msg.Kind),
		)
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
// When ctx expires first, in-flight retries are cancelled.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		if d.cancel != nil {
			d.cancel()
		}
		<-done
		err = ctx.Err()
	}

	if d.cancel != nil {
		d.cancel()
	}
	if cerr := d.sender.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Enqueued: d.enqueued.Load(),
		Sent:     d.sent.Load(),
		Failed:   d.failed.Load(),
		Dropped:  d.dropped.Load(),
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	b := retry.NewExponential(d.opts.BaseDelay)
	b = retry.WithCappedDuration(d.opts.MaxDelay, b)
	b = retry.WithMaxRetries(d.opts.MaxRetries, b)

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		sendCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()

		if err := d.sender.Send(sendCtx, msg); err != nil {
			d.log.Warn("Notification attempt failed",
				zap.String("message_id", msg.ID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return nil
	})

	if err != nil {
		d.failed.Inc()
		d.log.Error("Notification delivery failed",
			zap.String("message_id", msg.ID),
			zap.String("kind", msg.Kind),
			zap.String("to", utils.MaskEmail(msg.To)),
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		return
	}

	d.sent.Inc()
	d.log.Info("Notification sent",
		zap.String("message_id", msg.ID),
		zap.String("kind", msg.Kind),
		zap.String("to", utils.MaskEmail(msg.To)),
	)
}

package notify

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
)

// DefaultSendTimeout bounds a single delivery attempt.
const DefaultSendTimeout = 30 * time.Second

// Dispatcher queues reset emails and delivers them on one worker goroutine.
// Delivery is at most once: failures are logged and counted, never retried.
type Dispatcher struct {
	sender  Sender
	queue   chan PasswordReset
	log     logging.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts a dispatcher with room for size pending messages.
// Close must be called to stop the worker.
func NewDispatcher(sender Sender, size int, log logging.Logger, m *metrics.Metrics) *Dispatcher {
	if size < 1 {
		size = 1
	}
	d := &Dispatcher{
		sender:  sender,
		queue:   make(chan PasswordReset, size),
		log:     log.With("module", "dispatcher"),
		metrics: m,
		timeout: DefaultSendTimeout,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// NotifyPasswordReset queues msg without blocking. It returns false when the
// queue is full or the dispatcher is closed; the message is then dropped.
func (d *Dispatcher) NotifyPasswordReset(ctx context.Context, msg PasswordReset) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn(ctx, "notification dropped, dispatcher closed")
		d.metrics.Notification(metrics.NotificationDropped)
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.log.Warn(ctx, "notification dropped, queue full", "capacity", cap(d.queue))
		d.metrics.Notification(metrics.NotificationDropped)
		return false
	}
}

// Close stops accepting messages, delivers what is already queued and waits
// for the worker to exit. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg PasswordReset) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.SendPasswordReset(ctx, msg); err != nil {
		d.log.Error(ctx, "password reset email failed", "error", err)
		d.metrics.Notification(metrics.NotificationFailed)
		return
	}
	d.log.Debug(ctx, "password reset email sent")
	d.metrics.Notification(metrics.NotificationSent)
}

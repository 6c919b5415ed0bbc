package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"luvsick-store/internal/domain"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	defaultQueueSize  = 256
	sendRetryAttempts = 2
	sendRetryBackoff  = 500 * time.Millisecond
)

type message struct {
	kind    string
	to      []string
	subject string
	body    string
}

// Dispatcher queues notifications and delivers them on a background worker,
// keeping email transport out of the order transaction. A full queue drops
// the message; a failed send is retried a bounded number of times and then
// only logged. Neither ever surfaces to the enqueueing caller.
type Dispatcher struct {
	sender Sender
	logger *zap.Logger
	queue  chan message
	wg     sync.WaitGroup
	once   sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher and starts its worker goroutine.
// queueSize <= 0 selects the default.
func NewDispatcher(sender Sender, queueSize int, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	d := &Dispatcher{
		sender: sender,
		logger: logger,
		queue:  make(chan message, queueSize),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg message) {
	backoff := retry.WithMaxRetries(sendRetryAttempts, retry.NewConstant(sendRetryBackoff))

	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		if err := d.sender.Send(msg.to, msg.subject, msg.body); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if err != nil {
		d.logger.Error("Failed to deliver notification",
			zap.String("kind", msg.kind),
			zap.Int("recipients", len(msg.to)),
			zap.Error(err),
		)
		return
	}

	d.logger.Info("Notification delivered",
		zap.String("kind", msg.kind),
		zap.Int("recipients", len(msg.to)),
	)
}

func (d *Dispatcher) enqueue(msg message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Dispatcher closed, dropping message", zap.String("kind", msg.kind))
		return
	}

	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("Notification queue full, dropping message",
			zap.String("kind", msg.kind),
		)
	}
}

// NotifyOrderReceived queues the order confirmation email.
func (d *Dispatcher) NotifyOrderReceived(customer *domain.Customer, order *domain.Order) {
	d.enqueue(message{
		kind:    "order_received",
		to:      []string{customer.Email},
		subject: "We have received your order",
		body: fmt.Sprintf("<html><body>"+
			"<p>Hello %s, we have received your order %s and will notify you on any updates.</p>"+
			"<p>Order total: %s</p>"+
			"<p>Regards,<br>luvsick</p>"+
			"</body></html>", customer.Name, order.ID, order.TotalPrice.StringFixed(2)),
	})
}

// NotifyStatusChanged queues the status update email.
func (d *Dispatcher) NotifyStatusChanged(customer *domain.Customer, status domain.OrderStatus) {
	d.enqueue(message{
		kind:    "status_changed",
		to:      []string{customer.Email},
		subject: "New updates on your order",
		body: fmt.Sprintf("<html><body>"+
			"<p>Hello %s, your order is %s.</p>"+
			"<p>Regards,<br>luvsick</p>"+
			"</body></html>", customer.Name, status),
	})
}

// NotifyNewArrival queues the new-arrival broadcast to every known customer.
func (d *Dispatcher) NotifyNewArrival(emails []string, product *domain.Product) {
	if len(emails) == 0 {
		return
	}
	d.enqueue(message{
		kind:    "new_arrival",
		to:      emails,
		subject: "New arrival",
		body: fmt.Sprintf("<html><body>"+
			"<p>Hello, check out our new product: %s.</p>"+
			"<p>Regards,<br>luvsick</p>"+
			"</body></html>", product.Name),
	})
}

// Close drains the queue and stops the worker. Messages enqueued after
// Close are dropped.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.queue)
	})
	d.wg.Wait()
}

package notification

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"luvsick-store/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeSend struct {
	to      []string
	subject string
	body    string
}

// fakeSender records sends and can be scripted to fail a number of times.
type fakeSender struct {
	mu        sync.Mutex
	sent      []fakeSend
	failures  int
	delivered chan fakeSend
}

func newFakeSender() *fakeSender {
	return &fakeSender{delivered: make(chan fakeSend, 16)}
}

func (s *fakeSender) Send(to []string, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures > 0 {
		s.failures--
		return errors.New("smtp connection refused")
	}

	send := fakeSend{to: to, subject: subject, body: body}
	s.sent = append(s.sent, send)
	s.delivered <- send
	return nil
}

func (s *fakeSender) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func waitForSend(t *testing.T, sender *fakeSender) fakeSend {
	t.Helper()
	select {
	case send := <-sender.delivered:
		return send
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a notification to be delivered")
		return fakeSend{}
	}
}

func testCustomer() *domain.Customer {
	return &domain.Customer{
		ID:    uuid.New(),
		Email: "buyer@example.com",
		Name:  "Test Buyer",
	}
}

func TestDispatcher_DeliversOrderReceived(t *testing.T) {
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, 8, zap.NewNop())
	defer dispatcher.Close()

	customer := testCustomer()
	order := &domain.Order{
		ID:         uuid.New(),
		TotalPrice: decimal.RequireFromString("270.00"),
		Status:     domain.OrderStatusReceived,
	}

	dispatcher.NotifyOrderReceived(customer, order)

	send := waitForSend(t, sender)
	if len(send.to) != 1 || send.to[0] != customer.Email {
		t.Errorf("expected recipient %s, got %v", customer.Email, send.to)
	}
	if send.subject != "We have received your order" {
		t.Errorf("unexpected subject: %s", send.subject)
	}
	if !strings.Contains(send.body, order.ID.String()) {
		t.Errorf("body should mention the order id")
	}
	if !strings.Contains(send.body, "270.00") {
		t.Errorf("body should mention the order total")
	}
}

func TestDispatcher_DeliversStatusChange(t *testing.T) {
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, 8, zap.NewNop())
	defer dispatcher.Close()

	dispatcher.NotifyStatusChanged(testCustomer(), domain.OrderStatusShipped)

	send := waitForSend(t, sender)
	if !strings.Contains(send.body, string(domain.OrderStatusShipped)) {
		t.Errorf("body should mention the new status, got: %s", send.body)
	}
}

func TestDispatcher_BroadcastsNewArrival(t *testing.T) {
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, 8, zap.NewNop())
	defer dispatcher.Close()

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	product := &domain.Product{ID: uuid.New(), Name: "Oversized Hoodie"}

	dispatcher.NotifyNewArrival(emails, product)

	send := waitForSend(t, sender)
	if len(send.to) != len(emails) {
		t.Errorf("expected %d recipients, got %d", len(emails), len(send.to))
	}
	if !strings.Contains(send.body, product.Name) {
		t.Errorf("body should mention the product name")
	}
}

func TestDispatcher_EmptyBroadcastIsNoop(t *testing.T) {
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, 8, zap.NewNop())

	dispatcher.NotifyNewArrival(nil, &domain.Product{ID: uuid.New(), Name: "Cap"})
	dispatcher.Close()

	if sender.sentCount() != 0 {
		t.Errorf("expected no sends for an empty recipient list, got %d", sender.sentCount())
	}
}

func TestDispatcher_RetriesTransientFailure(t *testing.T) {
	sender := newFakeSender()
	sender.failures = 1
	dispatcher := NewDispatcher(sender, 8, zap.NewNop())
	defer dispatcher.Close()

	dispatcher.NotifyStatusChanged(testCustomer(), domain.OrderStatusConfirmed)

	waitForSend(t, sender)
	if sender.sentCount() != 1 {
		t.Errorf("expected exactly one successful send, got %d", sender.sentCount())
	}
}

func TestDispatcher_PermanentFailureIsSwallowed(t *testing.T) {
	sender := newFakeSender()
	sender.failures = 100
	dispatcher := NewDispatcher(sender, 8, zap.NewNop())

	dispatcher.NotifyStatusChanged(testCustomer(), domain.OrderStatusCancelled)

	// Close drains the queue, so the failed delivery has run to completion.
	dispatcher.Close()

	if sender.sentCount() != 0 {
		t.Errorf("expected no successful sends, got %d", sender.sentCount())
	}
}

func TestDispatcher_CloseDrainsQueue(t *testing.T) {
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, 8, zap.NewNop())

	customer := testCustomer()
	for i := 0; i < 5; i++ {
		dispatcher.NotifyStatusChanged(customer, domain.OrderStatusConfirmed)
	}
	dispatcher.Close()

	if sender.sentCount() != 5 {
		t.Errorf("expected all 5 queued messages delivered before Close returned, got %d", sender.sentCount())
	}
}

func TestDispatcher_EnqueueAfterCloseDoesNotPanic(t *testing.T) {
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, 8, zap.NewNop())
	dispatcher.Close()

	dispatcher.NotifyStatusChanged(testCustomer(), domain.OrderStatusShipped)

	if sender.sentCount() != 0 {
		t.Errorf("expected message dropped after Close, got %d sends", sender.sentCount())
	}
}

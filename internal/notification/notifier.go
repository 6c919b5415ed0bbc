package notification

import (
	"luvsick-store/internal/domain"
)

// Notifier is the outbound notification contract consumed by the order
// workflow. Implementations must be fire-and-forget: calls return
// immediately and delivery failures never reach the caller.
type Notifier interface {
	NotifyOrderReceived(customer *domain.Customer, order *domain.Order)
	NotifyStatusChanged(customer *domain.Customer, status domain.OrderStatus)
	NotifyNewArrival(emails []string, product *domain.Product)
}

// Sender delivers a single message. The SMTP mailer implements it; tests
// substitute their own.
type Sender interface {
	Send(to []string, subject, body string) error
}

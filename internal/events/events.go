package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderCreated is emitted after a checkout succeeds. Consumers render
// notifications or feed downstream systems; the core only emits.
type OrderCreated struct {
	OrderID       uuid.UUID `json:"orderId"`
	TotalAmount   float64   `json:"totalAmount"`
	ItemCount     int       `json:"itemCount"`
	RentalCount   int       `json:"rentalCount"`
	PaymentMethod string    `json:"paymentMethod"`
	OrderDate     time.Time `json:"orderDate"`
}

// Publisher is the fire-and-forget event sink. Publishing never blocks
// checkout on downstream availability.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreated)
	Close() error
}

// nopPublisher discards all events. Used in tests and when Kafka is
// disabled.
type nopPublisher struct{}

// NewNopPublisher returns a publisher that discards events.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishOrderCreated(ctx context.Context, event OrderCreated) {}

func (nopPublisher) Close() error { return nil }

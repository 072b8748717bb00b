package ports

import (
	"context"

	"github.com/brpay/payment-service/internal/domain"
)

// EventPublisher delivers domain events to downstream consumers.
// Delivery is best effort and at-least-once: callers log and count
// failures but never roll back the state change that produced the
// event.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event, dest domain.Destination) error
}

// Sender delivers a serialized event to one concrete destination
// (a stream endpoint or a queue endpoint).
type Sender interface {
	Send(ctx context.Context, event domain.Event) error
}

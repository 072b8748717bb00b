// Package events implements the EventPublisher port. The publisher
// owns nothing but delivery: routing decisions come in as hints from
// the orchestrator, and failures are reported upward where they are
// logged and counted, never allowed to fail the payment state change
// that produced the event.
package events

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/brpay/payment-service/internal/domain"
	"github.com/brpay/payment-service/internal/domain/ports"
	"github.com/brpay/payment-service/pkg/observability"
)

// Publisher routes events to the stream and queue senders according to
// the destination hint.
type Publisher struct {
	stream ports.Sender
	queue  ports.Sender
	logger *zap.Logger
}

// NewPublisher creates a routing publisher over the two senders.
func NewPublisher(stream, queue ports.Sender, logger *zap.Logger) *Publisher {
	return &Publisher{stream: stream, queue: queue, logger: logger}
}

// Publish delivers the event to the hinted destination(s). For
// DestinationBoth, both sends are attempted even if the first fails;
// the errors are joined. Every attempt is counted for drift detection.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, dest domain.Destination) error {
	switch dest {
	case domain.DestinationStream:
		return p.send(ctx, p.stream, "stream", event)
	case domain.DestinationQueue:
		return p.send(ctx, p.queue, "queue", event)
	case domain.DestinationBoth:
		streamErr := p.send(ctx, p.stream, "stream", event)
		queueErr := p.send(ctx, p.queue, "queue", event)
		return errors.Join(streamErr, queueErr)
	default:
		return fmt.Errorf("unknown destination %d", dest)
	}
}

func (p *Publisher) send(ctx context.Context, sender ports.Sender, name string, event domain.Event) error {
	err := sender.Send(ctx, event)
	observability.RecordEventPublish(string(event.Type), name, err == nil)
	if err != nil {
		p.logger.Error("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.String("transaction_id", event.TransactionID),
			zap.String("destination", name),
			zap.Error(err))
		return fmt.Errorf("publish to %s: %w", name, err)
	}

	p.logger.Info("event published",
		zap.String("event_type", string(event.Type)),
		zap.String("transaction_id", event.TransactionID),
		zap.String("destination", name))
	return nil
}

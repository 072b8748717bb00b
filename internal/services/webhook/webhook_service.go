// Package webhook applies asynchronous gateway status notifications to
// stored payments.
package webhook

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brpay/payment-service/internal/domain"
	"github.com/brpay/payment-service/internal/domain/ports"
	"github.com/brpay/payment-service/pkg/observability"
	"github.com/brpay/payment-service/pkg/timeutil"
)

// Service applies webhook notifications. Processing is idempotent on
// (status, gateway transaction id): redelivering the same notification
// performs no update and emits no event.
type Service struct {
	store     ports.PaymentStore
	publisher ports.EventPublisher
	clock     timeutil.Clock
	logger    *zap.Logger
}

func NewService(store ports.PaymentStore, publisher ports.EventPublisher, clock timeutil.Clock, logger *zap.Logger) *Service {
	return &Service{store: store, publisher: publisher, clock: clock, logger: logger}
}

// Result reports what the webhook did.
type Result struct {
	TransactionID string               `json:"transaction_id"`
	Status        domain.PaymentStatus `json:"status"`
	Applied       bool                 `json:"applied"`
	Message       string               `json:"message"`
}

// ApplyNotification validates and applies one status notification.
func (s *Service) ApplyNotification(ctx context.Context, n domain.WebhookNotification) (*Result, error) {
	if strings.TrimSpace(n.TransactionID) == "" {
		observability.RecordWebhookUpdate("rejected")
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed,
			"Transaction ID is required")
	}

	p, err := s.store.GetByTransactionID(ctx, n.TransactionID)
	if err != nil {
		if domain.IsNotFound(err) {
			observability.RecordWebhookUpdate("not_found")
			return nil, domain.NewDomainError(domain.ErrorCodePaymentNotFound,
				fmt.Sprintf("Payment not found: %s", n.TransactionID))
		}
		s.logger.Error("webhook lookup failed",
			zap.String("transaction_id", n.TransactionID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeStoreError, "Webhook processing failed", err)
	}

	// Redelivery of an already-applied notification is a success with
	// no side effects.
	if p.Status == n.Status && p.GatewayTransactionID == n.GatewayTransactionID {
		observability.RecordWebhookUpdate("idempotent")
		s.logger.Info("webhook redelivery ignored",
			zap.String("transaction_id", n.TransactionID),
			zap.String("status", string(n.Status)))
		return &Result{
			TransactionID: p.TransactionID,
			Status:        p.Status,
			Applied:       false,
			Message:       "Notification already applied",
		}, nil
	}

	if !domain.CanTransition(p.Status, n.Status) {
		observability.RecordWebhookUpdate("rejected")
		return nil, domain.NewDomainError(domain.ErrorCodeInvalidTransition,
			fmt.Sprintf("Cannot transition payment from %s to %s", p.Status, n.Status))
	}

	previous := p.Status
	p.Status = n.Status
	p.GatewayTransactionID = n.GatewayTransactionID
	if n.GatewayResponse != "" {
		p.GatewayResponse = n.GatewayResponse
	}
	if p.ProcessedAt == nil {
		now := s.clock.Now()
		p.ProcessedAt = &now
	}

	if n.Status == domain.StatusRefunded {
		// Negative or missing amounts on refund notifications are
		// ignored rather than recorded. Amounts on other statuses are
		// informational; the processed amount stays what the gateway
		// reported.
		if n.Amount.IsPositive() {
			amount := n.Amount
			p.RefundedAmount = &amount
		}
	}

	if err := s.store.Update(ctx, p); err != nil {
		s.logger.Error("webhook update failed",
			zap.String("transaction_id", n.TransactionID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeStoreError, "Webhook processing failed", err)
	}
	observability.RecordWebhookUpdate("applied")

	s.publishChange(ctx, p, previous, n)

	return &Result{
		TransactionID: p.TransactionID,
		Status:        p.Status,
		Applied:       true,
		Message:       "Notification applied",
	}, nil
}

// publishChange emits the event for an applied notification. Refunds
// get their dedicated event; every other change emits a status-changed
// event. Best effort, same as the orchestrator.
func (s *Service) publishChange(ctx context.Context, p *domain.Payment, previous domain.PaymentStatus, n domain.WebhookNotification) {
	var event domain.Event
	if p.Status == domain.StatusRefunded {
		amount := p.ProcessedAmount
		if p.RefundedAmount != nil {
			amount = *p.RefundedAmount
		}
		event = domain.NewEvent(domain.EventPaymentRefunded, p.TransactionID, s.clock.Now(),
			domain.PaymentRefundedPayload{RefundAmount: amount, Reason: n.EventType})
	} else {
		event = domain.NewEvent(domain.EventPaymentStatusChanged, p.TransactionID, s.clock.Now(),
			domain.StatusChangedPayload{
				PreviousStatus: previous,
				NewStatus:      p.Status,
				Source:         "webhook",
			})
	}

	if err := s.publisher.Publish(ctx, event, domain.DestinationFor(event.Type)); err != nil {
		s.logger.Warn("webhook event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.String("transaction_id", p.TransactionID),
			zap.Error(err))
	}
}

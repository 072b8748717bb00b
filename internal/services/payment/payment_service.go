// Package payment orchestrates the payment lifecycle: admission gates,
// persistence, gateway dispatch, fee calculation and event emission.
package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/brpay/payment-service/internal/domain"
	"github.com/brpay/payment-service/internal/domain/ports"
	"github.com/brpay/payment-service/internal/fees"
	"github.com/brpay/payment-service/internal/validation"
	"github.com/brpay/payment-service/pkg/observability"
	"github.com/brpay/payment-service/pkg/timeutil"
)

// Config carries the orchestrator's tunables.
type Config struct {
	// HighValueThreshold is the amount at or above which an approved
	// payment emits a high-value event instead of the regular
	// processed event.
	HighValueThreshold decimal.Decimal
}

// Service coordinates a payment across the store, the gateway and the
// event publisher. All persistence commits before any event publish;
// publish failures are logged and counted but never unwind state.
type Service struct {
	store     ports.PaymentStore
	gateway   ports.PaymentGateway
	publisher ports.EventPublisher
	limiter   *validation.RateLimiter
	clock     timeutil.Clock
	logger    *zap.Logger
	cfg       Config
}

func NewService(
	store ports.PaymentStore,
	gateway ports.PaymentGateway,
	publisher ports.EventPublisher,
	limiter *validation.RateLimiter,
	clock timeutil.Clock,
	logger *zap.Logger,
	cfg Config,
) *Service {
	if cfg.HighValueThreshold.IsZero() {
		cfg.HighValueThreshold = decimal.NewFromInt(10000)
	}
	return &Service{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		limiter:   limiter,
		clock:     clock,
		logger:    logger,
		cfg:       cfg,
	}
}

// ProcessPayment runs the full admission-to-settlement sequence. The
// rate limiter counts every attempt, accepted or not, before any other
// work happens. Gateway declines and gateway errors come back as a
// response in Declined or Failed status with a nil error; only
// admission rejections (rate limit, validation, duplicates) and
// storage faults surface as errors.
func (s *Service) ProcessPayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResponse, error) {
	start := s.clock.Now()

	if !s.limiter.Allow(req.Customer.ID) {
		observability.RecordRateLimitRejection()
		s.logger.Warn("payment rate limited",
			zap.String("customer_id", req.Customer.ID),
			zap.String("transaction_id", req.TransactionID))
		return nil, domain.NewDomainError(domain.ErrorCodeRateLimited,
			"Rate limit exceeded. Please try again later.")
	}

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetByTransactionID(ctx, req.TransactionID); err == nil {
		observability.RecordDuplicateTransaction()
		return nil, duplicateError(req.TransactionID)
	} else if !domain.IsNotFound(err) {
		s.logger.Error("duplicate lookup failed",
			zap.String("transaction_id", req.TransactionID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeStoreError, "Payment processing failed", err)
	}

	p := domain.NewPaymentFromRequest(req, s.clock.Now())
	if err := s.store.Create(ctx, p); err != nil {
		if domain.IsDuplicate(err) {
			// Lost the race with a concurrent request for the same id;
			// the unique constraint is the authoritative backstop.
			observability.RecordDuplicateTransaction()
			return nil, duplicateError(req.TransactionID)
		}
		s.logger.Error("payment create failed",
			zap.String("transaction_id", req.TransactionID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeStoreError, "Payment processing failed", err)
	}

	result, err := s.dispatch(ctx, req)
	if err != nil {
		s.logger.Error("gateway dispatch failed",
			zap.String("transaction_id", req.TransactionID),
			zap.String("payment_method", string(req.PaymentMethod)),
			zap.Error(err))
		p.Status = domain.StatusFailed
		p.ProcessedAmount = decimal.Zero
		p.Message = "Payment processing failed"
	} else {
		now := result.ProcessedAt
		p.Status = result.Status
		p.AuthorizationCode = result.AuthorizationCode
		p.ProcessedAt = &now
		p.ProcessedAmount = result.ProcessedAmount
		p.Message = result.Message
		// Fees are quoted for every gateway outcome, settled or not.
		f := fees.Calculate(p.Amount, p.PaymentMethod)
		p.Fees = &f
	}

	if err := s.store.Update(ctx, p); err != nil {
		s.logger.Error("payment update failed",
			zap.String("transaction_id", p.TransactionID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeStoreError, "Payment processing failed", err)
	}

	s.publishOutcome(ctx, p)

	observability.RecordPayment(string(p.PaymentMethod), string(p.Status),
		string(p.Currency), amountFloat(p.Amount), s.clock.Now().Sub(start))

	resp := p.ToResponse()
	return &resp, nil
}

// GetPaymentStatus returns the current view of a payment.
func (s *Service) GetPaymentStatus(ctx context.Context, transactionID string) (*domain.PaymentResponse, error) {
	p, err := s.getPayment(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	resp := p.ToResponse()
	return &resp, nil
}

// CancelPayment cancels a payment that has not settled yet. Only
// Pending and Processing payments can be cancelled.
func (s *Service) CancelPayment(ctx context.Context, transactionID, reason string) (*domain.PaymentResponse, error) {
	p, err := s.getPayment(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !p.CanBeCancelled() {
		return nil, domain.NewDomainError(domain.ErrorCodeInvalidTransition,
			fmt.Sprintf("Cannot cancel payment with status %s", p.Status))
	}

	p.Status = domain.StatusCancelled
	p.Message = "Payment cancelled"
	if reason != "" {
		p.Message = fmt.Sprintf("Payment cancelled: %s", reason)
	}
	if err := s.store.Update(ctx, p); err != nil {
		s.logger.Error("payment cancel failed",
			zap.String("transaction_id", p.TransactionID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeStoreError, "Payment cancellation failed", err)
	}

	s.publish(ctx, domain.NewEvent(domain.EventPaymentCancelled, p.TransactionID, s.clock.Now(),
		domain.PaymentCancelledPayload{Status: p.Status, Reason: reason}))

	resp := p.ToResponse()
	return &resp, nil
}

// RefundPayment refunds an approved payment. A zero request amount
// means a full refund of the processed amount; partial refunds still
// move the payment to Refunded and record the refunded amount.
func (s *Service) RefundPayment(ctx context.Context, transactionID string, req domain.RefundRequest) (*domain.PaymentResponse, error) {
	p, err := s.getPayment(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !p.CanBeRefunded() {
		return nil, domain.NewDomainError(domain.ErrorCodeInvalidTransition,
			fmt.Sprintf("Cannot refund payment with status %s", p.Status))
	}

	amount := req.Amount
	if amount.IsZero() {
		amount = p.ProcessedAmount
	}
	if amount.IsNegative() {
		return nil, domain.NewDomainError(domain.ErrorCodeInvalidAmount,
			"Refund amount must be greater than zero")
	}
	if amount.GreaterThan(p.ProcessedAmount) {
		return nil, domain.NewDomainError(domain.ErrorCodeRefundExceedsAmount,
			"Refund amount cannot exceed the processed amount")
	}

	p.Status = domain.StatusRefunded
	p.RefundedAmount = &amount
	p.Message = "Payment refunded"
	if err := s.store.Update(ctx, p); err != nil {
		s.logger.Error("payment refund failed",
			zap.String("transaction_id", p.TransactionID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeStoreError, "Payment refund failed", err)
	}

	s.publish(ctx, domain.NewEvent(domain.EventPaymentRefunded, p.TransactionID, s.clock.Now(),
		domain.PaymentRefundedPayload{RefundAmount: amount, Reason: req.Reason}))

	resp := p.ToResponse()
	return &resp, nil
}

// ListPayments returns one page of payments matching the filter,
// newest first.
func (s *Service) ListPayments(ctx context.Context, filter domain.PaymentFilter) (*domain.PagedResult, error) {
	filter.Normalize()

	payments, total, err := s.store.List(ctx, filter)
	if err != nil {
		s.logger.Error("payment list failed", zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeStoreError, "Payment listing failed", err)
	}

	items := make([]domain.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, p.ToResponse())
	}
	result := domain.NewPagedResult(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

func (s *Service) getPayment(ctx context.Context, transactionID string) (*domain.Payment, error) {
	p, err := s.store.GetByTransactionID(ctx, transactionID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewDomainError(domain.ErrorCodePaymentNotFound,
				fmt.Sprintf("Payment not found: %s", transactionID))
		}
		s.logger.Error("payment lookup failed",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeStoreError, "Payment lookup failed", err)
	}
	return p, nil
}

func (s *Service) dispatch(ctx context.Context, req domain.PaymentRequest) (*ports.GatewayResult, error) {
	switch req.PaymentMethod {
	case domain.MethodCreditCard:
		return s.gateway.ProcessCreditCard(ctx, req)
	case domain.MethodDebit:
		return s.gateway.ProcessDebit(ctx, req)
	case domain.MethodPix:
		return s.gateway.ProcessPix(ctx, req)
	case domain.MethodBoleto:
		return s.gateway.ProcessBoleto(ctx, req)
	default:
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed,
			fmt.Sprintf("Unsupported payment method: %s", req.PaymentMethod))
	}
}

// publishOutcome selects and emits the event for a payment the
// gateway has answered for. Approved and Pending outcomes (boleto
// issuance included) emit the processed event; declines and failures
// emit the failed event. An amount at or above the high-value
// threshold overrides the event type regardless of outcome and fans
// out to both destinations.
func (s *Service) publishOutcome(ctx context.Context, p *domain.Payment) {
	var (
		eventType domain.EventType
		payload   domain.EventPayload
	)
	switch p.Status {
	case domain.StatusApproved, domain.StatusPending:
		eventType = domain.EventPaymentProcessed
		payload = domain.PaymentProcessedPayload{
			Amount:        p.Amount,
			Status:        p.Status,
			PaymentMethod: p.PaymentMethod,
			CustomerID:    p.Customer.ID,
		}
	case domain.StatusDeclined, domain.StatusFailed:
		eventType = domain.EventPaymentFailed
		payload = domain.PaymentFailedPayload{
			Amount:        p.Amount,
			Status:        p.Status,
			PaymentMethod: p.PaymentMethod,
			CustomerID:    p.Customer.ID,
			Reason:        p.Message,
		}
	default:
		return
	}

	if p.Amount.GreaterThanOrEqual(s.cfg.HighValueThreshold) {
		eventType = domain.EventHighValueTransaction
		payload = domain.HighValuePayload{
			Amount:        p.Amount,
			Status:        p.Status,
			PaymentMethod: p.PaymentMethod,
			CustomerID:    p.Customer.ID,
			Threshold:     s.cfg.HighValueThreshold,
		}
	}

	s.publish(ctx, domain.NewEvent(eventType, p.TransactionID, s.clock.Now(), payload))
}

// publish is best effort: the state change already committed, so a
// delivery failure is logged and counted, never propagated.
func (s *Service) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event, domain.DestinationFor(event.Type)); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.String("transaction_id", event.TransactionID),
			zap.Error(err))
	}
}

// validateRequest aggregates every admission failure into one message
// so the caller sees all problems at once.
func validateRequest(req domain.PaymentRequest) error {
	var problems []string

	if !validation.ValidateTransactionID(req.TransactionID) {
		problems = append(problems, "Invalid transaction ID format")
	}
	if !req.Amount.IsPositive() {
		problems = append(problems, "Amount must be greater than zero")
	}
	if !validation.ValidateDocument(req.Customer.Document) {
		problems = append(problems, "Invalid customer document")
	}
	if req.PaymentMethod.IsCardMethod() {
		if req.Card == nil {
			problems = append(problems, "Card details are required")
		} else if !validation.ValidateCardNumber(req.Card.Number) {
			problems = append(problems, "Invalid card number")
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return domain.NewDomainError(domain.ErrorCodeValidationFailed, strings.Join(problems, "; "))
}

func duplicateError(transactionID string) error {
	return domain.WrapError(domain.ErrorCodeDuplicateTransaction,
		fmt.Sprintf("Duplicate transaction ID: %s", transactionID),
		domain.ErrDuplicateTransaction)
}

func amountFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

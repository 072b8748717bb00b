package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brpay/payment-service/internal/domain"
)

// GatewayResult is the gateway's verdict on a payment attempt. Status
// is one of Approved, Declined, Pending or Failed; AuthorizationCode is
// nil on declines.
type GatewayResult struct {
	Status            domain.PaymentStatus
	AuthorizationCode *string
	ProcessedAmount   decimal.Decimal
	ProcessedAt       time.Time
	Message           string
}

// PaymentGateway is the settlement seam. One capability per payment
// method; card and debit resolve synchronously, boleto resolves to
// Pending and is confirmed later by webhook, PIX approves instantly.
// Implementations must honor ctx cancellation; any returned error is
// mapped to a Failed outcome by the orchestrator.
type PaymentGateway interface {
	ProcessCreditCard(ctx context.Context, req domain.PaymentRequest) (*GatewayResult, error)
	ProcessDebit(ctx context.Context, req domain.PaymentRequest) (*GatewayResult, error)
	ProcessPix(ctx context.Context, req domain.PaymentRequest) (*GatewayResult, error)
	ProcessBoleto(ctx context.Context, req domain.PaymentRequest) (*GatewayResult, error)
}

package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brpay/payment-service/internal/domain"
)

func TestPaymentFilter_Normalize(t *testing.T) {
	var f domain.PaymentFilter
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)

	f = domain.PaymentFilter{Page: -3, PageSize: 500}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 100, f.PageSize)

	f = domain.PaymentFilter{Page: 4, PageSize: 25}
	f.Normalize()
	assert.Equal(t, 4, f.Page)
	assert.Equal(t, 25, f.PageSize)
}

func TestNewPagedResult(t *testing.T) {
	result := domain.NewPagedResult(nil, 45, 2, 20)
	assert.Equal(t, int64(45), result.TotalItems)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 2, result.Page)

	result = domain.NewPagedResult(nil, 0, 1, 20)
	assert.Equal(t, 0, result.TotalPages)

	result = domain.NewPagedResult(nil, 40, 1, 20)
	assert.Equal(t, 2, result.TotalPages)
}

func TestNewPaymentFromRequest_MasksCard(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	req := domain.PaymentRequest{
		TransactionID: "9e1c1f0a-0b52-4f5e-9f2f-8f71c86a0001",
		Amount:        decimal.NewFromInt(150),
		Currency:      domain.CurrencyBRL,
		PaymentMethod: domain.MethodCreditCard,
		Customer:      domain.Customer{ID: "cust-1", Document: "52998224725"},
		Card: &domain.CardInput{
			Number:     "4111111111111111",
			HolderName: "Ana Souza",
			Brand:      "visa",
		},
	}

	p := domain.NewPaymentFromRequest(req, now)

	assert.Equal(t, domain.StatusProcessing, p.Status)
	assert.True(t, p.ProcessedAmount.IsZero())
	require.NotNil(t, p.Card)
	assert.Equal(t, "4111****1111", p.Card.MaskedNumber)
	assert.Equal(t, "Ana Souza", p.Card.HolderName)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now, p.UpdatedAt)
}

func TestToResponse(t *testing.T) {
	processedAt := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	auth := "AUTH123456"
	p := &domain.Payment{
		TransactionID:     "tx-1",
		Status:            domain.StatusApproved,
		AuthorizationCode: &auth,
		ProcessedAt:       &processedAt,
		ProcessedAmount:   decimal.NewFromInt(150),
		Message:           "Payment approved successfully",
	}

	resp := p.ToResponse()
	assert.Equal(t, domain.StatusApproved, resp.Status)
	assert.Equal(t, &auth, resp.AuthorizationCode)
	assert.Equal(t, processedAt, resp.ProcessedAt)
	assert.True(t, resp.ProcessedAmount.Equal(decimal.NewFromInt(150)))

	// Without a processed timestamp the update time stands in.
	updated := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	p2 := &domain.Payment{Status: domain.StatusPending, UpdatedAt: updated}
	assert.Equal(t, updated, p2.ToResponse().ProcessedAt)
}

func TestDestinationFor(t *testing.T) {
	assert.Equal(t, domain.DestinationStream, domain.DestinationFor(domain.EventPaymentProcessed))
	assert.Equal(t, domain.DestinationBoth, domain.DestinationFor(domain.EventHighValueTransaction))
	assert.Equal(t, domain.DestinationQueue, domain.DestinationFor(domain.EventPaymentFailed))
	assert.Equal(t, domain.DestinationQueue, domain.DestinationFor(domain.EventPaymentRefunded))
	assert.Equal(t, domain.DestinationQueue, domain.DestinationFor(domain.EventPaymentCancelled))
	assert.Equal(t, domain.DestinationQueue, domain.DestinationFor(domain.EventPaymentStatusChanged))
}

func TestNewEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	event := domain.NewEvent(domain.EventPaymentProcessed, "tx-1", now,
		domain.PaymentProcessedPayload{Amount: decimal.NewFromInt(10)})

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "payment/tx-1/Payment.Processed", event.Subject)
	assert.Equal(t, "1.0", event.DataVersion)
	assert.Equal(t, now, event.Time)
}

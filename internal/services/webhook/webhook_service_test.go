package webhook_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brpay/payment-service/internal/domain"
	"github.com/brpay/payment-service/internal/services/webhook"
	"github.com/brpay/payment-service/pkg/timeutil"
)

type mockStore struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment
	updates  int
}

func newMockStore() *mockStore {
	return &mockStore{payments: make(map[string]*domain.Payment)}
}

func (m *mockStore) Create(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments[p.TransactionID] = &cp
	return nil
}

func (m *mockStore) GetByTransactionID(_ context.Context, id string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockStore) Update(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments[p.TransactionID] = &cp
	m.updates++
	return nil
}

func (m *mockStore) List(_ context.Context, _ domain.PaymentFilter) ([]*domain.Payment, int64, error) {
	return nil, 0, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event domain.Event, _ domain.Destination) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func newService(t *testing.T) (*webhook.Service, *mockStore, *recordingPublisher) {
	t.Helper()
	store := newMockStore()
	publisher := &recordingPublisher{}
	clock := timeutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return webhook.NewService(store, publisher, clock, zap.NewNop()), store, publisher
}

const txID = "11111111-2222-3333-4444-555555555555"

func TestApplyNotification_AppliesTransition(t *testing.T) {
	svc, store, publisher := newService(t)
	store.payments[txID] = &domain.Payment{
		TransactionID:   txID,
		Status:          domain.StatusProcessing,
		ProcessedAmount: decimal.NewFromInt(150),
	}

	result, err := svc.ApplyNotification(context.Background(), domain.WebhookNotification{
		TransactionID:        txID,
		Status:               domain.StatusApproved,
		Amount:               decimal.NewFromInt(120),
		GatewayTransactionID: "gw-100",
		GatewayResponse:      "settled",
	})
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, domain.StatusApproved, result.Status)

	stored := store.payments[txID]
	assert.Equal(t, domain.StatusApproved, stored.Status)
	assert.Equal(t, "gw-100", stored.GatewayTransactionID)
	assert.Equal(t, "settled", stored.GatewayResponse)
	assert.True(t, stored.ProcessedAmount.Equal(decimal.NewFromInt(150)),
		"notification amount must not overwrite the gateway-reported amount")
	assert.NotNil(t, stored.ProcessedAt)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventPaymentStatusChanged, publisher.events[0].Type)
	payload, ok := publisher.events[0].Data.(domain.StatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.StatusProcessing, payload.PreviousStatus)
	assert.Equal(t, domain.StatusApproved, payload.NewStatus)
}

func TestApplyNotification_RedeliveryIsIdempotent(t *testing.T) {
	svc, store, publisher := newService(t)
	store.payments[txID] = &domain.Payment{
		TransactionID: txID,
		Status:        domain.StatusProcessing,
	}

	n := domain.WebhookNotification{
		TransactionID:        txID,
		Status:               domain.StatusApproved,
		Amount:               decimal.NewFromInt(150),
		GatewayTransactionID: "gw-100",
	}

	first, err := svc.ApplyNotification(context.Background(), n)
	require.NoError(t, err)
	assert.True(t, first.Applied)
	assert.Equal(t, 1, store.updates)
	assert.Len(t, publisher.events, 1)

	second, err := svc.ApplyNotification(context.Background(), n)
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.Equal(t, 1, store.updates, "redelivery must not update")
	assert.Len(t, publisher.events, 1, "redelivery must not publish")
}

func TestApplyNotification_RefundSetsAmount(t *testing.T) {
	svc, store, publisher := newService(t)
	store.payments[txID] = &domain.Payment{
		TransactionID:   txID,
		Status:          domain.StatusApproved,
		ProcessedAmount: decimal.NewFromInt(150),
	}

	result, err := svc.ApplyNotification(context.Background(), domain.WebhookNotification{
		TransactionID:        txID,
		Status:               domain.StatusRefunded,
		Amount:               decimal.NewFromInt(150),
		GatewayTransactionID: "gw-200",
	})
	require.NoError(t, err)
	assert.True(t, result.Applied)

	stored := store.payments[txID]
	require.NotNil(t, stored.RefundedAmount)
	assert.True(t, stored.RefundedAmount.Equal(decimal.NewFromInt(150)))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventPaymentRefunded, publisher.events[0].Type)
}

func TestApplyNotification_NegativeRefundAmountIgnored(t *testing.T) {
	svc, store, _ := newService(t)
	store.payments[txID] = &domain.Payment{
		TransactionID:   txID,
		Status:          domain.StatusApproved,
		ProcessedAmount: decimal.NewFromInt(150),
	}

	result, err := svc.ApplyNotification(context.Background(), domain.WebhookNotification{
		TransactionID:        txID,
		Status:               domain.StatusRefunded,
		Amount:               decimal.NewFromInt(-10),
		GatewayTransactionID: "gw-201",
	})
	require.NoError(t, err)
	assert.True(t, result.Applied)

	stored := store.payments[txID]
	assert.Equal(t, domain.StatusRefunded, stored.Status)
	assert.Nil(t, stored.RefundedAmount, "negative amount must not be recorded")
}

func TestApplyNotification_IllegalTransitionRejected(t *testing.T) {
	svc, store, publisher := newService(t)
	store.payments[txID] = &domain.Payment{
		TransactionID: txID,
		Status:        domain.StatusDeclined,
	}

	_, err := svc.ApplyNotification(context.Background(), domain.WebhookNotification{
		TransactionID:        txID,
		Status:               domain.StatusApproved,
		GatewayTransactionID: "gw-300",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot transition")
	assert.Equal(t, 0, store.updates)
	assert.Empty(t, publisher.events)
}

func TestApplyNotification_UnknownPayment(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.ApplyNotification(context.Background(), domain.WebhookNotification{
		TransactionID: "99999999-0000-4000-8000-000000000000",
		Status:        domain.StatusApproved,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Payment not found")
}

func TestApplyNotification_BlankTransactionID(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.ApplyNotification(context.Background(), domain.WebhookNotification{
		Status: domain.StatusApproved,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Transaction ID is required")
}

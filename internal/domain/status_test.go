package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brpay/payment-service/internal/domain"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to domain.PaymentStatus }{
		{domain.StatusPending, domain.StatusProcessing},
		{domain.StatusPending, domain.StatusCancelled},
		{domain.StatusPending, domain.StatusExpired},
		{domain.StatusProcessing, domain.StatusApproved},
		{domain.StatusProcessing, domain.StatusDeclined},
		{domain.StatusProcessing, domain.StatusFailed},
		{domain.StatusProcessing, domain.StatusCancelled},
		{domain.StatusApproved, domain.StatusRefunded},
	}
	for _, tr := range allowed {
		assert.True(t, domain.CanTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}

	denied := []struct{ from, to domain.PaymentStatus }{
		{domain.StatusPending, domain.StatusApproved},
		{domain.StatusPending, domain.StatusRefunded},
		{domain.StatusApproved, domain.StatusCancelled},
		{domain.StatusApproved, domain.StatusApproved},
		{domain.StatusDeclined, domain.StatusApproved},
		{domain.StatusRefunded, domain.StatusApproved},
		{domain.StatusCancelled, domain.StatusProcessing},
		{domain.StatusFailed, domain.StatusProcessing},
		{domain.StatusExpired, domain.StatusPending},
	}
	for _, tr := range denied {
		assert.False(t, domain.CanTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []domain.PaymentStatus{
		domain.StatusDeclined, domain.StatusCancelled, domain.StatusRefunded,
		domain.StatusFailed, domain.StatusExpired,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s", s)
	}

	open := []domain.PaymentStatus{
		domain.StatusPending, domain.StatusProcessing, domain.StatusApproved,
	}
	for _, s := range open {
		assert.False(t, s.IsTerminal(), "%s", s)
	}
}

func TestCanBeCancelledAndRefunded(t *testing.T) {
	assert.True(t, (&domain.Payment{Status: domain.StatusPending}).CanBeCancelled())
	assert.True(t, (&domain.Payment{Status: domain.StatusProcessing}).CanBeCancelled())
	assert.False(t, (&domain.Payment{Status: domain.StatusApproved}).CanBeCancelled())
	assert.False(t, (&domain.Payment{Status: domain.StatusRefunded}).CanBeCancelled())

	assert.True(t, (&domain.Payment{Status: domain.StatusApproved}).CanBeRefunded())
	assert.False(t, (&domain.Payment{Status: domain.StatusPending}).CanBeRefunded())
	assert.False(t, (&domain.Payment{Status: domain.StatusDeclined}).CanBeRefunded())
}

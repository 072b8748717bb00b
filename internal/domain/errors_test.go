package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brpay/payment-service/internal/domain"
)

func TestDomainError_CodeClassification(t *testing.T) {
	dup := domain.WrapError(domain.ErrorCodeDuplicateTransaction,
		"Duplicate transaction ID: x", domain.ErrDuplicateTransaction)
	assert.True(t, domain.IsDuplicate(dup))
	assert.False(t, domain.IsNotFound(dup))

	wrapped := fmt.Errorf("handler: %w", dup)
	assert.True(t, domain.IsDuplicate(wrapped), "classification survives wrapping")
	assert.True(t, errors.Is(wrapped, domain.ErrDuplicateTransaction))

	assert.True(t, domain.IsNotFound(domain.ErrPaymentNotFound))
	assert.True(t, domain.IsStoreError(domain.ErrStoreFailure))
	assert.False(t, domain.IsDuplicate(errors.New("plain")))
}

func TestDomainError_WithDetail(t *testing.T) {
	err := domain.NewDomainError(domain.ErrorCodeValidationFailed, "Invalid card number").
		WithDetail("field", "card.number")

	assert.Equal(t, "card.number", err.Details["field"])
	assert.Contains(t, err.Error(), "VALIDATION_FAILED")
	assert.Contains(t, err.Error(), "Invalid card number")
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, domain.ErrorCodeRateLimited, domain.GetErrorCode(domain.ErrRateLimited))
	assert.Equal(t, domain.ErrorCode(""), domain.GetErrorCode(errors.New("plain")))
}

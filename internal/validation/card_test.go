package validation_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/brpay/payment-service/internal/validation"
)

func TestValidateCardNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{"valid visa", "4111111111111111", true},
		{"valid mastercard", "5555555555554444", true},
		{"valid decline-suffix visa", "4111111100020000", true},
		{"valid with dashes", "4111-1111-1111-1111", true},
		{"valid with spaces", "4111 1111 1111 1111", true},
		{"luhn failure", "1234567890123456", false},
		{"too short", "411111111111", false},
		{"too long", "41111111111111111111", false},
		{"letters", "4111a11111111111", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validation.ValidateCardNumber(tt.number))
		})
	}
}

func TestValidateTransactionID(t *testing.T) {
	assert.True(t, validation.ValidateTransactionID(uuid.New().String()))
	assert.True(t, validation.ValidateTransactionID("a3bb189e-8bf9-3888-9912-ace4e6543002"))
	assert.False(t, validation.ValidateTransactionID("not-a-uuid"))
	assert.False(t, validation.ValidateTransactionID(""))
	assert.False(t, validation.ValidateTransactionID("   "))
}

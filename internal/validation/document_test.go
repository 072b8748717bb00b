package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brpay/payment-service/internal/validation"
)

func TestValidateDocument_CPF(t *testing.T) {
	tests := []struct {
		name     string
		document string
		want     bool
	}{
		{"valid CPF", "52998224725", true},
		{"valid CPF alternate", "12345678909", true},
		{"valid CPF with punctuation", "529.982.247-25", true},
		{"all zeros", "00000000000", false},
		{"all ones", "11111111111", false},
		{"all nines", "99999999999", false},
		{"wrong first check digit", "52998224735", false},
		{"wrong second check digit", "52998224726", false},
		{"too short", "5299822472", false},
		{"letters", "5299822472a", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validation.ValidateDocument(tt.document))
		})
	}
}

func TestValidateDocument_CNPJ(t *testing.T) {
	tests := []struct {
		name     string
		document string
		want     bool
	}{
		{"valid CNPJ", "11222333000181", true},
		{"valid CNPJ with punctuation", "11.222.333/0001-81", true},
		{"all zeros", "00000000000000", false},
		{"all ones", "11111111111111", false},
		{"wrong check digit", "11222333000182", false},
		{"wrong length", "112223330001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validation.ValidateDocument(tt.document))
		})
	}
}

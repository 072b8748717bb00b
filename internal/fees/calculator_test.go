package fees_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/brpay/payment-service/internal/domain"
	"github.com/brpay/payment-service/internal/fees"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		method        domain.PaymentMethod
		processingFee string
		gatewayFee    string
		totalFees     string
		netAmount     string
	}{
		{"credit card", "100", domain.MethodCreditCard, "3.5", "0.3", "3.8", "96.2"},
		{"debit", "100", domain.MethodDebit, "2", "0.2", "2.2", "97.8"},
		{"pix", "100", domain.MethodPix, "0.5", "0.1", "0.6", "99.4"},
		{"boleto", "200", domain.MethodBoleto, "3", "0.25", "3.25", "196.75"},
		{"unknown method falls back to default", "100", domain.PaymentMethod("voucher"), "3", "0.25", "3.25", "96.75"},
		{"rounds processing fee", "99.99", domain.MethodCreditCard, "3.5", "0.3", "3.8", "96.19"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fees.Calculate(decimal.RequireFromString(tt.amount), tt.method)

			assert.True(t, got.ProcessingFee.Equal(decimal.RequireFromString(tt.processingFee)),
				"processing fee %s", got.ProcessingFee)
			assert.True(t, got.GatewayFee.Equal(decimal.RequireFromString(tt.gatewayFee)),
				"gateway fee %s", got.GatewayFee)
			assert.True(t, got.TotalFees.Equal(decimal.RequireFromString(tt.totalFees)),
				"total fees %s", got.TotalFees)
			assert.True(t, got.NetAmount.Equal(decimal.RequireFromString(tt.netAmount)),
				"net amount %s", got.NetAmount)
		})
	}
}

func TestCalculate_NetPlusFeesEqualsAmount(t *testing.T) {
	amounts := []string{"0.01", "1", "10.50", "999.99", "15000"}
	methods := []domain.PaymentMethod{
		domain.MethodCreditCard, domain.MethodDebit, domain.MethodPix, domain.MethodBoleto,
	}

	for _, a := range amounts {
		for _, m := range methods {
			amount := decimal.RequireFromString(a)
			got := fees.Calculate(amount, m)
			assert.True(t, got.NetAmount.Add(got.TotalFees).Equal(amount),
				"amount %s method %s: net %s + fees %s", a, m, got.NetAmount, got.TotalFees)
		}
	}
}

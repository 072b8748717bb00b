// Package fees computes the processing cost breakdown of a payment.
// Calculation is pure arithmetic on decimals; rounding is half away
// from zero to two decimal places throughout (decimal.Round semantics).
package fees

import (
	"github.com/shopspring/decimal"

	"github.com/brpay/payment-service/internal/domain"
)

type feeRate struct {
	percentage decimal.Decimal
	flat       decimal.Decimal
}

var (
	defaultRate = feeRate{decimal.NewFromFloat(0.03), decimal.NewFromFloat(0.25)}

	rateTable = map[domain.PaymentMethod]feeRate{
		domain.MethodCreditCard: {decimal.NewFromFloat(0.035), decimal.NewFromFloat(0.30)},
		domain.MethodDebit:      {decimal.NewFromFloat(0.02), decimal.NewFromFloat(0.20)},
		domain.MethodPix:        {decimal.NewFromFloat(0.005), decimal.NewFromFloat(0.10)},
		domain.MethodBoleto:     {decimal.NewFromFloat(0.015), decimal.NewFromFloat(0.25)},
	}
)

// Calculate returns the fee breakdown for an amount and method.
// processingFee = round(amount * pct, 2); totalFees = processingFee +
// flat gateway fee; netAmount = amount - totalFees.
func Calculate(amount decimal.Decimal, method domain.PaymentMethod) domain.Fees {
	rate, ok := rateTable[method]
	if !ok {
		rate = defaultRate
	}

	processingFee := amount.Mul(rate.percentage).Round(2)
	totalFees := processingFee.Add(rate.flat).Round(2)
	netAmount := amount.Sub(totalFees).Round(2)

	return domain.Fees{
		ProcessingFee: processingFee,
		GatewayFee:    rate.flat,
		TotalFees:     totalFees,
		NetAmount:     netAmount,
	}
}
